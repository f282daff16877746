// Package validator lints parsed rulebooks beyond what the parser enforces.
//
// The structural pass checks ids, uniqueness, and field path shapes. The
// semantic pass checks that conditions can actually hold at runtime:
// operators belong to the closed vocabulary, similarity thresholds stay in
// [0, 1], regular expressions compile, and issue templates are well formed.
//
// Findings use three error types: structural and semantic findings point at
// rules that are broken, validation findings point at rules that are legal
// but almost certainly not what the author meant (no conditions, an
// operator the executor cannot evaluate yet, a comparison against nothing).
// The lint command reports all three; loading is never blocked by the
// validator, because a catalog with a questionable rule is still a catalog.
package validator
