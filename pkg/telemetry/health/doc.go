// Package health provides liveness and readiness probes for Saturn's
// long-running watch mode.
//
// # Overview
//
// The health package implements liveness and readiness probes for
// Kubernetes and other orchestration systems, along with a version
// information endpoint. The watch command mounts all three on the same
// mux as the metrics handler.
//
// # Endpoints
//
//   - /health: Liveness probe - indicates if the process is running
//   - /ready: Readiness probe - indicates if validations can be served
//   - /version: Build information - version, commit, build time
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//
//	// Required components: a failure here fails readiness.
//	checker.RegisterCheck("rules-store", health.PingCheck(storeDB))
//	checker.RegisterCheck("catalog", func(ctx context.Context) error {
//	    if ldr.GetCachedRuleSet() == nil {
//	        return errors.New("catalog not loaded")
//	    }
//	    return nil
//	})
//
//	// The git remote only feeds reloads; the loaded catalog keeps
//	// serving without it, so its failure merely degrades readiness.
//	checker.RegisterInformational("git-source", func(ctx context.Context) error {
//	    return watcher.LastSyncError()
//	})
//
//	mux := http.NewServeMux()
//	health.HTTPMiddleware(mux, checker, version, commit, buildTime)
//
// # Liveness vs Readiness
//
// Liveness (/health) answers "is the process alive" and always returns
// 200 while the process can serve HTTP. Readiness (/ready) runs every
// registered check concurrently and aggregates:
//
//   - "ready" (200): every check passed
//   - "degraded" (200): only informational checks failed; validations
//     still run against the last loaded catalog
//   - "unhealthy" (503): a required component failed
//
// Routing traffic away on degraded would take a working engine out of
// rotation over a flapping git remote, which is why degraded stays 200.
//
// # Example Responses
//
// Readiness response (/ready), degraded:
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "rules-store": {"status": "ok", "duration_ms": 0.4},
//	        "catalog": {"status": "ok", "duration_ms": 0.1},
//	        "git-source": {"status": "unhealthy", "message": "remote unreachable", "informational": true}
//	    },
//	    "timestamp": "2026-08-20T10:30:00Z"
//	}
//
// Version response (/version):
//
//	{
//	    "version": "1.0.0",
//	    "commit": "abc123def456",
//	    "build_time": "2026-08-20T00:00:00Z",
//	    "go_version": "go1.25.0"
//	}
package health
