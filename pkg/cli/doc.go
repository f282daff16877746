/*
Package cli provides command-line interface utilities for Mercator Saturn.

The cli package includes output formatters, exit-code errors, progress
reporters, and signal handling used by the saturn command.

Output Formatting:

Command results render as text or JSON:

	format, err := cli.ParseFormat(outputFlag)
	if err != nil {
		return err
	}
	formatter := cli.NewFormatter(format)
	if err := formatter.FormatTo(os.Stdout, summary); err != nil {
		return err
	}

Exit Codes:

Commands that distinguish findings from failure return an ExitError; main
maps any error to a process exit code:

	if issueCount > 0 {
		return cli.NewExitError(cli.ExitFindings,
			fmt.Errorf("%d discrepancy issue(s)", issueCount))
	}

	// in main:
	os.Exit(cli.ExitCode(err))

Progress Reporting:

For long-running operations such as history export, use the progress
reporter:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(totalRecords)
	for i := int64(0); i < totalRecords; i++ {
		// Do work
		progress.Update(i + 1)
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
