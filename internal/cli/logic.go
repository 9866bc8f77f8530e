package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/idelchi/weight/internal/weight"
)

// isTerminal reports whether w writes to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newSpinner creates the scanning indicator shown on stderr.
func newSpinner(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Scanning…"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func logic(ctx context.Context, options weight.Options, stdout, stderr io.Writer) error {
	enableProgress := options.Output == "table" &&
		!options.Debug &&
		isTerminal(stderr)

	options.DebugOutput = stderr

	warn := newPalette(!options.NoColor && isTerminal(stderr))

	if options.Debug {
		debugPreamble(stderr, options)
	}

	var (
		progressHook func(files, bytes int64)
		spinner      *progressbar.ProgressBar
	)

	if enableProgress {
		spinner = newSpinner(stderr)

		progressHook = func(files, bytes int64) {
			spinner.Describe(fmt.Sprintf("Scanning… %d files, %s",
				files, humanize.IBytes(uint64(bytes)))) //nolint:gosec // Bytes is always positive
		}
	}

	result, err := weight.Run(ctx, options, progressHook)

	// Clear the status line
	if spinner != nil {
		_ = spinner.Finish()
	}

	if err != nil {
		return err
	}

	for _, rejected := range result.Rejected {
		fmt.Fprintf(stderr, "%s %v\n", warn.warn.Sprint("Warning:"), rejected)
	}

	if result.ErrorCount > 0 && !options.Verbose {
		fmt.Fprintf(stderr, "%s %d paths skipped because of errors, use %s to list them\n",
			warn.warn.Sprint("Warning:"), result.ErrorCount, warn.flag.Sprint("--verbose"))
	}

	if result.FileCount == 0 && options.Output == "table" {
		noMatches(stderr, warn, options)
	}

	switch options.Output {
	case "json":
		return PrintJSON(result, stdout)
	case "yaml":
		return PrintYAML(result, stdout)
	case "table":
		return PrintTable(result, stdout, TableOptions{
			Color:   !options.NoColor && isTerminal(stdout),
			Verbose: options.Verbose,
		})
	default:
		return fmt.Errorf("unknown output format: %s", options.Output)
	}
}

// debugPreamble prints where and with what a debug run starts.
func debugPreamble(w io.Writer, options weight.Options) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = fmt.Sprintf("unknown (%v)", err)
	}

	fmt.Fprintf(w, "[debug]: current directory: %s\n", cwd)
	fmt.Fprintf(w, "[debug]: patterns: %q\n", options.Patterns)

	if _, err := os.ReadDir(options.Dir); err != nil {
		fmt.Fprintf(w, "[debug]: cannot read %s: %v\n", options.Dir, err)
	}
}

// noMatches explains an empty result, with hints when debugging.
func noMatches(w io.Writer, pal palette, options weight.Options) {
	fmt.Fprintln(w, pal.warn.Sprint("No files found matching the patterns"))

	if !options.Debug {
		fmt.Fprintf(w, "%s Use %s for debug information\n", pal.header.Sprint("Tip:"), pal.flag.Sprint("--debug"))

		return
	}

	fmt.Fprintln(w, pal.header.Sprint("\nDebug suggestions:"))
	fmt.Fprintf(w, "  • Relative patterns are resolved against %s\n", pal.path.Sprint(options.Dir))
	fmt.Fprintln(w, "  • Check if the file extensions are correct")
	fmt.Fprintf(w, "  • Brace expansion is not supported, use separate patterns: %s instead of %s\n",
		pal.flag.Sprint("'**/*.png' '**/*.jpg'"), pal.warn.Sprint("'**/*.{png,jpg}'"))
	fmt.Fprintf(w, "  • Try a simpler pattern like %s or %s\n", pal.flag.Sprint("'*.png'"), pal.flag.Sprint("'**/*.png'"))
	fmt.Fprintln(w, "  • Make sure the shell did not expand the pattern, quote it or use --init")
	fmt.Fprintln(w, "  • Check directory permissions")
}
