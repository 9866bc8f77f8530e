package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/idelchi/weight/internal/weight"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// palette holds the colors of the table output.
type palette struct {
	header *color.Color
	path   *color.Color
	size   *color.Color
	total  *color.Color
	warn   *color.Color
	fail   *color.Color
	flag   *color.Color
}

// newPalette returns the table colors, all disabled unless enabled is set.
func newPalette(enabled bool) palette {
	pal := palette{
		header: color.New(color.FgCyan, color.Bold),
		path:   color.New(color.FgBlue),
		size:   color.New(color.FgGreen),
		total:  color.New(color.FgMagenta, color.Bold),
		warn:   color.New(color.FgYellow),
		fail:   color.New(color.FgRed),
		flag:   color.New(color.FgCyan),
	}

	for _, c := range []*color.Color{pal.header, pal.path, pal.size, pal.total, pal.warn, pal.fail, pal.flag} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return pal
}

// PrintJSON outputs the result in JSON format.
func PrintJSON(result *weight.Result, writer io.Writer) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintYAML outputs the result in YAML format.
func PrintYAML(result *weight.Result, writer io.Writer) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)

	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("encoding YAML output: %w", err)
	}

	return encoder.Close()
}

func percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}

	return 100.0 * float64(part) / float64(total)
}

func ibytes(n int64) string {
	return humanize.IBytes(uint64(n)) //nolint:gosec // Sizes are never negative
}

// TableOptions controls the table output.
type TableOptions struct {
	// Color enables ANSI colors.
	Color bool
	// Verbose lists every counted file and every skipped path.
	Verbose bool
}

// PrintTable outputs the result in human-readable table format. Colors are
// only applied after the last column so they do not disturb alignment.
//
//nolint:forbidigo,funlen // This function prints output to the console.
func PrintTable(result *weight.Result, writer io.Writer, opts TableOptions) error {
	pal := newPalette(opts.Color)
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintln(w, pal.header.Sprint("Patterns:"))

	for i, p := range result.Patterns {
		if p.Error != "" {
			fmt.Fprintf(w, "  %d) %s\t%s\n", i+1, p.Pattern, pal.fail.Sprint("invalid: "+p.Error))

			continue
		}

		fmt.Fprintf(w, "  %d) %s\t%d files\t%s\n", i+1, p.Pattern, p.Files, pal.size.Sprint(ibytes(p.Bytes)))
	}

	if len(result.ExtStats) > 0 {
		fmt.Fprintln(w, pal.header.Sprint("\nTop extensions:"))

		extList := make([]string, 0, len(result.ExtStats))
		for ext := range result.ExtStats {
			extList = append(extList, ext)
		}

		sort.Slice(extList, func(i, j int) bool {
			si, sj := result.ExtStats[extList[i]].Size, result.ExtStats[extList[j]].Size
			if si != sj {
				return si < sj
			}

			return extList[i] > extList[j]
		})

		startIdx := 0
		if len(extList) > result.TopN {
			startIdx = len(extList) - result.TopN
		}

		displayList := extList[startIdx:]
		for i, ext := range displayList {
			extStat := result.ExtStats[ext]
			if ext == "" {
				ext = "\"\""
			}

			fmt.Fprintf(w, "  %d) %s:\t%d files\t%s (%.1f%%)\n",
				len(displayList)-i, ext, extStat.Count,
				pal.size.Sprint(ibytes(extStat.Size)), percent(extStat.Size, result.TotalBytes))
		}
	}

	if len(result.TopFiles) > 0 {
		fmt.Fprintln(w, pal.header.Sprint("\nTop files:"))

		for i, f := range result.TopFiles {
			fmt.Fprintf(w, "  %d) '%s'\t%s (%.1f%%)\n",
				len(result.TopFiles)-i, f.Path, pal.size.Sprint(ibytes(f.Size)), percent(f.Size, result.TotalBytes))
		}
	}

	if opts.Verbose && len(result.Files) > 0 {
		fmt.Fprintln(w, pal.header.Sprint("\nFiles:"))

		for _, f := range result.Files {
			fmt.Fprintf(w, "  %s\t%s\n", f.Path, pal.size.Sprint(ibytes(f.Size)))
		}
	}

	if opts.Verbose && len(result.Failures) > 0 {
		fmt.Fprintln(w, pal.header.Sprint("\nSkipped:"))

		for _, f := range result.Failures {
			fmt.Fprintf(w, "  %s\t%s\n", f.Path, pal.fail.Sprintf("%s error: %s", f.Kind, f.Reason))
		}
	}

	fmt.Fprintln(w, pal.header.Sprint("\nStats:"))
	fmt.Fprintf(w, "Total files:\t%d\n", result.FileCount)

	if result.ErrorCount > 0 {
		fmt.Fprintf(w, "Errors:\t%s\n", pal.fail.Sprint(result.ErrorCount))
	}

	fmt.Fprintf(w, "Total size:\t%s\n",
		pal.total.Sprintf("%s (%d bytes)", ibytes(result.TotalBytes), result.TotalBytes))

	fmt.Fprintf(w, "\nElapsed:\t%v\n", result.Elapsed)

	return w.Flush()
}
