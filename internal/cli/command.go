package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/weight/internal/integration"
	"github.com/idelchi/weight/internal/weight"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// ErrUsage is returned for invalid flag values or missing arguments.
var ErrUsage = errors.New("usage error")

//nolint:gochecknoglobals // Config constant
var allowedOutputs = []string{"table", "json", "yaml"}

// Command builds the root command. Flags are bound to v, which also carries
// values from the config file and WEIGHT_* environment variables.
//
//nolint:funlen // Flag definitions.
func (c CLI) Command(v *viper.Viper) *cobra.Command {
	var (
		configFile string
		shell      string
	)

	cmd := &cobra.Command{
		Use:   "weight [flags] pattern...",
		Short: "Calculate the total size of files matching glob patterns",
		Long: heredoc.Doc(`
			weight calculates the total size of the files matching one or more glob patterns.

			Each file is counted once in the grand total, however many patterns match it
			or however many paths lead to it. Every pattern also gets its own subtotal.

			Patterns:
			  *        any run of characters within one path component
			  ?        exactly one character
			  [a-z]    one character from a class, [!a-z] or [^a-z] to negate
			  **       zero or more whole path components
			  \*       a literal '*' (not on Windows, where '\' separates components)

			Relative patterns are resolved against --dir, the current directory by default.
			Quote the patterns, or use the snippet from '--init <shell>', so the shell
			does not expand them first.
		`),
		Example: heredoc.Doc(`
			weight '**/*.png' '**/*.jpg' '**/*.dds'
			weight -v '*.png'
			weight --threads 4 '**/*.go' -e '/vendor/'
			weight -o json 'assets/**'
		`),
		Version:       c.version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig(v, configFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if shell != "" {
				rendered, err := integration.Render(shell)
				if err != nil {
					return fmt.Errorf("rendering integration script: %w", err)
				}

				fmt.Fprint(cmd.OutOrStdout(), rendered)

				return nil
			}

			options, err := optionsFrom(v, args)
			if err != nil {
				return err
			}

			return logic(cmd.Context(), options, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false

	flags.IntP("threads", "t", weight.DefaultThreads(), "Number of parallel workers")
	flags.BoolP("verbose", "v", false, "List every counted file and every skipped path")
	flags.BoolP("debug", "d", false, "Enable debug output")
	flags.StringP("output", "o", "table", "Output format: "+strings.Join(allowedOutputs, ", "))
	flags.Int("top", weight.DefaultTopN, "Number of largest files and extensions to display")
	flags.String("min-size", "0B", "Minimum file size (e.g., 1KB)")
	flags.StringSliceP("exclude", "e", nil, "Regex patterns to exclude, matched against slash-separated paths")
	flags.Bool("gitignore", false, "Skip paths ignored by the .gitignore in --dir")
	flags.Bool("no-follow", false, "Do not traverse symlinks to directories")
	flags.Bool("ignore-case", weight.DefaultFoldCase(), "Match patterns case-insensitively")
	flags.Bool("case-sensitive", false, "Match patterns case-sensitively (overrides --ignore-case)")
	flags.String("dir", ".", "Directory relative patterns are resolved against")
	flags.Bool("no-color", false, "Disable colored output")
	flags.StringVar(&configFile, "config", "", "Config file (default $XDG_CONFIG_HOME/weight/config.yaml or ./.weight.yaml)")
	flags.StringVar(&shell, "init", "", "Print the shell integration snippet for a shell: "+strings.Join(integration.Shells(), ", "))

	for _, name := range []string{
		"threads", "verbose", "debug", "output", "top", "min-size", "exclude",
		"gitignore", "no-follow", "ignore-case", "case-sensitive", "dir", "no-color",
	} {
		_ = v.BindPFlag(configKey(name), flags.Lookup(name))
	}

	return cmd
}

// configKey maps a flag name to its config file key.
func configKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

// optionsFrom validates the merged configuration and builds run options.
func optionsFrom(v *viper.Viper, args []string) (weight.Options, error) {
	options := weight.Options{
		Patterns:  args,
		Dir:       v.GetString("dir"),
		Threads:   v.GetInt("threads"),
		FoldCase:  v.GetBool("ignore_case") && !v.GetBool("case_sensitive"),
		NoFollow:  v.GetBool("no_follow"),
		Excludes:  v.GetStringSlice("exclude"),
		GitIgnore: v.GetBool("gitignore"),
		TopN:      v.GetInt("top"),
		Verbose:   v.GetBool("verbose"),
		Debug:     v.GetBool("debug"),
		Output:    strings.ToLower(v.GetString("output")),
		NoColor:   v.GetBool("no_color"),
	}

	if len(options.Patterns) == 0 {
		return options, fmt.Errorf("%w: at least one pattern is required", ErrUsage)
	}

	if !slices.Contains(allowedOutputs, options.Output) {
		return options, fmt.Errorf("%w: invalid output format %q: must be one of %v", ErrUsage, options.Output, allowedOutputs)
	}

	if options.Threads < 1 {
		return options, fmt.Errorf("%w: threads must be at least 1", ErrUsage)
	}

	if options.TopN < 0 {
		return options, fmt.Errorf("%w: top cannot be negative", ErrUsage)
	}

	// Parse minSize string to bytes
	if minSize := v.GetString("min_size"); minSize != "" {
		size, err := humanize.ParseBytes(minSize)
		if err != nil {
			return options, fmt.Errorf("%w: invalid min-size: %w", ErrUsage, err)
		}

		options.MinSize = int64(size) //nolint:gosec // Size conversion from humanize is safe
	}

	return options, nil
}

// Execute runs the CLI with the process arguments, cancelling the run on
// SIGINT or SIGTERM.
func (c CLI) Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return c.Command(viper.New()).ExecuteContext(ctx)
}
