package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/incompat/internal/config"
	"github.com/roach88/incompat/internal/ir"
	"github.com/roach88/incompat/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	Specs      string // default definitions path
	DB         string // default database path
	LogLevel   string

	log *logger.Logger
}

// Logger returns the command logger, a no-op logger if none was configured.
func (o *RootOptions) Logger() *logger.Logger {
	if o.log == nil {
		return logger.Nop()
	}
	return o.log
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the incompat CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "incompat",
		Version: ir.ToolVersion,
		Short:   "incompat - known version incompatibilities",
		Long: `A registry of known version incompatibilities between crates and
the Rust toolchain.

Records are declared in CUE, checked, optionally imported into a SQLite
store, and queried: does version V of crate P have a documented conflict,
and with what?`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, opts, cmd)
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVarP(&opts.ConfigFile, "config", "c", "", "config file (default: .incompat.yaml or ~/.config/incompat/config.yaml)")
	flags.StringVar(&opts.Specs, "specs", "", "definitions directory or file (default from config)")
	flags.StringVar(&opts.DB, "db", "", "SQLite database path (default from config)")

	// Bind flags to viper; flags win over config file and environment
	_ = v.BindPFlag("format", flags.Lookup("format"))
	_ = v.BindPFlag("specs", flags.Lookup("specs"))
	_ = v.BindPFlag("db", flags.Lookup("db"))

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewAffectsCommand(opts))
	cmd.AddCommand(NewConflictsCommand(opts))
	cmd.AddCommand(NewRustCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// initConfig merges config file, environment, and flags into opts and
// builds the logger.
func initConfig(v *viper.Viper, opts *RootOptions, cmd *cobra.Command) error {
	// Validate format flag before config so the error names the flag
	if cmd.Flags().Changed("format") && !isValidFormat(opts.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
	}

	cfg, err := config.Load(v, opts.ConfigFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "configuration", err)
	}

	opts.Format = cfg.Format
	opts.Specs = cfg.Specs
	opts.DB = cfg.DB
	opts.LogLevel = cfg.LogLevel
	if opts.Verbose {
		opts.LogLevel = "debug"
	}

	opts.log = logger.NewLogger(logger.Config{
		Level:  opts.LogLevel,
		Pretty: true,
		Output: cmd.ErrOrStderr(),
	})
	opts.log.Debug().
		Str("config", v.ConfigFileUsed()).
		Str("specs", opts.Specs).
		Str("db", opts.DB).
		Msg("configuration loaded")
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// specsArg returns the definitions path from args[0] or the configured default.
func specsArg(opts *RootOptions, args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if opts.Specs != "" {
		return opts.Specs
	}
	return config.Defaults().Specs
}
