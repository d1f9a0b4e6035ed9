package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// LogLevelEnv is consulted when neither a flag nor the config file sets the
// log level.
const LogLevelEnv = "EML_TO_HTML_LOG_LEVEL"

// Config captures all command-line options required to run a conversion.
type Config struct {
	Paths      []string
	Recursive  bool
	Include    []string
	Exclude    []string
	KeepGoing  bool
	OutputDir  string
	LogLevel   string
	LogDir     string
	NoColor    bool
	ConfigFile string
}

// RegisterPersistentFlags attaches the flags shared by every subcommand.
func RegisterPersistentFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "Optional YAML file with default settings")
	flags.Bool("keep-going", false, "Log failed files and continue instead of aborting the run")
	flags.String("log-level", "info", "Logging level: debug, info, warn, error")
	flags.String("log-dir", "", "Directory for a timestamped copy of the log output")
	flags.Bool("no-color", false, "Disable coloured status output")
}

// RegisterFlags attaches the conversion flags to the root command.
func RegisterFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolP("recursive", "r", false, "Recursively process directories")
	flags.StringArray("include", nil, "Glob allow-list for files found in directories (mutually exclusive with --exclude)")
	flags.StringArray("exclude", nil, "Glob block-list for files found in directories (mutually exclusive with --include)")
}

// RegisterMboxFlags attaches the flags of the mbox subcommand.
func RegisterMboxFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output-dir", "o", "", "Directory for the generated HTML files (default: next to the archive)")
}

// LoadConfig converts the parsed Cobra flags, the optional config file and
// the positional arguments into a Config struct with validation. Flags set
// on the command line win over file values.
func LoadConfig(cmd *cobra.Command, args []string) (Config, error) {
	flags := cmd.Flags()

	configFile, err := stringFlag(flags, "config")
	if err != nil {
		return Config{}, err
	}

	var file FileConfig
	if configFile != "" {
		file, err = LoadFile(configFile)
		if err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		Paths:      args,
		ConfigFile: configFile,
	}

	if cfg.Recursive, err = boolFlag(flags, "recursive", file.Recursive); err != nil {
		return Config{}, err
	}
	if cfg.KeepGoing, err = boolFlag(flags, "keep-going", file.KeepGoing); err != nil {
		return Config{}, err
	}
	if cfg.NoColor, err = boolFlag(flags, "no-color", file.NoColor); err != nil {
		return Config{}, err
	}
	if cfg.Include, err = arrayFlag(flags, "include", file.Include); err != nil {
		return Config{}, err
	}
	if cfg.Exclude, err = arrayFlag(flags, "exclude", file.Exclude); err != nil {
		return Config{}, err
	}
	if cfg.LogDir, err = stringFlagOr(flags, "log-dir", file.LogDir); err != nil {
		return Config{}, err
	}
	if cfg.OutputDir, err = stringFlagOr(flags, "output-dir", file.OutputDir); err != nil {
		return Config{}, err
	}

	logLevel := file.LogLevel
	if f := flags.Lookup("log-level"); f != nil && f.Changed {
		logLevel = f.Value.String()
	}
	if logLevel == "" {
		logLevel = os.Getenv(LogLevelEnv)
	}
	if logLevel == "" {
		logLevel = "info"
	}
	logLevel = strings.ToLower(strings.TrimSpace(logLevel))
	if logLevel == "warning" {
		logLevel = "warn"
	}
	cfg.LogLevel = logLevel

	if cfg.LogDir != "" {
		cfg.LogDir = filepath.Clean(cfg.LogDir)
	}
	if cfg.OutputDir != "" {
		cfg.OutputDir = filepath.Clean(cfg.OutputDir)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	if len(cfg.Include) > 0 && len(cfg.Exclude) > 0 {
		return fmt.Errorf("include and exclude flags are mutually exclusive")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid --log-level: %s", cfg.LogLevel)
	}

	return nil
}

func stringFlag(flags *pflag.FlagSet, name string) (string, error) {
	if flags.Lookup(name) == nil {
		return "", nil
	}
	return flags.GetString(name)
}

func stringFlagOr(flags *pflag.FlagSet, name, fallback string) (string, error) {
	f := flags.Lookup(name)
	if f == nil || (!f.Changed && fallback != "") {
		return fallback, nil
	}
	return flags.GetString(name)
}

func boolFlag(flags *pflag.FlagSet, name string, fallback *bool) (bool, error) {
	f := flags.Lookup(name)
	if f == nil || (!f.Changed && fallback != nil) {
		return fallback != nil && *fallback, nil
	}
	return flags.GetBool(name)
}

func arrayFlag(flags *pflag.FlagSet, name string, fallback []string) ([]string, error) {
	f := flags.Lookup(name)
	if f == nil || (!f.Changed && len(fallback) > 0) {
		return fallback, nil
	}
	return flags.GetStringArray(name)
}
