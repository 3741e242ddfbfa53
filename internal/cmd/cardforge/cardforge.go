// Package cardforge parses cardforge command flags and dispatches the
// generation, scenario and security-mark commands.
package cardforge

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	entrypoint "github.com/neetkit/cardforge/internal/platform/cmd"
	"github.com/neetkit/cardforge/internal/platform/logging"
)

// Config holds cardforge command configuration. Environment variables carry
// the CARDFORGE_ prefix.
type Config struct {
	Seed          string `env:"SEED"           envDefault:"-1"`
	Templates     string `env:"TEMPLATES"`
	DB            string `env:"DB"`
	LogLevel      string `env:"LOG_LEVEL"      envDefault:"info"`
	LogFile       string `env:"LOG_FILE"`
	Perception    string `env:"PERCEPTION"`
	SecurityType  string `env:"SECURITY_TYPE"  envDefault:"OSI_Security"`
	RollThreshold int    `env:"ROLL_THRESHOLD" envDefault:"70"`

	// Count is the number of objects the generate command produces.
	Count int
	// Steps overrides the preset step count when non-negative.
	Steps  int
	Preset string

	// Command and Args are the positional arguments after the flags.
	Command string
	Args    []string
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Count = 1
	cfg.Steps = -1

	fs.StringVar(&cfg.Seed, "seed", cfg.Seed, "random seed for reproducibility (negative = random)")
	fs.StringVar(&cfg.Templates, "templates", cfg.Templates, "path to a YAML or JSON template file (default: built-in templates)")
	fs.StringVar(&cfg.DB, "db", cfg.DB, "path to the SQLite archive (empty disables archiving)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "also write JSON logs to this file")
	fs.StringVar(&cfg.Perception, "perception", cfg.Perception, "perception for security marks (critical, suspicious, neutral; default: preset or neutral)")
	fs.StringVar(&cfg.SecurityType, "security-type", cfg.SecurityType, "comma separated object types eligible for security marks")
	fs.IntVar(&cfg.RollThreshold, "roll-threshold", cfg.RollThreshold, "roll in [0,100] an eligible object must exceed to be marked")
	fs.IntVar(&cfg.Count, "count", cfg.Count, "number of objects for the generate command")
	fs.IntVar(&cfg.Steps, "steps", cfg.Steps, "scenario step count (negative = use preset)")
	fs.StringVar(&cfg.Preset, "preset", "demo", "scenario preset (demo, recon, incident, stress-test)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	rest := fs.Args()
	if len(rest) > 0 {
		cfg.Command = strings.TrimSpace(rest[0])
		cfg.Args = rest[1:]
	}
	return cfg, nil
}

// Run executes one cardforge command, writing JSON results to out and logs
// to errOut.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Command == "" {
		return errors.New("command is required\n" + usage())
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Writer: errOut, FilePath: cfg.LogFile})
	if err != nil {
		return err
	}
	defer logger.Close()

	options := entrypoint.RunOptions{Logger: logger.Logger}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCardforge, options, func(ctx context.Context) error {
		a, err := newApp(ctx, cfg, out, logger.Logger)
		if err != nil {
			return err
		}
		defer a.close()
		return a.dispatch(ctx)
	})
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.name)
	}
	return names
}

func usage() string {
	var b strings.Builder
	b.WriteString("commands:\n")
	for _, c := range commands {
		b.WriteString("  " + c.summary + "\n")
	}
	return b.String()
}

func usageError(format string, args ...any) error {
	return fmt.Errorf("usage: "+format, args...)
}
