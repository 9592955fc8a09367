package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/arcanaland/cardtsv/internal/catalog"
	"github.com/arcanaland/cardtsv/internal/config"
	"github.com/arcanaland/cardtsv/internal/report"
)

var (
	configPath string
	logger     *zap.Logger
	cfg        *config.Config
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "cardtsv",
	Short: "Aggregate per-pack card JSON into one tab separated report",
	Long: `cardtsv reads packs.json, sets.json and the per-pack card files under pack/
and writes every card as one line of a tab separated report to stdout.

Newlines inside values are written as \n. A field holding an odd number of
double quotes is reported on stderr, since spreadsheet readers may mis-split
that line; fix the card data to silence it.

Example:
  cardtsv > csv/all_cards.csv`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := config.New()
		for _, name := range []string{"root", "output", "verbose"} {
			if err := v.BindPFlag(name, cmd.Root().PersistentFlags().Lookup(name)); err != nil {
				return err
			}
		}

		var err error
		cfg, err = config.Load(v, configPath)
		if err != nil {
			return err
		}

		logger, err = newLogger(cfg.Verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		color.NoColor = !term.IsTerminal(int(os.Stderr.Fd()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Output == "" || cfg.Output == "-" {
			return generate(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
		}
		return generateFile(cfg, cfg.Output, cmd.ErrOrStderr(), logger)
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ./"+config.FileName+")")
	RootCmd.PersistentFlags().StringP("root", "C", ".", "directory holding packs.json, sets.json and pack/")
	RootCmd.PersistentFlags().StringP("output", "o", "", "write the report to this file instead of stdout")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every file read")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// newLogger logs to stderr at warn level, or debug when verbose
func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

// generateFile writes the report to a temporary file next to path and
// renames it over path once complete. A failed run leaves path untouched.
func generateFile(cfg *config.Config, path string, diag io.Writer, logger *zap.Logger) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if err := generate(cfg, tmp, diag, logger); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("error setting output file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("error moving output file into place: %w", err)
	}

	logger.Debug("Report file written", zap.String("path", path))
	return nil
}

// generate runs the whole pipeline: collect, flatten, resolve, write
func generate(cfg *config.Config, out, diag io.Writer, logger *zap.Logger) error {
	records, err := catalog.NewCollector(cfg, logger).Collect()
	if err != nil {
		return err
	}

	b, err := report.Build(records, logger)
	if err != nil {
		return err
	}

	diags, err := report.NewWriter(out, diag).Write(b.Fields(), b.Cards())
	if err != nil {
		return err
	}

	logger.Debug("Report written",
		zap.Int("cards", b.Len()),
		zap.Int("fields", len(b.Fields())),
		zap.Int("quote_mismatches", len(diags)))

	return nil
}
