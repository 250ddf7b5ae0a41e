// Package cmd implements the ratfit command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/ratfit/ratfit/config"
)

var (
	cfgFile string
	verbose bool

	fitFunction string
	fitDigits   int
	fitN, fitM  int
	fitStart    string
	fitEnd      string
	fitExchange bool

	partTargetError string
	partMaxDepth    int
	partMinWidth    string
	partTolerate    bool

	outputPath   string
	outputFormat string
	storeSave    bool
	storePath    string
	reportLang   string
)

var rootCmd = &cobra.Command{
	Use:   "ratfit",
	Short: "Piecewise rational minimax approximations",
	Long: `ratfit computes rational minimax approximations p(x)/q(x) of real functions
at arbitrary precision, and partitions their domain until every piece meets a
target peak error.

Functions: phi, erf, exp, sigmoid, tanh, log1p`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and prints its error.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (.toml, .yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	pf.StringVarP(&fitFunction, "function", "f", "", "target function")
	pf.IntVar(&fitDigits, "digits", 0, "working precision in decimal digits")
	pf.IntVarP(&fitN, "numerator", "n", 0, "numerator degree")
	pf.IntVarP(&fitM, "denominator", "m", 0, "denominator degree")
	pf.StringVar(&fitStart, "start", "", "start of the domain")
	pf.StringVar(&fitEnd, "end", "", "end of the domain")
	pf.BoolVar(&fitExchange, "exchange", false, "move the reference points until the error equioscillates")

	pf.StringVar(&storePath, "db", "", "run store database (default ./data/ratfit.db)")
	pf.StringVar(&reportLang, "lang", "en", "language of the number formatting in reports")
}

// addPartitionFlags registers the flags of the commands building partitions.
func addPartitionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&partTargetError, "target-error", "", "peak error every leaf must meet")
	f.IntVar(&partMaxDepth, "max-depth", 0, "maximum bisection depth")
	f.StringVar(&partMinWidth, "min-width", "", "width below which intervals are not split")
	f.BoolVar(&partTolerate, "tolerate-failures", false, "keep unresolved intervals instead of failing")
	f.BoolVar(&storeSave, "save", false, "save the table in the run store")
}

// addOutputFlags registers the flags of the commands writing tables.
func addOutputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&outputPath, "output", "o", "", "table file (default stdout)")
	f.StringVar(&outputFormat, "format", "", "table format: json, yaml, cbor, bin (default from the extension)")
}

// loadConfig reads the config file, or the defaults, and applies the flags
// explicitly set on the command line.
func loadConfig(cmd *cobra.Command) (cfg *config.Config, err error) {

	if cfgFile != "" {
		if cfg, err = config.Load(cfgFile); err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	flags := cmd.Flags()

	if flags.Changed("function") {
		cfg.Fit.Function = fitFunction
	}
	if flags.Changed("digits") {
		cfg.Precision.Digits = fitDigits
	}
	if flags.Changed("numerator") {
		cfg.Fit.Numerator = fitN
	}
	if flags.Changed("denominator") {
		cfg.Fit.Denominator = fitM
	}
	if flags.Changed("start") {
		cfg.Fit.Start = fitStart
	}
	if flags.Changed("end") {
		cfg.Fit.End = fitEnd
	}
	if flags.Changed("exchange") {
		cfg.Fit.Exchange = fitExchange
	}
	if flags.Changed("target-error") {
		cfg.Partition.TargetError = partTargetError
	}
	if flags.Changed("max-depth") {
		cfg.Partition.MaxDepth = partMaxDepth
	}
	if flags.Changed("min-width") {
		cfg.Partition.MinWidth = partMinWidth
	}
	if flags.Changed("tolerate-failures") {
		cfg.Partition.TolerateFailures = partTolerate
	}
	if flags.Changed("output") {
		cfg.Output.Path = outputPath
	}
	if flags.Changed("format") {
		cfg.Output.Format = outputFormat
	}
	if flags.Changed("save") {
		cfg.Store.Enabled = storeSave
	}
	if flags.Changed("db") {
		cfg.Store.Path = storePath
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setup loads the configuration and builds its logger.
func setup(cmd *cobra.Command) (cfg *config.Config, logger *zap.Logger, err error) {

	if cfg, err = loadConfig(cmd); err != nil {
		return nil, nil, err
	}

	if logger, err = cfg.Logger(); err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}

// signalContext is cancelled on interrupt.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt)
}

func reportLanguage() (language.Tag, error) {
	return language.Parse(reportLang)
}
