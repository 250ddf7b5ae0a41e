// Package config holds the configuration of the ratfit command, loaded from TOML
// or YAML files on top of the defaults.
package config

import (
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"

	"github.com/ratfit/ratfit/approximation/functions"
	"github.com/ratfit/ratfit/approximation/partition"
	"github.com/ratfit/ratfit/approximation/rational"
	"github.com/ratfit/ratfit/table"
	"github.com/ratfit/ratfit/utils/bignum"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid configuration")

// Config holds the complete configuration.
type Config struct {
	Precision PrecisionConfig `toml:"precision" yaml:"precision"`
	Fit       FitConfig       `toml:"fit" yaml:"fit"`
	Partition PartitionConfig `toml:"partition" yaml:"partition"`
	Output    OutputConfig    `toml:"output" yaml:"output"`
	Store     StoreConfig     `toml:"store" yaml:"store"`
	Logging   LoggingConfig   `toml:"logging" yaml:"logging"`
}

// PrecisionConfig holds the working precision.
type PrecisionConfig struct {
	Digits int `toml:"digits" yaml:"digits"`
}

// FitConfig holds the parameters of a single minimax fit.
type FitConfig struct {
	Function    string `toml:"function" yaml:"function"`
	Numerator   int    `toml:"n" yaml:"n"`
	Denominator int    `toml:"m" yaml:"m"`

	// Start and End default to the domain of Function when empty.
	Start string `toml:"start" yaml:"start"`
	End   string `toml:"end" yaml:"end"`

	Tolerance   string `toml:"tolerance" yaml:"tolerance"`
	MaxRounds   int    `toml:"max_rounds" yaml:"max_rounds"`
	ScanDensity int    `toml:"scan_density" yaml:"scan_density"`

	// NumericalDerivative disables the analytic derivative of Function.
	NumericalDerivative bool `toml:"numerical_derivative" yaml:"numerical_derivative"`

	Exchange          bool    `toml:"exchange" yaml:"exchange"`
	MaxExchanges      int     `toml:"max_exchanges" yaml:"max_exchanges"`
	ExchangeThreshold float64 `toml:"exchange_threshold" yaml:"exchange_threshold"`
}

// PartitionConfig holds the parameters of the partitioner.
type PartitionConfig struct {
	TargetError      string `toml:"target_error" yaml:"target_error"`
	MaxDepth         int    `toml:"max_depth" yaml:"max_depth"`
	MinWidth         string `toml:"min_width" yaml:"min_width"`
	TolerateFailures bool   `toml:"tolerate_failures" yaml:"tolerate_failures"`
}

// OutputConfig holds where tables are written.
type OutputConfig struct {
	// Path is the table file. Empty means stdout.
	Path string `toml:"path" yaml:"path"`
	// Format defaults to the extension of Path, then to json.
	Format string `toml:"format" yaml:"format"`
}

// StoreConfig holds the run store settings.
type StoreConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// LoggingConfig holds the logger settings.
type LoggingConfig struct {
	Level string `toml:"level" yaml:"level"`
	// Format is console or json.
	Format string `toml:"format" yaml:"format"`
}

// Default returns the default configuration: phi = erf(x/sqrt(2)) on its default
// domain [0, erfinv(1-1e-18)] with degrees (3, 3) at 60 digits.
func Default() *Config {
	return &Config{
		Precision: PrecisionConfig{
			Digits: 60,
		},
		Fit: FitConfig{
			Function:          "phi",
			Numerator:         3,
			Denominator:       3,
			Tolerance:         "1e-30",
			MaxRounds:         rational.DefaultMaxRounds,
			ScanDensity:       rational.DefaultScanDensity,
			MaxExchanges:      rational.DefaultMaxExchanges,
			ExchangeThreshold: rational.DefaultExchangeThreshold,
		},
		Partition: PartitionConfig{
			TargetError: "1e-8",
			MaxDepth:    partition.DefaultMaxDepth,
		},
		Store: StoreConfig{
			Path: "./data/ratfit.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the file at path over the defaults and validates the result.
// The decoder is chosen by the extension: .toml, .yaml or .yml.
func Load(path string) (*Config, error) {

	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("cannot Load: %w", err)
	}

	cfg := Default()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		_, err = toml.Decode(string(data), cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, xerrors.Errorf("cannot Load %s: %w: unknown extension %q", path, ErrInvalid, ext)
	}

	if err != nil {
		return nil, xerrors.Errorf("cannot Load %s: %w", path, err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, xerrors.Errorf("cannot Load %s: %w", path, err)
	}

	return cfg, nil
}

func invalid(format string, args ...interface{}) error {
	return xerrors.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...)
}

// Validate checks every field.
func (c *Config) Validate() error {

	if c.Precision.Digits < 10 {
		return invalid("precision.digits must be at least 10, got %d", c.Precision.Digits)
	}

	if _, err := functions.Lookup(c.Fit.Function, c.Arithmetic()); err != nil {
		return invalid("fit.function: %v", err)
	}

	if c.Fit.Numerator < 0 || c.Fit.Denominator < 0 {
		return invalid("fit degrees must be non-negative, got (%d, %d)", c.Fit.Numerator, c.Fit.Denominator)
	}

	if c.Fit.MaxRounds <= 0 {
		return invalid("fit.max_rounds must be positive")
	}

	if c.Fit.ScanDensity <= 0 {
		return invalid("fit.scan_density must be positive")
	}

	if c.Fit.Exchange && (c.Fit.MaxExchanges <= 0 || c.Fit.ExchangeThreshold <= 0) {
		return invalid("fit.max_exchanges and fit.exchange_threshold must be positive")
	}

	if c.Partition.MaxDepth <= 0 {
		return invalid("partition.max_depth must be positive")
	}

	positive := map[string]string{
		"fit.tolerance":          c.Fit.Tolerance,
		"partition.target_error": c.Partition.TargetError,
	}

	optional := map[string]string{
		"fit.start":           c.Fit.Start,
		"fit.end":             c.Fit.End,
		"partition.min_width": c.Partition.MinWidth,
	}

	for key, s := range positive {
		x, err := c.parse(s)
		if err != nil {
			return invalid("%s: %v", key, err)
		}
		if x.Sign() <= 0 {
			return invalid("%s must be positive, got %s", key, s)
		}
	}

	for key, s := range optional {
		if s == "" {
			continue
		}
		if _, err := c.parse(s); err != nil {
			return invalid("%s: %v", key, err)
		}
	}

	if c.Output.Format != "" {
		if _, err := table.ParseFormat(c.Output.Format); err != nil {
			return invalid("output.format: %v", err)
		}
	}

	if c.Store.Enabled && c.Store.Path == "" {
		return invalid("store.path is empty")
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return invalid("logging.level: %v", err)
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return invalid("logging.format must be console or json, got %q", c.Logging.Format)
	}

	return nil
}

func (c *Config) parse(s string) (*big.Float, error) {
	return bignum.ParseFloat(s, bignum.DigitsToPrec(c.Precision.Digits))
}

// Arithmetic returns the working precision context.
func (c *Config) Arithmetic() bignum.Context {
	return bignum.NewContext(c.Precision.Digits)
}

// Target returns the target function and the fitting domain. An empty start or end
// is replaced by the default domain of the function.
func (c *Config) Target(a bignum.Arithmetic) (t functions.Target, start, end *big.Float, err error) {

	if t, err = functions.Lookup(c.Fit.Function, a); err != nil {
		return
	}

	if c.Fit.NumericalDerivative {
		t.Df = nil
	}

	start, end = t.Start, t.End

	if c.Fit.Start != "" {
		if start, err = a.Parse(c.Fit.Start); err != nil {
			return
		}
	}

	if c.Fit.End != "" {
		if end, err = a.Parse(c.Fit.End); err != nil {
			return
		}
	}

	return
}

// FitParameters returns the parameters of a minimax fit of t.
func (c *Config) FitParameters(a bignum.Arithmetic, t functions.Target, logger *zap.Logger) (p rational.Parameters, err error) {

	var tol *big.Float
	if tol, err = a.Parse(c.Fit.Tolerance); err != nil {
		return p, xerrors.Errorf("cannot FitParameters: %w", err)
	}

	return rational.Parameters{
		Arithmetic:        a,
		Function:          t.F,
		Derivative:        t.Df,
		Numerator:         c.Fit.Numerator,
		Denominator:       c.Fit.Denominator,
		Tolerance:         tol,
		MaxRounds:         c.Fit.MaxRounds,
		ScanDensity:       c.Fit.ScanDensity,
		Exchange:          c.Fit.Exchange,
		MaxExchanges:      c.Fit.MaxExchanges,
		ExchangeThreshold: c.Fit.ExchangeThreshold,
		Logger:            logger,
	}, nil
}

// PartitionParameters returns the parameters of a partition of t.
func (c *Config) PartitionParameters(a bignum.Arithmetic, t functions.Target, logger *zap.Logger) (p partition.Parameters, err error) {

	if p.Parameters, err = c.FitParameters(a, t, logger); err != nil {
		return p, xerrors.Errorf("cannot PartitionParameters: %w", err)
	}

	if p.TargetError, err = a.Parse(c.Partition.TargetError); err != nil {
		return p, xerrors.Errorf("cannot PartitionParameters: %w", err)
	}

	if c.Partition.MinWidth != "" {
		if p.MinWidth, err = a.Parse(c.Partition.MinWidth); err != nil {
			return p, xerrors.Errorf("cannot PartitionParameters: %w", err)
		}
	}

	p.MaxDepth = c.Partition.MaxDepth
	p.TolerateFailures = c.Partition.TolerateFailures

	return p, nil
}

// Logger builds the logger described by the logging section.
func (c *Config) Logger() (*zap.Logger, error) {

	level, err := zap.ParseAtomicLevel(c.Logging.Level)
	if err != nil {
		return nil, xerrors.Errorf("cannot build Logger: %w", err)
	}

	var zc zap.Config
	if c.Logging.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level

	return zc.Build()
}
