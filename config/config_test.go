package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ratfit/ratfit/approximation/functions"
	"github.com/ratfit/ratfit/approximation/rational"
)

func write(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {

	cfg := Default()
	require.NoError(t, cfg.Validate())

	require.Equal(t, 60, cfg.Precision.Digits)
	require.Equal(t, "phi", cfg.Fit.Function)
	require.Equal(t, 3, cfg.Fit.Numerator)
	require.Equal(t, 3, cfg.Fit.Denominator)
	require.Equal(t, "1e-30", cfg.Fit.Tolerance)
	require.Equal(t, "1e-8", cfg.Partition.TargetError)
	require.Equal(t, 48, cfg.Partition.MaxDepth)

	t.Run("Target", func(t *testing.T) {
		a := cfg.Arithmetic()
		require.Equal(t, 60, a.Digits())

		target, start, end, err := cfg.Target(a)
		require.NoError(t, err)
		require.Equal(t, "phi", target.Name)
		require.NotNil(t, target.Df)
		require.Zero(t, start.Sign())
		require.Zero(t, end.Cmp(functions.TailEnd(a)))
	})

	t.Run("FunctionDomain", func(t *testing.T) {
		require.Empty(t, cfg.Fit.Start)
		require.Empty(t, cfg.Fit.End)

		for name, want := range map[string][2]float64{"sigmoid": {-8, 8}, "exp": {0, 1}} {
			c := Default()
			c.Fit.Function = name

			a := c.Arithmetic()
			_, start, end, err := c.Target(a)
			require.NoError(t, err)
			require.Zero(t, start.Cmp(a.NewFloat(want[0])), name)
			require.Zero(t, end.Cmp(a.NewFloat(want[1])), name)
		}
	})

	t.Run("PartitionParameters", func(t *testing.T) {
		a := cfg.Arithmetic()
		target, _, _, err := cfg.Target(a)
		require.NoError(t, err)

		p, err := cfg.PartitionParameters(a, target, nil)
		require.NoError(t, err)
		require.Equal(t, 3, p.Numerator)
		require.Equal(t, 3, p.Denominator)
		require.Equal(t, rational.DefaultMaxRounds, p.MaxRounds)
		require.Equal(t, 48, p.MaxDepth)
		require.Nil(t, p.MinWidth)

		want, err := a.Parse("1e-8")
		require.NoError(t, err)
		require.Zero(t, p.TargetError.Cmp(want))
	})

	t.Run("Logger", func(t *testing.T) {
		logger, err := cfg.Logger()
		require.NoError(t, err)
		require.NotNil(t, logger)
	})
}

func TestLoad(t *testing.T) {

	t.Run("TOML", func(t *testing.T) {
		path := write(t, "ratfit.toml", `
[precision]
digits = 40

[fit]
function = "tanh"
n = 4
m = 2
end = "2"
numerical_derivative = true

[partition]
target_error = "1e-12"
min_width = "1e-6"
tolerate_failures = true

[output]
path = "tanh.yaml"

[logging]
level = "debug"
format = "json"
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		require.Equal(t, 40, cfg.Precision.Digits)
		require.Equal(t, "tanh", cfg.Fit.Function)
		require.Equal(t, 4, cfg.Fit.Numerator)
		require.Equal(t, 2, cfg.Fit.Denominator)
		require.Equal(t, "1e-30", cfg.Fit.Tolerance)
		require.True(t, cfg.Partition.TolerateFailures)
		require.Equal(t, "json", cfg.Logging.Format)

		a := cfg.Arithmetic()
		target, start, end, err := cfg.Target(a)
		require.NoError(t, err)
		require.Nil(t, target.Df)
		require.Zero(t, start.Cmp(a.NewFloat(-4)))
		require.Zero(t, end.Cmp(a.NewFloat(2)))

		p, err := cfg.PartitionParameters(a, target, nil)
		require.NoError(t, err)
		require.NotNil(t, p.MinWidth)
		require.True(t, p.TolerateFailures)
	})

	t.Run("YAML", func(t *testing.T) {
		path := write(t, "ratfit.yml", `
precision:
  digits: 30
fit:
  function: exp
  n: 2
  m: 1
  exchange: true
store:
  enabled: true
  path: runs.db
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, 30, cfg.Precision.Digits)
		require.Equal(t, "exp", cfg.Fit.Function)
		require.True(t, cfg.Fit.Exchange)
		require.Equal(t, rational.DefaultMaxExchanges, cfg.Fit.MaxExchanges)
		require.True(t, cfg.Store.Enabled)
		require.Equal(t, "runs.db", cfg.Store.Path)
		require.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
		require.Error(t, err)

		_, err = Load(write(t, "ratfit.ini", "digits = 40"))
		require.ErrorIs(t, err, ErrInvalid)

		_, err = Load(write(t, "ratfit.toml", "[fit]\nfunction = \"gamma\"\n"))
		require.ErrorIs(t, err, ErrInvalid)

		_, err = Load(write(t, "ratfit.toml", "[fit\n"))
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {

	cases := map[string]func(c *Config){
		"Digits":        func(c *Config) { c.Precision.Digits = 5 },
		"Function":      func(c *Config) { c.Fit.Function = "gamma" },
		"Degree":        func(c *Config) { c.Fit.Denominator = -1 },
		"MaxRounds":     func(c *Config) { c.Fit.MaxRounds = 0 },
		"ScanDensity":   func(c *Config) { c.Fit.ScanDensity = 0 },
		"Exchange":      func(c *Config) { c.Fit.Exchange, c.Fit.MaxExchanges = true, 0 },
		"MaxDepth":      func(c *Config) { c.Partition.MaxDepth = -2 },
		"Tolerance":     func(c *Config) { c.Fit.Tolerance = "0" },
		"TargetError":   func(c *Config) { c.Partition.TargetError = "1e-8x" },
		"Start":         func(c *Config) { c.Fit.Start = "zero" },
		"MinWidth":      func(c *Config) { c.Partition.MinWidth = "-" },
		"OutputFormat":  func(c *Config) { c.Output.Format = "xml" },
		"StorePath":     func(c *Config) { c.Store.Enabled, c.Store.Path = true, "" },
		"LoggingLevel":  func(c *Config) { c.Logging.Level = "verbose" },
		"LoggingFormat": func(c *Config) { c.Logging.Format = "text" },
	}

	for name, modify := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			modify(cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
