package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ratfit/ratfit/approximation/partition"
	"github.com/ratfit/ratfit/report"
	"github.com/ratfit/ratfit/table"
)

var partitionCmd = &cobra.Command{
	Use:   "partition",
	Short: "Partition the domain until every piece meets the target error",
	Long: `Bisects the domain of the target function until a rational minimax
approximation of degrees (n, m) meets the target peak error on every leaf,
writes the resulting table and prints its summary on stderr.

Examples:
  ratfit partition
  ratfit partition -f tanh -n 4 -m 4 --target-error 1e-20 -o tanh.cbor
  ratfit partition --config ratfit.toml --save`,
	Args: cobra.NoArgs,
	RunE: runPartition,
}

func init() {
	rootCmd.AddCommand(partitionCmd)
	addPartitionFlags(partitionCmd)
	addOutputFlags(partitionCmd)
}

func runPartition(cmd *cobra.Command, args []string) (err error) {

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	lang, err := reportLanguage()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	a := cfg.Arithmetic()

	target, start, end, err := cfg.Target(a)
	if err != nil {
		return err
	}

	params, err := cfg.PartitionParameters(a, target, logger)
	if err != nil {
		return err
	}

	builder, err := partition.NewBuilder(params)
	if err != nil {
		return err
	}

	p, err := builder.Build(ctx, start, end)
	if err != nil {
		return err
	}

	if err = p.Validate(); err != nil && !(cfg.Partition.TolerateFailures && errors.Is(err, partition.ErrUnresolved)) {
		return err
	}

	t := table.FromPartition(p, target.Name, cfg.Precision.Digits)

	if err = writeTable(cmd, t, cfg.Output); err != nil {
		return err
	}

	if cfg.Store.Enabled {
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		id, err := s.SaveRun(ctx, t)
		if err != nil {
			return err
		}
		logger.Info("run saved", zap.String("id", id), zap.String("db", cfg.Store.Path))
	}

	summary, err := report.Summarize(t)
	if err != nil {
		return err
	}

	return report.Render(cmd.ErrOrStderr(), summary, lang)
}
