package cmd

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/ratfit/ratfit/approximation/partition"
	"github.com/ratfit/ratfit/report"
	"github.com/ratfit/ratfit/store"
	"github.com/ratfit/ratfit/table"
	"github.com/ratfit/ratfit/utils"
)

var (
	sweepDegrees string
	sweepJobs    int
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Partition the domain for several degree pairs concurrently",
	Long: `Builds one partition per degree pair, tolerating unresolved intervals, and
prints the summary of each. The number of leaves against the degrees shows
which pair is the cheapest to evaluate for the target error.

Examples:
  ratfit sweep --degrees 2:2,3:3,4:4
  ratfit sweep -f sigmoid --degrees 3:2,4:3 --jobs 2 --save`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	addPartitionFlags(sweepCmd)

	sweepCmd.Flags().StringVar(&sweepDegrees, "degrees", "2:2,3:3,4:4", "comma separated n:m pairs")
	sweepCmd.Flags().IntVarP(&sweepJobs, "jobs", "j", runtime.NumCPU(), "number of concurrent partitions")
}

// parseDegrees parses a comma separated list of n:m pairs.
func parseDegrees(s string) (pairs [][2]int, err error) {

	for _, field := range strings.Split(s, ",") {

		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		parts := strings.Split(field, ":")
		if len(parts) != 2 {
			return nil, xerrors.Errorf("cannot parse degrees %q: expected n:m", field)
		}

		var pair [2]int
		for i, p := range parts {
			if pair[i], err = strconv.Atoi(p); err != nil || pair[i] < 0 {
				return nil, xerrors.Errorf("cannot parse degrees %q: invalid degree %q", field, p)
			}
		}

		pairs = append(pairs, pair)
	}

	if len(pairs) == 0 {
		return nil, xerrors.Errorf("cannot parse degrees %q: no pair", s)
	}

	return pairs, nil
}

func runSweep(cmd *cobra.Command, args []string) (err error) {

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	lang, err := reportLanguage()
	if err != nil {
		return err
	}

	pairs, err := parseDegrees(sweepDegrees)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	var runs store.RunStore
	if cfg.Store.Enabled {
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()
		runs = s
	}

	summaries := make([]*report.Summary, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(utils.Min(utils.Max(sweepJobs, 1), len(pairs)))

	for i, pair := range pairs {

		i, pair := i, pair

		g.Go(func() (err error) {

			c := *cfg
			c.Fit.Numerator, c.Fit.Denominator = pair[0], pair[1]
			c.Partition.TolerateFailures = true

			log := logger.With(zap.Int("n", pair[0]), zap.Int("m", pair[1]))

			a := c.Arithmetic()

			target, start, end, err := c.Target(a)
			if err != nil {
				return err
			}

			params, err := c.PartitionParameters(a, target, log)
			if err != nil {
				return err
			}

			builder, err := partition.NewBuilder(params)
			if err != nil {
				return err
			}

			p, err := builder.Build(gctx, start, end)
			if err != nil {
				return xerrors.Errorf("degrees (%d, %d): %w", pair[0], pair[1], err)
			}

			t := table.FromPartition(p, target.Name, c.Precision.Digits)

			if runs != nil {
				id, err := runs.SaveRun(gctx, t)
				if err != nil {
					return err
				}
				log.Info("run saved", zap.String("id", id))
			}

			summaries[i], err = report.Summarize(t)
			return err
		})
	}

	if err = g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, s := range summaries {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err = report.Render(out, s, lang); err != nil {
			return err
		}
	}

	return nil
}
