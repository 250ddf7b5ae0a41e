package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ratfit/ratfit/approximation/rational"
	"github.com/ratfit/ratfit/utils/bignum"
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit a single rational minimax approximation",
	Long: `Fits p(x)/q(x) of degrees (n, m) to the target function on [start, end]
and prints the coefficients, the peak error and the alternating extrema.

Examples:
  ratfit fit -f exp -n 3 -m 2
  ratfit fit -f phi --start 0 --end 1 --exchange`,
	Args: cobra.NoArgs,
	RunE: runFit,
}

func init() {
	rootCmd.AddCommand(fitCmd)
}

func runFit(cmd *cobra.Command, args []string) (err error) {

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	a := cfg.Arithmetic()

	target, start, end, err := cfg.Target(a)
	if err != nil {
		return err
	}

	params, err := cfg.FitParameters(a, target, logger)
	if err != nil {
		return err
	}

	fitter, err := rational.NewFitter(params)
	if err != nil {
		return err
	}

	fit, err := fitter.Fit(start, end)
	if err != nil {
		return err
	}

	digits := cfg.Precision.Digits
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "function    %s on [%s, %s]\n", target.Name, bignum.Text(start, 16), bignum.Text(end, 16))
	fmt.Fprintf(out, "degrees     (%d, %d)\n", cfg.Fit.Numerator, cfg.Fit.Denominator)
	fmt.Fprintf(out, "peak error  %s\n", bignum.Text(fit.PeakError, 10))
	fmt.Fprintf(out, "spread      %.3g\n", fit.Spread())
	fmt.Fprintf(out, "rounds      %d (%d exchanges)\n", fit.Rounds, fit.Exchanges)
	fmt.Fprintf(out, "%s\n", fit.Text(digits))

	for _, e := range fit.Extrema {
		fmt.Fprintf(out, "  x = %-24s e = %s\n", bignum.Text(e.X, 20), bignum.Text(e.Error, 10))
	}

	return nil
}
