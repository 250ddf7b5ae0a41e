package cmd

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/ratfit/ratfit/approximation/functions"
	"github.com/ratfit/ratfit/utils/bignum"
	"github.com/ratfit/ratfit/utils/sampling"
)

var (
	verifySamples int
	verifySeed    string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check a table against its target function at random points",
	Long: `Evaluates the target function and the table at random points of the domain
and fails if the largest error exceeds the target error. The seed makes the
points reproducible; without it a random seed is drawn and printed.

Examples:
  ratfit verify --table phi.cbor --samples 10000
  ratfit verify --table phi.cbor --seed 72617466697400`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&evalTable, "table", "t", "", "table file")
	verifyCmd.Flags().IntVar(&verifySamples, "samples", 1000, "number of random points")
	verifyCmd.Flags().StringVar(&verifySeed, "seed", "", "hex encoded seed")
	verifyCmd.MarkFlagRequired("table")
}

func runVerify(cmd *cobra.Command, args []string) (err error) {

	t, err := readTable(evalTable)
	if err != nil {
		return err
	}

	var prng *sampling.KeyedPRNG
	if verifySeed != "" {
		var seed []byte
		if seed, err = hex.DecodeString(verifySeed); err != nil {
			return xerrors.Errorf("invalid seed: %w", err)
		}
		prng, err = sampling.NewKeyedPRNG(seed)
	} else {
		prng, err = sampling.NewPRNG()
	}

	if err != nil {
		return err
	}

	a := bignum.NewContext(t.Digits)

	p, err := t.Partition(a)
	if err != nil {
		return err
	}

	target, err := functions.Lookup(t.Function, a)
	if err != nil {
		return err
	}

	peak, skipped, err := p.SampledError(target.F, prng, verifySamples)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "seed          %s\n", hex.EncodeToString(prng.Key()))
	fmt.Fprintf(out, "samples       %d (%d skipped)\n", verifySamples, skipped)

	if peak.X == nil {
		return xerrors.New("no sample in an accepted leaf")
	}

	fmt.Fprintf(out, "max error     %s at x = %s\n", bignum.Text(peak.Error, 6), bignum.Text(peak.X, 20))

	if p.TargetError != nil && new(big.Float).Abs(peak.Error).Cmp(p.TargetError) > 0 {
		return xerrors.Errorf("sampled error %s exceeds the target %s", bignum.Text(peak.Error, 6), t.TargetError)
	}

	return nil
}
