package cmd

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/ratfit/ratfit/approximation/functions"
	"github.com/ratfit/ratfit/table"
	"github.com/ratfit/ratfit/utils/bignum"
)

var (
	evalTable string
	evalRun   string
	evalCheck bool
)

var evalCmd = &cobra.Command{
	Use:   "eval x...",
	Short: "Evaluate a table at points",
	Long: `Locates the leaf containing each point and evaluates its approximation at
the precision of the table. With --check, the target function and the error
are printed too.

Examples:
  ratfit eval --table phi.json 0.5 1 3.25
  ratfit eval --run 8c0e... --check 0.1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVarP(&evalTable, "table", "t", "", "table file")
	evalCmd.Flags().StringVar(&evalRun, "run", "", "id of a stored run")
	evalCmd.Flags().BoolVar(&evalCheck, "check", false, "print the target function and the error")
}

func runEval(cmd *cobra.Command, args []string) (err error) {

	var t *table.Table

	switch {
	case evalTable != "" && evalRun != "":
		return xerrors.New("--table and --run are exclusive")
	case evalTable != "":
		if t, err = readTable(evalTable); err != nil {
			return err
		}
	case evalRun != "":
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		if _, t, err = s.LoadRun(cmd.Context(), evalRun); err != nil {
			return err
		}
	default:
		return xerrors.New("one of --table or --run is required")
	}

	a := bignum.NewContext(t.Digits)

	p, err := t.Partition(a)
	if err != nil {
		return err
	}

	var target functions.Target
	if evalCheck {
		if target, err = functions.Lookup(t.Function, a); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()

	for _, arg := range args {

		x, err := a.Parse(arg)
		if err != nil {
			return err
		}

		y, err := p.Evaluate(x)
		if err != nil {
			return err
		}

		if !evalCheck {
			fmt.Fprintf(out, "%s\t%s\n", arg, bignum.Text(y, t.Digits))
			continue
		}

		fx := target.F(x)
		e := new(big.Float).Sub(fx, y)

		fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", arg, bignum.Text(y, t.Digits), bignum.Text(fx, t.Digits), bignum.Text(e, 6))
	}

	return nil
}
