package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ratfit/ratfit/report"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage stored runs",
	Long: `Lists, shows and deletes the tables saved with --save.

Examples:
  ratfit runs list
  ratfit runs show <id> -o phi.yaml
  ratfit runs delete <id>`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the summary of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)

	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum number of runs, 0 for all")
	addOutputFlags(runsShowCmd)
}

func runRunsList(cmd *cobra.Command, args []string) error {

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs")
		return nil
	}

	fmt.Fprintf(out, "%-36s  %-8s  %-7s  %6s  %10s  %s\n", "ID", "FUNCTION", "DEGREES", "LEAVES", "UNRESOLVED", "CREATED")
	for _, r := range runs {
		fmt.Fprintf(out, "%-36s  %-8s  %-7s  %6d  %10d  %s\n",
			r.ID, r.Function, fmt.Sprintf("(%d, %d)", r.NumeratorDegree, r.DenominatorDegree),
			r.Leaves, r.Unresolved, r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}

	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	lang, err := reportLanguage()
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	run, t, err := s.LoadRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("output") {
		return writeTable(cmd, t, cfg.Output)
	}

	summary, err := report.Summarize(t)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run           %s\n", run.ID)
	fmt.Fprintf(out, "created       %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "checksum      %s\n", run.Checksum)

	return report.Render(out, summary, lang)
}

func runRunsDelete(cmd *cobra.Command, args []string) error {

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err = s.DeleteRun(cmd.Context(), args[0]); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}
