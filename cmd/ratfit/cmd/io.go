package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/ratfit/ratfit/config"
	"github.com/ratfit/ratfit/store"
	"github.com/ratfit/ratfit/table"
)

// tableFormat returns the format of out: the explicit one, or the one of the
// file extension, or json.
func tableFormat(out config.OutputConfig) (table.Format, error) {
	switch {
	case out.Format != "":
		return table.ParseFormat(out.Format)
	case out.Path != "":
		return table.FormatFromPath(out.Path)
	default:
		return table.FormatJSON, nil
	}
}

// writeTable writes t to out.Path, or to the command output if it is empty.
func writeTable(cmd *cobra.Command, t *table.Table, out config.OutputConfig) (err error) {

	format, err := tableFormat(out)
	if err != nil {
		return err
	}

	if out.Path == "" {
		return t.Encode(cmd.OutOrStdout(), format)
	}

	if err = os.MkdirAll(filepath.Dir(out.Path), 0755); err != nil {
		return xerrors.Errorf("cannot create directory: %w", err)
	}

	f, err := os.Create(out.Path)
	if err != nil {
		return xerrors.Errorf("cannot create table file: %w", err)
	}

	if err = t.Encode(f, format); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// readTable reads the table at path in the format of its extension.
func readTable(path string) (*table.Table, error) {

	format, err := table.FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("cannot open table file: %w", err)
	}
	defer f.Close()

	return table.Decode(f, format)
}

func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(store.SQLiteConfig{Path: cfg.Store.Path})
}
