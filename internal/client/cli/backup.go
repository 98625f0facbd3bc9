package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/menuroll/internal/client/models"
	"github.com/dmitrijs2005/menuroll/internal/filex"
)

func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("Usage: export <file>")
	}
	path, err := filex.ExpandHome(args[0])
	if err != nil {
		return err
	}

	data, err := a.backup.ExportJSON(ctx)
	if err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(path, data, 0o600); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Backup written to %s (%d bytes)\n", path, len(data))
	return nil
}

func (a *App) Import(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usageError("Usage: import <file> [skip|update_if_newer|overwrite]")
	}
	strategy, err := strategyArg(args[1:])
	if err != nil {
		return err
	}
	path, err := filex.ExpandHome(args[0])
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	report, err := a.backup.ImportJSON(ctx, data, strategy)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Import finished (%s): %d records changed\n", strategy, report.Changed())
	fmt.Fprintln(a.out, report)
	return nil
}

func strategyArg(args []string) (models.ImportStrategy, error) {
	s := ""
	if len(args) > 0 {
		s = args[0]
	}
	st, err := models.ParseStrategy(s)
	if err != nil {
		return "", usageError(fmt.Sprintf("Unknown strategy %q, use skip, update_if_newer or overwrite", s))
	}
	return st, nil
}
