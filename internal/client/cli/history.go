package cli

import (
	"context"
	"fmt"
	"strconv"
)

const defaultHistoryLimit = 20

func (a *App) History(ctx context.Context, args []string) error {
	limit := defaultHistoryLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return usageError("Usage: history [limit]")
		}
		limit = n
	}

	list, err := a.history.List(ctx, limit, 0)
	if err != nil {
		return err
	}
	printHistory(a.out, list)
	return nil
}

func (a *App) ShowHistory(ctx context.Context, args []string) error {
	id, err := parseID(args, "showhistory <id>")
	if err != nil {
		return err
	}
	h, err := a.history.Get(ctx, id)
	if err != nil {
		return err
	}
	printHistoryRecord(a.out, h)
	return nil
}

func (a *App) DeleteHistory(ctx context.Context, args []string) error {
	id, err := parseID(args, "deletehistory <id>")
	if err != nil {
		return err
	}
	if err := a.history.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "History record deleted")
	return nil
}

// Check toggles one checklist item. Items are numbered from 1.
func (a *App) Check(ctx context.Context, args []string) error {
	const usage = "Usage: check <id> <item>"
	if len(args) < 2 {
		return usageError(usage)
	}
	id, err := parseID(args, usage)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return usageError(usage)
	}

	h, err := a.history.ToggleChecklistItem(ctx, id, n-1)
	if err != nil {
		return err
	}
	printChecklist(a.out, h.Checklist)
	return nil
}
