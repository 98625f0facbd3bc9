package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/menuroll/internal/client/models"
)

// parseCounts reads "category=n" pairs.
func parseCounts(args []string) (map[models.Category]int, error) {
	counts := make(map[models.Category]int, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, usageError(fmt.Sprintf("Expected category=count, got %q", arg))
		}
		c, err := models.ParseCategory(name)
		if err != nil {
			return nil, usageError(fmt.Sprintf("Unknown category %q, use one of: %s", name, categoryNames()))
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, usageError(fmt.Sprintf("%q is not a valid count", value))
		}
		counts[c] = n
	}
	return counts, nil
}

func (a *App) Roll(ctx context.Context, args []string) error {
	var (
		counts map[models.Category]int
		err    error
	)
	if len(args) > 0 {
		counts, err = parseCounts(args)
	} else {
		counts, err = a.settings.DefaultCounts(ctx)
	}
	if err != nil {
		return err
	}

	menu, err := a.roller.Roll(ctx, models.RollRequest{Counts: counts})
	if err != nil {
		return err
	}
	a.menu = menu
	printMenu(a.out, menu)
	return nil
}

func (a *App) Reroll(ctx context.Context, args []string) error {
	if a.menu == nil {
		return errNoMenu
	}
	if len(args) == 0 {
		return usageError("Usage: reroll <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return usageError(fmt.Sprintf("%q is not a valid dish number", args[0]))
	}
	if err := a.roller.Reroll(ctx, a.menu, n-1); err != nil {
		return err
	}
	printMenu(a.out, a.menu)
	return nil
}

func (a *App) Accept(ctx context.Context, args []string) error {
	if a.menu == nil {
		return errNoMenu
	}
	summary := strings.Join(args, " ")
	if summary == "" {
		var err error
		if summary, err = GetMultiline(a.reader, "Notes for this menu (optional)", a.out); err != nil {
			return err
		}
	}

	rec, err := a.roller.Accept(ctx, a.menu, summary)
	if err != nil {
		return err
	}
	a.menu = nil
	fmt.Fprintf(a.out, "Menu saved to history (id %d)\n", rec.ID)
	printChecklist(a.out, rec.Checklist)
	return nil
}

// Defaults shows the default roll counts, or replaces them when given
// category=n pairs.
func (a *App) Defaults(ctx context.Context, args []string) error {
	if len(args) > 0 {
		counts, err := parseCounts(args)
		if err != nil {
			return err
		}
		if err := a.settings.SetDefaultCounts(ctx, counts); err != nil {
			return err
		}
	}

	counts, err := a.settings.DefaultCounts(ctx)
	if err != nil {
		return err
	}
	var parts []string
	for _, c := range models.Categories {
		if n := counts[c]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", c, n))
		}
	}
	fmt.Fprintln(a.out, "Default roll:", strings.Join(parts, " "))
	return nil
}
