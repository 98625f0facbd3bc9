package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Prefs lists the preferences that travel in backups, or sets one when
// given a name and a value.
func (a *App) Prefs(ctx context.Context, args []string) error {
	if len(args) == 1 {
		return usageError("Usage: prefs [name value]")
	}
	if len(args) > 1 {
		if err := a.settings.SetPreference(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
			return err
		}
	}

	prefs, err := a.settings.Preferences(ctx)
	if err != nil {
		return err
	}
	if len(prefs) == 0 {
		fmt.Fprintln(a.out, "No preferences set")
		return nil
	}
	tw := newTable(a.out)
	for _, k := range slices.Sorted(maps.Keys(prefs)) {
		fmt.Fprintf(tw, "%s\t%s\n", k, prefs[k])
	}
	return tw.Flush()
}
