package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus(ctx context.Context) string {
	s := ""
	if counts, err := a.recipes.Counts(ctx); err == nil {
		n := 0
		for _, c := range counts {
			n += c
		}
		s = fmt.Sprintf("%d recipes", n)
	}
	if a.menu != nil {
		s += fmt.Sprintf(", menu of %d", len(a.menu.Items))
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root prints the banner and runs the REPL on the app's input.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to menuroll (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}
