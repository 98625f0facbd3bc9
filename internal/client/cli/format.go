package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/menuroll/internal/client/models"
)

const dateLayout = "2006-01-02 15:04"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printRecipes(w io.Writer, list []models.Recipe) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No recipes")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tDIFFICULTY\tMIN\tTAGS")
	for _, r := range list {
		name := r.Name
		if r.Icon != "" {
			name = r.Icon + " " + name
		}
		if r.Deleted {
			name += " (deleted)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, name, r.Category, r.Difficulty, r.EstimatedMinutes, strings.Join(r.Tags, ", "))
	}
	_ = tw.Flush()
}

func printRecipe(w io.Writer, r *models.Recipe) {
	fmt.Fprintf(w, "%s %s\n", r.Icon, r.Name)
	if r.Deleted {
		fmt.Fprintln(w, "(in trash)")
	}
	fmt.Fprintf(w, "Category: %s, difficulty: %s, about %d min\n", r.Category, r.Difficulty, r.EstimatedMinutes)
	if len(r.Tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(r.Tags, ", "))
	}

	if len(r.Ingredients) > 0 {
		fmt.Fprintln(w, "Ingredients:")
		for _, in := range r.Ingredients {
			fmt.Fprintf(w, "  - %s\n", strings.TrimSpace(strings.Join([]string{in.Name, in.Amount, in.Unit}, " ")))
		}
	}
	if len(r.Steps) > 0 {
		fmt.Fprintln(w, "Steps:")
		for i, s := range r.Steps {
			fmt.Fprintf(w, "  %d. %s\n", i+1, s.Text)
		}
	}
	fmt.Fprintf(w, "Updated %s\n", r.LastModified.Local().Format(dateLayout))
}

func printMenu(w io.Writer, m *models.Menu) {
	tw := newTable(w)
	for i, r := range m.Items {
		fmt.Fprintf(tw, "%d.\t%s %s\t%s\t%d min\n", i+1, r.Icon, r.Name, r.Category, r.EstimatedMinutes)
	}
	_ = tw.Flush()

	for _, c := range models.Categories {
		if n := m.Shortfalls[c]; n > 0 {
			fmt.Fprintf(w, "Not enough %s recipes: %d missing\n", c, n)
		}
	}
	if len(m.Items) > 0 {
		fmt.Fprintln(w, "Use reroll <n> to swap a dish or accept to save the menu")
	}
}

func printChecklist(w io.Writer, items []models.PrepItem) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w, "Checklist:")
	for i, it := range items {
		mark := " "
		if it.Done {
			mark = "x"
		}
		fmt.Fprintf(w, "  %2d. [%s] %s\n", i+1, mark, strings.TrimSpace(strings.Join([]string{it.Name, it.Amount, it.Unit}, " ")))
	}
}

func printHistory(w io.Writer, list []models.HistoryRecord) {
	if len(list) == 0 {
		fmt.Fprintln(w, "History is empty")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tDISHES\tCHECKLIST\tSUMMARY")
	for _, h := range list {
		done, total := h.ChecklistProgress()
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d/%d\t%s\n",
			h.ID, h.CookedAt.Local().Format(dateLayout), h.TotalDishes(), done, total, firstLine(h.Summary))
	}
	_ = tw.Flush()
}

func printHistoryRecord(w io.Writer, h *models.HistoryRecord) {
	fmt.Fprintf(w, "Menu of %s\n", h.CookedAt.Local().Format(dateLayout))
	if h.Summary != "" {
		fmt.Fprintln(w, h.Summary)
	}
	for _, s := range h.Snapshots {
		fmt.Fprintf(w, "  - %s %s (%s)\n", s.Icon, s.Name, s.Category)
	}
	printChecklist(w, h.Checklist)
}

func printSyncConfig(w io.Writer, cfg *models.SyncConfig) {
	if !cfg.Configured() {
		fmt.Fprintln(w, "Sync is not configured")
		return
	}
	r := cfg.Redacted()
	tw := newTable(w)
	fmt.Fprintf(tw, "Server:\t%s\n", r.ServerURL)
	fmt.Fprintf(tw, "Username:\t%s\n", r.Username)
	fmt.Fprintf(tw, "Password:\t%s\n", r.Password)
	fmt.Fprintf(tw, "Remote folder:\t%s\n", r.RemotePath)
	fmt.Fprintf(tw, "Encryption:\t%s\n", onOff(cfg.Encrypted()))
	auto := onOff(cfg.AutoSync)
	if cfg.AutoSync {
		auto += ", every " + cfg.AutoSyncInterval.String()
	}
	fmt.Fprintf(tw, "Auto sync:\t%s\n", auto)
	fmt.Fprintf(tw, "Last sync:\t%s\n", lastSync(cfg))
	_ = tw.Flush()
}

func lastSync(cfg *models.SyncConfig) string {
	if cfg.LastSyncStatus == models.SyncStatusNever || cfg.LastSyncAt.IsZero() {
		return "never"
	}
	return fmt.Sprintf("%s, %s (%s)", cfg.LastSyncAt.Local().Format(dateLayout), cfg.LastSyncStatus, cfg.LastSyncMessage)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func firstLine(s string) string {
	s, _, _ = strings.Cut(s, "\n")
	return s
}
