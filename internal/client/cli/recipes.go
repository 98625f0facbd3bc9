package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/menuroll/internal/client/models"
)

func parseID(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		return 0, usageError("Usage: " + usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, usageError(fmt.Sprintf("%q is not a valid id", args[0]))
	}
	return id, nil
}

// parseIngredient reads "name, amount, unit". Amount and unit are optional.
func parseIngredient(line string) models.Ingredient {
	parts := strings.SplitN(line, ",", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return models.Ingredient{
		Name:   strings.TrimSpace(parts[0]),
		Amount: strings.TrimSpace(parts[1]),
		Unit:   strings.TrimSpace(parts[2]),
	}
}

func parseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

func categoryNames() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// readRecipe prompts for every editable field of r, offering its current
// values as defaults.
func (a *App) readRecipe(r *models.Recipe, editing bool) error {
	var err error
	if r.Name, err = GetDefaultText(a.reader, "Name", r.Name, a.out); err != nil {
		return err
	}

	cat, err := GetDefaultText(a.reader, "Category ("+categoryNames()+")", string(r.Category), a.out)
	if err != nil {
		return err
	}
	if r.Category, err = models.ParseCategory(cat); err != nil {
		return err
	}

	diff, err := GetDefaultText(a.reader, "Difficulty (easy, medium, hard)", string(r.Difficulty), a.out)
	if err != nil {
		return err
	}
	if r.Difficulty, err = models.ParseDifficulty(diff); err != nil {
		return err
	}

	if r.EstimatedMinutes, err = GetInt(a.reader, "Estimated minutes", r.EstimatedMinutes, a.out); err != nil {
		return err
	}
	if r.Icon, err = GetDefaultText(a.reader, "Icon", r.Icon, a.out); err != nil {
		return err
	}

	tags, err := GetDefaultText(a.reader, "Tags, comma separated", strings.Join(r.Tags, ","), a.out)
	if err != nil {
		return err
	}
	r.Tags = parseTags(tags)

	if editing {
		replace, err := GetYesNo(a.reader, "Replace ingredients and steps?", false, a.out)
		if err != nil || !replace {
			return err
		}
	}

	lines, err := GetLines(a.reader, "Ingredients, one per line as: name, amount, unit", a.out)
	if err != nil {
		return err
	}
	r.Ingredients = make([]models.Ingredient, 0, len(lines))
	for _, l := range lines {
		r.Ingredients = append(r.Ingredients, parseIngredient(l))
	}

	lines, err = GetLines(a.reader, "Steps, one per line", a.out)
	if err != nil {
		return err
	}
	r.Steps = make([]models.Step, 0, len(lines))
	for i, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			r.Steps = append(r.Steps, models.Step{Order: i + 1, Text: l})
		}
	}
	return nil
}

func (a *App) AddRecipe(ctx context.Context, _ []string) error {
	r := &models.Recipe{}
	if err := a.readRecipe(r, false); err != nil {
		return err
	}
	if err := a.recipes.Add(ctx, r); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Recipe added (id %d)\n", r.ID)
	return nil
}

func (a *App) EditRecipe(ctx context.Context, args []string) error {
	id, err := parseID(args, "edit <id>")
	if err != nil {
		return err
	}
	r, err := a.recipes.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := a.readRecipe(r, true); err != nil {
		return err
	}
	if err := a.recipes.Update(ctx, r); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Recipe updated")
	return nil
}

// parseFilter reads list arguments: a category name, "#tag" and "deleted".
func parseFilter(args []string) (models.RecipeFilter, error) {
	var f models.RecipeFilter
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "#"):
			f.Tag = strings.TrimPrefix(arg, "#")
		case strings.EqualFold(arg, "deleted"):
			f.OnlyDeleted = true
		case strings.EqualFold(arg, "all"):
			f.IncludeDeleted = true
		default:
			c, err := models.ParseCategory(arg)
			if err != nil {
				return f, usageError(fmt.Sprintf("Unknown category %q, use one of: %s", arg, categoryNames()))
			}
			f.Category = c
		}
	}
	return f, nil
}

func (a *App) ListRecipes(ctx context.Context, args []string) error {
	f, err := parseFilter(args)
	if err != nil {
		return err
	}
	list, err := a.recipes.List(ctx, f)
	if err != nil {
		return err
	}
	printRecipes(a.out, list)
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("Usage: search <text>")
	}
	list, err := a.recipes.Search(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	printRecipes(a.out, list)
	return nil
}

func (a *App) ShowRecipe(ctx context.Context, args []string) error {
	id, err := parseID(args, "show <id>")
	if err != nil {
		return err
	}
	r, err := a.recipes.Get(ctx, id)
	if err != nil {
		return err
	}
	printRecipe(a.out, r)
	return nil
}

func (a *App) DeleteRecipe(ctx context.Context, args []string) error {
	id, err := parseID(args, "delete <id>")
	if err != nil {
		return err
	}
	if err := a.recipes.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Recipe moved to trash (use restore to undo)")
	return nil
}

func (a *App) RestoreRecipe(ctx context.Context, args []string) error {
	id, err := parseID(args, "restore <id>")
	if err != nil {
		return err
	}
	if err := a.recipes.Restore(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Recipe restored")
	return nil
}
