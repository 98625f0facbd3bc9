// Package models defines the records menuroll stores locally and carries in
// backup documents.
package models

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/common"
	"github.com/dmitrijs2005/menuroll/internal/timex"
)

// Category groups recipes for menu rolls.
type Category string

const (
	CategoryMeat      Category = "meat"
	CategoryVegetable Category = "vegetable"
	CategorySoup      Category = "soup"
	CategoryStaple    Category = "staple"
	CategoryDessert   Category = "dessert"
	CategoryDrink     Category = "drink"
	CategoryOther     Category = "other"
)

// Categories lists every category in display and roll order.
var Categories = []Category{
	CategoryMeat,
	CategoryVegetable,
	CategorySoup,
	CategoryStaple,
	CategoryDessert,
	CategoryDrink,
	CategoryOther,
}

func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// ParseCategory accepts a category name in any letter case.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown category %q", common.ErrInvalidRecipe, s)
	}
	return c, nil
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ParseDifficulty accepts a difficulty in any letter case; empty means medium.
func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DifficultyMedium, nil
	}
	d := Difficulty(s)
	if !d.Valid() {
		return "", fmt.Errorf("%w: unknown difficulty %q", common.ErrInvalidRecipe, s)
	}
	return d, nil
}

type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
}

type Step struct {
	Order int    `json:"order"`
	Text  string `json:"text"`
}

// Recipe is a dish in the local collection.
type Recipe struct {
	// ID is the local auto-increment key. It never leaves the device.
	ID int64 `json:"-"`

	// SyncID is assigned once at creation and identifies the recipe across
	// devices and backups.
	SyncID string `json:"syncId"`

	Name             string       `json:"name"`
	Category         Category     `json:"category"`
	Difficulty       Difficulty   `json:"difficulty"`
	EstimatedMinutes int          `json:"estimatedMinutes"`
	Icon             string       `json:"icon"`
	ImagePath        string       `json:"imagePath"`
	Ingredients      []Ingredient `json:"ingredients"`
	Steps            []Step       `json:"steps"`
	Tags             []string     `json:"tags"`

	// Deleted is the soft-delete flag. Deleted recipes are still exported so
	// the deletion reaches other devices.
	Deleted bool `json:"deleted"`

	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
}

// Normalize trims text fields, drops empty tags and ingredients, and sorts
// steps by Order. It does not validate.
func (r *Recipe) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	if r.Difficulty == "" {
		r.Difficulty = DifficultyMedium
	}

	tags := r.Tags[:0:0]
	for _, t := range r.Tags {
		t = strings.TrimSpace(t)
		if t != "" && !slices.Contains(tags, t) {
			tags = append(tags, t)
		}
	}
	r.Tags = tags

	ings := r.Ingredients[:0:0]
	for _, in := range r.Ingredients {
		in.Name = strings.TrimSpace(in.Name)
		if in.Name != "" {
			ings = append(ings, in)
		}
	}
	r.Ingredients = ings

	slices.SortStableFunc(r.Steps, func(a, b Step) int { return cmp.Compare(a.Order, b.Order) })
}

// Validate reports whether r can be stored.
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", common.ErrInvalidRecipe)
	}
	if !r.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", common.ErrInvalidRecipe, r.Category)
	}
	if r.Difficulty != "" && !r.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", common.ErrInvalidRecipe, r.Difficulty)
	}
	if r.EstimatedMinutes < 0 {
		return fmt.Errorf("%w: estimated minutes must not be negative", common.ErrInvalidRecipe)
	}
	return nil
}

// HasTag reports whether the recipe carries tag, ignoring case.
func (r *Recipe) HasTag(tag string) bool {
	return slices.ContainsFunc(r.Tags, func(t string) bool { return strings.EqualFold(t, tag) })
}

// Snapshot copies the display fields into a RecipeSnapshot.
func (r *Recipe) Snapshot() RecipeSnapshot {
	return RecipeSnapshot{
		SyncID:           r.SyncID,
		Name:             r.Name,
		Category:         r.Category,
		Difficulty:       r.Difficulty,
		EstimatedMinutes: r.EstimatedMinutes,
		Icon:             r.Icon,
		ImagePath:        r.ImagePath,
	}
}

// MarshalJSON writes timestamps as Unix milliseconds.
func (r Recipe) MarshalJSON() ([]byte, error) {
	type alias Recipe
	return json.Marshal(struct {
		alias
		CreatedAt    int64 `json:"createdAt"`
		LastModified int64 `json:"lastModified"`
	}{alias(r), timex.ToMillis(r.CreatedAt), timex.ToMillis(r.LastModified)})
}

func (r *Recipe) UnmarshalJSON(b []byte) error {
	type alias Recipe
	aux := struct {
		*alias
		CreatedAt    int64 `json:"createdAt"`
		LastModified int64 `json:"lastModified"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.CreatedAt = timex.FromMillis(aux.CreatedAt)
	r.LastModified = timex.FromMillis(aux.LastModified)
	return nil
}

// RecipeFilter narrows a recipe listing. Zero values match everything.
type RecipeFilter struct {
	Category       Category
	Tag            string
	NameContains   string
	IncludeDeleted bool
	OnlyDeleted    bool
}
