package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/client/models"
	"github.com/dmitrijs2005/menuroll/internal/client/repositories/recipes"
	"github.com/dmitrijs2005/menuroll/internal/logging"
	"github.com/dmitrijs2005/menuroll/internal/timex"
	"github.com/google/uuid"
)

// RecipeService manages the local recipe collection.
type RecipeService interface {
	// Add validates r, assigns a new SyncID and timestamps, and stores it.
	Add(ctx context.Context, r *models.Recipe) error
	// Update stores the editable fields of r and bumps LastModified.
	Update(ctx context.Context, r *models.Recipe) error
	Get(ctx context.Context, id int64) (*models.Recipe, error)
	List(ctx context.Context, f models.RecipeFilter) ([]models.Recipe, error)
	// Delete soft-deletes the recipe so the deletion can be synced.
	Delete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	// Search matches active recipes by name, tag or ingredient, ignoring case.
	Search(ctx context.Context, query string) ([]models.Recipe, error)
	// Counts returns the number of active recipes per category.
	Counts(ctx context.Context) (map[models.Category]int, error)
}

type recipeService struct {
	db  *sql.DB
	log logging.Logger
	now func() time.Time
}

func NewRecipeService(db *sql.DB, log logging.Logger) RecipeService {
	return &recipeService{db: db, log: log, now: timex.Now}
}

func (s *recipeService) repo() recipes.Repository {
	return recipes.NewSQLiteRepository(s.db)
}

func (s *recipeService) Add(ctx context.Context, r *models.Recipe) error {
	r.Normalize()
	if err := r.Validate(); err != nil {
		return err
	}

	now := s.now()
	r.SyncID = uuid.NewString()
	r.Deleted = false
	r.CreatedAt = now
	r.LastModified = now

	if err := s.repo().Create(ctx, r); err != nil {
		return fmt.Errorf("saving recipe: %w", err)
	}
	s.log.Debug(ctx, "recipe added", "id", r.ID, "sync_id", r.SyncID, "category", r.Category)
	return nil
}

func (s *recipeService) Update(ctx context.Context, r *models.Recipe) error {
	r.Normalize()
	if err := r.Validate(); err != nil {
		return err
	}

	repo := s.repo()
	cur, err := repo.GetByID(ctx, r.ID)
	if err != nil {
		return fmt.Errorf("loading recipe %d: %w", r.ID, err)
	}

	r.SyncID = cur.SyncID
	r.CreatedAt = cur.CreatedAt
	r.Deleted = cur.Deleted
	r.LastModified = bump(s.now(), cur.LastModified)

	if err := repo.Update(ctx, r); err != nil {
		return fmt.Errorf("updating recipe %d: %w", r.ID, err)
	}
	return nil
}

func (s *recipeService) Get(ctx context.Context, id int64) (*models.Recipe, error) {
	r, err := s.repo().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading recipe %d: %w", id, err)
	}
	return r, nil
}

func (s *recipeService) List(ctx context.Context, f models.RecipeFilter) ([]models.Recipe, error) {
	return s.repo().List(ctx, f)
}

func (s *recipeService) Delete(ctx context.Context, id int64) error {
	repo := s.repo()
	cur, err := repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("loading recipe %d: %w", id, err)
	}
	if err := repo.SoftDelete(ctx, id, bump(s.now(), cur.LastModified)); err != nil {
		return fmt.Errorf("deleting recipe %d: %w", id, err)
	}
	return nil
}

func (s *recipeService) Restore(ctx context.Context, id int64) error {
	repo := s.repo()
	cur, err := repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("loading recipe %d: %w", id, err)
	}
	if err := repo.Restore(ctx, id, bump(s.now(), cur.LastModified)); err != nil {
		return fmt.Errorf("restoring recipe %d: %w", id, err)
	}
	return nil
}

func (s *recipeService) Search(ctx context.Context, query string) ([]models.Recipe, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	all, err := s.repo().List(ctx, models.RecipeFilter{})
	if err != nil {
		return nil, err
	}
	if q == "" {
		return all, nil
	}

	var out []models.Recipe
	for _, r := range all {
		if matches(&r, q) {
			out = append(out, r)
		}
	}
	return out, nil
}

func matches(r *models.Recipe, q string) bool {
	if strings.Contains(strings.ToLower(r.Name), q) || r.HasTag(q) {
		return true
	}
	for _, in := range r.Ingredients {
		if strings.Contains(strings.ToLower(in.Name), q) {
			return true
		}
	}
	return false
}

func (s *recipeService) Counts(ctx context.Context) (map[models.Category]int, error) {
	return s.repo().CountByCategory(ctx)
}

// bump returns now, or prev plus a millisecond when the clock has not moved
// past prev. LastModified must grow on every local edit.
func bump(now, prev time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Millisecond)
}
