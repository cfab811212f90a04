package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/tastebook/backend/internal/model"
	"github.com/tastebook/backend/internal/validate"
)

// ObjectStore is the external object-storage collaborator for recipe
// images. Upload failures are surfaced distinctly from validation errors;
// Delete is called best-effort by consumers.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, suggestedName string) (string, error)
	Delete(ctx context.Context, url string) error
}

// ListFilter narrows ListRecipes results. Zero-value fields are ignored;
// set fields combine with AND semantics.
type ListFilter struct {
	// Category matches exactly against the stored (lower-case) category.
	Category string
	// Tags matches any recipe whose tag set intersects this set.
	Tags []string
	// Search is a case-insensitive substring match over the title and
	// ingredient names.
	Search string
}

// CategoryCount is one row of the per-category recipe counts.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// RatingStats is the derived pair returned by AppendRating.
type RatingStats struct {
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int     `json:"ratings_count"`
}

// IRecipeService is the recipe aggregate operations surface consumed by
// the API layer.
type IRecipeService interface {
	CreateRecipe(ctx context.Context, input *validate.NewRecipeInput, image []byte, imageName string) (*model.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	ListRecipes(ctx context.Context, filter ListFilter) ([]*model.Recipe, error)
	DeleteRecipe(ctx context.Context, id uuid.UUID) error
	AppendRating(ctx context.Context, id uuid.UUID, value int) (*RatingStats, error)
	AppendComment(ctx context.Context, id uuid.UUID, text, author string) (*model.Comment, error)
	DistinctTags(ctx context.Context) ([]string, error)
	CountByCategory(ctx context.Context) ([]CategoryCount, error)
}
