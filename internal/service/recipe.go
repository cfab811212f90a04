package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tastebook/backend/internal/model"
	"github.com/tastebook/backend/internal/validate"
)

const (
	tagsCacheKey     = "tastebook:tags"
	categoryCacheKey = "tastebook:category_counts"
	statsCacheTTL    = 5 * time.Minute
)

// RecipeService handles recipe aggregate operations
type RecipeService struct {
	db    *gorm.DB
	store ObjectStore
	cache *redis.Client
}

// NewRecipeService creates a new RecipeService instance. store and cache
// may be nil; without a store image handling is disabled, without a cache
// tag/category stats are computed on every call.
func NewRecipeService(db *gorm.DB, store ObjectStore, cache *redis.Client) *RecipeService {
	return &RecipeService{
		db:    db,
		store: store,
		cache: cache,
	}
}

// CreateRecipe persists a new recipe built from validated input. When image
// data is given it is uploaded first; an upload failure aborts the whole
// creation so no recipe is stored with a broken image reference.
func (s *RecipeService) CreateRecipe(ctx context.Context, input *validate.NewRecipeInput, image []byte, imageName string) (*model.Recipe, error) {
	var imageURL string
	if len(image) > 0 {
		if s.store == nil {
			return nil, fmt.Errorf("%w: no object store configured", ErrUploadFailed)
		}
		url, err := s.store.Upload(ctx, image, imageName)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	recipe := &model.Recipe{
		Title:        input.Title,
		Category:     input.Category,
		CookingTime:  input.CookingTime,
		Difficulty:   input.Difficulty,
		Tags:         input.Tags,
		Ingredients:  input.Ingredients,
		Instructions: input.Instructions,
		ImageURL:     imageURL,
		Ratings:      model.JSONBRatings{},
		Comments:     model.JSONBComments{},
	}
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, err
	}

	s.invalidateStatsCache(ctx)
	return recipe, nil
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ListRecipes returns recipes matching the filter, newest first. All
// filter fields are optional and combine with AND semantics.
func (s *RecipeService) ListRecipes(ctx context.Context, filter ListFilter) ([]*model.Recipe, error) {
	query := s.db.WithContext(ctx).Model(&model.Recipe{})

	if filter.Category != "" {
		query = query.Where("category = ?", strings.ToLower(strings.TrimSpace(filter.Category)))
	}

	if len(filter.Tags) > 0 {
		// Tags are stored lower-cased in a JSON array; match any of the
		// requested set against the serialized column.
		col := "tags"
		if s.db.Dialector.Name() == "postgres" {
			col = "tags::text"
		}
		conds := make([]string, 0, len(filter.Tags))
		args := make([]interface{}, 0, len(filter.Tags))
		for _, tag := range filter.Tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			conds = append(conds, col+" LIKE ?")
			args = append(args, `%"`+tag+`"%`)
		}
		if len(conds) > 0 {
			query = query.Where(strings.Join(conds, " OR "), args...)
		}
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		if s.db.Dialector.Name() == "postgres" {
			query = query.Where(
				"LOWER(title) LIKE ? OR EXISTS (SELECT 1 FROM jsonb_array_elements(ingredients) AS ing WHERE LOWER(ing->>'name') LIKE ?)",
				like, like,
			)
		} else {
			query = query.Where(
				"LOWER(title) LIKE ? OR EXISTS (SELECT 1 FROM json_each(recipes.ingredients) WHERE LOWER(json_extract(json_each.value, '$.name')) LIKE ?)",
				like, like,
			)
		}
	}

	var recipes []model.Recipe
	if err := query.Order("created_at DESC").Find(&recipes).Error; err != nil {
		return nil, err
	}

	result := make([]*model.Recipe, len(recipes))
	for i := range recipes {
		result[i] = &recipes[i]
	}
	return result, nil
}

// DeleteRecipe removes a recipe. A stored image is deleted best-effort:
// object-storage failures are logged and never fail the operation.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return err
	}

	if recipe.ImageURL != "" && s.store != nil {
		if err := s.store.Delete(ctx, recipe.ImageURL); err != nil {
			log.Printf("[RecipeService] best-effort image delete failed for recipe %s: %v", id, err)
		}
	}

	if err := s.db.WithContext(ctx).Delete(&model.Recipe{}, "id = ?", id).Error; err != nil {
		return err
	}

	s.invalidateStatsCache(ctx)
	return nil
}

// AppendRating appends a rating to a recipe and rewrites the derived
// average/count pair. The load-modify-store cycle runs in a transaction
// with row locking on postgres so concurrent appends cannot lose updates.
func (s *RecipeService) AppendRating(ctx context.Context, id uuid.UUID, value int) (*RatingStats, error) {
	if err := validate.RatingValue(value); err != nil {
		return nil, err
	}

	var stats RatingStats
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.lockRecipe(tx, id)
		if err != nil {
			return err
		}

		recipe.Ratings = append(recipe.Ratings, model.Rating{
			Value:     value,
			CreatedAt: time.Now().UTC(),
		})
		recipe.RecomputeRatingStats()

		if err := tx.Model(&model.Recipe{}).Where("id = ?", id).Updates(map[string]interface{}{
			"ratings":        recipe.Ratings,
			"average_rating": recipe.AverageRating,
			"ratings_count":  recipe.RatingsCount,
		}).Error; err != nil {
			return err
		}

		stats = RatingStats{
			AverageRating: recipe.AverageRating,
			RatingsCount:  recipe.RatingsCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// AppendComment appends a comment to a recipe. Comments are stored in
// insertion order, oldest first. A blank author falls back to "Anonymous".
func (s *RecipeService) AppendComment(ctx context.Context, id uuid.UUID, text, author string) (*model.Comment, error) {
	trimmed, err := validate.CommentText(text)
	if err != nil {
		return nil, err
	}

	author = strings.TrimSpace(author)
	if author == "" {
		author = "Anonymous"
	}

	comment := model.Comment{
		Text:      trimmed,
		Author:    author,
		CreatedAt: time.Now().UTC(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.lockRecipe(tx, id)
		if err != nil {
			return err
		}

		recipe.Comments = append(recipe.Comments, comment)
		return tx.Model(&model.Recipe{}).Where("id = ?", id).
			Update("comments", recipe.Comments).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// DistinctTags returns all tags used by any recipe, deduplicated and
// sorted. Results are cached for a short TTL.
func (s *RecipeService) DistinctTags(ctx context.Context) ([]string, error) {
	var tags []string
	if s.cacheGet(ctx, tagsCacheKey, &tags) {
		return tags, nil
	}

	var rows []model.JSONBStringArray
	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).Pluck("tags", &rows).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	tags = []string{}
	for _, row := range rows {
		for _, tag := range row {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)

	s.cacheSet(ctx, tagsCacheKey, tags)
	return tags, nil
}

// CountByCategory returns recipe counts grouped by category, sorted by
// category name. Results are cached for a short TTL.
func (s *RecipeService) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	var counts []CategoryCount
	if s.cacheGet(ctx, categoryCacheKey, &counts) {
		return counts, nil
	}

	counts = []CategoryCount{}
	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("category").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	s.cacheSet(ctx, categoryCacheKey, counts)
	return counts, nil
}

// lockRecipe loads a recipe inside tx, taking a row lock on dialects that
// support SELECT ... FOR UPDATE.
func (s *RecipeService) lockRecipe(tx *gorm.DB, id uuid.UUID) (*model.Recipe, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var recipe model.Recipe
	if err := q.First(&recipe, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (s *RecipeService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[RecipeService] cache read failed for %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("[RecipeService] stale cache entry for %s: %v", key, err)
		return false
	}
	return true
}

func (s *RecipeService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, statsCacheTTL).Err(); err != nil {
		log.Printf("[RecipeService] cache write failed for %s: %v", key, err)
	}
}

func (s *RecipeService) invalidateStatsCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, tagsCacheKey, categoryCacheKey).Err(); err != nil {
		log.Printf("[RecipeService] cache invalidation failed: %v", err)
	}
}
