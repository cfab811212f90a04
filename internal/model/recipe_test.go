package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecomputeRatingStats(t *testing.T) {
	recipe := &Recipe{}

	recipe.RecomputeRatingStats()
	assert.Equal(t, 0.0, recipe.AverageRating)
	assert.Equal(t, 0, recipe.RatingsCount)

	recipe.Ratings = append(recipe.Ratings, Rating{Value: 4, CreatedAt: time.Now()})
	recipe.RecomputeRatingStats()
	assert.Equal(t, 4.0, recipe.AverageRating)
	assert.Equal(t, 1, recipe.RatingsCount)

	recipe.Ratings = append(recipe.Ratings, Rating{Value: 5, CreatedAt: time.Now()})
	recipe.RecomputeRatingStats()
	assert.InDelta(t, 4.5, recipe.AverageRating, 1e-9)
	assert.Equal(t, 2, recipe.RatingsCount)

	recipe.Ratings = append(recipe.Ratings, Rating{Value: 1, CreatedAt: time.Now()})
	recipe.RecomputeRatingStats()
	assert.InDelta(t, 10.0/3.0, recipe.AverageRating, 1e-9)
	assert.Equal(t, 3, recipe.RatingsCount)
}

func TestRecomputeRatingStatsResetsOnEmpty(t *testing.T) {
	recipe := &Recipe{
		Ratings:       JSONBRatings{{Value: 3}},
		AverageRating: 3,
		RatingsCount:  1,
	}
	recipe.Ratings = nil
	recipe.RecomputeRatingStats()
	assert.Equal(t, 0.0, recipe.AverageRating)
	assert.Equal(t, 0, recipe.RatingsCount)
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory("bread"))
	assert.True(t, ValidCategory("cakes"))
	assert.False(t, ValidCategory("Cakes")) // callers lower-case first
	assert.False(t, ValidCategory("sushi"))
	assert.False(t, ValidCategory(""))
	assert.Len(t, Categories, 11)
}

func TestValidDifficulty(t *testing.T) {
	for _, d := range []string{"easy", "medium", "hard"} {
		assert.True(t, ValidDifficulty(d))
	}
	assert.False(t, ValidDifficulty("expert"))
}

func TestJSONBColumnsRoundTrip(t *testing.T) {
	ingredients := JSONBIngredients{{Name: "flour", Amount: "200g"}, {Name: "egg", Amount: "2"}}
	value, err := ingredients.Value()
	assert.NoError(t, err)

	var scanned JSONBIngredients
	assert.NoError(t, scanned.Scan(value))
	assert.Equal(t, ingredients, scanned)

	// Empty collections serialize as an empty JSON array, not null.
	var empty JSONBRatings
	value, err = empty.Value()
	assert.NoError(t, err)
	assert.Equal(t, "[]", value)

	var comments JSONBComments
	assert.NoError(t, comments.Scan(nil))
	assert.NotNil(t, comments)
	assert.Len(t, comments, 0)
}

func TestRecipeJSONShape(t *testing.T) {
	recipe := &Recipe{
		Title:    "Sourdough Loaf",
		Category: "bread",
	}
	data, err := json.Marshal(recipe)
	assert.NoError(t, err)

	var decoded map[string]interface{}
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Sourdough Loaf", decoded["title"])
	assert.Contains(t, decoded, "average_rating")
	assert.Contains(t, decoded, "ratings_count")
}
