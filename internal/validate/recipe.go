// Package validate turns raw request payloads into typed, normalized
// input structures. All string normalization (trimming, lower-casing)
// happens here so the storage layer never has to re-normalize.
package validate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tastebook/backend/internal/model"
)

// Kind classifies a validation failure.
type Kind string

const (
	KindMissingFields   Kind = "missing_fields"
	KindMalformedJSON   Kind = "malformed_json"
	KindInvalidShape    Kind = "invalid_shape"
	KindInvalidCategory Kind = "invalid_category"
	KindInvalidRating   Kind = "invalid_rating"
	KindEmptyComment    Kind = "empty_comment"
)

// Error is a client-caused validation failure. Fields names the offending
// form fields where that is meaningful (all of them, not just the first).
type Error struct {
	Kind    Kind
	Fields  []string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// RawRecipeForm is the untyped multipart payload as received: every field
// is a string, and ingredients/instructions/tags carry JSON-encoded arrays
// as text.
type RawRecipeForm struct {
	Title        string
	Category     string
	CookingTime  string
	Difficulty   string
	Tags         string
	Ingredients  string
	Instructions string
}

// NewRecipeInput is the validated, fully-normalized creation input. Every
// string is in its final stored form.
type NewRecipeInput struct {
	Title        string
	Category     string
	CookingTime  int
	Difficulty   string
	Tags         []string
	Ingredients  []model.Ingredient
	Instructions []string
}

// ParseNewRecipe validates and normalizes a raw form into a NewRecipeInput.
// The returned error, when non-nil, is always a *Error.
func ParseNewRecipe(raw RawRecipeForm) (*NewRecipeInput, error) {
	var missing []string
	if strings.TrimSpace(raw.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(raw.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(raw.Ingredients) == "" {
		missing = append(missing, "ingredients")
	}
	if strings.TrimSpace(raw.Instructions) == "" {
		missing = append(missing, "instructions")
	}
	if len(missing) > 0 {
		return nil, &Error{
			Kind:    KindMissingFields,
			Fields:  missing,
			Message: "missing required fields: " + strings.Join(missing, ", "),
		}
	}

	var ingredients []model.Ingredient
	if err := json.Unmarshal([]byte(raw.Ingredients), &ingredients); err != nil {
		return nil, malformed("ingredients")
	}
	var instructions []string
	if err := json.Unmarshal([]byte(raw.Instructions), &instructions); err != nil {
		return nil, malformed("instructions")
	}
	var tags []string
	if strings.TrimSpace(raw.Tags) != "" {
		if err := json.Unmarshal([]byte(raw.Tags), &tags); err != nil {
			return nil, malformed("tags")
		}
	}

	if len(ingredients) == 0 {
		return nil, shape("ingredients", "ingredients must be a non-empty array of {name, amount} objects")
	}
	for i := range ingredients {
		ingredients[i].Name = strings.TrimSpace(ingredients[i].Name)
		ingredients[i].Amount = strings.TrimSpace(ingredients[i].Amount)
		if ingredients[i].Name == "" || ingredients[i].Amount == "" {
			return nil, shape("ingredients", "each ingredient needs a non-empty name and amount")
		}
	}
	if len(instructions) == 0 {
		return nil, shape("instructions", "instructions must be a non-empty array of steps")
	}
	for i := range instructions {
		instructions[i] = strings.TrimSpace(instructions[i])
		if instructions[i] == "" {
			return nil, shape("instructions", "instruction steps must not be blank")
		}
	}

	category := strings.ToLower(strings.TrimSpace(raw.Category))
	if !model.ValidCategory(category) {
		return nil, &Error{
			Kind:   KindInvalidCategory,
			Fields: []string{"category"},
			Message: fmt.Sprintf("invalid category %q, must be one of: %s",
				category, strings.Join(model.Categories, ", ")),
		}
	}

	// Tags are stored as given after trim+lower: order-preserving, no dedup.
	for i := range tags {
		tags[i] = strings.ToLower(strings.TrimSpace(tags[i]))
	}

	input := &NewRecipeInput{
		Title:        strings.TrimSpace(raw.Title),
		Category:     category,
		Tags:         tags,
		Ingredients:  ingredients,
		Instructions: instructions,
	}

	if len(input.Title) > 200 {
		return nil, shape("title", "title must be at most 200 characters")
	}
	for _, tag := range tags {
		if len(tag) > 50 {
			return nil, shape("tags", "tags must be at most 50 characters")
		}
	}

	if s := strings.TrimSpace(raw.CookingTime); s != "" {
		minutes, err := strconv.Atoi(s)
		if err != nil || minutes <= 0 {
			return nil, shape("cookingTime", "cookingTime must be a positive integer number of minutes")
		}
		input.CookingTime = minutes
	}

	if s := strings.ToLower(strings.TrimSpace(raw.Difficulty)); s != "" {
		if !model.ValidDifficulty(s) {
			return nil, shape("difficulty", fmt.Sprintf("difficulty must be one of: %s",
				strings.Join(model.Difficulties, ", ")))
		}
		input.Difficulty = s
	}

	return input, nil
}

// RatingValue validates a submitted rating value.
func RatingValue(value int) error {
	if value < 1 || value > 5 {
		return &Error{
			Kind:    KindInvalidRating,
			Fields:  []string{"rating"},
			Message: "rating must be an integer between 1 and 5",
		}
	}
	return nil
}

// CommentText validates and trims a submitted comment body.
func CommentText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", &Error{
			Kind:    KindEmptyComment,
			Fields:  []string{"text"},
			Message: "comment text must not be empty",
		}
	}
	return trimmed, nil
}

func malformed(field string) *Error {
	return &Error{
		Kind:    KindMalformedJSON,
		Fields:  []string{field},
		Message: fmt.Sprintf("field %q does not contain valid JSON", field),
	}
}

func shape(field, msg string) *Error {
	return &Error{
		Kind:    KindInvalidShape,
		Fields:  []string{field},
		Message: msg,
	}
}
