package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastebook/backend/internal/model"
)

func validForm() RawRecipeForm {
	return RawRecipeForm{
		Title:        "Banana Bread",
		Category:     "Bread",
		CookingTime:  "45",
		Difficulty:   "Easy",
		Tags:         `["Quick", " family favorite "]`,
		Ingredients:  `[{"name": " Banana ", "amount": "3"}, {"name": "flour", "amount": " 250g "}]`,
		Instructions: `[" Mash the bananas. ", "Bake for 45 minutes."]`,
	}
}

func TestParseNewRecipeNormalizes(t *testing.T) {
	input, err := ParseNewRecipe(validForm())
	require.NoError(t, err)

	assert.Equal(t, "Banana Bread", input.Title)
	assert.Equal(t, "bread", input.Category)
	assert.Equal(t, 45, input.CookingTime)
	assert.Equal(t, "easy", input.Difficulty)
	assert.Equal(t, []string{"quick", "family favorite"}, input.Tags)
	assert.Equal(t, []model.Ingredient{
		{Name: "Banana", Amount: "3"},
		{Name: "flour", Amount: "250g"},
	}, input.Ingredients)
	assert.Equal(t, []string{"Mash the bananas.", "Bake for 45 minutes."}, input.Instructions)
}

func TestParseNewRecipeMissingFieldsNamesAll(t *testing.T) {
	form := validForm()
	form.Title = "   "
	form.Ingredients = ""
	form.Instructions = ""

	_, err := ParseNewRecipe(form)
	require.Error(t, err)

	verr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindMissingFields, verr.Kind)
	assert.ElementsMatch(t, []string{"title", "ingredients", "instructions"}, verr.Fields)
	assert.Contains(t, verr.Message, "title")
	assert.Contains(t, verr.Message, "ingredients")
	assert.Contains(t, verr.Message, "instructions")
}

func TestParseNewRecipeMalformedJSON(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RawRecipeForm)
		field  string
	}{
		{"ingredients", func(f *RawRecipeForm) { f.Ingredients = `[{"name": "x"` }, "ingredients"},
		{"instructions", func(f *RawRecipeForm) { f.Instructions = `not json` }, "instructions"},
		{"tags", func(f *RawRecipeForm) { f.Tags = `{broken` }, "tags"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := validForm()
			tc.mutate(&form)

			_, err := ParseNewRecipe(form)
			require.Error(t, err)
			verr := err.(*Error)
			assert.Equal(t, KindMalformedJSON, verr.Kind)
			assert.Equal(t, []string{tc.field}, verr.Fields)
		})
	}
}

func TestParseNewRecipeShape(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RawRecipeForm)
		field  string
	}{
		{"empty ingredients", func(f *RawRecipeForm) { f.Ingredients = `[]` }, "ingredients"},
		{"blank ingredient name", func(f *RawRecipeForm) {
			f.Ingredients = `[{"name": "  ", "amount": "3"}]`
		}, "ingredients"},
		{"missing amount", func(f *RawRecipeForm) {
			f.Ingredients = `[{"name": "banana", "amount": ""}]`
		}, "ingredients"},
		{"empty instructions", func(f *RawRecipeForm) { f.Instructions = `[]` }, "instructions"},
		{"blank instruction step", func(f *RawRecipeForm) {
			f.Instructions = `["Mix.", "   "]`
		}, "instructions"},
		{"non-numeric cooking time", func(f *RawRecipeForm) { f.CookingTime = "soon" }, "cookingTime"},
		{"negative cooking time", func(f *RawRecipeForm) { f.CookingTime = "-5" }, "cookingTime"},
		{"unknown difficulty", func(f *RawRecipeForm) { f.Difficulty = "expert" }, "difficulty"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := validForm()
			tc.mutate(&form)

			_, err := ParseNewRecipe(form)
			require.Error(t, err)
			verr := err.(*Error)
			assert.Equal(t, KindInvalidShape, verr.Kind)
			assert.Equal(t, []string{tc.field}, verr.Fields)
		})
	}
}

func TestParseNewRecipeInvalidCategoryEnumeratesSet(t *testing.T) {
	form := validForm()
	form.Category = "Sushi"

	_, err := ParseNewRecipe(form)
	require.Error(t, err)

	verr := err.(*Error)
	assert.Equal(t, KindInvalidCategory, verr.Kind)
	for _, c := range model.Categories {
		assert.Contains(t, verr.Message, c)
	}
}

func TestParseNewRecipeTagsKeptInOrderWithoutDedup(t *testing.T) {
	form := validForm()
	form.Tags = `["Sweet", "sweet", " SWEET "]`

	input, err := ParseNewRecipe(form)
	require.NoError(t, err)
	assert.Equal(t, []string{"sweet", "sweet", "sweet"}, input.Tags)
}

func TestParseNewRecipeOptionalFields(t *testing.T) {
	form := validForm()
	form.Tags = ""
	form.CookingTime = ""
	form.Difficulty = ""

	input, err := ParseNewRecipe(form)
	require.NoError(t, err)
	assert.Empty(t, input.Tags)
	assert.Zero(t, input.CookingTime)
	assert.Empty(t, input.Difficulty)
}

func TestRatingValue(t *testing.T) {
	for _, v := range []int{1, 2, 3, 4, 5} {
		assert.NoError(t, RatingValue(v))
	}
	for _, v := range []int{0, 6, -1, 100} {
		err := RatingValue(v)
		require.Error(t, err)
		assert.Equal(t, KindInvalidRating, err.(*Error).Kind)
	}
}

func TestCommentText(t *testing.T) {
	trimmed, err := CommentText("  lovely recipe  ")
	require.NoError(t, err)
	assert.Equal(t, "lovely recipe", trimmed)

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := CommentText(text)
		require.Error(t, err)
		assert.Equal(t, KindEmptyComment, err.(*Error).Kind)
	}
}
