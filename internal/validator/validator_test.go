package validator

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkodi/foodgram/internal/model"
)

func validRecipe() model.RecipeWrite {
	return model.RecipeWrite{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		Image:       "data:image/png;base64,iVBORw0KGgo=",
		CookingTime: 20,
		Tags:        []int64{1, 2},
		Ingredients: []model.IngredientAmount{
			{ID: 1, Amount: 200},
			{ID: 2, Amount: 2},
		},
	}
}

func TestStruct_ValidRecipe(t *testing.T) {
	r := validRecipe()
	assert.Nil(t, New().Struct(&r))
}

func TestStruct_RecipeViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *model.RecipeWrite)
		field  string
	}{
		{"duplicate tags", func(r *model.RecipeWrite) { r.Tags = []int64{1, 1} }, "tags"},
		{"empty tags", func(r *model.RecipeWrite) { r.Tags = []int64{} }, "tags"},
		{"missing tags", func(r *model.RecipeWrite) { r.Tags = nil }, "tags"},
		{"empty ingredients", func(r *model.RecipeWrite) { r.Ingredients = []model.IngredientAmount{} }, "ingredients"},
		{"duplicate ingredients", func(r *model.RecipeWrite) {
			r.Ingredients = []model.IngredientAmount{{ID: 3, Amount: 1}, {ID: 3, Amount: 5}}
		}, "ingredients"},
		{"zero amount", func(r *model.RecipeWrite) { r.Ingredients[1].Amount = 0 }, "ingredients[1].amount"},
		{"negative amount", func(r *model.RecipeWrite) { r.Ingredients[0].Amount = -3 }, "ingredients[0].amount"},
		{"missing image", func(r *model.RecipeWrite) { r.Image = "" }, "image"},
		{"zero cooking time", func(r *model.RecipeWrite) { r.CookingTime = 0 }, "cooking_time"},
		{"cooking time too long", func(r *model.RecipeWrite) { r.CookingTime = 1000 }, "cooking_time"},
		{"missing name", func(r *model.RecipeWrite) { r.Name = "" }, "name"},
		{"missing text", func(r *model.RecipeWrite) { r.Text = "" }, "text"},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecipe()
			tt.mutate(&r)

			appErr := v.Struct(&r)
			require.NotNil(t, appErr)
			assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}
}

func TestStruct_ReportsEveryField(t *testing.T) {
	r := validRecipe()
	r.Tags = []int64{4, 4}
	r.Image = ""
	r.CookingTime = 0

	appErr := New().Struct(&r)
	require.NotNil(t, appErr)
	assert.Len(t, appErr.Fields, 3)
	assert.Equal(t, "must not contain duplicates", appErr.Fields["tags"])
}
