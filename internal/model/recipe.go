package model

import "time"

// Tag is a recipe label such as "breakfast"
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Ingredient is a named product with its measurement unit
type Ingredient struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// IngredientAmount is one (ingredient, quantity) pair of a recipe write
type IngredientAmount struct {
	ID     int64 `json:"id" validate:"required,gt=0"`
	Amount int   `json:"amount" validate:"required,gte=1"`
}

// IngredientLine is a stored recipe ingredient joined with its ingredient
type IngredientLine struct {
	RecipeID        int64  `json:"-"`
	IngredientID    int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// IngredientTotal is the aggregated quantity of one ingredient across a cart
type IngredientTotal struct {
	IngredientID    int64
	Name            string
	MeasurementUnit string
	Amount          int
}

// Recipe is the stored recipe row with its relations
type Recipe struct {
	ID          int64
	AuthorID    int64
	Name        string
	Text        string
	Image       string
	CookingTime int
	CreatedAt   time.Time
	Tags        []Tag
	Ingredients []IngredientLine
}

// RecipeWrite is the API request body for recipe create and update.
// Update takes the same body: tags and ingredients are always replaced whole.
type RecipeWrite struct {
	Name        string             `json:"name" validate:"required,max=256"`
	Text        string             `json:"text" validate:"required"`
	Image       string             `json:"image" validate:"required"`
	CookingTime int                `json:"cooking_time" validate:"required,gte=1,lte=999"`
	Tags        []int64            `json:"tags" validate:"required,min=1,unique,dive,gt=0"`
	Ingredients []IngredientAmount `json:"ingredients" validate:"required,min=1,unique=ID,dive"`
}

// RecipeFilter narrows a recipe listing
type RecipeFilter struct {
	AuthorID         int64
	TagSlugs         []string
	FavoritedBy      int64
	InShoppingCartOf int64
	Limit            int
}

// RecipeResponse is the full recipe representation for one viewer
type RecipeResponse struct {
	ID               int64            `json:"id"`
	Tags             []Tag            `json:"tags"`
	Author           UserResponse     `json:"author"`
	Ingredients      []IngredientLine `json:"ingredients"`
	IsFavorited      bool             `json:"is_favorited"`
	IsInShoppingCart bool             `json:"is_in_shopping_cart"`
	Name             string           `json:"name"`
	Image            string           `json:"image"`
	Text             string           `json:"text"`
	CookingTime      int              `json:"cooking_time"`
}

// ShortRecipe is the compact form used by favorites, cart and subscriptions
type ShortRecipe struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// Short returns the compact representation of r
func (r *Recipe) Short() ShortRecipe {
	return ShortRecipe{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}
