package model

// User is a registered account. AuthToken is issued out of band (see cmd/seed).
type User struct {
	ID        int64
	Email     string
	Username  string
	FirstName string
	LastName  string
	AuthToken string
}

// UserResponse is the public user representation for one viewer
type UserResponse struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// SubscriptionResponse is an author the viewer follows, with their recipes
type SubscriptionResponse struct {
	UserResponse
	Recipes      []ShortRecipe `json:"recipes"`
	RecipesCount int           `json:"recipes_count"`
}
