package service

import "errors"

// Custom errors for the service layer
var (
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrTagNotFound        = errors.New("tag not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrNotAuthor          = errors.New("only the author may change this recipe")

	ErrAlreadyFavorited  = errors.New("recipe already in favorites")
	ErrNotFavorited      = errors.New("recipe not in favorites")
	ErrAlreadyInCart     = errors.New("recipe already in shopping cart")
	ErrNotInCart         = errors.New("recipe not in shopping cart")
	ErrAlreadySubscribed = errors.New("already subscribed to user")
	ErrNotSubscribed     = errors.New("not subscribed to user")
	ErrSelfSubscription  = errors.New("cannot subscribe to yourself")

	ErrShortLinkNotFound = errors.New("short link not found")
	// ErrTokenSpaceExhausted means every candidate token in the retry
	// budget was already taken.
	ErrTokenSpaceExhausted = errors.New("short link token space exhausted")
)
