package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/darkodi/foodgram/internal/config"
	"github.com/darkodi/foodgram/internal/logger"
	"github.com/darkodi/foodgram/internal/model"
	"github.com/darkodi/foodgram/internal/repository"
)

type testEnv struct {
	repo    *repository.Repository
	users   *UserService
	recipes *RecipeService
	cart    *CartService

	alice, bob *model.User
	breakfast  model.Tag
	dinner     model.Tag
	flour      model.Ingredient
	sugar      model.Ingredient
	egg        model.Ingredient
}

func setupTestRepo(t *testing.T) *repository.Repository {
	t.Helper()
	repo, err := repository.New(&config.DatabaseConfig{
		Driver: "sqlite3",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err, "create repo")
	t.Cleanup(func() { repo.Close() })
	return repo
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	repo := setupTestRepo(t)

	env := &testEnv{repo: repo}
	env.users = NewUserService(repo)
	env.recipes = NewRecipeService(repo, env.users, logger.Discard())
	env.cart = NewCartService(repo)

	env.alice = &model.User{Email: "alice@example.com", Username: "alice", AuthToken: "token-alice"}
	env.bob = &model.User{Email: "bob@example.com", Username: "bob", AuthToken: "token-bob"}
	require.NoError(t, repo.CreateUser(ctx, env.alice))
	require.NoError(t, repo.CreateUser(ctx, env.bob))

	env.breakfast = model.Tag{Name: "Breakfast", Slug: "breakfast"}
	env.dinner = model.Tag{Name: "Dinner", Slug: "dinner"}
	require.NoError(t, repo.CreateTag(ctx, &env.breakfast))
	require.NoError(t, repo.CreateTag(ctx, &env.dinner))

	env.flour = model.Ingredient{Name: "flour", MeasurementUnit: "g"}
	env.sugar = model.Ingredient{Name: "sugar", MeasurementUnit: "g"}
	env.egg = model.Ingredient{Name: "egg", MeasurementUnit: "pcs"}
	for _, in := range []*model.Ingredient{&env.flour, &env.sugar, &env.egg} {
		require.NoError(t, repo.CreateIngredient(ctx, in))
	}

	return env
}

func (env *testEnv) recipeWrite(name string, tags []int64, lines ...model.IngredientAmount) model.RecipeWrite {
	return model.RecipeWrite{
		Name:        name,
		Text:        name + " instructions",
		Image:       "data:image/png;base64,iVBORw0KGgo=",
		CookingTime: 30,
		Tags:        tags,
		Ingredients: lines,
	}
}

func (env *testEnv) mustCreateRecipe(t *testing.T, author *model.User, req model.RecipeWrite) *model.Recipe {
	t.Helper()
	rec, err := env.recipes.Create(context.Background(), author.ID, req)
	require.NoError(t, err)
	return rec
}
