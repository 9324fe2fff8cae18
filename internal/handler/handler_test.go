package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkodi/foodgram/internal/config"
	"github.com/darkodi/foodgram/internal/logger"
	"github.com/darkodi/foodgram/internal/metrics"
	"github.com/darkodi/foodgram/internal/model"
	"github.com/darkodi/foodgram/internal/repository"
	"github.com/darkodi/foodgram/internal/service"
	"github.com/darkodi/foodgram/internal/shortcode"
)

const testBaseURL = "http://foodgram.test"

type fixture struct {
	router     http.Handler
	repo       *repository.Repository
	alice, bob *model.User
	tags       []model.Tag
	flour      model.Ingredient
	sugar      model.Ingredient
	egg        model.Ingredient
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	repo, err := repository.New(&config.DatabaseConfig{
		Driver: repository.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "api.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	log := logger.Discard()
	users := service.NewUserService(repo)
	h := New(Services{
		Recipes: service.NewRecipeService(repo, users, log),
		Catalog: service.NewCatalogService(repo),
		Cart:    service.NewCartService(repo),
		Users:   users,
		Links:   service.NewShortLinkService(repo, shortcode.NewGenerator(3), nil, testBaseURL, 5, log),
		DB:      repo,
	}, log)

	f := &fixture{router: h.Routes(users, nil), repo: repo}

	f.alice = &model.User{Email: "alice@example.com", Username: "alice", AuthToken: "token-alice"}
	f.bob = &model.User{Email: "bob@example.com", Username: "bob", AuthToken: "token-bob"}
	require.NoError(t, repo.CreateUser(ctx, f.alice))
	require.NoError(t, repo.CreateUser(ctx, f.bob))

	f.tags = []model.Tag{{Name: "Breakfast", Slug: "breakfast"}, {Name: "Dinner", Slug: "dinner"}}
	for i := range f.tags {
		require.NoError(t, repo.CreateTag(ctx, &f.tags[i]))
	}
	f.flour = model.Ingredient{Name: "flour", MeasurementUnit: "g"}
	f.sugar = model.Ingredient{Name: "sugar", MeasurementUnit: "g"}
	f.egg = model.Ingredient{Name: "egg", MeasurementUnit: "pcs"}
	for _, in := range []*model.Ingredient{&f.flour, &f.sugar, &f.egg} {
		require.NoError(t, repo.CreateIngredient(ctx, in))
	}
	return f
}

func (f *fixture) do(t *testing.T, method, path string, user *model.User, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", "Token "+user.AuthToken)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) createRecipe(t *testing.T, author *model.User, body map[string]any) model.RecipeResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/recipes", author, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp model.RecipeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func recipeBody(name string, tags []int64, lines ...model.IngredientAmount) map[string]any {
	return map[string]any{
		"name":         name,
		"text":         "Mix and cook.",
		"image":        "data:image/png;base64,iVBORw0KGgo=",
		"cooking_time": 20,
		"tags":         tags,
		"ingredients":  lines,
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error.Code
}

func TestHealth(t *testing.T) {
	f := setup(t)
	rec := f.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestMetrics_LabelledByRoutePattern(t *testing.T) {
	f := setup(t)
	byPattern := metrics.HTTPRequestsTotal.WithLabelValues("/api/recipes/{id}", http.MethodGet, "404")
	unmatched := metrics.HTTPRequestsTotal.WithLabelValues("unmatched", http.MethodGet, "404")
	beforePattern := testutil.ToFloat64(byPattern)
	beforeUnmatched := testutil.ToFloat64(unmatched)

	rec := f.do(t, http.MethodGet, "/api/recipes/987654", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, beforePattern+1, testutil.ToFloat64(byPattern))
	assert.Equal(t, beforeUnmatched, testutil.ToFloat64(unmatched))

	rec = f.do(t, http.MethodGet, "/no/such/path", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, beforeUnmatched+1, testutil.ToFloat64(unmatched))
}

func TestHealth_DatabaseDown(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.repo.Close())

	rec := f.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "DATABASE_ERROR", errorCode(t, rec))
}

func TestAuth(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"unknown token", "Token nope", http.StatusUnauthorized},
		{"wrong scheme", "Bearer token-alice", http.StatusUnauthorized},
		{"valid", "Token token-alice", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRecipeLifecycle(t *testing.T) {
	f := setup(t)

	created := f.createRecipe(t, f.alice, recipeBody("Pancakes",
		[]int64{f.tags[0].ID},
		model.IngredientAmount{ID: f.flour.ID, Amount: 200},
		model.IngredientAmount{ID: f.egg.ID, Amount: 2},
	))
	assert.Equal(t, "alice", created.Author.Username)
	assert.Len(t, created.Ingredients, 2)
	assert.False(t, created.IsFavorited)

	path := fmt.Sprintf("/api/recipes/%d", created.ID)

	rec := f.do(t, http.MethodPatch, path, f.bob, recipeBody("Hijack",
		[]int64{f.tags[0].ID}, model.IngredientAmount{ID: f.flour.ID, Amount: 1}))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPatch, path, f.alice, recipeBody("Pancakes v2",
		[]int64{f.tags[1].ID}, model.IngredientAmount{ID: f.sugar.ID, Amount: 30}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated model.RecipeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Pancakes v2", updated.Name)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, f.tags[1].ID, updated.Tags[0].ID)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, f.sugar.ID, updated.Ingredients[0].IngredientID)

	rec = f.do(t, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, path, f.alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRecipe_Validation(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"duplicate tags", recipeBody("x", []int64{f.tags[0].ID, f.tags[0].ID},
			model.IngredientAmount{ID: f.flour.ID, Amount: 1}), "tags"},
		{"no ingredients", recipeBody("x", []int64{f.tags[0].ID}), "ingredients"},
		{"duplicate ingredients", recipeBody("x", []int64{f.tags[0].ID},
			model.IngredientAmount{ID: f.flour.ID, Amount: 1},
			model.IngredientAmount{ID: f.flour.ID, Amount: 2}), "ingredients"},
		{"zero amount", recipeBody("x", []int64{f.tags[0].ID},
			model.IngredientAmount{ID: f.flour.ID, Amount: 0}), "ingredients[0].amount"},
		{"unknown tag", recipeBody("x", []int64{999},
			model.IngredientAmount{ID: f.flour.ID, Amount: 1}), "tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/recipes", f.alice, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, "VALIDATION_FAILED", errorCode(t, rec))
			assert.Contains(t, rec.Body.String(), `"`+tt.field+`"`)
		})
	}

	rec := f.do(t, http.MethodGet, "/api/recipes", nil, nil)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCreateRecipe_Anonymous(t *testing.T) {
	f := setup(t)
	rec := f.do(t, http.MethodPost, "/api/recipes", nil, recipeBody("x", []int64{f.tags[0].ID},
		model.IngredientAmount{ID: f.flour.ID, Amount: 1}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFavoriteAndCart(t *testing.T) {
	f := setup(t)
	r := f.createRecipe(t, f.alice, recipeBody("Cake", []int64{f.tags[0].ID},
		model.IngredientAmount{ID: f.flour.ID, Amount: 200}))

	for _, kind := range []string{"favorite", "shopping_cart"} {
		t.Run(kind, func(t *testing.T) {
			path := fmt.Sprintf("/api/recipes/%d/%s", r.ID, kind)

			rec := f.do(t, http.MethodPost, path, f.bob, nil)
			assert.Equal(t, http.StatusCreated, rec.Code)
			assert.Contains(t, rec.Body.String(), `"name":"Cake"`)

			rec = f.do(t, http.MethodPost, path, f.bob, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "ALREADY_EXISTS", errorCode(t, rec))

			rec = f.do(t, http.MethodDelete, path, f.bob, nil)
			assert.Equal(t, http.StatusNoContent, rec.Code)

			rec = f.do(t, http.MethodDelete, path, f.bob, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "NOT_PRESENT", errorCode(t, rec))

			rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/9999/%s", kind), f.bob, nil)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestListRecipes_ViewerFilters(t *testing.T) {
	f := setup(t)
	a := f.createRecipe(t, f.alice, recipeBody("A", []int64{f.tags[0].ID},
		model.IngredientAmount{ID: f.flour.ID, Amount: 1}))
	f.createRecipe(t, f.alice, recipeBody("B", []int64{f.tags[1].ID},
		model.IngredientAmount{ID: f.flour.ID, Amount: 1}))

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/favorite", a.ID), f.bob, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var list []model.RecipeResponse
	rec = f.do(t, http.MethodGet, "/api/recipes?is_favorited=1", f.bob, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
	assert.True(t, list[0].IsFavorited)

	rec = f.do(t, http.MethodGet, "/api/recipes?is_favorited=1", nil, nil)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/recipes?tags=dinner", nil, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "B", list[0].Name)

	rec = f.do(t, http.MethodGet, "/api/recipes?limit=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func attachmentName(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	disposition, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	require.Equal(t, "attachment", disposition)
	return params["filename"]
}

func TestDownloadShoppingCart_NonASCIIUsername(t *testing.T) {
	f := setup(t)
	olga := &model.User{Email: "olga@example.com", Username: "ольга", AuthToken: "token-olga"}
	require.NoError(t, f.repo.CreateUser(context.Background(), olga))

	rec := f.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", olga, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "shopping_list_ольга.txt", attachmentName(t, rec))
}

func TestDownloadShoppingCart(t *testing.T) {
	f := setup(t)
	cake := f.createRecipe(t, f.alice, recipeBody("Cake", []int64{f.tags[0].ID},
		model.IngredientAmount{ID: f.flour.ID, Amount: 200},
		model.IngredientAmount{ID: f.sugar.ID, Amount: 50}))
	bread := f.createRecipe(t, f.alice, recipeBody("Bread", []int64{f.tags[0].ID},
		model.IngredientAmount{ID: f.flour.ID, Amount: 100},
		model.IngredientAmount{ID: f.egg.ID, Amount: 2}))

	for _, id := range []int64{cake.ID, bread.ID} {
		rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart", id), f.bob, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := f.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", f.bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t, "shopping_list_bob.txt", attachmentName(t, rec))
	assert.Equal(t, "egg 2\nflour 300\nsugar 50\n", rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", f.alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestShortLink(t *testing.T) {
	f := setup(t)
	r := f.createRecipe(t, f.alice, recipeBody("Soup", []int64{f.tags[1].ID},
		model.IngredientAmount{ID: f.egg.ID, Amount: 1}))

	get := func() string {
		rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/recipes/%d/get-link", r.ID), nil, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp["short-link"]
	}

	link := get()
	assert.Equal(t, link, get())
	require.True(t, strings.HasPrefix(link, testBaseURL+"/s/"), link)
	token := strings.TrimPrefix(link, testBaseURL+"/s/")
	assert.Len(t, token, 3)

	rec := f.do(t, http.MethodGet, "/s/"+token, nil, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, fmt.Sprintf("%s/recipes/%d", testBaseURL, r.ID), rec.Header().Get("Location"))

	rec = f.do(t, http.MethodGet, "/s/zzzz", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "SHORT_LINK_NOT_FOUND", errorCode(t, rec))

	rec = f.do(t, http.MethodGet, "/api/recipes/9999/get-link", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubscriptions(t *testing.T) {
	f := setup(t)
	for _, name := range []string{"One", "Two"} {
		f.createRecipe(t, f.alice, recipeBody(name, []int64{f.tags[0].ID},
			model.IngredientAmount{ID: f.egg.ID, Amount: 1}))
	}
	subscribe := fmt.Sprintf("/api/users/%d/subscribe", f.alice.ID)

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", f.bob.ID), f.bob, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, subscribe, f.bob, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, subscribe, f.bob, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ALREADY_EXISTS", errorCode(t, rec))

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", f.alice.ID), f.bob, nil)
	assert.Contains(t, rec.Body.String(), `"is_subscribed":true`)

	rec = f.do(t, http.MethodGet, "/api/users/subscriptions?recipes_limit=1", f.bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var subs []model.SubscriptionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &subs))
	require.Len(t, subs, 1)
	assert.Len(t, subs[0].Recipes, 1)
	assert.Equal(t, 2, subs[0].RecipesCount)

	rec = f.do(t, http.MethodDelete, subscribe, f.bob, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodDelete, subscribe, f.bob, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/users/9999/subscribe", f.bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalog(t *testing.T) {
	f := setup(t)

	rec := f.do(t, http.MethodGet, "/api/tags", nil, nil)
	var tags []model.Tag
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tags))
	assert.Len(t, tags, 2)

	rec = f.do(t, http.MethodGet, "/api/ingredients?name=FL", nil, nil)
	var ingredients []model.Ingredient
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ingredients))
	require.Len(t, ingredients, 1)
	assert.Equal(t, "flour", ingredients[0].Name)

	rec = f.do(t, http.MethodGet, "/api/tags/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/ingredients/abc", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
