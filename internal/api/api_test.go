package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pantry-planner/internal/auth"
	"pantry-planner/internal/backup"
	"pantry-planner/internal/config"
	"pantry-planner/internal/database"
	"pantry-planner/internal/ingredient"
	"pantry-planner/internal/mealplan"
	"pantry-planner/internal/messaging"
	"pantry-planner/internal/metrics"
	"pantry-planner/internal/notify"
	"pantry-planner/internal/recipe"
	"pantry-planner/internal/shopping"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type testEnv struct {
	server *Server
	router *gin.Engine
	hub    *messaging.Hub
	db     *database.DB
	sender *fakeSender
}

type fakeSender struct {
	chatID int64
	texts  []string
}

func (f *fakeSender) Send(chatID int64, text string) error {
	f.chatID = chatID
	f.texts = append(f.texts, text)
	return nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	db, err := database.NewDB(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		HTTPAddr:       ":0",
		AllowedOrigins: []string{"http://localhost:3000"},
		BackupDir:      filepath.Join(dir, "backups"),
		JWTSecret:      "test-secret",
		TokenTTLHours:  1,
	}

	ingredientRepo := ingredient.NewRepository(db.SQL)
	recipeRepo := recipe.NewRepository(db.SQL)
	planRepo := mealplan.NewRepository(db.SQL)
	shoppingRepo := shopping.NewRepository(db.SQL)

	store, err := backup.NewStore(cfg.BackupDir)
	if err != nil {
		t.Fatalf("Failed to create backup store: %v", err)
	}
	exporter := backup.NewExporter(store, ingredientRepo, recipeRepo, planRepo, shoppingRepo)

	hub := messaging.NewHub()
	sender := &fakeSender{}
	server := NewServer(
		cfg,
		zap.NewNop(),
		auth.NewManager(cfg.JWTSecret, time.Hour),
		hub,
		metrics.NewStore(db.SQL),
		nil,
		notify.NewNotifier(sender, 42),
		exporter,
		ingredientRepo,
		recipeRepo,
		planRepo,
		shoppingRepo,
	)
	return &testEnv{server: server, router: server.Router(), hub: hub, db: db, sender: sender}
}

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/auth/token", "", map[string]string{"user_id": userID})
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to issue token: status %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse token response: %v", err)
	}
	return resp.Token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/ingredients", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without token, got %d", w.Code)
	}
}

func TestIngredientCRUD(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1")

	w := env.do(t, http.MethodPost, "/api/ingredients", token, map[string]any{
		"name": "Tomato", "quantity": 4, "unit": "pieces", "location": "fridge",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created ingredient.Ingredient
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to parse created ingredient: %v", err)
	}
	if created.ID == "" || created.UserID != "user-1" {
		t.Errorf("Unexpected created ingredient: %+v", created)
	}

	w = env.do(t, http.MethodPut, "/api/ingredients/"+created.ID, token, map[string]any{
		"name": "Tomato", "quantity": 8, "unit": "pieces", "location": "fridge",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on update, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/ingredients", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on list, got %d", w.Code)
	}
	var listed []ingredient.Ingredient
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("Failed to parse ingredient list: %v", err)
	}
	if len(listed) != 1 || listed[0].Quantity != 8 {
		t.Errorf("Unexpected ingredient list: %+v", listed)
	}

	w = env.do(t, http.MethodDelete, "/api/ingredients/"+created.ID, token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204 on delete, got %d", w.Code)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.token(t, "alice")
	mallory := env.token(t, "mallory")

	w := env.do(t, http.MethodPost, "/api/ingredients", alice, map[string]any{
		"name": "Milk", "quantity": 1, "unit": "l", "location": "fridge",
	})
	var created ingredient.Ingredient
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to parse created ingredient: %v", err)
	}

	w = env.do(t, http.MethodGet, "/api/ingredients/"+created.ID, mallory, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for another user's ingredient, got %d", w.Code)
	}
	w = env.do(t, http.MethodDelete, "/api/ingredients/"+created.ID, mallory, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 deleting another user's ingredient, got %d", w.Code)
	}
}

func TestShoppingListFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1")

	w := env.do(t, http.MethodPost, "/api/recipes", token, recipe.Recipe{
		Title:    "Tomato Soup",
		Servings: 2,
		Ingredients: []recipe.Ingredient{
			{Name: "Tomato", Amount: 4, Unit: "pieces"},
			{Name: "Cream", Amount: 100, Unit: "ml"},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating recipe, got %d: %s", w.Code, w.Body.String())
	}
	var rec recipe.Recipe
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("Failed to parse recipe: %v", err)
	}

	w = env.do(t, http.MethodGet, "/api/mealplans/current", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 fetching current plan, got %d: %s", w.Code, w.Body.String())
	}
	var plan mealplan.MealPlan
	if err := json.Unmarshal(w.Body.Bytes(), &plan); err != nil {
		t.Fatalf("Failed to parse plan: %v", err)
	}
	if len(plan.Slots) != 21 {
		t.Fatalf("Expected 21 slots, got %d", len(plan.Slots))
	}

	// Doubling the servings doubles every contribution.
	servings := 4
	w = env.do(t, http.MethodPut, "/api/mealplans/slots/"+plan.Slots[0].ID, token, assignSlotRequest{
		RecipeID: rec.ID, Servings: &servings,
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204 assigning slot, got %d: %s", w.Code, w.Body.String())
	}

	env.do(t, http.MethodPost, "/api/ingredients", token, map[string]any{
		"name": "tomato", "quantity": 10, "unit": "pieces", "location": "pantry",
	})

	w = env.do(t, http.MethodPost, "/api/shopping/generate", token, generateListRequest{
		PlanID: plan.ID, Save: true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 generating list, got %d: %s", w.Code, w.Body.String())
	}
	var list shopping.ShoppingList
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("Failed to parse shopping list: %v", err)
	}
	if len(list.Items) != 2 {
		t.Fatalf("Expected 2 items, got %+v", list.Items)
	}

	byKey := map[shopping.ItemKey]shopping.ListItem{}
	for _, item := range list.Items {
		byKey[item.Key()] = item
	}
	tomato := byKey[shopping.ItemKey{Name: "tomato", Unit: "pieces"}]
	if tomato.TotalAmount != 8 {
		t.Errorf("Expected scaled tomato amount 8, got %v", tomato.TotalAmount)
	}
	if !tomato.InInventory || tomato.NeedToBuy {
		t.Errorf("Expected tomato covered by inventory: %+v", tomato)
	}
	cream := byKey[shopping.ItemKey{Name: "cream", Unit: "ml"}]
	if cream.TotalAmount != 200 || !cream.NeedToBuy {
		t.Errorf("Expected cream 200 ml to buy: %+v", cream)
	}

	// Purchase tracking round-trips through the items update.
	list.Items[0].Purchased = true
	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/shopping/%s/items", list.ID), token, updateItemsRequest{Items: list.Items})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 updating items, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/shopping/"+list.ID, token, nil)
	var fetched shopping.ShoppingList
	if err := json.Unmarshal(w.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("Failed to parse fetched list: %v", err)
	}
	if !fetched.Items[0].Purchased {
		t.Errorf("Expected purchase flag to persist: %+v", fetched.Items[0])
	}
}

func TestShareShoppingList(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1")

	list := shopping.ShoppingList{
		UserID: "user-1",
		Name:   "Groceries",
		Items:  []shopping.ListItem{{Name: "tomato", Unit: "pieces", TotalAmount: 6, NeedToBuy: true}},
	}
	id, err := env.server.shoppingRepo.Create(context.Background(), &list)
	if err != nil {
		t.Fatalf("Failed to create shopping list: %v", err)
	}

	w := env.do(t, http.MethodPost, "/api/shopping/"+id+"/share", token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204 sharing list, got %d: %s", w.Code, w.Body.String())
	}
	if len(env.sender.texts) != 1 || env.sender.chatID != 42 {
		t.Fatalf("Expected one message to chat 42, got %+v", env.sender)
	}
	if !strings.Contains(env.sender.texts[0], "tomato: 6 pieces") {
		t.Errorf("Expected list contents in message, got %q", env.sender.texts[0])
	}

	mallory := env.token(t, "mallory")
	w = env.do(t, http.MethodPost, "/api/shopping/"+id+"/share", mallory, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 sharing another user's list, got %d", w.Code)
	}

	env.server.notifier = nil
	w = env.do(t, http.MethodPost, "/api/shopping/"+id+"/share", token, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without a configured notifier, got %d", w.Code)
	}
}

func TestCreateIngredientIgnoresClientID(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1")

	w := env.do(t, http.MethodPost, "/api/ingredients", token, map[string]any{
		"id": "attacker-chosen", "name": "Salt", "quantity": 1, "unit": "kg", "location": "pantry",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created ingredient.Ingredient
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to parse created ingredient: %v", err)
	}
	if created.ID == "attacker-chosen" || created.ID == "" {
		t.Errorf("Expected a server-assigned ID, got %q", created.ID)
	}
}

func TestUpdateIngredientKeepsDates(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1")

	expiry := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	w := env.do(t, http.MethodPost, "/api/ingredients", token, map[string]any{
		"name": "Yogurt", "quantity": 4, "unit": "pieces", "location": "fridge",
		"expiration_date": expiry,
	})
	var created ingredient.Ingredient
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to parse created ingredient: %v", err)
	}

	// A partial update that omits the dates must not reset them.
	w = env.do(t, http.MethodPut, "/api/ingredients/"+created.ID, token, map[string]any{
		"name": "Yogurt", "quantity": 2, "unit": "pieces", "location": "fridge",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on update, got %d: %s", w.Code, w.Body.String())
	}
	var updated ingredient.Ingredient
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("Failed to parse updated ingredient: %v", err)
	}
	if updated.Quantity != 2 {
		t.Errorf("Expected quantity 2, got %v", updated.Quantity)
	}
	if !updated.DateBought.Equal(created.DateBought) {
		t.Errorf("Expected DateBought %v to survive, got %v", created.DateBought, updated.DateBought)
	}
	if updated.ExpirationDate == nil || !updated.ExpirationDate.Equal(expiry) {
		t.Errorf("Expected ExpirationDate %v to survive, got %v", expiry, updated.ExpirationDate)
	}
}

func TestClipUnavailableWithoutGenerator(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1")

	w := env.do(t, http.MethodPost, "/api/recipes/clip", token, map[string]string{"url": "http://example.com"})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503 without a configured clipper, got %d", w.Code)
	}
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1")

	env.do(t, http.MethodPost, "/api/ingredients", token, map[string]any{
		"name": "Rice", "quantity": 500, "unit": "g", "location": "pantry",
	})

	w := env.do(t, http.MethodPost, "/api/export", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 exporting, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		File     string          `json:"file"`
		Snapshot backup.Snapshot `json:"snapshot"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse export response: %v", err)
	}
	if resp.File == "" || len(resp.Snapshot.Ingredients) != 1 {
		t.Errorf("Unexpected export response: %+v", resp)
	}
}

func TestDailyMetrics(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1")

	env.do(t, http.MethodGet, "/api/ingredients", token, nil)

	w := env.do(t, http.MethodGet, "/api/metrics/daily", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var usage []metrics.DailyUsage
	if err := json.Unmarshal(w.Body.Bytes(), &usage); err != nil {
		t.Fatalf("Failed to parse usage: %v", err)
	}
	if len(usage) != 1 || usage[0].Requests < 2 {
		t.Errorf("Expected today's requests recorded, got %+v", usage)
	}

	w = env.do(t, http.MethodGet, "/api/metrics/daily?days=bad", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a bad days value, got %d", w.Code)
	}
}

func TestEventsPublishedOnMutation(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "user-1")

	sub := env.hub.Subscribe("user-1")
	defer sub.Close()

	env.do(t, http.MethodPost, "/api/ingredients", token, map[string]any{
		"name": "Salt", "quantity": 1, "unit": "kg", "location": "pantry",
	})

	select {
	case ev := <-sub.C:
		if ev.Type != "ingredient.created" || ev.UserID != "user-1" {
			t.Errorf("Unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected an ingredient.created event")
	}
}
