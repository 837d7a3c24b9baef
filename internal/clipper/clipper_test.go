package clipper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type mockTextGenerator struct {
	response   string
	lastPrompt string
}

func (m *mockTextGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	m.lastPrompt = prompt
	return m.response, nil
}

const pageHTML = `<html><head><script>tracking();</script></head>
<body>
<nav>Menu</nav>
<h1>Tomato Bake</h1>
<ul><li>2 tomatoes</li><li>200g pasta</li></ul>
<footer>Ads and links</footer>
</body></html>`

func TestClipURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pageHTML))
	}))
	defer server.Close()

	gen := &mockTextGenerator{response: `{
		"title": "Tomato Bake",
		"servings": 2,
		"prep_time": "30 mins",
		"ingredients": [
			{"name": "Tomato", "amount": 2, "unit": "pieces", "category": "vegetables"},
			{"name": "Pasta", "amount": 200, "unit": "g", "category": ""}
		],
		"steps": ["Chop tomatoes", "Bake"],
		"tags": ["dinner"]
	}`}

	clipper := NewClipper(gen)
	rec, err := clipper.ClipURL(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("ClipURL failed: %v", err)
	}

	if rec.Title != "Tomato Bake" || rec.Servings != 2 {
		t.Errorf("Unexpected recipe: %+v", rec)
	}
	if len(rec.Ingredients) != 2 {
		t.Fatalf("Expected 2 ingredients, got %d", len(rec.Ingredients))
	}
	if rec.Ingredients[0].Name != "Tomato" || rec.Ingredients[0].Amount != 2 || rec.Ingredients[0].Unit != "pieces" {
		t.Errorf("Unexpected first ingredient: %+v", rec.Ingredients[0])
	}
	if rec.Instructions != "Chop tomatoes\nBake" {
		t.Errorf("Unexpected instructions: %q", rec.Instructions)
	}
	if rec.SourceURL != server.URL {
		t.Errorf("Expected source URL to be recorded, got %q", rec.SourceURL)
	}

	// Noise tags are stripped before prompting.
	if strings.Contains(gen.lastPrompt, "tracking()") {
		t.Error("Expected script content to be removed from the prompt")
	}
	if !strings.Contains(gen.lastPrompt, "2 tomatoes") {
		t.Error("Expected page text to be included in the prompt")
	}
}

func TestClipURLBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	clipper := NewClipper(&mockTextGenerator{})
	if _, err := clipper.ClipURL(context.Background(), server.URL); err == nil {
		t.Fatal("Expected an error for a 404 page, got nil")
	}
}

func TestClipURLBadAIResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pageHTML))
	}))
	defer server.Close()

	clipper := NewClipper(&mockTextGenerator{response: "not json"})
	if _, err := clipper.ClipURL(context.Background(), server.URL); err == nil {
		t.Fatal("Expected an error for an unparseable AI response, got nil")
	}
}
