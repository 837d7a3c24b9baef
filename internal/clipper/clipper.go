package clipper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pantry-planner/internal/llm"
	"pantry-planner/internal/recipe"

	"github.com/PuerkitoBio/goquery"
)

// Clipper fetches a recipe page and turns it into a typed recipe via the
// text generator. The result is not persisted; saving is the caller's
// explicit action.
type Clipper struct {
	textGen llm.TextGenerator
	client  *http.Client
}

// extractedRecipe is the JSON shape the model is asked to produce.
type extractedRecipe struct {
	Title       string `json:"title"`
	Servings    int    `json:"servings"`
	PrepTime    string `json:"prep_time"`
	Ingredients []struct {
		Name     string  `json:"name"`
		Amount   float64 `json:"amount"`
		Unit     string  `json:"unit"`
		Category string  `json:"category"`
	} `json:"ingredients"`
	Steps []string `json:"steps"`
	Tags  []string `json:"tags"`
}

// NewClipper creates a new Clipper instance.
func NewClipper(textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		textGen: textGen,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// ClipURL fetches the URL and extracts a structured recipe from it.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*recipe.Recipe, error) {
	content, err := c.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt := fmt.Sprintf(`
You are a recipe extraction expert. Extract the recipe details from the following page content.
Return the result strictly as a JSON object with this structure:
{
  "title": "Recipe Title",
  "servings": 4,
  "prep_time": "e.g. 30 mins",
  "ingredients": [{"name": "tomato", "amount": 2, "unit": "pieces", "category": "vegetables"}, ...],
  "steps": ["Step 1 description", "Step 2 description", ...],
  "tags": ["tag1", "tag2"]
}

Amounts must be numbers. Use an empty unit for unitless items.
Do not include any other text in your response.

Page Content:
%s
`, content)

	llmResponse, err := c.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}

	var extracted extractedRecipe
	if err := json.Unmarshal([]byte(llmResponse), &extracted); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, llmResponse)
	}

	rec := &recipe.Recipe{
		Title:        extracted.Title,
		Servings:     extracted.Servings,
		PrepTime:     extracted.PrepTime,
		Tags:         extracted.Tags,
		Instructions: strings.Join(extracted.Steps, "\n"),
		SourceURL:    url,
	}
	for _, ing := range extracted.Ingredients {
		rec.Ingredients = append(rec.Ingredients, recipe.Ingredient{
			Name:     ing.Name,
			Amount:   ing.Amount,
			Unit:     ing.Unit,
			Category: ing.Category,
		})
	}
	return rec, nil
}

func (c *Clipper) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}
