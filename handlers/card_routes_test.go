package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"deck-tracker-system/models"
	"deck-tracker-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newCardTestApp(t *testing.T, db *gorm.DB, imageBaseURL, metaURL string) *fiber.App {
	t.Helper()

	cardService := services.NewCardService(db, nil)
	if imageBaseURL != "" {
		cardService.ImageBaseURL = imageBaseURL
	}
	metaService := services.NewMetaService()
	if metaURL != "" {
		metaService.MetaURL = metaURL
	}

	app := fiber.New()
	api := app.Group("/api")
	SetupCardRoutes(api, cardService, metaService)
	return app
}

func seedCard(t *testing.T, db *gorm.DB, cardID, setCode, cardNumber, name string) {
	t.Helper()
	card := models.PokemonCard{
		ID:         uuid.NewString(),
		CardID:     cardID,
		SetCode:    setCode,
		CardNumber: cardNumber,
		Name:       name,
	}
	if err := db.Create(&card).Error; err != nil {
		t.Fatalf("seed card: %v", err)
	}
}

func TestCardBatchSaveAndLookup(t *testing.T) {
	db := testDB(t)
	app := newCardTestApp(t, db, "", "")

	batch := map[string]any{
		"MEW-4": map[string]any{
			"name":      "Charmander",
			"supertype": "Pokémon",
			"hp":        "70",
			"types":     []string{"Fire"},
			"image":     "https://example.com/mew-4.png",
		},
		"MEW-125": map[string]any{
			"name":      "Rotom V",
			"supertype": "Pokémon",
			"hp":        "190",
		},
		"bogus": map[string]any{
			"name": "No Separator",
		},
	}
	resp := doRequest(t, app, "POST", "/api/cards/batch", "", batch)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("batch save status %d, want 200", resp.StatusCode)
	}
	var out struct {
		Saved   int `json:"saved"`
		Skipped int `json:"skipped"`
		Total   int `json:"total"`
	}
	decodeBody(t, resp, &out)
	if out.Saved != 2 || out.Skipped != 0 {
		t.Fatalf("unexpected batch result: %+v", out)
	}

	// Resubmitting the same batch skips every existing card
	resp = doRequest(t, app, "POST", "/api/cards/batch", "", batch)
	decodeBody(t, resp, &out)
	if out.Saved != 0 || out.Skipped != 2 {
		t.Fatalf("resubmit should skip all: %+v", out)
	}

	resp = doRequest(t, app, "GET", "/api/cards/MEW/4", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("card lookup status %d, want 200", resp.StatusCode)
	}
	var card models.PokemonCard
	decodeBody(t, resp, &card)
	if card.Name != "Charmander" || card.CardID != "mew-4" || card.SetCode != "MEW" {
		t.Fatalf("unexpected card: %+v", card)
	}
	if string(card.Abilities) != "[]" {
		t.Fatalf("absent list fields should default to []: %q", card.Abilities)
	}

	resp = doRequest(t, app, "GET", "/api/cards/count", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("card count status %d, want 200", resp.StatusCode)
	}
	var count struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp, &count)
	if count.Count != 2 {
		t.Fatalf("count = %d, want 2", count.Count)
	}

	resp = doRequest(t, app, "GET", "/api/cards/MEW/999", "", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("unknown card status %d, want 404", resp.StatusCode)
	}
}

func TestCardLookupFallsBackToCardID(t *testing.T) {
	db := testDB(t)
	app := newCardTestApp(t, db, "", "")

	// Legacy row with only the card_id form populated
	seedCard(t, db, "sv1-22", "", "", "Toedscool")

	resp := doRequest(t, app, "GET", "/api/cards/SV1/22", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("fallback lookup status %d, want 200", resp.StatusCode)
	}
	var card models.PokemonCard
	decodeBody(t, resp, &card)
	if card.Name != "Toedscool" {
		t.Fatalf("unexpected card: %+v", card)
	}
}

func TestCardImageScrape(t *testing.T) {
	db := testDB(t)

	const (
		smallImage = "https://limitlesstcg.nyc3.cdn.digitaloceanspaces.com/tpci/MEW/MEW_004_R_EN_SM.png"
		largeImage = "https://limitlesstcg.nyc3.cdn.digitaloceanspaces.com/tpci/MEW/MEW_004_R_EN_LG.png"
	)
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><img src="%s"><img src="%s"></body></html>`, smallImage, largeImage)
	}))
	defer page.Close()

	app := newCardTestApp(t, db, page.URL, "")

	resp := doRequest(t, app, "GET", "/api/cards/image/MEW/4", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("image scrape status %d, want 200", resp.StatusCode)
	}
	var out struct {
		ImageURL *string `json:"image_url"`
	}
	decodeBody(t, resp, &out)
	if out.ImageURL == nil || *out.ImageURL != largeImage {
		t.Fatalf("image_url = %v, want the _LG render", out.ImageURL)
	}
}

func TestCardImageScrapeDegradesToNull(t *testing.T) {
	db := testDB(t)

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer page.Close()

	app := newCardTestApp(t, db, page.URL, "")

	resp := doRequest(t, app, "GET", "/api/cards/image/MEW/4", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("scrape failure must still be a 200, got %d", resp.StatusCode)
	}
	var out struct {
		ImageURL *string `json:"image_url"`
		Error    string  `json:"error"`
	}
	decodeBody(t, resp, &out)
	if out.ImageURL != nil {
		t.Fatalf("image_url should be null on failure, got %v", *out.ImageURL)
	}
	if out.Error == "" {
		t.Fatal("failure payload should carry an error message")
	}
}

func TestMetaWizardEndpoint(t *testing.T) {
	db := testDB(t)

	meta := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<table>
<tr><th>Deck</th><th>vs A</th><th>vs B</th><th>vs C</th><th>vs D</th></tr>
<tr><td><a href="/deck/1">Gardevoir ex</a></td><td>65%</td><td>45.5%</td><td>30%</td><td>70%</td></tr>
<tr><td><a href="/deck/2">Charizard ex</a></td><td>55%</td><td>60%</td><td>40%</td><td>35%</td></tr>
</table>`)
	}))
	defer meta.Close()

	app := newCardTestApp(t, db, "", meta.URL)

	resp := doRequest(t, app, "GET", "/api/meta-wizard/Gardevoir", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("meta wizard status %d, want 200", resp.StatusCode)
	}
	var out struct {
		DeckName      string             `json:"deck_name"`
		Best          []services.Matchup `json:"best_matchups"`
		Worst         []services.Matchup `json:"worst_matchups"`
		Source        string             `json:"source"`
		TotalMatchups int                `json:"total_matchups"`
	}
	decodeBody(t, resp, &out)
	if out.Source != "TrainerHill" || out.TotalMatchups != 4 {
		t.Fatalf("unexpected payload: %+v", out)
	}
	if len(out.Best) != 3 || out.Best[0].WinRate != 70 || out.Best[2].WinRate != 45.5 {
		t.Fatalf("unexpected best matchups: %+v", out.Best)
	}
	if len(out.Worst) != 3 || out.Worst[0].WinRate != 30 {
		t.Fatalf("unexpected worst matchups: %+v", out.Worst)
	}
}

func TestMetaWizardFallbackWhenDeckMissing(t *testing.T) {
	db := testDB(t)

	meta := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<table><tr><td>Charizard ex</td><td>55%</td></tr></table>`)
	}))
	defer meta.Close()

	app := newCardTestApp(t, db, "", meta.URL)

	resp := doRequest(t, app, "GET", "/api/meta-wizard/ObscureRogueDeck", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("fallback status %d, want 200", resp.StatusCode)
	}
	var out struct {
		Best []services.Matchup `json:"best_matchups"`
		Note string             `json:"note"`
	}
	decodeBody(t, resp, &out)
	if out.Note == "" {
		t.Fatal("fallback payload should carry a note")
	}
	if len(out.Best) != 1 || out.Best[0].Opponent != "Data not available" {
		t.Fatalf("unexpected fallback matchups: %+v", out.Best)
	}
}
