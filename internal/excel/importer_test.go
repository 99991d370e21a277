package excel

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

type fakeDeckStore struct {
	decks map[string]models.Deck
	seq   int64
}

func newFakeDeckStore() *fakeDeckStore {
	return &fakeDeckStore{decks: make(map[string]models.Deck)}
}

func (f *fakeDeckStore) GetByName(name string) (*models.Deck, error) {
	if d, ok := f.decks[name]; ok {
		return &d, nil
	}
	return nil, nil
}

func (f *fakeDeckStore) Create(deck *models.Deck) error {
	f.seq++
	deck.ID = f.seq
	f.decks[deck.Name] = *deck
	return nil
}

type fakeCardStore struct {
	cards map[string]models.Card // keyed by "deckID/front"
	seq   int64
}

func newFakeCardStore() *fakeCardStore {
	return &fakeCardStore{cards: make(map[string]models.Card)}
}

func cardKey(deckID int64, front string) string {
	return fmt.Sprintf("%d/%s", deckID, front)
}

func (f *fakeCardStore) GetByDeckAndFront(deckID int64, front string) (*models.Card, error) {
	if c, ok := f.cards[cardKey(deckID, front)]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeCardStore) Create(card *models.Card) error {
	f.seq++
	card.ID = f.seq
	f.cards[cardKey(card.DeckID, card.Front)] = *card
	return nil
}

func (f *fakeCardStore) Update(card *models.Card) error {
	f.cards[cardKey(card.DeckID, card.Front)] = *card
	return nil
}

func newTestImporter() (*Importer, *fakeDeckStore, *fakeCardStore) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	decks := newFakeDeckStore()
	cards := newFakeCardStore()
	return NewImporter(decks, cards, log), decks, cards
}

// writeXLSX builds a workbook whose first row is a header and returns its
// path. Each row is [front, back, kind, transliteration, notes, deck].
func writeXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	header := []string{"Front", "Back", "Kind", "Transliteration", "Notes", "Deck"}
	for col, v := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			t.Fatalf("SetCellValue: %v", err)
		}
	}
	for i, row := range rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue("Sheet1", cell, v); err != nil {
				t.Fatalf("SetCellValue: %v", err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "cards.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestImportCreatesDecksAndCards(t *testing.T) {
	path := writeXLSX(t, [][]string{
		{"λόγος", "word, speech", "vocab", "logos", "2nd declension", "Attic core"},
		{"λύω", "I loose", "grammar", "lyo", "", "Morphology"},
		{"μῆνιν ἄειδε θεά", "Sing, goddess, of the wrath…", "passage", "", "Iliad I.1", "Attic core"},
	})

	im, decks, cards := newTestImporter()
	result, err := im.ImportFile(path, DefaultImportConfig())
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}

	if result.Processed != 3 || result.Created != 3 || result.Updated != 0 {
		t.Errorf("result = %+v, want 3 processed, 3 created", result)
	}
	if len(result.Errors) != 0 {
		t.Errorf("errors = %v, want none", result.Errors)
	}
	if len(decks.decks) != 2 {
		t.Errorf("created %d decks, want 2 (Attic core, Morphology)", len(decks.decks))
	}

	attic, _ := decks.GetByName("Attic core")
	if attic == nil {
		t.Fatal("deck 'Attic core' not created")
	}
	card, _ := cards.GetByDeckAndFront(attic.ID, "λόγος")
	if card == nil {
		t.Fatal("card λόγος not created")
	}
	if card.Kind != models.KindVocab || card.Back != "word, speech" || card.Transliteration != "logos" {
		t.Errorf("card = %+v, want the row's fields", card)
	}
}

func TestImportUpsertsByDeckAndFront(t *testing.T) {
	im, _, cards := newTestImporter()

	first := writeXLSX(t, [][]string{
		{"θεός", "god (typo: gρd)", "vocab", "", "", "Attic core"},
	})
	if _, err := im.ImportFile(first, DefaultImportConfig()); err != nil {
		t.Fatalf("first import: %v", err)
	}

	second := writeXLSX(t, [][]string{
		{"θεός", "god", "vocab", "theos", "", "Attic core"},
	})
	result, err := im.ImportFile(second, DefaultImportConfig())
	if err != nil {
		t.Fatalf("second import: %v", err)
	}

	if result.Created != 0 || result.Updated != 1 {
		t.Errorf("result = %+v, want 1 updated and nothing created", result)
	}
	if len(cards.cards) != 1 {
		t.Errorf("store holds %d cards, want 1 (no duplicates)", len(cards.cards))
	}
	card, _ := cards.GetByDeckAndFront(1, "θεός")
	if card.Back != "god" || card.Transliteration != "theos" {
		t.Errorf("card not refreshed: %+v", card)
	}
}

func TestImportCollectsRowErrors(t *testing.T) {
	path := writeXLSX(t, [][]string{
		{"καλός", "beautiful", "vocab", "", "", "Attic core"},
		{"", "missing front", "vocab", "", "", "Attic core"},
		{"ἀγαθός", "", "vocab", "", "", "Attic core"},       // missing back
		{"κακός", "bad", "adjective", "", "", "Attic core"}, // unknown kind
	})

	im, _, _ := newTestImporter()
	result, err := im.ImportFile(path, DefaultImportConfig())
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}

	if result.Created != 1 {
		t.Errorf("Created = %d, want only the valid row", result.Created)
	}
	if len(result.Errors) != 3 {
		t.Fatalf("errors = %v, want 3", result.Errors)
	}
	wantRows := []int{3, 4, 5} // sheet rows, header included
	for i, e := range result.Errors {
		if e.Row != wantRows[i] {
			t.Errorf("error %d on row %d, want %d (%s)", i, e.Row, wantRows[i], e.Message)
		}
	}
}

func TestImportSkipsBlankRowsAndDefaultsKind(t *testing.T) {
	path := writeXLSX(t, [][]string{
		{"εἰρήνη", "peace", "", "", "", "Attic core"}, // no kind: defaults to vocab
		{"", "", "", "", "", ""},                      // blank: skipped silently
		{"πόλεμος", "war", "vocab", "", "", "Attic core"},
	})

	im, _, cards := newTestImporter()
	result, err := im.ImportFile(path, DefaultImportConfig())
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}

	if result.Processed != 2 || result.Created != 2 || result.Skipped != 1 {
		t.Errorf("result = %+v, want 2 created, 1 skipped", result)
	}
	card, _ := cards.GetByDeckAndFront(1, "εἰρήνη")
	if card == nil || card.Kind != models.KindVocab {
		t.Errorf("card = %+v, want kind defaulted to vocab", card)
	}
}

func TestImportCSVFallsBackToDefaultDeck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cards.csv")
	csv := "front,back,kind\n" +
		"ἄνθρωπος,human being,vocab\n" +
		"ἵππος,horse,vocab\n"
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	im, decks, _ := newTestImporter()
	result, err := im.ImportFile(path, DefaultImportConfig())
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}

	if result.Created != 2 {
		t.Errorf("Created = %d, want 2", result.Created)
	}
	// No deck column values in the file: everything lands in DefaultDeck.
	if d, _ := decks.GetByName("Imported"); d == nil {
		t.Error("default deck not created")
	}
}

func TestImportRejectsInvalidConfig(t *testing.T) {
	im, _, _ := newTestImporter()

	cfg := DefaultImportConfig()
	cfg.FrontColumn = "" // required
	if _, err := im.ImportFile("whatever.xlsx", cfg); err == nil {
		t.Error("ImportFile accepted a config without a front column")
	}

	cfg = DefaultImportConfig()
	cfg.DeckColumn = ""
	cfg.DefaultDeck = "" // required when no deck column
	if _, err := im.ImportFile("whatever.xlsx", cfg); err == nil {
		t.Error("ImportFile accepted a config with neither deck column nor default deck")
	}
}
