// Package excel seeds decks and cards from spreadsheet files. Importing
// creates content only; per-user scheduling states are born later, when a
// card is first introduced to a learner.
package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// DeckStore is the slice of the deck repository the importer needs.
type DeckStore interface {
	GetByName(name string) (*models.Deck, error)
	Create(deck *models.Deck) error
}

// CardStore is the slice of the card repository the importer needs.
type CardStore interface {
	GetByDeckAndFront(deckID int64, front string) (*models.Card, error)
	Create(card *models.Card) error
	Update(card *models.Card) error
}

// ImportConfig says where card fields live in the sheet. Column values are
// Excel letters. A row's deck comes from DeckColumn when set, otherwise
// every card lands in DefaultDeck.
type ImportConfig struct {
	SheetName             string `validate:"required"`
	FrontColumn           string `validate:"required,alpha"`
	BackColumn            string `validate:"required,alpha"`
	KindColumn            string `validate:"omitempty,alpha"`
	TransliterationColumn string `validate:"omitempty,alpha"`
	NotesColumn           string `validate:"omitempty,alpha"`
	DeckColumn            string `validate:"omitempty,alpha"`
	DefaultDeck           string `validate:"required_without=DeckColumn"`
	StartRow              int    `validate:"min=1"` // 1-based; 2 skips a header row
}

// DefaultImportConfig returns the layout the bundled word lists use.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SheetName:             "Sheet1",
		FrontColumn:           "A",
		BackColumn:            "B",
		KindColumn:            "C",
		TransliterationColumn: "D",
		NotesColumn:           "E",
		DeckColumn:            "F",
		DefaultDeck:           "Imported",
		StartRow:              2,
	}
}

// RowError reports why one row was rejected. Rejected rows never abort the
// rest of the import.
type RowError struct {
	Row     int
	Message string
}

func (e RowError) String() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ImportResult summarizes one import run.
type ImportResult struct {
	Processed int
	Created   int
	Updated   int
	Skipped   int
	Errors    []RowError
}

// cardRow is the validated shape of one content row.
type cardRow struct {
	Front string `validate:"required"`
	Back  string `validate:"required"`
	Kind  string `validate:"omitempty,oneof=vocab grammar passage"`
}

// Importer seeds cards from .xlsx and .csv files.
type Importer struct {
	decks    DeckStore
	cards    CardStore
	validate *validator.Validate
	log      *logrus.Logger
}

// NewImporter wires the stores.
func NewImporter(decks DeckStore, cards CardStore, log *logrus.Logger) *Importer {
	return &Importer{
		decks:    decks,
		cards:    cards,
		validate: validator.New(),
		log:      log,
	}
}

// ImportFile imports a spreadsheet, choosing the parser by extension
// (.csv, otherwise excelize). Cards are upserted by (deck, front): an
// existing card gets its back, transliteration and notes refreshed, so
// re-importing a corrected list never duplicates content.
func (im *Importer) ImportFile(path string, cfg ImportConfig) (*ImportResult, error) {
	if err := im.validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid import config: %w", err)
	}

	var (
		rows [][]string
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		rows, err = readCSV(path)
	} else {
		rows, err = readExcel(path, cfg.SheetName)
	}
	if err != nil {
		return nil, err
	}

	result := im.processRows(rows, cfg)
	im.log.WithFields(logrus.Fields{
		"file":    filepath.Base(path),
		"created": result.Created,
		"updated": result.Updated,
		"skipped": result.Skipped,
		"errors":  len(result.Errors),
	}).Info("import finished")
	return result, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// processRows walks the sheet once, resolving decks through a small cache
// so a thousand-row list does not hit the store per row.
func (im *Importer) processRows(rows [][]string, cfg ImportConfig) *ImportResult {
	result := &ImportResult{}
	deckIDs := make(map[string]int64)

	for i, row := range rows {
		rowNum := i + 1
		if rowNum < cfg.StartRow {
			continue
		}
		if isBlank(row) {
			result.Skipped++
			continue
		}
		result.Processed++

		if err := im.importRow(row, cfg, deckIDs, result); err != nil {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: err.Error()})
		}
	}
	return result
}

func (im *Importer) importRow(row []string, cfg ImportConfig, deckIDs map[string]int64, result *ImportResult) error {
	parsed := cardRow{
		Front: strings.TrimSpace(cell(row, cfg.FrontColumn)),
		Back:  strings.TrimSpace(cell(row, cfg.BackColumn)),
		Kind:  strings.ToLower(strings.TrimSpace(cell(row, cfg.KindColumn))),
	}
	if err := im.validate.Struct(parsed); err != nil {
		return fmt.Errorf("invalid row: %w", err)
	}
	kind := models.CardKind(parsed.Kind)
	if parsed.Kind == "" {
		kind = models.KindVocab
	}

	deckName := strings.TrimSpace(cell(row, cfg.DeckColumn))
	if deckName == "" {
		deckName = cfg.DefaultDeck
	}
	deckID, err := im.resolveDeck(deckName, deckIDs)
	if err != nil {
		return err
	}

	existing, err := im.cards.GetByDeckAndFront(deckID, parsed.Front)
	if err != nil {
		return err
	}
	if existing != nil {
		existing.Kind = kind
		existing.Back = parsed.Back
		existing.Transliteration = strings.TrimSpace(cell(row, cfg.TransliterationColumn))
		existing.Notes = strings.TrimSpace(cell(row, cfg.NotesColumn))
		if err := im.cards.Update(existing); err != nil {
			return err
		}
		result.Updated++
		return nil
	}

	card := &models.Card{
		DeckID:          deckID,
		Kind:            kind,
		Front:           parsed.Front,
		Back:            parsed.Back,
		Transliteration: strings.TrimSpace(cell(row, cfg.TransliterationColumn)),
		Notes:           strings.TrimSpace(cell(row, cfg.NotesColumn)),
	}
	if err := im.cards.Create(card); err != nil {
		return err
	}
	result.Created++
	return nil
}

// resolveDeck returns the deck's ID, creating the deck on first sight.
func (im *Importer) resolveDeck(name string, cache map[string]int64) (int64, error) {
	key := strings.ToLower(name)
	if id, ok := cache[key]; ok {
		return id, nil
	}

	deck, err := im.decks.GetByName(name)
	if err != nil {
		return 0, err
	}
	if deck == nil {
		deck = &models.Deck{Name: name}
		if err := im.decks.Create(deck); err != nil {
			return 0, fmt.Errorf("failed to create deck %q: %w", name, err)
		}
		im.log.WithField("deck", name).Info("created deck")
	}
	cache[key] = deck.ID
	return deck.ID, nil
}

// cell returns the row's value under an Excel column letter, or "" when
// the row is too short or the column is not configured.
func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// columnToIndex converts an Excel column letter ("A", "AB") to a 0-based
// index.
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
