package bot

import (
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/romain-girardi-eng/greekify-app-sub000/internal/excel"
	"github.com/romain-girardi-eng/greekify-app-sub000/internal/spaced_repetition"
	"github.com/romain-girardi-eng/greekify-app-sub000/internal/study"
	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "cards"},
		{1, "card"},
		{2, "cards"},
	}
	for _, tt := range tests {
		if got := plural(tt.n, "card", "cards"); got != tt.want {
			t.Errorf("plural(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short stays", "λόγος", 10, "λόγος"},
		{"exact stays", "λόγος", 5, "λόγος"},
		{"long cut", "μῆνιν ἄειδε θεά", 6, "μῆνιν…"},
		{"ascii cut", "abcdef", 4, "abc…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestFormatCardFrontEscapesAndMarksNew(t *testing.T) {
	item := &study.Item{
		Card: models.Card{Kind: models.KindVocab, Front: "<b>λόγος</b>"},
		New:  true,
	}
	got := formatCardFront(item, 3, 12)

	if !strings.Contains(got, "3/12") {
		t.Errorf("front %q misses the position", got)
	}
	if !strings.Contains(got, "🌱 new") {
		t.Error("front does not mark an introduced card")
	}
	if !strings.Contains(got, "&lt;b&gt;λόγος&lt;/b&gt;") {
		t.Errorf("card-sourced markup not escaped: %q", got)
	}

	seen := formatCardFront(&study.Item{Card: models.Card{Kind: models.KindGrammar, Front: "λύομεν"}}, 1, 1)
	if strings.Contains(seen, "new") {
		t.Errorf("already-seen card marked new: %q", seen)
	}
	if !strings.Contains(seen, "morphology") {
		t.Errorf("grammar card not labeled morphology: %q", seen)
	}
}

func TestFormatCardFrontTransliterationHint(t *testing.T) {
	vocab := formatCardFront(&study.Item{Card: models.Card{
		Kind:            models.KindVocab,
		Front:           "θάλαττα",
		Transliteration: "thalatta",
	}}, 1, 1)
	if !strings.Contains(vocab, "<i>thalatta</i>") {
		t.Errorf("vocab front %q misses the reading hint", vocab)
	}

	// Grammar fronts are inflected forms the learner must parse unaided.
	grammar := formatCardFront(&study.Item{Card: models.Card{
		Kind:            models.KindGrammar,
		Front:           "λέλυκας",
		Transliteration: "lelykas",
	}}, 1, 1)
	if strings.Contains(grammar, "lelykas") {
		t.Errorf("grammar front %q should not carry the hint", grammar)
	}
}

func TestFormatCardBackSections(t *testing.T) {
	full := &study.Item{Card: models.Card{
		Front:           "λόγος",
		Back:            "word, speech, reason",
		Transliteration: "logos",
		Notes:           "cf. λέγω",
	}}
	got := formatCardBack(full)
	for _, want := range []string{"λόγος", "word, speech, reason", "<i>logos</i>", "cf. λέγω"} {
		if !strings.Contains(got, want) {
			t.Errorf("back %q misses %q", got, want)
		}
	}

	bare := formatCardBack(&study.Item{Card: models.Card{Front: "καί", Back: "and"}})
	if strings.Contains(bare, "<i>") || strings.Contains(bare, "💬") {
		t.Errorf("empty optional fields still rendered: %q", bare)
	}
}

func TestRatingKeyboard(t *testing.T) {
	preview := map[spaced_repetition.Quality]string{
		spaced_repetition.Again: "1m",
		spaced_repetition.Hard:  "10m",
		spaced_repetition.Good:  "10m",
		spaced_repetition.Easy:  "4d",
	}
	kb := ratingKeyboard(preview)

	if len(kb.InlineKeyboard) != 3 {
		t.Fatalf("rating keyboard has %d rows, want 4 ratings over 2 rows plus stop", len(kb.InlineKeyboard))
	}
	if len(kb.InlineKeyboard[0]) != 2 || len(kb.InlineKeyboard[1]) != 2 {
		t.Fatalf("rating rows have %d and %d buttons, want 2 and 2",
			len(kb.InlineKeyboard[0]), len(kb.InlineKeyboard[1]))
	}

	wantData := []string{"rate_1", "rate_2", "rate_3", "rate_4"}
	wantLabel := []string{"1m", "10m", "10m", "4d"}
	buttons := append(kb.InlineKeyboard[0], kb.InlineKeyboard[1]...)
	for i, btn := range buttons {
		if btn.CallbackData == nil || *btn.CallbackData != wantData[i] {
			t.Errorf("button %d callback = %v, want %q", i, btn.CallbackData, wantData[i])
		}
		if !strings.Contains(btn.Text, wantLabel[i]) {
			t.Errorf("button %d text %q misses preview %q", i, btn.Text, wantLabel[i])
		}
	}

	stop := kb.InlineKeyboard[2][0]
	if stop.CallbackData == nil || *stop.CallbackData != callbackStopReview {
		t.Errorf("stop button callback = %v, want %q", stop.CallbackData, callbackStopReview)
	}
}

func TestDrillKeyboard(t *testing.T) {
	q := &study.Question{
		Card:    models.Card{Front: "θάλαττα"},
		Options: []string{"sea", "land", "sky", "river"},
		Answer:  0,
	}
	kb := drillKeyboard(q)

	if len(kb.InlineKeyboard) != 5 {
		t.Fatalf("drill keyboard has %d rows, want one per option plus stop", len(kb.InlineKeyboard))
	}
	for i := 0; i < 4; i++ {
		btn := kb.InlineKeyboard[i][0]
		if btn.Text != q.Options[i] {
			t.Errorf("row %d text = %q, want %q", i, btn.Text, q.Options[i])
		}
		want := "drill_" + string(rune('0'+i))
		if btn.CallbackData == nil || *btn.CallbackData != want {
			t.Errorf("row %d callback = %v, want %q", i, btn.CallbackData, want)
		}
	}
	stop := kb.InlineKeyboard[4][0]
	if stop.CallbackData == nil || *stop.CallbackData != callbackStopDrill {
		t.Errorf("stop button callback = %v, want %q", stop.CallbackData, callbackStopDrill)
	}
}

func TestFormatRatingOutcome(t *testing.T) {
	item := &study.Item{Card: models.Card{Front: "λόγος", Back: "word"}}

	learning := formatRatingOutcome(item, spaced_repetition.Again, spaced_repetition.ReviewResult{
		Learning: true,
		Delay:    time.Minute,
	})
	if !strings.Contains(learning, "next in 1m") {
		t.Errorf("learning outcome %q misses the 1m delay", learning)
	}
	if !strings.Contains(learning, "Again") {
		t.Errorf("outcome %q misses the rating", learning)
	}

	graduated := formatRatingOutcome(item, spaced_repetition.Easy, spaced_repetition.ReviewResult{
		State: models.ReviewState{Interval: 4},
	})
	if !strings.Contains(graduated, "next in 4d") {
		t.Errorf("graduated outcome %q misses the 4d interval", graduated)
	}
}

func TestFormatDrillOutcome(t *testing.T) {
	q := &study.Question{
		Card:    models.Card{Front: "θάλαττα"},
		Options: []string{"sea", "land"},
		Answer:  0,
	}

	right := formatDrillOutcome(q, 0)
	if !strings.HasPrefix(right, "✅") || !strings.Contains(right, "sea") {
		t.Errorf("correct outcome %q should lead with a check and the gloss", right)
	}

	wrong := formatDrillOutcome(q, 1)
	if !strings.HasPrefix(wrong, "❌") {
		t.Errorf("wrong outcome %q should lead with a cross", wrong)
	}
	if !strings.Contains(wrong, "sea") || !strings.Contains(wrong, "land") {
		t.Errorf("wrong outcome %q should show both the answer and the pick", wrong)
	}
}

func TestFormatForecast(t *testing.T) {
	day := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	forecast := []spaced_repetition.ForecastDay{
		{Day: day, Count: 12},
		{Day: day.AddDate(0, 0, 1), Count: 3},
		{Day: day.AddDate(0, 0, 2), Count: 0},
	}
	got := formatForecast(forecast)

	if !strings.Contains(got, "Today") || !strings.Contains(got, "Tomorrow") {
		t.Errorf("forecast %q misses the relative day labels", got)
	}
	if !strings.Contains(got, "Wed 6 Mar") {
		t.Errorf("forecast %q misses the dated label", got)
	}
	if !strings.Contains(got, "<b>15</b>") {
		t.Errorf("forecast %q misses the total of 15", got)
	}
	// The busiest day gets the full bar, the others scale down.
	if !strings.Contains(got, strings.Repeat("▇", 12)+" 12") {
		t.Errorf("forecast %q misses the full-width peak bar", got)
	}
	if !strings.Contains(got, strings.Repeat("▇", 3)+" 3") {
		t.Errorf("forecast %q misses the scaled bar for 3", got)
	}
}

func TestFormatReviewHistoryZeroFills(t *testing.T) {
	now := time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC)
	history := []models.DayCount{
		{Day: "2024-03-05", Count: 4},
		{Day: "2024-03-10", Count: 12},
	}
	got := formatReviewHistory(history, now)

	// Window is March 4th through 10th inclusive.
	want := "🗓 Last 7 days: 0 · 4 · 0 · 0 · 0 · 0 · 12"
	if got != want {
		t.Errorf("history = %q, want %q", got, want)
	}
}

func TestForecastBar(t *testing.T) {
	tests := []struct {
		name        string
		count, peak int
		want        int
	}{
		{"zero count", 0, 20, 0},
		{"zero peak", 5, 0, 0},
		{"peak is full width", 20, 20, 12},
		{"small count still visible", 1, 100, 1},
		{"half", 10, 20, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := forecastBar(tt.count, tt.peak)
			if n := strings.Count(got, "▇"); n != tt.want {
				t.Errorf("forecastBar(%d, %d) = %d cells, want %d", tt.count, tt.peak, n, tt.want)
			}
		})
	}
}

func TestSettingsPanel(t *testing.T) {
	on, kbOn := settingsPanel(&models.UserSettings{
		NewCardsPerDay:   15,
		RemindersEnabled: true,
		ReminderHour:     8,
	}, "Attic core")
	if !strings.Contains(on, "<b>15</b>") || !strings.Contains(on, "08:00") || !strings.Contains(on, "Attic core") {
		t.Errorf("panel %q misses a setting", on)
	}
	if !keyboardHasButton(kbOn, "🔕 Disable reminders") {
		t.Error("enabled reminders should offer the disable toggle")
	}

	off, kbOff := settingsPanel(&models.UserSettings{NewCardsPerDay: 10}, "all decks")
	if !strings.Contains(off, "<b>off</b>") {
		t.Errorf("panel %q should report reminders off", off)
	}
	if !keyboardHasButton(kbOff, "🔔 Enable reminders") {
		t.Error("disabled reminders should offer the enable toggle")
	}
}

func keyboardHasButton(kb tgbotapi.InlineKeyboardMarkup, label string) bool {
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if btn.Text == label {
				return true
			}
		}
	}
	return false
}

func TestFormatImportResultCapsErrors(t *testing.T) {
	result := &excel.ImportResult{Processed: 100, Created: 80, Updated: 10, Skipped: 10}
	for i := 2; i <= 9; i++ {
		result.Errors = append(result.Errors, excel.RowError{Row: i, Message: "front is empty"})
	}
	got := formatImportResult(result)

	if !strings.Contains(got, "8 rows rejected") {
		t.Errorf("summary %q misses the rejection count", got)
	}
	if n := strings.Count(got, "• row"); n != 5 {
		t.Errorf("summary lists %d rows, want the cap of 5", n)
	}
	if !strings.Contains(got, "and 3 more") {
		t.Errorf("summary %q misses the overflow note", got)
	}

	clean := formatImportResult(&excel.ImportResult{Processed: 4, Created: 4})
	if strings.Contains(clean, "rejected") {
		t.Errorf("clean import %q should not mention rejections", clean)
	}
}

func TestLeechWarningFiresOnBandCrossing(t *testing.T) {
	b := &Bot{core: spaced_repetition.New(spaced_repetition.DefaultConfig())}
	card := models.Card{Front: "γίγνομαι"}

	tests := []struct {
		name          string
		before, after int
		wantMsg       bool
		wantFragment  string
	}{
		{"below warning", 3, 4, false, ""},
		{"crosses warning", 4, 5, true, "⚠️"},
		{"inside warning band", 5, 6, false, ""},
		{"crosses flag", 7, 8, true, "🚩"},
		{"beyond flag", 8, 9, false, ""},
		{"no change", 5, 5, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.leechWarning(card,
				models.ReviewState{Lapses: tt.before},
				models.ReviewState{Lapses: tt.after})
			if tt.wantMsg {
				if got == "" {
					t.Fatalf("lapses %d -> %d: want a warning", tt.before, tt.after)
				}
				if !strings.Contains(got, tt.wantFragment) || !strings.Contains(got, "γίγνομαι") {
					t.Errorf("warning %q misses %q or the card front", got, tt.wantFragment)
				}
			} else if got != "" {
				t.Errorf("lapses %d -> %d: unexpected warning %q", tt.before, tt.after, got)
			}
		})
	}
}
