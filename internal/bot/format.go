package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/romain-girardi-eng/greekify-app-sub000/internal/excel"
	"github.com/romain-girardi-eng/greekify-app-sub000/internal/spaced_repetition"
	"github.com/romain-girardi-eng/greekify-app-sub000/internal/study"
	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// Telegram rejects messages over 4096 characters; passages can be long.
const maxCardText = 3500

func plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

// escape neutralizes card content for HTML parse mode. Card text comes from
// imports, so it can contain anything.
func escape(s string) string {
	return html.EscapeString(s)
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func kindIcon(k models.CardKind) string {
	switch k {
	case models.KindGrammar:
		return "✍️"
	case models.KindPassage:
		return "📜"
	default:
		return "📖"
	}
}

func kindLabel(k models.CardKind) string {
	switch k {
	case models.KindGrammar:
		return "morphology"
	case models.KindPassage:
		return "passage"
	default:
		return "vocabulary"
	}
}

// formatCardFront renders the question side of a review item. Vocab cards
// carry the transliteration as a reading hint; it never gives the gloss
// away.
func formatCardFront(item *study.Item, pos, total int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %d/%d · %s", kindIcon(item.Card.Kind), pos, total, kindLabel(item.Card.Kind)))
	if item.New {
		sb.WriteString(" · 🌱 new")
	}
	sb.WriteString("\n\n<b>")
	sb.WriteString(escape(truncate(item.Card.Front, maxCardText)))
	sb.WriteString("</b>")
	if item.Card.Kind == models.KindVocab && item.Card.Transliteration != "" {
		sb.WriteString("\n<i>")
		sb.WriteString(escape(item.Card.Transliteration))
		sb.WriteString("</i>")
	}
	return sb.String()
}

// formatCardBack renders the revealed card: front, answer, transliteration
// and notes, in that order.
func formatCardBack(item *study.Item) string {
	var sb strings.Builder
	sb.WriteString("<b>")
	sb.WriteString(escape(item.Card.Front))
	sb.WriteString("</b>\n\n")
	sb.WriteString(escape(truncate(item.Card.Back, maxCardText)))
	if item.Card.Transliteration != "" {
		sb.WriteString("\n\n<i>")
		sb.WriteString(escape(item.Card.Transliteration))
		sb.WriteString("</i>")
	}
	if item.Card.Notes != "" {
		sb.WriteString("\n💬 ")
		sb.WriteString(escape(truncate(item.Card.Notes, 500)))
	}
	sb.WriteString("\n\nHow well did you recall it?")
	return sb.String()
}

func qualityTag(q spaced_repetition.Quality) string {
	switch q {
	case spaced_repetition.Again:
		return "❌ Again"
	case spaced_repetition.Hard:
		return "😬 Hard"
	case spaced_repetition.Easy:
		return "💫 Easy"
	default:
		return "✅ Good"
	}
}

// formatRatingOutcome replaces the card message once a rating is applied:
// the pairing stays on screen, followed by when the card comes back.
func formatRatingOutcome(item *study.Item, q spaced_repetition.Quality, res spaced_repetition.ReviewResult) string {
	var next string
	if res.Learning {
		next = spaced_repetition.FormatDelay(res.Delay)
	} else {
		next = spaced_repetition.FormatDays(res.State.Interval)
	}
	return fmt.Sprintf("<b>%s</b> — %s\n\n%s · next in %s",
		escape(item.Card.Front),
		escape(truncate(item.Card.Back, 200)),
		qualityTag(q), next)
}

// revealKeyboard is shown with the card front.
func revealKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👀 Show answer", callbackReveal),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏹ Stop session", callbackStopReview),
		),
	)
}

// ratingKeyboard is shown with the revealed card. Every button carries the
// interval its rating would produce, so the learner sees the stakes.
func ratingKeyboard(preview map[spaced_repetition.Quality]string) tgbotapi.InlineKeyboardMarkup {
	label := func(q spaced_repetition.Quality) string {
		if p, ok := preview[q]; ok {
			return fmt.Sprintf("%s · %s", qualityTag(q), p)
		}
		return qualityTag(q)
	}
	data := func(q spaced_repetition.Quality) string {
		return fmt.Sprintf("%s%d", prefixRate, int(q))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label(spaced_repetition.Again), data(spaced_repetition.Again)),
			tgbotapi.NewInlineKeyboardButtonData(label(spaced_repetition.Hard), data(spaced_repetition.Hard)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label(spaced_repetition.Good), data(spaced_repetition.Good)),
			tgbotapi.NewInlineKeyboardButtonData(label(spaced_repetition.Easy), data(spaced_repetition.Easy)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏹ Stop session", callbackStopReview),
		),
	)
}

// formatQuestion renders one drill question.
func formatQuestion(q *study.Question, pos, total int) string {
	return fmt.Sprintf("🎯 %d/%d\n\n<b>%s</b> — pick the meaning:", pos, total, escape(q.Card.Front))
}

// drillKeyboard lists the answer options, one per row.
func drillKeyboard(q *study.Question) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(q.Options)+1)
	for i, opt := range q.Options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(truncate(opt, 48), fmt.Sprintf("%s%d", prefixDrill, i)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⏹ Stop drill", callbackStopDrill),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// formatDrillOutcome replaces the question message after an answer.
func formatDrillOutcome(q *study.Question, choice int) string {
	correct := q.Options[q.Answer]
	if choice == q.Answer {
		return fmt.Sprintf("✅ <b>%s</b> — %s", escape(q.Card.Front), escape(correct))
	}
	return fmt.Sprintf("❌ <b>%s</b> — %s\nYou picked: <i>%s</i>",
		escape(q.Card.Front), escape(correct), escape(q.Options[choice]))
}

// formatForecast renders the review-load horizon as a small bar chart.
func formatForecast(forecast []spaced_repetition.ForecastDay) string {
	total := lo.SumBy(forecast, func(d spaced_repetition.ForecastDay) int { return d.Count })
	peak := lo.MaxBy(forecast, func(a, b spaced_repetition.ForecastDay) bool { return a.Count > b.Count })

	var sb strings.Builder
	sb.WriteString("📅 <b>Review forecast</b>\n\n<pre>")
	for i, d := range forecast {
		var day string
		switch i {
		case 0:
			day = "Today"
		case 1:
			day = "Tomorrow"
		default:
			day = d.Day.Format("Mon 2 Jan")
		}
		sb.WriteString(fmt.Sprintf("%-10s %s %d\n", day, forecastBar(d.Count, peak.Count), d.Count))
	}
	sb.WriteString("</pre>\n")
	sb.WriteString(fmt.Sprintf("Total: <b>%d</b> %s over %d %s.",
		total, plural(total, "review", "reviews"), len(forecast), plural(len(forecast), "day", "days")))
	return sb.String()
}

// formatReviewHistory renders reviews-per-day for the last week, oldest
// first. The store returns sparse rows; missing days read as 0.
func formatReviewHistory(history []models.DayCount, now time.Time) string {
	byDay := lo.SliceToMap(history, func(d models.DayCount) (string, int) {
		return d.Day, d.Count
	})
	counts := make([]string, 0, 7)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")
		counts = append(counts, strconv.Itoa(byDay[day]))
	}
	return "🗓 Last 7 days: " + strings.Join(counts, " · ")
}

// forecastBar scales count against the busiest day, 12 cells wide. A
// nonzero count always gets at least one cell.
func forecastBar(count, peak int) string {
	if count == 0 || peak == 0 {
		return ""
	}
	width := count * 12 / peak
	if width < 1 {
		width = 1
	}
	return strings.Repeat("▇", width)
}

// settingsPanel renders the settings overview with its control keyboard.
func settingsPanel(settings *models.UserSettings, deckName string) (string, tgbotapi.InlineKeyboardMarkup) {
	reminder := "off"
	if settings.RemindersEnabled {
		reminder = fmt.Sprintf("%02d:00", settings.ReminderHour)
	}
	text := fmt.Sprintf("⚙️ <b>Settings</b>\n\n"+
		"📥 New cards per day: <b>%d</b>\n"+
		"⏰ Daily reminder: <b>%s</b>\n"+
		"📚 Studying: <b>%s</b>",
		settings.NewCardsPerDay, reminder, escape(deckName))

	toggleLabel := "🔔 Enable reminders"
	if settings.RemindersEnabled {
		toggleLabel = "🔕 Disable reminders"
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📥 New cards per day", callbackSettingsNew),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Reminder hour", callbackSettingsHour),
			tgbotapi.NewInlineKeyboardButtonData(toggleLabel, callbackToggleRemind),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📚 Choose deck", callbackSettingsDeck),
		),
	)
	return text, keyboard
}

// formatImportResult summarizes one import run, listing at most five of the
// rejected rows.
func formatImportResult(result *excel.ImportResult) string {
	var sb strings.Builder
	sb.WriteString("📥 <b>Import finished</b>\n\n")
	sb.WriteString(fmt.Sprintf("Processed: %d\n", result.Processed))
	sb.WriteString(fmt.Sprintf("Created: %d · Updated: %d · Skipped: %d\n", result.Created, result.Updated, result.Skipped))
	if len(result.Errors) > 0 {
		sb.WriteString(fmt.Sprintf("\n⚠️ %d %s rejected:\n",
			len(result.Errors), plural(len(result.Errors), "row", "rows")))
		for i, e := range result.Errors {
			if i == 5 {
				sb.WriteString(fmt.Sprintf("… and %d more\n", len(result.Errors)-5))
				break
			}
			sb.WriteString("• " + escape(e.String()) + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// leechWarning emits a message when a lapse pushes the card across a leech
// band. Crossing is what matters; staying inside a band stays quiet.
func (b *Bot) leechWarning(card models.Card, before, after models.ReviewState) string {
	was, is := b.core.LeechLevel(before), b.core.LeechLevel(after)
	if is <= was {
		return ""
	}
	switch is {
	case spaced_repetition.LeechFlagged:
		return fmt.Sprintf("🚩 <b>%s</b> is now flagged as a leech (%d lapses). "+
			"Consider rewording it or splitting it into smaller cards.",
			escape(card.Front), after.Lapses)
	case spaced_repetition.LeechWarning:
		return fmt.Sprintf("⚠️ <b>%s</b> keeps slipping away (%d lapses). "+
			"Give it extra attention — a mnemonic helps.",
			escape(card.Front), after.Lapses)
	default:
		return ""
	}
}
