package bot

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/romain-girardi-eng/greekify-app-sub000/internal/excel"
	"github.com/romain-girardi-eng/greekify-app-sub000/internal/spaced_repetition"
	"github.com/romain-girardi-eng/greekify-app-sub000/internal/study"
	"github.com/romain-girardi-eng/greekify-app-sub000/pkg/models"
)

// Callback data. Prefixed values carry a payload after the underscore.
const (
	callbackReveal     = "reveal"
	callbackStopReview = "stop_review"
	callbackStopDrill  = "stop_drill"
	callbackCancel     = "cancel"

	callbackSettingsNew  = "settings_new"
	callbackSettingsHour = "settings_hour"
	callbackSettingsDeck = "settings_deck"
	callbackToggleRemind = "toggle_reminders"

	prefixRate    = "rate_"
	prefixDrill   = "drill_"
	prefixSetNew  = "set_new_"
	prefixSetHour = "set_hour_"
	prefixSetDeck = "set_deck_"
)

// handleCommand dispatches one bot command. Handler errors are logged and
// answered with a generic apology; the update loop never sees them.
func (b *Bot) handleCommand(message *tgbotapi.Message) {
	if message.From == nil || message.Chat == nil {
		return
	}

	var err error
	switch message.Command() {
	case "start":
		err = b.handleStart(message)
	case "help":
		err = b.handleHelp(message)
	case "review":
		err = b.handleReview(message)
	case "learn":
		err = b.handleLearn(message)
	case "drill":
		err = b.handleDrill(message)
	case "stats":
		err = b.handleStats(message)
	case "forecast":
		err = b.handleForecast(message)
	case "decks":
		err = b.handleDecks(message)
	case "settings":
		err = b.handleSettings(message)
	case "import":
		err = b.handleImport(message)
	case "cancel":
		err = b.handleCancel(message)
	default:
		b.sendText(message.Chat.ID, "Unknown command. Use /help for the command list.")
		return
	}

	if err != nil {
		b.log.WithError(err).WithFields(logrus.Fields{
			"command": message.Command(),
			"user_id": message.From.ID,
		}).Error("command failed")
		b.sendText(message.Chat.ID, "😕 Something went wrong. Please try again.")
	}
}

// handleCallback dispatches one inline-button press.
func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.From == nil {
		return
	}
	// Acknowledge immediately so the button stops spinning.
	b.answerCallback(cb.ID, "")

	var err error
	data := cb.Data
	switch {
	case data == callbackReveal:
		err = b.revealCurrentCard(cb)
	case strings.HasPrefix(data, prefixRate):
		err = b.applyRating(cb, strings.TrimPrefix(data, prefixRate))
	case data == callbackStopReview:
		err = b.stopReview(cb)
	case strings.HasPrefix(data, prefixDrill):
		err = b.answerDrill(cb, strings.TrimPrefix(data, prefixDrill))
	case data == callbackStopDrill:
		err = b.stopDrill(cb)
	case data == callbackSettingsNew:
		err = b.showNewLimitPicker(cb)
	case data == callbackSettingsHour:
		err = b.showReminderHourPicker(cb)
	case data == callbackSettingsDeck:
		err = b.showDeckPicker(cb)
	case data == callbackToggleRemind:
		err = b.toggleReminders(cb)
	case strings.HasPrefix(data, prefixSetNew):
		err = b.setNewLimit(cb, strings.TrimPrefix(data, prefixSetNew))
	case strings.HasPrefix(data, prefixSetHour):
		err = b.setReminderHour(cb, strings.TrimPrefix(data, prefixSetHour))
	case strings.HasPrefix(data, prefixSetDeck):
		err = b.setDeck(cb, strings.TrimPrefix(data, prefixSetDeck))
	case data == callbackCancel:
		b.setAwaiting(cb.From.ID, "")
		b.sendText(cb.Message.Chat.ID, "Cancelled.")
	default:
		b.log.WithField("data", data).Warn("unknown callback")
	}

	if err != nil {
		b.log.WithError(err).WithFields(logrus.Fields{
			"callback": data,
			"user_id":  cb.From.ID,
		}).Error("callback failed")
		b.sendText(cb.Message.Chat.ID, "😕 Something went wrong. Please try again.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) error {
	user := &models.User{
		ID:        message.From.ID,
		Username:  message.From.UserName,
		FirstName: message.From.FirstName,
		LastName:  message.From.LastName,
		IsAdmin:   b.cfg.AdminID != 0 && message.From.ID == b.cfg.AdminID,
	}
	if err := b.users.Upsert(user); err != nil {
		return err
	}

	text := "Χαῖρε! 🏛\n\n" +
		"I schedule your Ancient Greek vocabulary, morphology and passages " +
		"with spaced repetition: the better you know a card, the less often you see it.\n\n" +
		"📚 /review — study due cards\n" +
		"🌱 /learn — introduce new cards only\n" +
		"🎯 /drill — multiple-choice self-test\n" +
		"📊 /stats — progress and retention\n" +
		"📅 /forecast — upcoming review load\n" +
		"🏛 /decks — available decks\n" +
		"⚙️ /settings — daily limits and reminders\n\n" +
		"Start with /review — new cards are mixed in automatically."
	return b.sendHTML(message.Chat.ID, text)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) error {
	text := "📖 <b>Commands</b>\n\n" +
		"/review — study everything that is due, plus new cards up to your daily limit\n" +
		"/learn — introduce new cards without reviewing\n" +
		"/drill — multiple-choice quiz over graduated vocabulary (does not affect scheduling)\n" +
		"/stats — phase counts, retention, leeches, cards most at risk\n" +
		"/forecast — how many reviews each of the coming days brings\n" +
		"/decks — decks and card counts\n" +
		"/settings — new-card limit, reminder hour, deck filter\n" +
		"/cancel — abandon the current session or action\n\n" +
		"Rate every card honestly: <b>Again</b> restarts it, <b>Hard</b>/<b>Good</b>/<b>Easy</b> " +
		"stretch the interval by how well you knew it. The buttons show when the card would come back."
	return b.sendHTML(message.Chat.ID, text)
}

func (b *Bot) handleReview(message *tgbotapi.Message) error {
	userID := message.From.ID
	if _, ok := b.sessionFor(userID); ok {
		b.sendText(message.Chat.ID, "A review is already running. Finish it or /cancel first.")
		return nil
	}

	session, err := b.builder.BuildReview(userID)
	if err != nil {
		return fmt.Errorf("build review: %w", err)
	}
	if session.Len() == 0 {
		return b.sendHTML(message.Chat.ID,
			"🎉 Nothing to review and no new cards left for today.\nCheck /forecast to see what is coming.")
	}

	b.setSession(userID, &reviewSession{Session: session})
	if err := b.sendHTML(message.Chat.ID,
		fmt.Sprintf("📚 <b>%d</b> %s to go.", session.Len(), plural(session.Len(), "card", "cards"))); err != nil {
		return err
	}
	b.sendCurrentCard(message.Chat.ID, userID)
	return nil
}

func (b *Bot) handleLearn(message *tgbotapi.Message) error {
	userID := message.From.ID
	if _, ok := b.sessionFor(userID); ok {
		b.sendText(message.Chat.ID, "A review is already running. Finish it or /cancel first.")
		return nil
	}

	session, err := b.builder.BuildLearn(userID)
	if err != nil {
		return fmt.Errorf("build learn: %w", err)
	}
	if session.Len() == 0 {
		return b.sendHTML(message.Chat.ID,
			"No new cards right now — today's allowance is used up or every card is already in rotation.\nRaise the limit under /settings.")
	}

	b.setSession(userID, &reviewSession{Session: session})
	if err := b.sendHTML(message.Chat.ID,
		fmt.Sprintf("🌱 Introducing <b>%d</b> new %s.", session.Len(), plural(session.Len(), "card", "cards"))); err != nil {
		return err
	}
	b.sendCurrentCard(message.Chat.ID, userID)
	return nil
}

// sendCurrentCard shows the front of the item under review, or the session
// summary when the queue is exhausted.
func (b *Bot) sendCurrentCard(chatID, userID int64) {
	rs, ok := b.sessionFor(userID)
	if !ok {
		return
	}
	item, ok := rs.Current()
	if !ok {
		b.finishReview(chatID, userID, rs)
		return
	}
	pos := rs.Len() - rs.Remaining() + 1
	b.sendHTMLWithKeyboard(chatID, formatCardFront(item, pos, rs.Len()), revealKeyboard())
}

// revealCurrentCard flips the card: the message is edited to show the back
// together with the four rating buttons, each labeled with the interval
// that rating would produce.
func (b *Bot) revealCurrentCard(cb *tgbotapi.CallbackQuery) error {
	rs, ok := b.sessionFor(cb.From.ID)
	if !ok {
		b.sendText(cb.Message.Chat.ID, "No review is running. Start one with /review.")
		return nil
	}
	item, ok := rs.Current()
	if !ok {
		b.finishReview(cb.Message.Chat.ID, cb.From.ID, rs)
		return nil
	}

	preview := b.core.Preview(item.Progress.ReviewState, time.Now())
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		cb.Message.Chat.ID,
		cb.Message.MessageID,
		formatCardBack(item),
		ratingKeyboard(preview),
	)
	edit.ParseMode = tgbotapi.ModeHTML
	b.send(edit)
	return nil
}

// applyRating is the heart of the review flow: it runs the scheduling core
// on the current card, persists the replacement state, appends the review
// log and moves the session forward.
func (b *Bot) applyRating(cb *tgbotapi.CallbackQuery, payload string) error {
	userID := cb.From.ID
	rs, ok := b.sessionFor(userID)
	if !ok {
		b.sendText(cb.Message.Chat.ID, "No review is running. Start one with /review.")
		return nil
	}
	item, ok := rs.Current()
	if !ok {
		b.finishReview(cb.Message.Chat.ID, userID, rs)
		return nil
	}

	quality, err := spaced_repetition.ParseQuality(payload)
	if err != nil {
		return err
	}

	now := time.Now()
	before := item.Progress.ReviewState
	res, err := b.core.Review(before, quality, now)
	if err != nil {
		return fmt.Errorf("review card %d: %w", item.Card.ID, err)
	}

	item.Progress.ReviewState = res.State
	if err := b.progress.Update(&item.Progress); err != nil {
		return fmt.Errorf("persist card %d: %w", item.Card.ID, err)
	}

	entry := &models.ReviewLog{
		UserID:         userID,
		CardID:         item.Card.ID,
		Quality:        int(quality),
		IntervalBefore: before.Interval,
		IntervalAfter:  res.State.Interval,
		EaseAfter:      res.State.EaseFactor,
		Learning:       res.Learning,
		ReviewedAt:     now,
	}
	if err := b.logs.Create(entry); err != nil {
		// History is advisory; a lost log row must not abort the session.
		b.log.WithError(err).WithField("card_id", item.Card.ID).Error("review log write failed")
	}

	rs.Reviewed++
	if quality == spaced_repetition.Again {
		rs.Again++
	}
	if res.Learning {
		rs.learning++
	}

	edit := tgbotapi.NewEditMessageText(
		cb.Message.Chat.ID,
		cb.Message.MessageID,
		formatRatingOutcome(item, quality, res),
	)
	edit.ParseMode = tgbotapi.ModeHTML
	b.send(edit)

	if warning := b.leechWarning(item.Card, before, res.State); warning != "" {
		if err := b.sendHTML(cb.Message.Chat.ID, warning); err != nil {
			b.log.WithError(err).Error("leech warning send failed")
		}
	}

	rs.Advance()
	b.sendCurrentCard(cb.Message.Chat.ID, userID)
	return nil
}

func (b *Bot) stopReview(cb *tgbotapi.CallbackQuery) error {
	rs, ok := b.sessionFor(cb.From.ID)
	if !ok {
		b.sendText(cb.Message.Chat.ID, "No review is running.")
		return nil
	}
	b.finishReview(cb.Message.Chat.ID, cb.From.ID, rs)
	return nil
}

// finishReview drops the session and reports what happened. Cards rated
// into the learning steps are due again within minutes, so the summary
// points back at /review.
func (b *Bot) finishReview(chatID, userID int64, rs *reviewSession) {
	b.clearSession(userID)
	if rs.Reviewed == 0 {
		b.sendText(chatID, "Session closed.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏁 Session done: <b>%d</b> %s reviewed",
		rs.Reviewed, plural(rs.Reviewed, "card", "cards")))
	if rs.Again > 0 {
		sb.WriteString(fmt.Sprintf(", %d forgotten", rs.Again))
	}
	sb.WriteString(".")
	if rs.learning > 0 {
		sb.WriteString(fmt.Sprintf("\n⏳ %d %s still in the learning steps — run /review again in a few minutes.",
			rs.learning, plural(rs.learning, "card is", "cards are")))
	}
	if err := b.sendHTML(chatID, sb.String()); err != nil {
		b.log.WithError(err).Error("session summary send failed")
	}
}

func (b *Bot) handleDrill(message *tgbotapi.Message) error {
	userID := message.From.ID
	if _, ok := b.drillFor(userID); ok {
		b.sendText(message.Chat.ID, "A drill is already running. Finish it or /cancel first.")
		return nil
	}

	drill, err := b.builder.BuildDrill(userID, b.cfg.DrillSize)
	if err != nil {
		return fmt.Errorf("build drill: %w", err)
	}
	if drill.Len() == 0 {
		return b.sendHTML(message.Chat.ID,
			"Nothing to drill yet — drills quiz vocabulary that has graduated from the learning steps.\nKeep reviewing with /review.")
	}

	b.setDrill(userID, drill)
	b.sendCurrentQuestion(message.Chat.ID, userID)
	return nil
}

func (b *Bot) sendCurrentQuestion(chatID, userID int64) {
	d, ok := b.drillFor(userID)
	if !ok {
		return
	}
	q, ok := d.Current()
	if !ok {
		b.finishDrill(chatID, userID, d)
		return
	}
	pos := d.Len() - d.Remaining() + 1
	b.sendHTMLWithKeyboard(chatID, formatQuestion(q, pos, d.Len()), drillKeyboard(q))
}

// answerDrill grades one choice and records it. Drill outcomes never touch
// scheduling state.
func (b *Bot) answerDrill(cb *tgbotapi.CallbackQuery, payload string) error {
	userID := cb.From.ID
	d, ok := b.drillFor(userID)
	if !ok {
		b.sendText(cb.Message.Chat.ID, "No drill is running. Start one with /drill.")
		return nil
	}
	q, ok := d.Current()
	if !ok {
		b.finishDrill(cb.Message.Chat.ID, userID, d)
		return nil
	}

	choice, err := strconv.Atoi(payload)
	if err != nil || choice < 0 || choice >= len(q.Options) {
		return fmt.Errorf("invalid drill option %q", payload)
	}

	correct := choice == q.Answer
	if correct {
		d.Correct++
	}
	result := &models.DrillResult{
		UserID:     userID,
		CardID:     q.Card.ID,
		Correct:    correct,
		AnsweredAt: time.Now(),
	}
	if err := b.drills.Create(result); err != nil {
		b.log.WithError(err).WithField("card_id", q.Card.ID).Error("drill result write failed")
	}

	edit := tgbotapi.NewEditMessageText(
		cb.Message.Chat.ID,
		cb.Message.MessageID,
		formatDrillOutcome(q, choice),
	)
	edit.ParseMode = tgbotapi.ModeHTML
	b.send(edit)

	d.Advance()
	b.sendCurrentQuestion(cb.Message.Chat.ID, userID)
	return nil
}

func (b *Bot) stopDrill(cb *tgbotapi.CallbackQuery) error {
	d, ok := b.drillFor(cb.From.ID)
	if !ok {
		b.sendText(cb.Message.Chat.ID, "No drill is running.")
		return nil
	}
	b.finishDrill(cb.Message.Chat.ID, cb.From.ID, d)
	return nil
}

func (b *Bot) finishDrill(chatID, userID int64, d *study.Drill) {
	b.clearDrill(userID)
	answered := d.Len() - d.Remaining()
	if answered == 0 {
		b.sendText(chatID, "Drill closed.")
		return
	}
	accuracy := float64(d.Correct) / float64(answered) * 100
	text := fmt.Sprintf("🏁 Drill done: <b>%d/%d</b> correct (%.0f%%).", d.Correct, answered, accuracy)
	if err := b.sendHTML(chatID, text); err != nil {
		b.log.WithError(err).Error("drill summary send failed")
	}
}

func (b *Bot) handleStats(message *tgbotapi.Message) error {
	userID := message.From.ID
	now := time.Now()

	rows, err := b.progress.GetByUser(userID)
	if err != nil {
		return err
	}
	settings, err := b.settings.Get(userID)
	if err != nil {
		return err
	}
	unseen, err := b.stats.UnseenCount(userID, settings.DeckID)
	if err != nil {
		return err
	}
	dueNow, err := b.progress.CountDueByUser(userID, now)
	if err != nil {
		return err
	}
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	reviewsToday, err := b.logs.CountSince(userID, startOfDay)
	if err != nil {
		return err
	}
	history, err := b.logs.CountPerDay(userID, 7)
	if err != nil {
		return err
	}
	accuracy, answered, err := b.drills.Accuracy(userID, now.AddDate(0, 0, -30))
	if err != nil {
		return err
	}

	phases := make(map[models.Phase]int, 3)
	for _, p := range rows {
		phases[p.Phase]++
	}

	var sb strings.Builder
	sb.WriteString("📊 <b>Your study stats</b>\n\n")
	sb.WriteString(fmt.Sprintf("🃏 In rotation: <b>%d</b> · not yet introduced: %d\n", len(rows), unseen))
	sb.WriteString(fmt.Sprintf("🌱 New: %d · ✍️ Learning: %d · 🎓 Review: %d\n",
		phases[models.PhaseNew], phases[models.PhaseLearning], phases[models.PhaseReview]))
	sb.WriteString(fmt.Sprintf("⏰ Due now: %d · reviews today: %d\n", dueNow, reviewsToday))
	sb.WriteString(formatReviewHistory(history, now) + "\n")
	sb.WriteString(fmt.Sprintf("📈 Retention: %.1f%%\n", spaced_repetition.RetentionRate(rows)))
	if answered > 0 {
		sb.WriteString(fmt.Sprintf("🎯 Drill accuracy (30d): %.0f%% over %d %s\n",
			accuracy, answered, plural(answered, "question", "questions")))
	}

	if leeches := spaced_repetition.Leeches(rows, b.core.Config().LeechThreshold); len(leeches) > 0 {
		sb.WriteString(fmt.Sprintf("\n🚩 <b>Leeches</b> (%d):\n", len(leeches)))
		for i, p := range leeches {
			if i == 5 {
				sb.WriteString(fmt.Sprintf("… and %d more\n", len(leeches)-5))
				break
			}
			sb.WriteString(fmt.Sprintf("• %s — %d lapses\n", b.cardFront(p.CardID), p.Lapses))
		}
	}

	// Rank only cards with review history; a never-seen card is not "at
	// risk", it is just new.
	reviewed := lo.Filter(rows, func(p models.CardProgress, _ int) bool {
		return p.LastReview != nil && p.Phase == models.PhaseReview
	})
	if len(reviewed) > 0 {
		sb.WriteString("\n🔮 <b>Most at risk</b>:\n")
		for i, p := range spaced_repetition.RankByRisk(reviewed, now) {
			if i == 3 {
				break
			}
			sb.WriteString(fmt.Sprintf("• %s — %.0f%% recall\n",
				b.cardFront(p.CardID), spaced_repetition.Retention(p.ReviewState, now)))
		}
	}

	return b.sendHTML(message.Chat.ID, sb.String())
}

// cardFront resolves a card's front for display, degrading to the bare ID
// when the card row is gone.
func (b *Bot) cardFront(cardID int64) string {
	card, err := b.cards.GetByID(cardID)
	if err != nil {
		return fmt.Sprintf("card #%d", cardID)
	}
	return escape(card.Front)
}

func (b *Bot) handleForecast(message *tgbotapi.Message) error {
	rows, err := b.progress.GetByUser(message.From.ID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		b.sendText(message.Chat.ID, "No cards in rotation yet. Start with /review.")
		return nil
	}
	forecast := spaced_repetition.Forecast(rows, time.Now(), b.cfg.ForecastDays)
	return b.sendHTML(message.Chat.ID, formatForecast(forecast))
}

func (b *Bot) handleDecks(message *tgbotapi.Message) error {
	counts, err := b.stats.CardsPerDeck()
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		b.sendText(message.Chat.ID, "No decks yet. An admin can seed cards with /import.")
		return nil
	}
	settings, err := b.settings.Get(message.From.ID)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("🏛 <b>Decks</b>\n\n")
	for _, c := range counts {
		marker := ""
		if settings.DeckID == c.DeckID {
			marker = " ← studying"
		}
		sb.WriteString(fmt.Sprintf("• %s — %d %s%s\n",
			escape(c.DeckName), c.Cards, plural(c.Cards, "card", "cards"), marker))
	}
	if settings.DeckID == 0 {
		sb.WriteString("\nStudying all decks. Narrow it down under /settings.")
	}
	return b.sendHTML(message.Chat.ID, sb.String())
}

func (b *Bot) handleSettings(message *tgbotapi.Message) error {
	settings, err := b.settings.Get(message.From.ID)
	if err != nil {
		return err
	}
	text, keyboard := settingsPanel(settings, b.deckLabel(settings.DeckID))
	b.sendHTMLWithKeyboard(message.Chat.ID, text, keyboard)
	return nil
}

// editSettingsPanel re-renders the settings message in place after a change.
func (b *Bot) editSettingsPanel(cb *tgbotapi.CallbackQuery) error {
	settings, err := b.settings.Get(cb.From.ID)
	if err != nil {
		return err
	}
	text, keyboard := settingsPanel(settings, b.deckLabel(settings.DeckID))
	edit := tgbotapi.NewEditMessageTextAndMarkup(cb.Message.Chat.ID, cb.Message.MessageID, text, keyboard)
	edit.ParseMode = tgbotapi.ModeHTML
	b.send(edit)
	return nil
}

// deckLabel names the user's deck filter. Purely cosmetic, so a vanished
// deck silently reads as the unfiltered default.
func (b *Bot) deckLabel(deckID int64) string {
	if deckID == 0 {
		return "all decks"
	}
	deck, err := b.decks.GetByID(deckID)
	if err != nil {
		return "all decks"
	}
	return deck.Name
}

func (b *Bot) showNewLimitPicker(cb *tgbotapi.CallbackQuery) error {
	var row []tgbotapi.InlineKeyboardButton
	for _, n := range []int{5, 10, 15, 20, 30, 50} {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			strconv.Itoa(n), fmt.Sprintf("%s%d", prefixSetNew, n)))
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		cb.Message.Chat.ID,
		cb.Message.MessageID,
		"📥 How many new cards per day?",
		tgbotapi.NewInlineKeyboardMarkup(row),
	)
	b.send(edit)
	return nil
}

func (b *Bot) setNewLimit(cb *tgbotapi.CallbackQuery, payload string) error {
	n, err := strconv.Atoi(payload)
	if err != nil || n < 1 || n > 200 {
		return fmt.Errorf("invalid new-card limit %q", payload)
	}
	settings, err := b.settings.Get(cb.From.ID)
	if err != nil {
		return err
	}
	settings.NewCardsPerDay = n
	if err := b.settings.Save(settings); err != nil {
		return err
	}
	return b.editSettingsPanel(cb)
}

func (b *Bot) showReminderHourPicker(cb *tgbotapi.CallbackQuery) error {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for hour := 6; hour <= 21; hour++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%02d:00", hour), fmt.Sprintf("%s%d", prefixSetHour, hour)))
		if len(row) == 4 {
			rows = append(rows, row)
			row = nil
		}
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		cb.Message.Chat.ID,
		cb.Message.MessageID,
		"⏰ When should the daily reminder arrive?",
		tgbotapi.NewInlineKeyboardMarkup(rows...),
	)
	b.send(edit)
	return nil
}

func (b *Bot) setReminderHour(cb *tgbotapi.CallbackQuery, payload string) error {
	hour, err := strconv.Atoi(payload)
	if err != nil || hour < 0 || hour > 23 {
		return fmt.Errorf("invalid reminder hour %q", payload)
	}
	settings, err := b.settings.Get(cb.From.ID)
	if err != nil {
		return err
	}
	settings.ReminderHour = hour
	settings.RemindersEnabled = true
	if err := b.settings.Save(settings); err != nil {
		return err
	}
	return b.editSettingsPanel(cb)
}

func (b *Bot) toggleReminders(cb *tgbotapi.CallbackQuery) error {
	settings, err := b.settings.Get(cb.From.ID)
	if err != nil {
		return err
	}
	settings.RemindersEnabled = !settings.RemindersEnabled
	if err := b.settings.Save(settings); err != nil {
		return err
	}
	return b.editSettingsPanel(cb)
}

func (b *Bot) showDeckPicker(cb *tgbotapi.CallbackQuery) error {
	decks, err := b.decks.GetAll()
	if err != nil {
		return err
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("All decks", prefixSetDeck+"0"),
		),
	}
	for _, d := range decks {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(truncate(d.Name, 48),
				fmt.Sprintf("%s%d", prefixSetDeck, d.ID)),
		))
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		cb.Message.Chat.ID,
		cb.Message.MessageID,
		"📚 Which deck do you want to study?",
		tgbotapi.NewInlineKeyboardMarkup(rows...),
	)
	b.send(edit)
	return nil
}

func (b *Bot) setDeck(cb *tgbotapi.CallbackQuery, payload string) error {
	deckID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil || deckID < 0 {
		return fmt.Errorf("invalid deck id %q", payload)
	}
	settings, err := b.settings.Get(cb.From.ID)
	if err != nil {
		return err
	}
	settings.DeckID = deckID
	if err := b.settings.Save(settings); err != nil {
		return err
	}
	return b.editSettingsPanel(cb)
}

func (b *Bot) handleImport(message *tgbotapi.Message) error {
	if !b.isAdmin(message.From.ID) {
		b.sendText(message.Chat.ID, "This command is only available for administrators.")
		return nil
	}
	b.setAwaiting(message.From.ID, awaitingImportFile)
	return b.sendHTML(message.Chat.ID,
		"📤 Send me an <b>.xlsx</b> or <b>.csv</b> file.\n\n"+
			"Columns: front, back, kind (vocab/grammar/passage), transliteration, notes, deck. "+
			"The first row is treated as a header.\n/cancel to abort.")
}

// handleDocument consumes an uploaded spreadsheet while an import is
// pending; any other document gets a gentle hint.
func (b *Bot) handleDocument(message *tgbotapi.Message) {
	if message.From == nil || message.Document == nil {
		return
	}
	if b.awaitingState(message.From.ID) != awaitingImportFile {
		b.sendText(message.Chat.ID, "Unexpected file. Use /import first to seed cards.")
		return
	}
	b.setAwaiting(message.From.ID, "")

	result, err := b.importDocument(message.Document)
	if err != nil {
		b.log.WithError(err).WithField("file", message.Document.FileName).Error("import failed")
		b.sendText(message.Chat.ID, "Import failed: "+err.Error())
		return
	}
	if err := b.sendHTML(message.Chat.ID, formatImportResult(result)); err != nil {
		b.log.WithError(err).Error("import summary send failed")
	}
}

// importDocument downloads the Telegram file to a temp path and runs the
// spreadsheet importer over it.
func (b *Bot) importDocument(doc *tgbotapi.Document) (*excel.ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(doc.FileName))
	if ext != ".xlsx" && ext != ".csv" {
		return nil, fmt.Errorf("unsupported file type %q, want .xlsx or .csv", ext)
	}

	url, err := b.api.GetFileDirectURL(doc.FileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file: %w", err)
	}
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "greekify-import-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("save file: %w", err)
	}

	return b.importer.ImportFile(tmp.Name(), excel.DefaultImportConfig())
}

func (b *Bot) handleCancel(message *tgbotapi.Message) error {
	userID := message.From.ID
	b.setAwaiting(userID, "")
	if rs, ok := b.sessionFor(userID); ok {
		b.finishReview(message.Chat.ID, userID, rs)
		return nil
	}
	if d, ok := b.drillFor(userID); ok {
		b.finishDrill(message.Chat.ID, userID, d)
		return nil
	}
	b.sendText(message.Chat.ID, "Nothing to cancel.")
	return nil
}
