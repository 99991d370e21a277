// Package bot is the Telegram review surface: it presents due cards,
// collects one of the four quality ratings, hands the rating to the
// scheduling core and persists whatever comes back. All scheduling math
// lives in internal/spaced_repetition; this package only renders it.
package bot

import (
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/romain-girardi-eng/greekify-app-sub000/internal/database"
	"github.com/romain-girardi-eng/greekify-app-sub000/internal/excel"
	"github.com/romain-girardi-eng/greekify-app-sub000/internal/spaced_repetition"
	"github.com/romain-girardi-eng/greekify-app-sub000/internal/study"
)

// awaiting states for plain-text/document messages.
const awaitingImportFile = "import_file"

// reviewSession wraps a study session with per-run bookkeeping the summary
// message needs.
type reviewSession struct {
	*study.Session
	learning int // ratings that left the card inside the learning steps
}

// Bot is the Telegram application.
type Bot struct {
	api  *tgbotapi.BotAPI
	cfg  Config
	log  *logrus.Logger
	core *spaced_repetition.Scheduler

	builder  *study.Builder
	importer *excel.Importer

	users    *database.UserRepository
	settings *database.SettingsRepository
	progress *database.ProgressRepository
	cards    *database.CardRepository
	decks    *database.DeckRepository
	logs     *database.ReviewLogRepository
	drills   *database.DrillResultRepository
	stats    *database.StatisticsRepository

	mu        sync.Mutex
	sessions  map[int64]*reviewSession
	drillRuns map[int64]*study.Drill
	awaiting  map[int64]string
}

// New wires the bot against the connected database. The Telegram API
// client is created in Start so construction never touches the network.
func New(cfg Config, core *spaced_repetition.Scheduler, log *logrus.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("bot: telegram token is not set")
	}
	if database.DB == nil {
		return nil, fmt.Errorf("bot: database connection is not established")
	}
	cfg = cfg.withDefaults()

	cards := database.NewCardRepository()
	decks := database.NewDeckRepository()
	progress := database.NewProgressRepository()
	settings := database.NewSettingsRepository()

	return &Bot{
		cfg:       cfg,
		log:       log,
		core:      core,
		builder:   study.NewBuilder(cards, progress, settings, core, cfg.ReviewLimit),
		importer:  excel.NewImporter(decks, cards, log),
		users:     database.NewUserRepository(),
		settings:  settings,
		progress:  progress,
		cards:     cards,
		decks:     decks,
		logs:      database.NewReviewLogRepository(),
		drills:    database.NewDrillResultRepository(),
		stats:     database.NewStatisticsRepository(),
		sessions:  make(map[int64]*reviewSession),
		drillRuns: make(map[int64]*study.Drill),
		awaiting:  make(map[int64]string),
	}, nil
}

// Start connects to Telegram and blocks on the update loop. Each update is
// handled in its own goroutine; per-user state is guarded by the bot mutex.
func (b *Bot) Start() error {
	api, err := tgbotapi.NewBotAPI(b.cfg.Token)
	if err != nil {
		return fmt.Errorf("bot: unable to create api client: %w", err)
	}
	b.api = api
	b.log.WithField("username", api.Self.UserName).Info("bot authorized")

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	for update := range b.api.GetUpdatesChan(updateConfig) {
		go b.handleUpdate(update)
	}
	return nil
}

// Stop ends the update loop, letting Start return.
func (b *Bot) Stop() {
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
	b.log.Info("bot stopped")
}

// handleUpdate dispatches one Telegram update.
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithField("panic", r).Error("update handler panicked")
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update.Message)
	case update.Message != nil && update.Message.Document != nil:
		b.handleDocument(update.Message)
	case update.Message != nil:
		b.sendText(update.Message.Chat.ID, "Use /review to study or /help for the command list.")
	}
}

// SendDueReminder implements scheduler.Notifier: the daily due-count digest.
func (b *Bot) SendDueReminder(userID int64, count int) error {
	text := fmt.Sprintf("📚 You have <b>%d</b> %s waiting for review. Start with /review!",
		count, plural(count, "card", "cards"))
	return b.sendHTML(userID, text)
}

// sessionFor returns the user's active review session, if any.
func (b *Bot) sessionFor(userID int64) (*reviewSession, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[userID]
	return s, ok
}

func (b *Bot) setSession(userID int64, s *reviewSession) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[userID] = s
}

func (b *Bot) clearSession(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, userID)
}

func (b *Bot) drillFor(userID int64) (*study.Drill, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.drillRuns[userID]
	return d, ok
}

func (b *Bot) setDrill(userID int64, d *study.Drill) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drillRuns[userID] = d
}

func (b *Bot) clearDrill(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.drillRuns, userID)
}

func (b *Bot) setAwaiting(userID int64, state string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if state == "" {
		delete(b.awaiting, userID)
		return
	}
	b.awaiting[userID] = state
}

func (b *Bot) awaitingState(userID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.awaiting[userID]
}

// isAdmin reports whether the user may run admin commands.
func (b *Bot) isAdmin(userID int64) bool {
	if b.cfg.AdminID != 0 && userID == b.cfg.AdminID {
		return true
	}
	user, err := b.users.GetByID(userID)
	if err != nil || user == nil {
		return false
	}
	return user.IsAdmin
}

// send pushes any chattable to Telegram, logging failures instead of
// propagating them: a lost message must not wedge a session.
func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.WithError(err).Error("send failed")
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendHTML(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	if err != nil {
		b.log.WithError(err).Error("send failed")
	}
	return err
}

func (b *Bot) sendHTMLWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboard
	b.send(msg)
}

// answerCallback acknowledges a button press, optionally with a toast.
func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.log.WithError(err).Error("callback answer failed")
	}
}
