// Package bot is the Telegram front end of the registry: a per-chat dialogue
// collects lost and found reports and free-text searches, all going through
// the matching service.
package bot

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/whereismy/whereismy/internal/matching"
	"github.com/whereismy/whereismy/internal/model"
	"github.com/whereismy/whereismy/internal/store"
)

// Bot wraps the Telegram API with the report and search dialogues.
type Bot struct {
	api      *tgbotapi.BotAPI
	db       *sql.DB
	svc      *matching.Service
	sessions *sessions
}

// New creates a bot from a bot token.
func New(token string, db *sql.DB, svc *matching.Service) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	return &Bot{
		api:      api,
		db:       db,
		svc:      svc,
		sessions: newSessions(),
	}, nil
}

// Run long-polls for updates until the context is cancelled. Updates are
// handled one at a time, so session state needs no further locking.
func (b *Bot) Run(ctx context.Context) {
	slog.Info("telegram bot started", "username", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			slog.Info("telegram bot stopped")
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.handleStart(ctx, msg)
		case "report":
			b.handleReportStart(ctx, msg)
		case "search":
			b.handleSearchStart(ctx, msg)
		case "myitems":
			b.handleMyItems(ctx, msg)
		case "skip":
			b.handleSkip(ctx, msg)
		case "cancel":
			b.sessions.reset(chatID)
			b.reply(chatID, "Cancelled. Use /report or /search to start over.")
		default:
			b.reply(chatID, "I don't know that command. Try /report, /search or /myitems.")
		}
		return
	}

	sess := b.sessions.get(chatID)
	switch sess.Step {
	case stepType:
		b.handleTypeAnswer(ctx, msg, sess)
	case stepPhoto:
		b.handlePhotoAnswer(ctx, msg, sess)
	case stepDescription:
		b.handleDescriptionAnswer(ctx, msg, sess)
	case stepPlace:
		b.handlePlaceAnswer(ctx, msg, sess)
	case stepContactInfo:
		b.handleContactInfoAnswer(ctx, msg, sess)
	case stepSearch:
		b.handleSearchQuery(ctx, msg)
	default:
		b.reply(chatID, "Use /report to report a lost or found item, or /search to look for one.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	sess := b.sessions.get(chatID)

	data := cb.Data
	switch {
	case strings.HasPrefix(data, "cat_"):
		b.handleCategoryChoice(ctx, cb, sess)
	case strings.HasPrefix(data, "loc_"):
		b.handleLocationChoice(ctx, cb, sess)
	case strings.HasPrefix(data, "contact_"):
		b.handleContactChoice(ctx, cb, sess)
	case strings.HasPrefix(data, "archive_"):
		b.handleArchiveChoice(ctx, cb)
	default:
		b.answerCallback(cb, "")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	if _, err := b.registerUser(ctx, msg.From); err != nil {
		slog.Error("registering telegram user", "error", err)
		b.reply(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}

	b.reply(msg.Chat.ID,
		"Hi! I keep track of lost and found items.\n"+
			"/report — report something you lost or found\n"+
			"/search — describe an item and I'll look for similar reports\n"+
			"/myitems — manage your own reports")
}

// registerUser upserts the Telegram account so it can author reports.
func (b *Bot) registerUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	username := from.UserName
	if username == "" {
		username = strings.TrimSpace(from.FirstName + " " + from.LastName)
	}
	return store.UpsertTelegramUser(ctx, b.db, from.ID, username)
}

// reply sends a plain text message, logging failures instead of surfacing
// them; Telegram delivery errors are not actionable mid-dialogue.
func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("sending telegram message", "chat", chatID, "error", err)
	}
}

func (b *Bot) replyWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("sending telegram message", "chat", chatID, "error", err)
	}
}

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		slog.Error("answering callback", "error", err)
	}
}

// dropKeyboard replaces the message text so the inline keyboard disappears
// after a choice is made.
func (b *Bot) dropKeyboard(cb *tgbotapi.CallbackQuery, text string) {
	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text)
	if _, err := b.api.Send(edit); err != nil {
		slog.Error("editing telegram message", "error", err)
	}
}
