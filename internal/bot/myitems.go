package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/whereismy/whereismy/internal/model"
	"github.com/whereismy/whereismy/internal/store"
)

// handleMyItems lists the user's active reports, each with an archive button.
func (b *Bot) handleMyItems(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.registerUser(ctx, msg.From)
	if err != nil {
		slog.Error("registering telegram user", "error", err)
		b.reply(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}

	items, err := store.ListItems(ctx, b.db, store.ItemFilter{
		Status:   model.ItemStatusActive,
		AuthorID: user.ID,
	})
	if err != nil {
		slog.Error("listing user items", "error", err)
		b.reply(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}

	if len(items) == 0 {
		b.reply(msg.Chat.ID, "You have no active reports. Use /report to add one.")
		return
	}

	for _, item := range items {
		text := fmt.Sprintf("#%d (%s, %s): %s",
			item.ID, item.Type, item.CategoryName, item.Description)
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Archive", "archive_"+strconv.FormatInt(item.ID, 10)),
			),
		)
		b.replyWithKeyboard(msg.Chat.ID, text, keyboard)
	}
}

// handleArchiveChoice archives a report on behalf of its author. The matching
// service enforces ownership, so pressing a stale button on someone else's
// report does nothing.
func (b *Bot) handleArchiveChoice(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	id, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, "archive_"), 10, 64)
	if err != nil {
		b.answerCallback(cb, "")
		return
	}

	user, err := store.GetUserByTelegramID(ctx, b.db, cb.From.ID)
	if err != nil || user == nil {
		b.answerCallback(cb, "Could not archive the report.")
		return
	}

	archived, err := b.svc.ArchiveItem(ctx, id, user.ID)
	if err != nil {
		slog.Error("archiving item", "id", id, "error", err)
		b.answerCallback(cb, "Could not archive the report.")
		return
	}
	if !archived {
		b.answerCallback(cb, "The report doesn't exist or isn't yours.")
		return
	}

	b.answerCallback(cb, "Report archived.")
	b.dropKeyboard(cb, cb.Message.Text+"\n\n(archived)")
}
