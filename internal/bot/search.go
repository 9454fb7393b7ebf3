package bot

import (
	"context"
	"errors"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/whereismy/whereismy/internal/model"
)

// handleSearchStart begins the free-text search dialogue.
func (b *Bot) handleSearchStart(ctx context.Context, msg *tgbotapi.Message) {
	sess := b.sessions.get(msg.Chat.ID)
	sess.Step = stepSearch
	b.reply(msg.Chat.ID, "Describe the item you're looking for and I'll check the found reports.")
}

// handleSearchQuery matches the message text against active found reports.
func (b *Bot) handleSearchQuery(ctx context.Context, msg *tgbotapi.Message) {
	b.sessions.reset(msg.Chat.ID)

	matches, err := b.svc.FindMatches(ctx, msg.Text, 0, model.ItemTypeFound)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			b.reply(msg.Chat.ID, "Tell me a bit more about the item, a few words at least.")
			return
		}
		slog.Error("searching items", "error", err)
		b.reply(msg.Chat.ID, "The search failed, please try again later.")
		return
	}

	if len(matches) == 0 {
		b.reply(msg.Chat.ID, "Sorry, nothing similar has been reported found. You can /report it as lost so finders can reach you.")
		return
	}
	b.reply(msg.Chat.ID, "These found items look similar:\n\n"+formatMatches(matches))
}
