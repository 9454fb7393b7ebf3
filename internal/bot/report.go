package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/whereismy/whereismy/internal/matching"
	"github.com/whereismy/whereismy/internal/model"
	"github.com/whereismy/whereismy/internal/store"
)

// handleReportStart begins the report dialogue.
func (b *Bot) handleReportStart(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.registerUser(ctx, msg.From)
	if err != nil {
		slog.Error("registering telegram user", "error", err)
		b.reply(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}

	sess := b.sessions.get(msg.Chat.ID)
	sess.Step = stepType
	sess.Draft = matching.Report{AuthorID: user.ID}

	b.reply(msg.Chat.ID, "Did you lose something or find something? Reply \"lost\" or \"found\". You can stop anytime with /cancel.")
}

func (b *Bot) handleTypeAnswer(ctx context.Context, msg *tgbotapi.Message, sess *session) {
	answer := strings.ToLower(strings.TrimSpace(msg.Text))
	if answer != model.ItemTypeLost && answer != model.ItemTypeFound {
		b.reply(msg.Chat.ID, "Please reply \"lost\" or \"found\".")
		return
	}

	sess.Draft.Type = answer
	sess.Step = stepPhoto
	b.reply(msg.Chat.ID, "Send a photo of the item, or /skip if you don't have one.")
}

func (b *Bot) handlePhotoAnswer(ctx context.Context, msg *tgbotapi.Message, sess *session) {
	if len(msg.Photo) == 0 {
		b.reply(msg.Chat.ID, "That doesn't look like a photo. Send one, or /skip.")
		return
	}

	// The last size is the largest rendition Telegram offers.
	sess.Draft.PhotoID = msg.Photo[len(msg.Photo)-1].FileID
	sess.Step = stepDescription
	b.reply(msg.Chat.ID, "Describe the item in a sentence or two. The description is what other people's searches are matched against, so details help.")
}

func (b *Bot) handleDescriptionAnswer(ctx context.Context, msg *tgbotapi.Message, sess *session) {
	if strings.TrimSpace(msg.Text) == "" {
		b.reply(msg.Chat.ID, "The description can't be empty. Try again.")
		return
	}
	sess.Draft.Description = msg.Text

	categories, err := store.ListCategories(ctx, b.db)
	if err != nil {
		slog.Error("listing categories", "error", err)
		b.reply(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}
	if len(categories) == 0 {
		b.sessions.reset(msg.Chat.ID)
		b.reply(msg.Chat.ID, "No categories are set up yet, please try again later.")
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Name, "cat_"+strconv.FormatInt(c.ID, 10)),
		))
	}

	sess.Step = stepCategory
	b.replyWithKeyboard(msg.Chat.ID, "Pick a category:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleCategoryChoice(ctx context.Context, cb *tgbotapi.CallbackQuery, sess *session) {
	if sess.Step != stepCategory {
		b.answerCallback(cb, "")
		return
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, "cat_"), 10, 64)
	if err != nil {
		b.answerCallback(cb, "")
		return
	}
	sess.Draft.CategoryID = id
	b.answerCallback(cb, "")
	b.dropKeyboard(cb, "Category picked.")

	locations, err := store.ListLocations(ctx, b.db)
	if err != nil {
		slog.Error("listing locations", "error", err)
		b.reply(cb.Message.Chat.ID, "Something went wrong, please try again.")
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(locations)+1)
	for _, l := range locations {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(l.Name, "loc_"+strconv.FormatInt(l.ID, 10)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Skip", "loc_skip"),
	))

	sess.Step = stepLocation
	b.replyWithKeyboard(cb.Message.Chat.ID, "Where was it lost or found?", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleLocationChoice(ctx context.Context, cb *tgbotapi.CallbackQuery, sess *session) {
	if sess.Step != stepLocation {
		b.answerCallback(cb, "")
		return
	}

	if cb.Data != "loc_skip" {
		id, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, "loc_"), 10, 64)
		if err != nil {
			b.answerCallback(cb, "")
			return
		}
		sess.Draft.LocationID = &id
	}
	b.answerCallback(cb, "")
	b.dropKeyboard(cb, "Location picked.")

	sess.Step = stepPlace
	b.reply(cb.Message.Chat.ID, "Any specific place? (e.g. \"second floor, near the vending machine\") Or /skip.")
}

func (b *Bot) handlePlaceAnswer(ctx context.Context, msg *tgbotapi.Message, sess *session) {
	sess.Draft.SpecificPlace = strings.TrimSpace(msg.Text)
	b.askContactMethod(msg.Chat.ID, sess)
}

func (b *Bot) askContactMethod(chatID int64, sess *session) {
	sess.Step = stepContactMethod
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("I left it somewhere", "contact_"+model.ContactLeftAt),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Contact me", "contact_"+model.ContactContactMe),
		),
	)
	b.replyWithKeyboard(chatID, "How should the owner get the item back?", keyboard)
}

func (b *Bot) handleContactChoice(ctx context.Context, cb *tgbotapi.CallbackQuery, sess *session) {
	if sess.Step != stepContactMethod {
		b.answerCallback(cb, "")
		return
	}

	method := strings.TrimPrefix(cb.Data, "contact_")
	if err := model.ValidateContactMethod(method); err != nil {
		b.answerCallback(cb, "")
		return
	}
	sess.Draft.ContactMethod = method
	b.answerCallback(cb, "")
	b.dropKeyboard(cb, "Contact method picked.")

	if method == model.ContactContactMe {
		sess.Step = stepContactInfo
		b.reply(cb.Message.Chat.ID, "How can you be reached? (phone, @username, ...) Or /skip to use your Telegram handle.")
		return
	}
	b.finalizeReport(ctx, cb.Message.Chat.ID, sess)
}

func (b *Bot) handleContactInfoAnswer(ctx context.Context, msg *tgbotapi.Message, sess *session) {
	sess.Draft.ContactInfo = strings.TrimSpace(msg.Text)
	b.finalizeReport(ctx, msg.Chat.ID, sess)
}

// handleSkip advances past the optional steps.
func (b *Bot) handleSkip(ctx context.Context, msg *tgbotapi.Message) {
	sess := b.sessions.get(msg.Chat.ID)
	switch sess.Step {
	case stepPhoto:
		sess.Step = stepDescription
		b.reply(msg.Chat.ID, "Describe the item in a sentence or two. The description is what other people's searches are matched against, so details help.")
	case stepPlace:
		b.askContactMethod(msg.Chat.ID, sess)
	case stepContactInfo:
		b.finalizeReport(ctx, msg.Chat.ID, sess)
	default:
		b.reply(msg.Chat.ID, "Nothing to skip right now.")
	}
}

// finalizeReport persists the draft and, for lost reports, shows the closest
// found items straight away.
func (b *Bot) finalizeReport(ctx context.Context, chatID int64, sess *session) {
	item, err := b.svc.ReportItem(ctx, sess.Draft)
	b.sessions.reset(chatID)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			b.reply(chatID, "The report is incomplete, please start over with /report.")
			return
		}
		slog.Error("reporting item", "error", err)
		b.reply(chatID, "Saving the report failed, please try again later.")
		return
	}

	b.reply(chatID, fmt.Sprintf("Thanks! Your report #%d is saved. Archive it anytime via /myitems.", item.ID))

	if item.Type != model.ItemTypeLost {
		return
	}
	matches, err := b.svc.MatchesForItem(ctx, item, 0)
	if err != nil {
		slog.Error("matching lost report", "id", item.ID, "error", err)
		return
	}
	if len(matches) == 0 {
		b.reply(chatID, "Nothing similar has been found yet. I'll keep your report active so others can find it.")
		return
	}
	b.reply(chatID, "These found items look similar:\n\n"+formatMatches(matches))
}

// formatMatches renders matches as a chat message, including how to get the
// item back.
func formatMatches(matches []model.Match) string {
	var sb strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&sb, "#%d (%s): %s\n", m.Item.ID, m.Item.CategoryName, m.Item.Description)
		switch m.Item.ContactMethod {
		case model.ContactLeftAt:
			place := m.Item.LocationName
			if m.Item.SpecificPlace != "" {
				if place != "" {
					place += ", "
				}
				place += m.Item.SpecificPlace
			}
			if place == "" {
				place = "an unspecified place"
			}
			fmt.Fprintf(&sb, "  Left at: %s\n", place)
		case model.ContactContactMe:
			contact := m.Item.ContactInfo
			if contact == "" {
				contact = "the reporter via this bot"
			}
			fmt.Fprintf(&sb, "  Contact: %s\n", contact)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
