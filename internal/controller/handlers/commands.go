package handlers

import (
	"context"

	"github.com/Freeeeeet/clinic_booking/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 Справка по командам:\n\n" +
	"/slots - Список слотов и свободных мест\n" +
	"/book <номер> - Записаться в слот, например /book 3\n" +
	"/help - Показать эту справку"

// CommandMatcher сопоставляет текстовые сообщения с командой name, в том числе "/name@bot_name"
func CommandMatcher(name string) func(update *models.Update) bool {
	return func(update *models.Update) bool {
		return update.Message != nil && IsCommand(update.Message.Text, name)
	}
}

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	name := ""
	if update.Message.From != nil {
		name = update.Message.From.FirstName
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, startText(name))
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleSlots обрабатывает команду /slots
func (h *Handlers) HandleSlots(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	slots, err := h.slots.ListSlots(ctx)
	if err != nil {
		h.logger.Error("Failed to list slots", zap.Error(err))
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Не удалось загрузить расписание. Попробуйте позже.")
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, FormatSlots(slots))
}

// HandleBook обрабатывает команду /book <slotId>
func (h *Handlers) HandleBook(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID

	slotID, err := ParseBookCommand(update.Message.Text)
	if err != nil {
		h.sendMessage(ctx, b, chatID, "❌ Укажите номер слота: /book 3")
		return
	}

	// Telegram ID служит непрозрачным идентификатором клиента
	userID := TelegramUserID(update.Message.From.ID)

	booking, err := h.booker.Book(ctx, userID, slotID)

	h.sendMessage(ctx, b, chatID, BookResultText(slotID, service.ResultOf(booking, err)))
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
