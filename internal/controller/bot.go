package controller

import (
	"context"

	"github.com/Freeeeeet/clinic_booking/internal/controller/handlers"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// BotController Telegram-транспорт к сервисам бронирования
type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	booker handlers.Booker,
	slots handlers.SlotLister,
	logger *zap.Logger,
) *BotController {
	return &BotController{
		bot:      botInstance,
		handlers: handlers.NewHandlers(booker, slots, logger),
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	// В группах команды приходят как /slots@bot_name, поэтому точного совпадения текста недостаточно
	c.bot.RegisterHandlerMatchFunc(handlers.CommandMatcher("start"), c.handlers.HandleStart)
	c.bot.RegisterHandlerMatchFunc(handlers.CommandMatcher("help"), c.handlers.HandleHelp)
	c.bot.RegisterHandlerMatchFunc(handlers.CommandMatcher("slots"), c.handlers.HandleSlots)
	// /book принимает аргумент: /book 42
	c.bot.RegisterHandlerMatchFunc(handlers.CommandMatcher("book"), c.handlers.HandleBook)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "slots", Description: "📅 Свободные слоты к врачам"},
		{Command: "book", Description: "✍️ Записаться: /book <номер слота>"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота; блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
