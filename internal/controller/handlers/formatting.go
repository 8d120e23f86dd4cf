package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/clinic_booking/internal/model"
	"github.com/Freeeeeet/clinic_booking/internal/service"
)

var errBadBookCommand = errors.New("invalid /book command")

// TelegramUserID идентификатор клиента для бронирований из Telegram
func TelegramUserID(telegramID int64) string {
	return "tg:" + strconv.FormatInt(telegramID, 10)
}

// IsCommand проверяет, что текст начинается с команды name; суффикс "@bot_name" из групповых чатов допускается
func IsCommand(text, name string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	command, _, _ := strings.Cut(fields[0], "@")
	return command == "/"+name
}

// ParseBookCommand достаёт номер слота из "/book 42" (допускается и "/book@bot_name 42")
func ParseBookCommand(text string) (int64, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 || !IsCommand(text, "book") {
		return 0, errBadBookCommand
	}

	slotID, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || slotID <= 0 {
		return 0, errBadBookCommand
	}

	return slotID, nil
}

func startText(name string) string {
	greeting := "👋 Привет!"
	if name != "" {
		greeting = fmt.Sprintf("👋 Привет, %s!", name)
	}
	return greeting + "\n\nЗдесь можно записаться на приём к врачу.\n\n" + helpText
}

// FormatSlots форматирует список слотов для сообщения
func FormatSlots(slots []*model.SlotListing) string {
	if len(slots) == 0 {
		return "📭 Слотов пока нет"
	}

	var sb strings.Builder
	sb.WriteString("📅 Расписание:\n")
	for _, s := range slots {
		free := s.FreeSeats()
		mark := "🟢"
		if free == 0 {
			mark = "🔴"
		}
		fmt.Fprintf(&sb, "\n%s #%d %s, %s, мест: %d/%d",
			mark,
			s.ID,
			s.StartTime.Format("02.01.2006 15:04"),
			s.DoctorName,
			free,
			s.TotalSeats,
		)
	}
	sb.WriteString("\n\nЗаписаться: /book <номер>")

	return sb.String()
}

// BookResultText сообщение пользователю по итогу бронирования
func BookResultText(slotID int64, result service.BookingResult) string {
	switch result.Reason {
	case "":
		return fmt.Sprintf("✅ Вы записаны в слот #%d (бронь №%d)", slotID, result.BookingID)
	case service.ReasonSlotFull:
		return fmt.Sprintf("❌ В слоте #%d не осталось мест", slotID)
	case service.ReasonNotFound:
		return fmt.Sprintf("❌ Слот #%d не найден", slotID)
	default:
		return "❌ Произошла ошибка. Попробуйте позже."
	}
}
