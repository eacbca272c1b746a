package telegram

import (
	"errors"
	"fmt"
	"strings"

	"shearzone/internal/domain/entity"
)

// progressStep минимальный прирост процента между правками статуса.
const progressStep = 10

var errNameRequired = errors.New("project name is required")

func progressText(title string, percent int) string {
	const width = 10
	filled := percent * width / 100
	return fmt.Sprintf("%s\n%s%s %d%%", title, strings.Repeat("▓", filled), strings.Repeat("░", width-filled), percent)
}

func formatThresholds(thresholds []float64) string {
	if len(thresholds) == 0 {
		return "Порог не применялся."
	}
	parts := make([]string, len(thresholds))
	for i, t := range thresholds {
		parts[i] = fmt.Sprintf("%.1f", t)
	}
	return "Пороги: " + strings.Join(parts, ", ")
}

func joinModes() string {
	names := make([]string, len(entity.Modes))
	for i, m := range entity.Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func joinChannels() string {
	names := make([]string, len(entity.Channels))
	for i, c := range entity.Channels {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// userError переводит ошибку в сообщение для пользователя.
func userError(err error) string {
	var insufficient *entity.InsufficientMatchesError
	switch {
	case errors.As(err, &insufficient):
		return fmt.Sprintf("⚠️ Недостаточно совпадений: найдено %d, нужно %d.", insufficient.Found, insufficient.Required)
	case errors.Is(err, entity.ErrTransformFitFailed):
		return "⚠️ Не удалось найти преобразование между снимками."
	case errors.Is(err, entity.ErrBusy):
		return "⏳ Такая операция уже выполняется."
	case errors.Is(err, entity.ErrNoImage):
		return "📸 Сначала отправьте снимок образца."
	case errors.Is(err, entity.ErrNoResult):
		return "🔬 Сначала выполните /analyze."
	case errors.Is(err, entity.ErrScaleRequired):
		return "📏 Сначала задайте масштаб: /scale x1,y1 x2,y2 длина_мм"
	case errors.Is(err, entity.ErrEmptyRegion):
		return "⚠️ Область пуста: проверьте /crop и /roi."
	case errors.Is(err, entity.ErrInvalidPolygon):
		return "⚠️ Полигон должен содержать не меньше 3 точек x,y."
	case errors.Is(err, entity.ErrUnknownChannel):
		return "⚠️ Неизвестный канал. Доступны: " + joinChannels()
	case errors.Is(err, entity.ErrUnknownAlgorithm):
		return "⚠️ Неизвестный алгоритм или режим. /help — справка."
	case errors.Is(err, entity.ErrProjectNotFound):
		return "📂 Проект не найден. /load без имени покажет список."
	case errors.Is(err, errNameRequired):
		return "💾 Укажите имя проекта."
	}
	return "⚠️ " + err.Error()
}
