package scheduling

import (
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// window полуинтервал [start, end) в минутах от полуночи
type window struct {
	start int
	end   int
}

// GenerateSlots строит упорядоченный список слотов длительностью durationMinutes
// от startTime до endTime с шагом, равным длительности.
// Слот, задевающий перерыв хотя бы частично, пропускается целиком.
// Конец рабочего дня и конец перерыва не входят в интервал: слот, заканчивающийся ровно в endTime, допустим.
func GenerateSlots(startTime, endTime types.TimeString, durationMinutes int, breaks []domain.Break) []domain.TimeSlot {
	slots := make([]domain.TimeSlot, 0)

	if durationMinutes <= 0 {
		return slots
	}

	start, err := startTime.Minutes()
	if err != nil {
		return slots
	}
	end, err := endTime.Minutes()
	if err != nil {
		return slots
	}
	if start >= end {
		return slots
	}

	breakWindows := toWindows(breaks)

	for cur := start; cur+durationMinutes <= end; cur += durationMinutes {
		slot := window{start: cur, end: cur + durationMinutes}
		if overlapsAnyBreak(slot, breakWindows) {
			continue
		}

		// Границы уже проверены, переполнение суток невозможно
		from, _ := types.NewTimeStringFromMinutes(slot.start)
		to, _ := types.NewTimeStringFromMinutes(slot.end)
		slots = append(slots, domain.TimeSlot{Start: from, End: to})
	}

	return slots
}

// GenerateSlotsForRules строит слоты по действующим правилам.
// Правила без рабочих часов не дают слотов.
func GenerateSlotsForRules(rules *domain.RuleSet, durationMinutes int) []domain.TimeSlot {
	if rules == nil || !rules.HasWorkingHours() {
		return []domain.TimeSlot{}
	}
	return GenerateSlots(rules.StartTime, rules.EndTime, durationMinutes, rules.Breaks)
}

// overlapsAnyBreak проверяет пересечение слота с перерывами:
// начало слота внутри перерыва, конец слота внутри перерыва или слот целиком накрывает перерыв
func overlapsAnyBreak(slot window, breaks []window) bool {
	for _, b := range breaks {
		startInside := slot.start >= b.start && slot.start < b.end
		endInside := slot.end > b.start && slot.end <= b.end
		covers := slot.start <= b.start && slot.end >= b.end
		if startInside || endInside || covers {
			return true
		}
	}
	return false
}

// toWindows переводит перерывы в минуты, некорректные перерывы пропускаются
func toWindows(breaks []domain.Break) []window {
	windows := make([]window, 0, len(breaks))
	for _, b := range breaks {
		start, err := b.Start.Minutes()
		if err != nil {
			continue
		}
		end, err := b.End.Minutes()
		if err != nil {
			continue
		}
		windows = append(windows, window{start: start, end: end})
	}
	return windows
}
