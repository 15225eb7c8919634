package scheduling

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// ValidateBooking проверяет, что дату и время можно забронировать по правилам.
// Проверки идут по порядку и останавливаются на первой ошибке:
// прием записей, день недели, выходной, рабочие часы, перерыв.
// Не заданное измерение правил ничего не ограничивает.
func ValidateBooking(date time.Time, timeSlot types.TimeString, rules *domain.RuleSet) error {
	if rules == nil {
		return ErrRulesUnavailable
	}

	// 1. Прием записей (только для правил компании)
	if rules.IsCompanyWide() && !rules.BookingOpen {
		return reject(ReasonBookingClosed, ErrBookingClosed, "booking is currently closed")
	}

	// 2. День недели
	if !rules.IsWorkingDay(date.Weekday().String()) {
		return reject(ReasonClosedDay, ErrClosedDay, "closed on this day")
	}

	// 3. Выходной
	if rules.IsHoliday(date.Format(domain.DateFormat)) {
		return reject(ReasonHoliday, ErrHoliday, "closed on holiday")
	}

	slotMinutes, err := timeSlot.Minutes()
	if err != nil {
		return reject(ReasonInvalidTimeSlot, ErrInvalidTimeSlot, "invalid time slot")
	}

	// 4. Рабочие часы: [startTime, endTime)
	if rules.HasWorkingHours() {
		start, startErr := rules.StartTime.Minutes()
		end, endErr := rules.EndTime.Minutes()
		if startErr == nil && endErr == nil && (slotMinutes < start || slotMinutes >= end) {
			return reject(ReasonOutsideHours, ErrOutsideWorkingHours, "outside working hours")
		}
	}

	// 5. Перерывы: начало слота в [breakStart, breakEnd)
	for _, b := range toWindows(rules.Breaks) {
		if slotMinutes >= b.start && slotMinutes < b.end {
			return reject(ReasonInsideBreak, ErrInsideBreak, "inside break time")
		}
	}

	return nil
}

// IsDayOpen проверяет только дневные ограничения (прием записей, день недели, выходной).
// Используется при построении списка слотов.
func IsDayOpen(date time.Time, rules *domain.RuleSet) bool {
	if rules == nil {
		return false
	}
	if rules.IsCompanyWide() && !rules.BookingOpen {
		return false
	}
	if !rules.IsWorkingDay(date.Weekday().String()) {
		return false
	}
	return !rules.IsHoliday(date.Format(domain.DateFormat))
}
