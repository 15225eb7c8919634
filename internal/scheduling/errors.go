package scheduling

import (
	"errors"
	"fmt"
)

var (
	// ErrRulesUnavailable возвращается, когда нет ни правил услуги, ни конфигурации компании
	ErrRulesUnavailable = errors.New("scheduling: availability rules unavailable")

	// ErrBookingClosed возвращается, когда компания закрыла прием записей
	ErrBookingClosed = errors.New("scheduling: booking is currently closed")

	// ErrClosedDay возвращается, когда день недели не рабочий
	ErrClosedDay = errors.New("scheduling: closed on this day")

	// ErrHoliday возвращается, когда дата отмечена как выходной
	ErrHoliday = errors.New("scheduling: closed on holiday")

	// ErrOutsideWorkingHours возвращается, когда время вне рабочих часов
	ErrOutsideWorkingHours = errors.New("scheduling: outside working hours")

	// ErrInsideBreak возвращается, когда время попадает в перерыв
	ErrInsideBreak = errors.New("scheduling: inside break time")

	// ErrInvalidTimeSlot возвращается при некорректном времени слота
	ErrInvalidTimeSlot = errors.New("scheduling: invalid time slot")
)

// Reason машиночитаемая причина отказа
type Reason string

const (
	ReasonBookingClosed   Reason = "BOOKING_CLOSED"
	ReasonClosedDay       Reason = "CLOSED_DAY"
	ReasonHoliday         Reason = "HOLIDAY"
	ReasonOutsideHours    Reason = "OUTSIDE_WORKING_HOURS"
	ReasonInsideBreak     Reason = "INSIDE_BREAK"
	ReasonInvalidTimeSlot Reason = "INVALID_TIME_SLOT"
)

// Rejection отказ валидатора доступности: причина и человекочитаемое сообщение
type Rejection struct {
	Reason  Reason
	Message string
	err     error
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Reason, r.Message)
}

func (r *Rejection) Unwrap() error {
	return r.err
}

func reject(reason Reason, sentinel error, message string) *Rejection {
	return &Rejection{Reason: reason, Message: message, err: sentinel}
}
