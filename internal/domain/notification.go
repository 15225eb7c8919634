package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// NotificationKind is the type of a booking lifecycle event
type NotificationKind string

const (
	NotificationBookingCreated     NotificationKind = "booking-created"
	NotificationBookingCancelled   NotificationKind = "booking-cancelled"
	NotificationBookingRescheduled NotificationKind = "booking-rescheduled"
	NotificationStatusChanged      NotificationKind = "status-changed"
)

// Notification is the payload of a lifecycle event sent to admins and customers
type Notification struct {
	Kind          NotificationKind  `json:"kind"`
	AppointmentID int64             `json:"appointmentId"`
	CompanyID     int64             `json:"companyId"`
	CustomerID    int64             `json:"customerId"`
	CustomerName  string            `json:"customerName,omitempty"`
	CustomerEmail string            `json:"customerEmail,omitempty"`
	ServiceName   string            `json:"serviceName,omitempty"`
	Date          string            `json:"date"`
	TimeSlot      types.TimeString  `json:"timeSlot"`
	PreviousDate  string            `json:"previousDate,omitempty"`
	Status        AppointmentStatus `json:"status"`
	Reason        string            `json:"reason,omitempty"`
	OccurredAt    time.Time         `json:"occurredAt"`
}
