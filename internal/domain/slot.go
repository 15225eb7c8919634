package domain

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// TimeSlot represents a fixed-duration bookable window, [Start, End)
type TimeSlot struct {
	Start types.TimeString
	End   types.TimeString
}

// Label returns the "HH:MM-HH:MM" representation
func (s TimeSlot) Label() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

// AvailableSlot is a generated slot annotated with its occupancy
type AvailableSlot struct {
	TimeSlot
	Available bool
}
