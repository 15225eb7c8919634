package availability

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var weekdays = map[string]struct{}{
	"Monday": {}, "Tuesday": {}, "Wednesday": {}, "Thursday": {},
	"Friday": {}, "Saturday": {}, "Sunday": {},
}

// validateRules проверяет блок правил; requireHours требует рабочие дни и часы
func validateRules(r *models.RulesDTO, requireHours bool) error {
	if requireHours {
		if len(r.WorkingDays) == 0 {
			return fmt.Errorf("%w: workingDays are required", ErrInvalidInput)
		}
		if r.StartTime == "" || r.EndTime == "" {
			return fmt.Errorf("%w: startTime and endTime are required", ErrInvalidInput)
		}
	}

	for _, d := range r.WorkingDays {
		if _, ok := weekdays[d]; !ok {
			return fmt.Errorf("%w: unknown working day %q", ErrInvalidInput, d)
		}
	}

	if (r.StartTime == "") != (r.EndTime == "") {
		return fmt.Errorf("%w: startTime and endTime must be set together", ErrInvalidInput)
	}
	if r.StartTime != "" {
		if err := validateRange(r.StartTime, r.EndTime); err != nil {
			return fmt.Errorf("%w: working hours: %v", ErrInvalidInput, err)
		}
	}

	for _, b := range r.Breaks {
		if err := validateRange(b.Start, b.End); err != nil {
			return fmt.Errorf("%w: break %s-%s: %v", ErrInvalidInput, b.Start, b.End, err)
		}
	}

	for _, h := range r.Holidays {
		if _, err := time.Parse(domain.DateFormat, h); err != nil {
			return fmt.Errorf("%w: holiday %q must be YYYY-MM-DD", ErrInvalidInput, h)
		}
	}

	return nil
}

func validateRange(start, end string) error {
	from, err := types.NewTimeStringFromString(start)
	if err != nil {
		return err
	}
	to, err := types.NewTimeStringFromString(end)
	if err != nil {
		return err
	}
	if !from.IsBefore(to) {
		return fmt.Errorf("start %s must be before end %s", from, to)
	}
	return nil
}
