package catalog

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog/models"
)

// validateCreate валидирует запрос на создание услуги
func validateCreate(req *models.CreateServiceRequest) error {
	if err := validateName(req.Name); err != nil {
		return err
	}
	if err := validateDuration(req.DurationMinutes); err != nil {
		return err
	}
	if err := validatePrice(req.Price); err != nil {
		return err
	}
	_, err := parseStatus(req.Status)
	return err
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len([]rune(name)) > domain.MaxServiceNameLength {
		return fmt.Errorf("%w: name must not exceed %d characters", ErrInvalidInput, domain.MaxServiceNameLength)
	}
	return nil
}

func validateDuration(minutes int) error {
	if minutes < domain.MinServiceDurationMinutes || minutes > domain.MaxServiceDurationMinutes {
		return fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidInput, domain.MinServiceDurationMinutes, domain.MaxServiceDurationMinutes)
	}
	return nil
}

func validatePrice(price float64) error {
	if price <= 0 {
		return fmt.Errorf("%w: price must be greater than 0", ErrInvalidInput)
	}
	return nil
}

func parseStatus(raw string) (domain.ServiceStatus, error) {
	if raw == "" {
		return domain.ServiceStatusActive, nil
	}
	status := domain.ServiceStatus(raw)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, raw)
	}
	return status, nil
}
