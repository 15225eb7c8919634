package scheduling

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// SlotHolderFinder источник записей, претендующих на слот
type SlotHolderFinder interface {
	FindSlotHolders(ctx context.Context, key domain.SlotKey, excludeID *int64) ([]*domain.Appointment, error)
}

// ConflictDetector проверяет, что слот услуги не занят другой записью
type ConflictDetector struct {
	finder SlotHolderFinder
}

// NewConflictDetector создает детектор конфликтов
func NewConflictDetector(finder SlotHolderFinder) *ConflictDetector {
	return &ConflictDetector{finder: finder}
}

// HasConflict возвращает true, если слот удерживает другая запись.
// excludeID исключает переносимую запись из проверки.
func (d *ConflictDetector) HasConflict(ctx context.Context, key domain.SlotKey, excludeID *int64) (bool, error) {
	holders, err := d.finder.FindSlotHolders(ctx, key, excludeID)
	if err != nil {
		return false, fmt.Errorf("scheduling: find slot holders: %w", err)
	}
	return ConflictsWith(holders, key, excludeID), nil
}

// ConflictsWith проверяет список записей на конфликт со слотом
func ConflictsWith(appointments []*domain.Appointment, key domain.SlotKey, excludeID *int64) bool {
	date := key.Date.Format(domain.DateFormat)
	for _, a := range appointments {
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.ServiceID != key.ServiceID || a.TimeSlot != key.TimeSlot {
			continue
		}
		if a.Date.Format(domain.DateFormat) != date {
			continue
		}
		if a.HoldsSlot() {
			return true
		}
	}
	return false
}

// MarkOccupied помечает слоты, которые уже удерживаются записями
func MarkOccupied(slots []domain.TimeSlot, holders []*domain.Appointment) []domain.AvailableSlot {
	taken := make(map[string]struct{}, len(holders))
	for _, a := range holders {
		if a.HoldsSlot() {
			taken[a.TimeSlot.String()] = struct{}{}
		}
	}

	result := make([]domain.AvailableSlot, len(slots))
	for i, s := range slots {
		_, busy := taken[s.Start.String()]
		result[i] = domain.AvailableSlot{TimeSlot: s, Available: !busy}
	}
	return result
}
