package scheduling

import "github.com/m04kA/SMC-AppointmentService/internal/domain"

// ResolveRules выбирает действующие правила для услуги.
// Включенное переопределение услуги заменяет конфигурацию компании целиком, поля не смешиваются.
// Прием записей для правил услуги всегда открыт.
func ResolveRules(service *domain.Service, company *domain.AvailabilityConfig) (*domain.RuleSet, error) {
	if service != nil && service.Availability.Enabled {
		o := service.Availability
		return &domain.RuleSet{
			Source:      domain.RuleSourceService,
			WorkingDays: o.WorkingDays,
			StartTime:   o.StartTime,
			EndTime:     o.EndTime,
			Breaks:      o.Breaks,
			Holidays:    o.Holidays,
			BookingOpen: true,
		}, nil
	}

	if company == nil {
		return nil, ErrRulesUnavailable
	}

	return &domain.RuleSet{
		Source:      domain.RuleSourceCompany,
		WorkingDays: company.WorkingDays,
		StartTime:   company.StartTime,
		EndTime:     company.EndTime,
		Breaks:      company.Breaks,
		Holidays:    company.Holidays,
		BookingOpen: company.BookingOpen,
	}, nil
}
