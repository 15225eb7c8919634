package list_services

import (
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(companyIDStr, statusStr, pageStr, limitStr string) (*models.ListServicesRequest, error) {
	req := &models.ListServicesRequest{Status: statusStr}

	// Парсим companyId если указан
	if companyIDStr != "" {
		companyID, err := strconv.ParseInt(companyIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid companyId value: %w", err)
		}
		req.CompanyID = &companyID
	}

	if pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			return nil, fmt.Errorf("invalid page value: %w", err)
		}
		req.Page = page
	}

	if limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, fmt.Errorf("invalid limit value: %w", err)
		}
		req.Limit = limit
	}

	return req, nil
}
