package create_service

import "github.com/m04kA/SMC-AppointmentService/internal/service/catalog/models"

// BulkCreateRequest HTTP request model для массового создания
type BulkCreateRequest struct {
	Services []models.CreateServiceRequest `json:"services"`
}
