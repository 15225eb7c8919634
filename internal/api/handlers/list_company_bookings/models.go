package list_company_bookings

import (
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
// Query params: userId, status, fromDate, toDate, search (все опциональны)
func ToServiceRequest(actorID int64, q url.Values) (*models.ListAppointmentsRequest, error) {
	req := &models.ListAppointmentsRequest{
		ActorID: actorID,
		Status:  q.Get("status"),
		Search:  q.Get("search"),
	}

	if v := q.Get("userId"); v != "" {
		customerID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, err
		}
		req.CustomerID = &customerID
	}

	if v := q.Get("fromDate"); v != "" {
		from, err := time.Parse(domain.DateFormat, v)
		if err != nil {
			return nil, err
		}
		req.FromDate = &from
	}

	if v := q.Get("toDate"); v != "" {
		to, err := time.Parse(domain.DateFormat, v)
		if err != nil {
			return nil, err
		}
		req.ToDate = &to
	}

	return req, nil
}
