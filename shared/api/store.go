package api

import "github.com/a2z-dev/a2z/shared/domain"

type CreateOrderRequest struct {
	Items []domain.OrderItem `json:"items" validate:"required,min=1,dive"`
}

type OrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

type ErrorReportRequest struct {
	Message        string         `json:"message" validate:"required"`
	Stack          string         `json:"stack"`
	URL            string         `json:"url"`
	AdditionalInfo map[string]any `json:"additionalInfo"`
}

type ErrorReportResponse struct {
	RefId string `json:"refId"`
}
