package domain

import "time"

// Order status values used by the platform.
const (
	OrderPending   = "PENDING"
	OrderConfirmed = "CONFIRMED"
	OrderCompleted = "COMPLETED"
)

// ServiceOrder is a booking of a service item for an elder.
type ServiceOrder struct {
	OrderID     int64      `json:"order_id"`
	ElderlyID   int64      `json:"elderly_id"`
	ServiceID   int64      `json:"service_id"`
	ReserveTime time.Time  `json:"reserve_time"`
	ServiceTime time.Time  `json:"service_time"`
	OrderStatus string     `json:"order_status"`
	PayStatus   string     `json:"pay_status"`
	EvalScore   int        `json:"eval_score,omitempty"`
	EvalContent string     `json:"eval_content,omitempty"`
	EvalTime    *time.Time `json:"eval_time,omitempty"`
}

// ServiceItem is a purchasable service offered by a provider.
type ServiceItem struct {
	ServiceID    int64   `json:"service_id"`
	ProviderID   int64   `json:"provider_id"`
	Name         string  `json:"name"`
	Content      string  `json:"content"`
	Duration     string  `json:"duration"`
	Price        float64 `json:"price"`
	ServiceScope string  `json:"service_scope"`
	Status       string  `json:"status"`
}
