package domain

import "time"

type OrderStatus string

const OrderPending OrderStatus = "pending"

type OrderItem struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	Price    int64  `json:"price" validate:"gte=0"` // minor units
}

type Order struct {
	Id         OrderId     `json:"id"`
	BusinessId BusinessId  `json:"businessId"`
	UserId     IdentityId  `json:"userId"`
	Items      []OrderItem `json:"items"`
	Total      int64       `json:"total"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"createdAt"`
}
