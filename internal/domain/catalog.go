package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer represents a salon customer
type Customer struct {
	ID        int64
	Name      string
	Phone     *string
	CreatedAt time.Time
}

// Pet represents a customer's pet
type Pet struct {
	ID         int64
	CustomerID int64
	Name       string
	Breed      *string
	CreatedAt  time.Time
}

// Service represents a grooming service from the salon catalog
type Service struct {
	ID        int64
	Name      string
	Price     decimal.Decimal
	Active    bool
	CreatedAt time.Time
}
