package model

import (
	"github.com/shopspring/decimal"
)

// User represents a user in the database
type User struct {
	Username string
}

// Coin represents one cached market entry for a cryptocurrency
type Coin struct {
	ID                       string
	Symbol                   string
	Name                     string
	Price                    decimal.Decimal
	LastUpdated              string
	PriceChange24h           decimal.Decimal
	PriceChangePercentage24h decimal.Decimal
	PriceChangePercentage7d  decimal.Decimal
	Description              string
	Homepage                 string
}
