package model

import (
	"strconv"
	"time"
)

// PremiumPriceThreshold is the minimum price, inclusive, of a premium product.
const PremiumPriceThreshold = 500.0

type Product struct {
	ID          int64
	Name        string
	Description *string
	Price       float64
	Category    string
	Status      ProductStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IDString renders the store-assigned id the way it appears on the wire.
func (p Product) IDString() string {
	return strconv.FormatInt(p.ID, 10)
}

// IsPremium reports whether the product qualifies for the premium listing.
func (p Product) IsPremium() bool {
	return p.Status == ProductStatusActive && p.Price >= PremiumPriceThreshold
}
