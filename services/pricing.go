package services

import (
	"math"
	"time"
)

const (
	// BaseOccupancy is the number of guests included in the room price.
	BaseOccupancy = 2
	// DefaultMaxGuests applies to room types without a regulation.
	DefaultMaxGuests = 3
	DepositRate      = 0.3
)

// Quote is the charge breakdown stored with a bill.
type Quote struct {
	RoomPrice     float64 `json:"room_price"`
	Nights        int     `json:"nights"`
	Guests        int     `json:"guests"`
	SurchargeRate float64 `json:"surcharge_rate"`
	Coefficient   float64 `json:"coefficient"`
	Subtotal      float64 `json:"subtotal"`
	Total         float64 `json:"total"`
	Deposit       float64 `json:"deposit"`
	AmountDue     float64 `json:"amount_due"`
}

// Nights counts started 24h periods between in and out, at least one.
func Nights(in, out time.Time) int {
	n := int(math.Ceil(out.Sub(in).Hours() / 24))
	if n < 1 {
		return 1
	}
	return n
}

// ComputeQuote prices a stay. The surcharge applies once guests exceed
// BaseOccupancy; the customer coefficient applies to the whole amount.
func ComputeQuote(price float64, nights, guests int, surchargeRate, coefficient float64) Quote {
	if nights < 1 {
		nights = 1
	}
	if coefficient <= 0 {
		coefficient = 1
	}

	subtotal := price * float64(nights)
	if guests > BaseOccupancy {
		subtotal *= 1 + surchargeRate
	}
	total := roundCents(subtotal * coefficient)
	deposit := roundCents(total * DepositRate)

	return Quote{
		RoomPrice:     price,
		Nights:        nights,
		Guests:        guests,
		SurchargeRate: surchargeRate,
		Coefficient:   coefficient,
		Subtotal:      roundCents(subtotal),
		Total:         total,
		Deposit:       deposit,
		AmountDue:     roundCents(total - deposit),
	}
}

// WithDeposit replaces the deposit with the amount actually paid.
func (q Quote) WithDeposit(deposit float64) Quote {
	q.Deposit = deposit
	q.AmountDue = roundCents(q.Total - deposit)
	return q
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
