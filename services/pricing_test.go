package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNights(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 2, Nights(day, day.AddDate(0, 0, 2)))
	assert.Equal(t, 1, Nights(day, day))
	assert.Equal(t, 1, Nights(day, day.Add(3*time.Hour)))
	assert.Equal(t, 2, Nights(day, day.Add(25*time.Hour)))
	assert.Equal(t, 1, Nights(day, day.Add(-time.Hour)))
}

func TestComputeQuote(t *testing.T) {
	tests := []struct {
		name        string
		price       float64
		nights      int
		guests      int
		surcharge   float64
		coefficient float64
		total       float64
		deposit     float64
	}{
		{"foreign with extra guest", 100, 2, 3, 0.25, 1.5, 375, 112.5},
		{"domestic base occupancy", 100, 2, 2, 0.25, 1.0, 200, 60},
		{"no regulation coefficient", 100, 1, 1, 0, 0, 100, 30},
		{"rounds to cents", 33.333, 1, 1, 0, 1, 33.33, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ComputeQuote(tt.price, tt.nights, tt.guests, tt.surcharge, tt.coefficient)
			assert.InDelta(t, tt.total, q.Total, 0.001)
			assert.InDelta(t, tt.deposit, q.Deposit, 0.001)
			assert.InDelta(t, tt.total-tt.deposit, q.AmountDue, 0.001)
		})
	}
}

func TestQuote_WithDeposit(t *testing.T) {
	q := ComputeQuote(100, 3, 2, 0, 1).WithDeposit(60)
	assert.Equal(t, 300.0, q.Total)
	assert.Equal(t, 60.0, q.Deposit)
	assert.Equal(t, 240.0, q.AmountDue)
}
