package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	sixty = decimal.NewFromInt(60)
)

// minuteScale is the precision kept for minutes derived from hours. Hours
// produced by dividing a duration end in a rounded digit that must not push
// an exact multiple of the step into the next increment.
const minuteScale = 9

// RoundUpMinutes rounds hours up to the next multiple of stepMinutes and
// returns the billed minutes, always a whole multiple of the step.
func RoundUpMinutes(hours decimal.Decimal, stepMinutes int) (decimal.Decimal, error) {
	if stepMinutes <= 0 {
		return decimal.Zero, fmt.Errorf("bill time step must be positive, got %d", stepMinutes)
	}
	if hours.IsNegative() {
		return decimal.Zero, fmt.Errorf("hours must not be negative, got %s", hours)
	}
	step := decimal.NewFromInt(int64(stepMinutes))
	minutes := hours.Mul(sixty).Round(minuteScale)
	return minutes.Div(step).Ceil().Mul(step), nil
}

// RoundUp rounds hours up to the next multiple of stepMinutes and returns the
// result in hours. It never rounds toward zero: 1 minute with a 15 minute step
// bills as 0.25h. Zero hours stay zero.
func RoundUp(hours decimal.Decimal, stepMinutes int) (decimal.Decimal, error) {
	minutes, err := RoundUpMinutes(hours, stepMinutes)
	if err != nil {
		return decimal.Zero, err
	}
	return minutes.Div(sixty), nil
}

// Price is the amount billed for roundedHours at rate per hour.
func Price(roundedHours, rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(roundedHours)
}
