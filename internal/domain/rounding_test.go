package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundUp_OneMinuteBillsFullStep(t *testing.T) {
	oneMinute := decimal.NewFromInt(1).Div(decimal.NewFromInt(60))
	got, err := RoundUp(oneMinute, 15)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("0.25")), "got %s", got)
}

func TestRoundUp_Zero(t *testing.T) {
	for _, step := range []int{1, 6, 15, 30, 60} {
		got, err := RoundUp(decimal.Zero, step)
		require.NoError(t, err)
		assert.True(t, got.IsZero(), "step=%d got %s", step, got)
	}
}

func TestRoundUp_ExactBoundaryUnchanged(t *testing.T) {
	got, err := RoundUp(decimal.RequireFromString("1.5"), 15)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("1.5")), "got %s", got)
}

func TestRoundUp_ThirdOfAnHour(t *testing.T) {
	// 1200s / 3600 truncates under decimal division; it must not round past 20 min.
	hours := decimal.NewFromInt(1200).Div(decimal.NewFromInt(3600))
	got, err := RoundUp(hours, 20)
	require.NoError(t, err)
	assert.True(t, got.Mul(sixty).Round(6).Equal(decimal.NewFromInt(20)), "got %s", got)
}

func TestRoundUpMinutes_IgnoresDivisionResidue(t *testing.T) {
	// 600s / 3600 rounds its last digit up; the item must still bill one step.
	tenMinutes := decimal.NewFromInt(600).Div(decimal.NewFromInt(3600))
	got, err := RoundUpMinutes(tenMinutes, 10)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(10)), "got %s", got)

	got, err = RoundUpMinutes(tenMinutes, 5)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(10)), "got %s", got)
}

func TestRoundUp_Properties(t *testing.T) {
	steps := []int{1, 5, 6, 7, 10, 15, 20, 30, 45, 60}
	hours := []string{"0", "0.01", "0.1", "0.25", "0.3333", "0.5", "0.7", "1", "1.02", "2.999", "7.5", "12.345678"}

	for _, step := range steps {
		for _, h := range hours {
			in := decimal.RequireFromString(h)
			got, err := RoundUp(in, step)
			require.NoError(t, err)

			assert.True(t, got.GreaterThanOrEqual(in), "step=%d hours=%s got %s", step, h, got)

			minutes := got.Mul(sixty).Round(6)
			assert.True(t, minutes.Mod(decimal.NewFromInt(int64(step))).IsZero(),
				"step=%d hours=%s minutes=%s not a multiple", step, h, minutes)
		}
	}
}

func TestRoundUp_RejectsBadInput(t *testing.T) {
	_, err := RoundUp(decimal.NewFromInt(1), 0)
	assert.Error(t, err)

	_, err = RoundUp(decimal.NewFromInt(-1), 15)
	assert.Error(t, err)
}

func TestPrice_SpecExample(t *testing.T) {
	rounded, err := RoundUp(decimal.RequireFromString("1.02"), 15)
	require.NoError(t, err)
	assert.True(t, rounded.Equal(decimal.RequireFromString("1.25")))

	total := Price(rounded, decimal.NewFromInt(100))
	assert.Equal(t, "125.00", total.StringFixed(2))
}
