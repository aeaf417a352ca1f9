package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.56, Round2(10.556))
	assert.Equal(t, 10.55, Round2(10.554))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, 92.0, Round2(92.0000000001))
}

func TestCoinsFromFiat(t *testing.T) {
	assert.Equal(t, int64(1000), CoinsFromFiat(10, 0.01))
	assert.Equal(t, int64(1050), CoinsFromFiat(10.5, 0.01))
	assert.Equal(t, int64(50), CoinsFromFiat(0.5, 0.01))
	assert.Equal(t, int64(0), CoinsFromFiat(10, 0))
}

func TestFiatFromCoins(t *testing.T) {
	assert.Equal(t, 10.0, FiatFromCoins(1000, 0.01))
	assert.Equal(t, 0.07, FiatFromCoins(7, 0.01))
}

func TestSplitCoinsConservation(t *testing.T) {
	for _, amount := range []int64{1, 7, 99, 100, 12345} {
		fee, creator := SplitCoins(amount, 0.08)
		assert.Equal(t, amount, fee+creator, "amount %d", amount)
		assert.LessOrEqual(t, fee, amount)
	}
	// 8% of 100 is exactly 8; of 99 floors to 7.
	fee, creator := SplitCoins(100, 0.08)
	assert.Equal(t, int64(8), fee)
	assert.Equal(t, int64(92), creator)
	fee, creator = SplitCoins(99, 0.08)
	assert.Equal(t, int64(7), fee)
	assert.Equal(t, int64(92), creator)
}

func TestSplitFiat(t *testing.T) {
	fee, creator := SplitFiat(100, 0.08)
	assert.Equal(t, 8.0, fee)
	assert.Equal(t, 92.0, creator)
}
