package service

import "math"

// Money conversion and fee-splitting helpers. These are the only places
// rounding happens; everything downstream works with the already-rounded
// integer coin amounts and two-decimal fiat amounts.

// Round2 rounds a fiat amount half-up to two decimals.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// CoinsFromFiat converts fiat to whole FanCoins at the given rate,
// rounding half-up.
func CoinsFromFiat(fiat, rate float64) int64 {
	if rate <= 0 {
		return 0
	}
	return int64(math.Floor(fiat/rate + 0.5))
}

// FiatFromCoins converts whole FanCoins to a two-decimal fiat amount.
func FiatFromCoins(coins int64, rate float64) float64 {
	return Round2(float64(coins) * rate)
}

// SplitCoins divides an integer coin amount into platform fee and creator
// share. The fee is floored so the creator always receives the remainder and
// fee + creator == amount exactly.
func SplitCoins(amount int64, feeRate float64) (fee, creator int64) {
	fee = int64(math.Floor(float64(amount) * feeRate))
	return fee, amount - fee
}

// SplitFiat divides a gross fiat amount into platform fee and creator share.
// The fee is rounded to two decimals; the creator share is the remainder.
func SplitFiat(gross, feeRate float64) (fee, creator float64) {
	fee = Round2(gross * feeRate)
	return fee, Round2(gross - fee)
}
