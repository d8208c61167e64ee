package fund

import (
	"github.com/holiman/uint256"
)

// MulDiv returns floor(x*y/d) with a 512-bit intermediate. It panics on d == 0 and
// reports false when the result does not fit 256 bits.
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, bool) {
	if d.IsZero() {
		panic("fund: division by zero")
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	return z, !overflow
}

// FeeAmount is the part of amount taken when amount already includes a fee of
// fee/MaxPercent on top of the net payout: amount - amount*MaxPercent/(fee+MaxPercent).
func FeeAmount(amount *uint256.Int, fee uint64) *uint256.Int {
	if fee == 0 || amount.IsZero() {
		return new(uint256.Int)
	}
	net, _ := MulDiv(amount, uint256.NewInt(MaxPercent), uint256.NewInt(fee+MaxPercent))
	return new(uint256.Int).Sub(amount, net)
}

// ClaimableOverflow applies the bonding curve to redeeming count of total tokens.
//
// rate MaxPercent is linear, rate 0 is quadratic in count/total and everything in
// between interpolates. Redeeming the whole supply always returns the whole overflow.
func ClaimableOverflow(overflow, count, total *uint256.Int, rate uint64) *uint256.Int {
	if overflow.IsZero() || count.IsZero() || total.IsZero() {
		return new(uint256.Int)
	}
	if !count.Lt(total) {
		return overflow.Clone()
	}
	base, _ := MulDiv(overflow, count, total)
	if rate >= MaxPercent {
		return base
	}
	tail, _ := MulDiv(count, uint256.NewInt(MaxPercent-rate), total)
	factor := new(uint256.Int).Add(uint256.NewInt(rate), tail)
	claimable, _ := MulDiv(base, factor, uint256.NewInt(MaxPercent))
	return claimable
}

// compoundScale is the fixed-point base of the compounded keep factor.
var compoundScale = uint256.MustFromDecimal("1000000000000000000000000000000000000")

// DiscountedWeight is weight * (1 - discountRate)^periods, floored once at the end.
// The factor is built by squaring, so the cost grows with log2(periods).
func DiscountedWeight(weight *uint256.Int, discountRate uint64, periods uint64) *uint256.Int {
	w := weight.Clone()
	if periods == 0 || discountRate == 0 || w.IsZero() {
		return w
	}
	if discountRate >= MaxDiscountRate {
		return new(uint256.Int)
	}
	out, _ := MulDiv(w, compoundKeep(discountRate, periods), compoundScale)
	return out
}

// compoundKeep returns (1 - rate)^periods on compoundScale.
func compoundKeep(rate, periods uint64) *uint256.Int {
	step, _ := MulDiv(uint256.NewInt(MaxDiscountRate-rate), compoundScale, uint256.NewInt(MaxDiscountRate))
	acc := compoundScale.Clone()
	for n := periods; n > 0 && !acc.IsZero(); n >>= 1 {
		if n&1 == 1 {
			acc, _ = MulDiv(acc, step, compoundScale)
		}
		if n > 1 {
			step, _ = MulDiv(step, step, compoundScale)
		}
	}
	return acc
}

// ConvertToBase turns amount quoted in a currency into base units given price, the
// amount of that currency one base unit is worth (18 decimals).
func ConvertToBase(amount, price *uint256.Int) *uint256.Int {
	if price.IsZero() {
		panic("fund: zero price")
	}
	out, ok := MulDiv(amount, WeightScale, price)
	if !ok {
		panic("fund: conversion overflow")
	}
	return out
}

// Tokens returns amount*weight/1e18.
func Tokens(amount, weight *uint256.Int) *uint256.Int {
	out, ok := MulDiv(amount, weight, WeightScale)
	if !ok {
		panic("fund: token overflow")
	}
	return out
}

// PercentOf returns amount*percent/denominator.
func PercentOf(amount *uint256.Int, percent, denominator uint64) *uint256.Int {
	out, _ := MulDiv(amount, uint256.NewInt(percent), uint256.NewInt(denominator))
	return out
}
