package service

import "github.com/shopspring/decimal"

// ComputeSettlement applies the commission rule to one sales line:
//
//	deduction  = total * rate
//	settlement = total - deduction
//
// The arithmetic runs on decimals so the two amounts always sum back to
// the total exactly, then converts for NUMERIC storage.
func ComputeSettlement(total, rate float64) (deduction, settlement float64) {
	t := decimal.NewFromFloat(total)
	d := t.Mul(decimal.NewFromFloat(rate))
	s := t.Sub(d)
	return d.InexactFloat64(), s.InexactFloat64()
}
