package services

import (
	"math"
	"time"
)

// CashFlow is one dated flow in an XIRR series. Negative amounts are money
// out, positive amounts are money in.
type CashFlow struct {
	Date   time.Time
	Amount float64
}

const (
	xirrMaxIterations = 100
	xirrTolerance     = 1e-7
	xirrMinRate       = -0.999999
	xirrRetryGuess    = 0.1
)

// CalculateXirr returns the annualized money-weighted return of the series
// as a percentage: the rate r solving sum(amount_i / (1+r)^(days_i/365)) = 0.
// A series without at least one positive and one negative flow has no
// defined rate and yields 0, as does a solve that fails to converge after a
// retry with an alternate seed. Valuation callers rely on this never
// failing.
func CalculateXirr(flows []CashFlow) float64 {
	if len(flows) == 0 {
		return 0
	}

	hasPositive, hasNegative := false, false
	for _, f := range flows {
		if f.Amount > 0 {
			hasPositive = true
		}
		if f.Amount < 0 {
			hasNegative = true
		}
	}
	if !hasPositive || !hasNegative {
		return 0
	}

	base := flows[0].Date
	for _, f := range flows[1:] {
		if f.Date.Before(base) {
			base = f.Date
		}
	}
	years := make([]float64, len(flows))
	for i, f := range flows {
		years[i] = f.Date.Sub(base).Hours() / 24 / 365
	}

	rate, ok := solveXirr(flows, years, 0)
	if !ok {
		rate, ok = solveXirr(flows, years, xirrRetryGuess)
	}
	if !ok || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0
	}
	return rate * 100
}

// solveXirr runs Newton-Raphson from the given seed. The bool reports
// convergence.
func solveXirr(flows []CashFlow, years []float64, guess float64) (float64, bool) {
	rate := guess

	for iter := 0; iter < xirrMaxIterations; iter++ {
		npv := 0.0
		dnpv := 0.0

		for i, f := range flows {
			y := years[i]
			discount := math.Pow(1+rate, y)
			if discount == 0 {
				return 0, false
			}
			npv += f.Amount / discount
			if y != 0 {
				dnpv -= y * f.Amount / (discount * (1 + rate))
			}
		}

		if math.Abs(npv) < xirrTolerance {
			return rate, true
		}
		if dnpv == 0 || math.IsNaN(dnpv) {
			return 0, false
		}

		next := rate - npv/dnpv
		if next <= xirrMinRate {
			next = xirrMinRate
		}
		if math.Abs(next-rate) < xirrTolerance {
			return next, true
		}
		rate = next
	}
	return 0, false
}
