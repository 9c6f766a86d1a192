package service

import (
	"math"
	"testing"
)

func TestComputeSettlementMatchesReference(t *testing.T) {
	cases := []struct {
		total float64
		rate  float64
	}{
		{100, 0.20},
		{0, 0.15},
		{99.99, 0},
		{99.99, 1},
		{0.01, 0.333},
		{123456.78, 0.1234},
		{7.5, 0.2},
	}

	const tolerance = 1e-9
	for _, tc := range cases {
		deduction, settlement := ComputeSettlement(tc.total, tc.rate)
		wantDeduction := tc.total * tc.rate
		wantSettlement := tc.total - wantDeduction
		if math.Abs(deduction-wantDeduction) > tolerance {
			t.Fatalf("total=%v rate=%v: deduction %v, want %v", tc.total, tc.rate, deduction, wantDeduction)
		}
		if math.Abs(settlement-wantSettlement) > tolerance {
			t.Fatalf("total=%v rate=%v: settlement %v, want %v", tc.total, tc.rate, settlement, wantSettlement)
		}
		if math.Abs((deduction+settlement)-tc.total) > tolerance {
			t.Fatalf("total=%v rate=%v: amounts do not sum back to total", tc.total, tc.rate)
		}
	}
}

func TestComputeSettlementScenario(t *testing.T) {
	deduction, settlement := ComputeSettlement(100, 0.20)
	if deduction != 20.0 {
		t.Fatalf("deduction = %v, want 20.00", deduction)
	}
	if settlement != 80.0 {
		t.Fatalf("settlement = %v, want 80.00", settlement)
	}
}
