package finance

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/Veraticus/cardscan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayoffMonths(t *testing.T) {
	tests := []struct {
		name    string
		balance float64
		payment float64
		rate    float64
		want    int
	}{
		{name: "payment below interest", balance: 1000, payment: 10, rate: 0.02, want: NeverPaidOff},
		{name: "payment equal to interest", balance: 1000, payment: 20, rate: 0.02, want: NeverPaidOff},
		{name: "no interest", balance: 1000, payment: 100, rate: 0, want: 10},
		{name: "single payment", balance: 1000, payment: 1010, rate: 0.01, want: 1},
		{name: "barely converging is capped", balance: 1000, payment: 10.0001, rate: 0.01, want: 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PayoffMonths(tt.balance, tt.payment, tt.rate))
		})
	}
}

func TestTotalInterest(t *testing.T) {
	assert.True(t, math.IsInf(TotalInterest(1000, 10, 0.02), 1))
	assert.Equal(t, 0.0, TotalInterest(1200, 100, 0))
	assert.InDelta(t, 10.0, TotalInterest(1000, 1010, 0.01), 1e-9)
}

func TestOptimizePayment(t *testing.T) {
	t.Run("no balance", func(t *testing.T) {
		opt := OptimizePayment(model.CreditCard{})
		assert.Equal(t, "No balance to optimize", opt.Message)
		assert.Nil(t, opt.Optimized)
	})

	t.Run("doubling the minimum saves interest", func(t *testing.T) {
		opt := OptimizePayment(model.CreditCard{CurrentBalance: 5000, MinimumPayment: 150, APR: 0.24})
		require.NotNil(t, opt.Minimum)
		require.NotNil(t, opt.Optimized)
		assert.Equal(t, 300.0, opt.Optimized.MonthlyPayment)
		assert.Less(t, opt.Optimized.Months, opt.Minimum.Months)
		assert.Greater(t, opt.Optimized.InterestSaved, 0.0)
		assert.InDelta(t, opt.Minimum.TotalInterest-opt.Optimized.TotalInterest, opt.Optimized.InterestSaved, 1e-9)
	})

	t.Run("no minimum uses 100 and default apr", func(t *testing.T) {
		opt := OptimizePayment(model.CreditCard{CurrentBalance: 500})
		assert.Nil(t, opt.Minimum)
		assert.Equal(t, 100.0, opt.Optimized.MonthlyPayment)
		assert.Equal(t, DefaultAPR, opt.APR)
		assert.Zero(t, opt.Optimized.InterestSaved)
	})
}

func TestInterestScenarios(t *testing.T) {
	t.Run("non-positive payments are skipped", func(t *testing.T) {
		got := InterestScenarios(model.CreditCard{CurrentBalance: 1000, APR: 0.12})
		require.Len(t, got, 2)
		assert.Equal(t, "fixed_200", got[0].Name)
		assert.Equal(t, "fixed_500", got[1].Name)
		assert.Equal(t, 3, got[1].Months)
		assert.InDelta(t, 15.251, got[1].TotalInterest, 1e-6)
		assert.InDelta(t, 1015.251, got[1].TotalPaid, 1e-6)
	})

	t.Run("payments below interest never converge", func(t *testing.T) {
		got := InterestScenarios(model.CreditCard{CurrentBalance: 100000, MinimumPayment: 500, APR: 0.12})
		require.Len(t, got, 4)
		for _, s := range got {
			assert.Equal(t, 600, s.Months, s.Name)
			assert.True(t, math.IsInf(s.TotalInterest, 1), s.Name)
		}
	})
}

func TestScenarioJSON(t *testing.T) {
	data, err := json.Marshal(Scenario{
		Name:           "minimum_payment",
		MonthlyPayment: 10,
		TotalInterest:  math.Inf(1),
		TotalPaid:      math.Inf(1),
		Months:         600,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"minimum_payment","monthly_payment":10,"total_interest":null,"total_paid":null,"months_to_payoff":600}`, string(data))

	data, err = json.Marshal(Scenario{Name: "optimized", MonthlyPayment: 100, TotalInterest: 12.5, TotalPaid: 1012.5, InterestSaved: 40, Months: 11})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"optimized","monthly_payment":100,"total_interest":12.5,"total_paid":1012.5,"interest_saved":40,"months_to_payoff":11}`, string(data))
}
