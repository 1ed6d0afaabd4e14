// Package finance holds the derived card analytics: payoff projections,
// due-date reminders, rewards estimates and spending insights.
package finance

import (
	"encoding/json"
	"math"

	"github.com/Veraticus/cardscan/internal/model"
)

const (
	// NeverPaidOff is reported when the payment does not cover the monthly interest.
	NeverPaidOff = 999

	maxPayoffMonths = 600

	// DefaultAPR is used when a card carries no APR.
	DefaultAPR = 0.1999
)

// MonthlyRate converts an annual percentage rate such as 0.1999 to a monthly rate.
func MonthlyRate(apr float64) float64 {
	return apr / 12
}

// PayoffMonths simulates monthly payments until the balance is cleared.
// A payment that does not exceed the first month's interest never converges
// and yields NeverPaidOff; otherwise the simulation stops at 600 months.
func PayoffMonths(balance, payment, monthlyRate float64) int {
	if payment <= balance*monthlyRate {
		return NeverPaidOff
	}
	months := 0
	for remaining := balance; remaining > 0 && months < maxPayoffMonths; months++ {
		remaining -= payment - remaining*monthlyRate
	}
	return months
}

// TotalInterest is the interest paid over the same simulation as
// PayoffMonths. It is +Inf when the payment never converges.
func TotalInterest(balance, payment, monthlyRate float64) float64 {
	if payment <= balance*monthlyRate {
		return math.Inf(1)
	}
	var total float64
	remaining := balance
	for months := 0; remaining > 0 && months < maxPayoffMonths; months++ {
		interest := remaining * monthlyRate
		total += interest
		remaining -= payment - interest
	}
	return total
}

// Scenario is one payment plan for a balance.
type Scenario struct {
	Name           string  `json:"name"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalInterest  float64 `json:"total_interest"`
	TotalPaid      float64 `json:"total_paid"`
	InterestSaved  float64 `json:"interest_saved,omitempty"`
	Months         int     `json:"months_to_payoff"`
}

// MarshalJSON encodes infinite amounts, which mean the balance is never
// paid off, as null.
func (s Scenario) MarshalJSON() ([]byte, error) {
	type plain Scenario
	out := struct {
		plain
		TotalInterest *float64 `json:"total_interest"`
		TotalPaid     *float64 `json:"total_paid"`
		InterestSaved *float64 `json:"interest_saved,omitempty"`
	}{
		plain:         plain(s),
		TotalInterest: finite(s.TotalInterest),
		TotalPaid:     finite(s.TotalPaid),
	}
	if s.InterestSaved != 0 {
		out.InterestSaved = finite(s.InterestSaved)
	}
	return json.Marshal(out)
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// Optimization compares paying the minimum with a larger fixed payment.
type Optimization struct {
	Minimum   *Scenario `json:"minimum_payment_scenario,omitempty"`
	Optimized *Scenario `json:"optimized_payment_scenario,omitempty"`
	Message   string    `json:"message,omitempty"`
	Balance   float64   `json:"balance"`
	APR       float64   `json:"apr"`
}

// OptimizePayment projects the card's minimum payment against
// max(2 * minimum, 100). A card without an APR uses DefaultAPR.
func OptimizePayment(card model.CreditCard) Optimization {
	balance, minimumPayment, apr := card.CurrentBalance, card.MinimumPayment, card.APR
	if balance <= 0 {
		return Optimization{Message: "No balance to optimize"}
	}
	if apr <= 0 {
		apr = DefaultAPR
	}
	rate := MonthlyRate(apr)
	opt := Optimization{Balance: balance, APR: apr}

	var minInterest float64
	if minimumPayment > 0 {
		minInterest = TotalInterest(balance, minimumPayment, rate)
		opt.Minimum = &Scenario{
			Name:           "minimum",
			MonthlyPayment: minimumPayment,
			Months:         PayoffMonths(balance, minimumPayment, rate),
			TotalInterest:  minInterest,
			TotalPaid:      balance + minInterest,
		}
	}

	payment := math.Max(minimumPayment*2, 100)
	interest := TotalInterest(balance, payment, rate)
	opt.Optimized = &Scenario{
		Name:           "optimized",
		MonthlyPayment: payment,
		Months:         PayoffMonths(balance, payment, rate),
		TotalInterest:  interest,
		TotalPaid:      balance + interest,
	}
	if minimumPayment > 0 {
		opt.Optimized.InterestSaved = minInterest - interest
	}
	return opt
}

// InterestScenarios projects the minimum, double the minimum, $200 and $500
// monthly payments. Non-positive payments are skipped. A payment that stops
// reducing the principal is reported as 600 months with infinite interest.
func InterestScenarios(card model.CreditCard) []Scenario {
	balance, minimumPayment, apr := card.CurrentBalance, card.MinimumPayment, card.APR
	if apr <= 0 {
		apr = DefaultAPR
	}
	rate := MonthlyRate(apr)
	plans := []struct {
		name    string
		payment float64
	}{
		{"minimum_payment", minimumPayment},
		{"double_minimum", minimumPayment * 2},
		{"fixed_200", 200},
		{"fixed_500", 500},
	}

	var out []Scenario
	for _, p := range plans {
		if p.payment <= 0 {
			continue
		}
		s := Scenario{Name: p.name, MonthlyPayment: p.payment}
		remaining := balance
		for remaining > 0 && s.Months < maxPayoffMonths {
			interest := remaining * rate
			principal := p.payment - interest
			if principal <= 0 {
				s.Months = maxPayoffMonths
				s.TotalInterest = math.Inf(1)
				break
			}
			remaining = math.Max(remaining-principal, 0)
			s.TotalInterest += interest
			s.Months++
		}
		s.TotalPaid = balance + s.TotalInterest
		out = append(out, s)
	}
	return out
}
