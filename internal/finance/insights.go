package finance

import (
	"sort"

	"github.com/Veraticus/cardscan/internal/common"
	"github.com/Veraticus/cardscan/internal/model"
)

// Utilization describes how much of a credit limit is in use.
type Utilization struct {
	Status          string  `json:"status"`
	Recommendation  string  `json:"recommendation"`
	Rate            float64 `json:"utilization_rate"`
	CurrentBalance  float64 `json:"current_balance"`
	CreditLimit     float64 `json:"credit_limit"`
	AvailableCredit float64 `json:"available_credit"`
}

// CreditUtilization rates balance/limit as a percentage.
func CreditUtilization(balance, limit float64) Utilization {
	if limit == 0 {
		return Utilization{Status: "Unknown - no credit limit provided"}
	}
	u := Utilization{
		Rate:            balance / limit * 100,
		CurrentBalance:  balance,
		CreditLimit:     limit,
		AvailableCredit: limit - balance,
	}
	switch {
	case u.Rate <= 10:
		u.Status = "Excellent"
		u.Recommendation = "Excellent credit utilization - keep it up!"
	case u.Rate <= 30:
		u.Status = "Good"
		u.Recommendation = "Good credit utilization - try to keep it below 10% for optimal credit score"
	case u.Rate <= 50:
		u.Status = "Fair"
		u.Recommendation = "Consider paying down your balance to improve credit score"
	default:
		u.Status = "Poor"
		u.Recommendation = "High credit utilization - prioritize paying down this balance"
	}
	return u
}

// CategorySpending is the sum, mean and count of one category's amounts.
type CategorySpending struct {
	Category string  `json:"category"`
	Sum      float64 `json:"sum"`
	Mean     float64 `json:"mean"`
	Count    int     `json:"count"`
}

// MonthlySpending is the total spent in one month (YYYY-MM).
type MonthlySpending struct {
	Month    string  `json:"month"`
	Spending float64 `json:"spending"`
}

// HighValue summarizes transactions above the 90th percentile amount.
type HighValue struct {
	Count   int     `json:"count"`
	Total   float64 `json:"total_amount"`
	Average float64 `json:"avg_amount"`
}

// Insights is a spending overview for a set of transactions.
type Insights struct {
	HighValue       *HighValue         `json:"high_value_transactions,omitempty"`
	Monthly         []MonthlySpending  `json:"monthly_analysis"`
	Categories      []CategorySpending `json:"category_patterns"`
	Recommendations []string           `json:"recommendations"`
}

// SpendingInsights totals spending per month and per category, compares the
// most recent month with the average and summarizes unusually large purchases.
func SpendingInsights(txns []model.CategorizedTransaction) Insights {
	var in Insights
	if len(txns) == 0 {
		return in
	}

	monthIdx := make(map[string]int)
	catIdx := make(map[string]int)
	amounts := make([]float64, 0, len(txns))
	for _, t := range txns {
		month := t.Date.Format("2006-01")
		i, ok := monthIdx[month]
		if !ok {
			i = len(in.Monthly)
			monthIdx[month] = i
			in.Monthly = append(in.Monthly, MonthlySpending{Month: month})
		}
		in.Monthly[i].Spending += t.Amount

		category := t.Category
		if category == "" {
			category = model.FallbackCategory
		}
		j, ok := catIdx[category]
		if !ok {
			j = len(in.Categories)
			catIdx[category] = j
			in.Categories = append(in.Categories, CategorySpending{Category: category})
		}
		in.Categories[j].Sum += t.Amount
		in.Categories[j].Count++
		amounts = append(amounts, t.Amount)
	}
	for j := range in.Categories {
		in.Categories[j].Mean = in.Categories[j].Sum / float64(in.Categories[j].Count)
	}

	sort.Slice(in.Monthly, func(i, j int) bool { return in.Monthly[i].Month < in.Monthly[j].Month })
	if len(in.Monthly) > 1 {
		var total float64
		for _, m := range in.Monthly {
			total += m.Spending
		}
		avg := total / float64(len(in.Monthly))
		last := in.Monthly[len(in.Monthly)-1].Spending
		if last > avg*1.2 {
			in.Recommendations = append(in.Recommendations,
				"Your spending increased significantly last month - consider reviewing your budget")
		}
		if last < avg*0.8 {
			in.Recommendations = append(in.Recommendations, "Great job reducing spending last month!")
		}
	}

	p90 := common.Percentile(amounts, 0.9)
	var hv HighValue
	for _, a := range amounts {
		if a > p90 {
			hv.Count++
			hv.Total += a
		}
	}
	if hv.Count > 0 {
		hv.Average = hv.Total / float64(hv.Count)
		in.HighValue = &hv
	}
	return in
}
