package finance

import (
	"fmt"
	"sort"

	"github.com/Veraticus/cardscan/internal/model"
)

const defaultRateKey = "default"

// rewardRates are per-category earn rates for each reward currency.
var rewardRates = map[model.RewardType]map[string]float64{
	model.RewardCashback: {"Food & Dining": 0.03, "Transportation": 0.02, "Shopping": 0.01, defaultRateKey: 0.01},
	model.RewardPoints:   {"Food & Dining": 3, "Transportation": 2, "Shopping": 1, defaultRateKey: 1},
	model.RewardMiles:    {"Food & Dining": 2, "Transportation": 3, "Shopping": 1, defaultRateKey: 1},
}

// bestMarketRates are the best cashback rates available per category.
var bestMarketRates = map[string]float64{
	"Food & Dining":  0.05,
	"Transportation": 0.04,
	"Shopping":       0.03,
	defaultRateKey:   0.02,
}

func rateFor(rates map[string]float64, category string) float64 {
	if r, ok := rates[category]; ok {
		return r
	}
	return rates[defaultRateKey]
}

// CategoryRewards is spending and earnings for one category.
type CategoryRewards struct {
	Category          string  `json:"category"`
	Spending          float64 `json:"spending"`
	Rate              float64 `json:"reward_rate"`
	Earned            float64 `json:"rewards_earned"`
	PotentialRewards  float64 `json:"potential_rewards"`
	AdditionalRewards float64 `json:"additional_rewards"`
	ImprovementRate   float64 `json:"improvement_rate"`
}

// MonthlyRewards is spending and estimated earnings for one month (YYYY-MM).
type MonthlyRewards struct {
	Month     string  `json:"month"`
	Spending  float64 `json:"spending"`
	Estimated float64 `json:"estimated_rewards"`
}

// RewardsAnalysis summarizes what a card earned on a set of transactions.
type RewardsAnalysis struct {
	RewardType      model.RewardType  `json:"reward_type"`
	ByCategory      []CategoryRewards `json:"rewards_by_category"`
	Monthly         []MonthlyRewards  `json:"monthly_rewards"`
	Recommendations []string          `json:"recommendations"`
	TotalEarned     float64           `json:"total_rewards_earned"`
}

// AnalyzeRewards estimates rewards per category and per month and compares
// them with the best rates on the market. Unknown reward types earn cashback.
func AnalyzeRewards(txns []model.CategorizedTransaction, rewardType model.RewardType) RewardsAnalysis {
	rates, ok := rewardRates[rewardType]
	if !ok {
		rewardType = model.RewardCashback
		rates = rewardRates[rewardType]
	}
	analysis := RewardsAnalysis{RewardType: rewardType}
	if len(txns) == 0 {
		return analysis
	}

	var categories, months []string
	categoryTotals := make(map[string]float64)
	monthTotals := make(map[string]float64)
	var spending float64
	for _, t := range txns {
		category := t.Category
		if category == "" {
			category = model.FallbackCategory
		}
		if _, ok := categoryTotals[category]; !ok {
			categories = append(categories, category)
		}
		categoryTotals[category] += t.Amount

		month := t.Date.Format("2006-01")
		if _, ok := monthTotals[month]; !ok {
			months = append(months, month)
		}
		monthTotals[month] += t.Amount
		spending += t.Amount
	}

	for _, c := range categories {
		total := categoryTotals[c]
		rate := rateFor(rates, c)
		best := rateFor(bestMarketRates, c)
		cr := CategoryRewards{
			Category:         c,
			Spending:         total,
			Rate:             rate,
			Earned:           total * rate,
			PotentialRewards: total * best,
			ImprovementRate:  best - rate,
		}
		cr.AdditionalRewards = cr.PotentialRewards - cr.Earned
		analysis.TotalEarned += cr.Earned
		analysis.ByCategory = append(analysis.ByCategory, cr)
	}

	var avgRate float64
	if spending > 0 {
		avgRate = analysis.TotalEarned / spending
	}
	for _, m := range months {
		analysis.Monthly = append(analysis.Monthly, MonthlyRewards{
			Month:     m,
			Spending:  monthTotals[m],
			Estimated: monthTotals[m] * avgRate,
		})
	}

	analysis.Recommendations = rewardRecommendations(analysis.ByCategory)
	return analysis
}

func rewardRecommendations(byCategory []CategoryRewards) []string {
	var recs []string
	for _, c := range byCategory {
		if c.AdditionalRewards > 50 {
			recs = append(recs, fmt.Sprintf(
				"Consider a card with better %s rewards - potential additional $%.2f/year", c.Category, c.AdditionalRewards))
		}
	}

	top := make([]CategoryRewards, len(byCategory))
	copy(top, byCategory)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Spending > top[j].Spending })
	if len(top) > 3 {
		top = top[:3]
	}
	for _, c := range top {
		if c.Rate < 0.02 {
			recs = append(recs, fmt.Sprintf(
				"Your top spending category '%s' has low rewards - consider optimizing", c.Category))
		}
	}
	return recs
}
