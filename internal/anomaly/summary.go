package anomaly

import "github.com/Veraticus/cardscan/internal/model"

// Risk bands for Summarize.
const (
	highRiskScore   = 0.8
	mediumRiskScore = 0.5
)

// Summarize counts anomalies by type and by risk band.
func Summarize(anomalies []model.Anomaly) model.AnomalySummary {
	s := model.AnomalySummary{
		ByType: make(map[model.AnomalyType]int),
		Total:  len(anomalies),
	}
	if len(anomalies) == 0 {
		return s
	}

	var sum float64
	for _, a := range anomalies {
		s.ByType[a.Type]++
		sum += a.Score
		switch {
		case a.Score > highRiskScore:
			s.HighRisk++
		case a.Score >= mediumRiskScore:
			s.MediumRisk++
		default:
			s.LowRisk++
		}
	}
	s.AverageScore = sum / float64(len(anomalies))
	return s
}
