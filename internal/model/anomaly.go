package model

// AnomalyType is one of the fixed anomaly identifiers.
type AnomalyType string

// Anomaly types.
const (
	AnomalyAmountOutlier AnomalyType = "amount_outlier"
	AnomalyFrequency     AnomalyType = "frequency_anomaly"
	AnomalyTime          AnomalyType = "time_anomaly"
	AnomalyMerchant      AnomalyType = "merchant_anomaly"
	AnomalyCategory      AnomalyType = "category_anomaly"
	AnomalyVelocity      AnomalyType = "velocity_anomaly"
	AnomalyAmountPattern AnomalyType = "amount_pattern"
	AnomalyML            AnomalyType = "ml_anomaly"
)

// Anomaly flags a single transaction. After merging there is at most one per transaction.
type Anomaly struct {
	Transaction   *CategorizedTransaction `json:"-"`
	TransactionID string                  `json:"transaction_id"`
	Type          AnomalyType             `json:"anomaly_type"`
	Description   string                  `json:"description"`
	Score         float64                 `json:"score"`
}

// AnomalySummary aggregates a set of anomalies.
type AnomalySummary struct {
	ByType       map[AnomalyType]int `json:"by_type"`
	Total        int                 `json:"total_anomalies"`
	AverageScore float64             `json:"avg_score"`
	HighRisk     int                 `json:"high_risk_count"`
	MediumRisk   int                 `json:"medium_risk_count"`
	LowRisk      int                 `json:"low_risk_count"`
}
