package model

import "time"

// StatementFacts are the billing facts found in a statement. Every field is optional.
type StatementFacts struct {
	CurrentBalance *float64   `json:"current_balance,omitempty"`
	MinimumPayment *float64   `json:"minimum_payment,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	CardLastFour   string     `json:"card_last_four,omitempty"`
	Issuer         string     `json:"issuer,omitempty"`
}

// RewardType is the reward currency a card earns.
type RewardType string

// Reward types.
const (
	RewardCashback RewardType = "cashback"
	RewardPoints   RewardType = "points"
	RewardMiles    RewardType = "miles"
)

// CreditCard is a card record that the financial calculators operate on.
type CreditCard struct {
	CreatedAt      time.Time
	DueDate        *time.Time
	Issuer         string
	LastFour       string
	RewardType     RewardType
	CreditLimit    float64
	CurrentBalance float64
	MinimumPayment float64
	APR            float64
	ID             int
}

// Urgency is how close a payment due date is.
type Urgency string

// Urgency tiers.
const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// Reminder describes a card payment that is coming due or already overdue.
type Reminder struct {
	DueDate        time.Time `json:"due_date"`
	Issuer         string    `json:"issuer"`
	LastFour       string    `json:"card_last_four"`
	Urgency        Urgency   `json:"urgency,omitempty"`
	MinimumPayment float64   `json:"minimum_payment"`
	CurrentBalance float64   `json:"current_balance"`
	LateFee        float64   `json:"late_fees_estimated,omitempty"`
	CardID         int       `json:"credit_card_id"`
	DaysUntilDue   int       `json:"days_until_due"`
	DaysOverdue    int       `json:"days_overdue,omitempty"`
}
