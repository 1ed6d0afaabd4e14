package finance

import (
	"testing"
	"time"

	"github.com/Veraticus/cardscan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(month time.Month, day int) *time.Time {
	d := time.Date(2024, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestUrgencyFor(t *testing.T) {
	tests := map[int]model.Urgency{
		0: model.UrgencyCritical,
		1: model.UrgencyCritical,
		2: model.UrgencyHigh,
		3: model.UrgencyHigh,
		7: model.UrgencyMedium,
		8: model.UrgencyLow,
	}
	for days, want := range tests {
		assert.Equal(t, want, UrgencyFor(days), days)
	}
}

func TestLateFee(t *testing.T) {
	assert.Equal(t, 0.0, LateFee(0, 50))
	assert.Equal(t, 29.0, LateFee(5, 50))
	assert.Equal(t, 39.0, LateFee(5, 100))
	assert.Equal(t, 39.0, LateFee(40, 500))
	assert.Equal(t, 49.0, LateFee(1, 501))
}

func TestUpcomingDueDates(t *testing.T) {
	today := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	cards := []model.CreditCard{
		{ID: 1, LastFour: "1111", DueDate: date(3, 13)},
		{ID: 2, LastFour: "2222", DueDate: date(3, 10)},
		{ID: 3, LastFour: "3333", DueDate: date(3, 20)},
		{ID: 4, LastFour: "4444", DueDate: date(3, 5)},
		{ID: 5, LastFour: "5555"},
	}

	got := UpcomingDueDates(cards, today, 7)

	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].CardID)
	assert.Equal(t, 0, got[0].DaysUntilDue)
	assert.Equal(t, model.UrgencyCritical, got[0].Urgency)
	assert.Equal(t, 1, got[1].CardID)
	assert.Equal(t, 3, got[1].DaysUntilDue)
	assert.Equal(t, model.UrgencyHigh, got[1].Urgency)
}

func TestOverduePayments(t *testing.T) {
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	cards := []model.CreditCard{
		{ID: 1, DueDate: date(3, 5), MinimumPayment: 250},
		{ID: 2, DueDate: date(2, 10), MinimumPayment: 25},
		{ID: 3, DueDate: date(3, 12)},
		{ID: 4, DueDate: date(3, 10)},
	}

	got := OverduePayments(cards, today)

	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].CardID)
	assert.Equal(t, 29, got[0].DaysOverdue)
	assert.Equal(t, 29.0, got[0].LateFee)
	assert.Equal(t, 1, got[1].CardID)
	assert.Equal(t, 5, got[1].DaysOverdue)
	assert.Equal(t, 39.0, got[1].LateFee)
}

func TestReminderMessage(t *testing.T) {
	r := model.Reminder{Issuer: "chase", LastFour: "4242", MinimumPayment: 35, DueDate: *date(3, 15)}

	tests := []struct {
		want string
		days int
	}{
		{days: 0, want: "URGENT: Your chase credit card ending 4242 payment of $35.00 is due TODAY (2024-03-15)"},
		{days: 1, want: "REMINDER: Your chase credit card ending 4242 payment of $35.00 is due TOMORROW (2024-03-15)"},
		{days: 2, want: "REMINDER: Your chase credit card ending 4242 payment of $35.00 is due in 2 days (2024-03-15)"},
		{days: 5, want: "Upcoming: Your chase credit card ending 4242 payment of $35.00 is due in 5 days (2024-03-15)"},
	}
	for _, tt := range tests {
		r.DaysUntilDue = tt.days
		assert.Equal(t, tt.want, ReminderMessage(r))
	}

	anon := model.Reminder{LastFour: "9876", MinimumPayment: 20, DaysUntilDue: 4, DueDate: *date(3, 15)}
	assert.Equal(t, "Upcoming: Your credit card ending 9876 payment of $20.00 is due in 4 days (2024-03-15)", ReminderMessage(anon))

	// Two cards from one issuer stay distinguishable.
	other := r
	other.LastFour = "1111"
	assert.NotEqual(t, ReminderMessage(r), ReminderMessage(other))
}
