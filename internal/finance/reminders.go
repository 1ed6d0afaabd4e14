package finance

import (
	"fmt"
	"sort"
	"time"

	"github.com/Veraticus/cardscan/internal/model"
)

// UrgencyFor classifies the number of days left before a due date.
func UrgencyFor(daysUntilDue int) model.Urgency {
	switch {
	case daysUntilDue <= 1:
		return model.UrgencyCritical
	case daysUntilDue <= 3:
		return model.UrgencyHigh
	case daysUntilDue <= 7:
		return model.UrgencyMedium
	default:
		return model.UrgencyLow
	}
}

// LateFee estimates the fee for a missed payment. It depends only on whether
// the payment is overdue and on the size of the minimum payment.
func LateFee(daysOverdue int, minimumPayment float64) float64 {
	switch {
	case daysOverdue <= 0:
		return 0
	case minimumPayment < 100:
		return 29
	case minimumPayment > 500:
		return 49
	default:
		return 39
	}
}

// daysBetween counts calendar days from a to b, ignoring the time of day.
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func reminderFor(card model.CreditCard) model.Reminder {
	return model.Reminder{
		DueDate:        *card.DueDate,
		Issuer:         card.Issuer,
		LastFour:       card.LastFour,
		MinimumPayment: card.MinimumPayment,
		CurrentBalance: card.CurrentBalance,
		CardID:         card.ID,
	}
}

// UpcomingDueDates lists cards due between today and daysAhead days from now,
// soonest first.
func UpcomingDueDates(cards []model.CreditCard, today time.Time, daysAhead int) []model.Reminder {
	var out []model.Reminder
	for _, card := range cards {
		if card.DueDate == nil {
			continue
		}
		days := daysBetween(today, *card.DueDate)
		if days < 0 || days > daysAhead {
			continue
		}
		r := reminderFor(card)
		r.DaysUntilDue = days
		r.Urgency = UrgencyFor(days)
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysUntilDue < out[j].DaysUntilDue
	})
	return out
}

// OverduePayments lists cards whose due date has passed, most overdue first.
func OverduePayments(cards []model.CreditCard, today time.Time) []model.Reminder {
	var out []model.Reminder
	for _, card := range cards {
		if card.DueDate == nil {
			continue
		}
		days := daysBetween(*card.DueDate, today)
		if days <= 0 {
			continue
		}
		r := reminderFor(card)
		r.DaysOverdue = days
		r.DaysUntilDue = -days
		r.LateFee = LateFee(days, card.MinimumPayment)
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysOverdue > out[j].DaysOverdue
	})
	return out
}

// ReminderMessage renders a one-line reminder for an upcoming payment.
func ReminderMessage(r model.Reminder) string {
	due := r.DueDate.Format("2006-01-02")
	card := "credit card"
	if r.Issuer != "" {
		card = r.Issuer + " " + card
	}
	if r.LastFour != "" {
		card += " ending " + r.LastFour
	}
	switch {
	case r.DaysUntilDue == 0:
		return fmt.Sprintf("URGENT: Your %s payment of $%.2f is due TODAY (%s)", card, r.MinimumPayment, due)
	case r.DaysUntilDue == 1:
		return fmt.Sprintf("REMINDER: Your %s payment of $%.2f is due TOMORROW (%s)", card, r.MinimumPayment, due)
	case r.DaysUntilDue <= 3:
		return fmt.Sprintf("REMINDER: Your %s payment of $%.2f is due in %d days (%s)", card, r.MinimumPayment, r.DaysUntilDue, due)
	default:
		return fmt.Sprintf("Upcoming: Your %s payment of $%.2f is due in %d days (%s)", card, r.MinimumPayment, r.DaysUntilDue, due)
	}
}
