// Package storage persists custom category rules and credit cards in SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/cardscan/internal/common"
	"github.com/Veraticus/cardscan/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidCard  = errors.New("invalid credit card")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRule checks a custom rule before it is stored. Patterns are matched
// case-insensitively, so they are compiled that way here too.
func validateRule(rule *model.CategoryRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if strings.TrimSpace(rule.Pattern) == "" {
		return fmt.Errorf("%w: missing pattern", common.ErrInvalidRule)
	}
	if strings.TrimSpace(rule.Category) == "" {
		return fmt.Errorf("%w: missing category", common.ErrInvalidRule)
	}
	if _, err := regexp.Compile("(?i)" + rule.Pattern); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidRule, err)
	}
	if rule.Confidence < 0 || rule.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be between 0 and 1", common.ErrInvalidRule)
	}
	return nil
}

// validateCard validates a credit card record.
func validateCard(card *model.CreditCard) error {
	if card == nil {
		return fmt.Errorf("%w: card", ErrNilParameter)
	}
	if strings.TrimSpace(card.Issuer) == "" {
		return fmt.Errorf("%w: missing issuer", ErrInvalidCard)
	}
	if len(card.LastFour) != 4 {
		return fmt.Errorf("%w: last four must be 4 digits", ErrInvalidCard)
	}
	for _, c := range card.LastFour {
		if c < '0' || c > '9' {
			return fmt.Errorf("%w: last four must be 4 digits", ErrInvalidCard)
		}
	}
	if card.CreditLimit < 0 || card.CurrentBalance < 0 || card.MinimumPayment < 0 {
		return fmt.Errorf("%w: amounts cannot be negative", ErrInvalidCard)
	}
	if card.APR < 0 || card.APR > 1 {
		return fmt.Errorf("%w: APR must be a fraction between 0 and 1", ErrInvalidCard)
	}
	switch card.RewardType {
	case model.RewardCashback, model.RewardPoints, model.RewardMiles:
	default:
		return fmt.Errorf("%w: reward type %q", ErrInvalidCard, card.RewardType)
	}
	return nil
}
