package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/cardscan/internal/common"
	"github.com/Veraticus/cardscan/internal/model"
)

const cardColumns = `id, issuer, last_four, credit_limit, current_balance,
	minimum_payment, apr, due_date, reward_type, created_at`

// SaveCard inserts a card, or updates it when card.ID is set. A second card
// with the same issuer and ending is rejected with common.ErrDuplicateEntry.
func (s *SQLiteStorage) SaveCard(ctx context.Context, card *model.CreditCard) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if card != nil && card.RewardType == "" {
		card.RewardType = model.RewardCashback
	}
	if err := validateCard(card); err != nil {
		return err
	}

	var due sql.NullTime
	if card.DueDate != nil {
		due = sql.NullTime{Time: *card.DueDate, Valid: true}
	}

	if card.ID != 0 {
		result, err := s.db.ExecContext(ctx, `
			UPDATE credit_cards SET
				issuer = ?, last_four = ?, credit_limit = ?, current_balance = ?,
				minimum_payment = ?, apr = ?, due_date = ?, reward_type = ?
			WHERE id = ?`,
			card.Issuer, card.LastFour, card.CreditLimit, card.CurrentBalance,
			card.MinimumPayment, card.APR, due, string(card.RewardType), card.ID)
		if err != nil {
			return wrapCardErr("update", err)
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("credit card %d: %w", card.ID, common.ErrNotFound)
		}
		return nil
	}

	created := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO credit_cards (
			issuer, last_four, credit_limit, current_balance,
			minimum_payment, apr, due_date, reward_type, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.Issuer, card.LastFour, card.CreditLimit, card.CurrentBalance,
		card.MinimumPayment, card.APR, due, string(card.RewardType), created)
	if err != nil {
		return wrapCardErr("save", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get credit card ID: %w", err)
	}
	card.ID = int(id)
	card.CreatedAt = created
	return nil
}

func wrapCardErr(op string, err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("failed to %s credit card: %w", op, common.ErrDuplicateEntry)
	}
	return fmt.Errorf("failed to %s credit card: %w", op, err)
}

// GetCard loads one card by ID.
func (s *SQLiteStorage) GetCard(ctx context.Context, id int) (*model.CreditCard, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM credit_cards WHERE id = ?`, id)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("credit card %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return card, nil
}

// FindCard looks a card up by its ending, optionally narrowed by issuer.
func (s *SQLiteStorage) FindCard(ctx context.Context, issuer, lastFour string) (*model.CreditCard, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(lastFour, "lastFour"); err != nil {
		return nil, err
	}

	query := `SELECT ` + cardColumns + ` FROM credit_cards WHERE last_four = ?`
	args := []any{lastFour}
	if issuer != "" {
		query += ` AND issuer = ?`
		args = append(args, issuer)
	}
	query += ` ORDER BY id LIMIT 1`

	card, err := scanCard(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("credit card ending %s: %w", lastFour, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return card, nil
}

// ListCards returns all cards ordered by ID.
func (s *SQLiteStorage) ListCards(ctx context.Context) ([]model.CreditCard, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM credit_cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query credit cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []model.CreditCard
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate credit cards: %w", err)
	}
	return cards, nil
}

// DeleteCard removes a card.
func (s *SQLiteStorage) DeleteCard(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM credit_cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete credit card: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("credit card %d: %w", id, common.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*model.CreditCard, error) {
	var card model.CreditCard
	var due, created sql.NullTime
	var reward string

	err := row.Scan(&card.ID, &card.Issuer, &card.LastFour, &card.CreditLimit,
		&card.CurrentBalance, &card.MinimumPayment, &card.APR, &due, &reward, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan credit card: %w", err)
	}

	card.RewardType = model.RewardType(reward)
	if due.Valid {
		d := due.Time
		card.DueDate = &d
	}
	if created.Valid {
		card.CreatedAt = created.Time
	}
	return &card, nil
}
