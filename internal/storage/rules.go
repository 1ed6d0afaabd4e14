package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/cardscan/internal/common"
	"github.com/Veraticus/cardscan/internal/model"
)

// SaveRule stores a custom category rule and fills in its ID and creation time.
func (s *SQLiteStorage) SaveRule(ctx context.Context, rule *model.CategoryRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	created := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO category_rules (pattern, category, subcategory, confidence, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rule.Pattern, rule.Category, rule.Subcategory, rule.Confidence, created)
	if err != nil {
		return fmt.Errorf("failed to save category rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get category rule ID: %w", err)
	}

	rule.ID = int(id)
	rule.CreatedAt = created
	return nil
}

// ListRules returns every custom rule in insertion order, which is the order
// they must be replayed into the registry.
func (s *SQLiteStorage) ListRules(ctx context.Context) ([]model.CategoryRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pattern, category, subcategory, confidence, created_at
		FROM category_rules
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.CategoryRule
	for rows.Next() {
		var rule model.CategoryRule
		var created sql.NullTime
		if err := rows.Scan(&rule.ID, &rule.Pattern, &rule.Category, &rule.Subcategory, &rule.Confidence, &created); err != nil {
			return nil, fmt.Errorf("failed to scan category rule: %w", err)
		}
		if created.Valid {
			rule.CreatedAt = created.Time
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category rules: %w", err)
	}
	return rules, nil
}

// DeleteRule removes a custom rule.
func (s *SQLiteStorage) DeleteRule(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM category_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category rule: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("category rule %d: %w", id, common.ErrNotFound)
	}
	return nil
}
