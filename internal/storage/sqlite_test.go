package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/cardscan/internal/common"
	"github.com/Veraticus/cardscan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestStorage opens a migrated database in a temp directory.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestNewSQLiteStorageRejectsEmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	var version int
	require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)

	for _, table := range []string{"category_rules", "credit_cards"} {
		var count int
		err := store.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, table)
	}
}

func TestRules(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	first := &model.CategoryRule{Pattern: `blue\s+bottle`, Category: "Food & Dining", Subcategory: "Coffee Shops", Confidence: 0.9}
	second := &model.CategoryRule{Pattern: "peloton", Category: "Health & Fitness", Confidence: 0.8}

	require.NoError(t, store.SaveRule(ctx, first))
	require.NoError(t, store.SaveRule(ctx, second))
	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	rules, err := store.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, `blue\s+bottle`, rules[0].Pattern)
	assert.Equal(t, "Coffee Shops", rules[0].Subcategory)
	assert.InDelta(t, 0.9, rules[0].Confidence, 1e-9)
	assert.Equal(t, "peloton", rules[1].Pattern)

	require.NoError(t, store.DeleteRule(ctx, first.ID))
	rules, err = store.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	assert.ErrorIs(t, store.DeleteRule(ctx, first.ID), common.ErrNotFound)
}

func TestSaveRuleValidation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		rule *model.CategoryRule
		name string
	}{
		{name: "nil rule", rule: nil},
		{name: "missing pattern", rule: &model.CategoryRule{Category: "Shopping"}},
		{name: "missing category", rule: &model.CategoryRule{Pattern: "etsy"}},
		{name: "bad regex", rule: &model.CategoryRule{Pattern: "etsy(", Category: "Shopping"}},
		{name: "confidence out of range", rule: &model.CategoryRule{Pattern: "etsy", Category: "Shopping", Confidence: 1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, store.SaveRule(ctx, tt.rule))
		})
	}

	err := store.SaveRule(ctx, &model.CategoryRule{Pattern: "etsy(", Category: "Shopping"})
	assert.ErrorIs(t, err, common.ErrInvalidRule)

	rules, err := store.ListRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestCards(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	due := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)

	card := &model.CreditCard{
		Issuer:         "chase",
		LastFour:       "4242",
		CreditLimit:    5000,
		CurrentBalance: 1250.50,
		MinimumPayment: 35,
		APR:            0.2299,
		DueDate:        &due,
	}
	require.NoError(t, store.SaveCard(ctx, card))
	assert.NotZero(t, card.ID)
	assert.Equal(t, model.RewardCashback, card.RewardType, "reward type defaults to cashback")

	got, err := store.GetCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, "chase", got.Issuer)
	assert.Equal(t, "4242", got.LastFour)
	assert.InDelta(t, 1250.50, got.CurrentBalance, 1e-9)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))

	got.CurrentBalance = 900
	got.DueDate = nil
	require.NoError(t, store.SaveCard(ctx, got))

	found, err := store.FindCard(ctx, "", "4242")
	require.NoError(t, err)
	assert.InDelta(t, 900, found.CurrentBalance, 1e-9)
	assert.Nil(t, found.DueDate)

	_, err = store.FindCard(ctx, "discover", "4242")
	assert.ErrorIs(t, err, common.ErrNotFound)

	dup := &model.CreditCard{Issuer: "chase", LastFour: "4242"}
	assert.ErrorIs(t, store.SaveCard(ctx, dup), common.ErrDuplicateEntry)

	other := &model.CreditCard{Issuer: "amex", LastFour: "1005", RewardType: model.RewardPoints}
	require.NoError(t, store.SaveCard(ctx, other))

	cards, err := store.ListCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "chase", cards[0].Issuer)
	assert.Equal(t, model.RewardPoints, cards[1].RewardType)

	require.NoError(t, store.DeleteCard(ctx, card.ID))
	_, err = store.GetCard(ctx, card.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, store.DeleteCard(ctx, card.ID), common.ErrNotFound)
}

func TestSaveCardValidation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		card *model.CreditCard
		name string
	}{
		{name: "nil", card: nil},
		{name: "no issuer", card: &model.CreditCard{LastFour: "1234"}},
		{name: "short ending", card: &model.CreditCard{Issuer: "citi", LastFour: "123"}},
		{name: "non-digit ending", card: &model.CreditCard{Issuer: "citi", LastFour: "12a4"}},
		{name: "negative balance", card: &model.CreditCard{Issuer: "citi", LastFour: "1234", CurrentBalance: -1}},
		{name: "apr as percent", card: &model.CreditCard{Issuer: "citi", LastFour: "1234", APR: 19.99}},
		{name: "unknown reward", card: &model.CreditCard{Issuer: "citi", LastFour: "1234", RewardType: "gems"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, store.SaveCard(ctx, tt.card))
		})
	}

	assert.ErrorIs(t, store.SaveCard(ctx, &model.CreditCard{ID: 99, Issuer: "citi", LastFour: "1234"}), common.ErrNotFound)
}
