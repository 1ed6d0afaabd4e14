package extract

import (
	"testing"
	"time"

	"github.com/Veraticus/cardscan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   float64
		wantOK bool
	}{
		{name: "thousands separator", raw: "1,234.56", want: 1234.56, wantOK: true},
		{name: "dollar sign", raw: "$1,234.56", want: 1234.56, wantOK: true},
		{name: "no separator", raw: "1234.56", want: 1234.56, wantOK: true},
		{name: "whole dollars", raw: "45", want: 45, wantOK: true},
		{name: "millions", raw: "$1,000,000.00", want: 1000000, wantOK: true},
		{name: "empty", raw: "", wantOK: false},
		{name: "not a number", raw: "abc", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		want   time.Time
		name   string
		raw    string
		wantOK bool
	}{
		{name: "month first slash", raw: "01/15/2024", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "two digit year", raw: "1/15/24", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "day first when month is impossible", raw: "13/01/2024", want: time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "iso", raw: "2024-01-15", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "short month name", raw: "Jan 15, 2024", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "long month name", raw: "January 15, 2024", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "four letter abbreviation", raw: "Sept 5, 2024", want: time.Date(2024, 9, 5, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "day month year", raw: "15 Jan 2024", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "compact", raw: "20240115", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "dotted", raw: "01.15.2024", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "weekday and month name", raw: "Mon, 15 Jan 2024", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "iso with time", raw: "2024-01-15 08:30:00", want: time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC), wantOK: true},
		{name: "period after month", raw: "Jan. 15, 2024", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "amount is not a date", raw: "85.20", wantOK: false},
		{name: "bare number is not a date", raw: "5521", wantOK: false},
		{name: "dollar amount is not a date", raw: "$12.00", wantOK: false},
		{name: "garbage", raw: "not a date", wantOK: false},
		{name: "empty", raw: "  ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestFieldExtractor(t *testing.T) {
	f := NewFieldExtractor()

	t.Run("first date pattern wins", func(t *testing.T) {
		c, ok := f.Date("posted 01/15/2024 on Jan 20, 2024", 3)
		require.True(t, ok)
		assert.Equal(t, "01/15/2024", c.Raw)
		assert.True(t, c.Parsed)
		assert.Equal(t, 3, c.Line)
		assert.Equal(t, model.FieldDate, c.Kind)
	})

	t.Run("amount keeps every digit", func(t *testing.T) {
		c, ok := f.Amount("TOTAL $1234.56", 0)
		require.True(t, ok)
		assert.Equal(t, 1234.56, c.Amount)
	})

	t.Run("credit suffix", func(t *testing.T) {
		c, ok := f.Amount("PAYMENT THANK YOU 250.00 CR", 0)
		require.True(t, ok)
		assert.Equal(t, 250.0, c.Amount)
	})

	t.Run("bare number is not an amount", func(t *testing.T) {
		_, ok := f.Amount("REF 12345", 0)
		assert.False(t, ok)
	})

	t.Run("longest merchant match", func(t *testing.T) {
		m, ok := f.Merchant("01/15/2024 STARBUCKS COFFEE $4.50")
		require.True(t, ok)
		assert.Equal(t, "STARBUCKS COFFEE", m)
	})

	t.Run("card ending", func(t *testing.T) {
		for _, text := range []string{
			"Card ending in 1234",
			"card ****1234",
			"Account XXXX 1234",
		} {
			got, ok := f.CardLastFour(text)
			require.True(t, ok, text)
			assert.Equal(t, "1234", got, text)
		}
	})
}
