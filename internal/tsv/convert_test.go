package tsv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1000", "1000"},
		{"  250.5 ", "250.5"},
		{"$1,234.56", "1234.56"},
		{"1,000", "1000"},
		{"-12,345.6", "-12345.6"},
		{"(1,000.00)", "-1000"},
		{"€99.99", "99.99"},
		{"(12.50)", "-12.5"},
		{"-3", "-3"},
		{".75", "0.75"},
		{"10.005", "10.01"},
		{"999999.99", "999999.99"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMoney(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseMoney_Errors(t *testing.T) {
	tests := []struct {
		in      string
		wantErr error
	}{
		{"", ErrInvalidDecimal},
		{"abc", ErrInvalidDecimal},
		{"12.3.4", ErrInvalidDecimal},
		{"1e5", ErrInvalidDecimal},
		{"12,50", ErrInvalidDecimal},
		{"1,5", ErrInvalidDecimal},
		{"1,2,3", ErrInvalidDecimal},
		{"1234,567.00", ErrInvalidDecimal},
		{",500", ErrInvalidDecimal},
		{"1,000.5,0", ErrInvalidDecimal},
		{"1000000", ErrValueOutOfRange},
		{"-1000000.00", ErrValueOutOfRange},
		{"999999.999", ErrValueOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseMoney(tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseDate(t *testing.T) {
	now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-03-15T10:30:00", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-03-15 10:30:00", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"3/15/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"03/15/2024 2:05 PM", time.Date(2024, 3, 15, 14, 5, 0, 0, time.UTC)},
		{"3.15.2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2024/03/15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"Mar 15, 2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"20240315", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"3/15/24", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"3/15/46", time.Date(1946, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"3/15/99", time.Date(1999, 3, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParseDate_Errors(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2024-13-45", "15/03/2024"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDate(in)
			assert.ErrorIs(t, err, ErrInvalidDate)
		})
	}
}
