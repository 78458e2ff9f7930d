package tsv

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDecimal  = errors.New("invalid decimal")
	ErrValueOutOfRange = errors.New("value does not fit decimal(8,2)")
	ErrInvalidDate     = errors.New("invalid date")
)

// numericRegex matches what is left of a number once currency symbols and
// thousands separators are gone.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// groupedRegex is the only shape a number with thousands separators may take.
// A comma anywhere else is a decimal comma or a typo and is rejected.
var groupedRegex = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d*)?$`)

// maxMoney is the first value that no longer fits decimal(8,2).
var maxMoney = decimal.New(1, 6)

// TwoDigitYearPivot decides the century of 2-digit years: a year that would
// land more than this many years in the future belongs to the previous
// century.
var TwoDigitYearPivot = 20

var now = time.Now

var (
	dateTimeLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
		"1/2/2006 3:04:05 PM",
		"1/2/2006 3:04 PM",
		"1.2.2006 15:04:05",
		"1.2.2006 15:04",
	}
	fourDigitYearLayouts = []string{
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
)

// ParseMoney parses a fixed-point amount with two decimals. Currency
// symbols, thousands separators and the accounting form "(12.50)" are
// accepted; the result is rounded to cents.
func ParseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidDecimal
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.NewReplacer("$", "", "€", "", "£", "", " ", "").Replace(s)
	if strings.Contains(s, ",") {
		if !groupedRegex.MatchString(s) {
			return decimal.Zero, ErrInvalidDecimal
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	if !numericRegex.MatchString(s) {
		return decimal.Zero, ErrInvalidDecimal
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidDecimal
	}
	if negative {
		d = d.Neg()
	}

	d = d.Round(2)
	if d.Abs().GreaterThanOrEqual(maxMoney) {
		return decimal.Zero, ErrValueOutOfRange
	}
	return d, nil
}

// ParseDate parses the date formats found in exported order lists. Values
// without a zone are read as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	pivotYear := now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		// time.Parse maps 69-99 to 19xx and 00-68 to 20xx; normalise to 20xx first
		if t.Year() < 2000 {
			t = t.AddDate(100, 0, 0)
		}
		if t.Year() > pivotYear {
			t = t.AddDate(-100, 0, 0)
		}
		return t, nil
	}

	return time.Time{}, ErrInvalidDate
}
