// Package tsv reads the tab-separated customer and order lists. The first
// line of each file is a header and is skipped; columns are positional.
package tsv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/nimasrn/order-import/internal/model"
	pkgerrors "github.com/pkg/errors"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrEmptyName     = errors.New("empty name")
	ErrNameTooLong   = fmt.Errorf("name longer than %d characters", model.MaxCustomerNameLength)
)

const maxLineSize = 1024 * 1024

// ParseError points at the line and column of a file that could not be read.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("line %d, column %s: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("line %d, column %s: %v %q", e.Line, e.Column, e.Err, e.Value)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	customerColumns = []string{"name", "credit_limit"}
	orderColumns    = []string{"customer_name", "order_date", "order_value"}
)

func ReadCustomers(r io.Reader) ([]model.CustomerRow, error) {
	var rows []model.CustomerRow
	err := readRecords(r, customerColumns, func(line int, fields []string) error {
		name, err := parseName(line, customerColumns[0], fields[0])
		if err != nil {
			return err
		}
		limit, err := ParseMoney(fields[1])
		if err != nil {
			return &ParseError{Line: line, Column: customerColumns[1], Value: fields[1], Err: err}
		}
		rows = append(rows, model.CustomerRow{Line: line, Name: name, CreditLimit: limit})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func ReadOrders(r io.Reader) ([]model.OrderRow, error) {
	var rows []model.OrderRow
	err := readRecords(r, orderColumns, func(line int, fields []string) error {
		name, err := parseName(line, orderColumns[0], fields[0])
		if err != nil {
			return err
		}
		date, err := ParseDate(fields[1])
		if err != nil {
			return &ParseError{Line: line, Column: orderColumns[1], Value: fields[1], Err: err}
		}
		value, err := ParseMoney(fields[2])
		if err != nil {
			return &ParseError{Line: line, Column: orderColumns[2], Value: fields[2], Err: err}
		}
		rows = append(rows, model.OrderRow{Line: line, CustomerName: name, OrderDate: date, OrderValue: value})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func ReadCustomersFile(path string) ([]model.CustomerRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open customers file")
	}
	defer f.Close()

	rows, err := ReadCustomers(f)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "read customers file %s", path)
	}
	return rows, nil
}

func ReadOrdersFile(path string) ([]model.OrderRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open orders file")
	}
	defer f.Close()

	rows, err := ReadOrders(f)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "read orders file %s", path)
	}
	return rows, nil
}

func parseName(line int, column, value string) (string, error) {
	name := strings.TrimSpace(value)
	if name == "" {
		return "", &ParseError{Line: line, Column: column, Err: ErrEmptyName}
	}
	if utf8.RuneCountInString(name) > model.MaxCustomerNameLength {
		return "", &ParseError{Line: line, Column: column, Value: name, Err: ErrNameTooLong}
	}
	return name, nil
}

// readRecords calls fn for every data line that is not blank. fields always
// holds at least len(columns) entries.
func readRecords(r io.Reader, columns []string, fn func(line int, fields []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for sc.Scan() {
		line++
		if line == 1 {
			continue
		}

		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) < len(columns) {
			return &ParseError{Line: line, Column: columns[len(fields)], Err: ErrMissingColumn}
		}
		if err := fn(line, fields); err != nil {
			return err
		}
	}
	return sc.Err()
}
