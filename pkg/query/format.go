package query

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/mwantia/screener/pkg/record"
	"github.com/shopspring/decimal"
)

var (
	crore = decimal.NewFromInt(10_000_000)
	lakh  = decimal.NewFromInt(100_000)
	kilo  = decimal.NewFromInt(1_000)
)

func rupee() string {
	if currency := money.GetCurrency("INR"); currency != nil {
		return currency.Grapheme
	}
	return "₹"
}

// FormatCell renders a cell for display. Numbers in percentage columns get
// a "%" suffix, large amounts are abbreviated to crore, lakh or thousand
// rupees and the serial column is left untouched.
func FormatCell(column string, cell record.Cell) string {
	value, ok := cell.Number()
	if !ok || column == record.SerialColumn {
		return cell.String()
	}
	if strings.Contains(column, "%") {
		return cell.String() + "%"
	}
	return FormatAmount(value)
}

// FormatAmount abbreviates amounts of a thousand and more with two
// decimals and groups smaller values the Indian way.
func FormatAmount(value float64) string {
	d := decimal.NewFromFloat(value)
	switch {
	case d.GreaterThanOrEqual(crore):
		return rupee() + d.Div(crore).StringFixed(2) + "Cr"
	case d.GreaterThanOrEqual(lakh):
		return rupee() + d.Div(lakh).StringFixed(2) + "L"
	case d.GreaterThanOrEqual(kilo):
		return rupee() + d.Div(kilo).StringFixed(2) + "K"
	}
	return groupIndian(d.Round(3).String())
}

// groupIndian inserts separators after the last three integer digits and
// then after every two: 1234567 becomes 12,34,567.
func groupIndian(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	integer, fraction, hasFraction := strings.Cut(s, ".")

	if len(integer) > 3 {
		head, tail := integer[:len(integer)-3], integer[len(integer)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		integer = strings.Join(append(groups, tail), ",")
	}

	if hasFraction {
		return sign + integer + "." + fraction
	}
	return sign + integer
}
