// Package signal turns raw field strings into the typed signals scoring
// reads: amounts, dates and ages, address comparisons, and contact quality.
// Unparseable input is reported as absent, never as zero.
package signal

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var amountCleaner = strings.NewReplacer("$", "", ",", "", " ", "")

// ParseAmount parses a monetary or numeric string after stripping currency
// symbols, thousands separators, and spaces.
func ParseAmount(s string) (float64, bool) {
	cleaned := amountCleaner.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// dateLayouts are tried in order; the first that parses wins, so an
// ambiguous 03/04/2020 reads month first.
var dateLayouts = []string{
	"2006-1-2",
	"1/2/2006",
	"1-2-2006",
	"2006/1/2",
	"2/1/2006",
	"1/2/06",
	"20060102",
}

// ParseDate parses a recording or assessment date in any of the accepted layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AgeYears is the whole days between t and now divided by 365.25.
func AgeYears(t, now time.Time) float64 {
	days := math.Floor(now.Sub(t).Hours() / 24)
	return days / 365.25
}

// Equity estimates equity as total minus improvement value. It is absent
// when the total is missing or the difference is not positive.
func Equity(total, improvement string) (float64, bool) {
	t, ok := ParseAmount(total)
	if !ok {
		return 0, false
	}
	imp, _ := ParseAmount(improvement)
	if e := t - imp; e > 0 {
		return e, true
	}
	return 0, false
}

// LoanTermMonths converts a loan term ("30 years", "360", "360 months", "15 yr")
// to months. A bare number up to 50 is read as years. Unparseable input
// yields "".
func LoanTermMonths(s string) string {
	upper := strings.ToUpper(strings.TrimSpace(s))
	if upper == "" {
		return ""
	}

	end := 0
	for end < len(upper) && (upper[end] >= '0' && upper[end] <= '9' || upper[end] == '.') {
		end++
	}
	n, err := strconv.ParseFloat(upper[:end], 64)
	if err != nil || n <= 0 {
		return ""
	}

	unit := strings.TrimSpace(upper[end:])
	var months float64
	switch {
	case strings.HasPrefix(unit, "Y"):
		months = n * 12
	case strings.HasPrefix(unit, "M"):
		months = n
	case unit == "" && n <= 50:
		months = n * 12
	case unit == "":
		months = n
	default:
		return ""
	}
	return strconv.Itoa(int(math.Round(months)))
}

// FormatRate renders an interest rate with two decimals, or "" when it is
// missing or zero.
func FormatRate(s string) string {
	v, ok := ParseAmount(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if !ok || v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// ValueBand buckets a property value for outreach segmentation.
func ValueBand(total string) string {
	v, ok := ParseAmount(total)
	switch {
	case !ok:
		return "unknown"
	case v < 100000:
		return "<100k"
	case v < 200000:
		return "100k-200k"
	case v < 300000:
		return "200k-300k"
	case v < 400000:
		return "300k-400k"
	case v < 500000:
		return "400k-500k"
	default:
		return "500k+"
	}
}
