package notification

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ToBeConfirmed is shown for any value not yet known
const ToBeConfirmed = "To be confirmed"

const (
	displayDateLayout = "Monday, 2 January 2006"
	displayTimeLayout = "3:04 PM"
)

var printer = message.NewPrinter(language.English)

// FormatCurrency renders an amount as dollars with grouped thousands
func FormatCurrency(amount *float64) string {
	if amount == nil {
		return ToBeConfirmed
	}
	return "$" + printer.Sprintf("%.2f", *amount)
}

// FormatTime renders a 24h HH:MM value as a 12h clock time
func FormatTime(value *string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return ToBeConfirmed
	}
	raw := strings.TrimSpace(*value)
	for _, layout := range []string{domain.ClockLayout, "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(displayTimeLayout)
		}
	}
	return raw
}

// FormatDate renders a YYYY-MM-DD date in long form, or fallback when empty
func FormatDate(value, fallback string) string {
	if value == "" {
		return fallback
	}
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return value
	}
	return t.Format(displayDateLayout)
}

// FormatHours renders a duration in hours with two decimals
func FormatHours(hours *float64) string {
	if hours == nil {
		return ToBeConfirmed
	}
	return strconv.FormatFloat(*hours, 'f', 2, 64) + " hours"
}

// PaymentTypeLabel returns the client-facing payment type name
func PaymentTypeLabel(paymentType *domain.PaymentType) string {
	if paymentType == nil {
		return ToBeConfirmed
	}
	switch *paymentType {
	case domain.PaymentTypeHourly:
		return "Organizer-Paid (Hourly)"
	case domain.PaymentTypePerFace:
		return "Pay Per Face"
	case domain.PaymentTypePackage:
		return "Package"
	}
	return ToBeConfirmed
}

// VenueTypeLabel returns the display name for a venue type
func VenueTypeLabel(venue *domain.VenueType) string {
	if venue == nil {
		return ToBeConfirmed
	}
	switch *venue {
	case domain.VenueTypeIndoor:
		return "Indoor"
	case domain.VenueTypeOutdoor:
		return "Outdoor"
	case domain.VenueTypeMixed:
		return "Indoor & Outdoor"
	case domain.VenueTypeUnsure:
		return "Not sure yet"
	}
	return ToBeConfirmed
}

// AddOn is an optional extra parsed out of the requested services
type AddOn struct {
	Name   string
	Amount float64
}

// Price returns the formatted add-on amount
func (a AddOn) Price() string {
	return FormatCurrency(&a.Amount)
}

var addOnPattern = regexp.MustCompile(`^Add-on:\s*(.+?)\s*\(\$\s*([0-9][0-9,]*(?:\.[0-9]+)?)\)\s*$`)

// SplitServices separates plain services from "Add-on: Name ($12.50)"
// entries, preserving order within each group
func SplitServices(services []string) ([]string, []AddOn) {
	var plain []string
	var addOns []AddOn
	for _, s := range services {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		m := addOnPattern.FindStringSubmatch(s)
		if m == nil {
			plain = append(plain, s)
			continue
		}
		amount, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64)
		if err != nil {
			plain = append(plain, s)
			continue
		}
		addOns = append(addOns, AddOn{Name: m[1], Amount: amount})
	}
	return plain, addOns
}

func orDefault(value *string, fallback string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return fallback
	}
	return *value
}
