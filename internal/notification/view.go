package notification

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/sprinkle-fairydust/site-api/internal/domain"
)

// Extra carries per-send context that is not part of the quote
type Extra struct {
	ConfirmURL     string
	OpenURL        string
	SuggestTimeURL string
	Testimonial    *domain.Testimonial
}

// SuggestionView is the client's proposed alternative time
type SuggestionView struct {
	Date      string
	StartTime string
	EndTime   string
	Notes     string
}

// TestimonialView is a submitted testimonial for staff review
type TestimonialView struct {
	Name string
	Body string
	URLs []string
}

// View is the template data for every notification kind
type View struct {
	BusinessName string
	LogoURL      string
	ContactEmail string
	AdminURL     string
	Staff        bool

	QuoteID      uint
	Name         string
	Greeting     string
	Email        string
	Phone        string
	EventType    string
	RawEventType string
	EventDate    string
	RawEventDate string
	StartTime    string
	EndTime      string
	RawStartTime string
	RawEndTime   string
	Duration     string
	Address      string
	HasAddress   bool
	PackageName  string
	GuestCount   string
	TravelArea   string
	VenueType    string
	HeardAbout   string
	Notes        string
	Services     []string
	AddOns       []AddOn
	AddOnTotal   string

	PaymentType string
	Base        string
	Setup       string
	Travel      string
	Subtotal    string
	GST         string
	ShowGST     bool
	Total       string

	ConfirmURL     string
	OpenURL        string
	SuggestTimeURL string
	CalculatorURL  string

	DeclineReason string
	Suggestion    *SuggestionView
	Testimonial   TestimonialView
}

// NewView builds display strings from a quote snapshot. quote may be nil
// for notifications that are not about a quote.
func NewView(appURL, contactEmail string, quote *domain.Quote, extra Extra) *View {
	base := strings.TrimRight(appURL, "/")
	v := &View{
		BusinessName:   "Sprinkle Fairydust Face Painting",
		LogoURL:        base + "/images/logo.png",
		ContactEmail:   contactEmail,
		AdminURL:       base + "/admin",
		ConfirmURL:     extra.ConfirmURL,
		OpenURL:        extra.OpenURL,
		SuggestTimeURL: extra.SuggestTimeURL,
	}

	if t := extra.Testimonial; t != nil {
		v.Testimonial = TestimonialView{Name: t.Name, Body: t.Testimonial, URLs: t.URLs}
	}

	if quote == nil {
		return v
	}

	v.QuoteID = quote.ID
	v.Name = quote.Name
	v.Greeting = quote.Name
	if strings.TrimSpace(v.Greeting) == "" {
		v.Greeting = "there"
	}
	v.Email = quote.Email
	v.Phone = orDefault(quote.Phone, "")
	v.RawEventType = orDefault(quote.EventType, "")
	v.EventType = orDefault(quote.EventType, "Event")
	v.RawEventDate = quote.EventDateString()
	v.EventDate = FormatDate(v.RawEventDate, "Date to be confirmed")
	v.StartTime = FormatTime(quote.StartTime)
	v.EndTime = FormatTime(quote.EndTime)
	v.RawStartTime = orDefault(quote.StartTime, "")
	v.RawEndTime = orDefault(quote.EndTime, "")
	v.Duration = FormatHours(quote.TotalHours)
	v.Address = orDefault(quote.Address, ToBeConfirmed)
	v.HasAddress = quote.Address != nil && strings.TrimSpace(*quote.Address) != ""
	v.PackageName = orDefault(quote.PackageName, "")
	if quote.GuestCount != nil {
		v.GuestCount = strconv.Itoa(*quote.GuestCount)
	}
	v.TravelArea = orDefault(quote.TravelArea, "")
	if quote.VenueType != nil {
		v.VenueType = VenueTypeLabel(quote.VenueType)
	}
	v.HeardAbout = orDefault(quote.HeardAbout, "")
	v.Notes = orDefault(quote.Notes, "")

	v.Services, v.AddOns = SplitServices(quote.ServicesRequested)
	if len(v.AddOns) > 0 {
		var total float64
		for _, a := range v.AddOns {
			total += a.Amount
		}
		v.AddOnTotal = FormatCurrency(&total)
	}

	v.PaymentType = PaymentTypeLabel(quote.CalcPaymentType)
	v.Base = FormatCurrency(quote.CalcBaseAmount)
	v.Setup = FormatCurrency(quote.CalcSetupAmount)
	v.Travel = FormatCurrency(quote.CalcTravelAmount)
	v.Subtotal = FormatCurrency(quote.CalcSubtotal)
	v.ShowGST = quote.ShowGST()
	if v.ShowGST {
		v.GST = FormatCurrency(quote.CalcGSTAmount)
	}
	v.Total = FormatCurrency(quote.CalcTotalAmount)

	v.CalculatorURL = CalculatorURL(base, quote)
	v.DeclineReason = orDefault(quote.ArtistDeclineReason, "")

	if quote.HasSuggestion() {
		v.Suggestion = &SuggestionView{
			Date:      FormatDate(quote.SuggestedDateString(), ToBeConfirmed),
			StartTime: FormatTime(quote.ClientSuggestedStartTime),
			EndTime:   FormatTime(quote.ClientSuggestedEndTime),
			Notes:     orDefault(quote.ClientSuggestedTimeNotes, ""),
		}
	}

	return v
}

// CalculatorURL links staff to the admin pricing tool pre-filled from the
// quote
func CalculatorURL(baseURL string, quote *domain.Quote) string {
	hours := ""
	if quote.TotalHours != nil {
		hours = strconv.FormatFloat(*quote.TotalHours, 'f', -1, 64)
	}
	params := []struct{ key, value string }{
		{"name", quote.Name},
		{"email", quote.Email},
		{"date", quote.EventDateString()},
		{"start", orDefault(quote.StartTime, "")},
		{"end", orDefault(quote.EndTime, "")},
		{"hours", hours},
		{"type", orDefault(quote.EventType, "")},
		{"quote_id", strconv.FormatUint(uint64(quote.ID), 10)},
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(baseURL, "/"))
	b.WriteString("/admin/calculator")
	for i, p := range params {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}
