package domain

import (
	"time"

	"gorm.io/datatypes"
)

// VenueType describes where the event takes place
type VenueType string

const (
	VenueTypeIndoor  VenueType = "indoor"
	VenueTypeOutdoor VenueType = "outdoor"
	VenueTypeMixed   VenueType = "mixed"
	VenueTypeUnsure  VenueType = "unsure"
)

// PaymentType describes how the priced quote is paid
type PaymentType string

const (
	PaymentTypeHourly  PaymentType = "hourly"
	PaymentTypePerFace PaymentType = "perface"
	PaymentTypePackage PaymentType = "package"
)

// EmailSendStatus is the outcome of the last priced-quote email attempt
type EmailSendStatus string

const (
	EmailSendStatusSent   EmailSendStatus = "sent"
	EmailSendStatusFailed EmailSendStatus = "failed"
)

// Quote is a booking request progressing through the quote lifecycle.
// State is the single source of truth for where the quote is; the
// timestamp fields record when each outcome happened.
type Quote struct {
	ID          uint       `gorm:"primaryKey"`
	Name        string     `gorm:"type:varchar(255);not null"`
	Email       string     `gorm:"type:varchar(255);not null"`
	Phone       *string    `gorm:"type:varchar(48)"`
	AnonymousID *string    `gorm:"type:varchar(80);column:anonymous_id;index"`
	State       QuoteState `gorm:"type:varchar(32);not null;default:'submitted';index"`

	// Intake
	EventType         *string                     `gorm:"type:varchar(255);column:event_type"`
	EventDate         *datatypes.Date             `gorm:"column:event_date"`
	Address           *string                     `gorm:"type:varchar(255)"`
	StartTime         *string                     `gorm:"type:varchar(5);column:start_time"`
	EndTime           *string                     `gorm:"type:varchar(5);column:end_time"`
	TotalHours        *float64                    `gorm:"type:decimal(5,2);column:total_hours"`
	GuestCount        *int                        `gorm:"column:guest_count"`
	PackageName       *string                     `gorm:"type:varchar(255);column:package_name"`
	ServicesRequested datatypes.JSONSlice[string] `gorm:"column:services_requested"`
	TravelArea        *string                     `gorm:"type:varchar(255);column:travel_area"`
	VenueType         *VenueType                  `gorm:"type:varchar(32);column:venue_type"`
	HeardAbout        *string                     `gorm:"type:varchar(120);column:heard_about"`
	Notes             *string                     `gorm:"type:text"`
	TermsAccepted     bool                        `gorm:"not null;default:false;column:terms_accepted"`
	TermsAcceptedAt   *time.Time                  `gorm:"column:terms_accepted_at"`

	// Pricing snapshot set by staff
	CalcPaymentType  *PaymentType `gorm:"type:varchar(32);column:calc_payment_type"`
	CalcBaseAmount   *float64     `gorm:"type:decimal(10,2);column:calc_base_amount"`
	CalcSetupAmount  *float64     `gorm:"type:decimal(10,2);column:calc_setup_amount"`
	CalcTravelAmount *float64     `gorm:"type:decimal(10,2);column:calc_travel_amount"`
	CalcSubtotal     *float64     `gorm:"type:decimal(10,2);column:calc_subtotal"`
	CalcGSTAmount    *float64     `gorm:"type:decimal(10,2);column:calc_gst_amount"`
	CalcTotalAmount  *float64     `gorm:"type:decimal(10,2);column:calc_total_amount"`

	// Email delivery metadata
	EmailSendStatus      *EmailSendStatus `gorm:"type:varchar(16);column:email_send_status"`
	EmailSendAttemptedAt *time.Time       `gorm:"column:email_send_attempted_at"`
	EmailSendResponse    datatypes.JSON   `gorm:"column:email_send_response"`

	// Lifecycle
	ClientConfirmedAt        *time.Time      `gorm:"column:client_confirmed_at"`
	ArtistDeclinedAt         *time.Time      `gorm:"column:artist_declined_at"`
	ArtistDeclineReason      *string         `gorm:"type:text;column:artist_decline_reason"`
	ClientSuggestedTimeAt    *time.Time      `gorm:"column:client_suggested_time_at"`
	ClientSuggestedEventDate *datatypes.Date `gorm:"column:client_suggested_event_date"`
	ClientSuggestedStartTime *string         `gorm:"type:varchar(5);column:client_suggested_start_time"`
	ClientSuggestedEndTime   *string         `gorm:"type:varchar(5);column:client_suggested_end_time"`
	ClientSuggestedTimeNotes *string         `gorm:"type:text;column:client_suggested_time_notes"`

	// Engagement
	EmailOpenedAt     *time.Time `gorm:"column:email_opened_at"`
	EmailLastOpenedAt *time.Time `gorm:"column:email_last_opened_at"`
	EmailOpenCount    int        `gorm:"not null;default:0;column:email_open_count"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Quote) TableName() string {
	return "quotes"
}

// IsConfirmed reports whether the client has confirmed the quote
func (q *Quote) IsConfirmed() bool {
	return q.State == QuoteStateConfirmed || q.ClientConfirmedAt != nil
}

// IsPriced reports whether staff has set a total on the quote
func (q *Quote) IsPriced() bool {
	return q.CalcTotalAmount != nil
}

// ShowGST reports whether the GST line applies. A null or zero amount
// means GST is not applicable and must not be displayed.
func (q *Quote) ShowGST() bool {
	return q.CalcGSTAmount != nil && *q.CalcGSTAmount > 0
}

// HasSuggestion reports whether the client has a pending time suggestion
func (q *Quote) HasSuggestion() bool {
	return q.ClientSuggestedTimeAt != nil
}

// EventDateString formats the event date as YYYY-MM-DD, or "" when unset
func (q *Quote) EventDateString() string {
	return FormatDate(q.EventDate)
}

// SuggestedDateString formats the suggested event date as YYYY-MM-DD, or ""
func (q *Quote) SuggestedDateString() string {
	return FormatDate(q.ClientSuggestedEventDate)
}

// FormatDate formats a nullable date column as YYYY-MM-DD
func FormatDate(d *datatypes.Date) string {
	if d == nil {
		return ""
	}
	return time.Time(*d).Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string into a date column value
func ParseDate(s string) (*datatypes.Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, err
	}
	d := datatypes.Date(t)
	return &d, nil
}

// Layouts shared by intake validation and rendering
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// SuggestedTimeFields lists the columns cleared when a quote is declined
var SuggestedTimeFields = []string{
	"client_suggested_time_at",
	"client_suggested_event_date",
	"client_suggested_start_time",
	"client_suggested_end_time",
	"client_suggested_time_notes",
}
