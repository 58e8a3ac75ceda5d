package domain

import "time"

// ============================================================================
// Quote requests
// ============================================================================

// SubmitQuoteRequest is the public quote form payload
type SubmitQuoteRequest struct {
	Name              string   `json:"name" validate:"required,max=255"`
	Email             string   `json:"email" validate:"required,email,max=255"`
	AnonymousID       *string  `json:"anonymous_id" validate:"omitempty,max=80"`
	Event             *string  `json:"event" validate:"omitempty,max=255"`
	Date              *string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Address           *string  `json:"address" validate:"omitempty,max=255"`
	StartTime         *string  `json:"start_time" validate:"required_with=EndTime,omitempty,datetime=15:04"`
	EndTime           *string  `json:"end_time" validate:"required_with=StartTime,omitempty,datetime=15:04"`
	Phone             *string  `json:"phone" validate:"omitempty,max=48"`
	GuestCount        *int     `json:"guest_count" validate:"omitempty,gte=0,lte=10000"`
	PackageName       *string  `json:"package_name" validate:"omitempty,max=255"`
	ServicesRequested []string `json:"services_requested" validate:"omitempty,max=30,dive,max=255"`
	TravelArea        *string  `json:"travel_area" validate:"omitempty,max=255"`
	VenueType         *string  `json:"venue_type" validate:"omitempty,oneof=indoor outdoor mixed unsure"`
	HeardAbout        *string  `json:"heard_about" validate:"omitempty,max=120"`
	Notes             *string  `json:"notes" validate:"omitempty,max=5000"`
	Details           *string  `json:"details" validate:"omitempty,max=5000"`
	TermsAccepted     bool     `json:"terms_accepted"`
}

// QuotePricingRequest is the staff pricing snapshot
type QuotePricingRequest struct {
	CalcPaymentType  *string  `json:"calc_payment_type" validate:"omitempty,oneof=hourly perface package"`
	CalcBaseAmount   *float64 `json:"calc_base_amount" validate:"omitempty,gte=0"`
	CalcSetupAmount  *float64 `json:"calc_setup_amount" validate:"omitempty,gte=0"`
	CalcTravelAmount *float64 `json:"calc_travel_amount" validate:"omitempty,gte=0"`
	CalcSubtotal     *float64 `json:"calc_subtotal" validate:"omitempty,gte=0"`
	CalcGSTAmount    *float64 `json:"calc_gst_amount" validate:"omitempty,gte=0"`
	CalcTotalAmount  *float64 `json:"calc_total_amount" validate:"omitempty,gte=0"`
}

// HasAny reports whether any pricing field was supplied
func (p *QuotePricingRequest) HasAny() bool {
	return p.CalcPaymentType != nil || p.CalcBaseAmount != nil || p.CalcSetupAmount != nil ||
		p.CalcTravelAmount != nil || p.CalcSubtotal != nil || p.CalcGSTAmount != nil || p.CalcTotalAmount != nil
}

// AdminQuoteRequest creates or replaces a quote from the back office
type AdminQuoteRequest struct {
	Name              string   `json:"name" validate:"required,max=255"`
	Email             string   `json:"email" validate:"required,email,max=255"`
	AnonymousID       *string  `json:"anonymous_id" validate:"omitempty,max=80"`
	EventType         *string  `json:"event_type" validate:"omitempty,max=255"`
	EventDate         *string  `json:"event_date" validate:"omitempty,datetime=2006-01-02"`
	Address           *string  `json:"address" validate:"omitempty,max=255"`
	StartTime         *string  `json:"start_time" validate:"required_with=EndTime,omitempty,datetime=15:04"`
	EndTime           *string  `json:"end_time" validate:"required_with=StartTime,omitempty,datetime=15:04"`
	TotalHours        *float64 `json:"total_hours" validate:"omitempty,gte=0"`
	Phone             *string  `json:"phone" validate:"omitempty,max=48"`
	GuestCount        *int     `json:"guest_count" validate:"omitempty,gte=0,lte=10000"`
	PackageName       *string  `json:"package_name" validate:"omitempty,max=255"`
	ServicesRequested []string `json:"services_requested" validate:"omitempty,max=30,dive,max=255"`
	TravelArea        *string  `json:"travel_area" validate:"omitempty,max=255"`
	VenueType         *string  `json:"venue_type" validate:"omitempty,oneof=indoor outdoor mixed unsure"`
	HeardAbout        *string  `json:"heard_about" validate:"omitempty,max=120"`
	Notes             *string  `json:"notes" validate:"omitempty,max=5000"`
	QuotePricingRequest
}

// DeclineQuoteRequest is the staff decline payload
type DeclineQuoteRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=2000"`
}

// SuggestTimeRequest is the client's alternative date/time, posted as a form
type SuggestTimeRequest struct {
	EventDate string `form:"event_date" validate:"required,datetime=2006-01-02"`
	StartTime string `form:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `form:"end_time" validate:"required,datetime=15:04"`
	Notes     string `form:"notes" validate:"max=2000"`
}

// ============================================================================
// Quote responses
// ============================================================================

// QuoteDTO is the admin representation of a quote
type QuoteDTO struct {
	ID                       uint             `json:"id"`
	Name                     string           `json:"name"`
	Email                    string           `json:"email"`
	Phone                    *string          `json:"phone"`
	AnonymousID              *string          `json:"anonymous_id"`
	State                    QuoteState       `json:"state"`
	EventType                *string          `json:"event_type"`
	EventDate                *string          `json:"event_date"`
	Address                  *string          `json:"address"`
	StartTime                *string          `json:"start_time"`
	EndTime                  *string          `json:"end_time"`
	TotalHours               *float64         `json:"total_hours"`
	GuestCount               *int             `json:"guest_count"`
	PackageName              *string          `json:"package_name"`
	ServicesRequested        []string         `json:"services_requested"`
	TravelArea               *string          `json:"travel_area"`
	VenueType                *VenueType       `json:"venue_type"`
	HeardAbout               *string          `json:"heard_about"`
	Notes                    *string          `json:"notes"`
	TermsAccepted            bool             `json:"terms_accepted"`
	TermsAcceptedAt          *time.Time       `json:"terms_accepted_at"`
	CalcPaymentType          *PaymentType     `json:"calc_payment_type"`
	CalcBaseAmount           *float64         `json:"calc_base_amount"`
	CalcSetupAmount          *float64         `json:"calc_setup_amount"`
	CalcTravelAmount         *float64         `json:"calc_travel_amount"`
	CalcSubtotal             *float64         `json:"calc_subtotal"`
	CalcGSTAmount            *float64         `json:"calc_gst_amount"`
	CalcTotalAmount          *float64         `json:"calc_total_amount"`
	EmailSendStatus          *EmailSendStatus `json:"email_send_status"`
	EmailSendAttemptedAt     *time.Time       `json:"email_send_attempted_at"`
	EmailSendResponse        *DeliveryRecord  `json:"email_send_response"`
	ClientConfirmedAt        *time.Time       `json:"client_confirmed_at"`
	ArtistDeclinedAt         *time.Time       `json:"artist_declined_at"`
	ArtistDeclineReason      *string          `json:"artist_decline_reason"`
	ClientSuggestedTimeAt    *time.Time       `json:"client_suggested_time_at"`
	ClientSuggestedEventDate *string          `json:"client_suggested_event_date"`
	ClientSuggestedStartTime *string          `json:"client_suggested_start_time"`
	ClientSuggestedEndTime   *string          `json:"client_suggested_end_time"`
	ClientSuggestedTimeNotes *string          `json:"client_suggested_time_notes"`
	EmailOpenedAt            *time.Time       `json:"email_opened_at"`
	EmailLastOpenedAt        *time.Time       `json:"email_last_opened_at"`
	EmailOpenCount           int              `json:"email_open_count"`
	CreatedAt                time.Time        `json:"created_at"`
	UpdatedAt                time.Time        `json:"updated_at"`
}

// DeliveryRecord is the persisted outcome of an email send
type DeliveryRecord struct {
	OK        bool    `json:"ok"`
	Mailer    string  `json:"mailer"`
	To        string  `json:"to"`
	BCC       *string `json:"bcc"`
	MessageID *string `json:"message_id,omitempty"`
	Error     *string `json:"error,omitempty"`
	Exception *string `json:"exception,omitempty"`
}

// QuoteMutationResponse wraps a changed quote
type QuoteMutationResponse struct {
	Success bool      `json:"success"`
	Quote   *QuoteDTO `json:"quote,omitempty"`
}

// SuccessResponse is a plain success acknowledgement
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ============================================================================
// Tracking
// ============================================================================

// TrackPageViewRequest is the analytics ingestion payload
type TrackPageViewRequest struct {
	AnonymousID     string  `json:"anonymous_id" validate:"required,max=80"`
	PageKey         string  `json:"page_key" validate:"required,max=80"`
	Path            string  `json:"path" validate:"required,max=255"`
	Referrer        *string `json:"referrer" validate:"omitempty,max=512"`
	EventType       *string `json:"event_type" validate:"omitempty,oneof=view engagement"`
	DurationSeconds *int    `json:"duration_seconds" validate:"omitempty,gte=0,lte=86400"`
}

// TrackPageViewResponse acknowledges an analytics event
type TrackPageViewResponse struct {
	Success bool  `json:"success"`
	Tracked *bool `json:"tracked,omitempty"`
}

// TrackingStats is the aggregate analytics report
type TrackingStats struct {
	WindowDays    *int                `json:"window_days"`
	Overview      TrackingOverview    `json:"overview"`
	CountryViews  []CountryViewCount  `json:"country_views"`
	PageViews     []PageViewCount     `json:"page_views"`
	ReferrerViews []ReferrerViewCount `json:"referrer_views"`
	DailyViews    []DailyViewCount    `json:"daily_views"`
	Funnel        FunnelStats         `json:"funnel"`
	QuoteTracking []QuoteTrackingRow  `json:"quote_tracking"`
	GeneratedAt   time.Time           `json:"generated_at"`
}

// TrackingOverview holds headline analytics numbers
type TrackingOverview struct {
	TotalPageViews               int64   `json:"total_page_views"`
	UniqueVisitors               int64   `json:"unique_visitors"`
	GalleryViews                 int64   `json:"gallery_views"`
	DesignViews                  int64   `json:"design_views"`
	ViewsLast24h                 int64   `json:"views_last_24h"`
	ViewsLast7d                  int64   `json:"views_last_7d"`
	ViewsLast30d                 int64   `json:"views_last_30d"`
	TotalTimeSeconds             int64   `json:"total_time_seconds"`
	AverageTimePerVisitorSeconds float64 `json:"average_time_per_visitor_seconds"`
	QuotesWithTracking           int64   `json:"quotes_with_tracking"`
}

// CountryViewCount is a per-country view total
type CountryViewCount struct {
	CountryCode string `json:"country_code"`
	Views       int64  `json:"views"`
}

// PageViewCount is a per-page view total
type PageViewCount struct {
	PageKey string `json:"page_key"`
	Views   int64  `json:"views"`
}

// ReferrerViewCount is a per-referrer view total
type ReferrerViewCount struct {
	Referrer string `json:"referrer"`
	Views    int64  `json:"views"`
}

// DailyViewCount is the number of views on one calendar day (UTC)
type DailyViewCount struct {
	Date  string `json:"date"`
	Views int64  `json:"views"`
}

// FunnelStep is one step of the quote funnel
type FunnelStep struct {
	PageKey  string `json:"page_key"`
	Visitors int64  `json:"visitors"`
}

// FunnelStats is the quote funnel with its overall conversion rate
type FunnelStats struct {
	Steps          []FunnelStep `json:"steps"`
	ConversionRate float64      `json:"conversion_rate"`
}

// QuoteTrackingRow joins a quote with its visitor's page views
type QuoteTrackingRow struct {
	QuoteID          uint       `json:"quote_id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	EventType        *string    `json:"event_type"`
	AnonymousID      string     `json:"anonymous_id"`
	QuoteCreatedAt   time.Time  `json:"quote_created_at"`
	PageViews        int64      `json:"page_views"`
	GalleryViews     int64      `json:"gallery_views"`
	DesignViews      int64      `json:"design_views"`
	TotalTimeSeconds int64      `json:"total_time_seconds"`
	FirstViewedAt    *time.Time `json:"first_viewed_at"`
	LastViewedAt     *time.Time `json:"last_viewed_at"`
	HasTracking      bool       `json:"has_tracking"`
}

// ============================================================================
// Testimonials
// ============================================================================

// SubmitTestimonialRequest is the public testimonial form payload
type SubmitTestimonialRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Testimonial string   `json:"testimonial" validate:"required,max=5000"`
	URLs        []string `json:"urls" validate:"omitempty,max=3,dive,url,max=2048"`
}

// AdminTestimonialRequest creates or replaces a testimonial from the back office
type AdminTestimonialRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Testimonial string   `json:"testimonial" validate:"required,max=5000"`
	URLs        []string `json:"urls" validate:"omitempty,max=12,dive,url,max=2048"`
	IsApproved  *bool    `json:"is_approved"`
}

// TestimonialDTO is the API representation of a testimonial
type TestimonialDTO struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Testimonial string     `json:"testimonial"`
	URLs        []string   `json:"urls"`
	IsApproved  bool       `json:"is_approved"`
	ApprovedAt  *time.Time `json:"approved_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PaginationMeta describes a page of results
type PaginationMeta struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"has_more"`
}

// PaginatedTestimonials is a page of public testimonials
type PaginatedTestimonials struct {
	Data []TestimonialDTO `json:"data"`
	Meta PaginationMeta   `json:"meta"`
}
