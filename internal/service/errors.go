package service

import "errors"

// Common service errors
var (
	// ErrQuoteNotFound is returned when a quote does not exist
	ErrQuoteNotFound = errors.New("quote not found")

	// ErrQuoteAlreadyConfirmed is returned when a transition is attempted on a confirmed quote
	ErrQuoteAlreadyConfirmed = errors.New("quote has already been confirmed")

	// ErrQuoteEmailMissing is returned when a quote has no client email to send to
	ErrQuoteEmailMissing = errors.New("quote email address is missing")

	// ErrMailNotConfigured is returned when no sender address is configured
	ErrMailNotConfigured = errors.New("mail sender is not configured")

	// ErrDeliveryFailed is returned when the mail transport rejected a send
	ErrDeliveryFailed = errors.New("email delivery failed")

	// ErrInvalidTimeRange is returned when an end time is not after the start time
	ErrInvalidTimeRange = errors.New("end time must be after start time")

	// ErrDurationTooShort is returned when a booking is shorter than the minimum
	ErrDurationTooShort = errors.New("booking must be at least one hour")

	// ErrTestimonialNotFound is returned when a testimonial does not exist
	ErrTestimonialNotFound = errors.New("testimonial not found")
)
