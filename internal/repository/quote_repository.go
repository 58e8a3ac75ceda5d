package repository

import (
	"context"
	"time"

	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uint) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// UpdateDetails writes only the given intake columns so lifecycle and
// engagement columns changed concurrently are never overwritten. It
// reports whether the quote exists.
func (r *QuoteRepository) UpdateDetails(ctx context.Context, id uint, fields map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete removes a quote and reports whether a row existed
func (r *QuoteRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Quote{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

// List returns every quote, latest first
func (r *QuoteRepository) List(ctx context.Context) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&quotes).Error
	return quotes, err
}

// ListWithAnonymousID returns the latest quotes that can be joined to
// page view history
func (r *QuoteRepository) ListWithAnonymousID(ctx context.Context, limit int) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := r.db.WithContext(ctx).
		Where("anonymous_id IS NOT NULL AND anonymous_id <> ''").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&quotes).Error
	return quotes, err
}

// Transition applies fields to the quote only while its current state
// still allows event. It returns false when the guard rejected the
// write or the quote does not exist.
func (r *QuoteRepository) Transition(ctx context.Context, id uint, event domain.QuoteEvent, fields map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ? AND state IN ?", id, domain.StatesAllowing(event)).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ApplyPricing writes the pricing snapshot and moves a submitted quote to
// priced. Quotes in any other non-terminal state keep their state.
func (r *QuoteRepository) ApplyPricing(ctx context.Context, id uint, fields map[string]interface{}) (bool, error) {
	next, _ := domain.QuoteStateSubmitted.Next(domain.QuoteEventPrice)
	fields["state"] = gorm.Expr("CASE WHEN state = ? THEN ? ELSE state END", domain.QuoteStateSubmitted, next)
	return r.Transition(ctx, id, domain.QuoteEventPrice, fields)
}

// RecordEmailSend stores the outcome of a priced-quote email attempt
func (r *QuoteRepository) RecordEmailSend(ctx context.Context, id uint, status domain.EmailSendStatus, attemptedAt time.Time, response []byte) error {
	return r.db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"email_send_status":       status,
			"email_send_attempted_at": attemptedAt,
			"email_send_response":     datatypes.JSON(response),
		}).Error
}

// RecordOpen counts an email open. Concurrent opens never lose an
// increment and the first-open timestamp is only set once.
func (r *QuoteRepository) RecordOpen(ctx context.Context, id uint, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"email_open_count":     gorm.Expr("email_open_count + 1"),
			"email_last_opened_at": at,
			"email_opened_at":      gorm.Expr("COALESCE(email_opened_at, ?)", at),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *QuoteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Quote{}).Count(&count).Error
	return count, err
}
