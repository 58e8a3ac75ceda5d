package repository

import (
	"context"

	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"gorm.io/gorm"
)

type TestimonialRepository struct {
	db *gorm.DB
}

func NewTestimonialRepository(db *gorm.DB) *TestimonialRepository {
	return &TestimonialRepository{db: db}
}

func (r *TestimonialRepository) Create(ctx context.Context, testimonial *domain.Testimonial) error {
	return r.db.WithContext(ctx).Create(testimonial).Error
}

func (r *TestimonialRepository) GetByID(ctx context.Context, id uint) (*domain.Testimonial, error) {
	var testimonial domain.Testimonial
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&testimonial).Error
	if err != nil {
		return nil, err
	}
	return &testimonial, nil
}

func (r *TestimonialRepository) Update(ctx context.Context, testimonial *domain.Testimonial) error {
	return r.db.WithContext(ctx).Save(testimonial).Error
}

// Delete removes a testimonial and reports whether a row existed
func (r *TestimonialRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Testimonial{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

// List returns every testimonial, newest first
func (r *TestimonialRepository) List(ctx context.Context) ([]domain.Testimonial, error) {
	var testimonials []domain.Testimonial
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&testimonials).Error
	return testimonials, err
}

// ListApproved returns one page of approved testimonials, newest first
func (r *TestimonialRepository) ListApproved(ctx context.Context, page, pageSize int) ([]domain.Testimonial, int64, error) {
	var testimonials []domain.Testimonial
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Testimonial{}).Where("is_approved = ?", true)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Order("id DESC").Find(&testimonials).Error

	return testimonials, total, err
}
