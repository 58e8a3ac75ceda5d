package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"github.com/sprinkle-fairydust/site-api/internal/mapper"
	"github.com/sprinkle-fairydust/site-api/internal/notification"
	"github.com/sprinkle-fairydust/site-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Public listing page size bounds
const (
	DefaultTestimonialPageSize = 5
	MaxTestimonialPageSize     = 20
)

type TestimonialService struct {
	testimonialRepo *repository.TestimonialRepository
	notifier        Notifier
	logger          *zap.Logger
	now             func() time.Time
}

func NewTestimonialService(
	testimonialRepo *repository.TestimonialRepository,
	notifier Notifier,
	logger *zap.Logger,
) *TestimonialService {
	return &TestimonialService{
		testimonialRepo: testimonialRepo,
		notifier:        notifier,
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// ListApproved returns a page of approved testimonials, newest first
func (s *TestimonialService) ListApproved(ctx context.Context, page, limit int) (*domain.PaginatedTestimonials, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultTestimonialPageSize
	}
	if limit > MaxTestimonialPageSize {
		limit = MaxTestimonialPageSize
	}

	testimonials, total, err := s.testimonialRepo.ListApproved(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}

	return &domain.PaginatedTestimonials{
		Data: mapper.ToTestimonialDTOs(testimonials),
		Meta: domain.PaginationMeta{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasMore: int64(page*limit) < total,
		},
	}, nil
}

// Submit stores an unapproved testimonial and notifies staff. The
// notification is best-effort.
func (s *TestimonialService) Submit(ctx context.Context, req *domain.SubmitTestimonialRequest) (*domain.TestimonialDTO, error) {
	testimonial := &domain.Testimonial{
		Name:        strings.TrimSpace(req.Name),
		Testimonial: strings.TrimSpace(req.Testimonial),
		URLs:        cleanURLs(req.URLs),
	}
	if err := s.testimonialRepo.Create(ctx, testimonial); err != nil {
		return nil, fmt.Errorf("failed to create testimonial: %w", err)
	}

	result := s.notifier.Send(ctx, notification.KindNewTestimonialToStaff, nil, notification.Extra{Testimonial: testimonial})
	if !result.OK && !result.Skipped {
		s.logger.Warn("testimonial notification failed",
			zap.Uint("testimonial_id", testimonial.ID),
			zap.String("error", result.Error),
		)
	}

	dto := mapper.ToTestimonialDTO(testimonial)
	return &dto, nil
}

// ============================================================================
// Admin
// ============================================================================

func (s *TestimonialService) List(ctx context.Context) ([]domain.TestimonialDTO, error) {
	testimonials, err := s.testimonialRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	return mapper.ToTestimonialDTOs(testimonials), nil
}

func (s *TestimonialService) Create(ctx context.Context, req *domain.AdminTestimonialRequest) (*domain.TestimonialDTO, error) {
	testimonial := &domain.Testimonial{}
	s.apply(testimonial, req)

	if err := s.testimonialRepo.Create(ctx, testimonial); err != nil {
		return nil, fmt.Errorf("failed to create testimonial: %w", err)
	}

	dto := mapper.ToTestimonialDTO(testimonial)
	return &dto, nil
}

func (s *TestimonialService) Update(ctx context.Context, id uint, req *domain.AdminTestimonialRequest) (*domain.TestimonialDTO, error) {
	testimonial, err := s.testimonialRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTestimonialNotFound
		}
		return nil, fmt.Errorf("failed to get testimonial: %w", err)
	}

	s.apply(testimonial, req)

	if err := s.testimonialRepo.Update(ctx, testimonial); err != nil {
		return nil, fmt.Errorf("failed to update testimonial: %w", err)
	}

	dto := mapper.ToTestimonialDTO(testimonial)
	return &dto, nil
}

func (s *TestimonialService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.testimonialRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete testimonial: %w", err)
	}
	if !deleted {
		return ErrTestimonialNotFound
	}
	return nil
}

// apply copies the request onto the testimonial. approved_at is stamped
// the first time it is approved and cleared when approval is withdrawn.
func (s *TestimonialService) apply(testimonial *domain.Testimonial, req *domain.AdminTestimonialRequest) {
	testimonial.Name = strings.TrimSpace(req.Name)
	testimonial.Testimonial = strings.TrimSpace(req.Testimonial)
	testimonial.URLs = cleanURLs(req.URLs)

	if req.IsApproved == nil {
		return
	}
	testimonial.IsApproved = *req.IsApproved
	switch {
	case testimonial.IsApproved && testimonial.ApprovedAt == nil:
		now := s.now()
		testimonial.ApprovedAt = &now
	case !testimonial.IsApproved:
		testimonial.ApprovedAt = nil
	}
}

func cleanURLs(urls []string) []string {
	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			cleaned = append(cleaned, u)
		}
	}
	return cleaned
}
