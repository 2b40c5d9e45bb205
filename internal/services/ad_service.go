package services

import (
	"context"
	"fmt"
	"time"

	"barter/internal/domain"
	"barter/internal/metrics"
	"barter/internal/repos"
	"barter/internal/validate"
)

const DefaultPageSize = 10

// AdService is the listing store: ownership-checked mutations over ads.
type AdService struct {
	Ads     *repos.AdRepo
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func NewAdService(ads *repos.AdRepo, m *metrics.Metrics) *AdService {
	if m == nil {
		m = metrics.New("barter")
	}
	return &AdService{Ads: ads, Metrics: m, Now: time.Now}
}

func normalizeAdInput(in domain.AdInput) (domain.AdInput, error) {
	verr := &domain.ValidationError{}
	var ok bool
	if in.Title, ok = validate.Text(in.Title, validate.MaxTitle); !ok {
		verr.Add("title", fmt.Sprintf("required, at most %d characters", validate.MaxTitle))
	}
	if in.Description, ok = validate.Text(in.Description, 0); !ok {
		verr.Add("description", "required")
	}
	if in.Category, ok = validate.Text(in.Category, validate.MaxCategory); !ok {
		verr.Add("category", fmt.Sprintf("required, at most %d characters", validate.MaxCategory))
	}
	if in.Condition, ok = validate.Text(in.Condition, validate.MaxCondition); !ok {
		verr.Add("condition", fmt.Sprintf("required, at most %d characters", validate.MaxCondition))
	}
	if in.ImageURL != nil {
		if *in.ImageURL == "" {
			in.ImageURL = nil
		} else if u, ok := validate.ImageURL(*in.ImageURL); ok {
			in.ImageURL = &u
		} else {
			verr.Add("image_url", "enter a valid http(s) URL")
		}
	}
	return in, verr.OrNil()
}

func normalizeAdPatch(p domain.AdPatch) (domain.AdPatch, error) {
	verr := &domain.ValidationError{}
	text := func(field string, v **string, max int) {
		if *v == nil {
			return
		}
		s, ok := validate.Text(**v, max)
		if !ok {
			verr.Add(field, "may not be blank or too long")
			return
		}
		*v = &s
	}
	text("title", &p.Title, validate.MaxTitle)
	text("description", &p.Description, 0)
	text("category", &p.Category, validate.MaxCategory)
	text("condition", &p.Condition, validate.MaxCondition)
	if p.ImageURL != nil && *p.ImageURL != "" {
		if u, ok := validate.ImageURL(*p.ImageURL); ok {
			p.ImageURL = &u
		} else {
			verr.Add("image_url", "enter a valid http(s) URL")
		}
	}
	return p, verr.OrNil()
}

// Create stores a new ad owned by p.
func (s *AdService) Create(ctx context.Context, p domain.Principal, in domain.AdInput) (domain.Ad, error) {
	if p.IsAnonymous() {
		return domain.Ad{}, domain.ErrUnauthenticated
	}
	in, err := normalizeAdInput(in)
	if err != nil {
		return domain.Ad{}, err
	}
	id, err := s.Ads.Create(ctx, p.UserID, in, stamp(s.Now))
	if err != nil {
		return domain.Ad{}, fmt.Errorf("create ad: %w", err)
	}
	s.Metrics.ListingsCreated.Inc()
	return s.Ads.Get(ctx, id)
}

func (s *AdService) Get(ctx context.Context, id int64) (domain.Ad, error) {
	return s.Ads.Get(ctx, id)
}

// Update applies patch to an ad p owns.
func (s *AdService) Update(ctx context.Context, p domain.Principal, id int64, patch domain.AdPatch) (domain.Ad, error) {
	if p.IsAnonymous() {
		return domain.Ad{}, domain.ErrUnauthenticated
	}
	ad, err := s.Ads.Get(ctx, id)
	if err != nil {
		return domain.Ad{}, err
	}
	if err := domain.Authorize(p, domain.ActionUpdate, domain.AdResource(&ad)); err != nil {
		return domain.Ad{}, err
	}
	patch, err = normalizeAdPatch(patch)
	if err != nil {
		return domain.Ad{}, err
	}
	if patch.Empty() {
		return ad, nil
	}
	if err := s.Ads.Update(ctx, id, patch); err != nil {
		return domain.Ad{}, fmt.Errorf("update ad %d: %w", id, err)
	}
	return s.Ads.Get(ctx, id)
}

// Delete removes an ad p owns. Proposals that reference it are kept.
func (s *AdService) Delete(ctx context.Context, p domain.Principal, id int64) error {
	if p.IsAnonymous() {
		return domain.ErrUnauthenticated
	}
	ad, err := s.Ads.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := domain.Authorize(p, domain.ActionDelete, domain.AdResource(&ad)); err != nil {
		return err
	}
	if err := s.Ads.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete ad %d: %w", id, err)
	}
	s.Metrics.ListingsDeleted.WithLabelValues("owner").Inc()
	return nil
}

// List returns one page of ads matching f, newest first.
func (s *AdService) List(ctx context.Context, f domain.AdFilter) (domain.AdPage, error) {
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Page < 0 {
		return domain.AdPage{}, domain.NewValidationError("page", "invalid page")
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	count, err := s.Ads.Count(ctx, f)
	if err != nil {
		return domain.AdPage{}, err
	}
	if f.Page > 1 && (f.Page-1)*f.PageSize >= count {
		return domain.AdPage{}, fmt.Errorf("page %d: %w", f.Page, domain.ErrNotFound)
	}
	ads, err := s.Ads.Search(ctx, f, f.PageSize, (f.Page-1)*f.PageSize)
	if err != nil {
		return domain.AdPage{}, err
	}
	page := domain.AdPage{Count: count, Results: ads}
	if f.Page*f.PageSize < count {
		next := f.Page + 1
		page.Next = &next
	}
	if f.Page > 1 {
		prev := f.Page - 1
		page.Previous = &prev
	}
	return page, nil
}
