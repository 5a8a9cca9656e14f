package service

import (
	"context"

	"github.com/openclass/member-service/internal/model"
	"github.com/openclass/member-service/internal/repository"
)

// Pagination bounds. Out-of-range inputs are clamped rather than rejected:
// page < 1 becomes 1, pageSize < 1 becomes the default, pageSize above the
// cap becomes the cap.
const (
	defaultPageSize = 15
	maxPageSize     = 100
)

// ProjectionService provides read-only paginated views over an account's
// purchases and notifications. All operations are idempotent.
type ProjectionService interface {
	// PaginateNotifications returns the page-th slice of notifications, newest first.
	PaginateNotifications(ctx context.Context, accountID int64, page, pageSize int) (model.Page[model.Notification], error)
	// PaginateCoursePurchases returns the page-th slice of course purchases, newest first.
	PaginateCoursePurchases(ctx context.Context, accountID int64, page, pageSize int) (model.Page[model.CoursePurchase], error)
	// PaginateVideoPurchases returns the page-th slice of video purchases, newest first.
	PaginateVideoPurchases(ctx context.Context, accountID int64, page, pageSize int) (model.Page[model.VideoPurchase], error)
}

type ProjectionServiceImpl struct {
	repo repository.ProjectionRepository
}

// NewProjectionService constructs ProjectionService over the given stores.
func NewProjectionService(repo repository.ProjectionRepository) *ProjectionServiceImpl {
	return &ProjectionServiceImpl{repo: repo}
}

// PaginateNotifications pages an account's notifications.
func (s *ProjectionServiceImpl) PaginateNotifications(ctx context.Context, accountID int64, page, pageSize int) (model.Page[model.Notification], error) {
	limit, offset := clampPage(page, pageSize)
	items, total, err := s.repo.PageNotifications(ctx, accountID, limit, offset)
	if err != nil {
		return model.Page[model.Notification]{}, err
	}
	return model.Page[model.Notification]{Items: items, Total: total}, nil
}

// PaginateCoursePurchases pages an account's course purchases.
func (s *ProjectionServiceImpl) PaginateCoursePurchases(ctx context.Context, accountID int64, page, pageSize int) (model.Page[model.CoursePurchase], error) {
	limit, offset := clampPage(page, pageSize)
	items, total, err := s.repo.PageCoursePurchases(ctx, accountID, limit, offset)
	if err != nil {
		return model.Page[model.CoursePurchase]{}, err
	}
	return model.Page[model.CoursePurchase]{Items: items, Total: total}, nil
}

// PaginateVideoPurchases pages an account's video purchases.
func (s *ProjectionServiceImpl) PaginateVideoPurchases(ctx context.Context, accountID int64, page, pageSize int) (model.Page[model.VideoPurchase], error) {
	limit, offset := clampPage(page, pageSize)
	items, total, err := s.repo.PageVideoPurchases(ctx, accountID, limit, offset)
	if err != nil {
		return model.Page[model.VideoPurchase]{}, err
	}
	return model.Page[model.VideoPurchase]{Items: items, Total: total}, nil
}

// clampPage converts 1-indexed page/pageSize into limit/offset.
func clampPage(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return pageSize, (page - 1) * pageSize
}
