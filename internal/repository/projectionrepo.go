package repository

import (
	"context"

	"github.com/openclass/member-service/internal/model"
)

// ProjectionRepository reads the externally-owned purchase and notification
// stores. All methods are read-only and return rows newest-first. Page methods
// report the total row count computed under the same predicate as the slice.
type ProjectionRepository interface {
	// PageNotifications returns one slice of an account's notifications.
	PageNotifications(ctx context.Context, accountID int64, limit, offset int) ([]model.Notification, int64, error)
	// AllNotifications returns every notification for an account.
	AllNotifications(ctx context.Context, accountID int64) ([]model.Notification, error)

	// PageCoursePurchases returns one slice of an account's course purchases.
	PageCoursePurchases(ctx context.Context, accountID int64, limit, offset int) ([]model.CoursePurchase, int64, error)
	// AllCoursePurchases returns every course purchase for an account.
	AllCoursePurchases(ctx context.Context, accountID int64) ([]model.CoursePurchase, error)

	// PageVideoPurchases returns one slice of an account's video purchases.
	PageVideoPurchases(ctx context.Context, accountID int64, limit, offset int) ([]model.VideoPurchase, int64, error)
	// AllVideoPurchases returns every video purchase for an account.
	AllVideoPurchases(ctx context.Context, accountID int64) ([]model.VideoPurchase, error)
}
