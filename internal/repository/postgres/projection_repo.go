package postgres

import (
	"context"

	"github.com/openclass/member-service/internal/model"
)

// ProjectionRepo implements ProjectionRepository over the externally-owned
// purchase and notification tables. Strictly read-only.
type ProjectionRepo struct{ db *DB }

// NewProjectionRepo constructs a projection repository.
func NewProjectionRepo(db *DB) *ProjectionRepo { return &ProjectionRepo{db: db} }

// PageNotifications returns one newest-first slice plus the total count.
func (r *ProjectionRepo) PageNotifications(ctx context.Context, accountID int64, limit, offset int) ([]model.Notification, int64, error) {
	total, err := r.count(ctx, `SELECT count(*) FROM notifications WHERE user_id=$1`, accountID)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.queryNotifications(ctx,
		`SELECT id, user_id, title, content, created_at FROM notifications WHERE user_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	return items, total, err
}

// AllNotifications returns every notification for an account, newest first.
func (r *ProjectionRepo) AllNotifications(ctx context.Context, accountID int64) ([]model.Notification, error) {
	return r.queryNotifications(ctx,
		`SELECT id, user_id, title, content, created_at FROM notifications WHERE user_id=$1 ORDER BY created_at DESC, id DESC`,
		accountID)
}

// PageCoursePurchases returns one newest-first slice plus the total count.
func (r *ProjectionRepo) PageCoursePurchases(ctx context.Context, accountID int64, limit, offset int) ([]model.CoursePurchase, int64, error) {
	total, err := r.count(ctx, `SELECT count(*) FROM user_course WHERE user_id=$1`, accountID)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.queryCoursePurchases(ctx,
		`SELECT user_id, course_id, created_at FROM user_course WHERE user_id=$1 ORDER BY created_at DESC, course_id DESC LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	return items, total, err
}

// AllCoursePurchases returns every course purchase for an account, newest first.
func (r *ProjectionRepo) AllCoursePurchases(ctx context.Context, accountID int64) ([]model.CoursePurchase, error) {
	return r.queryCoursePurchases(ctx,
		`SELECT user_id, course_id, created_at FROM user_course WHERE user_id=$1 ORDER BY created_at DESC, course_id DESC`,
		accountID)
}

// PageVideoPurchases returns one newest-first slice plus the total count.
func (r *ProjectionRepo) PageVideoPurchases(ctx context.Context, accountID int64, limit, offset int) ([]model.VideoPurchase, int64, error) {
	total, err := r.count(ctx, `SELECT count(*) FROM user_video WHERE user_id=$1`, accountID)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.queryVideoPurchases(ctx,
		`SELECT user_id, video_id, created_at FROM user_video WHERE user_id=$1 ORDER BY created_at DESC, video_id DESC LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	return items, total, err
}

// AllVideoPurchases returns every video purchase for an account, newest first.
func (r *ProjectionRepo) AllVideoPurchases(ctx context.Context, accountID int64) ([]model.VideoPurchase, error) {
	return r.queryVideoPurchases(ctx,
		`SELECT user_id, video_id, created_at FROM user_video WHERE user_id=$1 ORDER BY created_at DESC, video_id DESC`,
		accountID)
}

func (r *ProjectionRepo) count(ctx context.Context, q string, accountID int64) (int64, error) {
	var total int64
	if err := r.db.Pool.QueryRow(ctx, q, accountID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ProjectionRepo) queryNotifications(ctx context.Context, q string, args ...any) ([]model.Notification, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Title, &n.Content, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *ProjectionRepo) queryCoursePurchases(ctx context.Context, q string, args ...any) ([]model.CoursePurchase, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CoursePurchase
	for rows.Next() {
		var p model.CoursePurchase
		if err := rows.Scan(&p.AccountID, &p.CourseID, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProjectionRepo) queryVideoPurchases(ctx context.Context, q string, args ...any) ([]model.VideoPurchase, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.VideoPurchase
	for rows.Next() {
		var p model.VideoPurchase
		if err := rows.Scan(&p.AccountID, &p.VideoID, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
