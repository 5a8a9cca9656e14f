package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/openclass/member-service/internal/errs"
	"github.com/openclass/member-service/internal/model"
)

const accountColumns = `id, mobile, mobile_bound, nick_name, avatar, secret_hash, is_lock, is_active, role_id, role_expired_at, created_at`

// AccountRepo implements AccountRepository using PostgreSQL.
type AccountRepo struct{ db *DB }

// NewAccountRepo constructs an account repository.
func NewAccountRepo(db *DB) *AccountRepo { return &AccountRepo{db: db} }

// Create inserts a new account row. A partial unique index on mobile covers
// only rows with mobile_bound=true, so anonymous placeholders never collide.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	const q = `
INSERT INTO users (id, mobile, mobile_bound, nick_name, avatar, secret_hash, is_lock, is_active, role_id, role_expired_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Pool.Exec(ctx, q,
		a.ID, a.Mobile, a.MobileBound, a.NickName, a.Avatar, a.SecretHash,
		a.IsLock, a.IsActive, a.RoleID, a.RoleExpiredAt)
	if isUniqueViolation(err) {
		return errs.ErrMobileTaken
	}
	return err
}

// GetByID selects an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM users WHERE id=$1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByMobile selects an account by mobile number.
func (r *AccountRepo) GetByMobile(ctx context.Context, mobile string) (*model.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM users WHERE mobile=$1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, q, mobile))
}

// ListByIDs selects the accounts whose ids exist; missing ids are skipped.
func (r *AccountRepo) ListByIDs(ctx context.Context, ids []int64) ([]model.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM users WHERE id = ANY($1) ORDER BY id`
	rows, err := r.db.Pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Account, 0, len(ids))
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Mobile, &a.MobileBound, &a.NickName, &a.Avatar, &a.SecretHash,
			&a.IsLock, &a.IsActive, &a.RoleID, &a.RoleExpiredAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateSecret overwrites the stored secret digest.
func (r *AccountRepo) UpdateSecret(ctx context.Context, id int64, secretHash string) error {
	const q = `UPDATE users SET secret_hash=$2 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, secretHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// BindMobile attaches a real mobile and flips mobile_bound. The partial
// unique index rejects a mobile already bound elsewhere.
func (r *AccountRepo) BindMobile(ctx context.Context, id int64, mobile string) error {
	const q = `UPDATE users SET mobile=$2, mobile_bound=true WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, mobile)
	if isUniqueViolation(err) {
		return errs.ErrMobileTaken
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// UpdateAvatar sets the avatar. Zero affected rows is not an error.
func (r *AccountRepo) UpdateAvatar(ctx context.Context, id int64, avatar string) error {
	const q = `UPDATE users SET avatar=$2 WHERE id=$1`
	_, err := r.db.Pool.Exec(ctx, q, id, avatar)
	return err
}

func (r *AccountRepo) scanOne(row pgx.Row) (*model.Account, error) {
	var a model.Account
	if err := row.Scan(&a.ID, &a.Mobile, &a.MobileBound, &a.NickName, &a.Avatar, &a.SecretHash,
		&a.IsLock, &a.IsActive, &a.RoleID, &a.RoleExpiredAt, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
