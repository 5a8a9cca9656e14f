// Package service contains application services for member accounts and
// purchase/notification projections.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofrs/uuid/v5"

	"github.com/openclass/member-service/internal/config"
	pkgcrypto "github.com/openclass/member-service/internal/crypto"
	"github.com/openclass/member-service/internal/errs"
	"github.com/openclass/member-service/internal/i18n"
	"github.com/openclass/member-service/internal/idgen"
	"github.com/openclass/member-service/internal/limiter"
	"github.com/openclass/member-service/internal/model"
	"github.com/openclass/member-service/internal/repository"
	"github.com/openclass/member-service/internal/repository/rediscache"
)

// AccountService defines mutation and lookup operations on member accounts.
type AccountService interface {
	// FindByMobile returns the account with that mobile, or (nil, nil) if none exists.
	FindByMobile(ctx context.Context, mobile string) (*model.Account, error)
	// ResetSecret replaces the secret after verifying the old one.
	ResetSecret(ctx context.Context, id int64, oldSecret, newSecret string) error
	// RecoverSecret replaces the secret without an old-secret check.
	// Callers must gate it behind an out-of-band verification step.
	RecoverSecret(ctx context.Context, mobile, newSecret string) error
	// RecoverSecretWithIP recovers the secret with rate limiting by (mobile, ip).
	RecoverSecretWithIP(ctx context.Context, mobile, newSecret, ip string) error
	// CreateAnonymous creates an account with a synthetic placeholder mobile.
	CreateAnonymous(ctx context.Context, avatar, nickname string) (*model.Account, error)
	// CreateWithMobile creates a registered account with a real mobile.
	CreateWithMobile(ctx context.Context, mobile, secret, nickname string) (*model.Account, error)
	// BindMobile attaches a real mobile to an anonymous account.
	BindMobile(ctx context.Context, id int64, mobile string) error
	// UpdateAvatar sets the avatar; a missing id is a silent no-op.
	UpdateAvatar(ctx context.Context, id int64, avatar string) error
	// Find loads an account with the requested relations embedded.
	Find(ctx context.Context, id int64, expand model.Expand) (*model.AccountDetail, error)
	// FindMany returns the subset of ids that exist.
	FindMany(ctx context.Context, ids []int64) ([]model.Account, error)
}

type AccountServiceImpl struct {
	accounts    repository.AccountRepository
	projections repository.ProjectionRepository
	cfg         config.Provider
	ids         *idgen.Generator
	loc         *i18n.Locale
	cache       *rediscache.ViewCache[model.Account] // optional, nil disables
	lim         limiter.Limiter                      // optional, nil disables throttling
}

// NewAccountService constructs AccountService with required dependencies.
// cache and lim may be nil when no read cache or recovery throttle is configured.
func NewAccountService(
	accounts repository.AccountRepository,
	projections repository.ProjectionRepository,
	cfg config.Provider,
	ids *idgen.Generator,
	loc *i18n.Locale,
	cache *rediscache.ViewCache[model.Account],
	lim limiter.Limiter,
) *AccountServiceImpl {
	return &AccountServiceImpl{
		accounts:    accounts,
		projections: projections,
		cfg:         cfg,
		ids:         ids,
		loc:         loc,
		cache:       cache,
		lim:         lim,
	}
}

// Real mobiles follow the CN numbering plan; placeholders never match because
// they are generated with a 2-9 leading digit.
var mobilePattern = regexp.MustCompile(`^1\d{10}$`)

func validateMobile(mobile string) error {
	return validation.Validate(mobile,
		validation.Required,
		validation.Match(mobilePattern).Error("invalid mobile format"),
	)
}

func validateSecret(secret string) error {
	return validation.Validate(secret, validation.Required, validation.Length(6, 64))
}

// FindByMobile returns (nil, nil) when the mobile is unknown; absence is a
// valid answer here, not a failure.
func (s *AccountServiceImpl) FindByMobile(ctx context.Context, mobile string) (*model.Account, error) {
	a, err := s.accounts.GetByMobile(ctx, mobile)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	return a, err
}

// ResetSecret verifies oldSecret against the stored digest before overwriting.
func (s *AccountServiceImpl) ResetSecret(ctx context.Context, id int64, oldSecret, newSecret string) error {
	if err := validateSecret(newSecret); err != nil {
		return fmt.Errorf("validation: new secret: %w", err)
	}
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !pkgcrypto.VerifySecret(oldSecret, a.SecretHash) {
		return fmt.Errorf("%s: %w", s.loc.T(i18n.KeyOldPasswordError), errs.ErrInvalidCredential)
	}
	hash, err := pkgcrypto.HashSecret(newSecret)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdateSecret(ctx, id, hash); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// RecoverSecret overwrites the secret of the account owning mobile.
func (s *AccountServiceImpl) RecoverSecret(ctx context.Context, mobile, newSecret string) error {
	if err := validateSecret(newSecret); err != nil {
		return fmt.Errorf("validation: new secret: %w", err)
	}
	a, err := s.accounts.GetByMobile(ctx, mobile)
	if err != nil {
		return err
	}
	hash, err := pkgcrypto.HashSecret(newSecret)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdateSecret(ctx, a.ID, hash); err != nil {
		return err
	}
	s.invalidate(ctx, a.ID)
	return nil
}

// RecoverSecretWithIP recovers the secret with rate limiting by (mobile, ip).
func (s *AccountServiceImpl) RecoverSecretWithIP(ctx context.Context, mobile, newSecret, ip string) error {
	if s.lim == nil {
		return s.RecoverSecret(ctx, mobile, newSecret)
	}
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, mobile, ipHash)
	if err != nil {
		return err
	}
	if !allowed {
		return errs.ErrRateLimited
	}

	if err := s.RecoverSecret(ctx, mobile, newSecret); err != nil {
		if blocked, _, ferr := s.lim.Failure(ctx, mobile, ipHash); ferr == nil && blocked {
			return errs.ErrRateLimited
		}
		return err
	}
	_ = s.lim.Success(ctx, mobile, ipHash)
	return nil
}

// CreateAnonymous creates an account without a real mobile. The placeholder
// mobile is not unique by contract; only bound mobiles are under the store's
// uniqueness constraint.
func (s *AccountServiceImpl) CreateAnonymous(ctx context.Context, avatar, nickname string) (*model.Account, error) {
	placeholder, err := placeholderMobile()
	if err != nil {
		return nil, err
	}
	// a throwaway secret so the credential path stays uniform
	seed, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	a, err := s.newAccount(placeholder, false, seed.String(), avatar, nickname)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateWithMobile creates a registered account. Duplicate mobiles surface as
// errs.ErrMobileTaken from the store; there is no pre-check, so two concurrent
// creates race safely.
func (s *AccountServiceImpl) CreateWithMobile(ctx context.Context, mobile, secret, nickname string) (*model.Account, error) {
	if err := validateMobile(mobile); err != nil {
		return nil, fmt.Errorf("validation: mobile: %w", err)
	}
	if err := validateSecret(secret); err != nil {
		return nil, fmt.Errorf("validation: secret: %w", err)
	}
	a, err := s.newAccount(mobile, true, secret, "", nickname)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// BindMobile attaches a real mobile to an anonymous account. Rebinding a
// registered account fails with errs.ErrAlreadyBound and leaves the stored
// mobile unchanged.
func (s *AccountServiceImpl) BindMobile(ctx context.Context, id int64, mobile string) error {
	if err := validateMobile(mobile); err != nil {
		return fmt.Errorf("validation: mobile: %w", err)
	}
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.MobileBound {
		return fmt.Errorf("%s: %w", s.loc.T(i18n.KeyCantBindMobile), errs.ErrAlreadyBound)
	}
	if err := s.accounts.BindMobile(ctx, id, mobile); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// UpdateAvatar sets the avatar unconditionally; idempotent PATCH semantics.
func (s *AccountServiceImpl) UpdateAvatar(ctx context.Context, id int64, avatar string) error {
	if err := s.accounts.UpdateAvatar(ctx, id, avatar); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Find loads one account, embedding the relations named in expand via the
// projection stores. Bare lookups go through the read cache when configured.
func (s *AccountServiceImpl) Find(ctx context.Context, id int64, expand model.Expand) (*model.AccountDetail, error) {
	if expand.IsZero() && s.cache != nil {
		if a, ok := s.cache.Get(ctx, accountViewKey(id)); ok {
			return &model.AccountDetail{Account: *a}, nil
		}
	}
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &model.AccountDetail{Account: *a}
	if expand.BuyCourses {
		if detail.BuyCourses, err = s.projections.AllCoursePurchases(ctx, id); err != nil {
			return nil, err
		}
	}
	if expand.BuyVideos {
		if detail.BuyVideos, err = s.projections.AllVideoPurchases(ctx, id); err != nil {
			return nil, err
		}
	}
	if expand.Notifications {
		if detail.Notifications, err = s.projections.AllNotifications(ctx, id); err != nil {
			return nil, err
		}
	}
	if expand.IsZero() && s.cache != nil {
		s.cache.Set(ctx, accountViewKey(id), a)
	}
	return detail, nil
}

// FindMany returns the accounts whose ids exist; missing ids are not an error.
func (s *AccountServiceImpl) FindMany(ctx context.Context, ids []int64) ([]model.Account, error) {
	if len(ids) == 0 {
		return []model.Account{}, nil
	}
	return s.accounts.ListByIDs(ctx, ids)
}

// newAccount assembles a fresh account with config-provided defaults.
func (s *AccountServiceImpl) newAccount(mobile string, bound bool, secret, avatar, nickname string) (*model.Account, error) {
	if nickname == "" {
		token, err := pkgcrypto.RandToken(16)
		if err != nil {
			return nil, err
		}
		nickname = token
	}
	if avatar == "" {
		avatar = s.cfg.DefaultAvatar()
	}
	hash, err := pkgcrypto.HashSecret(secret)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &model.Account{
		ID:            s.ids.NextID(),
		Mobile:        mobile,
		MobileBound:   bound,
		NickName:      nickname,
		Avatar:        avatar,
		SecretHash:    hash,
		IsLock:        s.cfg.DefaultLockFlag(),
		IsActive:      s.cfg.DefaultActiveFlag(),
		RoleID:        0,
		RoleExpiredAt: now,
		CreatedAt:     now,
	}, nil
}

// placeholderMobile builds a 9-digit synthetic mobile with a 2-9 leading digit
// so it can never satisfy the real-mobile pattern.
func placeholderMobile() (string, error) {
	b, err := pkgcrypto.RandBytes(9)
	if err != nil {
		return "", err
	}
	digits := make([]byte, 9)
	digits[0] = '2' + b[0]%8
	for i := 1; i < len(digits); i++ {
		digits[i] = '0' + b[i]%10
	}
	return string(digits), nil
}

func accountViewKey(id int64) string {
	return fmt.Sprintf("member:view:%d", id)
}

func (s *AccountServiceImpl) invalidate(ctx context.Context, id int64) {
	if s.cache != nil {
		s.cache.Delete(ctx, accountViewKey(id))
	}
}
