package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/openclass/member-service/internal/config"
	pkgcrypto "github.com/openclass/member-service/internal/crypto"
	"github.com/openclass/member-service/internal/errs"
	"github.com/openclass/member-service/internal/i18n"
	"github.com/openclass/member-service/internal/idgen"
	"github.com/openclass/member-service/internal/model"
	"github.com/openclass/member-service/internal/repository"
)

type fakeAccounts struct {
	byID map[int64]*model.Account

	createErr error
	getErr    error
}

var _ repository.AccountRepository = (*fakeAccounts)(nil)

func (f *fakeAccounts) Create(_ context.Context, a *model.Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byID == nil {
		f.byID = map[int64]*model.Account{}
	}
	if a.MobileBound {
		for _, e := range f.byID {
			if e.MobileBound && e.Mobile == a.Mobile {
				return errs.ErrMobileTaken
			}
		}
	}
	cpy := *a
	f.byID[a.ID] = &cpy
	return nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id int64) (*model.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (f *fakeAccounts) GetByMobile(_ context.Context, mobile string) (*model.Account, error) {
	for _, a := range f.byID {
		if a.Mobile == mobile {
			c := *a
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeAccounts) ListByIDs(_ context.Context, ids []int64) ([]model.Account, error) {
	var out []model.Account
	for _, id := range ids {
		if a, ok := f.byID[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAccounts) UpdateSecret(_ context.Context, id int64, secretHash string) error {
	a, ok := f.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	a.SecretHash = secretHash
	return nil
}

func (f *fakeAccounts) BindMobile(_ context.Context, id int64, mobile string) error {
	a, ok := f.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	for _, e := range f.byID {
		if e.ID != id && e.MobileBound && e.Mobile == mobile {
			return errs.ErrMobileTaken
		}
	}
	a.Mobile = mobile
	a.MobileBound = true
	return nil
}

func (f *fakeAccounts) UpdateAvatar(_ context.Context, id int64, avatar string) error {
	if a, ok := f.byID[id]; ok {
		a.Avatar = avatar
	}
	return nil
}

type fakeProjections struct {
	notifications map[int64][]model.Notification
	courses       map[int64][]model.CoursePurchase
	videos        map[int64][]model.VideoPurchase
}

var _ repository.ProjectionRepository = (*fakeProjections)(nil)

func pageOf[T any](all []T, limit, offset int) ([]T, int64) {
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total
}

func (f *fakeProjections) PageNotifications(_ context.Context, id int64, limit, offset int) ([]model.Notification, int64, error) {
	items, total := pageOf(f.notifications[id], limit, offset)
	return items, total, nil
}
func (f *fakeProjections) AllNotifications(_ context.Context, id int64) ([]model.Notification, error) {
	return f.notifications[id], nil
}
func (f *fakeProjections) PageCoursePurchases(_ context.Context, id int64, limit, offset int) ([]model.CoursePurchase, int64, error) {
	items, total := pageOf(f.courses[id], limit, offset)
	return items, total, nil
}
func (f *fakeProjections) AllCoursePurchases(_ context.Context, id int64) ([]model.CoursePurchase, error) {
	return f.courses[id], nil
}
func (f *fakeProjections) PageVideoPurchases(_ context.Context, id int64, limit, offset int) ([]model.VideoPurchase, int64, error) {
	items, total := pageOf(f.videos[id], limit, offset)
	return items, total, nil
}
func (f *fakeProjections) AllVideoPurchases(_ context.Context, id int64) ([]model.VideoPurchase, error) {
	return f.videos[id], nil
}

func newTestService(t *testing.T, accounts *fakeAccounts, projections *fakeProjections) *AccountServiceImpl {
	t.Helper()
	if projections == nil {
		projections = &fakeProjections{}
	}
	ids, err := idgen.New(1)
	if err != nil {
		t.Fatalf("idgen: %v", err)
	}
	cfg := &config.Static{Avatar: "/default.png", Active: true, Lang: "en"}
	return NewAccountService(accounts, projections, cfg, ids, i18n.New("en"), nil, nil)
}

func TestAccount_CreateWithMobile_AndDuplicate(t *testing.T) {
	t.Parallel()
	accounts := &fakeAccounts{byID: map[int64]*model.Account{}}
	s := newTestService(t, accounts, nil)
	ctx := context.Background()

	a, err := s.CreateWithMobile(ctx, "13800001111", "secret-1", "alice")
	if err != nil {
		t.Fatalf("CreateWithMobile: %v", err)
	}
	if a.ID == 0 || !a.MobileBound || a.NickName != "alice" {
		t.Fatalf("bad account: %+v", a)
	}
	if a.Avatar != "/default.png" {
		t.Fatalf("avatar default not applied: %q", a.Avatar)
	}
	if a.SecretHash == "" || strings.Contains(a.SecretHash, "secret-1") {
		t.Fatalf("secret stored badly: %q", a.SecretHash)
	}

	if _, err := s.CreateWithMobile(ctx, "13800001111", "secret-2", "bob"); !errors.Is(err, errs.ErrMobileTaken) {
		t.Fatalf("want ErrMobileTaken, got %v", err)
	}

	if _, err := s.CreateWithMobile(ctx, "99999", "secret-3", "eve"); err == nil {
		t.Fatalf("want validation error on malformed mobile")
	}
	if _, err := s.CreateWithMobile(ctx, "13800002222", "x", "eve"); err == nil {
		t.Fatalf("want validation error on short secret")
	}
}

func TestAccount_CreateAnonymous_DefaultsAndDistinctNicknames(t *testing.T) {
	t.Parallel()
	accounts := &fakeAccounts{byID: map[int64]*model.Account{}}
	s := newTestService(t, accounts, nil)
	ctx := context.Background()

	a, err := s.CreateAnonymous(ctx, "", "")
	if err != nil {
		t.Fatalf("CreateAnonymous: %v", err)
	}
	if a.MobileBound {
		t.Fatalf("anonymous account must not be mobile-bound")
	}
	if a.Mobile == "" || a.Mobile[0] == '1' {
		t.Fatalf("placeholder mobile must not look like a real one: %q", a.Mobile)
	}
	if a.Avatar != "/default.png" {
		t.Fatalf("avatar=%q, want config default", a.Avatar)
	}
	if len(a.NickName) != 16 {
		t.Fatalf("nickname %q, want generated 16-char token", a.NickName)
	}

	b, err := s.CreateAnonymous(ctx, "/custom.png", "")
	if err != nil {
		t.Fatalf("CreateAnonymous(2): %v", err)
	}
	if b.NickName == a.NickName {
		t.Fatalf("generated nicknames must be distinct")
	}
	if b.Avatar != "/custom.png" {
		t.Fatalf("caller avatar ignored: %q", b.Avatar)
	}
	if b.ID == a.ID {
		t.Fatalf("ids must be unique")
	}
}

func TestAccount_ResetSecret(t *testing.T) {
	t.Parallel()
	accounts := &fakeAccounts{byID: map[int64]*model.Account{}}
	s := newTestService(t, accounts, nil)
	ctx := context.Background()

	a, err := s.CreateWithMobile(ctx, "13800001111", "old-secret", "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.ResetSecret(ctx, 999, "old-secret", "new-secret"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound for missing id, got %v", err)
	}

	if err := s.ResetSecret(ctx, a.ID, "wrong", "new-secret"); !errors.Is(err, errs.ErrInvalidCredential) {
		t.Fatalf("want ErrInvalidCredential, got %v", err)
	}

	if err := s.ResetSecret(ctx, a.ID, "old-secret", "new-secret"); err != nil {
		t.Fatalf("ResetSecret: %v", err)
	}
	stored := accounts.byID[a.ID].SecretHash
	if !pkgcrypto.VerifySecret("new-secret", stored) {
		t.Fatalf("new secret does not verify after reset")
	}
	if pkgcrypto.VerifySecret("old-secret", stored) {
		t.Fatalf("old secret still verifies after reset")
	}
}

func TestAccount_RecoverSecret(t *testing.T) {
	t.Parallel()
	accounts := &fakeAccounts{byID: map[int64]*model.Account{}}
	s := newTestService(t, accounts, nil)
	ctx := context.Background()

	a, err := s.CreateWithMobile(ctx, "13800001111", "forgotten", "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.RecoverSecret(ctx, "13911112222", "fresh-secret"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound for unknown mobile, got %v", err)
	}

	// no old-secret check: the upstream verification gate is out of scope
	if err := s.RecoverSecret(ctx, a.Mobile, "fresh-secret"); err != nil {
		t.Fatalf("RecoverSecret: %v", err)
	}
	if !pkgcrypto.VerifySecret("fresh-secret", accounts.byID[a.ID].SecretHash) {
		t.Fatalf("recovered secret does not verify")
	}
}

type fakeLimiter struct {
	allowed  bool
	blockOn  bool
	failures int
	resets   int
}

func (f *fakeLimiter) Allow(_ context.Context, _ string, _ []byte) (bool, time.Duration, error) {
	return f.allowed, 0, nil
}
func (f *fakeLimiter) Success(_ context.Context, _ string, _ []byte) error {
	f.resets++
	return nil
}
func (f *fakeLimiter) Failure(_ context.Context, _ string, _ []byte) (bool, time.Duration, error) {
	f.failures++
	return f.blockOn, 0, nil
}

func TestAccount_RecoverSecretWithIP_Throttling(t *testing.T) {
	t.Parallel()
	accounts := &fakeAccounts{byID: map[int64]*model.Account{}}
	lim := &fakeLimiter{allowed: true}
	s := newTestService(t, accounts, nil)
	s.lim = lim
	ctx := context.Background()

	a, err := s.CreateWithMobile(ctx, "13800001111", "forgotten", "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// failed attempts are counted
	if err := s.RecoverSecretWithIP(ctx, "13911112222", "fresh-secret", "10.0.0.1"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if lim.failures != 1 {
		t.Fatalf("failures=%d, want 1", lim.failures)
	}

	// a failure that crosses the threshold surfaces as rate limited
	lim.blockOn = true
	if err := s.RecoverSecretWithIP(ctx, "13911112222", "fresh-secret", "10.0.0.1"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited on block, got %v", err)
	}

	// a blocked (mobile, ip) is rejected before touching the store
	lim.allowed = false
	if err := s.RecoverSecretWithIP(ctx, a.Mobile, "fresh-secret", "10.0.0.1"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}

	// success resets the counters
	lim.allowed = true
	if err := s.RecoverSecretWithIP(ctx, a.Mobile, "fresh-secret", "10.0.0.1"); err != nil {
		t.Fatalf("RecoverSecretWithIP: %v", err)
	}
	if lim.resets != 1 {
		t.Fatalf("resets=%d, want 1", lim.resets)
	}
	if !pkgcrypto.VerifySecret("fresh-secret", accounts.byID[a.ID].SecretHash) {
		t.Fatalf("recovered secret does not verify")
	}
}

func TestAccount_BindMobile(t *testing.T) {
	t.Parallel()
	accounts := &fakeAccounts{byID: map[int64]*model.Account{}}
	s := newTestService(t, accounts, nil)
	ctx := context.Background()

	anon, err := s.CreateAnonymous(ctx, "", "")
	if err != nil {
		t.Fatalf("create anon: %v", err)
	}
	reg, err := s.CreateWithMobile(ctx, "13800001111", "secret-1", "alice")
	if err != nil {
		t.Fatalf("create reg: %v", err)
	}

	if err := s.BindMobile(ctx, 999, "13911112222"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	before := accounts.byID[reg.ID].Mobile
	if err := s.BindMobile(ctx, reg.ID, "13911112222"); !errors.Is(err, errs.ErrAlreadyBound) {
		t.Fatalf("want ErrAlreadyBound, got %v", err)
	}
	if accounts.byID[reg.ID].Mobile != before {
		t.Fatalf("mobile changed after rejected rebind")
	}

	if err := s.BindMobile(ctx, anon.ID, "13800001111"); !errors.Is(err, errs.ErrMobileTaken) {
		t.Fatalf("want ErrMobileTaken for duplicate, got %v", err)
	}

	if err := s.BindMobile(ctx, anon.ID, "13911112222"); err != nil {
		t.Fatalf("BindMobile: %v", err)
	}
	bound := accounts.byID[anon.ID]
	if !bound.MobileBound || bound.Mobile != "13911112222" {
		t.Fatalf("binding not persisted: %+v", bound)
	}
}

func TestAccount_UpdateAvatar_MissingIDIsNoop(t *testing.T) {
	t.Parallel()
	accounts := &fakeAccounts{byID: map[int64]*model.Account{}}
	s := newTestService(t, accounts, nil)

	if err := s.UpdateAvatar(context.Background(), 999, "/new.png"); err != nil {
		t.Fatalf("UpdateAvatar on missing id must succeed, got %v", err)
	}
}

func TestAccount_FindByMobile_AbsentIsNotAnError(t *testing.T) {
	t.Parallel()
	accounts := &fakeAccounts{byID: map[int64]*model.Account{}}
	s := newTestService(t, accounts, nil)
	ctx := context.Background()

	a, err := s.FindByMobile(ctx, "13800001111")
	if err != nil || a != nil {
		t.Fatalf("want (nil, nil) for unknown mobile, got (%v, %v)", a, err)
	}

	created, _ := s.CreateWithMobile(ctx, "13800001111", "secret-1", "alice")
	got, err := s.FindByMobile(ctx, "13800001111")
	if err != nil || got == nil || got.ID != created.ID {
		t.Fatalf("FindByMobile: got=%v err=%v", got, err)
	}
}

func TestAccount_Find_ExpandRelations(t *testing.T) {
	t.Parallel()
	now := time.Now()
	accounts := &fakeAccounts{byID: map[int64]*model.Account{}}
	s := newTestService(t, accounts, nil)
	ctx := context.Background()

	a, err := s.CreateWithMobile(ctx, "13800001111", "secret-1", "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	projections := &fakeProjections{
		courses: map[int64][]model.CoursePurchase{
			a.ID: {{AccountID: a.ID, CourseID: 301, CreatedAt: now}},
		},
		notifications: map[int64][]model.Notification{
			a.ID: {{ID: 1, AccountID: a.ID, Title: "hi", CreatedAt: now}},
		},
	}
	s.projections = projections

	if _, err := s.Find(ctx, 999, model.Expand{}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	bare, err := s.Find(ctx, a.ID, model.Expand{})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if bare.BuyCourses != nil || bare.Notifications != nil {
		t.Fatalf("unrequested relations embedded: %+v", bare)
	}

	full, err := s.Find(ctx, a.ID, model.ParseExpand([]string{"buy_courses", "notifications", "bogus"}))
	if err != nil {
		t.Fatalf("Find(expand): %v", err)
	}
	if len(full.BuyCourses) != 1 || full.BuyCourses[0].CourseID != 301 {
		t.Fatalf("buy_courses not embedded: %+v", full.BuyCourses)
	}
	if len(full.Notifications) != 1 {
		t.Fatalf("notifications not embedded: %+v", full.Notifications)
	}
	if full.BuyVideos != nil {
		t.Fatalf("buy_videos embedded without request")
	}
}

func TestAccount_FindMany_ReturnsExistingSubset(t *testing.T) {
	t.Parallel()
	accounts := &fakeAccounts{byID: map[int64]*model.Account{}}
	s := newTestService(t, accounts, nil)
	ctx := context.Background()

	a, _ := s.CreateWithMobile(ctx, "13800001111", "secret-1", "alice")
	b, _ := s.CreateWithMobile(ctx, "13800002222", "secret-2", "bob")

	got, err := s.FindMany(ctx, []int64{a.ID, 999, b.ID})
	if err != nil {
		t.Fatalf("FindMany: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 accounts, got %d", len(got))
	}

	empty, err := s.FindMany(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("FindMany(nil): got=%v err=%v", empty, err)
	}
}
