// Package config supplies environment-derived member defaults.
package config

import (
	"os"
	"strconv"
)

// Provider supplies the defaults applied to newly created accounts.
// Injected into the account service so tests can substitute fixed values.
type Provider interface {
	// DefaultAvatar returns the avatar URI assigned when the caller supplies none.
	DefaultAvatar() string
	// DefaultLockFlag returns the initial lock flag for new accounts.
	DefaultLockFlag() bool
	// DefaultActiveFlag returns the initial active flag for new accounts.
	DefaultActiveFlag() bool
	// Locale returns the message locale for user-facing texts.
	Locale() string
}

// Static is a Provider with values fixed at construction time.
type Static struct {
	Avatar string
	Lock   bool
	Active bool
	Lang   string
}

func (s *Static) DefaultAvatar() string   { return s.Avatar }
func (s *Static) DefaultLockFlag() bool   { return s.Lock }
func (s *Static) DefaultActiveFlag() bool { return s.Active }
func (s *Static) Locale() string          { return s.Lang }

// FromEnv reads member defaults from environment variables once.
// Callers wanting .env support should run godotenv.Load first.
func FromEnv() *Static {
	return &Static{
		Avatar: envString("MEMBER_DEFAULT_AVATAR", "/images/default_avatar.png"),
		Lock:   envBool("MEMBER_LOCK_STATUS", false),
		Active: envBool("MEMBER_ACTIVE_STATUS", true),
		Lang:   envString("MEMBER_LOCALE", "en"),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
