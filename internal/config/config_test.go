package config

import "testing"

func TestFromEnv_Defaults(t *testing.T) {
	c := FromEnv()
	if c.DefaultAvatar() == "" {
		t.Fatalf("default avatar must not be empty")
	}
	if c.DefaultLockFlag() {
		t.Fatalf("accounts must not be locked by default")
	}
	if !c.DefaultActiveFlag() {
		t.Fatalf("accounts must be active by default")
	}
	if c.Locale() == "" {
		t.Fatalf("empty locale")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("MEMBER_DEFAULT_AVATAR", "https://cdn.example.com/a.png")
	t.Setenv("MEMBER_LOCK_STATUS", "true")
	t.Setenv("MEMBER_ACTIVE_STATUS", "false")
	t.Setenv("MEMBER_LOCALE", "zh-CN")

	c := FromEnv()
	if got := c.DefaultAvatar(); got != "https://cdn.example.com/a.png" {
		t.Fatalf("avatar=%q", got)
	}
	if !c.DefaultLockFlag() || c.DefaultActiveFlag() {
		t.Fatalf("flag overrides not applied: lock=%v active=%v", c.DefaultLockFlag(), c.DefaultActiveFlag())
	}
	if c.Locale() != "zh-CN" {
		t.Fatalf("locale=%q", c.Locale())
	}
}

func TestFromEnv_BadBoolFallsBack(t *testing.T) {
	t.Setenv("MEMBER_LOCK_STATUS", "banana")
	if FromEnv().DefaultLockFlag() {
		t.Fatalf("unparseable bool should fall back to default")
	}
}
