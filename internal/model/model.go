// Package model defines domain entities used by services and repositories.
package model

import "time"

// Account is a member identity record. SecretHash is never serialized.
type Account struct {
	ID            int64     `json:"id"`
	Mobile        string    `json:"mobile"`
	MobileBound   bool      `json:"mobile_bound"` // true once a real mobile is attached
	NickName      string    `json:"nick_name"`
	Avatar        string    `json:"avatar"`
	SecretHash    string    `json:"-"` // PHC-encoded argon2id digest
	IsLock        bool      `json:"is_lock"`
	IsActive      bool      `json:"is_active"`
	RoleID        int64     `json:"role_id"` // 0 = no role
	RoleExpiredAt time.Time `json:"role_expired_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// CoursePurchase is a read-only row from the order subsystem's course table.
type CoursePurchase struct {
	AccountID int64     `json:"account_id"`
	CourseID  int64     `json:"course_id"`
	CreatedAt time.Time `json:"created_at"`
}

// VideoPurchase is a read-only row from the order subsystem's video table.
type VideoPurchase struct {
	AccountID int64     `json:"account_id"`
	VideoID   int64     `json:"video_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification is a read-only row owned by the notification subsystem.
type Notification struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Page is one slice of a paginated read together with the total row count
// computed under the same predicate.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

// Expand names the optional relations a caller may embed into a Find result.
type Expand struct {
	BuyCourses    bool
	BuyVideos     bool
	Notifications bool
}

// IsZero reports whether no relation was requested.
func (e Expand) IsZero() bool {
	return !e.BuyCourses && !e.BuyVideos && !e.Notifications
}

// ParseExpand builds an Expand set from relation names; unknown names are ignored.
func ParseExpand(names []string) Expand {
	var e Expand
	for _, n := range names {
		switch n {
		case "buy_courses":
			e.BuyCourses = true
		case "buy_videos":
			e.BuyVideos = true
		case "notifications":
			e.Notifications = true
		}
	}
	return e
}

// AccountDetail is an Account with its requested relations embedded.
type AccountDetail struct {
	Account
	BuyCourses    []CoursePurchase `json:"buy_courses,omitempty"`
	BuyVideos     []VideoPurchase  `json:"buy_videos,omitempty"`
	Notifications []Notification   `json:"notifications,omitempty"`
}
