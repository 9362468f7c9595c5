package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StringList is a []string stored as a JSON text column.
// Keeps the interests field portable across MySQL and SQLite.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string list: %w", err)
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported string list source type %T", src)
	}
	if len(b) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(b, l)
}

// User owns profiles and credits. No auth endpoints exist; rows are
// created by seeding or externally.
type User struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Active       bool      `gorm:"default:true" json:"active"`
	LastLoginAt  time.Time `json:"last_login_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Profile holds the user-authored attributes shown in discovery.
//
// Unique index on user_id enforces at most one live profile per user;
// saves are replace-on-conflict keyed by that column.
type Profile struct {
	ID                string     `gorm:"type:char(36);primaryKey" json:"id"`
	UserID            string     `gorm:"type:char(36);uniqueIndex;not null" json:"user_id"`
	Name              string     `gorm:"size:128;not null" json:"name"`
	Age               int        `gorm:"not null" json:"age"`
	Gender            string     `gorm:"size:16;not null;index" json:"gender"`
	SeekingGender     string     `gorm:"size:16;not null" json:"seeking_gender"`
	Location          string     `gorm:"size:128" json:"location,omitempty"`
	Bio               string     `gorm:"type:text" json:"bio,omitempty"`
	Interests         StringList `gorm:"type:text" json:"interests,omitempty"`
	ProfilePictureURL string     `gorm:"size:512" json:"profile_picture_url,omitempty"`
	IntroVideoURL     string     `gorm:"size:512" json:"intro_video_url,omitempty"`
	IsFakeProfile     bool       `gorm:"not null;default:false;index" json:"is_fake_profile"`
	IsAdmin           bool       `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Match records one user's expressed interest in a profile. It is
// one-directional: its presence makes the conversation visible to the
// creator, with no reciprocity check.
//
// Indexes:
//   - uniq_user_matched_profile(user_id, matched_profile_id)
//     One row per pair; repeated likes are a no-op.
//   - idx_match_user_created(user_id, created_at DESC)
//     Optimizes the caller's match list, newest first.
type Match struct {
	ID               string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID           string    `gorm:"type:char(36);not null;uniqueIndex:uniq_user_matched_profile,priority:1;index:idx_match_user_created,priority:1" json:"user_id"`
	MatchedProfileID string    `gorm:"type:char(36);not null;uniqueIndex:uniq_user_matched_profile,priority:2" json:"matched_profile_id"`
	CreatedAt        time.Time `gorm:"autoCreateTime;index:idx_match_user_created,priority:2,sort:desc" json:"created_at"`

	Profile Profile `gorm:"foreignKey:MatchedProfileID;references:ID" json:"profile"`
}

func (m *Match) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Message is an append-only chat entry scoped to a match, ordered by
// created_at ascending (id breaks ties).
type Message struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	MatchID      string    `gorm:"type:char(36);not null;index:idx_message_match_created,priority:1" json:"match_id"`
	SenderID     string    `gorm:"type:char(36);not null" json:"sender_id"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	IsAdminReply bool      `gorm:"not null;default:false" json:"is_admin_reply"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index:idx_message_match_created,priority:2" json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Credit is the per-user ledger row. A missing row reads as balance 0.
// Debits happen only through the conditional update in CreditRepository
// so the balance can never be spent below zero.
type Credit struct {
	ID             string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID         string    `gorm:"type:char(36);uniqueIndex;not null" json:"user_id"`
	Balance        int64     `gorm:"not null;default:0" json:"balance"`
	TotalPurchased int64     `gorm:"not null;default:0" json:"total_purchased"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Credit) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Transaction records a credit grant. Only admin top-ups write here;
// payment processing is out of scope.
type Transaction struct {
	ID               string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID           string    `gorm:"type:char(36);not null;index" json:"user_id"`
	Amount           float64   `gorm:"not null" json:"amount"`
	CreditsPurchased int64     `gorm:"not null" json:"credits_purchased"`
	PaymentMethod    string    `gorm:"size:32;not null" json:"payment_method"`
	PaymentReference string    `gorm:"size:128" json:"payment_reference,omitempty"`
	Status           string    `gorm:"size:32;not null;default:pending" json:"status"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
