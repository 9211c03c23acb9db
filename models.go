package registration

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model. Accounts are created inactive and become
// active only through activation-key consumption.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string         `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string         `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string         `bun:"password_hash" json:"password_hash,omitempty"`
	IsActive      bool           `bun:"is_active" json:"is_active,omitempty"`
	Metadata      map[string]any `bun:"metadata" json:"metadata,omitempty"`
	ActivatedAt   *time.Time     `bun:"activated_at,nullzero" json:"activated_at,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

// RegistrationProfile pairs an account with its activation key. It is
// created in the same transaction as the User; the key grants activation
// once, until ActivatedAt is stamped or the activation window elapses.
type RegistrationProfile struct {
	bun.BaseModel `bun:"table:registration_profiles,alias:regp"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        *uuid.UUID `bun:"user_id,notnull,unique" json:"user_id,omitempty"`
	User          *User      `bun:"rel:has-one,join:user_id=id" json:"user,omitempty"`
	ActivationKey string     `bun:"activation_key,notnull,unique" json:"activation_key,omitempty"`
	ActivatedAt   *time.Time `bun:"activated_at,nullzero" json:"activated_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Consumed reports whether the activation key was already used.
func (p *RegistrationProfile) Consumed() bool {
	return p.ActivatedAt != nil
}

// RegistrationCode is a one time signup code. A code is claimed by at
// most one account; UsedBy records the consumer.
type RegistrationCode struct {
	bun.BaseModel `bun:"table:registration_codes,alias:regc"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Code          string     `bun:"code,notnull,unique" json:"code,omitempty"`
	UsedBy        *uuid.UUID `bun:"used_by,nullzero" json:"used_by,omitempty"`
	UsedAt        *time.Time `bun:"used_at,nullzero" json:"used_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Used reports whether the code has been consumed.
func (c *RegistrationCode) Used() bool {
	return c.UsedAt != nil
}

// NewRegistrationCode mints an unused code record.
func NewRegistrationCode() *RegistrationCode {
	return &RegistrationCode{
		ID:   uuid.New(),
		Code: randomToken(8),
	}
}

// NewActivationKey generates an opaque activation token, 40 hex
// characters.
func NewActivationKey() string {
	return randomToken(20)
}

func randomToken(bytes int) string {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; fall back to
		// a uuid so callers still make progress.
		return uuid.NewString()
	}
	return hex.EncodeToString(buf)
}
