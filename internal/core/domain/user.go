package domain

import "time"

// Region enumerates the marketplace regions a user or listing can belong to.
type Region string

const (
	RegionFR    Region = "fr"
	RegionEU    Region = "eu"
	RegionNA    Region = "na"
	RegionAsia  Region = "asia"
	RegionOther Region = "other"
)

// Valid reports whether the region is one of the known values.
func (r Region) Valid() bool {
	switch r {
	case RegionFR, RegionEU, RegionNA, RegionAsia, RegionOther:
		return true
	}
	return false
}

// AuthProviderEmail tags accounts created through classic email registration.
const AuthProviderEmail = "email"

// RedactedPasswordHash replaces the stored credential in any user
// representation returned to callers.
const RedactedPasswordHash = "***"

// User mirrors the persisted representation in the users collection.
// PasswordHash is empty for accounts created through social login.
type User struct {
	ID              string            `bson:"_id" json:"id"`
	Username        string            `bson:"username" json:"username"`
	Email           string            `bson:"email" json:"email"`
	PasswordHash    string            `bson:"password_hash,omitempty" json:"password_hash,omitempty"`
	Location        Region            `bson:"location" json:"location"`
	Avatar          string            `bson:"avatar,omitempty" json:"avatar,omitempty"`
	TrustScore      float64           `bson:"trust_score" json:"trust_score"`
	TotalSales      int               `bson:"total_sales" json:"total_sales"`
	TotalPurchases  int               `bson:"total_purchases" json:"total_purchases"`
	MemberSince     time.Time         `bson:"member_since" json:"member_since"`
	IsVerified      bool              `bson:"is_verified" json:"is_verified"`
	Badges          []string          `bson:"badges" json:"badges"`
	DisplayName     string            `bson:"display_name,omitempty" json:"display_name,omitempty"`
	Bio             string            `bson:"bio,omitempty" json:"bio,omitempty"`
	LocationDisplay string            `bson:"location_display,omitempty" json:"location_display,omitempty"`
	ContactInfo     map[string]string `bson:"contact_info,omitempty" json:"contact_info,omitempty"`
	IsOnline        bool              `bson:"is_online" json:"is_online"`
	LastSeen        *time.Time        `bson:"last_seen,omitempty" json:"last_seen,omitempty"`
	AuthProvider    string            `bson:"auth_provider" json:"auth_provider"`
}

// HasPassword reports whether the account carries a usable password credential.
func (u User) HasPassword() bool {
	return u.PasswordHash != "" && u.PasswordHash != RedactedPasswordHash
}

// Redacted returns a copy safe to return to callers: the stored credential is
// replaced with a marker so the derived hash never leaves the service.
func (u User) Redacted() User {
	sanitized := u
	sanitized.PasswordHash = RedactedPasswordHash
	return sanitized
}

// ProfilePatch captures the owner-mutable profile fields. Nil values are left
// untouched by an update.
type ProfilePatch struct {
	DisplayName     *string           `json:"display_name,omitempty"`
	Bio             *string           `json:"bio,omitempty"`
	Avatar          *string           `json:"avatar,omitempty"`
	LocationDisplay *string           `json:"location_display,omitempty"`
	ContactInfo     map[string]string `json:"contact_info,omitempty"`
}

// IsZero reports whether the patch carries no changes.
func (p ProfilePatch) IsZero() bool {
	return p.DisplayName == nil && p.Bio == nil && p.Avatar == nil &&
		p.LocationDisplay == nil && p.ContactInfo == nil
}
