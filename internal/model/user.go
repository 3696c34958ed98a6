package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// AuthMethod identifies a way a user can authenticate.
type AuthMethod string

const (
	AuthMethodLocal  AuthMethod = "local"
	AuthMethodGoogle AuthMethod = "google"
)

// AuthMethods is the set of methods linked to a user. It is persisted as a
// comma-separated list in a single column.
type AuthMethods []AuthMethod

// Has reports whether m is part of the set.
func (a AuthMethods) Has(m AuthMethod) bool {
	for _, existing := range a {
		if existing == m {
			return true
		}
	}
	return false
}

// With returns a copy of the set that includes m.
func (a AuthMethods) With(m AuthMethod) AuthMethods {
	if a.Has(m) {
		return a
	}
	out := make(AuthMethods, 0, len(a)+1)
	out = append(out, a...)
	return append(out, m)
}

func (a AuthMethods) String() string {
	parts := make([]string, len(a))
	for i, m := range a {
		parts[i] = string(m)
	}
	return strings.Join(parts, ",")
}

// GormDataType tells the migrator to use a string column.
func (AuthMethods) GormDataType() string {
	return "string"
}

// Value implements driver.Valuer.
func (a AuthMethods) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner.
func (a *AuthMethods) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("scan auth methods: unsupported type %T", src)
	}

	var out AuthMethods
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = out.With(AuthMethod(part))
		}
	}
	*a = out
	return nil
}

// User represents an account that owns scan records.
type User struct {
	ID             uint        `json:"id" gorm:"primaryKey"`
	Name           string      `json:"name" gorm:"size:255;not null"`
	Email          string      `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash   *string     `json:"-" gorm:"size:255"` // Never expose in JSON
	ProviderID     *string     `json:"provider_id,omitempty" gorm:"uniqueIndex;size:255"`
	ProfilePicture *string     `json:"profile_picture,omitempty" gorm:"size:512"`
	AuthMethods    AuthMethods `json:"auth_methods" gorm:"column:auth_method;type:varchar(64);not null"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// HasLocalCredential reports whether the user can log in with a password.
func (u *User) HasLocalCredential() bool {
	return u.AuthMethods.Has(AuthMethodLocal) && u.PasswordHash != nil && *u.PasswordHash != ""
}
