package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MaxMessageBytes bounds the text of a scan so it fits a MySQL TEXT column.
const MaxMessageBytes = 65535

// Verdict is the categorical classifier output.
type Verdict string

const (
	VerdictSpam Verdict = "Spam"
	VerdictHam  Verdict = "Not Spam"
)

// IsSpam reports whether the verdict flags the message as spam.
func (v Verdict) IsSpam() bool {
	return v == VerdictSpam
}

// Probabilities holds the per-class probabilities exactly as the classifier
// returned them, e.g. {"Ham": "2.69%", "Spam": "97.31%"}.
type Probabilities map[string]string

// GormDataType tells the migrator to use a text column.
func (Probabilities) GormDataType() string {
	return "text"
}

// Value implements driver.Valuer.
func (p Probabilities) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal probabilities: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (p *Probabilities) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("scan probabilities: unsupported type %T", src)
	}
	out := Probabilities{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("unmarshal probabilities: %w", err)
	}
	*p = out
	return nil
}

// ScanRecord is one persisted classification of a user's message.
type ScanRecord struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	UserID          uint            `json:"user_id" gorm:"not null;index"`
	Message         string          `json:"message" gorm:"type:text;not null"`
	Verdict         Verdict         `json:"result" gorm:"type:varchar(16);not null;index"`
	Prediction      int             `json:"prediction" gorm:"not null"`
	Probabilities   Probabilities   `json:"probabilities"`
	SpamProbability decimal.Decimal `json:"spam_probability" gorm:"type:decimal(5,2);not null"`
	Transformed     string          `json:"transformed" gorm:"type:text"`
	CreatedAt       time.Time       `json:"created_at" gorm:"index"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// ScanStats aggregates a user's scan history.
type ScanStats struct {
	Total int64 `json:"total_scanned"`
	Spam  int64 `json:"spam_detected"`
	Ham   int64 `json:"ham_detected"`
}
