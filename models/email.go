package models

import (
	"time"
)

// Email is a single composed campaign: subject and body template targeted
// at one audience. DateSent is null until the campaign is dispatched; the
// Guests association records who it was actually sent to.
type Email struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Subject    string     `gorm:"size:100;not null" json:"subject"`
	Text       string     `gorm:"type:text;not null" json:"text"`
	DateSent   *time.Time `json:"date_sent,omitempty"`
	AudienceID uint       `json:"audience_id"`
	Audience   Audience   `gorm:"foreignKey:AudienceID" json:"audience,omitempty"`
	Guests     []Guest    `gorm:"many2many:guest_emails;" json:"guests,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Sent reports whether the campaign has been dispatched.
func (e *Email) Sent() bool {
	return e.DateSent != nil
}
