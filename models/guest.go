package models

import (
	"time"
)

// Guest represents a wedding guest. RSVPLink is the unguessable token used
// as the lookup key for the guest's personal RSVP page; it is unique across
// all guests.
type Guest struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	FirstName    string     `gorm:"size:30;not null" json:"first_name"`
	Surname      string     `gorm:"size:30;not null" json:"surname"`
	EmailAddress string     `gorm:"size:50" json:"email_address"`
	RSVPLink     string     `gorm:"size:15;not null;unique" json:"rsvp_link"`
	RSVPStatus   RSVPStatus `gorm:"size:11;not null;default:'pending'" json:"rsvp_status"`

	TitleID    uint     `json:"title_id"`
	Title      Title    `gorm:"foreignKey:TitleID" json:"title,omitempty"`
	PositionID uint     `json:"position_id"`
	Position   Position `gorm:"foreignKey:PositionID" json:"position,omitempty"`

	// Partner is a symmetric one-to-one link: if A's partner is B then B's
	// partner is A. Both sides are always written together.
	PartnerID *uint  `json:"partner_id,omitempty"`
	Partner   *Guest `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`

	StarterID *uint    `json:"starter_id,omitempty"`
	Starter   *Starter `gorm:"foreignKey:StarterID" json:"starter,omitempty"`
	MainID    *uint    `json:"main_id,omitempty"`
	Main      *Main    `gorm:"foreignKey:MainID" json:"main,omitempty"`

	Dietaries []Dietary  `gorm:"many2many:guest_dietaries;" json:"dietaries,omitempty"`
	Audiences []Audience `gorm:"many2many:guest_audiences;" json:"audiences,omitempty"`
	Emails    []Email    `gorm:"many2many:guest_emails;" json:"emails,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	RSVPAt    *time.Time `json:"rsvp_at,omitempty"`
}

// FullName returns the guest's display name.
func (g *Guest) FullName() string {
	return g.FirstName + " " + g.Surname
}

// Contactable reports whether the guest can receive campaign emails.
func (g *Guest) Contactable() bool {
	return g.EmailAddress != ""
}
