package models

// Names of the audiences maintained by the classifier.
const (
	AudiencePotential = "All potential guests (excludes Declined)"
	AudienceAwaiting  = "All guests yet to RSVP"
	AudienceAttending = "All attending guests"
)

// Audience is a named guest segment used to target bulk emails. Audiences
// with Managed set are kept in sync by the classifier as guests RSVP;
// unmanaged audiences are staff-curated and never touched automatically.
type Audience struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	Name    string  `gorm:"size:100;not null;unique" json:"name"`
	Managed bool    `gorm:"not null;default:false" json:"managed"`
	Guests  []Guest `gorm:"many2many:guest_audiences;" json:"guests,omitempty"`
}

// ManagedAudienceNames lists the classifier-maintained audiences.
func ManagedAudienceNames() []string {
	return []string{AudiencePotential, AudienceAwaiting, AudienceAttending}
}
