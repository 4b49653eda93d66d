package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/weddingwrangle/weddingwrangle/models"
	"github.com/weddingwrangle/weddingwrangle/utils"
)

// ErrGuestNotFound is returned when no guest matches the given lookup.
var ErrGuestNotFound = errors.New("guest not found")

// ClassifyAudiences computes the managed audiences a guest belongs to based
// on position and RSVP status. A nil result means membership must be left
// untouched (organiser roles are not classified); an empty result means the
// guest belongs to no managed audience.
func ClassifyAudiences(position string, status models.RSVPStatus) []string {
	if position != models.PositionGuest {
		return nil
	}
	switch status {
	case models.RSVPAccepted:
		return []string{models.AudienceAttending, models.AudiencePotential}
	case models.RSVPDeclined:
		return []string{}
	default:
		return []string{models.AudienceAwaiting, models.AudiencePotential}
	}
}

// RSVPSubmission is the guest-self-service form: guests may only change
// their email address, status and dietary requirements.
type RSVPSubmission struct {
	EmailAddress string
	RSVPStatus   models.RSVPStatus
	DietaryIDs   []uint
}

// GuestEdit is the staff create/edit form, covering the full field set.
type GuestEdit struct {
	TitleID      uint
	FirstName    string
	Surname      string
	PositionID   uint
	RSVPStatus   models.RSVPStatus
	EmailAddress string
	DietaryIDs   []uint
	PartnerID    *uint
}

// SubmitRSVP applies a guest's own RSVP response, looked up by RSVP link.
// The status change, RSVP timestamp, dietary replacement and audience
// reclassification are committed in a single transaction.
func SubmitRSVP(db *gorm.DB, rsvpLink string, sub RSVPSubmission) (*models.Guest, error) {
	if !sub.RSVPStatus.Valid() {
		return nil, fmt.Errorf("unknown RSVP status %q", sub.RSVPStatus)
	}

	var guest models.Guest
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Position").
			Where("rsvp_link = ?", rsvpLink).First(&guest).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGuestNotFound
			}
			return err
		}

		previous := guest.RSVPStatus
		guest.EmailAddress = sub.EmailAddress
		guest.RSVPStatus = sub.RSVPStatus
		stampRSVPTime(&guest, previous)

		if err := tx.Save(&guest).Error; err != nil {
			return err
		}
		if err := replaceDietaries(tx, &guest, sub.DietaryIDs); err != nil {
			return err
		}
		return syncAudiences(tx, &guest)
	})
	if err != nil {
		return nil, err
	}
	return &guest, nil
}

// CreateGuest creates a guest from a staff form, generating the RSVP link
// and running the full mutation pipeline.
func CreateGuest(db *gorm.DB, edit GuestEdit) (*models.Guest, error) {
	guest := models.Guest{RSVPStatus: models.RSVPPending}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return saveGuest(tx, &guest, edit, true)
	}); err != nil {
		return nil, err
	}
	return &guest, nil
}

// UpdateGuest applies a staff edit to an existing guest.
func UpdateGuest(db *gorm.DB, id uint, edit GuestEdit) (*models.Guest, error) {
	var guest models.Guest
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&guest, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGuestNotFound
			}
			return err
		}
		return saveGuest(tx, &guest, edit, false)
	})
	if err != nil {
		return nil, err
	}
	return &guest, nil
}

// DeleteGuest removes a guest along with any partner link pointing back at
// them.
func DeleteGuest(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var guest models.Guest
		if err := tx.First(&guest, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGuestNotFound
			}
			return err
		}
		if err := tx.Model(&models.Guest{}).Where("partner_id = ?", id).
			Update("partner_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Select("Dietaries", "Audiences", "Emails").
			Delete(&guest).Error; err != nil {
			return err
		}
		return nil
	})
}

// saveGuest is the shared staff-edit pipeline: link generation, RSVP
// timestamp, audience reclassification and partner symmetry, all inside the
// caller's transaction.
func saveGuest(tx *gorm.DB, guest *models.Guest, edit GuestEdit, isNew bool) error {
	if !edit.RSVPStatus.Valid() {
		return fmt.Errorf("unknown RSVP status %q", edit.RSVPStatus)
	}

	previousStatus := guest.RSVPStatus
	previousPosition := guest.PositionID

	guest.TitleID = edit.TitleID
	guest.FirstName = edit.FirstName
	guest.Surname = edit.Surname
	guest.PositionID = edit.PositionID
	guest.RSVPStatus = edit.RSVPStatus
	guest.EmailAddress = edit.EmailAddress

	if guest.RSVPLink == "" {
		link, err := uniqueRSVPLink(tx)
		if err != nil {
			return err
		}
		guest.RSVPLink = link
	}

	stampRSVPTime(guest, previousStatus)

	if err := tx.Save(guest).Error; err != nil {
		return err
	}
	if err := replaceDietaries(tx, guest, edit.DietaryIDs); err != nil {
		return err
	}

	if isNew || guest.RSVPStatus != previousStatus || guest.PositionID != previousPosition {
		if err := tx.First(&guest.Position, guest.PositionID).Error; err != nil {
			return fmt.Errorf("position lookup: %w", err)
		}
		if err := syncAudiences(tx, guest); err != nil {
			return err
		}
	}

	return setPartner(tx, guest, edit.PartnerID)
}

// stampRSVPTime records the response time when the status becomes a
// definitive answer that differs from the stored one. Re-submitting the
// same answer leaves the original timestamp in place.
func stampRSVPTime(guest *models.Guest, previous models.RSVPStatus) {
	if guest.RSVPStatus.Responded() && guest.RSVPStatus != previous {
		now := time.Now()
		guest.RSVPAt = &now
	}
}

// syncAudiences replaces the guest's managed audience memberships with the
// classifier's output. Staff-curated audiences are never touched. Requires
// guest.Position to be loaded.
func syncAudiences(tx *gorm.DB, guest *models.Guest) error {
	names := ClassifyAudiences(guest.Position.Name, guest.RSVPStatus)
	if names == nil {
		return nil
	}

	var managed []models.Audience
	if err := tx.Where("managed = ?", true).Find(&managed).Error; err != nil {
		return err
	}

	if err := tx.Model(guest).Association("Audiences").Delete(&managed); err != nil {
		return err
	}

	var want []models.Audience
	for _, name := range names {
		for _, audience := range managed {
			if audience.Name == name {
				want = append(want, audience)
			}
		}
	}
	if len(want) == 0 {
		return nil
	}
	return tx.Model(guest).Association("Audiences").Append(&want)
}

// setPartner maintains the symmetric partner invariant: both sides of the
// link are written together. The back-link is only completed when the
// partner does not already point elsewhere.
func setPartner(tx *gorm.DB, guest *models.Guest, partnerID *uint) error {
	if partnerID == nil {
		if guest.PartnerID == nil {
			return nil
		}
		// Unlinking clears the reciprocal reference too.
		if err := tx.Model(&models.Guest{}).
			Where("id = ? AND partner_id = ?", *guest.PartnerID, guest.ID).
			Update("partner_id", nil).Error; err != nil {
			return err
		}
		guest.PartnerID = nil
		return tx.Model(guest).Update("partner_id", nil).Error
	}

	var partner models.Guest
	if err := tx.First(&partner, *partnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("partner %d: %w", *partnerID, ErrGuestNotFound)
		}
		return err
	}

	if guest.PartnerID != nil && *guest.PartnerID != *partnerID {
		// Re-partnering detaches the previous partner's back-link first.
		if err := tx.Model(&models.Guest{}).
			Where("id = ? AND partner_id = ?", *guest.PartnerID, guest.ID).
			Update("partner_id", nil).Error; err != nil {
			return err
		}
	}

	guest.PartnerID = partnerID
	if err := tx.Model(guest).Update("partner_id", *partnerID).Error; err != nil {
		return err
	}

	if partner.PartnerID == nil {
		if err := tx.Model(&partner).Update("partner_id", guest.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

// replaceDietaries swaps the guest's dietary set for the given IDs.
func replaceDietaries(tx *gorm.DB, guest *models.Guest, dietaryIDs []uint) error {
	var dietaries []models.Dietary
	if len(dietaryIDs) > 0 {
		if err := tx.Find(&dietaries, dietaryIDs).Error; err != nil {
			return err
		}
	}
	return tx.Model(guest).Association("Dietaries").Replace(&dietaries)
}

// uniqueRSVPLink generates an RSVP link token, retrying until it does not
// collide with an existing guest. Collisions never surface to the caller.
func uniqueRSVPLink(tx *gorm.DB) (string, error) {
	for {
		key, err := utils.RandomKey(utils.RSVPLinkLength)
		if err != nil {
			return "", err
		}
		var count int64
		if err := tx.Model(&models.Guest{}).
			Where("rsvp_link = ?", key).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return key, nil
		}
	}
}
