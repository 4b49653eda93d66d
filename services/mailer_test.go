package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/weddingwrangle/weddingwrangle/models"
)

// fakeMailer records sent messages and can fail on a chosen send.
type fakeMailer struct {
	sent   []fakeMessage
	failOn int // 1-based index of the send that fails; 0 means never
}

type fakeMessage struct {
	subject  string
	textBody string
	htmlBody string
	to       string
}

func (m *fakeMailer) Send(subject, textBody, htmlBody, from, to string) error {
	if m.failOn > 0 && len(m.sent)+1 == m.failOn {
		return errors.New("smtp connection refused")
	}
	m.sent = append(m.sent, fakeMessage{subject: subject, textBody: textBody, htmlBody: htmlBody, to: to})
	return nil
}

func TestPersonalizeBody(t *testing.T) {
	rsvpURL := "https://wedding.example.com/rsvp/abc123XYZ0"
	qrURL := "https://wedding.example.com/qr/abc123XYZ0"

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "first name",
			template: "Dear {{ first_name }},",
			want:     "Dear Alice,",
		},
		{
			name:     "rsvp link becomes an anchor",
			template: "RSVP here: {{ rsvp_link }}",
			want:     "RSVP here: <a href='" + rsvpURL + "'>" + rsvpURL + "</a>",
		},
		{
			name:     "qr code only when token present",
			template: "Scan {{ rsvp_qr_code }}",
			want: `Scan <img src="` + qrURL + `" alt="` + rsvpURL +
				`" title="QR Code" width="200" height="200" style="display:block">`,
		},
		{
			name:     "unrecognised tokens are left verbatim",
			template: "Hello {{ surname }} and {{first_name}}",
			want:     "Hello {{ surname }} and {{first_name}}",
		},
		{
			name:     "plain text untouched",
			template: "No placeholders here.",
			want:     "No placeholders here.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PersonalizeBody(tt.template, "Alice", rsvpURL, qrURL)
			assert.Equal(t, tt.want, got)
		})
	}
}

// setupCampaign creates a campaign targeting the awaiting-response audience
// and three pending guests, the second of which has no email address.
func setupCampaign(t *testing.T, db *gorm.DB, body string) (*models.Email, []*models.Guest) {
	t.Helper()

	guests := []*models.Guest{
		createTestGuest(t, db, "Alice", "Archer", models.RSVPPending),
		createTestGuest(t, db, "Bob", "Builder", models.RSVPPending),
		createTestGuest(t, db, "Carol", "Cooper", models.RSVPPending),
	}
	require.NoError(t, db.Model(guests[1]).Update("email_address", "").Error)

	var audience models.Audience
	require.NoError(t, db.Where("name = ?", models.AudienceAwaiting).First(&audience).Error)

	email := models.Email{
		Subject:    "You're invited",
		Text:       body,
		AudienceID: audience.ID,
	}
	require.NoError(t, db.Create(&email).Error)
	return &email, guests
}

func TestSendCampaignSkipsUncontactableGuests(t *testing.T) {
	db := openTestDB(t)
	mailer := &fakeMailer{}

	email, guests := setupCampaign(t, db, "Dear {{ first_name }}, RSVP: {{ rsvp_link }}")

	sent, err := SendCampaign(db, mailer, "https://wedding.example.com", "couple@example.com", email.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	require.Len(t, mailer.sent, 2)
	tos := []string{mailer.sent[0].to, mailer.sent[1].to}
	assert.ElementsMatch(t, []string{"alice@example.com", "carol@example.com"}, tos)

	// Each message carries that guest's own name and RSVP link.
	var alice models.Guest
	require.NoError(t, db.First(&alice, guests[0].ID).Error)
	for _, msg := range mailer.sent {
		if msg.to == "alice@example.com" {
			assert.Contains(t, msg.textBody, "Dear Alice")
			assert.Contains(t, msg.textBody, alice.RSVPLink)
		}
	}

	// The campaign is marked sent and records who it reached.
	var stored models.Email
	require.NoError(t, db.Preload("Guests").First(&stored, email.ID).Error)
	require.NotNil(t, stored.DateSent)
	recipients := make([]string, len(stored.Guests))
	for i, guest := range stored.Guests {
		recipients[i] = guest.FirstName
	}
	assert.ElementsMatch(t, []string{"Alice", "Carol"}, recipients)
}

func TestSendCampaignEmbedsQRCodeOnDemand(t *testing.T) {
	db := openTestDB(t)
	mailer := &fakeMailer{}

	email, guests := setupCampaign(t, db, "Scan here: {{ rsvp_qr_code }}")

	_, err := SendCampaign(db, mailer, "https://wedding.example.com", "couple@example.com", email.ID)
	require.NoError(t, err)

	var alice models.Guest
	require.NoError(t, db.First(&alice, guests[0].ID).Error)

	require.Len(t, mailer.sent, 2)
	for _, msg := range mailer.sent {
		if msg.to == "alice@example.com" {
			assert.Contains(t, msg.textBody,
				fmt.Sprintf(`<img src="https://wedding.example.com/qr/%s"`, alice.RSVPLink))
			assert.Contains(t, msg.htmlBody, "<html>")
		}
	}
}

func TestSendCampaignTransportFailureAbortsLoop(t *testing.T) {
	db := openTestDB(t)
	mailer := &fakeMailer{failOn: 2}

	email, _ := setupCampaign(t, db, "Hello {{ first_name }}")

	sent, err := SendCampaign(db, mailer, "https://wedding.example.com", "couple@example.com", email.ID)
	require.Error(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, mailer.sent, 1)

	// The campaign stays marked sent even though delivery failed partway.
	var stored models.Email
	require.NoError(t, db.First(&stored, email.ID).Error)
	assert.NotNil(t, stored.DateSent)
}

func TestSendCampaignUnknownID(t *testing.T) {
	db := openTestDB(t)

	_, err := SendCampaign(db, &fakeMailer{}, "https://wedding.example.com", "couple@example.com", 999)
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestUncontactableGuests(t *testing.T) {
	db := openTestDB(t)

	email, guests := setupCampaign(t, db, "Hello")

	uncontactable, err := UncontactableGuests(db, email.ID)
	require.NoError(t, err)
	assert.True(t, uncontactable)

	// Give the silent guest an address and the warning clears.
	require.NoError(t, db.Model(guests[1]).Update("email_address", "bob@example.com").Error)
	uncontactable, err = UncontactableGuests(db, email.ID)
	require.NoError(t, err)
	assert.False(t, uncontactable)
}
