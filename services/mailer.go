package services

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/weddingwrangle/weddingwrangle/models"
)

// ErrCampaignNotFound is returned when no campaign matches the given ID.
var ErrCampaignNotFound = errors.New("campaign not found")

// Recognised personalization placeholders. They are matched as literal
// substrings, not parsed as a template language; unrecognised tokens are
// left verbatim in the output.
const (
	PlaceholderQRCode    = "{{ rsvp_qr_code }}"
	PlaceholderFirstName = "{{ first_name }}"
	PlaceholderRSVPLink  = "{{ rsvp_link }}"
)

// Mailer delivers a single message synchronously.
type Mailer interface {
	Send(subject, textBody, htmlBody, from, to string) error
}

// SMTPMailer sends mail through a plain SMTP server.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Send builds a multipart/alternative message and delivers it.
func (m *SMTPMailer) Send(subject, textBody, htmlBody, from, to string) error {
	boundary := "weddingwrangle-alt"
	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: multipart/alternative; boundary=" + boundary + "\r\n")
	msg.WriteString("\r\n")
	msg.WriteString("--" + boundary + "\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(textBody + "\r\n")
	msg.WriteString("--" + boundary + "\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.WriteString(htmlBody + "\r\n")
	msg.WriteString("--" + boundary + "--\r\n")

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// PersonalizeBody substitutes the recognised placeholders into a campaign
// body. The QR placeholder is only expanded when literally present in the
// source template; templates without it produce no QR image.
func PersonalizeBody(template, firstName, rsvpURL, qrURL string) string {
	merged := template
	if strings.Contains(merged, PlaceholderQRCode) {
		img := fmt.Sprintf(
			`<img src="%s" alt="%s" title="QR Code" width="200" height="200" style="display:block">`,
			qrURL, rsvpURL)
		merged = strings.ReplaceAll(merged, PlaceholderQRCode, img)
	}
	merged = strings.ReplaceAll(merged, PlaceholderFirstName, firstName)
	rsvpAnchor := "<a href='" + rsvpURL + "'>" + rsvpURL + "</a>"
	merged = strings.ReplaceAll(merged, PlaceholderRSVPLink, rsvpAnchor)
	return merged
}

const htmlWrapper = `<html><body style="font-family: sans-serif">%s</body></html>`

// RSVPURL returns the absolute URL of a guest's personal RSVP page.
func RSVPURL(baseURL, rsvpLink string) string {
	return strings.TrimRight(baseURL, "/") + "/rsvp/" + rsvpLink
}

// QRURL returns the absolute URL of a guest's RSVP QR image.
func QRURL(baseURL, rsvpLink string) string {
	return strings.TrimRight(baseURL, "/") + "/qr/" + rsvpLink
}

// SendCampaign personalizes and dispatches a campaign to every contactable
// guest in its target audience, then records which guests it reached.
// Returns the number of messages sent.
//
// The campaign is stamped sent before the first message goes out; a
// transport failure partway leaves earlier guests emailed and recorded,
// later guests never attempted, and the sent stamp in place.
func SendCampaign(db *gorm.DB, mailer Mailer, baseURL, from string, emailID uint) (int, error) {
	var email models.Email
	if err := db.Preload("Audience.Guests").First(&email, emailID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCampaignNotFound
		}
		return 0, err
	}

	now := time.Now()
	email.DateSent = &now
	if err := db.Model(&email).Update("date_sent", &now).Error; err != nil {
		return 0, err
	}

	sent := 0
	for i := range email.Audience.Guests {
		guest := &email.Audience.Guests[i]
		if !guest.Contactable() {
			continue
		}

		rsvpURL := RSVPURL(baseURL, guest.RSVPLink)
		merged := PersonalizeBody(email.Text, guest.FirstName, rsvpURL, QRURL(baseURL, guest.RSVPLink))
		rendered := fmt.Sprintf(htmlWrapper, merged)

		if err := db.Model(guest).Association("Emails").Append(&email); err != nil {
			return sent, err
		}
		if err := mailer.Send(email.Subject, merged, rendered, from, guest.EmailAddress); err != nil {
			return sent, fmt.Errorf("sending to %s: %w", guest.EmailAddress, err)
		}
		sent++
	}

	log.Info().Uint("campaign", email.ID).Int("sent", sent).Msg("campaign dispatched")
	return sent, nil
}

// UncontactableGuests reports whether the campaign's audience contains
// guests with no email address, shown on the confirm page before sending.
func UncontactableGuests(db *gorm.DB, emailID uint) (bool, error) {
	var email models.Email
	if err := db.Preload("Audience.Guests").First(&email, emailID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrCampaignNotFound
		}
		return false, err
	}
	for _, guest := range email.Audience.Guests {
		if !guest.Contactable() {
			return true, nil
		}
	}
	return false, nil
}
