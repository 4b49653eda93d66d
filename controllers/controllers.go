package controllers

import (
	"github.com/weddingwrangle/weddingwrangle/services"
)

var (
	// AppMailer is the mail transport used when dispatching campaigns.
	AppMailer services.Mailer

	// BaseURL is the externally visible site root, used to build the RSVP
	// and QR URLs embedded in campaign emails.
	BaseURL string

	// FromAddress is the sender address on campaign emails.
	FromAddress string
)

// Setup wires the mail transport and site settings used by the handlers.
func Setup(mailer services.Mailer, baseURL, fromAddress string) {
	AppMailer = mailer
	BaseURL = baseURL
	FromAddress = fromAddress
}
