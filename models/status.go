package models

// RSVPStatus is the attendance confirmation status of a guest. It is stored
// as a string code so the same value is valid across environments, unlike
// numeric reference-table IDs.
type RSVPStatus string

const (
	RSVPPending    RSVPStatus = "pending"
	RSVPAccepted   RSVPStatus = "accepted"
	RSVPDeclined   RSVPStatus = "declined"
	RSVPNotInvited RSVPStatus = "not_invited"
)

// AllRSVPStatuses lists every selectable status, in form-display order.
func AllRSVPStatuses() []RSVPStatus {
	return []RSVPStatus{RSVPNotInvited, RSVPPending, RSVPAccepted, RSVPDeclined}
}

// Valid reports whether s is one of the known statuses.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPPending, RSVPAccepted, RSVPDeclined, RSVPNotInvited:
		return true
	}
	return false
}

// Name returns the short display name used in listings and exports.
func (s RSVPStatus) Name() string {
	switch s {
	case RSVPPending:
		return "Pending"
	case RSVPAccepted:
		return "Accepted"
	case RSVPDeclined:
		return "Declined"
	case RSVPNotInvited:
		return "Not invited"
	}
	return string(s)
}

// Label returns the display label shown on forms.
func (s RSVPStatus) Label() string {
	switch s {
	case RSVPPending:
		return "Awaiting response"
	case RSVPAccepted:
		return "Yes, I will be attending"
	case RSVPDeclined:
		return "No, I won't be attending"
	case RSVPNotInvited:
		return "Not yet invited"
	}
	return string(s)
}

// Responded reports whether s is a definitive answer rather than a
// waiting state.
func (s RSVPStatus) Responded() bool {
	return s == RSVPAccepted || s == RSVPDeclined
}
