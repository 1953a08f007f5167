package mail

import "errors"

var (
	// ErrDisabled indicates no mail service URL is configured.
	ErrDisabled = errors.New("mail delivery is not configured")
	// ErrNoRecipients indicates a message resolved to an empty recipient list.
	ErrNoRecipients = errors.New("no mail recipients")
	// ErrInvalidURL indicates the service URL could not be parsed as an SMTP URL.
	ErrInvalidURL = errors.New("invalid mail service url")
	// ErrDelivery indicates the SMTP service rejected or failed the send.
	ErrDelivery = errors.New("mail delivery failed")
)
