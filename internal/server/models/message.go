package models

import "time"

// Message is a final message for one recipient. Content is stored encrypted
// with the owner's derived key; RecipientEmail stays in plaintext so the
// release step can address the mail without decrypting anything else.
type Message struct {
	ID             string
	UserID         string
	RecipientEmail string
	// Content holds the ciphertext as stored; plaintext only ever exists
	// in memory on the owner's API path and during release.
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
