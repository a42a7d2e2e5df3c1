package models

import "time"

// Passcode is a device unlock code for one recipient, e.g. "iPhone" or
// "MacBook". Passcode is stored encrypted; DeviceType and RecipientEmail are
// plaintext.
type Passcode struct {
	ID             string
	UserID         string
	DeviceType     string
	Passcode       string
	RecipientEmail string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
