package httpapi

import (
	"time"

	"github.com/lastmessage-app/server/internal/server/models"
)

type credentialsInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type settingsInput struct {
	CheckFrequencyDays int `json:"check_frequency_days"`
}

type settingsResponse struct {
	Email              string     `json:"email"`
	CheckFrequencyDays int        `json:"check_frequency_days"`
	LastCheckSent      *time.Time `json:"last_check_sent"`
	LastCheckConfirmed *time.Time `json:"last_check_confirmed"`
	MissedChecksCount  int        `json:"missed_checks_count"`
	IsDeceased         bool       `json:"is_deceased"`
	MessagesSent       bool       `json:"messages_sent"`
}

func newSettingsResponse(user *models.User) settingsResponse {
	return settingsResponse{
		Email:              user.Email,
		CheckFrequencyDays: user.CheckFrequencyDays,
		LastCheckSent:      user.LastCheckSent,
		LastCheckConfirmed: user.LastCheckConfirmed,
		MissedChecksCount:  user.MissedChecksCount,
		IsDeceased:         user.IsDeceased,
		MessagesSent:       user.MessagesSent,
	}
}

type messageInput struct {
	RecipientEmail string `json:"recipient_email"`
	Content        string `json:"content"`
}

type messageResponse struct {
	ID             string    `json:"id"`
	RecipientEmail string    `json:"recipient_email"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func newMessageResponse(m *models.Message) messageResponse {
	return messageResponse{
		ID:             m.ID,
		RecipientEmail: m.RecipientEmail,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

type passcodeInput struct {
	DeviceType     string `json:"device_type"`
	Passcode       string `json:"passcode"`
	RecipientEmail string `json:"recipient_email"`
}

type passcodeResponse struct {
	ID             string    `json:"id"`
	DeviceType     string    `json:"device_type"`
	Passcode       string    `json:"passcode"`
	RecipientEmail string    `json:"recipient_email"`
	CreatedAt      time.Time `json:"created_at"`
}

func newPasscodeResponse(p *models.Passcode) passcodeResponse {
	return passcodeResponse{
		ID:             p.ID,
		DeviceType:     p.DeviceType,
		Passcode:       p.Passcode,
		RecipientEmail: p.RecipientEmail,
		CreatedAt:      p.CreatedAt,
	}
}
