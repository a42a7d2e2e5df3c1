package mailer

import (
	"fmt"
	"strings"
)

// AliveCheckEmail builds the scheduled liveness probe mail with its
// confirmation link.
func AliveCheckEmail(to, confirmationLink string) *Email {
	return &Email{
		To:      to,
		Subject: "Last Message - Alive Check",
		Text:    fmt.Sprintf("Please confirm you're still with us by clicking this link: %s", confirmationLink),
		HTML: fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		  <h2>Last Message - Alive Check</h2>
		  <p>This is your scheduled alive check from Last Message.</p>
		  <p>Please confirm you're still with us by clicking the button below:</p>
		  <p style="text-align: center;">
		    <a href="%[1]s" style="display: inline-block; background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">I'm Still Here</a>
		  </p>
		  <p>If you can't click the button, copy and paste this link into your browser:</p>
		  <p>%[1]s</p>
		  <p>If we don't hear from you after multiple attempts, your pre-configured messages will be sent to your designated recipients.</p>
		</div>`, confirmationLink),
	}
}

// FinalMessageEmail builds the released final message for one recipient.
// senderName is the deceased user's display identity (email local-part).
func FinalMessageEmail(to, senderName, content string) *Email {
	return &Email{
		To:       to,
		FromName: senderName,
		Subject:  fmt.Sprintf("A Final Message from %s", senderName),
		Text:     content,
		HTML: fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		  <h2>A Final Message from %s</h2>
		  <div style="padding: 20px; border: 1px solid #ddd; border-radius: 8px; margin: 20px 0;">
		    %s
		  </div>
		  <p style="color: #666; font-size: 12px;">This message was sent via Last Message service.</p>
		</div>`, senderName, strings.ReplaceAll(content, "\n", "<br>")),
	}
}

// PasscodeEmail builds the released device-access mail for one recipient.
func PasscodeEmail(to, senderName, deviceType, passcode string) *Email {
	return &Email{
		To:       to,
		FromName: senderName,
		Subject:  fmt.Sprintf("Device Access Information from %s", senderName),
		Text:     fmt.Sprintf("%s has shared access information for their %s. Passcode: %s", senderName, deviceType, passcode),
		HTML: fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		  <h2>Device Access Information from %s</h2>
		  <div style="padding: 20px; border: 1px solid #ddd; border-radius: 8px; margin: 20px 0;">
		    <p><strong>Device Type:</strong> %s</p>
		    <p><strong>Passcode:</strong> %s</p>
		  </div>
		  <p style="color: #666; font-size: 12px;">This information was sent via Last Message service.</p>
		</div>`, senderName, deviceType, passcode),
	}
}

// SenderName derives the display identity used on release mails from the
// user's email local-part.
func SenderName(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
