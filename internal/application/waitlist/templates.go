package waitlist

import (
	"fmt"
	"time"
)

func verificationEmail(link string) (subject, html string) {
	subject = "Confirm your email to join the waitlist"
	html = fmt.Sprintf(`<div style="font-family: Arial; max-width: 600px; margin: 0 auto;">
  <h2>One more step</h2>
  <p>Click the button below to confirm your email address and secure your spot on the waitlist.</p>
  <p style="margin: 30px 0;">
    <a href="%s" style="background: #FF9A56; color: white; padding: 14px 36px; text-decoration: none; border-radius: 50px;">Confirm my email</a>
  </p>
  <p style="color: #888; font-size: 14px;">This link expires in 24 hours. If you didn't sign up, you can safely ignore this email.</p>
</div>`, link)
	return subject, html
}

func ownerNotification(email string, verifiedAt time.Time) (subject, html string) {
	subject = "New verified waitlist signup"
	html = fmt.Sprintf(`<div style="font-family: Arial; max-width: 600px; margin: 0 auto;">
  <h2>New verified signup</h2>
  <div style="background: #f9f9f9; padding: 20px; border-radius: 8px;">
    <p><strong>Email:</strong> %s</p>
    <p><strong>Verified at:</strong> %s</p>
  </div>
</div>`, email, verifiedAt.Format(time.RFC1123))
	return subject, html
}

func welcomeEmail(baseURL string) (subject, html string) {
	subject = "You're on the waitlist!"
	html = fmt.Sprintf(`<div style="font-family: Arial; max-width: 600px; margin: 0 auto; text-align: center;">
  <h1 style="color: #FF9A56;">You're in!</h1>
  <p>Thanks for confirming your email. You'll be among the first to hear from us as we get closer to launch.</p>
  <p style="margin: 30px 0;">
    <a href="%s" style="color: #FF9A56;">Visit our site</a>
  </p>
  <p style="color: #888; font-size: 14px;">Best,<br>The team</p>
</div>`, baseURL)
	return subject, html
}
