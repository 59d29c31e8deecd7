package mail

import "fmt"

// Template kinds accepted by POST /mail/send and the queue consumer.
const (
	KindWelcome  = "welcome"
	KindDeadline = "deadline"
	KindGeneric  = "generic"
)

// Welcome returns the subject and body of the post-onboarding greeting.
func Welcome(name string) (subject, html string) {
	if name == "" {
		name = "there"
	}
	subject = "Welcome to BenefitMap"
	html = fmt.Sprintf(`<div style="font-family:system-ui,Segoe UI,Roboto;">
  <h2>Welcome, %s!</h2>
  <p>Your profile is set up. We will match new benefit programmes against it
  and surface the ones you can apply for.</p>
  <p style="color:#888;font-size:12px;margin-top:18px;">You are receiving this
  mail because of your BenefitMap notification settings.</p>
</div>`, name)
	return subject, html
}

// DeadlineReminder returns the D-3 application-deadline notification for a
// benefit programme.
func DeadlineReminder(title, dueDate, detailURL string) (subject, html string) {
	subject = fmt.Sprintf("Application deadline approaching: %s", title)
	html = fmt.Sprintf(`<div style="font-family:system-ui,Segoe UI,Roboto;">
  <h2>Deadline reminder</h2>
  <p>Applications for <b>%s</b> close in <b>3 days</b>.</p>
  <p>Deadline: %s</p>
  <a href="%s" style="display:inline-block;padding:10px 14px;border:1px solid #ddd;border-radius:8px;text-decoration:none">
    View details
  </a>
  <p style="color:#888;font-size:12px;margin-top:18px;">You are receiving this
  mail because of your BenefitMap notification settings.</p>
</div>`, title, dueDate, detailURL)
	return subject, html
}

// Generic wraps a free-form subject and body in the standard frame.
func Generic(subject, body string) (string, string) {
	html := fmt.Sprintf(`<div style="font-family:system-ui,Segoe UI,Roboto;">
  <p>%s</p>
  <p style="color:#888;font-size:12px;margin-top:18px;">Sent via BenefitMap.</p>
</div>`, body)
	return subject, html
}
