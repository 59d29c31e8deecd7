// Package queue defines message payloads exchanged over the message broker
// and the background consumer that delivers them.
package queue

// MailRequestedEvent is published whenever the application wants an email
// sent: a user-triggered send, the post-onboarding welcome and calendar
// deadline reminders. The consumer renders the named template and delivers
// the result over SMTP; carrying the parameters instead of a rendered body
// keeps the payload small and the templates in one place.
type MailRequestedEvent struct {
	MessageID   string `json:"message_id"` // uuid, for log correlation
	To          string `json:"to"`
	Kind        string `json:"kind"` // welcome | deadline | generic
	Subject     string `json:"subject,omitempty"`
	Body        string `json:"body,omitempty"`
	Name        string `json:"name,omitempty"`       // welcome
	Title       string `json:"title,omitempty"`      // deadline: benefit title
	DueDate     string `json:"due_date,omitempty"`   // deadline
	DetailURL   string `json:"detail_url,omitempty"` // deadline
	RequestedBy uint64 `json:"requested_by"`
	RequestedAt string `json:"requested_at"`
}
