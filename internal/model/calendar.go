package model

import "time"

// CalendarEvent records a user's personal deadline entry, optionally linked
// to a benefit. Events are owner-scoped: every repository operation takes
// the owning user id and refuses to touch rows belonging to someone else.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – owning user.
//  BenefitID   – linked benefit, if the event was created from one (nullable).
//  Title       – short label shown in the calendar.
//  Memo        – free-form note.
//  StartsOn    – first day of the event.
//  EndsOn      – last day (nullable; single-day event when NULL).
//  NotifyEmail – whether a deadline reminder mail should be sent.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type CalendarEvent struct {
	ID          uint64     // calendar_events.id
	UserID      uint64     // calendar_events.user_id
	BenefitID   *uint64    // calendar_events.benefit_id (nullable)
	Title       string     // calendar_events.title
	Memo        string     // calendar_events.memo
	StartsOn    time.Time  // calendar_events.starts_on
	EndsOn      *time.Time // calendar_events.ends_on (nullable)
	NotifyEmail bool       // calendar_events.notify_email
	CreatedAt   time.Time  // calendar_events.created_at
	UpdatedAt   time.Time  // calendar_events.updated_at
}
