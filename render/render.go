// Package render turns typed tool results into the text returned to the
// client. Functions here are pure.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/spachava753/deskmcp/macos/calendar"
	"github.com/spachava753/deskmcp/macos/contacts"
	"github.com/spachava753/deskmcp/macos/messages"
	"github.com/spachava753/deskmcp/macos/notes"
	"github.com/spachava753/deskmcp/macos/reminders"
)

const timeLayout = "Mon Jan 2, 2006 3:04 PM MST"

// notePreview bounds the note body shown in listings.
const notePreview = 200

func stamp(t time.Time) string {
	return t.Local().Format(timeLayout)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Contacts lists contacts with their phone numbers and emails. query is the
// name searched for, or empty for a full listing.
func Contacts(list []contacts.Contact, query string) string {
	if len(list) == 0 {
		if query != "" {
			return fmt.Sprintf("No contacts found matching %q.", query)
		}
		return "No contacts found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %s:\n", plural(len(list), "contact"))
	for _, c := range list {
		fmt.Fprintf(&b, "\n%s", c.Name)
		if c.Organization != "" {
			fmt.Fprintf(&b, " (%s)", c.Organization)
		}
		b.WriteString("\n")
		if len(c.Phones) > 0 {
			fmt.Fprintf(&b, "  Phone: %s\n", strings.Join(c.Phones, ", "))
		}
		if len(c.Emails) > 0 {
			fmt.Fprintf(&b, "  Email: %s\n", strings.Join(c.Emails, ", "))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Notes lists notes with a preview of each body.
func Notes(list []notes.Note, query string) string {
	if len(list) == 0 {
		if query != "" {
			return fmt.Sprintf("No notes found matching %q.", query)
		}
		return "No notes found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %s:\n", plural(len(list), "note"))
	for _, n := range list {
		fmt.Fprintf(&b, "\n%s", n.Title)
		if n.Folder != "" {
			fmt.Fprintf(&b, " [%s]", n.Folder)
		}
		b.WriteString("\n")
		if !n.ModifiedAt.IsZero() {
			fmt.Fprintf(&b, "  Modified: %s\n", stamp(n.ModifiedAt))
		}
		if body := truncate(n.Body, notePreview); body != "" {
			fmt.Fprintf(&b, "  %s\n", strings.ReplaceAll(body, "\n", "\n  "))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// NoteCreated confirms a created note.
func NoteCreated(n notes.Note) string {
	return fmt.Sprintf("Created note %q in folder %q.", n.Title, n.Folder)
}

// Messages lists messages, newest first as given.
func Messages(list []messages.Message, empty string) string {
	if len(list) == 0 {
		return empty
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %s:\n", plural(len(list), "message"))
	for _, m := range list {
		sender := m.ContactName
		if sender == "" {
			sender = m.Handle
		}
		if m.IsFromMe {
			sender = "Me"
		}
		text := m.Text
		if strings.TrimSpace(text) == "" {
			text = "[no text]"
		}
		fmt.Fprintf(&b, "\n[%s] %s: %s", stamp(m.SentAt), sender, text)
		if !m.IsFromMe && !m.IsRead {
			b.WriteString(" (unread)")
		}
	}
	return b.String()
}

// Receipt confirms a sent message.
func Receipt(r messages.Receipt) string {
	return fmt.Sprintf("Message sent to %s.", r.PhoneNumber)
}

// Scheduled confirms a queued message.
func Scheduled(s messages.Scheduled) string {
	return fmt.Sprintf("Message to %s scheduled for %s (id %s). Scheduled messages are kept in memory and are lost if the server stops.",
		s.PhoneNumber, stamp(s.ScheduledTime), s.ID)
}

func reminderLine(b *strings.Builder, r reminders.Reminder) {
	box := "[ ]"
	if r.IsCompleted {
		box = "[x]"
	}
	fmt.Fprintf(b, "\n%s %s", box, r.Title)
	if r.ListName != "" {
		fmt.Fprintf(b, " (%s)", r.ListName)
	}
	fmt.Fprintf(b, "\n  ID: %s\n", r.ID)
	if r.DueDate != nil && !r.DueDate.IsZero() {
		fmt.Fprintf(b, "  Due: %s\n", stamp(*r.DueDate))
	}
	if text := strings.TrimSpace(r.Notes); text != "" {
		fmt.Fprintf(b, "  Notes: %s\n", text)
	}
}

// Reminders lists reminders.
func Reminders(list []reminders.Reminder, query string) string {
	if len(list) == 0 {
		if query != "" {
			return fmt.Sprintf("No reminders found matching %q.", query)
		}
		return "No reminders found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %s:\n", plural(len(list), "reminder"))
	for _, r := range list {
		reminderLine(&b, r)
	}
	return strings.TrimRight(b.String(), "\n")
}

// ReminderCreated confirms a created reminder.
func ReminderCreated(r reminders.Reminder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Created reminder %q in list %q.", r.Title, r.ListName)
	fmt.Fprintf(&b, "\nID: %s", r.ID)
	if r.DueDate != nil && !r.DueDate.IsZero() {
		fmt.Fprintf(&b, "\nDue: %s", stamp(*r.DueDate))
	}
	return b.String()
}

// ReminderCompleted confirms a completed reminder.
func ReminderCompleted(r reminders.Reminder) string {
	return fmt.Sprintf("Marked reminder %q as completed.", r.Title)
}

func eventLine(b *strings.Builder, e calendar.Event) {
	fmt.Fprintf(b, "\n%s", e.Title)
	if e.CalendarName != "" {
		fmt.Fprintf(b, " (%s)", e.CalendarName)
	}
	b.WriteString("\n")
	if e.IsAllDay {
		fmt.Fprintf(b, "  When: %s, all day\n", e.StartDate.Local().Format("Mon Jan 2, 2006"))
	} else {
		fmt.Fprintf(b, "  When: %s - %s\n", stamp(e.StartDate), stamp(e.EndDate))
	}
	if e.Location != "" {
		fmt.Fprintf(b, "  Location: %s\n", e.Location)
	}
	if text := strings.TrimSpace(e.Notes); text != "" {
		fmt.Fprintf(b, "  Notes: %s\n", truncate(text, notePreview))
	}
	fmt.Fprintf(b, "  ID: %s\n", e.ID)
}

// Events lists calendar events.
func Events(list []calendar.Event, empty string) string {
	if len(list) == 0 {
		return empty
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %s:\n", plural(len(list), "event"))
	for _, e := range list {
		eventLine(&b, e)
	}
	return strings.TrimRight(b.String(), "\n")
}

// EventCreated confirms a created event.
func EventCreated(e calendar.Event) string {
	return fmt.Sprintf("Created event %q in calendar %q from %s to %s.\nID: %s",
		e.Title, e.CalendarName, stamp(e.StartDate), stamp(e.EndDate), e.ID)
}
