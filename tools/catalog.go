package tools

import (
	"context"
	"math"
	"time"

	"github.com/spachava753/deskmcp/macos/calendar"
	"github.com/spachava753/deskmcp/macos/contacts"
	"github.com/spachava753/deskmcp/macos/messages"
	"github.com/spachava753/deskmcp/macos/notes"
	"github.com/spachava753/deskmcp/macos/reminders"
	"github.com/spachava753/deskmcp/render"
)

// Services are the domain services behind the tools.
type Services struct {
	Contacts  *contacts.Service
	Notes     *notes.Service
	Messages  *messages.Service
	Reminders *reminders.Service
	Calendar  *calendar.Service
}

// Catalog returns the five tools bound to s.
func Catalog(s Services) []Tool {
	return []Tool{
		contactsTool(s.Contacts),
		notesTool(s.Notes),
		messagesTool(s.Messages),
		remindersTool(s.Reminders),
		calendarTool(s.Calendar),
	}
}

// bind decodes validated values into a fresh In and calls run.
func bind[In any](run func(ctx context.Context, in In) (string, error)) Handler {
	return func(ctx context.Context, values Values) (string, error) {
		var in In
		if err := decode(values, &in); err != nil {
			return "", err
		}
		return run(ctx, in)
	}
}

// maxMinutes is the longest duration, in minutes, a time.Duration can hold.
const maxMinutes = float64(math.MaxInt64 / int64(time.Minute))

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

type contactsLookup struct {
	Name string `arg:"name"`
}

func contactsTool(svc *contacts.Service) Tool {
	return Tool{
		Name:        "contacts",
		Description: "Search and retrieve contacts from Apple Contacts app",
		DefaultOp:   "lookup",
		Operations: []Operation{{
			Name:        "lookup",
			Description: "Find contacts by name, or list all contacts when no name is given",
			Fields: []Field{
				{Name: "name", Kind: KindString, Description: "Name to search for (optional - if not provided, returns all contacts). Can be partial name to search."},
			},
			Run: bind(func(ctx context.Context, in contactsLookup) (string, error) {
				if in.Name == "" {
					list, err := svc.All(ctx)
					if err != nil {
						return "", err
					}
					return render.Contacts(list, ""), nil
				}
				list, err := svc.Find(ctx, in.Name)
				if err != nil {
					return "", err
				}
				return render.Contacts(list, in.Name), nil
			}),
		}},
	}
}

type notesLookup struct {
	SearchText string `arg:"searchText"`
}

type notesCreate struct {
	Title      string `arg:"title"`
	Body       string `arg:"body"`
	FolderName string `arg:"folderName"`
}

func notesTool(svc *notes.Service) Tool {
	return Tool{
		Name:        "notes",
		Description: "Search, retrieve and create notes in Apple Notes app",
		DefaultOp:   "lookup",
		Operations: []Operation{
			{
				Name:        "lookup",
				Description: "Find notes containing text, or list all notes when no text is given",
				Fields: []Field{
					{Name: "searchText", Kind: KindString, Description: "Text to search for in notes (optional - if not provided, returns all notes)"},
				},
				Run: bind(func(ctx context.Context, in notesLookup) (string, error) {
					if in.SearchText == "" {
						list, err := svc.All(ctx)
						if err != nil {
							return "", err
						}
						return render.Notes(list, ""), nil
					}
					list, err := svc.Find(ctx, in.SearchText)
					if err != nil {
						return "", err
					}
					return render.Notes(list, in.SearchText), nil
				}),
			},
			{
				Name:        "create",
				Description: "Create a note",
				Fields: []Field{
					{Name: "title", Kind: KindString, Required: true, Description: "Title of the note"},
					{Name: "body", Kind: KindString, Required: true, Description: "Content of the note"},
					{Name: "folderName", Kind: KindString, Description: "Folder to create the note in (optional - defaults to the configured notes folder)"},
				},
				Run: bind(func(ctx context.Context, in notesCreate) (string, error) {
					n, err := svc.Create(ctx, notes.Draft{Title: in.Title, Body: in.Body, Folder: in.FolderName})
					if err != nil {
						return "", err
					}
					return render.NoteCreated(n), nil
				}),
			},
		},
	}
}

type messagesSend struct {
	PhoneNumber string `arg:"phoneNumber"`
	Message     string `arg:"message"`
}

type messagesRead struct {
	PhoneNumber string `arg:"phoneNumber"`
	Limit       int    `arg:"limit"`
}

type messagesSchedule struct {
	PhoneNumber   string    `arg:"phoneNumber"`
	Message       string    `arg:"message"`
	ScheduledTime time.Time `arg:"scheduledTime"`
}

type messagesUnread struct {
	Limit int `arg:"limit"`
}

var (
	phoneField = Field{Name: "phoneNumber", Kind: KindString, Required: true, Description: "Phone number or email handle of the contact"}
	limitField = Field{Name: "limit", Kind: KindNumber, Description: "Number of messages to return (optional, default 10, max 50)"}
)

func messagesTool(svc *messages.Service) Tool {
	return Tool{
		Name:        "messages",
		Description: "Interact with Apple Messages app - send, read, schedule messages and check unread messages",
		Operations: []Operation{
			{
				Name:        "send",
				Description: "Send a message now",
				Fields: []Field{
					phoneField,
					{Name: "message", Kind: KindString, Required: true, Description: "Message text to send"},
				},
				Run: bind(func(ctx context.Context, in messagesSend) (string, error) {
					r, err := svc.Send(ctx, in.PhoneNumber, in.Message)
					if err != nil {
						return "", err
					}
					return render.Receipt(r), nil
				}),
			},
			{
				Name:        "read",
				Description: "Read recent messages with a contact",
				Fields:      []Field{phoneField, limitField},
				Run: bind(func(ctx context.Context, in messagesRead) (string, error) {
					list, err := svc.Read(ctx, in.PhoneNumber, in.Limit)
					if err != nil {
						return "", err
					}
					return render.Messages(list, "No messages found with "+in.PhoneNumber+"."), nil
				}),
			},
			{
				Name:        "schedule",
				Description: "Send a message at a later time",
				Fields: []Field{
					phoneField,
					{Name: "message", Kind: KindString, Required: true, Description: "Message text to send"},
					{Name: "scheduledTime", Kind: KindTime, Required: true, Description: "ISO 8601 time to send the message"},
				},
				Run: bind(func(ctx context.Context, in messagesSchedule) (string, error) {
					s, err := svc.Schedule(ctx, in.PhoneNumber, in.Message, in.ScheduledTime)
					if err != nil {
						return "", err
					}
					return render.Scheduled(s), nil
				}),
			},
			{
				Name:        "unread",
				Description: "List unread messages",
				Fields:      []Field{limitField},
				Run: bind(func(ctx context.Context, in messagesUnread) (string, error) {
					list, err := svc.Unread(ctx, in.Limit)
					if err != nil {
						return "", err
					}
					return render.Messages(list, "No unread messages."), nil
				}),
			},
		},
	}
}

type remindersFind struct {
	SearchText string `arg:"searchText"`
}

type remindersCreate struct {
	Title    string     `arg:"title"`
	Notes    string     `arg:"notes"`
	DueDate  *time.Time `arg:"dueDate"`
	ListName string     `arg:"listName"`
}

type remindersComplete struct {
	ID string `arg:"id"`
}

func remindersTool(svc *reminders.Service) Tool {
	return Tool{
		Name:        "reminders",
		Description: "Search, create, and complete reminders in Apple Reminders app",
		Operations: []Operation{
			{
				Name:        "list",
				Description: "List all reminders",
				Run: func(ctx context.Context, _ Values) (string, error) {
					list, err := svc.All(ctx)
					if err != nil {
						return "", err
					}
					return render.Reminders(list, ""), nil
				},
			},
			{
				Name:        "find",
				Description: "Find reminders whose title or notes contain text",
				Fields: []Field{
					{Name: "searchText", Kind: KindString, Required: true, Description: "Text to search for in reminders"},
				},
				Run: bind(func(ctx context.Context, in remindersFind) (string, error) {
					list, err := svc.Find(ctx, in.SearchText)
					if err != nil {
						return "", err
					}
					return render.Reminders(list, in.SearchText), nil
				}),
			},
			{
				Name:        "create",
				Description: "Create a reminder",
				Fields: []Field{
					{Name: "title", Kind: KindString, Required: true, Description: "Title of the reminder"},
					{Name: "notes", Kind: KindString, Description: "Additional notes for the reminder"},
					{Name: "dueDate", Kind: KindTime, Description: "Due date for the reminder in ISO format"},
					{Name: "listName", Kind: KindString, Description: "Reminder list to add to (optional - defaults to the configured list)"},
				},
				Run: bind(func(ctx context.Context, in remindersCreate) (string, error) {
					r, err := svc.Create(ctx, reminders.Draft{Title: in.Title, Notes: in.Notes, DueDate: in.DueDate, ListName: in.ListName})
					if err != nil {
						return "", err
					}
					return render.ReminderCreated(r), nil
				}),
			},
			{
				Name:        "complete",
				Description: "Mark a reminder as completed",
				Fields: []Field{
					{Name: "id", Kind: KindString, Required: true, Description: "ID of the reminder to complete"},
				},
				Run: bind(func(ctx context.Context, in remindersComplete) (string, error) {
					r, err := svc.Complete(ctx, in.ID)
					if err != nil {
						return "", err
					}
					return render.ReminderCompleted(r), nil
				}),
			},
		},
	}
}

type calendarList struct {
	FromDate time.Time `arg:"fromDate"`
	ToDate   time.Time `arg:"toDate"`
}

type calendarFind struct {
	SearchText string    `arg:"searchText"`
	StartDate  time.Time `arg:"startDate"`
	EndDate    time.Time `arg:"endDate"`
}

type calendarCreate struct {
	Title        string    `arg:"title"`
	StartDate    time.Time `arg:"startDate"`
	Duration     float64   `arg:"duration"`
	Description  string    `arg:"description"`
	Location     string    `arg:"location"`
	CalendarName string    `arg:"calendarName"`
}

func calendarTool(svc *calendar.Service) Tool {
	return Tool{
		Name:        "calendar",
		Description: "Search, create, and list events in Apple Calendar app",
		Operations: []Operation{
			{
				Name:        "list",
				Description: "List upcoming events, by default for the next 7 days",
				Fields: []Field{
					{Name: "fromDate", Kind: KindTime, Description: "Start of the window in ISO format (optional - defaults to now)"},
					{Name: "toDate", Kind: KindEndTime, Description: "End of the window in ISO format (optional - defaults to 7 days after fromDate)"},
				},
				Run: bind(func(ctx context.Context, in calendarList) (string, error) {
					list, err := svc.List(ctx, in.FromDate, in.ToDate)
					if err != nil {
						return "", err
					}
					return render.Events(list, "No upcoming events found."), nil
				}),
			},
			{
				Name:        "find",
				Description: "Find events containing text, optionally within a date range",
				Fields: []Field{
					{Name: "searchText", Kind: KindString, Required: true, Description: "Text to search for in event titles, notes, and locations"},
					{Name: "startDate", Kind: KindTime, Description: "Start of the search range in ISO format"},
					{Name: "endDate", Kind: KindEndTime, Description: "End of the search range in ISO format"},
				},
				Run: bind(func(ctx context.Context, in calendarFind) (string, error) {
					list, err := svc.Find(ctx, in.SearchText, in.StartDate, in.EndDate)
					if err != nil {
						return "", err
					}
					return render.Events(list, "No events found matching \""+in.SearchText+"\"."), nil
				}),
			},
			{
				Name:        "create",
				Description: "Create an event",
				Fields: []Field{
					{Name: "title", Kind: KindString, Required: true, Description: "Title of the event"},
					{Name: "startDate", Kind: KindTime, Required: true, Description: "Start time of the event in ISO format"},
					{Name: "duration", Kind: KindNumber, Required: true, Max: maxMinutes, Description: "Duration of the event in minutes"},
					{Name: "description", Kind: KindString, Description: "Notes for the event"},
					{Name: "location", Kind: KindString, Description: "Location of the event"},
					{Name: "calendarName", Kind: KindString, Description: "Calendar to add the event to (optional - defaults to the configured calendar)"},
				},
				Run: bind(func(ctx context.Context, in calendarCreate) (string, error) {
					e, err := svc.Create(ctx, calendar.Draft{
						Title:        in.Title,
						Start:        in.StartDate,
						Duration:     minutes(in.Duration),
						Description:  in.Description,
						Location:     in.Location,
						CalendarName: in.CalendarName,
					})
					if err != nil {
						return "", err
					}
					return render.EventCreated(e), nil
				}),
			},
		},
	}
}
