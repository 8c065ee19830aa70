package messages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/spachava753/deskmcp/access"
	"github.com/spachava753/deskmcp/fault"
	"github.com/spachava753/deskmcp/macos/bridge"
	"github.com/spachava753/deskmcp/schedule"
)

const domain = bridge.DomainMessages

const (
	// DefaultLimit is used by Read and Unread when no limit is given.
	DefaultLimit = 10
	// MaxLimit caps the number of messages returned by Read and Unread.
	MaxLimit = 50
)

// Message is one message row from the local Messages database.
type Message struct {
	RowID          int64
	GUID           string
	Text           string
	IsFromMe       bool
	IsRead         bool
	SentAt         time.Time
	Handle         string
	ContactName    string
	ChatIdentifier string
	Service        string
}

// Receipt confirms a sent message.
type Receipt struct {
	PhoneNumber string
	Message     string
	SentAt      time.Time
}

// Scheduled describes a message queued for later delivery.
type Scheduled struct {
	ID            string
	PhoneNumber   string
	Message       string
	ScheduledTime time.Time
}

// Backend reads and sends messages.
type Backend interface {
	Probe(ctx context.Context) error
	Send(ctx context.Context, phone string, body string) error
	Read(ctx context.Context, phone string, limit int) ([]Message, error)
	Unread(ctx context.Context, limit int) ([]Message, error)
}

// Scheduler runs a job once at a given time.
type Scheduler interface {
	At(t time.Time, label string, job schedule.Job) (schedule.Entry, error)
}

// Service implements the messages operations.
type Service struct {
	backend   Backend
	gate      access.Checker
	scheduler Scheduler
	now       func() time.Time
	logger    zerolog.Logger
}

// New returns a Service. scheduler may be nil, in which case Schedule fails.
func New(backend Backend, gate access.Checker, scheduler Scheduler, logger zerolog.Logger) *Service {
	return &Service{
		backend:   backend,
		gate:      gate,
		scheduler: scheduler,
		now:       time.Now,
		logger:    logger.With().Str("domain", string(domain)).Logger(),
	}
}

// Send delivers body to phone immediately.
func (s *Service) Send(ctx context.Context, phone string, body string) (Receipt, error) {
	if err := s.gate.Check(ctx, domain); err != nil {
		return Receipt{}, err
	}
	phone, body, err := checkTarget(phone, body)
	if err != nil {
		return Receipt{}, err
	}
	if err := s.backend.Send(ctx, phone, body); err != nil {
		return Receipt{}, fault.Wrap(err, fault.KindCreateFailed, string(domain), fmt.Sprintf("sending to %s failed", phone))
	}
	s.logger.Info().Str("phone", phone).Msg("message sent")
	return Receipt{PhoneNumber: phone, Message: body, SentAt: s.now()}, nil
}

// Read returns the most recent messages exchanged with phone, newest first.
func (s *Service) Read(ctx context.Context, phone string, limit int) ([]Message, error) {
	if err := s.gate.Check(ctx, domain); err != nil {
		return nil, err
	}
	phone = normalizeHandleForSend(phone)
	if !looksLikeHandle(phone) {
		return nil, fault.Validation("phoneNumber", "phone number %q is not a phone number or email handle", phone)
	}
	msgs, err := s.backend.Read(ctx, phone, clampLimit(limit))
	if err != nil {
		return nil, fault.Wrap(err, fault.KindDomainAccess, string(domain), "reading messages failed")
	}
	return msgs, nil
}

// Unread returns unread inbound messages across every conversation.
func (s *Service) Unread(ctx context.Context, limit int) ([]Message, error) {
	if err := s.gate.Check(ctx, domain); err != nil {
		return nil, err
	}
	msgs, err := s.backend.Unread(ctx, clampLimit(limit))
	if err != nil {
		return nil, fault.Wrap(err, fault.KindDomainAccess, string(domain), "reading unread messages failed")
	}
	return msgs, nil
}

// Schedule queues body for delivery to phone at at. Queued messages live in
// process memory and are lost when the server exits.
func (s *Service) Schedule(ctx context.Context, phone string, body string, at time.Time) (Scheduled, error) {
	if err := s.gate.Check(ctx, domain); err != nil {
		return Scheduled{}, err
	}
	phone, body, err := checkTarget(phone, body)
	if err != nil {
		return Scheduled{}, err
	}
	if !at.After(s.now()) {
		return Scheduled{}, fault.Validation("scheduledTime", "scheduled time %s is not in the future", at.Format(time.RFC3339))
	}
	if s.scheduler == nil {
		return Scheduled{}, &fault.Error{Kind: fault.KindCreateFailed, Domain: string(domain), Message: "scheduling is not available"}
	}

	logger := s.logger.With().Str("phone", phone).Logger()
	entry, err := s.scheduler.At(at, "message to "+phone, func(ctx context.Context) {
		if err := s.backend.Send(ctx, phone, body); err != nil {
			logger.Error().Err(err).Msg("scheduled send failed")
			return
		}
		logger.Info().Msg("scheduled message sent")
	})
	if errors.Is(err, schedule.ErrPast) {
		return Scheduled{}, fault.Validation("scheduledTime", "scheduled time %s is not in the future", at.Format(time.RFC3339))
	}
	if err != nil {
		return Scheduled{}, fault.Wrap(err, fault.KindCreateFailed, string(domain), "scheduling message failed")
	}
	logger.Info().Str("id", entry.ID).Time("at", at).Msg("message scheduled")
	return Scheduled{ID: entry.ID, PhoneNumber: phone, Message: body, ScheduledTime: at}, nil
}

func checkTarget(phone string, body string) (string, string, error) {
	phone = normalizeHandleForSend(phone)
	if !looksLikeHandle(phone) {
		return "", "", fault.Validation("phoneNumber", "phone number %q is not a phone number or email handle", phone)
	}
	if strings.TrimSpace(body) == "" {
		return "", "", fault.Validation("message", "message must not be empty")
	}
	return phone, body, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
