package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/spachava753/deskmcp/access"
	"github.com/spachava753/deskmcp/internal/config"
	"github.com/spachava753/deskmcp/internal/logx"
	"github.com/spachava753/deskmcp/internal/telemetry"
	"github.com/spachava753/deskmcp/macos/bridge"
	"github.com/spachava753/deskmcp/macos/calendar"
	"github.com/spachava753/deskmcp/macos/contacts"
	"github.com/spachava753/deskmcp/macos/messages"
	"github.com/spachava753/deskmcp/macos/notes"
	"github.com/spachava753/deskmcp/macos/reminders"
	"github.com/spachava753/deskmcp/schedule"
	"github.com/spachava753/deskmcp/tools"
)

// app is the wired process: configuration, logger, and the dispatcher over
// the five domain services.
type app struct {
	conf       *config.App
	logger     zerolog.Logger
	dispatcher *tools.Dispatcher
	scheduler  *schedule.Scheduler
	shutdown   func(context.Context) error
}

func newApp(cmd *cobra.Command) (*app, error) {
	envFile, _ := cmd.Flags().GetString("env")
	conf, err := config.New[config.App](config.Prefix, envFile)
	if err != nil {
		return nil, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		conf.Debug = true
	}
	logger := logx.New(conf.Config)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    conf.OTLPEndpoint,
		ServiceName: "deskmcp",
		Version:     version,
	})
	if err != nil {
		return nil, err
	}
	observer, err := telemetry.Global()
	if err != nil {
		return nil, errors.Join(err, shutdown(ctx))
	}

	b := bridge.NewOSAScript(nil)
	people := contacts.NewBridge(b)
	local := messages.NewLocal(conf.MessagesDB)
	gate := access.NewGate(access.Router{
		Default: b,
		Routes: map[bridge.Domain]access.Prober{
			bridge.DomainContacts: people,
			bridge.DomainMessages: access.ProberFunc(func(ctx context.Context, _ bridge.Domain) error {
				return local.Probe(ctx)
			}),
		},
	}, logger)
	sched := schedule.New(logger)

	catalog := tools.Catalog(tools.Services{
		Contacts:  contacts.New(people, gate, logger),
		Notes:     notes.New(b, gate, conf.NotesFolder, logger),
		Messages:  messages.New(local, gate, sched, logger),
		Reminders: reminders.New(b, gate, conf.ReminderList, logger),
		Calendar:  calendar.New(b, gate, conf.Calendar, logger),
	})

	return &app{
		conf:       conf,
		logger:     logger,
		dispatcher: tools.NewDispatcher(tools.NewRouter(catalog...), observer, logger),
		scheduler:  sched,
		shutdown:   shutdown,
	}, nil
}

// close stops the scheduler and flushes telemetry.
func (a *app) close(ctx context.Context) {
	if pending := a.scheduler.Pending(); len(pending) > 0 {
		a.logger.Warn().Int("pending", len(pending)).Msg("discarding scheduled messages")
	}
	a.scheduler.Stop()
	if err := a.shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("telemetry shutdown failed")
	}
}
