package bootstrap

import (
	"context"

	"commerce-core/internal/infra/notifier"
	"commerce-core/internal/pkg/config"
	"commerce-core/internal/usecase/shared"

	"go.uber.org/fx"
)

var NotifierModule = fx.Module("notifier",
	fx.Provide(
		fx.Annotate(
			notifier.NewEmailSender,
			fx.As(new(notifier.EmailChannel)),
		),
		fx.Annotate(
			notifier.NewSMSSender,
			fx.As(new(notifier.SMSChannel)),
		),
		NewDispatcher,
	),
	fx.Invoke(startDispatcher),
)

func NewDispatcher(uow shared.UnitOfWork, email notifier.EmailChannel, sms notifier.SMSChannel, cfg config.NotifyConfig) *notifier.Dispatcher {
	return notifier.NewDispatcher(uow, email, sms, cfg.PollInterval)
}

func startDispatcher(lc fx.Lifecycle, dispatcher *notifier.Dispatcher) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go dispatcher.Run(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}
