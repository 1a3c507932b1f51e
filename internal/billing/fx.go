package billing

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mentorlane/mentorlane/internal/billing/checkout"
	"github.com/mentorlane/mentorlane/internal/billing/domain"
	"github.com/mentorlane/mentorlane/internal/billing/reconcile"
	"github.com/mentorlane/mentorlane/internal/billing/stripe"
	"github.com/mentorlane/mentorlane/internal/billing/webhook"
	"github.com/mentorlane/mentorlane/internal/config"
)

var Module = fx.Module("billing.service",
	fx.Provide(func(cfg config.Config, log *zap.Logger) domain.ProviderClient {
		return stripe.NewClient(cfg.StripeSecretKey, log)
	}),
	fx.Provide(reconcile.New),
	fx.Provide(webhook.New),
	fx.Provide(checkout.New),
)
