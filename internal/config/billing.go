package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig carries the tunable checkout/webhook settings that ops can
// adjust without redeploying.
type BillingConfig struct {
	DefaultCurrency      string `mapstructure:"defaultCurrency"`
	SuccessPath          string `mapstructure:"successPath"`
	SubscriptionSuccess  string `mapstructure:"subscriptionSuccessPath"`
	CancelPath           string `mapstructure:"cancelPath"`
	SigningToleranceSecs int    `mapstructure:"signingToleranceSeconds"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		DefaultCurrency:      "usd",
		SuccessPath:          "/account/bookings?session_id={CHECKOUT_SESSION_ID}&success=true",
		SubscriptionSuccess:  "/account/subscriptions?session_id={CHECKOUT_SESSION_ID}&success=true",
		CancelPath:           "/book/%s?canceled=true",
		SigningToleranceSecs: 300,
	}
}

func (c BillingConfig) SigningTolerance() time.Duration {
	return time.Duration(c.SigningToleranceSecs) * time.Second
}

type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/mentorlane/config") // Volume-mounted config
	v.AddConfigPath("/etc/mentorlane")            // System config
	v.AddConfigPath(".")                          // Current directory (dev mode)

	v.SetEnvPrefix("MENTORLANE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultBillingConfig()
		v.SetDefault("billing.defaultCurrency", defaults.DefaultCurrency)
		v.SetDefault("billing.successPath", defaults.SuccessPath)
		v.SetDefault("billing.subscriptionSuccessPath", defaults.SubscriptionSuccess)
		v.SetDefault("billing.cancelPath", defaults.CancelPath)
		v.SetDefault("billing.signingToleranceSeconds", defaults.SigningToleranceSecs)
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		if err := validateBillingConfig(updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticBillingConfigHolder wraps a fixed config, used by tests.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

func (h *BillingConfigHolder) Store(cfg BillingConfig) {
	h.current.Store(cfg)
}

func validateBillingConfig(cfg BillingConfig) error {
	if strings.TrimSpace(cfg.DefaultCurrency) == "" {
		return errors.New("billing.defaultCurrency cannot be empty")
	}
	if cfg.SigningToleranceSecs <= 0 {
		return errors.New("billing.signingToleranceSeconds must be positive")
	}
	return nil
}
