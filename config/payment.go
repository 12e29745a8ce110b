package config

import "makao/pkg/config"

func init() {
	config.Add("payment", func() map[string]interface{} {
		return map[string]interface{}{

			// default gateway used when a request does not name one
			"default_gateway": config.Env("PAYMENT_DEFAULT_GATEWAY", "pesapal"),

			// correlation entry lifetimes
			"correlation_ttl":              config.Env("PAYMENT_CORRELATION_TTL_SECONDS", 300),
			"correlation_registration_ttl": config.Env("PAYMENT_CORRELATION_REG_TTL_SECONDS", 1800),

			// stale pending payments older than this get swept
			"stale_after_minutes": config.Env("PAYMENT_STALE_AFTER_MINUTES", 60),
			"sweep_interval":      config.Env("PAYMENT_SWEEP_INTERVAL_MINUTES", 60),
			"sweep_grace_minutes": config.Env("PAYMENT_SWEEP_GRACE_MINUTES", 60),

			// rent reminder job
			"reminder_window_days":    config.Env("PAYMENT_REMINDER_WINDOW_DAYS", 3),
			"reminder_interval_hours": config.Env("PAYMENT_REMINDER_INTERVAL_HOURS", 24),

			// subscription billing period in days
			"billing_period_days": config.Env("PAYMENT_BILLING_PERIOD_DAYS", 30),

			// subscription plan catalog, prices in KES
			"plans": map[string]interface{}{
				"starter":      config.Env("PLAN_STARTER_PRICE", 2000),
				"basic":        config.Env("PLAN_BASIC_PRICE", 2500),
				"professional": config.Env("PLAN_PROFESSIONAL_PRICE", 4500),
				"onetime":      config.Env("PLAN_ONETIME_PRICE", 40000),
			},
		}
	})
}
