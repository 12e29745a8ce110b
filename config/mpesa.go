package config

import "makao/pkg/config"

func init() {
	config.Add("mpesa", func() map[string]interface{} {
		return map[string]interface{}{
			"env":             config.Env("MPESA_ENV", "sandbox"),
			"consumer_key":    config.Env("MPESA_CONSUMER_KEY", ""),
			"consumer_secret": config.Env("MPESA_CONSUMER_SECRET", ""),

			"sandbox_url": config.Env("MPESA_SANDBOX_URL", "https://sandbox.safaricom.co.ke"),
			"live_url":    config.Env("MPESA_LIVE_URL", "https://api.safaricom.co.ke"),

			"shortcode": config.Env("MPESA_SHORTCODE", ""),
			"passkey":   config.Env("MPESA_PASSKEY", ""),

			// STK push result callback
			"callback_url": config.Env("MPESA_CALLBACK_URL", ""),

			// no gateway markup on STK push
			"fee_rate": config.Env("MPESA_FEE_RATE", "0"),
		}
	})
}
