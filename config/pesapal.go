package config

import "makao/pkg/config"

func init() {
	config.Add("pesapal", func() map[string]interface{} {
		return map[string]interface{}{
			"env":             config.Env("PESAPAL_ENV", "sandbox"),
			"consumer_key":    config.Env("PESAPAL_CONSUMER_KEY", ""),
			"consumer_secret": config.Env("PESAPAL_CONSUMER_SECRET", ""),

			"sandbox_url": config.Env("PESAPAL_SANDBOX_URL", "https://cybqa.pesapal.com/pesapalv3"),
			"live_url":    config.Env("PESAPAL_LIVE_URL", "https://pay.pesapal.com/v3"),

			// IPN endpoint PesaPal calls back, registered once on startup
			"ipn_url": config.Env("PESAPAL_IPN_URL", ""),

			// where the hosted checkout redirects the payer afterwards
			"callback_url": config.Env("PESAPAL_CALLBACK_URL", ""),

			// PesaPal passes its processing fee on to the payer
			"fee_rate": config.Env("PESAPAL_FEE_RATE", "3.5"),
		}
	})
}
