package config

import "makao/pkg/config"

func init() {
	config.Add("app", func() map[string]interface{} {
		return map[string]interface{}{

			// application name
			"name": config.Env("APP_NAME", "Makao"),

			// current environment: local, stage, production, testing
			"env": config.Env("APP_ENV", "production"),

			// debug mode
			"debug": config.Env("APP_DEBUG", false),

			// HTTP port
			"port": config.Env("APP_PORT", "3000"),

			// public base URL, used to build gateway callback URLs
			"url": config.Env("APP_URL", "http://localhost:3000"),

			// frontend base URL, used for post-payment redirects
			"frontend_url": config.Env("FRONTEND_URL", "http://localhost:5173"),

			// timezone used in logs and rent due calculations
			"timezone": config.Env("TIMEZONE", "Africa/Nairobi"),
		}
	})
}
