package config

import "makao/pkg/config"

func init() {
	config.Add("mail", func() map[string]interface{} {
		return map[string]interface{}{
			"host":     config.Env("MAIL_HOST", "smtp.gmail.com"),
			"port":     config.Env("MAIL_PORT", 587),
			"username": config.Env("MAIL_USERNAME", ""),
			"password": config.Env("MAIL_PASSWORD", ""),
			"from":     config.Env("MAIL_FROM", "no-reply@makao.co.ke"),
		}
	})
}
