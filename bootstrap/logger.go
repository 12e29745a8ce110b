package bootstrap

import (
	"makao/pkg/config"
	"makao/pkg/logger"
)

// SetupLogger initializes the logging system from configuration.
func SetupLogger() {
	logger.InitLogger(
		config.GetString("log.filename"),
		config.GetInt("log.max_size"),
		config.GetInt("log.max_backup"),
		config.GetInt("log.max_age"),
		config.GetBool("log.compress"),
		config.GetString("log.type"),
		config.GetString("log.level"),
	)
}
