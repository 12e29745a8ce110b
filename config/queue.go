package config

import "makao/pkg/config"

func init() {
	config.Add("queue", func() map[string]interface{} {
		return map[string]interface{}{
			// enqueue throughput bounds
			"rate_limit": config.Env("QUEUE_RATE_LIMIT", 1000),
			"rate_burst": config.Env("QUEUE_RATE_BURST", 1000),

			// delivery workers
			"worker_count": config.Env("QUEUE_WORKER_COUNT", 4),
			"retry_times":  config.Env("QUEUE_RETRY_TIMES", 3),
			"retry_delay":  config.Env("QUEUE_RETRY_DELAY_SECONDS", 5),
		}
	})
}
