package bootstrap

import (
	"fmt"

	"makao/pkg/config"
	"makao/pkg/redis"
)

// SetupRedis initializes the Redis instances.
func SetupRedis() {
	redis.InitRedis(
		fmt.Sprintf("%v:%v", config.GetString("redis.host"), config.GetString("redis.port")),
		config.GetString("redis.username"),
		config.GetString("redis.password"),
		config.GetInt("redis.database"),
		config.GetInt("redis.queue_database"),
	)
}
