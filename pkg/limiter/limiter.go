// Package limiter handles rate limiting logic.
package limiter

import (
	"fmt"
	"strconv"
	"strings"

	"makao/pkg/config"
	"makao/pkg/logger"
	"makao/pkg/redis"

	"github.com/gin-gonic/gin"
	limiterlib "github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// Rate parsed limit rate
type Rate struct {
	Rate float64
}

// ParseLimit parses a limit string.
// Supported formats: "5-S", "10-M", "1000-H", "2000-D"
func ParseLimit(limit string) (*Rate, error) {
	parts := strings.Split(limit, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid limit format: %s", limit)
	}

	count, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid limit count: %s", parts[0])
	}

	var perSecond float64
	switch strings.ToUpper(parts[1]) {
	case "S":
		perSecond = count
	case "M":
		perSecond = count / 60
	case "H":
		perSecond = count / 3600
	case "D":
		perSecond = count / 86400
	default:
		return nil, fmt.Errorf("invalid limit period: %s", parts[1])
	}

	return &Rate{Rate: perSecond}, nil
}

// GetKeyIP builds a limiter key from the client IP.
func GetKeyIP(c *gin.Context) string {
	return c.ClientIP()
}

// GetKeyRouteWithIP builds a limiter key from route plus IP.
func GetKeyRouteWithIP(c *gin.Context) string {
	return routeToKeyString(c.FullPath()) + c.ClientIP()
}

// CheckRate checks and consumes one request against the redis store.
func CheckRate(c *gin.Context, key string, formatted string) (limiterlib.Context, error) {
	var context limiterlib.Context
	rate, err := limiterlib.NewRateFromFormatted(formatted)
	if err != nil {
		logger.LogIf(err)
		return context, err
	}

	// share the application redis instance
	store, err := sredis.NewStoreWithOptions(redis.Redis.Client, limiterlib.StoreOptions{
		Prefix: config.GetString("app.name") + ":limiter",
	})
	if err != nil {
		logger.LogIf(err)
		return context, err
	}

	limiterObj := limiterlib.New(store, rate)

	if c.GetBool("limiter-once") {
		// Peek() reads without consuming
		return limiterObj.Peek(c, key)
	}

	// make sure nested route groups only count a request once
	c.Set("limiter-once", true)

	return limiterObj.Get(c, key)
}

func routeToKeyString(routeName string) string {
	routeName = strings.ReplaceAll(routeName, "/", "-")
	routeName = strings.ReplaceAll(routeName, ":", "_")
	return routeName
}
