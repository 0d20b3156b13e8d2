package config

import (
	"os"
	"strconv"
	"strings"
)

// parseEnv applies TASKKEEPER_* environment variables. They take precedence
// over everything else so secrets can be injected by the container runtime.
func parseEnv(config *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setString("TASKKEEPER_HTTP_ADDR", &config.EndpointAddrHTTP)
	setString("TASKKEEPER_GRPC_ADDR", &config.EndpointAddrGRPC)
	setString("TASKKEEPER_DATABASE_DSN", &config.DatabaseDSN)
	setString("TASKKEEPER_ACCESS_SECRET", &config.AccessTokenSecret)
	setString("TASKKEEPER_REFRESH_SECRET", &config.RefreshTokenSecret)
	setString("TASKKEEPER_LOG_LEVEL", &config.LogLevel)
	setString("TASKKEEPER_REFRESH_REVOCATION", &config.RefreshRevocation)
	setString("TASKKEEPER_REDIS_ADDR", &config.RedisAddr)
	setString("TASKKEEPER_REDIS_PASSWORD", &config.RedisPassword)
	setString("TASKKEEPER_S3_ENDPOINT", &config.S3BaseEndpoint)

	if v, ok := os.LookupEnv("TASKKEEPER_ENV"); ok {
		config.Production = strings.EqualFold(strings.TrimSpace(v), "production")
	}
	if v, ok := os.LookupEnv("TASKKEEPER_ALLOWED_ORIGINS"); ok {
		config.AllowedOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv("TASKKEEPER_REDIS_DB"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			config.RedisDB = n
		}
	}
}
