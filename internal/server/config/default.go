package config

import "time"

// Default configuration values.
const (
	DefaultRedisAddr    = "127.0.0.1:6379"
	DefaultHTTPAddr     = "127.0.0.1:9121"
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultIdleTimeout  = 5 * time.Minute
	DefaultMaxArrayLen  = 1024
	DefaultMaxLineLen   = 512 * 1024
	DefaultSocketMode   = "0600"

	DefaultShardCount    = 16
	DefaultSweepInterval = time.Second
	DefaultSweepSample   = 64

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Redis: RedisConfig{
				Addr:         DefaultRedisAddr,
				ReadTimeout:  DefaultReadTimeout,
				WriteTimeout: DefaultWriteTimeout,
				IdleTimeout:  DefaultIdleTimeout,
				MaxArrayLen:  DefaultMaxArrayLen,
				MaxLineLen:   DefaultMaxLineLen,
			},
			HTTP: HTTPConfig{
				Addr:           DefaultHTTPAddr,
				AdminAllowList: []string{"127.0.0.1", "::1"},
			},
			Local: LocalConfig{
				SocketMode: DefaultSocketMode,
			},
		},
		Keyspace: KeyspaceSection{
			ShardCount:    DefaultShardCount,
			SweepInterval: DefaultSweepInterval,
			SweepSample:   DefaultSweepSample,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
