package config

import "time"

// ServerConfig is the root configuration for respkv-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Keyspace KeyspaceSection `koanf:"keyspace"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Redis RedisConfig `koanf:"redis"`
	HTTP  HTTPConfig  `koanf:"http"`
	Local LocalConfig `koanf:"local"`
}

// RedisConfig configures the RESP protocol server.
type RedisConfig struct {
	Addr         string        `koanf:"addr" validate:"required,hostname_port"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"gte=0s"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gte=0s"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"gte=0s"`

	// RateLimit is commands per second per client IP. 0 disables it.
	RateLimit int `koanf:"rate_limit" validate:"gte=0"`

	// MaxArrayLen bounds the element count of one frame.
	MaxArrayLen int `koanf:"max_array_len" validate:"gte=1,lte=1048576"`
	// MaxLineLen bounds a single protocol line in bytes.
	MaxLineLen int `koanf:"max_line_len" validate:"gte=16,lte=536870912"`
}

// HTTPConfig configures the admin HTTP server (metrics and health).
type HTTPConfig struct {
	// Addr is empty to disable the admin server.
	Addr string `koanf:"addr" validate:"omitempty,hostname_port"`

	// AdminAllowList restricts /admin/v1 to these IPs or CIDRs.
	// Empty allows every peer.
	AdminAllowList []string `koanf:"admin_allow_list" validate:"dive,cidr|ip"`

	// AccessLog logs every admin request.
	AccessLog bool `koanf:"access_log"`
}

// LocalConfig configures the Unix socket listener.
type LocalConfig struct {
	// Socket is the socket file path. Empty disables the listener.
	Socket string `koanf:"socket" validate:"omitempty,max=104"`
	// SocketMode is the octal permission of the socket file, e.g. "0660".
	SocketMode string `koanf:"socket_mode" validate:"omitempty,octal_mode"`
}

// KeyspaceSection configures the in-memory key space.
type KeyspaceSection struct {
	// ShardCount is rounded up to a power of two.
	ShardCount int `koanf:"shard_count" validate:"gte=1,lte=65536"`

	// SweepInterval is the period of the background expiry sweep.
	// 0 leaves expired keys to be purged on read only.
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"gte=0s"`

	// SweepSample bounds entries visited per shard per sweep (0 = all).
	SweepSample int `koanf:"sweep_sample" validate:"gte=0"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json text"`
}
