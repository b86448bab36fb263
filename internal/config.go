package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT,default=6001"`

	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	DefaultGroup  string `env:"DEFAULT_GROUP,default=General"`
	GroupCapacity int    `env:"GROUP_CAPACITY,default=5"`

	EventBufferSize     int `env:"EVENT_BUFFER_SIZE,default=1024"`
	TelemetryBufferSize int `env:"TELEMETRY_BUFFER_SIZE,default=256"`

	HeartbeatInterval    time.Duration `env:"HEARTBEAT_INTERVAL,default=5s"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=10s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	LowCapacityThreshold int           `env:"LOW_CAPACITY_THRESHOLD,default=16"`
	TimelineLimit        int           `env:"TIMELINE_LIMIT,default=100"`

	EnableModeration bool   `env:"ENABLE_MODERATION,default=false"`
	CharReplacement  string `env:"CHARACTER_REPLACEMENT,default=*"`

	// 0 disables the debug inspect server
	DebugPort int `env:"DEBUG_PORT,default=0"`
}

func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
