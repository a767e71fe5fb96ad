package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

type Config struct {
	LogLevel        string `env:"LOG_LEVEL,default=INFO"`
	BadgerFilepath  string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath   string `env:"BLUGE_FILEPATH,required=true"`
	Host            string `env:"HOST,default=0.0.0.0"`
	Port            int    `env:"PORT,default=8080"`
	GrpcPort        int    `env:"GRPC_PORT,default=9090"`
	DebugPort       int    `env:"DEBUG_PORT,default=8081"`
	BufferSize      int    `env:"BUFFER_SIZE,default=256"`
	NumberOfWorkers int    `env:"NUMBER_OF_WORKERS,default=4"`

	CharReplacement   string        `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
	ModerationPolicy  string        `env:"MODERATION_POLICY,default=strict"`
	InvocationTimeout time.Duration `env:"INVOCATION_TIMEOUT,default=5s"`
	MaxAttempts       int           `env:"MAX_ATTEMPTS,default=5"`
	RetryBackoff      time.Duration `env:"RETRY_BACKOFF,default=200ms"`

	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=1s"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=30s"`
	LowCapacityThreshold int           `env:"LOW_CAPACITY_THRESHOLD,default=10"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`

	DefaultFeedLimit  int           `env:"DEFAULT_FEED_LIMIT,default=25"`
	MaxFeedLimit      int           `env:"MAX_FEED_LIMIT,default=500"`
	MaxContentLength  int           `env:"MAX_CONTENT_LENGTH,default=2000"`
	AuthSecret        string        `env:"AUTH_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	AllowedOrigins    string        `env:"ALLOWED_ORIGINS"`
}

// LoadConfig reads an optional .env file, then the process environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return config, nil
}

// Origins splits ALLOWED_ORIGINS on commas. Empty means same-origin only.
func (c Config) Origins() []string {
	origins := lo.Map(strings.Split(c.AllowedOrigins, ","), func(o string, _ int) string {
		return strings.TrimSpace(o)
	})
	return lo.Compact(origins)
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"MODERATION_CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
