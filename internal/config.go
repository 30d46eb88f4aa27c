package internal

import "time"

type Config struct {
	Host              string        `env:"HOST"`
	Port              int           `env:"PORT,required=true"`
	LogLevel          string        `env:"LOG_LEVEL,required=true"`
	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`
	TokenCookieName   string        `env:"TOKEN_COOKIE_NAME,default=jwt"`
	AllowedOrigin     string        `env:"ALLOWED_ORIGIN,required=true"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	// Realtime tuning. SessionBufferSize bounds the per-connection outbound
	// queue; a full queue drops the push instead of blocking the pipeline.
	SessionBufferSize int           `env:"SESSION_BUFFER_SIZE,default=32"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	LimitMessages     *int          `env:"LIMIT_MESSAGES"`

	CharReplacement string        `env:"CHARACTER_REPLACEMENT,default=*"`
	GCInterval      time.Duration `env:"BADGER_GC_INTERVAL,default=5m"`
	FlushInterval   time.Duration `env:"INDEX_FLUSH_INTERVAL,default=2s"`
	ReportInterval  time.Duration `env:"REPORT_INTERVAL,default=1m"`
}
