package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/jrsteele09/go-jwt-server/internal/errors"
	"github.com/jrsteele09/go-jwt-server/token/jwt"
	"github.com/jrsteele09/go-jwt-server/token/keys"
)

type Config interface {
	EnvConfig
	JWTConfig
	StoreConfig
	CorsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetUsersFile() string
	IsDev() bool
}

type JWTConfig interface {
	GetAccessSecret() string
	GetRefreshSecret() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
}

type StoreConfig interface {
	GetRefreshStore() StoreKind
	GetRedisAddr() string
	GetRefreshKeyPrefix() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// Settings is the raw environment, decoded with envdecode
type Settings struct {
	Port       string `env:"PORT,default=8080"`
	AppName    string `env:"APP_NAME,default=Go JWT Server"`
	Env        string `env:"ENV,default=DEV"`
	LogLevel   string `env:"LOG_LEVEL,default=info"`
	DataFolder string `env:"FOLDER,default=./data"`
	UsersFile  string `env:"USERS_FILE"`

	AccessSecret    string        `env:"JWT_SECRET_ACCESS,required"`
	RefreshSecret   string        `env:"JWT_SECRET_REFRESH,required"`
	AccessTokenTTL  time.Duration `env:"JWT_ACCESS_TTL,default=5m"`
	RefreshTokenTTL time.Duration `env:"JWT_REFRESH_TTL,default=720h"`

	RefreshStore     string `env:"REFRESH_STORE,default=memory"`
	RedisAddr        string `env:"REDIS_ADDR,default=localhost:6379"`
	RefreshKeyPrefix string `env:"REFRESH_KEY_PREFIX,default=jwt:refresh:"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
}

type mainConfig struct {
	EnvVars
	JWT
	Store
	Cors
}

var _ Config = mainConfig{}

// New reads the configuration from the environment and validates it
func New() (Config, error) {
	var s Settings
	if err := envdecode.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}
	return FromSettings(s)
}

// FromSettings validates already decoded settings
func FromSettings(s Settings) (Config, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return mainConfig{
		EnvVars: EnvVars{settings: s},
		JWT:     JWT{settings: s},
		Store:   Store{settings: s},
		Cors:    newCors(s.AllowedOrigins),
	}, nil
}

// Validate rejects settings the server cannot start with
func (s Settings) Validate() error {
	if _, err := keys.NewKeyRing(s.AccessSecret, s.RefreshSecret); err != nil {
		return errors.Wrapf(err, "[config] JWT_SECRET_ACCESS/JWT_SECRET_REFRESH")
	}
	if err := jwt.ValidateTTLs(s.AccessTokenTTL, s.RefreshTokenTTL); err != nil {
		return errors.Wrapf(err, "[config] JWT_ACCESS_TTL/JWT_REFRESH_TTL")
	}
	if !StoreKind(s.RefreshStore).Valid() {
		return fmt.Errorf("%w: REFRESH_STORE must be %q or %q, got %q", errors.ErrInvalidConfig, StoreMemory, StoreRedis, s.RefreshStore)
	}
	return nil
}
