package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	PubSub        PubSubConfig
	Preview       PreviewConfig
	Cron          CronConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SIGNAGE_APP_ENV" required:"true"`
	Port         string `envconfig:"SIGNAGE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SIGNAGE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SIGNAGE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SIGNAGE_DB_DSN"`
	Driver string `envconfig:"SIGNAGE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SIGNAGE_DB_HOST"`
	LegacyPort     int    `envconfig:"SIGNAGE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SIGNAGE_DB_USER"`
	LegacyPassword string `envconfig:"SIGNAGE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SIGNAGE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SIGNAGE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SIGNAGE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SIGNAGE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SIGNAGE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SIGNAGE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SIGNAGE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SIGNAGE_REDIS_ADDR"`
	Password     string        `envconfig:"SIGNAGE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SIGNAGE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SIGNAGE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SIGNAGE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SIGNAGE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SIGNAGE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SIGNAGE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SIGNAGE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SIGNAGE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SIGNAGE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SIGNAGE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SIGNAGE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SIGNAGE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SIGNAGE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SIGNAGE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SIGNAGE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"SIGNAGE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"SIGNAGE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"SIGNAGE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SIGNAGE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SIGNAGE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SIGNAGE_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"SIGNAGE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SIGNAGE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName      string        `envconfig:"SIGNAGE_GCS_BUCKET_NAME" required:"true"`
	UploadURLExpiry time.Duration `envconfig:"SIGNAGE_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	PublicBaseURL   string        `envconfig:"SIGNAGE_GCS_PUBLIC_BASE_URL"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"SIGNAGE_MEDIA_MAX_UPLOAD_MB" default:"200"`
}

type PubSubConfig struct {
	DeviceEventsTopic string `envconfig:"SIGNAGE_PUBSUB_DEVICE_EVENTS_TOPIC" default:"signage-device-events"`
	Enabled           bool   `envconfig:"SIGNAGE_PUBSUB_ENABLED" default:"false"`
}

type PreviewConfig struct {
	SessionTTL      time.Duration `envconfig:"SIGNAGE_PREVIEW_SESSION_TTL" default:"30m"`
	JanitorInterval time.Duration `envconfig:"SIGNAGE_PREVIEW_JANITOR_INTERVAL" default:"1m"`
	MaxSessions     int           `envconfig:"SIGNAGE_PREVIEW_MAX_SESSIONS" default:"256"`
}

type CronConfig struct {
	Interval           time.Duration `envconfig:"SIGNAGE_CRON_INTERVAL" default:"1m"`
	DeviceOfflineAfter time.Duration `envconfig:"SIGNAGE_CRON_DEVICE_OFFLINE_AFTER" default:"2m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SIGNAGE_CORS_ALLOWED_ORIGINS"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
