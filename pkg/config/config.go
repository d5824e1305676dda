package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "studio"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "STUDIO_DB_DSN"
	EnvDBHost = "STUDIO_DB_HOST"
	EnvDBUser = "STUDIO_DB_USER"
	EnvDBName = "STUDIO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Ingest       IngestConfig
	PubSub       PubSubConfig
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
	Env          string `envconfig:"STUDIO_APP_ENV" required:"true"`
	Port         string `envconfig:"STUDIO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STUDIO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STUDIO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"STUDIO_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"STUDIO_DB_DSN"`
	Driver string `envconfig:"STUDIO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STUDIO_DB_HOST"`
	LegacyPort     int    `envconfig:"STUDIO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STUDIO_DB_USER"`
	LegacyPassword string `envconfig:"STUDIO_DB_PASSWORD"`
	LegacyName     string `envconfig:"STUDIO_DB_NAME"`
	LegacySSLMode  string `envconfig:"STUDIO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STUDIO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STUDIO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STUDIO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STUDIO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STUDIO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STUDIO_REDIS_ADDR"`
	Password     string        `envconfig:"STUDIO_REDIS_PASSWORD"`
	DB           int           `envconfig:"STUDIO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STUDIO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STUDIO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STUDIO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STUDIO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STUDIO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"STUDIO_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"STUDIO_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"STUDIO_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"STUDIO_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STUDIO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STUDIO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STUDIO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STUDIO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STUDIO_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STUDIO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STUDIO_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"STUDIO_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"STUDIO_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"STUDIO_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"STUDIO_GCS_BUCKET_NAME" required:"true"`
	DownloadURLExpiry time.Duration `envconfig:"STUDIO_GCS_DOWNLOAD_URL_EXPIRY" default:"1h"`
}

// IngestConfig tunes the upload pipeline.
type IngestConfig struct {
	MaxUploadMB      int           `envconfig:"STUDIO_INGEST_MAX_UPLOAD_MB" default:"50"`
	Workers          int           `envconfig:"STUDIO_INGEST_WORKERS" default:"4"`
	FileTimeout      time.Duration `envconfig:"STUDIO_INGEST_FILE_TIMEOUT" default:"60s"`
	ThumbnailSizes   []int         `envconfig:"STUDIO_INGEST_THUMBNAIL_SIZES" default:"150,300,600,1200"`
	ThumbnailQuality int           `envconfig:"STUDIO_INGEST_THUMBNAIL_QUALITY" default:"75"`
}

type PubSubConfig struct {
	CleanupTopic        string `envconfig:"STUDIO_PUBSUB_CLEANUP_TOPIC" required:"true"`
	CleanupSubscription string `envconfig:"STUDIO_PUBSUB_CLEANUP_SUBSCRIPTION" required:"true"`
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
