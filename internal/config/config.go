package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Environment is resolved once at startup and threaded through as
// configuration; components never re-read environment variables to decide
// between development and production behavior.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// SessionBackend selects which session store implementation the process runs
// with. Both backends satisfy the same store contract.
type SessionBackend string

const (
	SessionBackendRedis    SessionBackend = "redis"
	SessionBackendPostgres SessionBackend = "postgres"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	CookieName string
	Secret     string
	MaxAge     time.Duration
	Backend    SessionBackend
	TableName  string
	Collection string
}

type SecretsConfig struct {
	ProjectID string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	CallbackURL        string
}

// Enabled reports whether the federated login path is configured. Absence of
// either credential disables OAuth login without error.
func (c OAuthConfig) Enabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

type MailConfig struct {
	SendgridAPIKey string
	From           string
}

type SMSConfig struct {
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
}

type AppConfig struct {
	Environment      Environment
	PublicURL        string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Session          SessionConfig
	Secrets          SecretsConfig
	OAuth            OAuthConfig
	Mail             MailConfig
	SMS              SMSConfig
	AllowCORSOrigins []string
}

func (c *AppConfig) Production() bool {
	return c.Environment == EnvProduction
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("SCHOOLCRM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindLegacyEnv(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Google rejects relative redirect URLs, so a bare callback path is
	// resolved against the public base URL before it reaches the OAuth client.
	if cfg.PublicURL == "" {
		cfg.PublicURL = fmt.Sprintf("http://localhost:%d", cfg.HTTP.Port)
	}
	if !strings.Contains(cfg.OAuth.CallbackURL, "://") {
		cfg.OAuth.CallbackURL = strings.TrimRight(cfg.PublicURL, "/") + cfg.OAuth.CallbackURL
	}

	return &cfg, nil
}

// bindLegacyEnv maps the flat environment variable names the deployments
// already use onto config keys, so the same variables keep working without a
// SCHOOLCRM_ prefix.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("environment", "SCHOOLCRM_ENV", "APP_ENV")
	_ = v.BindEnv("publicurl", "PUBLIC_URL")
	_ = v.BindEnv("session.secret", "SESSION_SECRET")
	_ = v.BindEnv("secrets.projectid", "GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT")
	_ = v.BindEnv("mail.sendgridapikey", "SENDGRID_API_KEY")
	_ = v.BindEnv("mail.from", "SENDGRID_FROM")
	_ = v.BindEnv("sms.twilioaccountsid", "TWILIO_ACCOUNT_SID")
	_ = v.BindEnv("sms.twilioauthtoken", "TWILIO_AUTH_TOKEN")
	_ = v.BindEnv("sms.twiliophonenumber", "TWILIO_PHONE_NUMBER")
	_ = v.BindEnv("oauth.googleclientid", "GOOGLE_CLIENT_ID")
	_ = v.BindEnv("oauth.googleclientsecret", "GOOGLE_CLIENT_SECRET")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("session.cookiename", "crm_sid")
	v.SetDefault("session.maxage", "168h") // 7 days
	v.SetDefault("session.backend", "redis")
	v.SetDefault("session.tablename", "sessions")
	v.SetDefault("session.collection", "sessions")

	v.SetDefault("oauth.callbackurl", "/api/auth/google/callback")
}
