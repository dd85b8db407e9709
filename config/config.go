package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"

	defaultBcryptCost         = 12
	defaultAccessTokenTTL     = 15 * time.Minute
	defaultRefreshTokenTTL    = 30 * 24 * time.Hour
	defaultOTPTTL             = 15 * time.Minute
	defaultResendCooldown     = 60 * time.Second
	defaultMaxOTPAttempts     = 5
	defaultReapInterval       = time.Hour
	defaultPendingKeyPrefix   = "pending-signup:"
	defaultAccessCookieName   = "token"
	defaultRefreshCookieName  = "refreshToken"
	defaultCookiePath         = "/"
	defaultMailAppName        = "Slynk"
	defaultSMTPPort           = 587
	defaultSMTPTimeout        = 15 * time.Second
	defaultMailPublishTimeout = 10 * time.Second
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *PostgresConfig `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	Redis *RedisConfig `json:"redis" yaml:"redis"`

	SecretKey SecretKey `json:"secretKey" yaml:"secretKey"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	Cookie *CookieConfig `json:"cookie" yaml:"cookie"`

	Mail *MailConfig `json:"mail" yaml:"mail"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// SecretKey holds the HMAC keys. Refresh and OTP keys are optional; an empty key falls back to plain SHA-256.
type SecretKey struct {
	Access  string `json:"access" yaml:"access"`
	Refresh string `json:"refresh" yaml:"refresh"`
	OTP     string `json:"otp" yaml:"otp"`
}

// PostgresConfig describes the primary connection and optional read replicas.
type PostgresConfig struct {
	Master   ConnectionConfig   `json:"master" yaml:"master"`
	Replicas []ConnectionConfig `json:"replicas" yaml:"replicas"`
	DBName   string             `json:"dbName" yaml:"dbName"`
	SSLMode  string             `json:"sslMode" yaml:"sslMode"`
	TimeZone string             `json:"timeZone" yaml:"timeZone"`

	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `json:"connMaxIdleTime" yaml:"connMaxIdleTime"`

	// Migrate applies the embedded goose migrations on startup.
	Migrate bool `json:"migrate" yaml:"migrate"`
}

type ConnectionConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     string `json:"port" yaml:"port"`
	UserName string `json:"userName" yaml:"userName"`
	Password string `json:"password" yaml:"password"`
}

// RedisConfig configures the transient store used for pending signups.
type RedisConfig struct {
	Addr      string `json:"addr" yaml:"addr"`
	Password  string `json:"password" yaml:"password"`
	DB        int    `json:"db" yaml:"db"`
	KeyPrefix string `json:"keyPrefix" yaml:"keyPrefix"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	BcryptCost      int           `json:"bcryptCost" yaml:"bcryptCost"`
	AccessTokenTTL  time.Duration `json:"accessTokenTTL" yaml:"accessTokenTTL"`
	RefreshTokenTTL time.Duration `json:"refreshTokenTTL" yaml:"refreshTokenTTL"`
	OTPTTL          time.Duration `json:"otpTTL" yaml:"otpTTL"`
	ResendCooldown  time.Duration `json:"resendCooldown" yaml:"resendCooldown"`
	MaxOTPAttempts  int           `json:"maxOTPAttempts" yaml:"maxOTPAttempts"`

	// RefreshTokenReapInterval is how often expired refresh tokens are purged. Zero disables the reaper.
	RefreshTokenReapInterval time.Duration `json:"refreshTokenReapInterval" yaml:"refreshTokenReapInterval"`
}

// CookieConfig controls the names and scope of the auth cookies.
type CookieConfig struct {
	AccessName  string `json:"accessName" yaml:"accessName"`
	RefreshName string `json:"refreshName" yaml:"refreshName"`
	Path        string `json:"path" yaml:"path"`
	Domain      string `json:"domain" yaml:"domain"`
}

// MailConfig selects how OTP emails leave the service.
type MailConfig struct {
	// Delivery is one of "smtp", "queue" or "noop".
	Delivery string `json:"delivery" yaml:"delivery"`
	From     string `json:"from" yaml:"from"`
	FromName string `json:"fromName" yaml:"fromName"`
	AppName  string `json:"appName" yaml:"appName"`

	SMTP  SMTPConfig      `json:"smtp" yaml:"smtp"`
	Queue MailQueueConfig `json:"queue" yaml:"queue"`
}

type SMTPConfig struct {
	Host     string        `json:"host" yaml:"host"`
	Port     int           `json:"port" yaml:"port"`
	UserName string        `json:"userName" yaml:"userName"`
	Password string        `json:"password" yaml:"password"`
	TLS      string        `json:"tls" yaml:"tls"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// MailQueueConfig configures the outbound email queue and its push worker.
type MailQueueConfig struct {
	// Provider is "local" (HTTP push to the worker) or "google" (Pub/Sub topic URL).
	Provider       string        `json:"provider" yaml:"provider"`
	TopicURL       string        `json:"topicUrl" yaml:"topicUrl"`
	LocalEndpoint  string        `json:"localEndpoint" yaml:"localEndpoint"`
	PublishTimeout time.Duration `json:"publishTimeout" yaml:"publishTimeout"`
}

// IsProduction reports whether the service runs with production hardening.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env.Env, "production")
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate

			break
		}
	}

	if configFile == "" {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// POSTGRES_SSLMODE -> postgres.sslMode, aligned with the keys already present in YAML.
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if cfg.Postgres != nil {
		if replicas := buildReplicasFromEnv(); len(replicas) > 0 {
			cfg.Postgres.Replicas = replicas
		}
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if cfg.Redis == nil {
		cfg.Redis = &RedisConfig{}
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = defaultPendingKeyPrefix
	}

	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{RefreshTokenReapInterval: defaultReapInterval}
	}
	auth := cfg.Auth
	if auth.BcryptCost == 0 {
		auth.BcryptCost = defaultBcryptCost
	}
	if auth.AccessTokenTTL == 0 {
		auth.AccessTokenTTL = defaultAccessTokenTTL
	}
	if auth.RefreshTokenTTL == 0 {
		auth.RefreshTokenTTL = defaultRefreshTokenTTL
	}
	if auth.OTPTTL == 0 {
		auth.OTPTTL = defaultOTPTTL
	}
	if auth.ResendCooldown == 0 {
		auth.ResendCooldown = defaultResendCooldown
	}
	if auth.MaxOTPAttempts == 0 {
		auth.MaxOTPAttempts = defaultMaxOTPAttempts
	}

	if cfg.Cookie == nil {
		cfg.Cookie = &CookieConfig{}
	}
	if cfg.Cookie.AccessName == "" {
		cfg.Cookie.AccessName = defaultAccessCookieName
	}
	if cfg.Cookie.RefreshName == "" {
		cfg.Cookie.RefreshName = defaultRefreshCookieName
	}
	if cfg.Cookie.Path == "" {
		cfg.Cookie.Path = defaultCookiePath
	}

	if cfg.Mail == nil {
		cfg.Mail = &MailConfig{}
	}
	if cfg.Mail.AppName == "" {
		cfg.Mail.AppName = defaultMailAppName
	}
	if cfg.Mail.SMTP.Port == 0 {
		cfg.Mail.SMTP.Port = defaultSMTPPort
	}
	if cfg.Mail.SMTP.Timeout == 0 {
		cfg.Mail.SMTP.Timeout = defaultSMTPTimeout
	}
	if cfg.Mail.Queue.PublishTimeout == 0 {
		cfg.Mail.Queue.PublishTimeout = defaultMailPublishTimeout
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv builds the replicas slice from environment variables.
// Format: POSTGRES_REPLICAS_{index}_{HOST|PORT|USERNAME|PASSWORD}
func buildReplicasFromEnv() []ConnectionConfig {
	var replicas []ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
