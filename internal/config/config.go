package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// OAuthClient holds the credentials registered with one identity provider.
type OAuthClient struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Config is the immutable runtime configuration, built once at startup.
type Config struct {
	AppPort     string
	DatabaseURL string

	SecretKey      string
	AccessTokenTTL time.Duration

	SMTPServer     string
	SMTPPort       int
	SenderEmail    string
	SenderPassword string

	AIRequestURL     string
	AIRequestTimeout time.Duration

	MediaDir           string
	MediaURL           string
	DefaultRefAudioDir string
	MaxUploadBytes     int

	LogfileRoot string
	LogLevel    string
	LogPretty   bool

	Kakao  OAuthClient
	Naver  OAuthClient
	Google OAuthClient

	RabbitMQURL   string
	RedisAddr     string
	RedisDB       int
	AudioCacheTTL time.Duration

	CORSOrigins string
}

// ErrMissingSecret is returned when no token signing secret is configured.
var ErrMissingSecret = errors.New("SECRET_KEY must be set")

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8000")
	v.SetDefault("DATABASE_URL", "sqlite:eartalk.db")
	v.SetDefault("SECRET_KEY", "")
	// 60 minutes * 24 hours * 365 days
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24*365)
	v.SetDefault("SMTP_SERVER", "")
	v.SetDefault("SMTP_SSL_PORT", 465)
	v.SetDefault("SENDER_EMAIL", "")
	v.SetDefault("SENDER_PASSWORD", "")
	v.SetDefault("AI_REQUEST_URL", "http://localhost:9000")
	v.SetDefault("AI_REQUEST_TIMEOUT", "120s")
	v.SetDefault("MEDIA_DIR", "media")
	v.SetDefault("MEDIA_URL", "/media")
	v.SetDefault("DEFAULT_REF_AUDIO_DIR", "assets/ref")
	v.SetDefault("MAX_UPLOAD_MB", 50)
	v.SetDefault("LOGFILE_ROOT", "logs")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("AUDIO_CACHE_TTL", "10m")
	v.SetDefault("CORS_ORIGINS", "*")
	for _, p := range []string{"KAKAO", "NAVER", "GOOGLE"} {
		v.SetDefault(p+"_CLIENT_ID", "")
		v.SetDefault(p+"_CLIENT_SECRET", "")
		v.SetDefault(p+"_REDIRECT_URI", "")
	}
}

// Load reads configuration from an optional .env file and the environment.
// Environment variables win over the file.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is not an error.
func LoadFile(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
			}
		}
	}
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:            v.GetString("APP_PORT"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		SecretKey:          v.GetString("SECRET_KEY"),
		AccessTokenTTL:     time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")) * time.Minute,
		SMTPServer:         v.GetString("SMTP_SERVER"),
		SMTPPort:           v.GetInt("SMTP_SSL_PORT"),
		SenderEmail:        v.GetString("SENDER_EMAIL"),
		SenderPassword:     v.GetString("SENDER_PASSWORD"),
		AIRequestURL:       strings.TrimRight(v.GetString("AI_REQUEST_URL"), "/"),
		AIRequestTimeout:   v.GetDuration("AI_REQUEST_TIMEOUT"),
		MediaDir:           v.GetString("MEDIA_DIR"),
		MediaURL:           v.GetString("MEDIA_URL"),
		DefaultRefAudioDir: v.GetString("DEFAULT_REF_AUDIO_DIR"),
		MaxUploadBytes:     v.GetInt("MAX_UPLOAD_MB") * 1024 * 1024,
		LogfileRoot:        v.GetString("LOGFILE_ROOT"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogPretty:          v.GetBool("LOG_PRETTY"),
		Kakao:              oauthClient(v, "KAKAO"),
		Naver:              oauthClient(v, "NAVER"),
		Google:             oauthClient(v, "GOOGLE"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisDB:            v.GetInt("REDIS_DB"),
		AudioCacheTTL:      v.GetDuration("AUDIO_CACHE_TTL"),
		CORSOrigins:        v.GetString("CORS_ORIGINS"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func oauthClient(v *viper.Viper, prefix string) OAuthClient {
	return OAuthClient{
		ClientID:     v.GetString(prefix + "_CLIENT_ID"),
		ClientSecret: v.GetString(prefix + "_CLIENT_SECRET"),
		RedirectURI:  v.GetString(prefix + "_REDIRECT_URI"),
	}
}

// Validate checks settings the server cannot start without.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrMissingSecret
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.MediaDir == "" {
		return fmt.Errorf("MEDIA_DIR must be set")
	}
	if !strings.HasPrefix(c.MediaURL, "/") {
		return fmt.Errorf("MEDIA_URL must start with '/', got %q", c.MediaURL)
	}
	return nil
}

// UsesSQLite reports whether DatabaseURL points at a sqlite file.
func (c *Config) UsesSQLite() bool {
	return strings.HasPrefix(c.DatabaseURL, "sqlite:")
}

// SQLitePath returns the file path part of a sqlite: DatabaseURL.
func (c *Config) SQLitePath() string {
	return strings.TrimPrefix(c.DatabaseURL, "sqlite:")
}
