package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Retention RetentionConfig `mapstructure:"retention"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// GatewayConfig holds the payment-gateway facing settings. WebhookSecret may be
// empty at startup; the webhook handler treats that as a per-request
// configuration error rather than refusing to boot, so a secret rotation gap
// shows up as 500s instead of a crash loop.
type GatewayConfig struct {
	WebhookSecret   string `mapstructure:"webhook_secret"`
	SignatureHeader string `mapstructure:"signature_header"`
	CreateOnCapture bool   `mapstructure:"create_on_capture"`
}

type JWTConfig struct {
	Secret         string        `mapstructure:"secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RetentionConfig struct {
	WebhookLogTTL time.Duration `mapstructure:"webhook_log_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("gateway.signature_header", "X-Razorpay-Signature")
	viper.SetDefault("retention.webhook_log_ttl", 30*24*time.Hour)
	viper.SetDefault("retention.sweep_interval", time.Hour)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
