package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var config = viper.New()

type Config struct {
	AppEnv     string `mapstructure:"APP_ENV"`
	AppName    string `mapstructure:"APP_NAME"`
	AppVersion string `mapstructure:"APP_VERSION"`
	TLS        struct {
		Enable   bool   `mapstructure:"ENABLE"`
		CertPath string `mapstructure:"CERT_PATH"`
		KeyPath  string `mapstructure:"KEY_PATH"`
	} `mapstructure:"TLS"`
	Server struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
	} `mapstructure:"HTTP_SERVER"`
	Database struct {
		Type   string `mapstructure:"TYPE"`
		DSN    string `mapstructure:"DSN"`
		DBNAME string `mapstructure:"DBNAME"`
	} `mapstructure:"DATABASE"`
	OpenRouter struct {
		BaseURL     string        `mapstructure:"BASE_URL"`
		Model       string        `mapstructure:"MODEL"`
		ApiKey      string        `mapstructure:"API_KEY"`
		MaxTokens   int           `mapstructure:"MAX_TOKENS"`
		Temperature float64       `mapstructure:"TEMPERATURE"`
		TopP        float64       `mapstructure:"TOP_P"`
		Timeout     time.Duration `mapstructure:"TIMEOUT"`
		Referer     string        `mapstructure:"REFERER"`
		Title       string        `mapstructure:"TITLE"`
	} `mapstructure:"OPENROUTER"`
	Storage struct {
		BaseDir string `mapstructure:"BASE_DIR"`
	} `mapstructure:"STORAGE"`
}

var Module = fx.Module("config", fx.Provide(LoadConfig))

func LoadConfig() *Config {

	config.SetConfigName("config")
	config.SetConfigType("yaml")
	config.AddConfigPath(".")

	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()

	setDefaults()

	if err := config.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			zap.L().Error("failed to read config file", zap.Error(err))
			os.Exit(1)
		}
	}

	var cfg Config
	if err := config.Unmarshal(&cfg); err != nil {
		zap.L().Error("failed to unmarshal config", zap.Error(err))
		os.Exit(1)
	}

	if v, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok && cfg.OpenRouter.ApiKey == "" {
		cfg.OpenRouter.ApiKey = v
	}

	return &cfg
}

func setDefaults() {
	config.SetDefault("APP_ENV", "development")
	config.SetDefault("APP_NAME", "chronobot-controlplane")
	config.SetDefault("HTTP_SERVER.ADDR", "8080")
	config.SetDefault("HTTP_SERVER.READ_TIMEOUT", 15*time.Second)
	config.SetDefault("HTTP_SERVER.WRITE_TIMEOUT", 3*time.Minute)
	config.SetDefault("HTTP_SERVER.IDLE_TIMEOUT", time.Minute)
	config.SetDefault("DATABASE.TYPE", "sqlite")
	config.SetDefault("DATABASE.DSN", "chronobot.db")
	config.SetDefault("OPENROUTER.BASE_URL", "https://openrouter.ai/api/v1")
	config.SetDefault("OPENROUTER.MODEL", "mistralai/mistral-small-3.2-24b-instruct:free")
	config.SetDefault("OPENROUTER.MAX_TOKENS", 4000)
	config.SetDefault("OPENROUTER.TEMPERATURE", 0.7)
	config.SetDefault("OPENROUTER.TOP_P", 0.9)
	config.SetDefault("OPENROUTER.TIMEOUT", 120*time.Second)
	config.SetDefault("OPENROUTER.REFERER", "https://github.com/chronobot/chronobot-controlplane")
	config.SetDefault("OPENROUTER.TITLE", "AI Code Generator")
	config.SetDefault("STORAGE.BASE_DIR", "generated_codes")
}
