package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode         string `mapstructure:"mode"`
	Port         int    `mapstructure:"port"`
	StaticPath   string `mapstructure:"static_path"`
	DatabasePath string `mapstructure:"database_path"`
	Room         string `mapstructure:"room"`

	ReadLimit    int64         `mapstructure:"read_limit"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	PongWait     time.Duration `mapstructure:"pong_wait"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// MessageRateLimit of 0 disables the flood limiter.
	MessageRateLimit    int           `mapstructure:"message_rate_limit"`
	MessageRateInterval time.Duration `mapstructure:"message_rate_interval"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("database_path", "./relay.db")
	v.SetDefault("room", "global")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("send_buffer", 32)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_timeout", "5s")
	v.SetDefault("message_rate_limit", 0)
	v.SetDefault("message_rate_interval", "10s")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Room: %s\n", cfg.Mode, cfg.Port, cfg.Room)
	return &cfg, nil
}
