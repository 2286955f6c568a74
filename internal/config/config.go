package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Debug bool `yaml:"debug"`

	Snowflake struct {
		// nil означает, что machine id не задан и будет использован id.DefaultMachineID
		MachineID *int64 `yaml:"machine-id"`
	} `yaml:"snowflake"`

	DB struct {
		UserShards     map[int]string `yaml:"user-shards"`     // Номер шарда -> адрес
		TelegramShards map[int]string `yaml:"telegram-shards"` // Номер шарда -> адрес
		MaxConns       int32          `yaml:"max-conns"`
		MinConns       int32          `yaml:"min-conns"`
	} `yaml:"db"`

	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`

	Pprof struct {
		Addr string `yaml:"addr"`
	} `yaml:"pprof"`

	Temporal struct {
		HostPort  string `yaml:"host-port"`
		Namespace string `yaml:"namespace"`
	} `yaml:"temporal"`

	Telegram struct {
		BotToken string `yaml:"bot-token"`
		APIURL   string `yaml:"api-url"`
	} `yaml:"telegram"`

	Reminders struct {
		DeadlineCheckCron string        `yaml:"deadline-check-cron"`
		BriefingCron      string        `yaml:"briefing-cron"`
		PreNotifyWindow   time.Duration `yaml:"pre-notify-window"`
	} `yaml:"reminders"`
}

// Переменные окружения, переопределяющие значения из файла
const (
	EnvMachineID        = "SNOWFLAKE_MACHINE_ID"
	EnvBotToken         = "BOT_TOKEN"
	EnvHTTPAddr         = "HTTP_ADDR"
	EnvTemporalHostPort = "TEMPORAL_HOST_PORT"
)

var ErrNoShards = errors.New("no database shards configured")

func LoadConfig(path string) (*Config, error) {
	config := &Config{}
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// .env необязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	config.setDefaults()
	return config, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvMachineID); ok {
		machineID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", EnvMachineID, err)
		}
		c.Snowflake.MachineID = &machineID
	}
	if v, ok := os.LookupEnv(EnvBotToken); ok {
		c.Telegram.BotToken = v
	}
	if v, ok := os.LookupEnv(EnvHTTPAddr); ok {
		c.HTTP.Addr = v
	}
	if v, ok := os.LookupEnv(EnvTemporalHostPort); ok {
		c.Temporal.HostPort = v
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.DB.MaxConns == 0 {
		c.DB.MaxConns = 25
	}
	if c.DB.MinConns == 0 {
		c.DB.MinConns = 5
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Temporal.HostPort == "" {
		c.Temporal.HostPort = "localhost:7233"
	}
	if c.Temporal.Namespace == "" {
		c.Temporal.Namespace = "default"
	}
	if c.Telegram.APIURL == "" {
		c.Telegram.APIURL = "https://api.telegram.org"
	}
	if c.Reminders.DeadlineCheckCron == "" {
		c.Reminders.DeadlineCheckCron = "@every 10s"
	}
	if c.Reminders.BriefingCron == "" {
		c.Reminders.BriefingCron = "0 7 * * *"
	}
	if c.Reminders.PreNotifyWindow == 0 {
		c.Reminders.PreNotifyWindow = 10 * time.Minute
	}
}

// RequireDatabase checks that commands touching Postgres have shards to talk to.
func (c *Config) RequireDatabase() error {
	if len(c.DB.UserShards) == 0 {
		return fmt.Errorf("user shards: %w", ErrNoShards)
	}
	if len(c.DB.TelegramShards) == 0 {
		return fmt.Errorf("telegram shards: %w", ErrNoShards)
	}
	return nil
}
