package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Bot      BotConfig
	Rooms    RoomsConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Platform PlatformConfig
	Logger   LoggerConfig
	Sentry   SentryConfig
}

type ServerConfig struct {
	InternalPort string
	RunMode      string
}

type BotConfig struct {
	Token  string
	Prefix string
}

type RoomsConfig struct {
	Timeout         time.Duration
	DefaultCapacity int
	SweepInterval   time.Duration
	CategoryID      string
	Descriptions    []string
}

type DatabaseConfig struct {
	Driver          string
	Path            string
	Host            string
	Port            string
	User            string
	Password        string
	DbName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         string
	Password     string
	Db           int
	Channel      string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

type PlatformConfig struct {
	Driver            string
	CallTimeout       time.Duration
	MaxAttempts       int
	RetryBackoff      time.Duration
	RequestsPerSecond float64
	Burst             int
}

type LoggerConfig struct {
	FilePath string
	Encoding string
	Level    string
}

type SentryConfig struct {
	Dsn         string
	Debug       bool
	Environment string
}

// DefaultDescriptions are the placeholder descriptions picked when a room is created without one.
var DefaultDescriptions = []string{
	"Let's do something together",
	"Join me, I'm cool",
	"Why not?",
	"Let's play!",
}

// GetConfig loads the config selected by --config or APP_ENV and exits on failure.
func GetConfig() *Config {
	configFile := pflag.String("config", "", "path to a config file, overrides APP_ENV lookup")
	pflag.Parse()

	var (
		v   *viper.Viper
		err error
	)
	if *configFile != "" {
		v, err = LoadConfigFile(*configFile)
	} else {
		v, err = LoadConfig(getConfigPath(os.Getenv("APP_ENV")), "yml")
	}
	if err != nil {
		log.Fatalf("Error in load config %v", err)
	}

	cfg, err := ParseConfig(v)
	if err != nil {
		log.Fatalf("Error in parse config %v", err)
	}

	if envPort := os.Getenv("PORT"); envPort != "" {
		cfg.Server.InternalPort = envPort
		log.Printf("Set internal port from environment -> %s", cfg.Server.InternalPort)
	}
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	err := v.Unmarshal(&cfg)
	if err != nil {
		log.Printf("Unable to parse config: %v", err)
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func LoadConfig(filename string, fileType string) (*viper.Viper, error) {
	v := newViper()
	v.SetConfigType(fileType)
	v.SetConfigName(filename)

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./infrastructure/config")
	v.AddConfigPath("../config")
	v.AddConfigPath("../infrastructure/config")
	v.AddConfigPath("../../infrastructure/config")

	if wd, err := os.Getwd(); err == nil {
		v.AddConfigPath(filepath.Join(wd, "config"))
		v.AddConfigPath(filepath.Join(wd, "infrastructure", "config"))
	}

	return readConfig(v)
}

func LoadConfigFile(path string) (*viper.Viper, error) {
	v := newViper()
	v.SetConfigFile(path)
	return readConfig(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func readConfig(v *viper.Viper) (*viper.Viper, error) {
	err := v.ReadInConfig()
	if err != nil {
		log.Printf("Unable to read config: %v", err)
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}

	log.Printf("Using config file: %s", v.ConfigFileUsed())
	return v, nil
}

func getConfigPath(env string) string {
	switch env {
	case "docker":
		return "config-docker"
	case "production":
		return "config-production"
	default:
		return "config-development"
	}
}

func (c *Config) applyDefaults() {
	if c.Rooms.DefaultCapacity == 0 {
		c.Rooms.DefaultCapacity = 2
	}
	if c.Rooms.SweepInterval == 0 {
		c.Rooms.SweepInterval = time.Minute
	}
	if len(c.Rooms.Descriptions) == 0 {
		c.Rooms.Descriptions = DefaultDescriptions
	}
	if c.Bot.Prefix == "" {
		c.Bot.Prefix = "!"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Platform.Driver == "" {
		c.Platform.Driver = "discord"
	}
	if c.Platform.CallTimeout == 0 {
		c.Platform.CallTimeout = 10 * time.Second
	}
	if c.Platform.MaxAttempts == 0 {
		c.Platform.MaxAttempts = 3
	}
	if c.Platform.RetryBackoff == 0 {
		c.Platform.RetryBackoff = 500 * time.Millisecond
	}
	if c.Platform.RequestsPerSecond == 0 {
		c.Platform.RequestsPerSecond = 40
	}
	if c.Platform.Burst == 0 {
		c.Platform.Burst = 10
	}
	if c.Redis.Channel == "" {
		c.Redis.Channel = "roombot:events"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.InternalPort == "" {
		return errors.New("server.internalPort is required")
	}

	if c.Rooms.Timeout <= 0 {
		return errors.New("rooms.timeout must be positive")
	}
	if c.Rooms.DefaultCapacity < 1 {
		return errors.New("rooms.defaultCapacity must be at least 1")
	}
	if c.Rooms.SweepInterval <= 0 {
		return errors.New("rooms.sweepInterval must be positive")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.Host == "" {
			return errors.New("database.host is required")
		}
		if c.Database.Port == "" {
			return errors.New("database.port is required")
		}
		if c.Database.DbName == "" {
			return errors.New("database.dbName is required")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}

	switch c.Platform.Driver {
	case "discord":
		if c.Bot.Token == "" {
			return errors.New("bot.token is required for the discord platform")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported platform.driver %q", c.Platform.Driver)
	}

	if c.Redis.Enabled {
		if c.Redis.Host == "" {
			return errors.New("redis.host is required")
		}
		if c.Redis.Port == "" {
			return errors.New("redis.port is required")
		}
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.RunMode == "debug" || c.Server.RunMode == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.RunMode == "release" || c.Server.RunMode == "production"
}

func (c *Config) GetPostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DbName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func (c *Config) GetServerAddress() string {
	return fmt.Sprintf(":%s", c.Server.InternalPort)
}
