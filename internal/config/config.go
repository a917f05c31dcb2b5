package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

type Config struct {
	HTTPAddr string
	Store    string

	DBURL           string
	FilePath        string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	AuditTTL      time.Duration
	AuditPrefix   string

	LogLevel  string
	LogFormat string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	ConnectAttempts int
}

// New returns a viper instance with defaults and TODO_* env bindings.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("store", StoreMemory)
	v.SetDefault("db_url", "")
	v.SetDefault("file_path", "data/todos.json")
	v.SetDefault("mongo_uri", "")
	v.SetDefault("mongo_database", "todo")
	v.SetDefault("mongo_collection", "todo_items")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("audit_ttl", 24*time.Hour)
	v.SetDefault("audit_prefix", "todo:audit")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("request_timeout", 3*time.Second)
	v.SetDefault("shutdown_timeout", 5*time.Second)
	v.SetDefault("connect_attempts", 5)

	v.SetEnvPrefix("TODO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	// DB_URL is what the compose files and CI already export.
	_ = v.BindEnv("db_url", "TODO_DB_URL", "DB_URL")

	return v
}

// ReadFile merges a config file into v. With an empty path it looks for an
// optional todo-api.yaml in the working directory.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("todo-api")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// LoadDotEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		HTTPAddr:        v.GetString("http_addr"),
		Store:           strings.ToLower(strings.TrimSpace(v.GetString("store"))),
		DBURL:           v.GetString("db_url"),
		FilePath:        v.GetString("file_path"),
		MongoURI:        v.GetString("mongo_uri"),
		MongoDatabase:   v.GetString("mongo_database"),
		MongoCollection: v.GetString("mongo_collection"),
		RedisAddr:       v.GetString("redis_addr"),
		RedisPassword:   v.GetString("redis_password"),
		RedisDB:         v.GetInt("redis_db"),
		AuditTTL:        v.GetDuration("audit_ttl"),
		AuditPrefix:     v.GetString("audit_prefix"),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
		RequestTimeout:  v.GetDuration("request_timeout"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		ConnectAttempts: v.GetInt("connect_attempts"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StoreFile:
		if c.FilePath == "" {
			return errors.New("file_path is required for the file store")
		}
	case StoreSQLite, StorePostgres:
		if c.DBURL == "" {
			return fmt.Errorf("DB_URL is required for the %s store", c.Store)
		}
	case StoreMongo:
		if c.MongoURI == "" {
			return errors.New("mongo_uri is required for the mongo store")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}

	if c.HTTPAddr == "" {
		return errors.New("http_addr is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	if c.ConnectAttempts < 1 {
		return errors.New("connect_attempts must be at least 1")
	}
	if c.RedisAddr != "" && c.AuditTTL <= 0 {
		return errors.New("audit_ttl must be positive when redis_addr is set")
	}
	return nil
}
