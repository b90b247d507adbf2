package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type DB struct {
	Driver string // "sqlite" or "mysql"
	Path   string // sqlite file path
	Host   string
	Port   int
	User   string
	Pass   string
	Name   string
}

type Redis struct {
	Addr string
	DB   int
}

type Crypto struct {
	Secret string
	Salt   string
}

type Bot struct {
	RootDirectory string
	CancelButton  string
}

type Config struct {
	DB     DB
	Redis  Redis
	Crypto Crypto
	Bot    Bot
	Log    struct {
		Level string
		Path  string
	}
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.path", "telecloud.db")
	v.SetDefault("db.host", "127.0.0.1")
	v.SetDefault("db.port", 3306)
	v.SetDefault("db.user", "root")
	v.SetDefault("db.pass", "")
	v.SetDefault("db.name", "telecloud")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("bot.root_directory", "ROOT")
	v.SetDefault("bot.cancel_button", "Cancel")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")

	// Secrets come from the environment in deployments; the yaml keys
	// exist for local runs only.
	v.SetEnvPrefix("telecloud")
	v.AutomaticEnv()
	_ = v.BindEnv("crypto.secret", "TELECLOUD_SECRET_KEY")
	_ = v.BindEnv("crypto.salt", "TELECLOUD_SALT")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{
		DB: DB{
			Driver: v.GetString("db.driver"),
			Path:   v.GetString("db.path"),
			Host:   v.GetString("db.host"),
			Port:   v.GetInt("db.port"),
			User:   v.GetString("db.user"),
			Pass:   v.GetString("db.pass"),
			Name:   v.GetString("db.name"),
		},
		Redis: Redis{
			Addr: v.GetString("redis.addr"),
			DB:   v.GetInt("redis.db"),
		},
		Crypto: Crypto{
			Secret: v.GetString("crypto.secret"),
			Salt:   v.GetString("crypto.salt"),
		},
		Bot: Bot{
			RootDirectory: v.GetString("bot.root_directory"),
			CancelButton:  v.GetString("bot.cancel_button"),
		},
	}
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Path = v.GetString("log.path")

	if cfg.Crypto.Secret == "" {
		return nil, fmt.Errorf("crypto.secret (TELECLOUD_SECRET_KEY) is a required setting")
	}
	if cfg.Crypto.Salt == "" {
		return nil, fmt.Errorf("crypto.salt (TELECLOUD_SALT) is a required setting")
	}
	if cfg.DB.Driver != "sqlite" && cfg.DB.Driver != "mysql" {
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DB.Driver)
	}
	return cfg, nil
}
