package config

import (
	"github.com/danieleFFF/XPoll/pkg/tarantool"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort  string           `yaml:"HTTP_PORT" env:"HTTP_PORT" env-default:"8080"`
	LogLevel  string           `yaml:"LOG_LEVEL" env:"LOG_LEVEL" env-default:"debug"`
	Storage   string           `yaml:"STORAGE"   env:"STORAGE"   env-default:"memory"`
	Tarantool tarantool.Config `yaml:"TARANTOOL" env:"TARANTOOL"`
}

func New() (*Config, error) {
	// .env is optional, env vars alone are enough.
	_ = godotenv.Load()

	var config Config
	if err := cleanenv.ReadEnv(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
