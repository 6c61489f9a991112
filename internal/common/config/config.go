package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Session struct {
		CookieName string        `env:"SESSION_COOKIE" envDefault:"session_token"`
		TTL        time.Duration `env:"SESSION_TTL" envDefault:"168h"`
		Secure     bool          `env:"SESSION_SECURE" envDefault:"false"`
	}

	Google struct {
		// Client ID нашего OAuth-приложения; пустое значение отключает вход через Google
		ClientID string `env:"GOOGLE_CLIENT_ID" envDefault:""`
	}

	Upload struct {
		// Лимит на скриншот оплаты, по умолчанию 5 МБ
		MaxScreenshotBytes int64 `env:"MAX_SCREENSHOT_BYTES" envDefault:"5242880"`
	}
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// Игнорируем ошибку, если .env файл не найден
		// В production окружении переменные могут быть установлены напрямую
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}
