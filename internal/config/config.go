// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"
	// База часовых поясов встраивается в бинарник.
	_ "time/tzdata"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	Location   string `yaml:"location" env:"LOCATION" env-default:"UTC"`
	HTTPServer `yaml:"http_server"`
	Storage    `yaml:"storage"`
	Cache      `yaml:"cache"`
	Operator   `yaml:"operator"`
	JWTToken   `yaml:"jwttoken"`
	RabbitMQ   `yaml:"rabbitmq"`
	SMTP       `yaml:"smtp"`
	Scheduler  `yaml:"scheduler"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RateLimit   float64       `yaml:"rate_limit" env-default:"5"`
	RateBurst   int           `yaml:"rate_burst" env-default:"20"`
}

// Storage структура для выбора и настройки хранилища документов
type Storage struct {
	Driver     string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"firestore"`
	Collection string `yaml:"collection" env-default:"users"`
	Firestore  `yaml:"firestore"`
	Postgres   `yaml:"postgres"`
}

// Firestore структура для подключения к Firebase Firestore
type Firestore struct {
	ProjectID       string `yaml:"project_id" env:"FIREBASE_PROJECT_ID"`
	CredentialsFile string `yaml:"credentials_file" env:"FIREBASE_CREDENTIALS_FILE"`
	// CredentialsJSON — ключ сервисного аккаунта в base64.
	CredentialsJSON string `yaml:"credentials_json" env:"FIREBASE_SERVICE_ACCOUNT_JSON"`
}

// Postgres структура для подключения к PostgreSQL
type Postgres struct {
	StorageConnectionString string `yaml:"storage_connection_string" env:"DATABASE_URL"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
}

// Cache структура для настройки кеша списка пользователей
type Cache struct {
	Driver          string        `yaml:"driver" env:"CACHE_DRIVER" env-default:"none"`
	TTL             time.Duration `yaml:"ttl" env-default:"1m"`
	RedisConnection `yaml:"redis_connection"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// Operator структура с учётной записью оператора
type Operator struct {
	Username     string `yaml:"username" env:"OPERATOR_USERNAME"`
	PasswordHash string `yaml:"password_hash" env:"OPERATOR_PASSWORD_HASH"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"12h"`
}

// RabbitMQ структура для подключения к брокеру
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"3s"`
}

// SMTP структура для отправки писем
type SMTP struct {
	SMTPHost string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"password" env:"SMTP_PASSWORD"`
}

// Scheduler структура для планировщика уведомлений
type Scheduler struct {
	Interval     time.Duration `yaml:"interval" env-default:"12h"`
	NoticeWindow time.Duration `yaml:"notice_window" env-default:"72h"`
}

// MustLoad функция для загрузки конфига из файла CONFIG_PATH, завершает процесс при ошибке
func MustLoad() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("cannot load .env: %s", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Load читает конфиг из файла path, переменные окружения имеют приоритет
func Load(path string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file: %s - does not exist", op, path)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: cannot read config: %w", op, err)
	}
	if _, err := time.LoadLocation(cfg.Location); err != nil {
		return nil, fmt.Errorf("%s: invalid location %q: %w", op, cfg.Location, err)
	}
	return &cfg, nil
}

// TimeLocation возвращает часовой пояс для календарной арифметики
func (c *Config) TimeLocation() *time.Location {
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Location: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Storage:\n"+
			"  Driver: %s\n"+
			"  Collection: %s\n"+
			"  FirestoreProject: %s\n"+
			"  PostgresConnection: %s\n"+
			"Cache:\n"+
			"  Driver: %s\n"+
			"  TTL: %s\n"+
			"  RedisAddr: %s\n"+
			"Operator: %s\n"+
			"JWTToken:\n"+
			"  JWTSecretKey: %s\n"+
			"  TokenTTL: %s\n"+
			"RabbitMQ: %s\n"+
			"SMTP: %s@%s:%s\n"+
			"Scheduler:\n"+
			"  Interval: %s\n"+
			"  NoticeWindow: %s\n",
		c.Env,
		c.Location,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.Storage.Driver,
		c.Collection,
		c.ProjectID,
		mask(c.StorageConnectionString),
		c.Cache.Driver,
		c.TTL,
		c.AddressRedis,
		c.Operator.Username,
		mask(c.JWTSecretKey),
		c.TokenTTL,
		mask(c.RabbitMQURL),
		c.SMTPUser,
		c.SMTPHost,
		c.SMTPPort,
		c.Interval,
		c.NoticeWindow,
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
