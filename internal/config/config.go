package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ChronoCoders/flashloanbot/pkg/crypto"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Security SecurityConfig
	Engine   EngineConfig
	Venues   VenuesConfig
	Logging  LoggingConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig - настройки подключения к БД
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// SecurityConfig - настройки безопасности
type SecurityConfig struct {
	// ControlTokenHash - bcrypt-хеш управляющего токена.
	// Сам токен нигде не хранится.
	ControlTokenHash string

	// EncryptionKey - 32-байтовый ключ AES-256 для секретов площадок
	EncryptionKey string

	// APIRateLimit / APIRateBurst - пер-клиентский лимит HTTP API
	APIRateLimit float64
	APIRateBurst float64
}

// EngineConfig - настройки инвестиционного движка
type EngineConfig struct {
	// Controller - идентичность контроллера
	Controller string

	// MinProfit - порог валовой прибыли арбитража по умолчанию, wei
	MinProfit decimal.Decimal

	// AllowPausedProfitWithdraw разрешает вывод прибыли на паузе
	AllowPausedProfitWithdraw bool

	// DailyLossLimitPct - дневной лимит убытков в процентах от
	// totalInvestment (0 = автостоп отключён)
	DailyLossLimitPct decimal.Decimal

	// Разбиение прибыли, проценты в сумме дают 100
	InvestorPct   int64
	MaintainerPct int64
	OperationsPct int64
}

// VenueConfig - одна внешняя площадка ликвидности
type VenueConfig struct {
	Name      string
	BaseURL   string
	APIKey    string // расшифрованный; в окружении хранится шифротекст
	RateLimit float64
	RateBurst float64
}

// VenuesConfig - внешние коллабораторы движка
type VenuesConfig struct {
	// Mode: sim (встроенные симуляторы) или http (реальные площадки)
	Mode string

	// Venues - площадки для http-режима, формат VENUES="name=url,name=url"
	Venues []VenueConfig

	// PoolID и PoolPremiumBps - кредитный пул
	PoolID         string
	PoolPremiumBps int64

	// PriceFeedURL - ценовой фид для http-режима
	PriceFeedURL string
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string
	Format string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "flashloanbot"),
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Security: SecurityConfig{
			ControlTokenHash: getEnv("CONTROL_TOKEN_HASH", ""),
			EncryptionKey:    getEnv("ENCRYPTION_KEY", ""),
			APIRateLimit:     getEnvAsFloat("API_RATE_LIMIT", 20),
			APIRateBurst:     getEnvAsFloat("API_RATE_BURST", 40),
		},
		Engine: EngineConfig{
			Controller:                getEnv("ENGINE_CONTROLLER", ""),
			MinProfit:                 getEnvAsDecimal("ENGINE_MIN_PROFIT_WEI", "0"),
			AllowPausedProfitWithdraw: getEnvAsBool("ALLOW_PAUSED_PROFIT_WITHDRAW", false),
			DailyLossLimitPct:         getEnvAsDecimal("DAILY_LOSS_LIMIT_PCT", "0"),
			InvestorPct:               int64(getEnvAsInt("DIST_INVESTOR_PCT", 70)),
			MaintainerPct:             int64(getEnvAsInt("DIST_MAINTAINER_PCT", 20)),
			OperationsPct:             int64(getEnvAsInt("DIST_OPERATIONS_PCT", 10)),
		},
		Venues: VenuesConfig{
			Mode:           getEnv("VENUE_MODE", "sim"),
			PoolID:         getEnv("POOL_ID", "sim-pool"),
			PoolPremiumBps: int64(getEnvAsInt("POOL_PREMIUM_BPS", 9)),
			PriceFeedURL:   getEnv("PRICE_FEED_URL", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.loadVenues(); err != nil {
		return nil, err
	}
	if err := cfg.validateSecurity(); err != nil {
		return nil, err
	}
	if err := cfg.validateRanges(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadVenues разбирает VENUES="name=url,name=url" и расшифровывает
// ключи VENUE_<NAME>_API_KEY_ENC ключом ENCRYPTION_KEY
func (c *Config) loadVenues() error {
	raw := getEnv("VENUES", "")
	if raw == "" {
		return nil
	}
	for _, pair := range strings.Split(raw, ",") {
		name, url, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || name == "" || url == "" {
			return fmt.Errorf("VENUES: malformed entry %q, want name=url", pair)
		}

		v := VenueConfig{
			Name:      name,
			BaseURL:   url,
			RateLimit: getEnvAsFloat("VENUE_RATE_LIMIT", 10),
			RateBurst: getEnvAsFloat("VENUE_RATE_BURST", 20),
		}

		envKey := "VENUE_" + strings.ToUpper(name) + "_API_KEY_ENC"
		if enc := getEnv(envKey, ""); enc != "" {
			key, err := crypto.Decrypt(enc, []byte(c.Security.EncryptionKey))
			if err != nil {
				return fmt.Errorf("%s: decrypt api key: %w", envKey, err)
			}
			v.APIKey = key
		}
		c.Venues.Venues = append(c.Venues.Venues, v)
	}
	return nil
}

// validateSecurity проверяет параметры безопасности
func (c *Config) validateSecurity() error {
	// Хеш управляющего токена обязателен: без него привилегированные
	// операции API недоступны никому
	if c.Security.ControlTokenHash == "" {
		return fmt.Errorf("CONTROL_TOKEN_HASH is required for controller API authentication")
	}
	if !strings.HasPrefix(c.Security.ControlTokenHash, "$2") {
		return fmt.Errorf("CONTROL_TOKEN_HASH must be a bcrypt hash, not a raw token")
	}

	if c.Engine.Controller == "" {
		return fmt.Errorf("ENGINE_CONTROLLER identity is required")
	}

	// Ключ шифрования обязателен только когда есть зашифрованные секреты
	if c.Security.EncryptionKey != "" && len(c.Security.EncryptionKey) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes for AES-256")
	}
	return nil
}

// validateRanges проверяет числовые диапазоны параметров
func (c *Config) validateRanges() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", c.Database.Port)
	}

	if sum := c.Engine.InvestorPct + c.Engine.MaintainerPct + c.Engine.OperationsPct; sum != 100 {
		return fmt.Errorf("distribution percentages must sum to 100, got %d", sum)
	}
	if c.Engine.InvestorPct < 0 || c.Engine.MaintainerPct < 0 || c.Engine.OperationsPct < 0 {
		return fmt.Errorf("distribution percentages cannot be negative")
	}

	if c.Engine.MinProfit.Sign() < 0 {
		return fmt.Errorf("ENGINE_MIN_PROFIT_WEI cannot be negative, got %s", c.Engine.MinProfit)
	}
	if c.Engine.DailyLossLimitPct.Sign() < 0 {
		return fmt.Errorf("DAILY_LOSS_LIMIT_PCT cannot be negative, got %s", c.Engine.DailyLossLimitPct)
	}

	if c.Venues.Mode != "sim" && c.Venues.Mode != "http" {
		return fmt.Errorf("VENUE_MODE must be sim or http, got %q", c.Venues.Mode)
	}
	if c.Venues.Mode == "http" && len(c.Venues.Venues) < 2 {
		return fmt.Errorf("VENUE_MODE=http requires at least two venues in VENUES, got %d", len(c.Venues.Venues))
	}
	if c.Venues.PoolPremiumBps < 0 {
		return fmt.Errorf("POOL_PREMIUM_BPS cannot be negative, got %d", c.Venues.PoolPremiumBps)
	}
	return nil
}

// DSN возвращает строку подключения к базе данных
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// DSNWithoutPassword возвращает строку подключения без пароля (для логирования)
func (d DatabaseConfig) DSNWithoutPassword() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Name, d.SSLMode)
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDecimal(key, defaultValue string) decimal.Decimal {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return decimal.RequireFromString(defaultValue)
	}
	return value
}
