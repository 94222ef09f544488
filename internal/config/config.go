package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"digistore/internal/domain"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	BotToken       string        `env:"BOT_TOKEN"`
	AdminIDs       []int64       `env:"ADMIN_IDS" envSeparator:","`
	CardNumber     string        `env:"CARD_NUMBER"`
	CryptoBotToken string        `env:"CRYPTOBOT_TOKEN"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	HTTPAddr       string        `env:"HTTP_ADDR"`
	PricingFile    string        `env:"PRICING_FILE"`
	SupportUser    string        `env:"SUPPORT_USER"`
	ReputationURL  string        `env:"REPUTATION_URL"`
	NewsURL        string        `env:"NEWS_URL"`

	Database DatabaseConfig
	Pricing  domain.PriceList
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// DefaultPriceList returns the prices used when no PRICING_FILE is given
func DefaultPriceList() domain.PriceList {
	return domain.PriceList{
		StarRate: 1.5,
		USDRate:  84.0,
		Premium: map[string]domain.PremiumPrice{
			"3months": {Name: "3 месяца", RUB: 1124.11, USD: 14.12},
			"6months": {Name: "6 месяцев", RUB: 1498.81, USD: 14.12},
			"1year":   {Name: "1 год", RUB: 2716.59, USD: 34.12},
		},
		PremiumOrder: []string{"3months", "6months", "1year"},
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		Name:     getEnv("DB_NAME", "digistore"),
		User:     getEnv("DB_USER", "digistore"),
		Password: os.Getenv("DB_PASSWORD"),
	}

	// Validate required fields
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.CardNumber == "" {
		return nil, fmt.Errorf("CARD_NUMBER is required")
	}
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}

	cfg.Pricing = DefaultPriceList()
	if cfg.PricingFile != "" {
		prices, err := loadPricing(cfg.PricingFile)
		if err != nil {
			return nil, err
		}
		cfg.Pricing = prices
	}

	return cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// AlternatePaymentEnabled reports whether the alternate payment option is configured
func (c *Config) AlternatePaymentEnabled() bool {
	return c.CryptoBotToken != ""
}

func loadPricing(path string) (domain.PriceList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.PriceList{}, fmt.Errorf("read pricing file: %w", err)
	}

	var prices domain.PriceList
	if err := yaml.Unmarshal(data, &prices); err != nil {
		return domain.PriceList{}, fmt.Errorf("parse pricing file %s: %w", path, err)
	}
	if err := validatePricing(&prices); err != nil {
		return domain.PriceList{}, fmt.Errorf("pricing file %s: %w", path, err)
	}
	return prices, nil
}

// validatePricing checks rates and fills in the display order when the file omits it
func validatePricing(prices *domain.PriceList) error {
	if prices.StarRate <= 0 {
		return fmt.Errorf("star_rate must be positive")
	}
	if prices.USDRate <= 0 {
		return fmt.Errorf("usd_rate must be positive")
	}
	if len(prices.Premium) == 0 {
		return fmt.Errorf("premium price table is empty")
	}
	for period, price := range prices.Premium {
		if price.RUB <= 0 {
			return fmt.Errorf("premium %q: rub must be positive", period)
		}
		if price.Name == "" {
			price.Name = period
			prices.Premium[period] = price
		}
	}

	if len(prices.PremiumOrder) == 0 {
		for period := range prices.Premium {
			prices.PremiumOrder = append(prices.PremiumOrder, period)
		}
		sort.Strings(prices.PremiumOrder)
		return nil
	}
	for _, period := range prices.PremiumOrder {
		if _, ok := prices.Premium[period]; !ok {
			return fmt.Errorf("premium_order references unknown period %q", period)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
