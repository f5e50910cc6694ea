package config

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env           string
	Port          string
	SessionSecret string
	DatabaseURL   string
	RedisURL      string

	FrontendURLEndsWith string
	AllowCrossSiteDev   bool
	HealthAdminKey      string

	// Transactional email via Brevo; empty key disables sending.
	SendinblueAPIKey string
	MailFrom         string

	// Eco points policy. Rates are points per currency unit of total_amount;
	// ReviewBonus is the flat award for a user's first rating of a dealer.
	EcoPointsSaleRate     decimal.Decimal
	EcoPointsPurchaseRate decimal.Decimal
	EcoPointsReviewBonus  int

	// ListingTTLDays is the default lifetime of a listing when the seller
	// does not set expires_at.
	ListingTTLDays int
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" && viper.GetString("DATABASE_URL_TEST") != "" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	return &Config{
		Env:                 env,
		Port:                port,
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		SendinblueAPIKey:    viper.GetString("SENDINBLUE_API_KEY"),
		MailFrom:            viper.GetString("MAIL_FROM"),

		EcoPointsSaleRate:     decimalOr("ECO_POINTS_SALE_RATE", "0.02"),
		EcoPointsPurchaseRate: decimalOr("ECO_POINTS_PURCHASE_RATE", "0.01"),
		EcoPointsReviewBonus:  intOr("ECO_POINTS_REVIEW_BONUS", 5),
		ListingTTLDays:        intOr("LISTING_TTL_DAYS", 30),
	}, nil
}

func decimalOr(key, def string) decimal.Decimal {
	s := strings.TrimSpace(viper.GetString(key))
	if s == "" {
		s = def
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		d, _ = decimal.NewFromString(def)
	}
	return d
}

func intOr(key string, def int) int {
	if !viper.IsSet(key) || viper.GetString(key) == "" {
		return def
	}
	return viper.GetInt(key)
}
