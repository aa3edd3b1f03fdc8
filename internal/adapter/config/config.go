package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/govalues/decimal"
)

type Config struct {
	Database *Database
	HTTP     *HTTP
	PosAPI   *PosAPI
	Orders   *Orders
	App      *App
}

const AppModeProduction = "PROD"
const AppModeDevelop = "DEV"

type App struct {
	LogLevel string `env:"LOG_LEVEL"`
	Mode     string `env:"APP_MODE"`
	// TokenKey is a hex encoded v4 symmetric key. Sessions do not survive a
	// restart when it is empty.
	TokenKey string        `env:"TOKEN_KEY"`
	TokenTTL time.Duration `env:"TOKEN_TTL"`
}

type Database struct {
	DSN string `env:"DATABASE_URI"`
}

type HTTP struct {
	HostString string `env:"RUN_ADDRESS"`
}

type PosAPI struct {
	BaseURL string        `env:"POS_API_ADDRESS"`
	Timeout time.Duration `env:"POS_API_TIMEOUT"`
}

type Orders struct {
	TaxRate       string        `env:"TAX_RATE"`
	SubmitTimeout time.Duration `env:"SUBMIT_TIMEOUT"`
	DraftTTL      time.Duration `env:"DRAFT_TTL"`
}

func (o *Orders) Rate() (decimal.Decimal, error) {
	rate, err := decimal.Parse(o.TaxRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("tax rate %q: %w", o.TaxRate, err)
	}
	if rate.Sign() < 0 || rate.Cmp(decimal.One) > 0 {
		return decimal.Zero, fmt.Errorf("tax rate %s out of range [0, 1]", rate)
	}
	return rate, nil
}

func NewConfig(fs *flag.FlagSet, args []string) (*Config, error) {
	var db Database
	var http HTTP
	var posAPI PosAPI
	var orders Orders
	var app App

	fs.StringVar(&db.DSN, "d", "", "Database string")
	fs.StringVar(&http.HostString, "a", `localhost:8080`, "HTTP server endpoint")
	fs.StringVar(&posAPI.BaseURL, "r", `http://localhost:8000/api`, "Remote POS API base URL")
	fs.DurationVar(&posAPI.Timeout, "rt", 15*time.Second, "Remote POS API request timeout")
	fs.StringVar(&orders.TaxRate, "t", `0.08`, "Sales tax rate")
	fs.DurationVar(&orders.SubmitTimeout, "s", 10*time.Second, "Order submission timeout")
	fs.DurationVar(&orders.DraftTTL, "ttl", 2*time.Hour, "Idle order draft lifetime")
	fs.StringVar(&app.LogLevel, "l", `error`, "Log level")
	fs.StringVar(&app.Mode, "m", `DEV`, "PROD / DEV")
	fs.StringVar(&app.TokenKey, "k", "", "Session token key (hex)")
	fs.DurationVar(&app.TokenTTL, "tt", 12*time.Hour, "Session token lifetime")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	err := env.Parse(&db)
	if err != nil {
		return nil, fmt.Errorf("error parsing env database config: %w", err)
	}
	err = env.Parse(&http)
	if err != nil {
		return nil, fmt.Errorf("error parsing http config: %w", err)
	}
	err = env.Parse(&app)
	if err != nil {
		return nil, fmt.Errorf("error parsing app config: %w", err)
	}
	err = env.Parse(&posAPI)
	if err != nil {
		return nil, fmt.Errorf("error parsing pos api config: %w", err)
	}
	err = env.Parse(&orders)
	if err != nil {
		return nil, fmt.Errorf("error parsing orders config: %w", err)
	}

	if posAPI.BaseURL == "" {
		return nil, fmt.Errorf("pos api address is required")
	}
	if _, err := orders.Rate(); err != nil {
		return nil, err
	}

	config := Config{
		Database: &db,
		HTTP:     &http,
		PosAPI:   &posAPI,
		Orders:   &orders,
		App:      &app,
	}

	return &config, nil
}
