package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "DONATION_"

type Application struct {
	Host       string     `koanf:"host"`
	Port       int        `koanf:"port"`
	Database   Database   `koanf:"db"`
	Allocation Allocation `koanf:"allocation"`
	RateLimit  RateLimit  `koanf:"ratelimit"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// Allocation holds the engine settings. Amounts are kept as strings so they survive
// yaml and env parsing without float rounding.
type Allocation struct {
	LeftoverPercentBase string   `koanf:"leftoverpercentbase"`
	Defaults            Defaults `koanf:"defaults"`
}

type Defaults struct {
	TotalValue      string `koanf:"totalvalue"`
	DonationPercent string `koanf:"donationpercent"`
}

type RateLimit struct {
	// PerMinute is the number of API requests allowed per client IP. Zero disables the limit.
	PerMinute int `koanf:"perminute"`
}

func defaults() Application {
	return Application{
		Host: "http://localhost:8181",
		Port: 8181,
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "donation",
			Pass:   "",
			Name:   "donation",
			Schema: "donation",
		},
		Allocation: Allocation{
			LeftoverPercentBase: "1",
			Defaults: Defaults{
				TotalValue:      "50000",
				DonationPercent: "0.10",
			},
		},
		RateLimit: RateLimit{PerMinute: 120},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			// DONATION_ALLOCATION_DEFAULTS_TOTALVALUE -> allocation.defaults.totalvalue
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	if err := app.Allocation.validate(); err != nil {
		return Application{}, err
	}
	return app, nil
}

func (a Allocation) validate() error {
	if _, err := a.LeftoverPercent(); err != nil {
		return err
	}
	_, _, err := a.Defaults.Values()
	return err
}

func (a Allocation) LeftoverPercent() (decimal.Decimal, error) {
	base, err := decimal.NewFromString(a.LeftoverPercentBase)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid allocation.leftoverpercentbase %q: %w", a.LeftoverPercentBase, err)
	}
	return base, nil
}

// Values returns the total value and donation percent of a newly created list.
func (d Defaults) Values() (decimal.Decimal, decimal.Decimal, error) {
	totalValue, err := decimal.NewFromString(d.TotalValue)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid allocation.defaults.totalvalue %q: %w", d.TotalValue, err)
	}
	donationPercent, err := decimal.NewFromString(d.DonationPercent)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid allocation.defaults.donationpercent %q: %w", d.DonationPercent, err)
	}
	if totalValue.IsNegative() || donationPercent.IsNegative() || donationPercent.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("allocation defaults out of range: total %s, percent %s", totalValue, donationPercent)
	}
	return totalValue, donationPercent, nil
}
