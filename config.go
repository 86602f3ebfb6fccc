// FILE: config.go
// Package main – Runtime configuration model and loader.
//
// Precedence, lowest to highest:
//   defaults  <  config/config.yaml (optional)  <  process env (hydrated from .env)
//
// Typical flow (see main.go):
//   loadDotEnv()
//   cfg, err := loadConfig(path)
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read when no --config flag is given and the file exists.
const DefaultConfigPath = "config/config.yaml"

// DataFiles names the raw CSVs under DataConfig.RawPath.
type DataFiles struct {
	Train        string `yaml:"train" validate:"required"`
	Stores       string `yaml:"stores"`
	Oil          string `yaml:"oil"`
	Holidays     string `yaml:"holidays"`
	Transactions string `yaml:"transactions"`
}

type DataConfig struct {
	RawPath  string    `yaml:"raw_path"`
	Files    DataFiles `yaml:"files"`
	DemoCSV  string    `yaml:"demo_csv"`
	StoreNbr int       `yaml:"store_nbr" validate:"gt=0"`
	Family   string    `yaml:"family" validate:"required"`
	TailRows int       `yaml:"tail_rows" validate:"gte=0"`
}

type ModelConfig struct {
	Kind            string  `yaml:"kind" validate:"oneof=linear ols"`
	LookBackDays    int     `yaml:"look_back_days" validate:"gt=0"`
	Epochs          int     `yaml:"epochs" validate:"gt=0"`
	BatchSize       int     `yaml:"batch_size" validate:"gt=0"`
	LearningRate    float64 `yaml:"learning_rate" validate:"gt=0"`
	L2              float64 `yaml:"l2" validate:"gte=0"`
	Seed            int64   `yaml:"seed"`
	ValidationSplit float64 `yaml:"validation_split" validate:"gte=0,lt=1"`
	HoldoutFraction float64 `yaml:"holdout_fraction" validate:"gte=0,lt=1"`
}

type FeatureConfig struct {
	MissingSalesPolicy string `yaml:"missing_sales_policy" validate:"oneof=soft strict"`
	RejectDegenerate   bool   `yaml:"reject_degenerate"`
}

type WeatherConfig struct {
	APIKey string `yaml:"api_key"`
	URL    string `yaml:"url"`
	Lat    string `yaml:"lat"`
	Lon    string `yaml:"lon"`
}

// Config holds every knob the CLI and server use.
type Config struct {
	Data     DataConfig    `yaml:"data"`
	Model    ModelConfig   `yaml:"model"`
	Features FeatureConfig `yaml:"features"`
	Pricing  Pricing       `yaml:"pricing"`
	Weather  WeatherConfig `yaml:"weather"`

	ArtifactDir string `yaml:"artifact_dir" validate:"required"`
	HistoryDB   string `yaml:"history_db"`
	Port        int    `yaml:"port" validate:"gt=0,lt=65536"`
	LogLevel    string `yaml:"log_level"`
}

// defaultConfig matches config/config.yaml.
func defaultConfig() Config {
	return Config{
		Data: DataConfig{
			RawPath: "data/raw",
			Files: DataFiles{
				Train:        "train.csv",
				Stores:       "stores.csv",
				Oil:          "oil.csv",
				Holidays:     "holidays_events.csv",
				Transactions: "transactions.csv",
			},
			DemoCSV:  "demo_data.csv",
			StoreNbr: 1,
			Family:   "GROCERY I",
			TailRows: 1000,
		},
		Model: ModelConfig{
			Kind:            KindLinear,
			LookBackDays:    DefaultWindowLength,
			Epochs:          5,
			BatchSize:       32,
			LearningRate:    0.01,
			L2:              1e-4,
			Seed:            42,
			ValidationSplit: 0.1,
			HoldoutFraction: 0.2,
		},
		Features: FeatureConfig{MissingSalesPolicy: string(MissingSalesSoft)},
		Pricing:  DefaultPricing(),
		Weather: WeatherConfig{
			Lat: "-0.1807",
			Lon: "-78.4678",
		},
		ArtifactDir: "models",
		HistoryDB:   "models/decisions.db",
		Port:        8080,
		LogLevel:    "info",
	}
}

// loadConfig layers the YAML file (if any) and env over the defaults and
// validates the result. An explicit path that does not exist is an error;
// the default path is optional.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}
	bs, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(bs, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(c *Config) {
	c.Data.RawPath = getEnv("DATA_RAW_PATH", c.Data.RawPath)
	c.Data.DemoCSV = getEnv("DEMO_CSV", c.Data.DemoCSV)
	c.Data.StoreNbr = getEnvInt("STORE_NBR", c.Data.StoreNbr)
	c.Data.Family = getEnv("FAMILY", c.Data.Family)
	c.Data.TailRows = getEnvInt("TAIL_ROWS", c.Data.TailRows)

	c.Model.Kind = getEnv("MODEL_KIND", c.Model.Kind)
	c.Model.LookBackDays = getEnvInt("LOOK_BACK_DAYS", c.Model.LookBackDays)
	c.Model.Epochs = getEnvInt("EPOCHS", c.Model.Epochs)
	c.Model.BatchSize = getEnvInt("BATCH_SIZE", c.Model.BatchSize)
	c.Model.LearningRate = getEnvFloat("LEARNING_RATE", c.Model.LearningRate)
	c.Model.Seed = getEnvInt64("MODEL_SEED", c.Model.Seed)

	c.Features.MissingSalesPolicy = string(ParseMissingSalesPolicy(getEnv("MISSING_SALES_POLICY", c.Features.MissingSalesPolicy)))
	c.Features.RejectDegenerate = getEnvBool("SCALER_REJECT_DEGENERATE", c.Features.RejectDegenerate)

	c.Pricing.BasePrice = getEnvFloat("BASE_PRICE", c.Pricing.BasePrice)
	c.Pricing.Cost = getEnvFloat("COST", c.Pricing.Cost)
	c.Pricing.PromoDiscountFactor = getEnvFloat("PROMO_DISCOUNT_FACTOR", c.Pricing.PromoDiscountFactor)

	c.Weather.APIKey = getEnv("WEATHER_API_KEY", c.Weather.APIKey)
	c.Weather.URL = getEnv("WEATHER_URL", c.Weather.URL)
	c.Weather.Lat = getEnv("WEATHER_LAT", c.Weather.Lat)
	c.Weather.Lon = getEnv("WEATHER_LON", c.Weather.Lon)

	c.ArtifactDir = getEnv("ARTIFACT_DIR", c.ArtifactDir)
	c.HistoryDB = getEnv("HISTORY_DB", c.HistoryDB)
	c.Port = getEnvInt("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

var validate = validator.New()

func validateConfig(c Config) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// TrainOptions derives the forecaster options from the model section.
func (c Config) TrainOptions() TrainOptions {
	return TrainOptions{
		Epochs:          c.Model.Epochs,
		BatchSize:       c.Model.BatchSize,
		LearningRate:    c.Model.LearningRate,
		L2:              c.Model.L2,
		Seed:            c.Model.Seed,
		ValidationSplit: c.Model.ValidationSplit,
	}
}
