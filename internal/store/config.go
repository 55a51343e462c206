package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DBPath        string   `yaml:"db_path"`
	ModelsDir     string   `yaml:"models_dir"`
	TickerMapFile string   `yaml:"ticker_map_file"`
	Tickers       []string `yaml:"tickers"`

	Sentiment struct {
		Scorer       string `yaml:"scorer"`        // LEXICON or LLM
		ModelVersion string `yaml:"model_version"` // tag written to sentiment_scores
		LLM          struct {
			Provider    string  `yaml:"provider"` // OPENAI or CLAUDE
			Model       string  `yaml:"model"`
			MaxTokens   int     `yaml:"max_tokens"`
			Temperature float32 `yaml:"temperature"`
		} `yaml:"llm"`
	} `yaml:"sentiment"`

	Ingest struct {
		NewsCSV     string   `yaml:"news_csv"`
		PriceCSV    string   `yaml:"price_csv"`
		Feeds       []string `yaml:"feeds"`
		Scrape      bool     `yaml:"scrape"`
		MaxArticles int      `yaml:"max_articles"`
		PriceSource string   `yaml:"price_source"` // KITE or CSV
		Kite        struct {
			Exchange   string `yaml:"exchange"`
			PeriodDays int    `yaml:"period_days"`
		} `yaml:"kite"`
	} `yaml:"ingest"`

	Trainer struct {
		Folds    int   `yaml:"folds"`
		Trees    int   `yaml:"trees"`
		MaxDepth int   `yaml:"max_depth"`
		Seed     int64 `yaml:"seed"`
	} `yaml:"trainer"`

	Backtest struct {
		TransactionCost float64 `yaml:"transaction_cost"`
		InitialCapital  float64 `yaml:"initial_capital"`
	} `yaml:"backtest"`

	VectorIndex struct {
		Enabled        bool   `yaml:"enabled"`
		EmbeddingModel string `yaml:"embedding_model"`
	} `yaml:"vector_index"`
}

func (c *Config) Validate() error {
	if len(c.Tickers) == 0 {
		return errors.New("tickers cannot be empty")
	}
	if c.Sentiment.Scorer != "LEXICON" && c.Sentiment.Scorer != "LLM" {
		return fmt.Errorf("invalid sentiment.scorer '%s': must be 'LEXICON' or 'LLM'", c.Sentiment.Scorer)
	}
	if c.Sentiment.Scorer == "LLM" {
		if c.Sentiment.LLM.Provider != "OPENAI" && c.Sentiment.LLM.Provider != "CLAUDE" {
			return fmt.Errorf("sentiment.llm.provider must be 'OPENAI' or 'CLAUDE', got '%s'", c.Sentiment.LLM.Provider)
		}
	}
	if c.Ingest.PriceSource != "KITE" && c.Ingest.PriceSource != "CSV" {
		return fmt.Errorf("ingest.price_source must be 'KITE' or 'CSV', got '%s'", c.Ingest.PriceSource)
	}
	if c.Trainer.Folds < 2 {
		return fmt.Errorf("trainer.folds must be at least 2, got %d", c.Trainer.Folds)
	}
	if c.Backtest.TransactionCost < 0 || c.Backtest.TransactionCost >= 1 {
		return fmt.Errorf("backtest.transaction_cost must be in [0, 1), got %.4f", c.Backtest.TransactionCost)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.DBPath == "" {
		c.DBPath = "data/sentiment.db"
	}
	if c.ModelsDir == "" {
		c.ModelsDir = "models"
	}
	if c.TickerMapFile == "" {
		c.TickerMapFile = "data/ticker_aliases.yaml"
	}
	if c.Sentiment.Scorer == "" {
		c.Sentiment.Scorer = "LEXICON"
	}
	if c.Sentiment.ModelVersion == "" {
		if c.Sentiment.Scorer == "LEXICON" {
			c.Sentiment.ModelVersion = "lexicon-v1"
		} else {
			c.Sentiment.ModelVersion = "llm-v1"
		}
	}
	if c.Ingest.MaxArticles == 0 {
		c.Ingest.MaxArticles = 15
	}
	if c.Ingest.PriceSource == "" {
		c.Ingest.PriceSource = "CSV"
	}
	if c.Ingest.Kite.PeriodDays == 0 {
		c.Ingest.Kite.PeriodDays = 60
	}
	if c.Trainer.Folds == 0 {
		c.Trainer.Folds = 5
	}
	if c.Trainer.Trees == 0 {
		c.Trainer.Trees = 300
	}
	if c.Trainer.MaxDepth == 0 {
		c.Trainer.MaxDepth = 8
	}
	if c.Trainer.Seed == 0 {
		c.Trainer.Seed = 42
	}
	if c.Backtest.TransactionCost == 0 {
		c.Backtest.TransactionCost = 0.001
	}
	if c.Backtest.InitialCapital == 0 {
		c.Backtest.InitialCapital = 1.0
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
