package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"FinFold/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Logger struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logger"`
	Dataset struct {
		Source          string `yaml:"source"` // clickhouse or csv
		CSVPath         string `yaml:"csv_path"`
		Table           string `yaml:"table"`
		TimestampColumn string `yaml:"timestamp_column"`
	} `yaml:"dataset"`
	Evaluation struct {
		InitialTrainSpan string   `yaml:"initial_train_span"`
		TestSpan         string   `yaml:"test_span"`
		StepSpan         string   `yaml:"step_span"`
		FeatureColumns   []string `yaml:"feature_columns"`
		TargetColumn     string   `yaml:"target_column"`
		Scaler           string   `yaml:"scaler"`
		Model            string   `yaml:"model"`
		// PnL thresholds are accepted for interface compatibility but no
		// computation consumes them yet.
		PnLUpper float64 `yaml:"pnl_upper"`
		PnLLower float64 `yaml:"pnl_lower"`
	} `yaml:"evaluation"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		ResultTable      string        `yaml:"result_table"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		RunsTopic    string   `yaml:"runs_topic"`
		ResultsTopic string   `yaml:"results_topic"`
		LogsTopic    string   `yaml:"logs_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Queue    struct {
			Workers    int           `yaml:"workers"`
			RetryLimit int           `yaml:"retry_limit"`
			RetryDelay time.Duration `yaml:"retry_delay"`
		} `yaml:"queue"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"redis"`
	RemoteModel struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"remote_model"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATASET_SOURCE"); v != "" {
		c.Dataset.Source = v
	}
	if v := os.Getenv("DATASET_CSV_PATH"); v != "" {
		c.Dataset.CSVPath = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	c.Server.Port = util.ParseIntDefault(os.Getenv("SERVER_PORT"), c.Server.Port)
	c.ClickHouse.Port = util.ParseIntDefault(os.Getenv("CLICKHOUSE_PORT"), c.ClickHouse.Port)
	c.Redis.Port = util.ParseIntDefault(os.Getenv("REDIS_PORT"), c.Redis.Port)

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Dataset.Source == "" {
		return fmt.Errorf("dataset.source is required")
	}
	if c.Dataset.Source != "clickhouse" && c.Dataset.Source != "csv" {
		return fmt.Errorf("dataset.source must be 'clickhouse' or 'csv', got '%s'", c.Dataset.Source)
	}
	if c.Dataset.Source == "csv" && c.Dataset.CSVPath == "" {
		return fmt.Errorf("dataset.csv_path is required for csv source")
	}
	if c.Dataset.TimestampColumn == "" {
		return fmt.Errorf("dataset.timestamp_column is required")
	}
	if len(c.Evaluation.FeatureColumns) == 0 {
		return fmt.Errorf("evaluation.feature_columns cannot be empty")
	}
	if c.Evaluation.TargetColumn == "" {
		return fmt.Errorf("evaluation.target_column is required")
	}
	if c.Evaluation.InitialTrainSpan == "" || c.Evaluation.TestSpan == "" || c.Evaluation.StepSpan == "" {
		return fmt.Errorf("evaluation spans (initial_train_span, test_span, step_span) are required")
	}
	return nil
}
