package config

// Layered configuration
// 1. defaults (the values the chart was designed around)
// 2. config.yaml in the working directory
// 3. .env file
// 4. environment variables
// 5. command line flags

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config - everything a run needs
type Config struct {
	NHL      NHLConfig      `mapstructure:"nhl"`
	Logos    LogosConfig    `mapstructure:"logos"`
	Chart    ChartConfig    `mapstructure:"chart"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	App      AppConfig      `mapstructure:"app"`
}

// NHLConfig - stats API and logo host
type NHLConfig struct {
	StatsURL       string  `mapstructure:"stats_url"`
	LogoBaseURL    string  `mapstructure:"logo_base_url"`
	Season         string  `mapstructure:"season"`    // e.g. 20242025
	GameType       int     `mapstructure:"game_type"` // 2 = regular season
	MinGames       int     `mapstructure:"min_games"`
	Limit          int     `mapstructure:"limit"`
	RequestTimeout int     `mapstructure:"request_timeout"` // seconds
	MaxRetries     int     `mapstructure:"max_retries"`
	RateLimit      float64 `mapstructure:"rate_limit"` // requests per second
}

// LogosConfig - where logos live on disk
type LogosConfig struct {
	SVGDir      string `mapstructure:"svg_dir"`
	JPGDir      string `mapstructure:"jpg_dir"`
	Size        int    `mapstructure:"size"` // square raster size in px
	Concurrency int    `mapstructure:"concurrency"`
}

// ChartConfig - rendered artifact
type ChartConfig struct {
	Output  string `mapstructure:"output"`
	Top     int    `mapstructure:"top"`
	Preview bool   `mapstructure:"preview"` // also write a PNG next to the SVG
}

// TelegramConfig - optional publishing of the PNG preview
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// AppConfig - logs, snapshots, metrics
type AppConfig struct {
	LogsDir     string `mapstructure:"logs_dir"`
	DataDir     string `mapstructure:"data_dir"`
	MetricsFile string `mapstructure:"metrics_file"`
}

// Enabled reports whether both bot token and chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// RegisterFlags adds one flag per config key to fs.
// Flags only override other sources when explicitly set.
func RegisterFlags(fs *pflag.FlagSet) {
	// NHL
	fs.String("nhl.season", "20242025", "Season id, e.g. 20242025 (env: NHL_SEASON)")
	fs.Int("nhl.min_games", 19, "Minimum games played filter (env: NHL_MIN_GAMES)")
	fs.Int("nhl.limit", 50, "Rows requested from the stats API (env: NHL_LIMIT)")
	fs.Int("nhl.max_retries", 0, "Retries for 429/5xx responses (env: NHL_MAX_RETRIES)")
	fs.Int("nhl.request_timeout", 30, "Request timeout in seconds (env: NHL_REQUEST_TIMEOUT)")

	// Logos
	fs.String("logos.svg_dir", "Logos", "Directory for downloaded SVG logos (env: LOGOS_SVG_DIR)")
	fs.String("logos.jpg_dir", "Logos_JPG", "Directory for converted JPG logos (env: LOGOS_JPG_DIR)")
	fs.Int("logos.concurrency", 32, "Parallel logo downloads (env: LOGOS_CONCURRENCY)")

	// Chart
	fs.String("chart.output", "nhl_goalie_save_percentages.svg", "Chart output file (env: CHART_OUTPUT)")
	fs.Int("chart.top", 10, "Number of goalies charted (env: CHART_TOP)")
	fs.Bool("chart.preview", true, "Also render a PNG preview (env: CHART_PREVIEW)")

	// App
	fs.String("app.logs_dir", "logs", "Logs directory (env: APP_LOGS_DIR)")
	fs.String("app.data_dir", "data_out", "Directory for API snapshots (env: APP_DATA_DIR)")
	fs.String("app.metrics_file", "", "Write Prometheus textfile metrics here (env: APP_METRICS_FILE)")
}

// LoadConfig resolves the configuration. fs may be nil.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	// .env values become process env, so BindEnv picks them up below
	_ = godotenv.Load(".env")

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setupEnvAliases(v)

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// NHL
	v.SetDefault("nhl.stats_url", "https://api.nhle.com/stats/rest/en/goalie/summary")
	v.SetDefault("nhl.logo_base_url", "https://assets.nhle.com/logos/nhl/svg")
	v.SetDefault("nhl.season", "20242025")
	v.SetDefault("nhl.game_type", 2)
	v.SetDefault("nhl.min_games", 19)
	v.SetDefault("nhl.limit", 50)
	v.SetDefault("nhl.request_timeout", 30)
	v.SetDefault("nhl.max_retries", 0) // single attempt per request
	v.SetDefault("nhl.rate_limit", 20.0)

	// Logos
	v.SetDefault("logos.svg_dir", "Logos")
	v.SetDefault("logos.jpg_dir", "Logos_JPG")
	v.SetDefault("logos.size", 200)
	v.SetDefault("logos.concurrency", 32)

	// Chart
	v.SetDefault("chart.output", "nhl_goalie_save_percentages.svg")
	v.SetDefault("chart.top", 10)
	v.SetDefault("chart.preview", true)

	// Telegram
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")

	// App
	v.SetDefault("app.logs_dir", "logs")
	v.SetDefault("app.data_dir", "data_out")
	v.SetDefault("app.metrics_file", "")
}

func setupEnvAliases(v *viper.Viper) {
	// NHL
	v.BindEnv("nhl.stats_url", "NHL_STATS_URL")
	v.BindEnv("nhl.logo_base_url", "NHL_LOGO_BASE_URL")
	v.BindEnv("nhl.season", "NHL_SEASON")
	v.BindEnv("nhl.game_type", "NHL_GAME_TYPE")
	v.BindEnv("nhl.min_games", "NHL_MIN_GAMES")
	v.BindEnv("nhl.limit", "NHL_LIMIT")
	v.BindEnv("nhl.request_timeout", "NHL_REQUEST_TIMEOUT")
	v.BindEnv("nhl.max_retries", "NHL_MAX_RETRIES")
	v.BindEnv("nhl.rate_limit", "NHL_RATE_LIMIT")

	// Logos
	v.BindEnv("logos.svg_dir", "LOGOS_SVG_DIR")
	v.BindEnv("logos.jpg_dir", "LOGOS_JPG_DIR")
	v.BindEnv("logos.size", "LOGOS_SIZE")
	v.BindEnv("logos.concurrency", "LOGOS_CONCURRENCY")

	// Chart
	v.BindEnv("chart.output", "CHART_OUTPUT")
	v.BindEnv("chart.top", "CHART_TOP")
	v.BindEnv("chart.preview", "CHART_PREVIEW")

	// Telegram
	v.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID")

	// App
	v.BindEnv("app.logs_dir", "APP_LOGS_DIR")
	v.BindEnv("app.data_dir", "APP_DATA_DIR")
	v.BindEnv("app.metrics_file", "APP_METRICS_FILE")
}

func validateConfig(cfg *Config) error {
	if len(cfg.NHL.Season) != 8 {
		return fmt.Errorf("nhl.season must look like 20242025, got %q", cfg.NHL.Season)
	}
	if cfg.NHL.MinGames < 0 {
		return fmt.Errorf("nhl.min_games must be >= 0, got %d", cfg.NHL.MinGames)
	}
	if cfg.NHL.Limit <= 0 {
		return fmt.Errorf("nhl.limit must be > 0, got %d", cfg.NHL.Limit)
	}
	if cfg.Chart.Top <= 0 {
		return fmt.Errorf("chart.top must be > 0, got %d", cfg.Chart.Top)
	}
	if cfg.Logos.Size <= 0 {
		return fmt.Errorf("logos.size must be > 0, got %d", cfg.Logos.Size)
	}
	if cfg.Logos.Concurrency <= 0 {
		cfg.Logos.Concurrency = 1
	}
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	return nil
}
