package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"fundrace/internal/dataset"
	"fundrace/internal/features/figure"
	"fundrace/internal/palette"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full set of settings for one run.
type Config struct {
	Input    InputConfig    `mapstructure:"input"`
	Output   OutputConfig   `mapstructure:"output"`
	Chart    ChartConfig    `mapstructure:"chart"`
	Render   RenderConfig   `mapstructure:"render"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type InputConfig struct {
	File    string `mapstructure:"file"`
	Measure string `mapstructure:"measure"`
	Sheet   string `mapstructure:"sheet"` // xlsx only, empty means first sheet
}

type OutputConfig struct {
	GIF         bool   `mapstructure:"gif"` // render a GIF instead of the interactive page
	GIFFile     string `mapstructure:"gif_file"`
	HTMLFile    string `mapstructure:"html_file"`
	Open        bool   `mapstructure:"open"` // open the page in the browser
	HistoryFile string `mapstructure:"history_file"`
	ExportFile  string `mapstructure:"export_file"`
}

type ChartConfig struct {
	Title        string `mapstructure:"title"`
	XTitle       string `mapstructure:"x_title"`
	YTitle       string `mapstructure:"y_title"`
	SourceText   string `mapstructure:"source_text"`
	Logo         string `mapstructure:"logo"`
	TopK         int    `mapstructure:"top_k"`
	Width        int    `mapstructure:"width"`
	Height       int    `mapstructure:"height"`
	FrameDelayCS int    `mapstructure:"frame_delay_cs"`
	Font         string `mapstructure:"font"`
	// Overrides are "NAME=color" entries on top of palette.DefaultOverrides.
	// Kept as a list because viper lowercases map keys.
	Overrides palette.ColorMap `mapstructure:"-"`
}

type RenderConfig struct {
	Workers int `mapstructure:"workers"`
}

type LogConfig struct {
	Dir   string `mapstructure:"dir"`
	Level string `mapstructure:"level"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

type TelegramConfig struct {
	BotToken string   `mapstructure:"bot_token"`
	ChatIDs  []string `mapstructure:"-"`
	Caption  string   `mapstructure:"caption"`
}

// Enabled reports whether the GIF should be published.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && len(t.ChatIDs) > 0
}

// LoadOptions point Load at its sources. Empty paths use the defaults.
type LoadOptions struct {
	ConfigFile string
	EnvFile    string
	Flags      *pflag.FlagSet
}

// Load builds the config from, in increasing priority:
// 1. defaults
// 2. config.yaml
// 3. .env file (loaded into the process environment)
// 4. environment, FUNDRACE_* or the aliases below
// 5. flags that were set on the command line
func Load(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && opts.EnvFile != "" {
		return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("etc")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || opts.ConfigFile != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix("FUNDRACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setupEnvAliases(v)

	if opts.Flags != nil {
		if err := bindFlags(v, opts.Flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Telegram.ChatIDs = stringList(v.Get("telegram.chat_ids"))
	overrides, err := parseOverrides(stringList(v.Get("chart.overrides")))
	if err != nil {
		return nil, err
	}
	cfg.Chart.Overrides = overrides

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setupEnvAliases(v *viper.Viper) {
	v.BindEnv("input.file", "FUNDRACE_INPUT_FILE", "DATA_FILE")
	v.BindEnv("chart.logo", "FUNDRACE_CHART_LOGO", "LOGO_PATH")
	v.BindEnv("telegram.bot_token", "FUNDRACE_TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram.chat_ids", "FUNDRACE_TELEGRAM_CHAT_IDS", "TELEGRAM_CHAT_IDS")
	v.BindEnv("telegram.caption", "FUNDRACE_TELEGRAM_CAPTION", "TELEGRAM_CAPTION")
	v.BindEnv("log.level", "FUNDRACE_LOG_LEVEL", "LOG_LEVEL")
}

func setDefaults(v *viper.Viper) {
	// Input
	v.SetDefault("input.file", "rwa-asset-timeseries-export.csv")
	v.SetDefault("input.measure", dataset.DefaultMeasure)
	v.SetDefault("input.sheet", "")

	// Output
	v.SetDefault("output.gif", false)
	v.SetDefault("output.gif_file", "rwa_growth_animation.gif")
	v.SetDefault("output.html_file", "rwa_growth_animation.html")
	v.SetDefault("output.open", false)
	v.SetDefault("output.history_file", "rwa_growth_history.png")
	v.SetDefault("output.export_file", "rwa_observations.csv")

	// Chart
	v.SetDefault("chart.title", figure.DefaultTitle)
	v.SetDefault("chart.x_title", figure.DefaultXAxisTitle)
	v.SetDefault("chart.y_title", figure.DefaultYAxisTitle)
	v.SetDefault("chart.source_text", figure.DefaultSource)
	v.SetDefault("chart.logo", "logos/securitize.svg")
	v.SetDefault("chart.top_k", 10)
	v.SetDefault("chart.width", 1280)
	v.SetDefault("chart.height", 720)
	v.SetDefault("chart.frame_delay_cs", 5) // 0.05s per frame
	v.SetDefault("chart.font", "")
	v.SetDefault("chart.overrides", []string{})

	// Render
	v.SetDefault("render.workers", runtime.NumCPU())

	// Log, metrics
	v.SetDefault("log.dir", "logs")
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.textfile", "")

	// Telegram
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_ids", []string{})
	v.SetDefault("telegram.caption", figure.DefaultTitle)
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"input":            "input.file",
	"measure":          "input.measure",
	"sheet":            "input.sheet",
	"gif":              "output.gif",
	"gif-file":         "output.gif_file",
	"html-file":        "output.html_file",
	"open":             "output.open",
	"history-file":     "output.history_file",
	"export-file":      "output.export_file",
	"title":            "chart.title",
	"logo":             "chart.logo",
	"top-k":            "chart.top_k",
	"width":            "chart.width",
	"height":           "chart.height",
	"frame-delay":      "chart.frame_delay_cs",
	"font":             "chart.font",
	"override":         "chart.overrides",
	"workers":          "render.workers",
	"log-dir":          "log.dir",
	"log-level":        "log.level",
	"metrics-textfile": "metrics.textfile",
	"chat-ids":         "telegram.chat_ids",
	"caption":          "telegram.caption",
}

// RegisterFlags adds the config flags to fs. Flag defaults are zero values,
// only flags set on the command line take effect.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to config file (default ./config.yaml or ./etc/config.yaml)")
	fs.String("env-file", "", "Path to .env file (default ./.env)")

	fs.StringP("input", "i", "", "Input CSV or XLSX file (env: FUNDRACE_INPUT_FILE, DATA_FILE)")
	fs.String("measure", "", "Measure to keep (env: FUNDRACE_INPUT_MEASURE)")
	fs.String("sheet", "", "Worksheet for XLSX input (env: FUNDRACE_INPUT_SHEET)")

	fs.Bool("gif", false, "Render a GIF instead of the interactive page (env: FUNDRACE_OUTPUT_GIF)")
	fs.String("gif-file", "", "GIF output path (env: FUNDRACE_OUTPUT_GIF_FILE)")
	fs.String("html-file", "", "Interactive page output path (env: FUNDRACE_OUTPUT_HTML_FILE)")
	fs.Bool("open", false, "Open the interactive page in the browser (env: FUNDRACE_OUTPUT_OPEN)")
	fs.String("history-file", "", "History chart output path (env: FUNDRACE_OUTPUT_HISTORY_FILE)")
	fs.String("export-file", "", "Normalized CSV output path (env: FUNDRACE_OUTPUT_EXPORT_FILE)")

	fs.String("title", "", "Chart title (env: FUNDRACE_CHART_TITLE)")
	fs.String("logo", "", "Logo watermark file (env: FUNDRACE_CHART_LOGO, LOGO_PATH)")
	fs.Int("top-k", 0, "Number of funds to show (env: FUNDRACE_CHART_TOP_K)")
	fs.Int("width", 0, "GIF width in pixels (env: FUNDRACE_CHART_WIDTH)")
	fs.Int("height", 0, "GIF height in pixels (env: FUNDRACE_CHART_HEIGHT)")
	fs.Int("frame-delay", 0, "GIF frame delay in 1/100s (env: FUNDRACE_CHART_FRAME_DELAY_CS)")
	fs.String("font", "", "TTF font for GIF frames (env: FUNDRACE_CHART_FONT)")
	fs.StringArray("override", nil, "Color override NAME=color, repeatable (env: FUNDRACE_CHART_OVERRIDES, comma-separated hex colors)")

	fs.Int("workers", 0, "Parallel frame rasterizers (env: FUNDRACE_RENDER_WORKERS)")
	fs.String("log-dir", "", "Log directory (env: FUNDRACE_LOG_DIR)")
	fs.String("log-level", "", "Log level: debug, info, warn, error (env: FUNDRACE_LOG_LEVEL, LOG_LEVEL)")
	fs.String("metrics-textfile", "", "Write run metrics to this file (env: FUNDRACE_METRICS_TEXTFILE)")

	fs.String("chat-ids", "", "Comma-separated Telegram chat ids (env: FUNDRACE_TELEGRAM_CHAT_IDS, TELEGRAM_CHAT_IDS)")
	fs.String("caption", "", "Telegram caption (env: FUNDRACE_TELEGRAM_CAPTION)")
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// stringList accepts a comma-separated string (env, flags) or a list (YAML).
func stringList(raw interface{}) []string {
	var items []string
	switch val := raw.(type) {
	case nil:
		return []string{}
	case string:
		items = strings.Split(val, ",")
	case []string:
		items = val
	case []interface{}:
		for _, item := range val {
			items = append(items, fmt.Sprint(item))
		}
	default:
		items = []string{fmt.Sprint(val)}
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}

func parseOverrides(entries []string) (palette.ColorMap, error) {
	out := make(palette.ColorMap, len(entries))
	for _, entry := range entries {
		name, color, ok := strings.Cut(entry, "=")
		name, color = strings.TrimSpace(name), strings.TrimSpace(color)
		if !ok || name == "" {
			return nil, fmt.Errorf("chart.overrides: expected NAME=color, got %q", entry)
		}
		if _, err := palette.Parse(color); err != nil {
			return nil, fmt.Errorf("chart.overrides: %s: %w", name, err)
		}
		out[name] = color
	}
	return out, nil
}

// Validate checks settings that would otherwise fail deep inside a run.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Input.File) == "" {
		return fmt.Errorf("input.file is required")
	}
	if strings.TrimSpace(cfg.Input.Measure) == "" {
		return fmt.Errorf("input.measure is required")
	}
	if cfg.Chart.TopK <= 0 {
		return fmt.Errorf("chart.top_k must be positive, got %d", cfg.Chart.TopK)
	}
	if cfg.Chart.Width < 320 || cfg.Chart.Height < 240 {
		return fmt.Errorf("chart size %dx%d is too small, minimum is 320x240", cfg.Chart.Width, cfg.Chart.Height)
	}
	if cfg.Chart.FrameDelayCS <= 0 {
		return fmt.Errorf("chart.frame_delay_cs must be positive, got %d", cfg.Chart.FrameDelayCS)
	}
	if cfg.Render.Workers <= 0 {
		return fmt.Errorf("render.workers must be positive, got %d", cfg.Render.Workers)
	}
	if cfg.Chart.Font != "" {
		if _, err := os.Stat(cfg.Chart.Font); err != nil {
			return fmt.Errorf("chart.font: %w", err)
		}
	}
	if len(cfg.Telegram.ChatIDs) > 0 && cfg.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.chat_ids is set but telegram.bot_token is empty")
	}
	return nil
}
