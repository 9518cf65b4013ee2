package config

import (
	"os"
	"path/filepath"
	"testing"

	"fundrace/internal/dataset"
	"fundrace/internal/features/figure"
	"fundrace/internal/palette"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, dataset.DefaultMeasure, cfg.Input.Measure)
	assert.Equal(t, "rwa-asset-timeseries-export.csv", cfg.Input.File)
	assert.False(t, cfg.Output.GIF)
	assert.Equal(t, "rwa_growth_animation.gif", cfg.Output.GIFFile)
	assert.Equal(t, figure.DefaultTitle, cfg.Chart.Title)
	assert.Equal(t, figure.DefaultSource, cfg.Chart.SourceText)
	assert.Equal(t, 10, cfg.Chart.TopK)
	assert.Equal(t, 1280, cfg.Chart.Width)
	assert.Equal(t, 720, cfg.Chart.Height)
	assert.Equal(t, 5, cfg.Chart.FrameDelayCS)
	assert.Positive(t, cfg.Render.Workers)
	assert.Empty(t, cfg.Chart.Overrides)
	assert.False(t, cfg.Telegram.Enabled())
}

func TestLoad_LayeredSources(t *testing.T) {
	configFile := writeFile(t, "config.yaml", `
input:
  file: data/export.xlsx
  sheet: Funds
chart:
  title: From YAML
  top_k: 5
  overrides:
    - "ACME=rgb(1, 2, 3)"
    - "BUIDL=#000000"
telegram:
  chat_ids: ["-1001", "42"]
`)
	t.Setenv("FUNDRACE_CHART_TITLE", "From env")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load(LoadOptions{
		ConfigFile: configFile,
		Flags:      flags(t, "--top-k", "3", "--gif"),
	})
	require.NoError(t, err)

	assert.Equal(t, "data/export.xlsx", cfg.Input.File)
	assert.Equal(t, "Funds", cfg.Input.Sheet)
	assert.Equal(t, "From env", cfg.Chart.Title)
	assert.Equal(t, 3, cfg.Chart.TopK)
	assert.True(t, cfg.Output.GIF)
	assert.Equal(t, palette.ColorMap{"ACME": "rgb(1, 2, 3)", "BUIDL": "#000000"}, cfg.Chart.Overrides)
	assert.Equal(t, []string{"-1001", "42"}, cfg.Telegram.ChatIDs)
	assert.True(t, cfg.Telegram.Enabled())
}

func TestLoad_EnvFile(t *testing.T) {
	const key = "FUNDRACE_INPUT_MEASURE"
	_, preset := os.LookupEnv(key)
	require.False(t, preset)
	t.Cleanup(func() { os.Unsetenv(key) })

	envFile := writeFile(t, ".env", key+"=Total Supply\n")
	cfg, err := Load(LoadOptions{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "Total Supply", cfg.Input.Measure)
}

func TestLoad_CommaSeparatedLists(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_IDS", " 1, 2 ,,3")
	t.Setenv("FUNDRACE_CHART_OVERRIDES", "ACME=#010203")

	cfg, err := Load(LoadOptions{Flags: flags(t, "--override", "OUSG=rgb(9, 9, 9)")})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, cfg.Telegram.ChatIDs)
	assert.Equal(t, palette.ColorMap{"OUSG": "rgb(9, 9, 9)"}, cfg.Chart.Overrides)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)

	_, err = Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	assert.Error(t, err)

	_, err = Load(LoadOptions{Flags: flags(t, "--override", "ACME")})
	assert.ErrorContains(t, err, "NAME=color")

	_, err = Load(LoadOptions{Flags: flags(t, "--override", "ACME=blue")})
	assert.ErrorIs(t, err, palette.ErrBadColor)

	_, err = Load(LoadOptions{Flags: flags(t, "--top-k", "0")})
	assert.ErrorContains(t, err, "chart.top_k")

	_, err = Load(LoadOptions{Flags: flags(t, "--chat-ids", "1")})
	assert.ErrorContains(t, err, "bot_token")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Input:  InputConfig{File: "in.csv", Measure: "M"},
			Chart:  ChartConfig{TopK: 10, Width: 1280, Height: 720, FrameDelayCS: 5},
			Render: RenderConfig{Workers: 2},
		}
	}
	require.NoError(t, Validate(valid()))

	cfg := valid()
	cfg.Chart.Width = 100
	assert.Error(t, Validate(cfg))

	cfg = valid()
	cfg.Render.Workers = 0
	assert.Error(t, Validate(cfg))

	cfg = valid()
	cfg.Chart.Font = filepath.Join(t.TempDir(), "none.ttf")
	assert.Error(t, Validate(cfg))

	cfg = valid()
	cfg.Input.File = " "
	assert.Error(t, Validate(cfg))
}

func TestStringList(t *testing.T) {
	assert.Equal(t, []string{}, stringList(nil))
	assert.Equal(t, []string{"a", "b"}, stringList(" a ,b,"))
	assert.Equal(t, []string{"1", "2"}, stringList([]interface{}{1, "2"}))
	assert.Equal(t, []string{"x"}, stringList([]string{"x", " "}))
}
