package config

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// Defaults applied on first run. The demo relay mirrors the endpoint the
// project was built against.
const (
	DefaultStatusURL    = "https://radio.example.com/health"
	DefaultStreamOrigin = "https://radio.example.com"
	DefaultPollMS       = 1000
	DefaultPlayer       = "mpv"
)

type Config struct {
	Theme        string `json:"theme"`
	StatusURL    string `json:"status_url"`
	StreamOrigin string `json:"stream_origin"`
	PollMS       int    `json:"poll_interval_ms"`
	Player       string `json:"player"`
}

// PollInterval returns the configured poll interval as a duration.
func (s *Config) PollInterval() time.Duration {
	if s.PollMS <= 0 {
		return DefaultPollMS * time.Millisecond
	}
	return time.Duration(s.PollMS) * time.Millisecond
}

type icewatchTheme struct {
	Theme string
}

func (m icewatchTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch m.Theme {
	case "Dark":
		variant = theme.VariantDark
	case "Light":
		variant = theme.VariantLight
	}

	return theme.DefaultTheme().Color(name, variant)
}

func (m icewatchTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (m icewatchTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (m icewatchTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}

func defaultConfig() *Config {
	return &Config{
		Theme:        "Default",
		StatusURL:    DefaultStatusURL,
		StreamOrigin: DefaultStreamOrigin,
		PollMS:       DefaultPollMS,
		Player:       DefaultPlayer,
	}
}

func GetAppConfig() (*Config, error) {
	path, err := appPath()
	if err != nil {
		return nil, fmt.Errorf("GetAppConfig: failed to access config path due to error %w:", err)
	}

	cfgfile, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			err := os.MkdirAll(filepath.Dir(path), 0700)
			if err != nil {
				return nil, fmt.Errorf("GetAppConfig: failed to create default path due to error %w:", err)
			}

			conf := defaultConfig()

			b, err := json.Marshal(conf)
			if err != nil {
				return nil, fmt.Errorf("GetAppConfig: failed to convert and store default config %w:", err)
			}

			if err := os.WriteFile(path, b, 0644); err != nil {
				return nil, fmt.Errorf("GetAppConfig: failed to create default config due to error %w:", err)
			}

			return conf, nil
		}

		return nil, fmt.Errorf("GetAppConfig: failed to open config due to error %w:", err)
	}
	defer cfgfile.Close()

	conf := defaultConfig()
	if err := json.NewDecoder(cfgfile).Decode(conf); err != nil {
		return nil, fmt.Errorf("GetAppConfig: failed to decode config due to error %w:", err)
	}

	return conf, nil
}

func appPath() (string, error) {
	oscfg, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("appPath: failed to get config file due to error %w:", err)
	}

	return fmt.Sprint(filepath.Join(oscfg, "icewatch", "settings.json")), nil
}

func (s *Config) ApplyAppConfig() {
	switch s.Theme {
	case "Dark":
		fyne.CurrentApp().Settings().SetTheme(icewatchTheme{"Dark"})
	case "Light":
		fyne.CurrentApp().Settings().SetTheme(icewatchTheme{"Light"})
	case "Default":
		fyne.CurrentApp().Settings().SetTheme(theme.DefaultTheme())
	}
}

func (s *Config) SaveAppConfig() error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("SaveAppConfig: failed to marshal json due to error %w:", err)
	}

	path, err := appPath()
	if err != nil {
		return fmt.Errorf("SaveAppConfig: failed to access config path due to error %w:", err)
	}

	if err := os.WriteFile(path, b, 0655); err != nil {
		return fmt.Errorf("SaveAppConfig: failed save config due to error %w:", err)
	}

	return nil
}
