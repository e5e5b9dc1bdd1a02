// Package config loads the display's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ajanata/apstatus"
)

// Config is the complete on-disk configuration.
type Config struct {
	Title      string           `yaml:"title"`
	Display    DisplayConfig    `yaml:"display"`
	Interfaces InterfacesConfig `yaml:"interfaces"`
	// Sudo runs system commands through sudo -n, for running the display unprivileged.
	Sudo    bool          `yaml:"sudo"`
	Timing  TimingConfig  `yaml:"timing"`
	Cache   CacheConfig   `yaml:"cache"`
	API     APIConfig     `yaml:"api"`
	GeoIP   GeoIPConfig   `yaml:"geoip"`
	VPN     VPNConfig     `yaml:"vpn"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type DisplayConfig struct {
	// Width and Height are the UI (landscape) dimensions.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// Rotate draws onto a portrait panel.
	Rotate bool `yaml:"rotate"`
	// FramePath is where each redraw is written as a BMP for the panel driver.
	FramePath string `yaml:"frame_path"`
	// TouchPath is polled for "x y" touch coordinates written by the touch driver. Empty disables touch input.
	TouchPath string `yaml:"touch_path"`
}

type InterfacesConfig struct {
	Host string `yaml:"host"`
	AP   string `yaml:"ap"`
}

type TimingConfig struct {
	Tick                  time.Duration `yaml:"tick"`
	Refresh               time.Duration `yaml:"refresh"`
	TouchCooldown         time.Duration `yaml:"touch_cooldown"`
	IgnoreAfterTransition time.Duration `yaml:"ignore_after_transition"`
	StatusMessage         time.Duration `yaml:"status_message"`
	CommandTimeout        time.Duration `yaml:"command_timeout"`
}

// CacheConfig holds per-fact TTLs. Zero disables caching for that fact.
type CacheConfig struct {
	HostLink     time.Duration `yaml:"host_link"`
	APState      time.Duration `yaml:"ap_state"`
	APSSID       time.Duration `yaml:"ap_ssid"`
	APClients    time.Duration `yaml:"ap_clients"`
	VPN          time.Duration `yaml:"vpn"`
	System       time.Duration `yaml:"system"`
	Geo          time.Duration `yaml:"geo"`
	FailureGrace time.Duration `yaml:"failure_grace"`
}

// APIConfig configures the RaspAP management REST API. The API is only used when Key is set.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Key     string        `yaml:"key"`
	Timeout time.Duration `yaml:"timeout"`
}

type GeoIPConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type VPNConfig struct {
	Enabled        bool      `yaml:"enabled"`
	ItemsPerScreen int       `yaml:"items_per_screen"`
	Profiles       []Profile `yaml:"profiles"`
	// ProfilesFile, if set, replaces Profiles with the list in that file.
	ProfilesFile string `yaml:"profiles_file"`
}

type Profile struct {
	Name     string `yaml:"name"`
	Server   string `yaml:"server"`
	Protocol string `yaml:"protocol"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

type MetricsConfig struct {
	// Listen is the address /metrics is served on. Empty disables the endpoint.
	Listen string `yaml:"listen"`
}

// Default returns the configuration used for anything the file does not set.
func Default() Config {
	return Config{
		Title: "RaspAP",
		Display: DisplayConfig{
			Width:     250,
			Height:    122,
			Rotate:    true,
			FramePath: "/run/apstatus/frame.bmp",
		},
		Interfaces: InterfacesConfig{Host: "wlan0", AP: "wlan1"},
		Timing: TimingConfig{
			Tick:                  100 * time.Millisecond,
			Refresh:               time.Second,
			TouchCooldown:         500 * time.Millisecond,
			IgnoreAfterTransition: time.Second,
			StatusMessage:         5 * time.Second,
			CommandTimeout:        15 * time.Second,
		},
		Cache: CacheConfig{
			APSSID:       10 * time.Second,
			APClients:    5 * time.Second,
			System:       5 * time.Second,
			Geo:          900 * time.Second,
			FailureGrace: 30 * time.Second,
		},
		API: APIConfig{
			BaseURL: "http://localhost:8081",
			Timeout: 5 * time.Second,
		},
		GeoIP: GeoIPConfig{
			URL:     "https://ipapi.co/json/",
			Timeout: 3 * time.Second,
		},
		VPN: VPNConfig{
			Enabled:        true,
			ItemsPerScreen: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

// Load reads the config file at filename over the defaults, applies environment overrides and validates the result.
// An empty filename yields the defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// applyEnv lets secrets stay out of the config file.
func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("RASPAP_API_KEY"); ok && v != "" {
		c.API.Key = v
	}
	if v, ok := os.LookupEnv("RASPAP_API_BASE_URL"); ok && v != "" {
		c.API.BaseURL = v
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, fmt.Errorf("display size %dx%d must be positive", c.Display.Width, c.Display.Height))
	}
	if c.Interfaces.Host == "" || c.Interfaces.AP == "" {
		errs = append(errs, errors.New("interfaces.host and interfaces.ap are required"))
	}
	if c.Timing.Tick <= 0 {
		errs = append(errs, errors.New("timing.tick must be positive"))
	}
	if c.Timing.Refresh < c.Timing.Tick {
		errs = append(errs, errors.New("timing.refresh must not be shorter than timing.tick"))
	}
	if c.Timing.TouchCooldown < 0 || c.Timing.IgnoreAfterTransition < 0 || c.Timing.StatusMessage < 0 {
		errs = append(errs, errors.New("timing durations must not be negative"))
	}
	if c.VPN.ItemsPerScreen <= 0 {
		errs = append(errs, errors.New("vpn.items_per_screen must be positive"))
	} else if n := apstatus.MaxVPNRows(c.Display.Height); c.VPN.ItemsPerScreen > n {
		errs = append(errs, fmt.Errorf("vpn.items_per_screen %d exceeds the %d rows that fit", c.VPN.ItemsPerScreen, n))
	}
	if c.API.Key != "" {
		if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL))
		}
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be json or console", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// LoadVPNProfiles returns the configured VPN profiles in display order. Problems with the list are reported here
// rather than by Load, so a broken list disables only the VPN screen.
func (c *Config) LoadVPNProfiles() ([]Profile, error) {
	profiles := c.VPN.Profiles
	if c.VPN.ProfilesFile != "" {
		data, err := os.ReadFile(c.VPN.ProfilesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read VPN profiles: %w", err)
		}
		var file struct {
			Profiles []Profile `yaml:"profiles"`
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse VPN profiles: %w", err)
		}
		profiles = file.Profiles
	}

	seen := make(map[string]bool, len(profiles))
	out := make([]Profile, 0, len(profiles))
	for i, p := range profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("VPN profile %d has no name", i)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate VPN profile %q", p.Name)
		}
		seen[p.Name] = true
		switch p.Protocol {
		case "":
			p.Protocol = apstatus.ProtocolWireGuard
		case apstatus.ProtocolWireGuard, apstatus.ProtocolOpenVPN:
		default:
			return nil, fmt.Errorf("VPN profile %q: unknown protocol %q", p.Name, p.Protocol)
		}
		out = append(out, p)
	}
	return out, nil
}
