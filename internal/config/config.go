package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings are adapter-wide defaults read from the environment at startup.
// Launch configurations override them per session.
type Settings struct {
	// Port of the PhantomJS remote debugger, unless the launch configuration names one.
	DefaultPort int `env:"PJSDAP_DEFAULT_PORT" envDefault:"9222"`

	// Address the PhantomJS remote debugger listens on.
	DefaultAddress string `env:"PJSDAP_DEFAULT_ADDRESS" envDefault:"127.0.0.1"`

	// How long to wait for the remote debugger endpoint to come up after PhantomJS is started.
	ConnectTimeout time.Duration `env:"PJSDAP_CONNECT_TIMEOUT" envDefault:"10s"`

	// Path of the WebSocket endpoint for the PhantomJS debugging page.
	PagePath string `env:"PJSDAP_PAGE_PATH" envDefault:"/devtools/page/1"`
}

func Default() Settings {
	return Settings{
		DefaultPort:    9222,
		DefaultAddress: "127.0.0.1",
		ConnectTimeout: 10 * time.Second,
		PagePath:       "/devtools/page/1",
	}
}

// Load reads settings from the process environment.
func Load() (Settings, error) {
	return LoadFrom(nil)
}

// LoadFrom reads settings from given environment. A nil map means the process environment.
func LoadFrom(environment map[string]string) (Settings, error) {
	var s Settings
	opts := env.Options{}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return Settings{}, fmt.Errorf("invalid adapter settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) Validate() error {
	if s.DefaultPort <= 0 || s.DefaultPort > 65535 {
		return fmt.Errorf("invalid adapter settings: default port %d is out of range", s.DefaultPort)
	}
	if s.ConnectTimeout <= 0 {
		return fmt.Errorf("invalid adapter settings: connect timeout must be positive")
	}
	return nil
}
