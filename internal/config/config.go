package config

import (
	"fmt"
	"os"
	"time"

	"github.com/llmariner/iris-inference-server/internal/rate"
	"gopkg.in/yaml.v3"
)

// Config is the configuration.
type Config struct {
	HTTPPort       int `yaml:"httpPort"`
	MonitoringPort int `yaml:"monitoringPort"`

	// ModelDir overrides the directory that contains the model artifact.
	// When empty, the directory is resolved relative to the running
	// executable.
	ModelDir string `yaml:"modelDir"`

	// GracefulShutdownTimeout is the duration given to the HTTP server to
	// drain in-flight requests on shutdown.
	GracefulShutdownTimeout time.Duration `yaml:"gracefulShutdownTimeout"`

	RateLimit rate.Config `yaml:"rateLimit"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 {
		return fmt.Errorf("httpPort must be greater than 0")
	}
	if c.MonitoringPort <= 0 {
		return fmt.Errorf("monitoringPort must be greater than 0")
	}

	if err := c.RateLimit.Validate(); err != nil {
		return err
	}

	if c.GracefulShutdownTimeout <= 0 {
		c.GracefulShutdownTimeout = 10 * time.Second
	}
	return nil
}

// Parse parses the configuration file at the given path, returning a new
// Config struct.
func Parse(path string) (Config, error) {
	var config Config

	b, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("config: read: %s", err)
	}

	if err = yaml.Unmarshal(b, &config); err != nil {
		return config, fmt.Errorf("config: unmarshal: %s", err)
	}
	return config, nil
}
