package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type (
	Config struct {
		App      `yaml:"app"`
		Log      `yaml:"logger"`
		HTTP     `yaml:"http"`
		Git      `yaml:"git"`
		Registry `yaml:"registry"`
		Storage  `yaml:"storage"`
		Notify   `yaml:"notify"`
	}

	App struct {
		Name    string `env-required:"true" yaml:"name"    env:"APP_NAME"`
		Version string `env-required:"true" yaml:"version" env:"APP_VERSION"`
	}

	Log struct {
		Level string `env-required:"true" yaml:"level" env:"LOG_LEVEL"`
		Type  string `env-required:"true" yaml:"type"  env:"LOG_TYPE"`
	}

	HTTP struct {
		Address string `env-required:"true" yaml:"address" env:"HTTP_ADDRESS"`
	}

	Git struct {
		Username          string `yaml:"username" env:"GIT_USERNAME"`
		Email             string `yaml:"email"    env:"GIT_EMAIL"`
		Token             string `                env:"GIT_TOKEN"`
		WorkDir           string `env-required:"true" yaml:"workDir"           env:"GIT_WORK_DIR"`
		DefaultDockerfile string `env-required:"true" yaml:"defaultDockerfile" env:"DEFAULT_DOCKERFILE_PATH"`
	}

	Registry struct {
		URL                string        `yaml:"url" env:"REGISTRY_URL"`
		Username           string        `            env:"REGISTRY_USERNAME"`
		Password           string        `            env:"REGISTRY_PASSWORD"`
		InsecureSkipVerify bool          `yaml:"insecureSkipVerify" env:"REGISTRY_INSECURE_SKIP_VERIFY"`
		Timeout            time.Duration `yaml:"timeout"            env:"REGISTRY_TIMEOUT"`
	}

	Storage struct {
		Path string `env-required:"true" yaml:"path" env:"STORAGE_PATH"`
	}

	Notify struct {
		URI   string `yaml:"uri"   env:"NOTIFY_AMQP_URI"`
		Queue string `yaml:"queue" env:"NOTIFY_QUEUE"`
	}
)

func NewConfig() (*Config, error) {
	cfg := &Config{}

	// A missing .env is fine, the environment may already be set.
	_ = godotenv.Load()

	err := cleanenv.ReadConfig("./config/config.yml", cfg)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	err = cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Registry.URL == "" {
		cfg.Registry.URL = DefaultRegistryURL()
	}

	return cfg, nil
}

// DefaultRegistryURL picks the registry endpoint for the environment the
// process runs in: inside a compose network the registry service is
// reachable by its service name, everywhere else the published localhost
// port is used.
func DefaultRegistryURL() string {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		if _, err := net.LookupHost("registry"); err == nil {
			return "registry:5000"
		}
	}
	return "localhost:5000"
}
