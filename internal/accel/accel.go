// Package accel describes the hardware accelerator configuration forwarded to model
// construction, and probes whether the requested accelerator is usable.
//
// The configuration is opaque to pipeline dispatch: it is validated here and then
// handed verbatim to the model loader. It can be written in YAML:
//
//	provider: npu
//	config_file: /opt/xilinx/vaip_config.json
//	cache_dir: /var/cache/taskpipe
//	cache_key: resnet50
package accel

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/shirou/gopsutil/cpu"
	"gopkg.in/yaml.v3"
)

// Provider selects the execution backend.
type Provider string

// Supported providers.
const (
	CPU    Provider = "cpu"
	NPU    Provider = "npu"
	WebGPU Provider = "webgpu"
)

// ErrUnavailable is returned by Probe when the accelerator cannot be used on this host.
var ErrUnavailable = errors.New("accelerator unavailable")

var validate = validator.New()

// Config is the accelerator configuration.
type Config struct {
	// Provider is the execution backend.
	Provider Provider `yaml:"provider" validate:"required,oneof=cpu npu webgpu"`

	// ConfigFile is the vendor runtime configuration (VAIP json for the NPU).
	ConfigFile string `yaml:"config_file" validate:"required_if=Provider npu"`

	// CacheDir stores compiled model artifacts between runs.
	CacheDir string `yaml:"cache_dir"`

	// CacheKey names the compiled artifact inside CacheDir.
	CacheKey string `yaml:"cache_key"`

	// Threads bounds intra-op parallelism; 0 means one per physical core.
	Threads int `yaml:"threads" validate:"gte=0,lte=1024"`
}

// Default returns a CPU configuration.
func Default() Config {
	return Config{Provider: CPU}
}

// Validate checks the configuration fields.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid accelerator config: %w", err)
	}
	return nil
}

// Parse decodes a YAML configuration and validates it. Missing provider defaults to cpu.
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("failed to parse accelerator config: %w", err)
	}
	if c.Provider == "" {
		c.Provider = CPU
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses a YAML configuration file.
//
//nolint:gosec // G304: path comes from the operator.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read accelerator config: %w", err)
	}
	return Parse(data)
}

// WithDefaults fills Threads from the host's physical core count when unset.
func (c Config) WithDefaults() Config {
	if c.Threads == 0 {
		if n, err := cpu.Counts(false); err == nil && n > 0 {
			c.Threads = n
		}
	}
	return c
}

// Probe reports whether the configured accelerator is usable.
// The returned error wraps ErrUnavailable.
func Probe(c Config) error {
	switch c.Provider {
	case CPU, "":
		return nil
	case NPU:
		if _, err := os.Stat(c.ConfigFile); err != nil {
			return fmt.Errorf("%w: npu runtime config %q: %w", ErrUnavailable, c.ConfigFile, err)
		}
		return nil
	case WebGPU:
		if !webgpuAvailable() {
			return fmt.Errorf("%w: no webgpu adapter found", ErrUnavailable)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrUnavailable, c.Provider)
	}
}
