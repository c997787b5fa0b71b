package optim

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jgqwhucs/marian/internal/serialization"
)

// Config is the optimizer slice of a training configuration file.
type Config struct {
	// Algorithm selects the update rule: "sgd", "adagrad", or "adam".
	Algorithm string `yaml:"algorithm"`

	// Eta is the initial learning rate.
	Eta float32 `yaml:"learn-rate"`

	// Params is the positional hyperparameter list passed to
	// SetParams; its meaning depends on the algorithm.
	Params []float32 `yaml:"optimizer-params"`

	// StateDir, when set, roots all optimizer state files there.
	StateDir string `yaml:"state-dir"`
}

// DefaultConfig returns the configuration used when no file is given:
// Adam at eta 0.001 with default hyperparameters.
func DefaultConfig() Config {
	return Config{
		Algorithm: AlgorithmAdam,
		Eta:       0.001,
	}
}

// LoadConfig reads a YAML optimizer configuration from path. Fields
// absent from the file keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading optimizer config")
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing optimizer config %s", path)
	}
	return cfg, nil
}

// FromConfig builds an optimizer from cfg, wiring a file store rooted
// at cfg.StateDir when one is configured. clipper may be nil.
func FromConfig(cfg Config, clipper Clipper) (Optimizer, error) {
	opt, err := New(cfg.Algorithm, cfg.Eta, clipper, cfg.Params)
	if err != nil {
		return nil, err
	}
	if cfg.StateDir != "" {
		opt.SetStore(serialization.NewFileStoreAt(cfg.StateDir))
	}
	return opt, nil
}
