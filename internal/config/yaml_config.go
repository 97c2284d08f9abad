package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Copy is the user-facing chain text, overridable per deployment from the
// YAML config file.
type Copy struct {
	ChainTitle     string `yaml:"chain_title"`
	EmptyChain     string `yaml:"empty_chain"`
	ArchivedMarker string `yaml:"archived_marker"`
}

// YAMLConfig represents the structure of the config.yaml file.
type YAMLConfig struct {
	Copy Copy `yaml:"copy"`
}

// DefaultCopy returns the built-in chain text.
func DefaultCopy() Copy {
	return Copy{
		ChainTitle:     "👥 Networking Links",
		EmptyChain:     "Nobody has added a link yet. Tap a button below to be first.",
		ArchivedMarker: "🗄 Archived. A newer chain is active in this group.",
	}
}

// LoadYAMLConfig loads the YAML configuration file at path.
// Returns the defaults without error if the file doesn't exist.
func LoadYAMLConfig(path string) (*YAMLConfig, error) {
	cfg := &YAMLConfig{Copy: DefaultCopy()}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return cfg, nil
		}
		return nil, err
	}

	var file YAMLConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	// Empty fields keep their defaults
	if file.Copy.ChainTitle != "" {
		cfg.Copy.ChainTitle = file.Copy.ChainTitle
	}
	if file.Copy.EmptyChain != "" {
		cfg.Copy.EmptyChain = file.Copy.EmptyChain
	}
	if file.Copy.ArchivedMarker != "" {
		cfg.Copy.ArchivedMarker = file.Copy.ArchivedMarker
	}

	return cfg, nil
}
