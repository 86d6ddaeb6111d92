package config

import (
	"os"

	"github.com/imdario/mergo"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Scan represents our renderer discovery configuration
type Scan struct {
	// WindowSeconds bounds total wall-clock time of one discovery session
	WindowSeconds int `yaml:"window_seconds"`
	// Rounds is the number of M-SEARCH send rounds before draining
	Rounds int `yaml:"rounds"`
	// MX is the maximum response delay advertised in each M-SEARCH
	MX int `yaml:"mx"`
	// ReadTimeoutMS is the per-datagram receive timeout
	ReadTimeoutMS int `yaml:"read_timeout_ms"`
	// Targets overrides the built-in SSDP search target list
	Targets []string `yaml:"targets"`
	// ProbeTargets lists IPs or CIDR blocks to probe for description
	// documents in addition to multicast search
	ProbeTargets []string `yaml:"probe_targets"`
}

// Play represents our playback control configuration
type Play struct {
	// SoapTimeoutSeconds is the per-action timeout for SOAP calls
	SoapTimeoutSeconds int `yaml:"soap_timeout_seconds"`
	// DescTimeoutSeconds is the timeout for description document fetches
	DescTimeoutSeconds int `yaml:"desc_timeout_seconds"`
	// ArmDelayMS is the pause between SetAVTransportURI and Play
	ArmDelayMS int `yaml:"arm_delay_ms"`
}

// Config represents the data structure of our user provided yaml configuration
type Config struct {
	Scan Scan `yaml:"scan"`
	Play Play `yaml:"play"`
}

// Default returns our built-in configuration
func Default() *Config {
	return &Config{
		Scan: Scan{
			WindowSeconds: 25,
			Rounds:        6,
			MX:            2,
			ReadTimeoutMS: 800,
			Targets:       []string{},
			ProbeTargets:  []string{},
		},
		Play: Play{
			SoapTimeoutSeconds: 5,
			DescTimeoutSeconds: 3,
			ArmDelayMS:         600,
		},
	}
}

// New returns unmarshaled data structure of user provided config with
// defaults filled in for any omitted fields
func New(confPath string) (*Config, error) {
	var config Config

	raw, err := os.ReadFile(confPath)

	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(raw, &config); err != nil {
		return nil, err
	}

	if err := mergo.Merge(&config, *Default()); err != nil {
		return nil, err
	}

	return &config, nil
}

// Write persists a config to the configured config file path
func Write(conf Config) error {
	configFile := viper.Get("config-file").(string)

	file, err := os.Create(configFile)

	if err != nil {
		return err
	}

	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)

	return encoder.Encode(conf)
}
