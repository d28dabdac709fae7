package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ModelSettings struct {
		Temperature float64  `yaml:"temperature"`
		TopP        float64  `yaml:"top_p"`
		Models      []string `yaml:"models"`
	} `yaml:"model_settings"`
	Generation struct {
		MaxLength          int  `yaml:"max_length"`
		NumReturnSequences int  `yaml:"num_return_sequences"`
		EnableFallback     bool `yaml:"enable_fallback"`
	} `yaml:"generation"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	LogLevel      string `yaml:"log_level"`
	TemplatesFile string `yaml:"templates_file"`
}

func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		// Set default values
		config.ModelSettings.Temperature = 1
		config.ModelSettings.TopP = 1
		config.Generation.MaxLength = 128
		config.Generation.NumReturnSequences = 1
		config.Generation.EnableFallback = true
		config.Server.Addr = ":3001"
		config.LogLevel = "info"
		return config, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Fallback stays on unless the file explicitly disables it.
	config.Generation.EnableFallback = true

	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, err
	}

	if config.Generation.MaxLength <= 0 {
		config.Generation.MaxLength = 128
	}
	if config.Generation.NumReturnSequences <= 0 {
		config.Generation.NumReturnSequences = 1
	}
	if config.Server.Addr == "" {
		config.Server.Addr = ":3001"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	return config, nil
}
