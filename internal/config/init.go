package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/temirov/ghtree/internal/types"
	"github.com/temirov/ghtree/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	defaultAPIBase       = "https://api.github.com"
	defaultTimeout       = 30 * time.Second
	defaultServeAddress  = "127.0.0.1:8080"
	yamlIndentationWidth = 2
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// DefaultConfiguration is the configuration written by InitializeConfiguration.
func DefaultConfiguration() ApplicationConfiguration {
	enabled := true
	disabled := false
	return ApplicationConfiguration{
		GitHub: GitHubConfiguration{
			APIBase: defaultAPIBase,
			Timeout: defaultTimeout,
		},
		View: ViewConfiguration{
			Mode:      types.ModeTree,
			Format:    types.FormatRaw,
			Summary:   &enabled,
			Highlight: &enabled,
			Copy:      &disabled,
			Exclude:   []string{},
		},
		Serve: ServeConfiguration{Address: defaultServeAddress},
	}
}

// InitializeConfiguration writes the default configuration to the requested target.
func InitializeConfiguration(options InitOptions) (string, error) {
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}
	var destinationPath string
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			workingDirectory = current
		}
		destinationPath = filepath.Join(workingDirectory, utils.ConfigFileName)
	case InitTargetGlobal:
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory for configuration: %w", err)
		}
		configurationDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if err := os.MkdirAll(configurationDirectory, 0o755); err != nil {
			return "", fmt.Errorf("create configuration directory %s: %w", configurationDirectory, err)
		}
		destinationPath = filepath.Join(configurationDirectory, utils.GlobalConfigFileName)
	default:
		return "", fmt.Errorf("unsupported init target %q", target)
	}

	if _, err := os.Stat(destinationPath); err == nil {
		if !options.Force {
			return "", fmt.Errorf("configuration file already exists at %s", destinationPath)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("inspect configuration path %s: %w", destinationPath, err)
	}

	content, marshalErr := marshalConfiguration(DefaultConfiguration())
	if marshalErr != nil {
		return "", marshalErr
	}
	if err := os.WriteFile(destinationPath, content, 0o600); err != nil {
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, err)
	}

	return destinationPath, nil
}

func marshalConfiguration(configuration ApplicationConfiguration) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(yamlIndentationWidth)
	if encodeErr := encoder.Encode(configuration); encodeErr != nil {
		return nil, fmt.Errorf("encode default configuration: %w", encodeErr)
	}
	if closeErr := encoder.Close(); closeErr != nil {
		return nil, fmt.Errorf("encode default configuration: %w", closeErr)
	}
	return buffer.Bytes(), nil
}
