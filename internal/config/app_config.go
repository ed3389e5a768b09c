package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/temirov/ghtree/internal/utils"
)

const (
	environmentTokenName       = "GHTREE_GITHUB_TOKEN"
	environmentGitHubTokenName = "GITHUB_TOKEN"
	environmentAPIBaseName     = "GHTREE_API_BASE"
	tokenConfigurationKey      = "github.token"
	apiBaseConfigurationKey    = "github.api_base"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	// IgnoreEnvironment skips GHTREE_* and GITHUB_TOKEN variables.
	IgnoreEnvironment bool
}

// ApplicationConfiguration holds defaults for every command.
type ApplicationConfiguration struct {
	Repository RepositoryConfiguration `mapstructure:"repository" yaml:"repository"`
	GitHub     GitHubConfiguration     `mapstructure:"github" yaml:"github"`
	View       ViewConfiguration       `mapstructure:"view" yaml:"view"`
	Serve      ServeConfiguration      `mapstructure:"serve" yaml:"serve"`
}

// RepositoryConfiguration names the repository shown when none is given.
type RepositoryConfiguration struct {
	// Slug is owner/repo or a GitHub URL.
	Slug   string `mapstructure:"slug" yaml:"slug"`
	Branch string `mapstructure:"branch" yaml:"branch"`
	// Local is a path to a git repository read instead of GitHub.
	Local string `mapstructure:"local" yaml:"local,omitempty"`
}

// GitHubConfiguration configures API access.
type GitHubConfiguration struct {
	APIBase string        `mapstructure:"api_base" yaml:"api_base"`
	Token   string        `mapstructure:"token" yaml:"token,omitempty"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ViewConfiguration holds rendering defaults shared by tree, list and view.
type ViewConfiguration struct {
	Mode        string   `mapstructure:"mode" yaml:"mode"`
	Format      string   `mapstructure:"format" yaml:"format"`
	Summary     *bool    `mapstructure:"summary" yaml:"summary"`
	Highlight   *bool    `mapstructure:"highlight" yaml:"highlight"`
	Copy        *bool    `mapstructure:"copy" yaml:"copy"`
	Exclude     []string `mapstructure:"exclude" yaml:"exclude"`
	ExcludeFile string   `mapstructure:"exclude_file" yaml:"exclude_file,omitempty"`
}

// ServeConfiguration configures the HTTP service.
type ServeConfiguration struct {
	Address string `mapstructure:"address" yaml:"address"`
}

// LoadApplicationConfiguration loads configuration from the global file, the
// local (or explicit) file and the environment, later sources winning.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	if !options.IgnoreEnvironment {
		merged = merged.Merge(loadEnvironmentConfiguration())
	}

	merged.View.Exclude = utils.DeduplicatePatterns(merged.View.Exclude)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

func loadEnvironmentConfiguration() ApplicationConfiguration {
	reader := viper.New()
	_ = reader.BindEnv(tokenConfigurationKey, environmentTokenName, environmentGitHubTokenName)
	_ = reader.BindEnv(apiBaseConfigurationKey, environmentAPIBaseName)
	var config ApplicationConfiguration
	config.GitHub.Token = strings.TrimSpace(reader.GetString(tokenConfigurationKey))
	config.GitHub.APIBase = strings.TrimSpace(reader.GetString(apiBaseConfigurationKey))
	return config
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Repository = result.Repository.merge(override.Repository)
	result.GitHub = result.GitHub.merge(override.GitHub)
	result.View = result.View.merge(override.View)
	if override.Serve.Address != "" {
		result.Serve.Address = override.Serve.Address
	}
	return result
}

func (config RepositoryConfiguration) merge(override RepositoryConfiguration) RepositoryConfiguration {
	result := config
	if override.Slug != "" {
		result.Slug = override.Slug
	}
	if override.Branch != "" {
		result.Branch = override.Branch
	}
	if override.Local != "" {
		result.Local = override.Local
	}
	return result
}

func (config GitHubConfiguration) merge(override GitHubConfiguration) GitHubConfiguration {
	result := config
	if override.APIBase != "" {
		result.APIBase = override.APIBase
	}
	if override.Token != "" {
		result.Token = override.Token
	}
	if override.Timeout > 0 {
		result.Timeout = override.Timeout
	}
	return result
}

func (config ViewConfiguration) merge(override ViewConfiguration) ViewConfiguration {
	result := config
	if override.Mode != "" {
		result.Mode = override.Mode
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Summary != nil {
		result.Summary = cloneBool(override.Summary)
	}
	if override.Highlight != nil {
		result.Highlight = cloneBool(override.Highlight)
	}
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, utils.DeduplicatePatterns(override.Exclude)...)
	}
	if override.ExcludeFile != "" {
		result.ExcludeFile = override.ExcludeFile
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
