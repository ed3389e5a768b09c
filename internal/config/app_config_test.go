package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/temirov/ghtree/internal/utils"
)

type configTestCase struct {
	name            string
	globalContent   string
	localContent    string
	explicitPath    string
	explicitContent string
	environment     map[string]string
	expectSlug      string
	expectFormat    string
	expectSummary   *bool
	expectToken     string
	expectTimeout   time.Duration
	expectExclude   []string
}

func boolPointer(value bool) *bool {
	pointer := value
	return &pointer
}

func TestLoadApplicationConfigurationMergesSources(t *testing.T) {
	testCases := []configTestCase{
		{
			name:          "local_overrides_global",
			globalContent: "repository:\n  slug: octo/global\nview:\n  format: json\n  summary: true\n  exclude: [vendor/]\ngithub:\n  timeout: 10s\n",
			localContent:  "repository:\n  slug: octo/local\nview:\n  summary: false\n  exclude: [node_modules/, node_modules/]\n",
			expectSlug:    "octo/local",
			expectFormat:  "json",
			expectSummary: boolPointer(false),
			expectTimeout: 10 * time.Second,
			expectExclude: []string{"node_modules/"},
		},
		{
			name:            "explicit_path_replaces_local",
			localContent:    "view:\n  format: xml\n",
			explicitPath:    "custom.yaml",
			explicitContent: "view:\n  format: raw\n",
			expectFormat:    "raw",
			expectExclude:   []string{},
		},
		{
			name:          "environment_token_wins",
			localContent:  "github:\n  token: from-file\n",
			environment:   map[string]string{"GHTREE_GITHUB_TOKEN": "from-env", "GITHUB_TOKEN": "fallback"},
			expectToken:   "from-env",
			expectExclude: []string{},
		},
		{
			name:          "github_token_fallback",
			environment:   map[string]string{"GHTREE_GITHUB_TOKEN": "", "GITHUB_TOKEN": "fallback"},
			expectToken:   "fallback",
			expectExclude: []string{},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			homeDir := t.TempDir()
			workingDir := t.TempDir()
			configDir := filepath.Join(homeDir, utils.GlobalConfigDirectoryName)
			if err := os.MkdirAll(configDir, 0o755); err != nil {
				t.Fatalf("create config dir: %v", err)
			}
			if testCase.globalContent != "" {
				globalPath := filepath.Join(configDir, utils.GlobalConfigFileName)
				if err := os.WriteFile(globalPath, []byte(testCase.globalContent), 0o600); err != nil {
					t.Fatalf("write global config: %v", err)
				}
			}
			if testCase.localContent != "" {
				localPath := filepath.Join(workingDir, utils.ConfigFileName)
				if err := os.WriteFile(localPath, []byte(testCase.localContent), 0o600); err != nil {
					t.Fatalf("write local config: %v", err)
				}
			}
			if testCase.explicitPath != "" {
				target := filepath.Join(workingDir, testCase.explicitPath)
				if err := os.WriteFile(target, []byte(testCase.explicitContent), 0o600); err != nil {
					t.Fatalf("write explicit config: %v", err)
				}
			}

			t.Setenv("HOME", homeDir)
			t.Setenv("USERPROFILE", homeDir)
			t.Setenv("GHTREE_GITHUB_TOKEN", "")
			t.Setenv("GITHUB_TOKEN", "")
			t.Setenv("GHTREE_API_BASE", "")
			for name, value := range testCase.environment {
				t.Setenv(name, value)
			}

			loadedConfig, err := LoadApplicationConfiguration(LoadOptions{
				WorkingDirectory: workingDir,
				ExplicitFilePath: testCase.explicitPath,
			})
			if err != nil {
				t.Fatalf("LoadApplicationConfiguration error: %v", err)
			}

			if loadedConfig.Repository.Slug != testCase.expectSlug {
				t.Fatalf("expected slug %q, got %q", testCase.expectSlug, loadedConfig.Repository.Slug)
			}
			if loadedConfig.View.Format != testCase.expectFormat {
				t.Fatalf("expected format %q, got %q", testCase.expectFormat, loadedConfig.View.Format)
			}
			if testCase.expectSummary == nil {
				if loadedConfig.View.Summary != nil {
					t.Fatalf("expected no summary override")
				}
			} else if loadedConfig.View.Summary == nil || *loadedConfig.View.Summary != *testCase.expectSummary {
				t.Fatalf("unexpected summary value")
			}
			if loadedConfig.GitHub.Token != testCase.expectToken {
				t.Fatalf("expected token %q, got %q", testCase.expectToken, loadedConfig.GitHub.Token)
			}
			if loadedConfig.GitHub.Timeout != testCase.expectTimeout {
				t.Fatalf("expected timeout %v, got %v", testCase.expectTimeout, loadedConfig.GitHub.Timeout)
			}
			if !reflect.DeepEqual(loadedConfig.View.Exclude, testCase.expectExclude) {
				t.Fatalf("expected exclude %v, got %v", testCase.expectExclude, loadedConfig.View.Exclude)
			}
		})
	}
}

func TestLoadApplicationConfigurationRejectsDirectory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	workingDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(workingDir, utils.ConfigFileName), 0o755); err != nil {
		t.Fatalf("create directory: %v", err)
	}
	if _, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDir, IgnoreEnvironment: true}); err == nil {
		t.Fatalf("expected error for directory configuration path")
	}
}

func TestViewMergeKeepsUnsetFields(t *testing.T) {
	base := ViewConfiguration{Format: "json", Highlight: boolPointer(true)}
	override := ViewConfiguration{Mode: "list"}
	merged := base.merge(override)
	if merged.Format != "json" || merged.Mode != "list" || merged.Highlight == nil || !*merged.Highlight {
		t.Fatalf("unexpected merge result %+v", merged)
	}
}
