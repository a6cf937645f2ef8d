// catalogue configuration
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// knobs read from the repository's `.github/config.yml`.
// every field has a default so the file itself is optional.
type Config struct {
	SourceName        string
	SourceId          string
	SourceSubtitle    string
	SourceDescription string
	DeveloperName     string
	TintColor         string
	IconURL           string
	HeaderURL         string
	Website           string
	PriorityApps      string
	NewsURL           string
	MaxVersions       int
	MaxScreenshots    int
	MinIOSFallback    string
}

func default_config() Config {
	return Config{
		SourceName:        "TELOS IPA Library",
		SourceId:          "com.telos.library",
		SourceSubtitle:    "Automated IPA Repository",
		SourceDescription: "Welcome to TELOS!",
		DeveloperName:     "TELOS",
		TintColor:         "5865F2",
		MaxVersions:       10,
		MaxScreenshots:    5,
		MinIOSFallback:    "12.0",
	}
}

// yaml scalars arrive as whatever type the parser guessed at.
func yaml_string(val any) (string, bool) {
	switch v := val.(type) {
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

func yaml_int(val any) (int, bool) {
	switch v := val.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return n, true
		}
	}
	return 0, false
}

// overlays recognized keys from `raw` onto `cfg`.
// empty values keep their default, unrecognized keys are ignored.
func merge_config(cfg Config, raw map[string]any) Config {
	string_field_map := map[string]*string{
		"source_name":              &cfg.SourceName,
		"source_id":                &cfg.SourceId,
		"source_subtitle":          &cfg.SourceSubtitle,
		"source_description":       &cfg.SourceDescription,
		"developer_name":           &cfg.DeveloperName,
		"tint_color":               &cfg.TintColor,
		"icon_url":                 &cfg.IconURL,
		"header_url":               &cfg.HeaderURL,
		"website":                  &cfg.Website,
		"priority_apps":            &cfg.PriorityApps,
		"news_url":                 &cfg.NewsURL,
		"min_ios_version_fallback": &cfg.MinIOSFallback,
	}
	int_field_map := map[string]*int{
		"max_versions":            &cfg.MaxVersions,
		"max_screenshots_per_app": &cfg.MaxScreenshots,
	}

	for key, val := range raw {
		if val == nil {
			continue
		}

		string_field, present := string_field_map[key]
		if present {
			s, ok := yaml_string(val)
			if ok && s != "" {
				*string_field = s
			}
			continue
		}

		int_field, present := int_field_map[key]
		if present {
			n, ok := yaml_int(val)
			if ok && n >= 0 {
				*int_field = n
			}
			continue
		}

		slog.Debug("ignoring unrecognized configuration key", "key", key)
	}

	return cfg
}

// reads the configuration at `config_path`.
// a missing file is fine and the defaults are used.
// a file that cannot be parsed is an error.
func load_config(config_path string) (Config, error) {
	cfg := default_config()

	if !path_exists(config_path) {
		slog.Info("no configuration file found, using defaults", "path", config_path)
		return cfg, nil
	}

	slog.Info("loading configuration", "path", config_path)
	blob, err := os.ReadFile(config_path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read configuration file: %w", err)
	}

	raw := map[string]any{}
	err = yaml.Unmarshal(blob, &raw)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse configuration file as YAML: %w", err)
	}

	return merge_config(cfg, raw), nil
}

// first environment variable in `var_list` that is present, else `fallback`.
func env_or(fallback string, var_list ...string) string {
	for _, v := range var_list {
		val, present := os.LookupEnv(v)
		if present {
			return val
		}
	}
	return fallback
}

// the public download url for archives in this repository,
// derived from the environment Github Actions provides.
func github_base_url() string {
	repo := env_or("user/repo", "GITHUB_REPOSITORY", "GITHUB_REPO")
	branch := env_or("main", "GITHUB_REF_NAME", "GITHUB_BRANCH")
	return fmt.Sprintf("https://github.com/%s/raw/%s/IPAs", repo, branch)
}
