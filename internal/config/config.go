package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ghodss/yaml"
	validator "gopkg.in/go-playground/validator.v9"
)

const (
	// ConfigPathEnv points at an optional YAML file with the same keys as the
	// command line inputs.
	ConfigPathEnv      = "IRGSH_PUBLISH_CONFIG_PATH"
	DefaultPollTimeout = 600 * time.Second
)

// Value is a string that also accepts YAML/JSON numbers and booleans, so
// `poll_timeout: 300` and `wait_for_approval: true` load as "300" and "true".
type Value string

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	*v = Value(data)
	return nil
}

func (v Value) String() string {
	return string(v)
}

type PublishConfig struct {
	APIKey          string `json:"api_key" validate:"required"`
	APIURL          string `json:"api_url" validate:"omitempty,url"`
	PublisherSlug   string `json:"publisher_slug" validate:"required"`
	PluginID        string `json:"plugin_id" validate:"required"`
	Version         Value  `json:"version" validate:"required"`
	ArtifactPath    string `json:"artifact_path" validate:"required"`
	Architectures   string `json:"architectures" validate:"required"`
	WaitForApproval Value  `json:"wait_for_approval"`
	PollTimeout     Value  `json:"poll_timeout"`
	NotifyWebhook   string `json:"notify_webhook" validate:"omitempty,url"`
	MaxParallel     int    `json:"max_parallel" validate:"gte=0"`
	LogLevel        string `json:"log_level" validate:"omitempty,oneof=TRACE DEBUG INFO WARNING ERROR CRITICAL trace debug info warning error critical"`
}

// LoadConfig loads the file named by IRGSH_PUBLISH_CONFIG_PATH. Without the
// variable it returns an empty config.
func LoadConfig() (config PublishConfig, err error) {
	configPath := os.Getenv(ConfigPathEnv)
	if configPath == "" {
		return
	}
	return LoadConfigFromPath(configPath)
}

// LoadConfigFromPath reads a YAML config file. It does not validate; inputs
// given on the command line are merged in first.
func LoadConfigFromPath(configPath string) (config PublishConfig, err error) {
	yamlFile, err := os.ReadFile(configPath)
	if err != nil {
		return config, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	err = yaml.Unmarshal(yamlFile, &config)
	if err != nil {
		return config, fmt.Errorf("failed to parse config %s: %w", configPath, err)
	}
	return
}

// Merge returns c with every non-empty field of override applied on top.
func (c PublishConfig) Merge(override PublishConfig) PublishConfig {
	mergeString(&c.APIKey, override.APIKey)
	mergeString(&c.APIURL, override.APIURL)
	mergeString(&c.PublisherSlug, override.PublisherSlug)
	mergeString(&c.PluginID, override.PluginID)
	mergeValue(&c.Version, override.Version)
	mergeString(&c.ArtifactPath, override.ArtifactPath)
	mergeString(&c.Architectures, override.Architectures)
	mergeValue(&c.WaitForApproval, override.WaitForApproval)
	mergeValue(&c.PollTimeout, override.PollTimeout)
	mergeString(&c.NotifyWebhook, override.NotifyWebhook)
	mergeString(&c.LogLevel, override.LogLevel)
	if override.MaxParallel != 0 {
		c.MaxParallel = override.MaxParallel
	}
	return c
}

func mergeString(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

func mergeValue(dst *Value, value Value) {
	if trimmed := strings.TrimSpace(string(value)); trimmed != "" {
		*dst = Value(trimmed)
	}
}

// Validate checks every input needed for a publish run.
func (c PublishConfig) Validate() error {
	return validator.New().Struct(c)
}

// ValidateFields checks only the named struct fields, e.g. "APIKey".
func (c PublishConfig) ValidateFields(fields ...string) error {
	return validator.New().StructPartial(c, fields...)
}

// ParseArchitectures splits a comma separated list, trimming entries and
// dropping empty ones.
func ParseArchitectures(raw string) []string {
	architectures := []string{}
	for _, arch := range strings.Split(raw, ",") {
		if arch = strings.TrimSpace(arch); arch != "" {
			architectures = append(architectures, arch)
		}
	}
	return architectures
}

// ParseBool only treats the exact string "true" as set.
func ParseBool(raw Value) bool {
	return strings.TrimSpace(string(raw)) == "true"
}

// ParsePollTimeout reads whole seconds. Missing, invalid or non-positive
// values fall back to 600 seconds.
func ParsePollTimeout(raw Value) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || seconds <= 0 {
		return DefaultPollTimeout
	}
	return time.Duration(seconds) * time.Second
}
