package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// DefaultTriggerWords are the entry signals accepted when no triggers file
// is configured.
var DefaultTriggerWords = []string{"gmonad", "gm", "gm monad"}

type TriggersConfig struct {
	Triggers []string `yaml:"triggers"`
}

// LoadTriggerWords reads the giveaway entry trigger words from a YAML file.
// A missing file falls back to DefaultTriggerWords; an unreadable or empty
// file is an error.
func LoadTriggerWords(triggersFile string) ([]string, error) {
	var triggersPath string
	if filepath.IsAbs(triggersFile) {
		triggersPath = triggersFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		triggersPath = filepath.Join(wd, triggersFile)
	}

	data, err := os.ReadFile(triggersPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultTriggerWords, nil
		}
		return nil, fmt.Errorf("unable to read %s: %w", triggersFile, err)
	}

	var config TriggersConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", triggersFile, err)
	}

	if len(config.Triggers) == 0 {
		return nil, fmt.Errorf("%s contains no trigger words", triggersFile)
	}

	triggers := make([]string, 0, len(config.Triggers))
	for i, trigger := range config.Triggers {
		trigger = strings.ToLower(strings.TrimSpace(trigger))
		if trigger == "" {
			return nil, fmt.Errorf("trigger at index %d is empty", i)
		}
		triggers = append(triggers, trigger)
	}

	return triggers, nil
}
