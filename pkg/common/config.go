package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	kjson "github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	configPathEnv = "CONFIG_PATH"
	configJSONEnv = "CONFIG_JSON"
	defaultPath   = "config.yaml"
)

// ConfigManager loads and holds the application config. Sources, in
// order of precedence: the default config file, the file named by
// CONFIG_PATH, then inline JSON from CONFIG_JSON.
type ConfigManager[T any] struct {
	k      *koanf.Koanf
	config T
}

func NewConfigManager[T any]() (*ConfigManager[T], error) {
	k := koanf.New(".")

	paths := []string{}
	if _, err := os.Stat(defaultPath); err == nil {
		paths = append(paths, defaultPath)
	}
	if p := os.Getenv(configPathEnv); p != "" {
		paths = append(paths, p)
	}

	for _, p := range paths {
		if err := k.Load(file.Provider(p), parserFor(p)); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", p, err)
		}
	}

	if raw := os.Getenv(configJSONEnv); raw != "" {
		if err := k.Load(rawbytes.Provider([]byte(raw)), kjson.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load inline config: %w", err)
		}
	}

	cm := &ConfigManager[T]{k: k}
	if err := cm.unmarshal(); err != nil {
		return nil, err
	}

	return cm, nil
}

// NewConfigManagerFromBytes builds a ConfigManager from inline YAML,
// used by tests.
func NewConfigManagerFromBytes[T any](data []byte) (*ConfigManager[T], error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), kyaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config bytes: %w", err)
	}

	cm := &ConfigManager[T]{k: k}
	if err := cm.unmarshal(); err != nil {
		return nil, err
	}

	return cm, nil
}

func (cm *ConfigManager[T]) unmarshal() error {
	err := cm.k.UnmarshalWithConf("", &cm.config, koanf.UnmarshalConf{
		Tag: "key",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cm.config,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// GetConfig returns the loaded configuration.
func (cm *ConfigManager[T]) GetConfig() T {
	return cm.config
}

func parserFor(path string) koanf.Parser {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return kjson.Parser()
	}
	return kyaml.Parser()
}
