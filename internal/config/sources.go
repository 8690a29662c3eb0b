package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

type Source struct {
	Provider func(k *koanf.Koanf) koanf.Provider
	Parser   koanf.Parser
}

// NewFileSource reads a config file, picking the parser from the file
// extension. JSON is the default; .yaml/.yml use goccy/go-yaml.
func NewFileSource(path string) *Source {
	var parser koanf.Parser = kjson.Parser()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yamlParser{}
	}
	return &Source{
		Provider: func(_ *koanf.Koanf) koanf.Provider {
			return file.Provider(path)
		},
		Parser: parser,
	}
}

func NewEnvVarSource() *Source {
	return &Source{
		Provider: func(_ *koanf.Koanf) koanf.Provider {
			return env.Provider("STATUSPLANE_", ".", func(s string) string {
				s = strings.TrimPrefix(s, "STATUSPLANE_")
				s = strings.ToLower(s)
				return strings.ReplaceAll(s, "__", ".")
			})
		},
	}
}

func NewPFlagSource(flagSet *pflag.FlagSet) *Source {
	return &Source{
		Provider: func(k *koanf.Koanf) koanf.Provider {
			return posflag.ProviderWithFlag(flagSet, ".", k, func(f *pflag.Flag) (string, interface{}) {
				key := strings.ReplaceAll(f.Name, "-", "_")
				return key, f.Value
			})
		},
	}
}

func NewStructSource(config Config) (*Source, error) {
	raw, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to json: %w", err)
	}

	return &Source{
		Provider: func(k *koanf.Koanf) koanf.Provider {
			return rawbytes.Provider(raw)
		},
		Parser: kjson.Parser(),
	}, nil
}

// LoadStruct loads a Config value into a koanf instance. Not using the
// structs provider because it merges unset values over top of set
// values; converting to JSON first takes advantage of the omitempty
// behavior.
func LoadStruct(k *koanf.Koanf, config Config) error {
	raw, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to json: %w", err)
	}

	if err := k.Load(rawbytes.Provider(raw), kjson.Parser()); err != nil {
		return fmt.Errorf("failed to load config from json bytes: %w", err)
	}
	return nil
}

type yamlParser struct{}

func (yamlParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("failed to parse yaml config: %w", err)
	}
	return out, nil
}

func (yamlParser) Marshal(o map[string]interface{}) ([]byte, error) {
	return yaml.Marshal(o)
}
