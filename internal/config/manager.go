package config

import (
	"fmt"

	"github.com/knadh/koanf/v2"
)

type Manager struct {
	sources []*Source
	config  Config
}

func NewManager(sources ...*Source) *Manager {
	return &Manager{
		sources: sources,
	}
}

func (m *Manager) Config() Config {
	return m.config
}

// Load merges defaults with the configured sources. Source order
// determines precedence: the last source loaded overrides any previous
// values.
func (m *Manager) Load() error {
	k := koanf.New(".")
	if err := LoadStruct(k, DefaultConfig()); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}

	for _, source := range m.sources {
		opts := []koanf.Option{}
		var parser koanf.Parser
		if source.Parser != nil {
			parser = source.Parser
		}
		if err := k.Load(source.Provider(k), parser, opts...); err != nil {
			return fmt.Errorf("failed to load config source: %w", err)
		}
	}

	var combined Config
	if err := k.Unmarshal("", &combined); err != nil {
		return fmt.Errorf("failed to unmarshal combined config: %w", err)
	}

	if err := combined.Validate(); err != nil {
		return err
	}

	m.config = combined

	return nil
}

// LoadSources is a convenience for loading a set of sources once.
func LoadSources(sources ...*Source) (Config, error) {
	manager := NewManager(sources...)
	if err := manager.Load(); err != nil {
		return Config{}, err
	}
	return manager.Config(), nil
}
