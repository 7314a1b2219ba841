package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"budgetbuddy/internal/core"
)

// Seed is the YAML document used to pre-populate an empty store.
type Seed struct {
	Settings     *core.Settings        `yaml:"settings"`
	Budgets      []core.NewBudget      `yaml:"budgets"`
	Transactions []core.NewTransaction `yaml:"transactions"`
	Assets       []core.NewAsset       `yaml:"assets"`
}

// LoadSeed reads a seed file. A missing file yields an empty seed.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Seed{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates a seed document.
func ParseSeed(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	for i, b := range s.Budgets {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("seed budget %d: %w", i, err)
		}
	}
	for i, t := range s.Transactions {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("seed transaction %d: %w", i, err)
		}
	}
	for i, a := range s.Assets {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("seed asset %d: %w", i, err)
		}
	}
	return &s, nil
}

// IsEmpty reports whether the seed carries nothing to load.
func (s *Seed) IsEmpty() bool {
	return s == nil || (s.Settings == nil && len(s.Budgets) == 0 && len(s.Transactions) == 0 && len(s.Assets) == 0)
}
