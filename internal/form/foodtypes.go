package form

import (
	"strings"

	"gopkg.in/yaml.v3"

	"restaurant-listing-admin/internal/constants"
)

type foodTypeConfig struct {
	FoodTypes []string `yaml:"food_types"`
}

// LoadFoodTypes parses the food type catalog from YAML. A broken or empty
// catalog falls back to the compiled-in defaults so the form always renders
// its full set of choices.
func LoadFoodTypes(data []byte) []string {
	var cfg foodTypeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil || len(cfg.FoodTypes) == 0 {
		return append([]string(nil), constants.DefaultFoodTypes...)
	}

	types := make([]string, 0, len(cfg.FoodTypes))
	for _, t := range cfg.FoodTypes {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		return append([]string(nil), constants.DefaultFoodTypes...)
	}

	return types
}

// SplitFoodTypes turns a stored food type string back into its selections.
func SplitFoodTypes(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, constants.FoodTypeSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

// JoinFoodTypes serializes selections into the stored representation.
func JoinFoodTypes(types []string) string {
	return strings.Join(types, constants.FoodTypeSeparator)
}
