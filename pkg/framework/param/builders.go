package param

import (
	"fmt"
	"math"
	"strings"
)

// ChoiceOption represents a single choice in a list parameter
type ChoiceOption struct {
	Value   float64
	Name    string
	Aliases []string
}

// Choice creates a parameter builder for a multiple choice parameter.
// Option values must be consecutive and ascending.
func Choice(id uint32, name string, options []ChoiceOption) *Builder {
	formatter := func(value float64) string {
		for _, opt := range options {
			if opt.Value == math.Round(value) {
				return opt.Name
			}
		}
		return "Unknown"
	}

	parser := func(str string) (float64, error) {
		normalizedStr := strings.TrimSpace(str)

		for _, opt := range options {
			if strings.EqualFold(normalizedStr, opt.Name) {
				return opt.Value, nil
			}
			for _, alias := range opt.Aliases {
				if strings.EqualFold(normalizedStr, alias) {
					return opt.Value, nil
				}
			}
		}

		return 0, fmt.Errorf("unknown option: %s", str)
	}

	minVal := 0.0
	maxVal := 0.0
	if len(options) > 0 {
		minVal = options[0].Value
		maxVal = options[len(options)-1].Value
	}

	steps := int32(len(options) - 1)
	if steps < 1 {
		steps = 1
	}

	return New(id, name).
		Range(minVal, maxVal).
		Steps(steps).
		Default(minVal).
		Flags(CanAutomate|IsList).
		Formatter(formatter, parser)
}

// FrequencyParameter creates a standard frequency parameter in Hz
func FrequencyParameter(id uint32, name string, min, max, defaultVal float64) *Builder {
	return New(id, name).
		Range(min, max).
		Default(defaultVal).
		Unit("Hz").
		Formatter(FrequencyFormatter, FrequencyParser)
}

// ResonanceParameter creates a unit-range resonance parameter
func ResonanceParameter(id uint32, name string) *Builder {
	return New(id, name).
		Range(0, 1).
		Default(0).
		Formatter(func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		}, nil)
}

// DriveParameter creates a linear drive parameter
func DriveParameter(id uint32, name string, min, max, defaultVal float64) *Builder {
	return New(id, name).
		Range(min, max).
		Default(defaultVal).
		Formatter(func(v float64) string {
			return fmt.Sprintf("%.2fx", v)
		}, func(s string) (float64, error) {
			s = strings.TrimSuffix(strings.TrimSpace(strings.ToLower(s)), "x")
			return parseFloat(s)
		})
}

func parseFloat(s string) (float64, error) {
	var val float64
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%f", &val)
	return val, err
}
