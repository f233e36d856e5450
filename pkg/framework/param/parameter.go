package param

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

// Parameter represents a plugin parameter.
//
// The current value is held in plain units as a single atomic scalar, so the
// control surface may write while the audio thread reads without locking.
// Each parameter is independent: a reader that looks at several parameters
// may see some of them before and some after a concurrent update.
type Parameter struct {
	ID           uint32
	Key          string // persistence key, e.g. "cutoffValue"
	Name         string
	ShortName    string
	Unit         string
	Min          float64
	Max          float64
	DefaultValue float64 // plain units
	StepCount    int32
	Flags        uint32
	UnitID       int32

	// Skew shapes the mapping between a control's travel and the value.
	// 1 is linear; values below 1 give the low end of the range more travel.
	Skew float64

	value atomic.Uint64 // math.Float64bits of the plain value

	formatFunc func(float64) string
	parseFunc  func(string) (float64, error)
}

// Flags for parameters
const (
	CanAutomate     uint32 = 1 << 0
	IsReadOnly      uint32 = 1 << 1
	IsWrapAround    uint32 = 1 << 2
	IsList          uint32 = 1 << 3
	IsHidden        uint32 = 1 << 4
	IsProgramChange uint32 = 1 << 15
	IsBypass        uint32 = 1 << 16
)

// Get returns the current plain value.
func (p *Parameter) Get() float64 {
	return math.Float64frombits(p.value.Load())
}

// Set stores a plain value, clamped to [Min, Max]. Discrete parameters snap
// to the nearest step. NaN is ignored.
func (p *Parameter) Set(plain float64) {
	if math.IsNaN(plain) {
		return
	}
	p.value.Store(math.Float64bits(p.constrain(plain)))
}

// Reset restores the default value.
func (p *Parameter) Reset() {
	p.Set(p.DefaultValue)
}

// GetValue returns the current normalized value (0-1)
func (p *Parameter) GetValue() float64 {
	return p.Normalize(p.Get())
}

// SetValue sets the normalized value (0-1)
func (p *Parameter) SetValue(normalized float64) {
	if normalized < 0 {
		normalized = 0
	} else if normalized > 1 {
		normalized = 1
	}
	p.Set(p.Denormalize(normalized))
}

// IsDiscrete reports whether the parameter only takes stepped values.
func (p *Parameter) IsDiscrete() bool {
	return p.StepCount > 0
}

func (p *Parameter) constrain(plain float64) float64 {
	if p.Max <= p.Min {
		return p.Min
	}
	if plain < p.Min {
		plain = p.Min
	} else if plain > p.Max {
		plain = p.Max
	}
	if p.StepCount > 0 {
		step := (p.Max - p.Min) / float64(p.StepCount)
		plain = p.Min + math.Round((plain-p.Min)/step)*step
	}
	return plain
}

// FormatValue returns the display string for a plain value.
func (p *Parameter) FormatValue(plain float64) string {
	if p.formatFunc != nil {
		return p.formatFunc(plain)
	}

	if p.StepCount > 0 {
		return fmt.Sprintf("%.0f", plain)
	}
	return fmt.Sprintf("%.2f", plain)
}

// ParseValue parses a display string into a plain value.
func (p *Parameter) ParseValue(str string) (float64, error) {
	if p.parseFunc != nil {
		plain, err := p.parseFunc(str)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", p.Name, err)
		}
		return p.constrain(plain), nil
	}
	plain, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", p.Name, err)
	}
	return p.constrain(plain), nil
}

// Normalize converts plain value to normalized (0-1)
func (p *Parameter) Normalize(plain float64) float64 {
	if p.Max <= p.Min {
		return 0
	}
	normalized := (plain - p.Min) / (p.Max - p.Min)
	if normalized < 0 {
		return 0
	}
	if normalized > 1 {
		return 1
	}
	return normalized
}

// Denormalize converts normalized (0-1) to plain value
func (p *Parameter) Denormalize(normalized float64) float64 {
	return p.Min + normalized*(p.Max-p.Min)
}

// ToProportion maps a plain value to a control position in [0, 1] using Skew.
func (p *Parameter) ToProportion(plain float64) float64 {
	n := p.Normalize(plain)
	if p.Skew <= 0 || p.Skew == 1 {
		return n
	}
	return math.Pow(n, p.Skew)
}

// FromProportion maps a control position in [0, 1] back to a plain value.
func (p *Parameter) FromProportion(proportion float64) float64 {
	if proportion <= 0 {
		return p.Min
	}
	if proportion >= 1 {
		return p.Max
	}
	if p.Skew > 0 && p.Skew != 1 {
		proportion = math.Exp(math.Log(proportion) / p.Skew)
	}
	return p.constrain(p.Denormalize(proportion))
}
