// Package bus provides audio bus configuration and layout negotiation.
package bus

import (
	"errors"
	"fmt"
)

// ErrUnsupportedLayout is returned when a host proposes a channel layout
// the plugin cannot run with.
var ErrUnsupportedLayout = errors.New("unsupported bus layout")

// Direction represents the bus direction
type Direction int32

const (
	// DirectionInput represents input bus
	DirectionInput Direction = 0
	// DirectionOutput represents output bus
	DirectionOutput Direction = 1
)

// Type represents the bus type
type Type int32

const (
	// TypeMain represents main bus
	TypeMain Type = 0
	// TypeAux represents auxiliary bus
	TypeAux Type = 1
)

// Info contains bus configuration
type Info struct {
	Direction    Direction
	ChannelCount int32
	Name         string
	BusType      Type
	IsActive     bool
}

// Layout is a proposed channel count for the main input and output buses.
// A zero input count means the host offers no input bus.
type Layout struct {
	MainInput  int32
	MainOutput int32
}

func (l Layout) String() string {
	return fmt.Sprintf("%din/%dout", l.MainInput, l.MainOutput)
}

// Predicate reports whether a layout is acceptable.
type Predicate func(Layout) bool

// Configuration manages audio buses
type Configuration struct {
	audioBuses []Info
	supports   Predicate
}

// GetBusCount returns the number of buses for a direction
func (c *Configuration) GetBusCount(direction Direction) int32 {
	count := int32(0)
	for _, bus := range c.audioBuses {
		if bus.Direction == direction {
			count++
		}
	}
	return count
}

// GetBusInfo returns information about a specific bus
func (c *Configuration) GetBusInfo(direction Direction, index int32) *Info {
	busIndex := int32(0)
	for i := range c.audioBuses {
		if c.audioBuses[i].Direction == direction {
			if busIndex == index {
				return &c.audioBuses[i]
			}
			busIndex++
		}
	}

	return nil
}

// mainBus returns the first main bus for a direction
func (c *Configuration) mainBus(direction Direction) *Info {
	for i := range c.audioBuses {
		if c.audioBuses[i].Direction == direction && c.audioBuses[i].BusType == TypeMain {
			return &c.audioBuses[i]
		}
	}
	return nil
}

// Current returns the active main bus layout.
func (c *Configuration) Current() Layout {
	var l Layout
	if in := c.mainBus(DirectionInput); in != nil && in.IsActive {
		l.MainInput = in.ChannelCount
	}
	if out := c.mainBus(DirectionOutput); out != nil && out.IsActive {
		l.MainOutput = out.ChannelCount
	}
	return l
}

// SupportsLayout reports whether the configuration accepts a layout. Without
// a predicate only the built layout is accepted.
func (c *Configuration) SupportsLayout(l Layout) bool {
	if c.supports != nil {
		return c.supports(l)
	}
	return l == c.Current()
}

// Negotiate applies a proposed layout to the main buses, or refuses it with
// ErrUnsupportedLayout and leaves the configuration unchanged.
func (c *Configuration) Negotiate(l Layout) error {
	if !c.SupportsLayout(l) {
		return fmt.Errorf("%w: %s", ErrUnsupportedLayout, l)
	}

	if in := c.mainBus(DirectionInput); in != nil {
		in.ChannelCount = l.MainInput
		in.IsActive = l.MainInput > 0
	}
	if out := c.mainBus(DirectionOutput); out != nil {
		out.ChannelCount = l.MainOutput
		out.IsActive = l.MainOutput > 0
	}
	return nil
}

// SetBusActive sets a specific bus as active/inactive
func (c *Configuration) SetBusActive(direction Direction, index int32, active bool) error {
	bus := c.GetBusInfo(direction, index)
	if bus == nil {
		return fmt.Errorf("bus not found: direction=%d, index=%d", direction, index)
	}
	bus.IsActive = active
	return nil
}
