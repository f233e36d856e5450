package plugin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/justyntemme/ladderfilter/pkg/framework/debug"
)

// ErrNoPlugin is returned when nothing has been registered.
var ErrNoPlugin = errors.New("plugin: no plugin registered")

// ErrUnknownClass is returned when a class ID does not match the registered plugin.
var ErrUnknownClass = errors.New("plugin: unknown class id")

// FactoryInfo describes the vendor behind the registered plugin
type FactoryInfo struct {
	Vendor string
	URL    string
	Email  string
}

// ClassInfo describes the registered plugin class
type ClassInfo struct {
	CID      [16]byte
	Category string
	Name     string
}

var (
	registryMu        sync.RWMutex
	globalPlugin      Plugin
	globalFactoryInfo = FactoryInfo{
		Vendor: "Ladder Audio",
		URL:    "https://github.com/justyntemme/ladderfilter",
		Email:  "info@ladderfilter.dev",
	}
)

// Register sets the global plugin instance
func Register(p Plugin) {
	registryMu.Lock()
	defer registryMu.Unlock()
	globalPlugin = p
}

// Registered returns the registered plugin, or nil
func Registered() Plugin {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return globalPlugin
}

// SetFactoryInfo sets the factory information
func SetFactoryInfo(info FactoryInfo) {
	registryMu.Lock()
	defer registryMu.Unlock()
	globalFactoryInfo = info
}

// GetFactoryInfo returns the factory information
func GetFactoryInfo() FactoryInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return globalFactoryInfo
}

// CountClasses returns 1 when a plugin is registered
func CountClasses() int {
	if Registered() == nil {
		return 0
	}
	return 1
}

// GetClassInfo returns the class description at index
func GetClassInfo(index int) (ClassInfo, error) {
	p := Registered()
	if p == nil {
		return ClassInfo{}, ErrNoPlugin
	}
	if index != 0 {
		return ClassInfo{}, fmt.Errorf("plugin: class index %d out of range", index)
	}

	info := p.GetInfo()
	return ClassInfo{
		CID:      info.UID(),
		Category: "Audio Module Class",
		Name:     info.Name,
	}, nil
}

// CreateInstance creates a processor instance for the given class ID
func CreateInstance(cid [16]byte) (*Instance, error) {
	p := Registered()
	if p == nil {
		return nil, ErrNoPlugin
	}

	info := p.GetInfo()
	if err := info.ValidateUID(); err != nil {
		return nil, fmt.Errorf("plugin %s: %w", info.Name, err)
	}
	if cid != info.UID() {
		return nil, fmt.Errorf("%w: %x", ErrUnknownClass, cid)
	}

	processor := p.CreateProcessor()
	if processor == nil {
		return nil, fmt.Errorf("plugin %s: CreateProcessor returned nil", info.Name)
	}

	debug.Debug("created instance of %s (%s)", info.Name, info.UIDString())
	return NewInstance(info, processor), nil
}

// CreateDefaultInstance creates an instance of the registered plugin
func CreateDefaultInstance() (*Instance, error) {
	p := Registered()
	if p == nil {
		return nil, ErrNoPlugin
	}
	return CreateInstance(p.GetInfo().UID())
}
