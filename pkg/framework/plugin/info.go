package plugin

import (
	"crypto/sha1"
	"errors"
	"fmt"
)

// Info contains plugin metadata
type Info struct {
	ID       string // Unique plugin identifier (e.g., "com.example.myplugin")
	Name     string // Display name
	Version  string // Semantic version (e.g., "1.0.0")
	Vendor   string // Company/developer name
	Category string // Plugin category (e.g., "Fx", "Instrument")
}

// uidNamespace seeds class IDs so they do not collide with other vendors
// hashing the same reverse-domain strings.
var uidNamespace = [16]byte{
	0x6c, 0x61, 0x64, 0x64, 0x65, 0x72, 0x66, 0x69,
	0x6c, 0x74, 0x65, 0x72, 0x2e, 0x75, 0x69, 0x64,
}

// UID derives a stable 16-byte class ID from the string ID (name-based,
// version 5 layout).
func (i Info) UID() [16]byte {
	h := sha1.New()
	h.Write(uidNamespace[:])
	h.Write([]byte(i.ID))
	sum := h.Sum(nil)

	var uid [16]byte
	copy(uid[:], sum[:16])
	uid[6] = (uid[6] & 0x0f) | 0x50
	uid[8] = (uid[8] & 0x3f) | 0x80
	return uid
}

// UIDString formats the class ID in the usual 8-4-4-4-12 form.
func (i Info) UIDString() string {
	u := i.UID()
	return fmt.Sprintf("%x-%x-%x-%x-%x", u[0:4], u[4:6], u[6:8], u[8:10], u[10:16])
}

// ValidateUID checks that the info can produce a usable class ID.
func (i Info) ValidateUID() error {
	if i.ID == "" {
		return errors.New("plugin ID must not be empty")
	}
	if i.UID() == ([16]byte{}) {
		return fmt.Errorf("plugin ID %q produced an empty UID", i.ID)
	}
	return nil
}
