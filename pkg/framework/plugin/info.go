package plugin

import (
	"errors"

	"github.com/google/uuid"
)

// uidNamespace scopes plugin UIDs so that the same reverse-DNS ID always hashes
// to the same class ID, independent of other UUID v5 users.
var uidNamespace = uuid.MustParse("8c3a5c1e-6f0b-5b7e-9a51-2f4d8e0c7b10")

// Info contains plugin metadata
type Info struct {
	ID       string // Unique plugin identifier (e.g., "com.example.myplugin")
	Name     string // Display name
	Version  string // Semantic version (e.g., "1.0.0")
	Vendor   string // Company/developer name
	Category string // Plugin category (e.g., "Fx", "Instrument")
}

// UID converts the string ID to a 16-byte class ID for VST3. The ID is a
// name-based UUID (version 5) of the plugin ID, so it never changes between
// builds.
func (i Info) UID() [16]byte {
	return uuid.NewSHA1(uidNamespace, []byte(i.ID))
}

// ValidateUID reports whether the info can produce a usable class ID.
func (i Info) ValidateUID() error {
	if i.ID == "" {
		return errors.New("plugin ID is empty")
	}
	if i.UID() == ([16]byte{}) {
		return errors.New("plugin UID is all zeros")
	}
	return nil
}
