package broadcast

import (
	"fmt"
	"sync"
)

// Permission names a runtime grant the broadcast flow depends on.
type Permission string

const (
	PermissionCamera Permission = "camera"
	PermissionSMS    Permission = "sms"
)

// ParsePermission maps a route parameter to a Permission.
func ParsePermission(name string) (Permission, error) {
	switch Permission(name) {
	case PermissionCamera, PermissionSMS:
		return Permission(name), nil
	default:
		return "", fmt.Errorf("unknown permission %q", name)
	}
}

// Gate tracks granted permissions. Grants are requested just in time by the
// client, which reports the outcome back through Set.
type Gate struct {
	mu      sync.RWMutex
	granted map[Permission]bool
}

// NewGate seeds the gate with the initial grants.
func NewGate(camera, sms bool) *Gate {
	return &Gate{granted: map[Permission]bool{
		PermissionCamera: camera,
		PermissionSMS:    sms,
	}}
}

// Granted reports whether p is currently granted.
func (g *Gate) Granted(p Permission) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.granted[p]
}

// Set records the outcome of a permission prompt.
func (g *Gate) Set(p Permission, granted bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.granted[p] = granted
}
