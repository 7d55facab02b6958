// Package filestore provides the named disks complaint documents are stored
// on. Paths are always relative to the disk root.
package filestore

import (
	"context"
	"fmt"
	"sort"
)

// Disk is a flat file store addressed by relative path.
type Disk interface {
	Store(ctx context.Context, path string, content []byte) (string, error)
	// Delete reports whether a file was removed.
	Delete(ctx context.Context, path string) (bool, error)
	// Move renames from to to, reporting whether the source existed.
	Move(ctx context.Context, from, to string) (bool, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// Manager resolves disks by name ("private", "public", "s3", ...).
type Manager struct {
	disks map[string]Disk
}

func NewManager() *Manager {
	return &Manager{disks: make(map[string]Disk)}
}

// Register adds or replaces a named disk.
func (m *Manager) Register(name string, disk Disk) {
	m.disks[name] = disk
}

// Disk returns the disk registered under name.
func (m *Manager) Disk(name string) (Disk, error) {
	disk, ok := m.disks[name]
	if !ok {
		return nil, fmt.Errorf("disk %q is not configured", name)
	}
	return disk, nil
}

// Names lists the registered disks in sorted order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.disks))
	for name := range m.disks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
