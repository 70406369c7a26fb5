// Package rooms provides the room directory: display names for the numbered
// rooms encoded in the floor plan.
package rooms

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a room id is not in the directory.
var ErrNotFound = errors.New("room not found")

// Room describes one numbered room of the facility.
type Room struct {
	// ID matches the id decoded from the floor plan.
	ID uint32 `yaml:"id"`
	// Name is the display name shown to walkers.
	Name string `yaml:"name"`
	// Floor is the storey the room sits on.
	Floor int `yaml:"floor"`
	// Description is optional free text.
	Description string `yaml:"description,omitempty"`
}

// Namer resolves display names for room ids.
type Namer interface {
	// RoomNames returns the names known for ids. Unknown ids are absent from
	// the result.
	RoomNames(ctx context.Context, ids []uint32) (map[uint32]string, error)
}

type yamlDirectoryFile struct {
	Rooms []Room `yaml:"rooms"`
}

// Directory is an immutable in-memory room directory.
type Directory struct {
	rooms map[uint32]Room
}

// NewDirectory builds a Directory from rooms.
//
// Postcondition: Returns a Directory, or an error on an invalid room or a
// duplicate id.
func NewDirectory(rooms []Room) (*Directory, error) {
	d := &Directory{rooms: make(map[uint32]Room, len(rooms))}
	for _, r := range rooms {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, exists := d.rooms[r.ID]; exists {
			return nil, fmt.Errorf("duplicate room id %d", r.ID)
		}
		d.rooms[r.ID] = r
	}
	return d, nil
}

// Validate checks room invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (r Room) Validate() error {
	if r.ID == 0 {
		return errors.New("room id must be positive")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("room %d: name must not be empty", r.ID)
	}
	return nil
}

// LoadFile reads a YAML room directory.
//
// Precondition: path must point to a YAML file with a top-level "rooms" list.
// Postcondition: Returns a validated Directory or a non-nil error.
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading room directory %s: %w", path, err)
	}
	return LoadBytes(data)
}

// LoadBytes parses a YAML room directory.
func LoadBytes(data []byte) (*Directory, error) {
	var file yamlDirectoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing room directory YAML: %w", err)
	}
	for i := range file.Rooms {
		file.Rooms[i].Name = strings.TrimSpace(file.Rooms[i].Name)
		file.Rooms[i].Description = strings.TrimSpace(file.Rooms[i].Description)
	}
	d, err := NewDirectory(file.Rooms)
	if err != nil {
		return nil, fmt.Errorf("validating room directory: %w", err)
	}
	return d, nil
}

// Get returns the room with the given id.
//
// Postcondition: Returns (room, nil) if found, or ErrNotFound otherwise.
func (d *Directory) Get(id uint32) (Room, error) {
	r, ok := d.rooms[id]
	if !ok {
		return Room{}, fmt.Errorf("room %d: %w", id, ErrNotFound)
	}
	return r, nil
}

// All returns every room ordered by id.
func (d *Directory) All() []Room {
	out := make([]Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of rooms.
func (d *Directory) Len() int { return len(d.rooms) }

// RoomNames implements Namer.
func (d *Directory) RoomNames(_ context.Context, ids []uint32) (map[uint32]string, error) {
	names := make(map[uint32]string, len(ids))
	for _, id := range ids {
		if r, ok := d.rooms[id]; ok {
			names[id] = r.Name
		}
	}
	return names, nil
}
