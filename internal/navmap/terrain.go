// Package navmap provides the facility map model: terrain classification,
// loading of the pixel-encoded floor plan, and the read-only grid queried by
// the pathfinding engine.
package navmap

import (
	"fmt"
	"math"
)

// Kind is the traversability class of a grid cell.
type Kind uint8

// Terrain kinds. KindWall is the zero value so an unset cell is impassable.
const (
	KindWall Kind = iota
	KindCorridor
	KindOutdoor
	KindStairs
	KindElevator
	KindRoom
)

// Terrain is the classification of a single cell. RoomID is only meaningful
// when Kind is KindRoom.
type Terrain struct {
	Kind   Kind
	RoomID uint32
}

// Convenience values for the kinds that carry no payload.
var (
	Wall     = Terrain{Kind: KindWall}
	Corridor = Terrain{Kind: KindCorridor}
	Outdoor  = Terrain{Kind: KindOutdoor}
	Stairs   = Terrain{Kind: KindStairs}
	Elevator = Terrain{Kind: KindElevator}
)

// Room returns the terrain of the numbered room id.
func Room(id uint32) Terrain {
	return Terrain{Kind: KindRoom, RoomID: id}
}

// Passable reports whether a walker may enter the cell.
func (t Terrain) Passable() bool {
	return t.Kind != KindWall
}

// String returns the display label used in path segments.
func (t Terrain) String() string {
	switch t.Kind {
	case KindWall:
		return "Wall"
	case KindCorridor:
		return "Corridor"
	case KindOutdoor:
		return "Outdoor"
	case KindStairs:
		return "Stairs"
	case KindElevator:
		return "Elevator"
	case KindRoom:
		return fmt.Sprintf("Room %d", t.RoomID)
	default:
		return fmt.Sprintf("Kind(%d)", t.Kind)
	}
}

// Classify maps an encoded colour triple to a terrain.
//
// Postcondition: Returns (terrain, true) for a recognised triple, or
// (Wall, false) when the triple matches no rule.
func Classify(r, g, b float64) (Terrain, bool) {
	switch {
	case r == 0 && g == 0 && b == 1:
		return Outdoor, true
	case r == 1 && g == 1 && b == 1:
		return Corridor, true
	case r == 0 && g == 0 && b == 0:
		return Wall, true
	case r == 0 && g > 0 && b == 0:
		return Room(uint32(math.Round(g * 10))), true
	default:
		return Wall, false
	}
}
