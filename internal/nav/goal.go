package nav

import (
	"fmt"

	"voxelmate.ai/internal/world"
)

type Kind int

const (
	GoalNone Kind = iota
	GoalFollow
	GoalGoTo
)

func (k Kind) String() string {
	switch k {
	case GoalFollow:
		return "follow"
	case GoalGoTo:
		return "goto"
	default:
		return "none"
	}
}

// Goal is the steering target. Only the fields of its Kind are meaningful.
type Goal struct {
	Kind     Kind
	Entity   world.Entity
	Distance float64
	Cell     world.Vec3i
}

func None() Goal { return Goal{} }

func Follow(e world.Entity, distance float64) Goal {
	return Goal{Kind: GoalFollow, Entity: e, Distance: distance}
}

func GoTo(cell world.Vec3i) Goal { return Goal{Kind: GoalGoTo, Cell: cell} }

// Same reports whether g and o steer toward the same target. Follow goals
// compare by entity id, so a handle taken on a later tick is the same goal.
func (g Goal) Same(o Goal) bool {
	if g.Kind != o.Kind {
		return false
	}
	switch g.Kind {
	case GoalFollow:
		return g.Entity.ID == o.Entity.ID && g.Distance == o.Distance
	case GoalGoTo:
		return g.Cell == o.Cell
	default:
		return true
	}
}

func (g Goal) String() string {
	switch g.Kind {
	case GoalFollow:
		return fmt.Sprintf("follow(%s,%g)", g.Entity.DisplayName(), g.Distance)
	case GoalGoTo:
		return fmt.Sprintf("goto(%d,%d,%d)", g.Cell.X, g.Cell.Y, g.Cell.Z)
	default:
		return "none"
	}
}
