package world

import "voxelmate.ai/internal/protocol"

// Entity is a live handle on something the agent can currently observe.
// Handles are snapshots; resolve again to see later movement.
type Entity struct {
	ID     string
	Type   string
	Name   string
	Pos    Vec3i
	Height float64

	look    Look
	hasLook bool
}

func entityFromObs(o protocol.EntityObs) Entity {
	e := Entity{
		ID:     o.ID,
		Type:   o.Type,
		Name:   o.Name,
		Pos:    Vec3iFromArray(o.Pos),
		Height: o.Height,
	}
	if o.Look != nil {
		e.look = Look{Yaw: o.Look.Yaw, Pitch: o.Look.Pitch}
		e.hasLook = true
	}
	return e
}

// DisplayName is the name chat and tags refer to; agents without a name
// fall back to their id.
func (e Entity) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}

func (e Entity) EyePosition() Vec3 {
	h := e.Height
	if h <= 0 {
		h = DefaultEyeHeight
	}
	return e.Pos.Vec3().Add(Vec3{Y: h})
}

// Facing returns the unit view vector, or false if the world did not
// report where the entity is looking.
func (e Entity) Facing() (Vec3, bool) {
	if !e.hasLook {
		return Vec3{}, false
	}
	return e.look.Dir(), true
}

// WithLook returns a copy of e facing l.
func (e Entity) WithLook(l Look) Entity {
	e.look = l
	e.hasLook = true
	return e
}
