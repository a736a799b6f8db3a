// Package world keeps the agent's picture of the world, rebuilt from the
// observations the server streams every tick.
package world

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"voxelmate.ai/internal/protocol"
)

// Block is a resolved voxel cell.
type Block struct {
	Pos  Vec3i
	ID   uint16
	Name string
}

// View is safe for concurrent use: OBS frames are applied on the transport
// goroutine while chat handling reads from it.
type View struct {
	mu sync.RWMutex

	agentID string
	name    string

	tick    uint64
	selfPos Vec3i

	byID   map[string]Entity
	byName map[string]string

	voxels  *voxelWindow
	palette []string
}

func NewView(name string) *View {
	return &View{
		name:   name,
		byID:   map[string]Entity{},
		byName: map[string]string{},
	}
}

// SetAgentID records the id the server assigned in WELCOME.
func (v *View) SetAgentID(id string) {
	v.mu.Lock()
	v.agentID = id
	v.mu.Unlock()
}

func (v *View) AgentID() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.agentID
}

func (v *View) Name() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.name
}

// IsSelf reports whether idOrName refers to this agent.
func (v *View) IsSelf(idOrName string) bool {
	if idOrName == "" {
		return false
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return idOrName == v.agentID || idOrName == v.name
}

func (v *View) Tick() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tick
}

func (v *View) SelfPos() Vec3i {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.selfPos
}

// ApplyCatalog consumes CATALOG frames; only the block palette is kept.
func (v *View) ApplyCatalog(c protocol.CatalogMsg) error {
	if !strings.EqualFold(strings.TrimSpace(c.Name), protocol.CatalogBlockPalette) {
		return nil
	}
	var names []string
	if err := json.Unmarshal(c.Data, &names); err != nil {
		return fmt.Errorf("block palette: %w", err)
	}
	v.mu.Lock()
	v.palette = names
	v.mu.Unlock()
	return nil
}

// Apply replaces the entity table and voxel window with obs. A voxel decode
// error drops the window (BlockAt finds nothing until the next full frame)
// but the rest of the frame is still applied.
func (v *View) Apply(obs *protocol.ObsMsg) error {
	byID := make(map[string]Entity, len(obs.Entities))
	byName := make(map[string]string, len(obs.Entities))
	for _, o := range obs.Entities {
		if o.ID == "" {
			continue
		}
		e := entityFromObs(o)
		byID[e.ID] = e
		if e.Name != "" {
			byName[e.Name] = e.ID
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.tick = obs.Tick
	v.selfPos = Vec3iFromArray(obs.Self.Pos)
	if obs.AgentID != "" {
		v.agentID = obs.AgentID
	}
	v.byID = byID
	v.byName = byName

	win, err := applyVoxels(v.voxels, obs.Voxels)
	if err != nil {
		v.voxels = nil
		return err
	}
	if win != nil {
		v.voxels = win
	}
	return nil
}

// Resolve finds a currently observed entity by display name, falling back
// to entity id.
func (v *View) Resolve(name string) (Entity, bool) {
	if name == "" {
		return Entity{}, false
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	if id, ok := v.byName[name]; ok {
		e, ok := v.byID[id]
		return e, ok
	}
	e, ok := v.byID[name]
	return e, ok
}

// NameOf maps an entity id to its display name when the entity is in view.
func (v *View) NameOf(id string) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if e, ok := v.byID[id]; ok {
		return e.DisplayName()
	}
	return id
}

// BlockAt returns the cell containing p if it lies inside the observed window.
func (v *View) BlockAt(p Vec3) (Block, bool) {
	cell := p.Cell()
	v.mu.RLock()
	defer v.mu.RUnlock()
	id, ok := v.voxels.at(cell)
	if !ok {
		return Block{}, false
	}
	b := Block{Pos: cell, ID: id}
	if int(id) < len(v.palette) {
		b.Name = v.palette[id]
	}
	return b, true
}
