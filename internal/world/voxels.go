package world

import (
	"fmt"

	"voxelmate.ai/internal/protocol"
)

// voxelWindow is the cube of cells around the agent from the last OBS.
// Cells are stored in the server's scan order: dy outer, dz middle, dx inner.
type voxelWindow struct {
	center Vec3i
	radius int
	ids    []uint16
}

func windowLen(r int) int {
	dim := 2*r + 1
	return dim * dim * dim
}

func (w *voxelWindow) index(d Vec3i) (int, bool) {
	r := w.radius
	if d.X < -r || d.X > r || d.Y < -r || d.Y > r || d.Z < -r || d.Z > r {
		return 0, false
	}
	dim := 2*r + 1
	return ((d.Y+r)*dim+(d.Z+r))*dim + (d.X + r), true
}

func (w *voxelWindow) at(p Vec3i) (uint16, bool) {
	if w == nil || len(w.ids) == 0 {
		return 0, false
	}
	i, ok := w.index(Vec3i{X: p.X - w.center.X, Y: p.Y - w.center.Y, Z: p.Z - w.center.Z})
	if !ok {
		return 0, false
	}
	return w.ids[i], true
}

// applyVoxels returns the window after vox. DELTA ops patch the previous
// window in place of the same slots, then the center moves.
func applyVoxels(prev *voxelWindow, vox protocol.VoxelsObs) (*voxelWindow, error) {
	if vox.Radius < 0 {
		return nil, fmt.Errorf("voxels: negative radius %d", vox.Radius)
	}
	switch vox.Encoding {
	case protocol.VoxelEncodingRLE, "":
		if vox.Data == "" {
			return nil, nil
		}
		ids, err := decodeRLE(vox.Data, windowLen(vox.Radius))
		if err != nil {
			return nil, err
		}
		return &voxelWindow{center: Vec3iFromArray(vox.Center), radius: vox.Radius, ids: ids}, nil

	case protocol.VoxelEncodingDelta:
		if prev == nil || prev.radius != vox.Radius || len(prev.ids) != windowLen(vox.Radius) {
			return nil, fmt.Errorf("voxels: DELTA without a matching base window")
		}
		next := &voxelWindow{
			center: Vec3iFromArray(vox.Center),
			radius: vox.Radius,
			ids:    append([]uint16(nil), prev.ids...),
		}
		for _, op := range vox.Ops {
			i, ok := next.index(Vec3iFromArray(op.D))
			if !ok {
				return nil, fmt.Errorf("voxels: delta op %v outside radius %d", op.D, vox.Radius)
			}
			next.ids[i] = op.B
		}
		return next, nil

	default:
		return nil, fmt.Errorf("voxels: unknown encoding %q", vox.Encoding)
	}
}
