package metadata

import (
	"fmt"
	"strconv"
	"strings"
)

/**
 * @brief How a flat list of vertices is assembled into primitives.
 * The values follow the Direct3D 11 numbering so they can be handed to
 * backends that use it without translation.
 */
type PrimitiveTopology uint32

const (
	PrimitiveTopologyUndefined     PrimitiveTopology = 0
	PrimitiveTopologyPointList     PrimitiveTopology = 1
	PrimitiveTopologyLineList      PrimitiveTopology = 2
	PrimitiveTopologyLineStrip     PrimitiveTopology = 3
	PrimitiveTopologyTriangleList  PrimitiveTopology = 4
	PrimitiveTopologyTriangleStrip PrimitiveTopology = 5

	PrimitiveTopologyLineListAdj      PrimitiveTopology = 10
	PrimitiveTopologyLineStripAdj     PrimitiveTopology = 11
	PrimitiveTopologyTriangleListAdj  PrimitiveTopology = 12
	PrimitiveTopologyTriangleStripAdj PrimitiveTopology = 13

	// Patch lists run from 1 to 32 control points, see PatchListTopology.
	PrimitiveTopologyPatchList1  PrimitiveTopology = 33
	PrimitiveTopologyPatchList32 PrimitiveTopology = 64
)

/** @brief The largest control point count a patch list can declare. */
const MaxPatchControlPoints = 32

// PatchListTopology returns the patch list topology with the given number of
// control points. Counts outside 1..32 give PrimitiveTopologyUndefined.
func PatchListTopology(controlPoints uint32) PrimitiveTopology {
	if controlPoints < 1 || controlPoints > MaxPatchControlPoints {
		return PrimitiveTopologyUndefined
	}
	return PrimitiveTopologyPatchList1 + PrimitiveTopology(controlPoints-1)
}

// IsPatchList reports whether t is one of the 32 patch list topologies.
func (t PrimitiveTopology) IsPatchList() bool {
	return t >= PrimitiveTopologyPatchList1 && t <= PrimitiveTopologyPatchList32
}

// ControlPoints returns the control point count of a patch list, or 0.
func (t PrimitiveTopology) ControlPoints() uint32 {
	if !t.IsPatchList() {
		return 0
	}
	return uint32(t-PrimitiveTopologyPatchList1) + 1
}

// IsAdjacency reports whether t carries adjacency vertices.
func (t PrimitiveTopology) IsAdjacency() bool {
	return t >= PrimitiveTopologyLineListAdj && t <= PrimitiveTopologyTriangleStripAdj
}

// IsValid reports whether t names a topology a draw can be issued with.
func (t PrimitiveTopology) IsValid() bool {
	switch t {
	case PrimitiveTopologyPointList,
		PrimitiveTopologyLineList,
		PrimitiveTopologyLineStrip,
		PrimitiveTopologyTriangleList,
		PrimitiveTopologyTriangleStrip,
		PrimitiveTopologyLineListAdj,
		PrimitiveTopologyLineStripAdj,
		PrimitiveTopologyTriangleListAdj,
		PrimitiveTopologyTriangleStripAdj:
		return true
	}
	return t.IsPatchList()
}

// PrimitiveCount converts a vertex count into the number of primitives t
// assembles from it. Every value of t has a defined result; anything that is
// not a drawable topology gives 0, as do counts too short for a single strip
// primitive.
func (t PrimitiveTopology) PrimitiveCount(vertices uint32) uint32 {
	switch t {
	case PrimitiveTopologyPointList:
		return vertices
	case PrimitiveTopologyLineList:
		return vertices / 2
	case PrimitiveTopologyLineStrip:
		return stripCount(vertices, 1)
	case PrimitiveTopologyTriangleList:
		return vertices / 3
	case PrimitiveTopologyTriangleStrip:
		return stripCount(vertices, 2)
	case PrimitiveTopologyLineListAdj:
		return vertices / 4
	case PrimitiveTopologyLineStripAdj:
		return stripCount(vertices, 3)
	case PrimitiveTopologyTriangleListAdj:
		return vertices / 6
	case PrimitiveTopologyTriangleStripAdj:
		return stripCount(vertices, 3) / 2
	}
	if cp := t.ControlPoints(); cp > 0 {
		return vertices / cp
	}
	return 0
}

func stripCount(vertices, overlap uint32) uint32 {
	if vertices <= overlap {
		return 0
	}
	return vertices - overlap
}

var topologyNames = map[PrimitiveTopology]string{
	PrimitiveTopologyUndefined:        "undefined",
	PrimitiveTopologyPointList:        "point_list",
	PrimitiveTopologyLineList:         "line_list",
	PrimitiveTopologyLineStrip:        "line_strip",
	PrimitiveTopologyTriangleList:     "triangle_list",
	PrimitiveTopologyTriangleStrip:    "triangle_strip",
	PrimitiveTopologyLineListAdj:      "line_list_adj",
	PrimitiveTopologyLineStripAdj:     "line_strip_adj",
	PrimitiveTopologyTriangleListAdj:  "triangle_list_adj",
	PrimitiveTopologyTriangleStripAdj: "triangle_strip_adj",
}

const patchListPrefix = "patch_list_"

func (t PrimitiveTopology) String() string {
	if name, ok := topologyNames[t]; ok {
		return name
	}
	if cp := t.ControlPoints(); cp > 0 {
		return patchListPrefix + strconv.FormatUint(uint64(cp), 10)
	}
	return fmt.Sprintf("PrimitiveTopology(%d)", uint32(t))
}

// ParsePrimitiveTopology is the inverse of PrimitiveTopology.String for
// every named topology. Patch lists are written patch_list_N.
func ParsePrimitiveTopology(s string) (PrimitiveTopology, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for t, n := range topologyNames {
		if n == name {
			return t, nil
		}
	}
	if rest, ok := strings.CutPrefix(name, patchListPrefix); ok {
		cp, err := strconv.ParseUint(rest, 10, 32)
		if err == nil {
			if t := PatchListTopology(uint32(cp)); t != PrimitiveTopologyUndefined {
				return t, nil
			}
		}
	}
	return PrimitiveTopologyUndefined, fmt.Errorf("unknown primitive topology %q", s)
}

func (t PrimitiveTopology) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *PrimitiveTopology) UnmarshalText(text []byte) error {
	parsed, err := ParsePrimitiveTopology(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
