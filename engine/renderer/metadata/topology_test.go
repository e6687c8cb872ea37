package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveCount(t *testing.T) {
	cases := []struct {
		topology PrimitiveTopology
		vertices uint32
		want     uint32
	}{
		{PrimitiveTopologyTriangleList, 9, 3},
		{PrimitiveTopologyLineStrip, 10, 9},
		{PrimitiveTopologyPointList, 5, 5},
		{PrimitiveTopologyLineList, 7, 3},
		{PrimitiveTopologyTriangleStrip, 6, 4},
		{PrimitiveTopologyLineListAdj, 8, 2},
		{PrimitiveTopologyLineStripAdj, 5, 2},
		{PrimitiveTopologyTriangleListAdj, 8, 1},
		{PrimitiveTopologyTriangleListAdj, 12, 2},
		{PrimitiveTopologyTriangleStripAdj, 7, 2},
		{PatchListTopology(1), 5, 5},
		{PatchListTopology(3), 10, 3},
		{PatchListTopology(32), 64, 2},
		{PrimitiveTopologyUndefined, 100, 0},
		{PrimitiveTopology(7), 100, 0},
		{PrimitiveTopology(65), 100, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.topology.PrimitiveCount(c.vertices), "%s with %d vertices", c.topology, c.vertices)
	}
}

func TestPrimitiveCountZeroVertices(t *testing.T) {
	topologies := []PrimitiveTopology{PrimitiveTopologyUndefined, PrimitiveTopology(99)}
	for topology := PrimitiveTopologyPointList; topology <= PrimitiveTopologyPatchList32; topology++ {
		topologies = append(topologies, topology)
	}
	for _, topology := range topologies {
		assert.Zero(t, topology.PrimitiveCount(0), topology.String())
	}
	// Strips shorter than their overlap never wrap around.
	assert.Zero(t, PrimitiveTopologyLineStrip.PrimitiveCount(1))
	assert.Zero(t, PrimitiveTopologyTriangleStrip.PrimitiveCount(2))
	assert.Zero(t, PrimitiveTopologyTriangleStripAdj.PrimitiveCount(3))
}

func TestPatchListTopology(t *testing.T) {
	assert.Equal(t, PrimitiveTopologyPatchList1, PatchListTopology(1))
	assert.Equal(t, PrimitiveTopologyPatchList32, PatchListTopology(32))
	assert.Equal(t, PrimitiveTopologyUndefined, PatchListTopology(0))
	assert.Equal(t, PrimitiveTopologyUndefined, PatchListTopology(33))

	for cp := uint32(1); cp <= MaxPatchControlPoints; cp++ {
		topology := PatchListTopology(cp)
		assert.True(t, topology.IsPatchList())
		assert.True(t, topology.IsValid())
		assert.Equal(t, cp, topology.ControlPoints())
	}
	assert.Zero(t, PrimitiveTopologyTriangleList.ControlPoints())
}

func TestTopologyValidity(t *testing.T) {
	assert.True(t, PrimitiveTopologyTriangleStripAdj.IsValid())
	assert.True(t, PrimitiveTopologyLineListAdj.IsAdjacency())
	assert.False(t, PrimitiveTopologyLineList.IsAdjacency())
	assert.False(t, PrimitiveTopologyUndefined.IsValid())
	assert.False(t, PrimitiveTopology(6).IsValid())
	assert.False(t, PrimitiveTopology(9).IsValid())
}

func TestParsePrimitiveTopology(t *testing.T) {
	for topology := PrimitiveTopologyUndefined; topology <= PrimitiveTopologyPatchList32; topology++ {
		if topology != PrimitiveTopologyUndefined && !topology.IsValid() {
			continue
		}
		parsed, err := ParsePrimitiveTopology(topology.String())
		require.NoError(t, err, topology.String())
		assert.Equal(t, topology, parsed)
	}

	parsed, err := ParsePrimitiveTopology(" Triangle_List ")
	require.NoError(t, err)
	assert.Equal(t, PrimitiveTopologyTriangleList, parsed)

	for _, bad := range []string{"quads", "patch_list_0", "patch_list_33", "patch_list_x"} {
		_, err := ParsePrimitiveTopology(bad)
		assert.Error(t, err, bad)
	}
}

func TestTopologyText(t *testing.T) {
	var topology PrimitiveTopology
	require.NoError(t, topology.UnmarshalText([]byte("patch_list_4")))
	assert.Equal(t, PatchListTopology(4), topology)

	text, err := topology.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "patch_list_4", string(text))

	assert.Error(t, topology.UnmarshalText([]byte("bogus")))
	assert.Equal(t, PatchListTopology(4), topology, "failed decode keeps the value")
	assert.Equal(t, "PrimitiveTopology(7)", PrimitiveTopology(7).String())
}
