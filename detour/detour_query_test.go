package detour

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/mmaps/common"
)

func TestNewDtNavMeshQuery(t *testing.T) {
	mesh := newTestMesh(t)

	q, status := NewDtNavMeshQuery(mesh, 1024)
	require.True(t, status.DtStatusSucceed())
	assert.Same(t, mesh, q.GetAttachedNavMesh())
	assert.Equal(t, int32(1024), q.GetNodePool().GetMaxNodes())
	assert.Equal(t, int32(256), q.GetNodePool().GetHashSize())
	assert.True(t, q.OpenList().Empty())

	for _, bad := range []int32{0, -1, DT_MAX_QUERY_NODES + 1} {
		q, status := NewDtNavMeshQuery(mesh, bad)
		assert.Nil(t, q)
		assert.ErrorIs(t, status.Err(), ErrInvalidParam, "maxNodes %d", bad)
	}
	q, status = NewDtNavMeshQuery(nil, 16)
	assert.Nil(t, q)
	assert.True(t, status.DtStatusFailed())
}

func TestQueryRelease(t *testing.T) {
	q, status := NewDtNavMeshQuery(newTestMesh(t), 8)
	require.True(t, status.DtStatusSucceed())
	require.False(t, q.Released())

	q.Release()
	assert.True(t, q.Released())
	_, status = q.FindTileAt(common.Vec3{})
	assert.True(t, status.DtStatusFailed())
}

func TestFindTileAtAndQueryTiles(t *testing.T) {
	mesh := newTestMesh(t)
	ref00, _ := mesh.AddTile(tileAt(0, 0), DT_TILE_FREE_DATA, 0)
	ref10, _ := mesh.AddTile(tileAt(1, 0), DT_TILE_FREE_DATA, 0)
	_, _ = mesh.AddTile(tileAt(3, 3), DT_TILE_FREE_DATA, 0)

	q, _ := NewDtNavMeshQuery(mesh, 64)

	ref, status := q.FindTileAt(common.Vec3{40, 0, 5})
	require.True(t, status.DtStatusSucceed())
	assert.Equal(t, ref10, ref)

	_, status = q.FindTileAt(common.Vec3{40, 0, 40})
	assert.True(t, status.DtStatusFailed())

	refs, status := q.QueryTiles(common.Vec3{1, -1, 1}, common.Vec3{50, 1, 20})
	require.True(t, status.DtStatusSucceed())
	assert.ElementsMatch(t, []DtTileRef{ref00, ref10}, refs)
}

func TestNodePool(t *testing.T) {
	pool, status := NewDtNodePool(4, 2)
	require.True(t, status.DtStatusSucceed())

	a := pool.GetNode(10, 0)
	require.NotNil(t, a)
	assert.Same(t, a, pool.GetNode(10, 0))
	b := pool.GetNode(10, 1)
	require.NotNil(t, b)
	assert.NotSame(t, a, b)
	assert.Len(t, pool.FindNodes(10, 4), 2)
	assert.Len(t, pool.FindNodes(10, 1), 1)

	assert.Equal(t, uint32(1), pool.GetNodeIdx(a))
	assert.Same(t, b, pool.GetNodeAtIdx(2))
	assert.Nil(t, pool.GetNodeAtIdx(0))

	require.NotNil(t, pool.GetNode(11, 0))
	require.NotNil(t, pool.GetNode(12, 0))
	assert.Nil(t, pool.GetNode(13, 0), "pool exhausted")

	pool.Clear()
	assert.Zero(t, pool.GetNodeCount())
	assert.Nil(t, pool.FindNode(10, 0))

	_, status = NewDtNodePool(4, 3)
	assert.True(t, status.DtStatusFailed(), "hash size must be a power of two")
}

func TestNodeQueueOrdersByTotal(t *testing.T) {
	q := NewNodeQueue(func(a, b *DtNode) bool { return a.Total < b.Total })
	nodes := []*DtNode{{Total: 5}, {Total: 1}, {Total: 3}, {Total: 4}}
	for _, n := range nodes {
		q.Offer(n)
	}
	require.Equal(t, 4, q.Len())
	assert.Equal(t, float32(1), q.Peek().Total)

	nodes[0].Total = 0
	q.Update(nodes[0])
	q.Remove(nodes[2])

	var got []float32
	for !q.Empty() {
		got = append(got, q.Poll().Total)
	}
	assert.Equal(t, []float32{0, 1, 4}, got)
}
