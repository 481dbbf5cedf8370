package detour

import (
	"container/heap"

	"github.com/gorustyt/mmaps/common"
)

type DtNodeIndex uint16

const (
	DT_NULL_IDX         = DtNodeIndex(^uint16(0))
	DT_NODE_PARENT_BITS = 24
)

type DtNode struct {
	Pos    common.Vec3 ///< Position of the node.
	Cost   float32     ///< Cost from previous node to current node.
	Total  float32     ///< Cost up to the node.
	Pidx   uint32      ///< Index to parent node.
	State  uint32      ///< extra state information. A polyRef can have multiple nodes with different extra info.
	Flags  uint32      ///< Node flags. A combination of DtNodeFlags.
	Id     DtPolyRef   ///< Polygon ref the node corresponds to.
	_index int         // position inside the open list heap
}

func (node *DtNode) SetIndex(index int) { node._index = index }

func (node *DtNode) GetIndex() int { return node._index }

type NodeQueueIndex interface {
	SetIndex(index int)
	GetIndex() int
}

// NodeQueue is the open list used by searches, ordered by the less function.
type NodeQueue[T NodeQueueIndex] interface {
	Peek() T
	Poll() T
	Update(T)
	Remove(T)
	Offer(T)
	Reset()
	Empty() bool
	Len() int
}

type nodeQueue[T NodeQueueIndex] struct {
	data []T
	less func(t1, t2 T) bool
}

func NewNodeQueue[T NodeQueueIndex](less func(t1, t2 T) bool) NodeQueue[T] {
	return &nodeQueue[T]{less: less}
}

func (q *nodeQueue[T]) Reset()      { q.data = q.data[:0] }
func (q *nodeQueue[T]) Empty() bool { return len(q.data) == 0 }
func (q *nodeQueue[T]) Peek() T     { return q.data[0] }
func (q *nodeQueue[T]) Poll() T     { return heap.Pop((*nodeHeap[T])(q)).(T) }
func (q *nodeQueue[T]) Offer(v T)   { heap.Push((*nodeHeap[T])(q), v) }
func (q *nodeQueue[T]) Update(v T)  { heap.Fix((*nodeHeap[T])(q), v.GetIndex()) }
func (q *nodeQueue[T]) Remove(v T)  { heap.Remove((*nodeHeap[T])(q), v.GetIndex()) }
func (q *nodeQueue[T]) Len() int    { return len(q.data) }

// nodeHeap keeps heap.Interface off the public queue API.
type nodeHeap[T NodeQueueIndex] nodeQueue[T]

func (h *nodeHeap[T]) Len() int           { return len(h.data) }
func (h *nodeHeap[T]) Less(i, j int) bool { return h.less(h.data[i], h.data[j]) }
func (h *nodeHeap[T]) Swap(i, j int) {
	h.data[i], h.data[j] = h.data[j], h.data[i]
	h.data[i].SetIndex(i)
	h.data[j].SetIndex(j)
}
func (h *nodeHeap[T]) Push(x any) {
	v := x.(T)
	v.SetIndex(len(h.data))
	h.data = append(h.data, v)
}
func (h *nodeHeap[T]) Pop() any {
	n := len(h.data) - 1
	v := h.data[n]
	var zero T
	h.data[n] = zero
	h.data = h.data[:n]
	v.SetIndex(-1)
	return v
}

func dtHashRef(a DtPolyRef) uint32 {
	a += ^(a << 15)
	a ^= (a >> 10)
	a += (a << 3)
	a ^= (a >> 6)
	a += ^(a << 11)
	a ^= (a >> 16)
	return uint32(a)
}

type DtNodePool struct {
	m_nodes     []DtNode
	m_first     []DtNodeIndex
	m_next      []DtNodeIndex
	m_maxNodes  int32
	m_hashSize  int32
	m_nodeCount int32
}

// NewDtNodePool allocates a pool. hashSize must be a power of two and
// maxNodes must fit below DT_NULL_IDX.
func NewDtNodePool(maxNodes, hashSize int32) (*DtNodePool, DtStatus) {
	if hashSize <= 0 || common.NextPow2(uint32(hashSize)) != uint32(hashSize) {
		return nil, DT_FAILURE | DT_INVALID_PARAM
	}
	// pidx is special as 0 means "none" and 1 is the first node. For that reason
	// we have 1 fewer nodes available than the number of values it can contain.
	if maxNodes <= 0 || maxNodes > int32(DT_NULL_IDX) || maxNodes > (1<<DT_NODE_PARENT_BITS)-1 {
		return nil, DT_FAILURE | DT_INVALID_PARAM
	}
	p := &DtNodePool{
		m_maxNodes: maxNodes,
		m_hashSize: hashSize,
		m_nodes:    make([]DtNode, maxNodes),
		m_next:     make([]DtNodeIndex, maxNodes),
		m_first:    make([]DtNodeIndex, hashSize),
	}
	p.Clear()
	return p, DT_SUCCESS
}

func (p *DtNodePool) Clear() {
	for i := range p.m_first {
		p.m_first[i] = DT_NULL_IDX
	}
	for i := range p.m_next {
		p.m_next[i] = DT_NULL_IDX
	}
	p.m_nodeCount = 0
}

// GetNodeIdx returns the 1-based index of node, 0 for nil.
func (p *DtNodePool) GetNodeIdx(node *DtNode) uint32 {
	if node == nil {
		return 0
	}
	for i := range p.m_nodes[:p.m_nodeCount] {
		if &p.m_nodes[i] == node {
			return uint32(i) + 1
		}
	}
	return 0
}

func (p *DtNodePool) GetNodeAtIdx(idx uint32) *DtNode {
	if idx == 0 || idx > uint32(p.m_nodeCount) {
		return nil
	}
	return &p.m_nodes[idx-1]
}

func (p *DtNodePool) GetMaxNodes() int32  { return p.m_maxNodes }
func (p *DtNodePool) GetHashSize() int32  { return p.m_hashSize }
func (p *DtNodePool) GetNodeCount() int32 { return p.m_nodeCount }

func (p *DtNodePool) bucket(id DtPolyRef) uint32 {
	return dtHashRef(id) & uint32(p.m_hashSize-1)
}

// GetNode returns the node for (id, state), allocating it when absent. It
// returns nil when the pool is exhausted.
func (p *DtNodePool) GetNode(id DtPolyRef, state uint32) *DtNode {
	if node := p.FindNode(id, state); node != nil {
		return node
	}
	if p.m_nodeCount >= p.m_maxNodes {
		return nil
	}

	i := DtNodeIndex(p.m_nodeCount)
	p.m_nodeCount++

	// Init node
	node := &p.m_nodes[i]
	*node = DtNode{Id: id, State: state}

	b := p.bucket(id)
	p.m_next[i] = p.m_first[b]
	p.m_first[b] = i
	return node
}

func (p *DtNodePool) FindNode(id DtPolyRef, state uint32) *DtNode {
	i := p.m_first[p.bucket(id)]
	for i != DT_NULL_IDX {
		if p.m_nodes[i].Id == id && p.m_nodes[i].State == state {
			return &p.m_nodes[i]
		}
		i = p.m_next[i]
	}
	return nil
}

// FindNodes returns up to maxNodes nodes for id across all states.
func (p *DtNodePool) FindNodes(id DtPolyRef, maxNodes int) []*DtNode {
	var nodes []*DtNode
	i := p.m_first[p.bucket(id)]
	for i != DT_NULL_IDX && len(nodes) < maxNodes {
		if p.m_nodes[i].Id == id {
			nodes = append(nodes, &p.m_nodes[i])
		}
		i = p.m_next[i]
	}
	return nodes
}
