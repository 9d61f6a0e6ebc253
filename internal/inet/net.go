package inet

import "fmt"

// ROOTIndex is the arena slot reserved for the root of the whole net: the
// single Abs node whose body is the term under translation.
const ROOTIndex uint32 = 0

// ROOTVertex is the aux1 port of the root Abs node: translation wires the
// term's outermost vertex here, and readback starts its walk here.
var ROOTVertex = V(ROOTIndex, Aux1)

// GC hooks every edge write and owns whatever reserved sentinel nodes it
// needs (SINK/ERASE for EraSinkGC, ERASE alone for NoGC). See gc.go.
type GC interface {
	// Init reserves this GC's sentinel nodes in a freshly created Net.
	Init(net *Net)
	// CheckEdge is consulted before every edge write. Returning false means
	// the GC has already handled redirecting this edge (sink/erase) and the
	// raw write must be skipped; true means proceed with the normal write.
	CheckEdge(net *Net, src, tgt Vertex) bool
	// ToCollect marks a vertex's node as garbage, to be reclaimed by DoGC.
	ToCollect(net *Net, v Vertex)
	// DoGC drains this GC's work queues to a fixpoint.
	DoGC(net *Net)
	// NumCollected reports how many nodes this GC has reclaimed in total.
	NumCollected() uint64
	// StatsString formats a human-readable report of this GC's activity.
	StatsString() string
}

// Compactor defragments the arena once a GC's free list grows large,
// remapping every live index to a dense range and truncating the arena.
// See compactor.go.
type Compactor interface {
	// Init resets internal bookkeeping from scratch before computing a map.
	Init(net *Net)
	// AdjustIndex maps an old node index to its post-compaction index.
	AdjustIndex(old uint32) uint32
	// AdjustVertex maps an old vertex to its post-compaction vertex.
	AdjustVertex(v Vertex) Vertex
	// Compact remaps every live node in the arena and truncates it. Callers
	// holding external vertex references (reducer stacks) must remap them
	// with AdjustVertex after calling Compact.
	Compact(net *Net)
}

// Stats counts arena and interaction activity for reporting (§3/§4/§6).
type Stats struct {
	MaxNodeLen      int
	MaxNodeCapacity int
	NodesUsed       uint64
	NodesReused     uint64
	RemovedInter    uint64
	AppAbs          uint64
	AppFanOut       uint64
	FanInAbs        uint64
	FanInFanOutAnn  uint64
	FanInFanOutCross uint64
}

// Net is the interaction-net arena: an index-addressed slice of nodes plus
// a LIFO free list of reclaimed indices, a monotonic label counter, and the
// pluggable GC/compactor. Nothing here holds a raw pointer; every edge is a
// Vertex{Index,Port} pair resolved through the arena.
type Net struct {
	nodes     []Node
	free      []uint32
	nextLabel Label

	gc  GC
	cp  Compactor

	numSpecial int

	stats Stats

	// Debug, when true, enables follow()'s NULL-target and O(n)
	// free-list-membership assertions, and the GC's erase/sink NULL checks.
	// With Debug off none of these checks run.
	Debug bool
}

// NewNet creates a net with its ROOT node (index 0) plus whatever sentinel
// nodes gc reserves for itself, and wires cp as the compactor to use on
// demand (cp may be nil if compaction is never requested).
func NewNet(gc GC, cp Compactor) *Net {
	n := &Net{gc: gc, cp: cp, nextLabel: 1}
	n.nodes = append(n.nodes, newAbsNode("ROOT", true))
	n.stats.NodesUsed++
	gc.Init(n)
	n.numSpecial = len(n.nodes)
	return n
}

// NewLabel allocates the next unused sharing label.
func (n *Net) NewLabel() Label {
	l := n.nextLabel
	n.nextLabel++
	return l
}

// NumNodes returns the current arena length (including freed slots).
func (n *Net) NumNodes() int { return len(n.nodes) }

// NumSpecial returns how many reserved sentinel nodes sit at the start of
// the arena (ROOT plus whatever the GC added).
func (n *Net) NumSpecial() int { return n.numSpecial }

// Stats returns a copy of the current counters.
func (n *Net) Stats() Stats { return n.stats }

// GC exposes the configured GC so reducers/drivers can call DoGC directly.
func (n *Net) GC() GC { return n.gc }

// Compactor exposes the configured compactor, or nil if none was set.
func (n *Net) Compactor() Compactor { return n.cp }

// GetNode returns the node at index.
func (n *Net) GetNode(index uint32) *Node {
	return &n.nodes[index]
}

// NodeAt is an alias for GetNode reading semantics used by callers that want
// a value copy rather than a pointer.
func (n *Net) NodeAt(index uint32) Node {
	return n.nodes[index]
}

func (n *Net) newNode(node Node) uint32 {
	if len(n.free) > 0 {
		idx := n.free[len(n.free)-1]
		n.free = n.free[:len(n.free)-1]
		n.nodes[idx] = node
		n.stats.NodesUsed++
		n.stats.NodesReused++
		return idx
	}
	idx := uint32(len(n.nodes))
	n.nodes = append(n.nodes, node)
	n.stats.NodesUsed++
	if len(n.nodes) > n.stats.MaxNodeLen {
		n.stats.MaxNodeLen = len(n.nodes)
	}
	if cap(n.nodes) > n.stats.MaxNodeCapacity {
		n.stats.MaxNodeCapacity = cap(n.nodes)
	}
	return idx
}

// NewAbs allocates a fresh Abs node.
func (n *Net) NewAbs(name string, bound bool) uint32 {
	return n.newNode(newAbsNode(name, bound))
}

// NewFanOut allocates a fresh FanOut node with the given label.
func (n *Net) NewFanOut(label Label) uint32 {
	return n.newNode(newFanOutNode(label))
}

// NewApply allocates a fresh Apply node.
func (n *Net) NewApply() uint32 {
	return n.newNode(newApplyNode())
}

// NewFanIn allocates a fresh FanIn node with the given status.
func (n *Net) NewFanIn(status FanStatus) uint32 {
	return n.newNode(newFanInNode(status))
}

// Remove reclaims a node's arena slot: zeroes its three ports (marking it
// free) and pushes its index onto the free list.
func (n *Net) Remove(index uint32) {
	n.nodes[index].Slots = [3]Vertex{NULL, NULL, NULL}
	n.free = append(n.free, index)
	n.stats.RemovedInter++
}

// FreeCount returns the number of reclaimed-but-unreused arena slots.
func (n *Net) FreeCount() int { return len(n.free) }

// sortedFreeList returns a sorted copy of the free list, for the compactor.
func (n *Net) sortedFreeList() []uint32 {
	out := make([]uint32, len(n.free))
	copy(out, n.free)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// ClearFreeList empties the free list; used by the compactor after it has
// folded every free slot into the new, dense arena.
func (n *Net) ClearFreeList() { n.free = n.free[:0] }

// Nodes exposes the raw arena slice read-write, for the compactor and the
// dot emitter. Callers outside this package should prefer GetNode/NodeAt.
func (n *Net) Nodes() []Node { return n.nodes }

// SetNodes replaces the arena slice wholesale; used by the compactor once it
// has built the new, dense node list.
func (n *Net) SetNodes(nodes []Node) { n.nodes = nodes }

func (n *Net) isInFreeList(index uint32) bool {
	for _, f := range n.free {
		if f == index {
			return true
		}
	}
	return false
}

// follow resolves a vertex to the vertex wired on the other end of the edge
// at that slot. In Debug mode this also asserts the target is not NULL and
// not sitting in the free list, catching dangling-edge bugs immediately
// rather than letting them corrupt later interactions silently.
func (n *Net) follow(v Vertex) Vertex {
	target := n.nodes[v.Index].Slots[v.Port]
	if n.Debug {
		if target == NULL {
			panic(fmt.Sprintf("inet: follow(%s): NULL edge in node %d kind=%s", v, v.Index, n.nodes[v.Index].Kind))
		}
		if n.isInFreeList(target.Index) {
			panic(fmt.Sprintf("inet: follow(%s): target %s points at a freed node", v, target))
		}
	}
	return target
}

// Follow is the exported form of follow, for collaborators outside this
// package (readback, the GraphViz emitter's callers) that need to walk edges
// without reaching into arena internals.
func (n *Net) Follow(v Vertex) Vertex { return n.follow(v) }

// updateVertex writes the raw edge slot src -> tgt, without touching tgt's
// own slot and without consulting the GC. Internal helper for createEdgeRaw.
func (n *Net) updateVertex(src, tgt Vertex) {
	n.nodes[src.Index].Slots[src.Port] = tgt
}

func (n *Net) createEdgeRaw(src, tgt Vertex) {
	n.updateVertex(src, tgt)
	n.updateVertex(tgt, src)
}

// CreateEdge wires src<->tgt bidirectionally, first giving the GC a chance
// to intercept the write: a sink-bound or erase-bound edge is redirected by
// the GC instead of being written raw. See GC.CheckEdge.
func (n *Net) CreateEdge(src, tgt Vertex) {
	if n.gc.CheckEdge(n, src, tgt) {
		n.createEdgeRaw(src, tgt)
	}
}

// The four stitch primitives are the edge-rewiring vocabulary used by the
// four rewrite rules in engine.go. "old" means the vertex must be resolved
// through follow() before use (it is a port on a node the interaction is
// about to remove, and follow() yields the neighbour that survives); "new"
// means the vertex is used as-is (it is a port on a freshly allocated node,
// or otherwise already correct).

// StitchOldOld connects whatever src and tgt each currently point at.
func (n *Net) StitchOldOld(src, tgt Vertex) {
	n.CreateEdge(n.follow(src), n.follow(tgt))
}

// StitchOldNew connects whatever src currently points at, to tgt directly.
func (n *Net) StitchOldNew(src, tgt Vertex) {
	n.CreateEdge(n.follow(src), tgt)
}

// StitchNewOld connects src directly, to whatever tgt currently points at.
func (n *Net) StitchNewOld(src, tgt Vertex) {
	n.CreateEdge(src, n.follow(tgt))
}

// StitchNewNew connects src and tgt directly.
func (n *Net) StitchNewNew(src, tgt Vertex) {
	n.CreateEdge(src, tgt)
}

// MaybeCompact asks the configured GC to drain to a fixpoint, then runs the
// compactor if one is set and the caller's threshold says it's time. It
// returns whether compaction actually happened, so reducers know to remap
// their own external vertex state via Compactor().AdjustVertex.
func (n *Net) MaybeCompact(shouldCompact func(*Net) bool) bool {
	n.gc.DoGC(n)
	if n.cp == nil || !shouldCompact(n) {
		return false
	}
	n.cp.Init(n)
	n.cp.Compact(n)
	return true
}

// PrintStats formats a multi-section human-readable report of arena and
// interaction activity, in the shape the teacher's cmd/godnet driver writes
// to stderr after a run.
func (n *Net) PrintStats() string {
	s := n.stats
	return fmt.Sprintf(
		"Arena:\n"+
			"  nodes used       : %d\n"+
			"  nodes reused     : %d\n"+
			"  peak arena len   : %d\n"+
			"  peak arena cap   : %d\n"+
			"  nodes removed (interaction): %d\n"+
			"  nodes removed (gc)         : %d\n"+
			"Interactions:\n"+
			"  Apply-Abs       : %d\n"+
			"  Apply-FanOut    : %d\n"+
			"  FanIn-Abs       : %d\n"+
			"  FanIn-FanOut ann: %d\n"+
			"  FanIn-FanOut x  : %d\n"+
			"%s",
		s.NodesUsed, s.NodesReused, s.MaxNodeLen, s.MaxNodeCapacity,
		s.RemovedInter-n.gc.NumCollected(), n.gc.NumCollected(),
		s.AppAbs, s.AppFanOut, s.FanInAbs, s.FanInFanOutAnn, s.FanInFanOutCross,
		n.gc.StatsString(),
	)
}
