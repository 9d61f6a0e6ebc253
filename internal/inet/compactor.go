package inet

import "sort"

// compactCommon folds the arena down to a dense, compacted slice using
// adjustVertex, a Compactor-specific old -> new vertex mapping, installs it
// as the arena and clears the free list. Special (reserved) nodes are never
// moved.
func compactCommon(net *Net, adjustVertex func(Vertex) Vertex, adjustIndex func(uint32) uint32) {
	nodes := net.Nodes()
	special := net.NumSpecial()

	out := make([]Node, special, len(nodes))
	for i := 0; i < special; i++ {
		n := nodes[i]
		n.Slots[Main] = adjustVertex(n.Slots[Main])
		n.Slots[Aux1] = adjustVertex(n.Slots[Aux1])
		n.Slots[Aux2] = adjustVertex(n.Slots[Aux2])
		out[i] = n
	}

	for i := special; i < len(nodes); i++ {
		n := nodes[i]
		if n.free() {
			continue
		}
		n.Slots[Main] = adjustVertex(n.Slots[Main])
		n.Slots[Aux1] = adjustVertex(n.Slots[Aux1])
		n.Slots[Aux2] = adjustVertex(n.Slots[Aux2])
		out = append(out, n)
	}

	net.SetNodes(out)
	net.ClearFreeList()
}

// Interval defragments by building a reversed cumulative-offset table over
// sorted runs of the free list: every index past a recorded cutoff is
// shifted down by that cutoff's accumulated offset. Cheap to build, one
// linear scan of the table per lookup (O(number of free runs), a handful in
// practice), and needs no per-node storage.
type Interval struct {
	// cuts holds (boundaryIndex, offset) pairs in descending boundaryIndex
	// order: the first entry whose boundaryIndex an index exceeds supplies
	// the offset to subtract.
	cuts []intervalCut
}

type intervalCut struct {
	boundary uint32
	offset   uint32
}

func (c *Interval) Init(net *Net) {
	free := net.sortedFreeList()
	c.cuts = c.cuts[:0]
	if len(free) == 0 {
		return
	}
	offset := uint32(0)
	runStart := free[0]
	prev := free[0]
	for i := 1; i <= len(free); i++ {
		if i < len(free) && free[i] == prev+1 {
			prev = free[i]
			continue
		}
		offset += prev - runStart + 1
		c.cuts = append(c.cuts, intervalCut{boundary: prev, offset: offset})
		if i < len(free) {
			runStart = free[i]
			prev = free[i]
		}
	}
	// Reverse so lookup finds the first (largest) boundary an index exceeds.
	for i, j := 0, len(c.cuts)-1; i < j; i, j = i+1, j-1 {
		c.cuts[i], c.cuts[j] = c.cuts[j], c.cuts[i]
	}
}

func (c *Interval) AdjustIndex(old uint32) uint32 {
	for _, cut := range c.cuts {
		if old > cut.boundary {
			return old - cut.offset
		}
	}
	return old
}

func (c *Interval) AdjustVertex(v Vertex) Vertex {
	if v == NULL {
		return v
	}
	return V(c.AdjustIndex(v.Index), v.Port)
}

func (c *Interval) Compact(net *Net) {
	compactCommon(net, c.AdjustVertex, c.AdjustIndex)
}

// Mapped defragments with an explicit old-index -> new-index hash map, built
// once by walking the arena and the (reverse-sorted) free list together.
// O(1) lookups at the cost of one map entry per live node; preferred when
// the arena is small enough that the map overhead doesn't matter and a
// flat, explicit table is easier to reason about than interval math.
type Mapped struct {
	table map[uint32]uint32
}

func (m *Mapped) Init(net *Net) {
	free := net.sortedFreeList()
	sort.Sort(sort.Reverse(sortableU32(free)))

	m.table = make(map[uint32]uint32, net.NumNodes())
	offset := uint32(0)
	fi := len(free) - 1
	for i := uint32(0); i < uint32(net.NumNodes()); i++ {
		if fi >= 0 && free[fi] == i {
			offset++
			fi--
			continue
		}
		m.table[i] = i - offset
	}
}

func (m *Mapped) AdjustIndex(old uint32) uint32 {
	n, ok := m.table[old]
	if !ok {
		panic("inet: compactor Mapped.AdjustIndex: index not in table (not live)")
	}
	return n
}

func (m *Mapped) AdjustVertex(v Vertex) Vertex {
	if v == NULL {
		return v
	}
	return V(m.AdjustIndex(v.Index), v.Port)
}

func (m *Mapped) Compact(net *Net) {
	compactCommon(net, m.AdjustVertex, m.AdjustIndex)
}

type sortableU32 []uint32

func (s sortableU32) Len() int           { return len(s) }
func (s sortableU32) Less(i, j int) bool { return s[i] < s[j] }
func (s sortableU32) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
