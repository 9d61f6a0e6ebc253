package inet

import "fmt"

// EraSinkGC is the default garbage collector: two reserved sentinel nodes,
// ERASE and SINK, absorb edges pointed at dead subgraphs and propagate
// outward through every node kind until the whole dead subgraph is
// reclaimed. Grounded on the Rust original's erasink.rs.
type EraSinkGC struct {
	sinkIndex  uint32
	eraseIndex uint32

	toErase []Vertex
	toSink  []Vertex

	removedErase uint64
	removedSink  uint64
	numErase     uint64
	numSink      uint64
}

// sinkVertex/eraseVertex are the sentinel ports: SINK's Aux2 and ERASE's
// Aux1. Dead slots are pointed at these exact vertices, so IsLive's
// NULL/SINK/ERASE checks compare whole vertices, not just indices.
func (g *EraSinkGC) sinkVertex() Vertex  { return V(g.sinkIndex, Aux2) }
func (g *EraSinkGC) eraseVertex() Vertex { return V(g.eraseIndex, Aux1) }

// Init reserves SINK at index 1 and ERASE at index 2, both plain Abs shells
// never otherwise touched as real nodes.
func (g *EraSinkGC) Init(net *Net) {
	g.sinkIndex = net.NewAbs("SINK", false)
	g.eraseIndex = net.NewAbs("ERASE", false)
}

// IsLive reports whether v is neither NULL nor one of this GC's own
// sentinel vertices, i.e. whether the slot holding it has not already been
// claimed by erase/sink.
func (g *EraSinkGC) IsLive(v Vertex) bool {
	return v != NULL && v != g.sinkVertex() && v != g.eraseVertex()
}

// erase marks tgt's node as garbage: unless it is already the SINK sentinel
// itself, redirect it to ERASE and queue it for propagation.
func (g *EraSinkGC) erase(net *Net, tgt Vertex) {
	if net.Debug && tgt == NULL {
		panic("inet: erase(NULL)")
	}
	if tgt == g.sinkVertex() {
		return
	}
	net.updateVertex(tgt, g.eraseVertex())
	g.toErase = append(g.toErase, tgt)
}

// sink marks src's node as a source with no live consumer: unless it is
// already the ERASE sentinel itself, redirect it to SINK and queue it.
func (g *EraSinkGC) sink(net *Net, src Vertex) {
	if net.Debug && src == NULL {
		panic("inet: sink(NULL)")
	}
	if src == g.eraseVertex() {
		return
	}
	net.updateVertex(src, g.sinkVertex())
	g.toSink = append(g.toSink, src)
}

// CheckEdge intercepts every edge write. Writing to SINK means the edge's
// source has no live consumer: sink it instead. Writing from ERASE means the
// edge's target is dead: erase it instead. Either way the raw write must be
// skipped, since the GC has already redirected the slot.
func (g *EraSinkGC) CheckEdge(net *Net, src, tgt Vertex) bool {
	if tgt.Index == g.sinkIndex {
		g.sink(net, src)
		return false
	}
	if src.Index == g.eraseIndex {
		g.erase(net, tgt)
		return false
	}
	return true
}

// ToCollect is the external entry point for marking a vertex dead (used by
// the builder to erase an unused Abs.Aux2 binder).
func (g *EraSinkGC) ToCollect(net *Net, v Vertex) { g.erase(net, v) }

// runErase handles one queued erase token, dispatched by (node kind, the
// port that received the token) per spec.md's propagation table, with
// Apply's ports taken by role: Aux1 is the argument, Aux2 the continuation.
func (g *EraSinkGC) runErase(net *Net, tgt Vertex) {
	if net.nodes[tgt.Index].Slots[tgt.Port] != g.eraseVertex() {
		// Already collected via another path; the cycle-safety check.
		return
	}
	index := tgt.Index
	node := net.nodes[index]
	switch {
	case node.Kind == KindAbs && tgt.Port == Main:
		g.erase(net, net.follow(V(index, Aux1)))
		if node.Bound {
			g.sink(net, net.follow(V(index, Aux2)))
		}
		net.Remove(index)
		g.removedErase++

	case node.Kind == KindAbs && tgt.Port == Aux2:
		// Erased at the binder: the binder has no more consumers, but
		// the abstraction is still alive from its main port.
		net.nodes[index].Bound = false

	case node.Kind == KindFanOut && tgt.Port == Main:
		g.erase(net, net.follow(V(index, Aux1)))
		g.erase(net, net.follow(V(index, Aux2)))
		net.Remove(index)
		g.removedErase++

	case node.Kind == KindApply && tgt.Port == Aux2:
		g.erase(net, net.follow(V(index, Main)))
		g.erase(net, net.follow(V(index, Aux1)))
		net.Remove(index)
		g.removedErase++

	case node.Kind == KindFanIn && (tgt.Port == Aux1 || tgt.Port == Aux2):
		other := Aux2
		if tgt.Port == Aux2 {
			other = Aux1
		}
		if node.Status.Stem {
			net.StitchOldOld(V(index, other), MainOf(index))
			net.Remove(index)
			g.removedErase++
		} else if net.nodes[index].Slots[other] == g.eraseVertex() {
			g.erase(net, net.follow(V(index, Main)))
			net.Remove(index)
			g.removedErase++
		}
		// Labeled and the other branch is still alive: no-op, wait for it.

	default:
		panic(fmt.Sprintf("inet: erase token at unexpected port %s of %s node %d", tgt.Port, node.Kind, index))
	}
	g.numErase++
}

// runSink handles one queued sink token, per spec.md's propagation table
// (Apply ports by role, as in runErase).
func (g *EraSinkGC) runSink(net *Net, src Vertex) {
	if net.nodes[src.Index].Slots[src.Port] != g.sinkVertex() {
		return
	}
	index := src.Index
	node := net.nodes[index]
	switch {
	case node.Kind == KindApply && src.Port == Main:
		g.sink(net, net.follow(V(index, Aux2)))
		g.erase(net, net.follow(V(index, Aux1)))
		net.Remove(index)
		g.removedSink++

	case node.Kind == KindApply && src.Port == Aux1:
		g.sink(net, net.follow(V(index, Aux2)))
		g.erase(net, net.follow(V(index, Main)))
		net.Remove(index)
		g.removedSink++

	case node.Kind == KindFanIn && src.Port == Main:
		g.sink(net, net.follow(V(index, Aux1)))
		g.sink(net, net.follow(V(index, Aux2)))
		net.Remove(index)
		g.removedSink++

	default:
		panic(fmt.Sprintf("inet: sink token at unexpected port %s of %s node %d", src.Port, node.Kind, index))
	}
	g.numSink++
}

// DoGC drains both queues to a fixpoint. Each pass swaps the current queue
// out before draining it, so a propagation queued mid-drain lands in the
// next pass rather than corrupting the slice being ranged over.
func (g *EraSinkGC) DoGC(net *Net) {
	for len(g.toErase) > 0 || len(g.toSink) > 0 {
		erasing := g.toErase
		g.toErase = nil
		for _, v := range erasing {
			g.runErase(net, v)
		}
		sinking := g.toSink
		g.toSink = nil
		for _, v := range sinking {
			g.runSink(net, v)
		}
	}
}

func (g *EraSinkGC) NumCollected() uint64 { return g.removedErase + g.removedSink }

func (g *EraSinkGC) StatsString() string {
	return fmt.Sprintf(
		"GC: erasink\n"+
			"  erase ops             : %d\n"+
			"  sink ops              : %d\n"+
			"  nodes removed (erase) : %d\n"+
			"  nodes removed (sink)  : %d\n",
		g.numErase, g.numSink, g.removedErase, g.removedSink,
	)
}

// NoGC never collects: dead edges are redirected at a single reserved
// ERASE node so create_edge's invariants still hold, but nothing is ever
// reclaimed. Dead subgraphs accumulate; correctness is unaffected since no
// live port is ever touched.
type NoGC struct {
	eraseIndex uint32
}

func (g *NoGC) eraseVertex() Vertex { return V(g.eraseIndex, Aux1) }

func (g *NoGC) Init(net *Net) {
	g.eraseIndex = net.NewAbs("ERASE", false)
}

func (g *NoGC) CheckEdge(net *Net, src, tgt Vertex) bool {
	return true
}

func (g *NoGC) ToCollect(net *Net, v Vertex) {
	net.updateVertex(v, g.eraseVertex())
}

func (g *NoGC) DoGC(net *Net) {}

func (g *NoGC) NumCollected() uint64 { return 0 }

func (g *NoGC) StatsString() string { return "GC: none\n" }
