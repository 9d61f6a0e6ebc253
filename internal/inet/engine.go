package inet

import "fmt"

// Interact fires the one rewrite rule applicable to the redex formed by a
// destructor's main port (dIndex, kind dKind) wired to a constructor's main
// port (cIndex, kind cKind). There are exactly four rules, dispatched by the
// (destructor kind, constructor kind) pair:
//
//   Apply ⋈ Abs     beta annihilation
//   Apply ⋈ FanOut   argument/result duplicated, apply node split in two
//   FanIn ⋈ Abs      abstraction duplicated, label generated if Stem
//   FanIn ⋈ FanOut   annihilation if labels match, else crossing duplication
//
// Both nodes are always removed; Interact panics if given any other
// kind pairing, since that means the caller found a non-redex or a
// constructor/constructor or destructor/destructor pair, which is never a
// valid interaction.
func (n *Net) Interact(dIndex uint32, cIndex uint32) {
	d := n.nodes[dIndex]
	c := n.nodes[cIndex]
	if !d.Kind.IsDestructor() || !c.Kind.IsConstructor() {
		panic(fmt.Sprintf("inet: Interact(%d:%s, %d:%s): not a destructor/constructor pair", dIndex, d.Kind, cIndex, c.Kind))
	}
	switch {
	case d.Kind == KindApply && c.Kind == KindAbs:
		n.interactApplyAbs(dIndex, cIndex)
	case d.Kind == KindApply && c.Kind == KindFanOut:
		n.interactApplyFanOut(dIndex, cIndex)
	case d.Kind == KindFanIn && c.Kind == KindAbs:
		n.interactFanInAbs(dIndex, cIndex)
	case d.Kind == KindFanIn && c.Kind == KindFanOut:
		n.interactFanInFanOut(dIndex, cIndex)
	default:
		panic(fmt.Sprintf("inet: Interact(%d:%s, %d:%s): unreachable kind pair", dIndex, d.Kind, cIndex, c.Kind))
	}
}

// interactApplyAbs is beta annihilation: the result flows into the body,
// the argument flows into the bound variable's use chain. The two
// StitchOldOld calls must run in this order, not batched: when the body is
// the bound variable itself (the identity function, or any direct
// single-use binder), Abs's two aux ports are wired to each other, and the
// first stitch's write is what lets the second stitch's follow() see
// through to the real external endpoint instead of back into the node
// about to be removed.
func (n *Net) interactApplyAbs(appIndex, absIndex uint32) {
	n.StitchOldOld(V(appIndex, Aux2), V(absIndex, Aux1)) // result <-> body
	n.StitchOldOld(V(absIndex, Aux2), V(appIndex, Aux1)) // bound use <-> argument
	n.Remove(appIndex)
	n.Remove(absIndex)
	n.stats.AppAbs++
}

// interactApplyFanOut duplicates the Apply node: the FanOut's two branches
// become the main ports of two fresh Apply copies, the original result gets
// a fresh FanOut so both copies can reach it, and the original argument gets
// a fresh labeled FanIn so both copies can share it rather than duplicate
// it again.
func (n *Net) interactApplyFanOut(appIndex, fanOutIndex uint32) {
	label := n.nodes[fanOutIndex].FanLabel

	app1 := n.NewApply()
	app2 := n.NewApply()
	fiArg := n.NewFanIn(LabeledStatus(label))
	foRes := n.NewFanOut(label)

	n.StitchOldNew(V(fanOutIndex, Aux1), MainOf(app1))
	n.StitchOldNew(V(fanOutIndex, Aux2), MainOf(app2))

	n.StitchOldNew(V(appIndex, Aux1), MainOf(fiArg))
	n.StitchNewNew(V(app1, Aux1), V(fiArg, Aux1))
	n.StitchNewNew(V(app2, Aux1), V(fiArg, Aux2))

	n.StitchOldNew(V(appIndex, Aux2), MainOf(foRes))
	n.StitchNewNew(V(app1, Aux2), V(foRes, Aux1))
	n.StitchNewNew(V(app2, Aux2), V(foRes, Aux2))

	n.Remove(appIndex)
	n.Remove(fanOutIndex)
	n.stats.AppFanOut++
}

// interactFanInAbs duplicates the Abs node: the FanIn's two branches become
// the main ports of two fresh Abs copies. The body is shared out through a
// fresh labeled FanIn, not a FanOut: the body is whatever subterm comes
// next, and only a FanIn can meet that subterm's own constructor (or
// another fan) and keep the duplication propagating through the existing
// rules — a FanOut there would just sit across from another constructor
// with no rule to fire. The binder (the bound variable's use chain, itself
// always a destructor on the other end) gets the fresh FanOut, the dual of
// the same reasoning. A Stem FanIn is promoted to a fresh label here — this
// is the one place new sharing labels appear.
func (n *Net) interactFanInAbs(fanInIndex, absIndex uint32) {
	status := n.nodes[fanInIndex].Status
	label := status.Label
	if status.Stem {
		label = n.NewLabel()
	}

	name := n.nodes[absIndex].Name
	bound := n.nodes[absIndex].Bound

	abs1 := n.NewAbs(name, bound)
	abs2 := n.NewAbs(name, bound)
	fiBody := n.NewFanIn(LabeledStatus(label))
	foBind := n.NewFanOut(label)

	n.StitchOldNew(V(fanInIndex, Aux1), MainOf(abs1))
	n.StitchOldNew(V(fanInIndex, Aux2), MainOf(abs2))

	n.StitchOldNew(V(absIndex, Aux1), MainOf(fiBody))
	n.StitchNewNew(V(abs1, Aux1), V(fiBody, Aux1))
	n.StitchNewNew(V(abs2, Aux1), V(fiBody, Aux2))

	n.StitchOldNew(V(absIndex, Aux2), MainOf(foBind))
	n.StitchNewNew(V(abs1, Aux2), V(foBind, Aux1))
	n.StitchNewNew(V(abs2, Aux2), V(foBind, Aux2))

	n.Remove(fanInIndex)
	n.Remove(absIndex)
	n.stats.FanInAbs++
}

// interactFanInFanOut either annihilates (same label: this fan-in exactly
// undoes that fan-out) or crosses (different label: both are duplicated
// through each other in a full grid, since each is a distinct, unrelated
// sharing context; the FanIn copies keep the original's status, Stem
// included, and the FanOut copies its label).
func (n *Net) interactFanInFanOut(fanInIndex, fanOutIndex uint32) {
	status := n.nodes[fanInIndex].Status
	label := n.nodes[fanOutIndex].FanLabel

	if status.IsMatching(label) {
		// Same ordering requirement as interactApplyAbs: a FanIn whose two
		// branches loop back to each other (sharing a value with itself)
		// needs the first stitch's write visible to the second.
		n.StitchOldOld(V(fanInIndex, Aux1), V(fanOutIndex, Aux1))
		n.StitchOldOld(V(fanInIndex, Aux2), V(fanOutIndex, Aux2))
		n.Remove(fanInIndex)
		n.Remove(fanOutIndex)
		n.stats.FanInFanOutAnn++
		return
	}

	fo1 := n.NewFanOut(label)
	fo2 := n.NewFanOut(label)
	fi1 := n.NewFanIn(status)
	fi2 := n.NewFanIn(status)

	n.StitchOldNew(V(fanOutIndex, Aux1), MainOf(fi1))
	n.StitchOldNew(V(fanOutIndex, Aux2), MainOf(fi2))
	n.StitchOldNew(V(fanInIndex, Aux1), MainOf(fo1))
	n.StitchOldNew(V(fanInIndex, Aux2), MainOf(fo2))

	n.StitchNewNew(V(fo1, Aux1), V(fi1, Aux1))
	n.StitchNewNew(V(fo1, Aux2), V(fi2, Aux1))
	n.StitchNewNew(V(fo2, Aux1), V(fi1, Aux2))
	n.StitchNewNew(V(fo2, Aux2), V(fi2, Aux2))

	n.Remove(fanInIndex)
	n.Remove(fanOutIndex)
	n.stats.FanInFanOutCross++
}
