package inet

import "testing"

func newTestNet() *Net {
	return NewNet(&EraSinkGC{}, nil)
}

// wireClosedIdentity builds `x -> x` as a standalone Abs whose Main port is
// left dangling for the caller to wire into a redex.
func wireClosedIdentity(n *Net) uint32 {
	idx := n.NewAbs("x", true)
	n.CreateEdge(V(idx, Aux1), V(idx, Aux2))
	return idx
}

func TestInteractApplyAbsBetaReducesIdentity(t *testing.T) {
	n := newTestNet()
	absIdx := wireClosedIdentity(n)

	appIdx := n.NewApply()
	argIdx := n.NewAbs("arg", true)
	n.CreateEdge(V(argIdx, Aux1), V(argIdx, Aux2)) // closed value standing in for the argument

	n.CreateEdge(MainOf(appIdx), MainOf(absIdx))
	outIdx := n.NewAbs("out", false)
	n.CreateEdge(V(appIdx, Aux2), MainOf(outIdx)) // continuation
	n.CreateEdge(V(appIdx, Aux1), MainOf(argIdx)) // argument

	n.Interact(appIdx, absIdx)

	if n.Stats().AppAbs != 1 {
		t.Fatalf("expected one AppAbs interaction, got %d", n.Stats().AppAbs)
	}
	result := n.follow(MainOf(outIdx))
	if result != MainOf(argIdx) {
		t.Fatalf("expected identity applied to arg to reduce to arg's main port, got %s", result)
	}
}

func TestInteractApplyFanOutDuplicatesApplyNode(t *testing.T) {
	n := newTestNet()
	label := n.NewLabel()

	foIdx := n.NewFanOut(label)
	left := n.NewAbs("l", false)
	right := n.NewAbs("r", false)
	n.CreateEdge(V(foIdx, Aux1), MainOf(left))
	n.CreateEdge(V(foIdx, Aux2), MainOf(right))

	appIdx := n.NewApply()
	n.CreateEdge(MainOf(appIdx), MainOf(foIdx))
	argDst := n.NewAbs("arg", false)
	contDst := n.NewAbs("cont", false)
	n.CreateEdge(V(appIdx, Aux1), MainOf(argDst))  // argument
	n.CreateEdge(V(appIdx, Aux2), MainOf(contDst)) // continuation

	n.Interact(appIdx, foIdx)

	if n.Stats().AppFanOut != 1 {
		t.Fatalf("expected one Apply-FanOut interaction, got %d", n.Stats().AppFanOut)
	}

	leftTarget := n.follow(MainOf(left))
	rightTarget := n.follow(MainOf(right))
	if leftTarget.Port != Main || n.NodeAt(leftTarget.Index).Kind != KindApply {
		t.Fatalf("expected left branch to reach a fresh Apply's main port, got %s", leftTarget)
	}
	if rightTarget.Port != Main || n.NodeAt(rightTarget.Index).Kind != KindApply {
		t.Fatalf("expected right branch to reach a fresh Apply's main port, got %s", rightTarget)
	}
	app1, app2 := leftTarget.Index, rightTarget.Index
	if app1 == app2 {
		t.Fatalf("expected two distinct Apply copies, got the same node twice")
	}

	// The argument must be shared through a labeled FanIn, not duplicated
	// through another FanOut (a FanOut there could never annihilate with
	// anything, since nothing would ever offer it a matching FanIn).
	arg1 := n.follow(V(app1, Aux1))
	arg2 := n.follow(V(app2, Aux1))
	if arg1.Index != arg2.Index {
		t.Fatalf("expected both Apply copies' argument ports to share one node, got %s and %s", arg1, arg2)
	}
	fiNode := n.NodeAt(arg1.Index)
	if fiNode.Kind != KindFanIn {
		t.Fatalf("expected the argument side to be a FanIn, got %s", fiNode.Kind)
	}
	if fiNode.Status.Stem || fiNode.Status.Label != label {
		t.Fatalf("expected the argument FanIn labeled %d, got stem=%v label=%d", label, fiNode.Status.Stem, fiNode.Status.Label)
	}
	if n.follow(MainOf(arg1.Index)) != MainOf(argDst) {
		t.Fatalf("expected the argument FanIn's main port to reach the original argument")
	}

	// The result/continuation is shared through a fresh FanOut of the same label.
	res1 := n.follow(V(app1, Aux2))
	res2 := n.follow(V(app2, Aux2))
	if res1.Index != res2.Index {
		t.Fatalf("expected both Apply copies' continuation ports to share one node, got %s and %s", res1, res2)
	}
	foNode := n.NodeAt(res1.Index)
	if foNode.Kind != KindFanOut || foNode.FanLabel != label {
		t.Fatalf("expected the continuation side to be a FanOut labeled %d, got %s label=%d", label, foNode.Kind, foNode.FanLabel)
	}
	if n.follow(MainOf(res1.Index)) != MainOf(contDst) {
		t.Fatalf("expected the continuation FanOut's main port to reach the original continuation")
	}
}

func TestInteractFanInFanOutAnnihilatesOnMatchingLabel(t *testing.T) {
	n := newTestNet()
	label := n.NewLabel()

	foIdx := n.NewFanOut(label)
	fiIdx := n.NewFanIn(LabeledStatus(label))
	n.CreateEdge(MainOf(foIdx), MainOf(fiIdx))

	left := n.NewAbs("l", false)
	right := n.NewAbs("r", false)
	n.CreateEdge(V(foIdx, Aux1), MainOf(left))
	n.CreateEdge(V(foIdx, Aux2), MainOf(right))

	a := n.NewAbs("a", false)
	b := n.NewAbs("b", false)
	n.CreateEdge(V(fiIdx, Aux1), MainOf(a))
	n.CreateEdge(V(fiIdx, Aux2), MainOf(b))

	n.Interact(fiIdx, foIdx)

	if n.Stats().FanInFanOutAnn != 1 {
		t.Fatalf("expected one FanIn-FanOut annihilation, got %d", n.Stats().FanInFanOutAnn)
	}
	if n.follow(MainOf(left)) != MainOf(a) {
		t.Fatalf("expected left branch stitched to a")
	}
	if n.follow(MainOf(right)) != MainOf(b) {
		t.Fatalf("expected right branch stitched to b")
	}
}

func TestInteractFanInFanOutCrossesOnMismatchedLabel(t *testing.T) {
	n := newTestNet()
	foLabel := n.NewLabel()
	fiLabel := n.NewLabel()

	foIdx := n.NewFanOut(foLabel)
	fiIdx := n.NewFanIn(LabeledStatus(fiLabel))
	n.CreateEdge(MainOf(foIdx), MainOf(fiIdx))

	for _, p := range [2]Port{Aux1, Aux2} {
		dst := n.NewAbs("d", false)
		n.CreateEdge(V(foIdx, p), MainOf(dst))
	}
	for _, p := range [2]Port{Aux1, Aux2} {
		dst := n.NewAbs("d", false)
		n.CreateEdge(V(fiIdx, p), MainOf(dst))
	}

	n.Interact(fiIdx, foIdx)

	if n.Stats().FanInFanOutCross != 1 {
		t.Fatalf("expected one FanIn-FanOut crossing, got %d", n.Stats().FanInFanOutCross)
	}
	// Four fresh nodes (2 FanOut + 2 FanIn) replace the original pair, so the
	// live nodes are the specials, the four Abs endpoints and the four copies.
	if live := n.NumNodes() - n.FreeCount(); live != n.NumSpecial()+4+4 {
		t.Fatalf("unexpected live node count after crossing: %d", live)
	}
}

func TestEraSinkGCReclaimsErasedIdentity(t *testing.T) {
	n := newTestNet()
	absIdx := wireClosedIdentity(n)

	before := n.FreeCount()
	n.GC().ToCollect(n, MainOf(absIdx))
	n.GC().DoGC(n)

	if n.FreeCount() <= before {
		t.Fatalf("expected erasure to free the identity's node, free count still %d", n.FreeCount())
	}
}

func TestReduceFullNormalizesConstApplication(t *testing.T) {
	n := newTestNet()

	// const = x -> y -> x. y is never used, so its binder is handed to the
	// GC as already dead (mirrors pkg/lambda's Build for an unused binder).
	absY := n.NewAbs("y", false)
	absX := n.NewAbs("x", true)
	n.CreateEdge(V(absX, Aux1), MainOf(absY))
	n.CreateEdge(V(absY, Aux1), V(absX, Aux2))
	n.GC().ToCollect(n, V(absY, Aux2))

	// ((const a) b): Apply.Main=function, Aux1=argument, Aux2=continuation.
	appOuter := n.NewApply()
	appInner := n.NewApply()
	n.CreateEdge(ROOTVertex, V(appOuter, Aux2))
	n.CreateEdge(MainOf(appOuter), V(appInner, Aux2))
	n.CreateEdge(MainOf(appInner), MainOf(absX))

	valA := wireClosedIdentity(n)
	valB := wireClosedIdentity(n)

	n.CreateEdge(V(appInner, Aux1), MainOf(valA))
	n.CreateEdge(V(appOuter, Aux1), MainOf(valB))

	if err := ReduceFull(n, 0, NeverCompact); err != nil {
		t.Fatalf("ReduceFull: %v", err)
	}

	result := n.follow(ROOTVertex)
	if result != MainOf(valA) {
		t.Fatalf("expected const applied to a and b to settle on a's main port, got %s", result)
	}
}
