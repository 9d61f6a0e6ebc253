package inet

import "fmt"

// ReduceFull drives the net to full normal form: unlike ReduceLazy it keeps
// going under binders and through fan branches, using a history stack to
// remember the descent path so that a FanOut met partway down can be routed
// out through the FanIn that shares its label, even when that FanIn was
// crossed many steps earlier.
//
// History holds two kinds of frame, both just a Vertex (its node's real kind
// is always re-read fresh off the arena, never cached in the frame):
//   - a constructor crossed while descending (Abs entered at Main, continuing
//     into the body; FanOut entered at Main, continuing out through its
//     paired FanIn's aux port) — these are markers, consumed with no effect
//     when later popped back off the top of history;
//   - a destructor found by the descent and not yet resolved — when popped,
//     its Main port is checked: linked to a constructor's Main, it is a
//     redex; linked to an Abs's binder port, the descent is blocked and the
//     algorithm backtracks to the nearest enclosing Apply and resumes
//     searching from its argument; linked to another destructor, that
//     destructor is chased first.
//
// credit<=0 means unlimited; otherwise ReduceFull performs at most credit
// interactions before returning ErrStepCreditExhausted, leaving the net
// well-formed and resumable.
func ReduceFull(net *Net, credit int, policy CompactionPolicy) error {
	if policy == nil {
		policy = NeverCompact
	}
	var history []Vertex
	steps := 0

	for {
		if len(history) == 0 {
			found, ok := locateNextDestructor(net, &history, ROOTVertex)
			if !ok {
				return nil
			}
			history = append(history, found)
			continue
		}

		head := history[len(history)-1]
		history = history[:len(history)-1]

		index := head.Index
		node := net.nodes[index]

		if node.Kind.IsConstructor() {
			// A descent marker: nothing to do, keep unwinding.
			continue
		}

		target := net.follow(MainOf(index))
		targetNode := net.nodes[target.Index]

		switch {
		case targetNode.Kind.IsConstructor() && target.Port == Main:
			if credit > 0 && steps >= credit {
				history = append(history, head)
				return ErrStepCreditExhausted
			}
			net.Interact(index, target.Index)
			steps++
			if net.MaybeCompact(policy) {
				for i := range history {
					history[i] = net.cp.AdjustVertex(history[i])
				}
			}

		case targetNode.Kind.IsConstructor():
			if targetNode.Kind == KindFanOut {
				panic(fmt.Sprintf("inet: ReduceFull: reached FanOut %d by an aux port", target.Index))
			}
			if target.Port != Aux2 {
				panic(fmt.Sprintf("inet: ReduceFull: reached Abs %d by its body", target.Index))
			}
			history = append(history, head)
			if !backtrackToArgument(net, &history) {
				return nil
			}

		default:
			history = append(history, head, target)
		}
	}
}

// locateNextDestructor walks down from base through constructors, recording
// every Abs/FanOut crossed onto history, until it reaches a destructor (which
// it returns without pushing) or an Abs's binder port (which means the
// branch below base is already fully reduced: no destructor to find, ok=false).
func locateNextDestructor(net *Net, history *[]Vertex, base Vertex) (Vertex, bool) {
	for {
		next := net.follow(base)
		node := net.nodes[next.Index]

		switch {
		case node.Kind == KindAbs && next.Port == Main:
			*history = append(*history, next)
			base = V(next.Index, Aux1)

		case node.Kind == KindAbs && next.Port == Aux2:
			return Vertex{}, false

		case node.Kind == KindAbs:
			panic(fmt.Sprintf("inet: locateNextDestructor: reached Abs %d by its body", next.Index))

		case node.Kind == KindFanOut:
			if next.Port != Main {
				panic(fmt.Sprintf("inet: locateNextDestructor: reached FanOut %d by an aux port", next.Index))
			}
			port, ok := getMatchingFan(net, node.FanLabel, *history)
			if !ok {
				panic(fmt.Sprintf("inet: locateNextDestructor: no FanIn on the history path matches FanOut %d (label %d)", next.Index, node.FanLabel))
			}
			*history = append(*history, next)
			base = V(next.Index, port)

		default:
			return next, true
		}
	}
}

// getMatchingFan scans history from the most recently pushed entry backward,
// looking for a Labeled FanIn carrying label. Every FanOut of the same label
// seen along the way shadows one FanIn of that label (the two belong to a
// distinct, more deeply nested duplication) and must be skipped once.
func getMatchingFan(net *Net, label Label, history []Vertex) (Port, bool) {
	skip := make(map[Label]int)
	for i := len(history) - 1; i >= 0; i-- {
		v := history[i]
		node := net.nodes[v.Index]
		switch {
		case node.Kind == KindFanOut:
			skip[node.FanLabel]++

		case node.Kind == KindFanIn && !node.Status.Stem:
			l := node.Status.Label
			if n := skip[l]; n > 0 {
				skip[l] = n - 1
				continue
			}
			if l == label {
				return v.Port, true
			}
		}
	}
	return Main, false
}

// backtrackToArgument pops history looking for an Apply frame; from that
// Apply's Aux1 (its argument subterm) it tries to locate the next
// destructor. Failing, it keeps popping further out. history is shrunk to
// whatever remains once either a destructor is found (it is left on top,
// ready for the main loop) or history runs out entirely (ok=false: the whole
// net is in normal form).
func backtrackToArgument(net *Net, history *[]Vertex) bool {
	for len(*history) > 0 {
		v := (*history)[len(*history)-1]
		*history = (*history)[:len(*history)-1]

		if net.nodes[v.Index].Kind != KindApply {
			continue
		}

		mark := len(*history)
		found, ok := locateNextDestructor(net, history, V(v.Index, Aux1))
		if !ok {
			*history = (*history)[:mark]
			continue
		}
		*history = append(*history, found)
		return true
	}
	return false
}
