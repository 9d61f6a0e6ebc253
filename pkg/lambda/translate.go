package lambda

import (
	"fmt"

	"github.com/eolelang/eole/internal/inet"
)

// Inline folds a source file's sentences into the single term that `run`
// names. Let definitions are folded right-to-left, so `let x = e1. run
// body.` becomes the term `(x -> body) e1` — every definition becomes an
// enclosing application, exactly as if it had been written inline. Only the
// first Run sentence is honored; later ones are silently ignored. Read
// sentences are returned separately so the driver can decide what to do with
// them (spec.md leaves Read unimplemented; this package does not guess).
func Inline(sentences []Sentence) (term Term, reads []SRead, hasRun bool) {
	var lets []SLet
	for _, s := range sentences {
		switch s := s.(type) {
		case SLet:
			lets = append(lets, s)
		case SRun:
			if !hasRun {
				term = s.Term
				hasRun = true
			}
		case SRead:
			reads = append(reads, s)
		}
	}
	if !hasRun {
		return nil, reads, false
	}
	for i := len(lets) - 1; i >= 0; i-- {
		term = App{Fun: Abs{Name: lets[i].Name, Body: term}, Arg: lets[i].Body}
	}
	return term, reads, true
}

// binding tracks one name's binder vertex and, once referenced, its current
// sole user — the same Unused/Used distinction spec.md §4.8 describes.
// binder never changes after creation; user is only meaningful once used is
// true, and changes every time a new FanIn chains onto this name.
type binding struct {
	binder inet.Vertex
	used   bool
	user   inet.Vertex
}

// Build wires term into net at ROOT.Aux1, the vertex the whole term's value
// is connected to. A name referenced
// without ever being bound — by a Let or an enclosing Abs — is treated as a
// free variable: a single-use surrogate abstraction is created for it, self
// looped at its own Main port so the no-dangling-edges invariant still holds
// for a node nothing else will ever wire into. This is a deliberate
// extension beyond the reference implementation (which treats every unbound
// name as fatal): see DESIGN.md for why the free-variable scenario in
// spec.md §8 (S1) requires it.
func Build(term Term, net *inet.Net) error {
	env := make(map[string]*binding)
	return build(term, inet.ROOTVertex, net, env)
}

func build(term Term, up inet.Vertex, net *inet.Net, env map[string]*binding) error {
	switch t := term.(type) {
	case Var:
		return buildVar(t, up, net, env)
	case Abs:
		return buildAbs(t, up, net, env)
	case App:
		return buildApp(t, up, net, env)
	default:
		return fmt.Errorf("lambda: Build: unknown term type %T", term)
	}
}

func buildVar(v Var, up inet.Vertex, net *inet.Net, env map[string]*binding) error {
	b, ok := env[v.Name]
	if !ok {
		idx := net.NewAbs(v.Name, true)
		net.CreateEdge(inet.MainOf(idx), inet.MainOf(idx))
		b = &binding{binder: inet.V(idx, inet.Aux2)}
		env[v.Name] = b
	}

	if !b.used {
		net.CreateEdge(up, b.binder)
		b.used = true
		b.user = up
		return nil
	}

	fin := net.NewFanIn(inet.StemStatus())
	net.CreateEdge(inet.MainOf(fin), b.binder)
	net.CreateEdge(up, inet.V(fin, inet.Aux1))
	net.CreateEdge(b.user, inet.V(fin, inet.Aux2))
	b.user = inet.MainOf(fin)
	return nil
}

func buildAbs(a Abs, up inet.Vertex, net *inet.Net, env map[string]*binding) error {
	absIdx := net.NewAbs(a.Name, true)

	prev, shadowed := env[a.Name]
	env[a.Name] = &binding{binder: inet.V(absIdx, inet.Aux2)}

	if err := build(a.Body, inet.V(absIdx, inet.Aux1), net, env); err != nil {
		return err
	}

	if !env[a.Name].used {
		// No reference to this binder was ever built, so its Aux2 port was
		// never wired. interactApplyAbs always follows Aux2 unconditionally,
		// so it must point somewhere live: hand it to the GC as already-dead,
		// which both wires it (to ERASE) and queues the (empty) subgraph for
		// collection.
		net.GetNode(absIdx).Bound = false
		net.GC().ToCollect(net, inet.V(absIdx, inet.Aux2))
	}
	if shadowed {
		env[a.Name] = prev
	} else {
		delete(env, a.Name)
	}

	net.CreateEdge(up, inet.MainOf(absIdx))
	return nil
}

func buildApp(a App, up inet.Vertex, net *inet.Net, env map[string]*binding) error {
	appIdx := net.NewApply()
	net.CreateEdge(up, inet.V(appIdx, inet.Aux2))
	if err := build(a.Fun, inet.MainOf(appIdx), net, env); err != nil {
		return err
	}
	return build(a.Arg, inet.V(appIdx, inet.Aux1), net, env)
}

// fanEntry is one frame of the readback FanStack: the label of a Labeled
// FanIn crossed on the way down, the port we entered it through, and whether
// a FanOut further down has already consumed (tombstoned) it.
type fanEntry struct {
	label inet.Label
	port  inet.Port
	used  bool
}

func cloneFanStack(s []fanEntry) []fanEntry {
	out := make([]fanEntry, len(s))
	copy(out, s)
	return out
}

// lookupPort finds, by reverse (most-recently-pushed-first) scan, the
// nearest not-yet-consumed entry carrying label, tombstones it in place
// (never removes it — removing would shift the positions later push/pop
// pairs rely on) and returns the port it was entered through.
func lookupPort(stack []fanEntry, label inet.Label) (inet.Port, bool) {
	for i := len(stack) - 1; i >= 0; i-- {
		if !stack[i].used && stack[i].label == label {
			stack[i].used = true
			return stack[i].port, true
		}
	}
	return inet.Main, false
}

// Readback walks net starting at ROOT.Aux1 and reconstructs a lambda term,
// inverting whatever sharing remains. maxDepth bounds the recursion as a
// debugging aid (not a correctness parameter); maxDepth<=0 means unlimited.
// Exhausting the depth returns ok=false rather than a partial term.
func Readback(net *inet.Net, maxDepth int) (term Term, ok bool) {
	return readback(net, nil, inet.ROOTVertex, maxDepth > 0, maxDepth)
}

func readback(net *inet.Net, stack []fanEntry, src inet.Vertex, limited bool, depth int) (Term, bool) {
	if limited {
		if depth == 0 {
			return nil, false
		}
		depth--
	}

	tgt := net.Follow(src)
	node := net.NodeAt(tgt.Index)

	switch node.Kind {
	case inet.KindAbs:
		switch tgt.Port {
		case inet.Main:
			body, ok := readback(net, stack, inet.V(tgt.Index, inet.Aux1), limited, depth)
			if !ok {
				return nil, false
			}
			return Abs{Name: fmt.Sprintf("%s%d", node.Name, tgt.Index), Body: body}, true
		case inet.Aux2:
			name := node.Name
			if net.NodeAt(tgt.Index).Slots[inet.Main] != inet.MainOf(tgt.Index) {
				name = fmt.Sprintf("%s%d", node.Name, tgt.Index)
			}
			return Var{Name: name}, true
		default:
			panic(fmt.Sprintf("lambda: Readback: reached Abs %d through its body", tgt.Index))
		}

	case inet.KindFanOut:
		if tgt.Port != inet.Main {
			panic(fmt.Sprintf("lambda: Readback: reached FanOut %d through an aux port", tgt.Index))
		}
		port, ok := lookupPort(stack, node.FanLabel)
		if !ok {
			return Var{Name: "∆"}, true
		}
		return readback(net, stack, inet.V(tgt.Index, port), limited, depth)

	case inet.KindApply:
		if tgt.Port != inet.Aux2 {
			panic(fmt.Sprintf("lambda: Readback: reached Apply %d not through Aux2", tgt.Index))
		}
		fun, ok := readback(net, cloneFanStack(stack), inet.MainOf(tgt.Index), limited, depth)
		if !ok {
			return nil, false
		}
		arg, ok := readback(net, stack, inet.V(tgt.Index, inet.Aux1), limited, depth)
		if !ok {
			return nil, false
		}
		return App{Fun: fun, Arg: arg}, true

	default: // FanIn
		if tgt.Port == inet.Main {
			panic(fmt.Sprintf("lambda: Readback: reached FanIn %d through its main port", tgt.Index))
		}
		if node.Status.Stem {
			return readback(net, stack, inet.MainOf(tgt.Index), limited, depth)
		}
		pushed := append(stack, fanEntry{label: node.Status.Label, port: tgt.Port})
		return readback(net, pushed, inet.MainOf(tgt.Index), limited, depth)
	}
}
