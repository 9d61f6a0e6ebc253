package inet

// Kind tags which of the four node kinds a Node carries. Abs and FanOut are
// constructors (interact at their main port when met by a destructor's main
// port); Apply and FanIn are destructors.
type Kind uint8

const (
	KindAbs Kind = iota
	KindFanOut
	KindApply
	KindFanIn
)

func (k Kind) String() string {
	switch k {
	case KindAbs:
		return "Abs"
	case KindFanOut:
		return "FanOut"
	case KindApply:
		return "Apply"
	case KindFanIn:
		return "FanIn"
	default:
		return "Kind(?)"
	}
}

// IsConstructor reports whether k is Abs or FanOut.
func (k Kind) IsConstructor() bool {
	return k == KindAbs || k == KindFanOut
}

// IsDestructor reports whether k is Apply or FanIn.
func (k Kind) IsDestructor() bool {
	return k == KindApply || k == KindFanIn
}

// Label identifies a FanOut/FanIn pairing generated by one abstraction
// duplication. Labels are allocated monotonically and never reused.
type Label uint64

// FanStatus is the status carried by a FanIn node. A Stem FanIn has not yet
// been assigned a label (it was produced by translation of a reused
// variable, or is a crossing copy of such a FanIn); a Labeled FanIn matches
// exactly the FanOut carrying the same
// label.
type FanStatus struct {
	Stem  bool
	Label Label
}

// StemStatus returns the Stem status.
func StemStatus() FanStatus { return FanStatus{Stem: true} }

// LabeledStatus returns the Labeled(label) status.
func LabeledStatus(label Label) FanStatus { return FanStatus{Label: label} }

// IsMatching reports whether this FanIn status matches a FanOut of the given
// label: only true for a Labeled status carrying the same label. A Stem
// status never matches anything.
func (s FanStatus) IsMatching(label Label) bool {
	return !s.Stem && s.Label == label
}

func (s FanStatus) String() string {
	if s.Stem {
		return "Stem"
	}
	return "Labeled"
}

// Node is one 3-port cell in the arena. Kind tags which fields are
// meaningful: Name/Bound for Abs, FanLabel for FanOut, Status for FanIn;
// Apply uses none of them. Slots holds the three edges out of this node's
// Main/Aux1/Aux2 ports.
type Node struct {
	Kind     Kind
	Name     string
	Bound    bool
	FanLabel Label
	Status   FanStatus
	Slots    [3]Vertex
}

func newAbsNode(name string, bound bool) Node {
	return Node{Kind: KindAbs, Name: name, Bound: bound}
}

func newFanOutNode(label Label) Node {
	return Node{Kind: KindFanOut, FanLabel: label}
}

func newApplyNode() Node {
	return Node{Kind: KindApply}
}

func newFanInNode(status FanStatus) Node {
	return Node{Kind: KindFanIn, Status: status}
}

// free reports whether this arena slot is unused (all three edges zero).
// Remove sets every slot back to NULL, which is otherwise never a valid
// slot value since every live node has all three ports wired.
func (n Node) free() bool {
	return n.Slots[Main] == NULL && n.Slots[Aux1] == NULL && n.Slots[Aux2] == NULL
}
