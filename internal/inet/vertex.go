// Package inet implements the interaction-net core: an arena of 3-port
// nodes, the four rewrite rules between them, garbage collection, arena
// compaction, and the lazy/full reduction drivers.
package inet

import "fmt"

// Port identifies one of the three slots on a node.
type Port uint8

const (
	Main Port = iota
	Aux1
	Aux2
)

func (p Port) String() string {
	switch p {
	case Main:
		return "main"
	case Aux1:
		return "aux1"
	case Aux2:
		return "aux2"
	default:
		return fmt.Sprintf("port(%d)", uint8(p))
	}
}

// Vertex names one of the three slots on one node: (index, port).
type Vertex struct {
	Index uint32
	Port  Port
}

// NULL is the reserved "no edge" vertex: the main port of the ROOT node.
// Index 0's main port is otherwise unused, so the aliasing is intentional.
var NULL = Vertex{Index: 0, Port: Main}

// V builds a vertex from an index and a port.
func V(index uint32, port Port) Vertex {
	return Vertex{Index: index, Port: port}
}

// MainOf is shorthand for V(index, Main).
func MainOf(index uint32) Vertex {
	return Vertex{Index: index, Port: Main}
}

func (v Vertex) String() string {
	return fmt.Sprintf("(%d,%s)", v.Index, v.Port)
}
