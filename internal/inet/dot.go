package inet

import (
	"fmt"
	"io"
)

// WriteDot emits a GraphViz dump of net's current live nodes and edges to w,
// labelled with step and an optional caption. Non-contractual: the exact
// shape of the output is a debugging aid, not part of any API guarantee.
// Freed slots are skipped and no labels are allocated while walking.
func (n *Net) WriteDot(w io.Writer, step int, caption string) error {
	bw := &dotWriter{w: w}

	bw.printf("digraph graph%d {\n", step)
	bw.printf("    newrank = true;\n")
	bw.printf("    ranksep = \"1 equally\";\n")
	bw.printf("    label=%q;\n", fmt.Sprintf("Step %d: %s", step, caption))
	bw.printf("    labelloc=top;\n    labeljust=left;\n")
	bw.printf("    graph [resolution=256, fontsize=12, nodesep=0.75];\n")
	bw.printf("    edge [dir=normal, fontsize=18, labeldistance=2, labelfloat=true, penwidth=1.5];\n")
	bw.printf("    node [peripheries=1, nodesep=10.5, margin=0];\n\n")

	bw.printf("    // nodes\n")
	for idx, node := range n.nodes {
		if idx >= n.numSpecial && node.free() {
			continue
		}
		bw.printf("    %s [color=%q, shape=%s, label=%q];\n",
			dotNodeName(uint32(idx), node.Kind),
			dotColor(n.numSpecial, idx, node.Kind),
			dotShape(node.Kind),
			dotLabel(uint32(idx), node),
		)
	}

	bw.printf("\n    // edges\n")
	for idx, node := range n.nodes {
		if idx >= n.numSpecial && node.free() {
			continue
		}
		for _, port := range [3]Port{Main, Aux1, Aux2} {
			tgt := node.Slots[port]
			if tgt == NULL {
				continue
			}
			src := V(uint32(idx), port)
			// Each undirected edge is stored twice (once per half); emit it
			// once, when the higher index is the writer (between two ports
			// of one node, the higher port; a port wired to itself has a
			// single half and is always emitted).
			if uint32(idx) < tgt.Index || (uint32(idx) == tgt.Index && port < tgt.Port) {
				continue
			}
			bw.writeEdge(n, src, tgt)
		}
	}

	bw.printf("\n}\n")
	return bw.err
}

type dotWriter struct {
	w   io.Writer
	err error
}

func (d *dotWriter) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format, args...)
}

func (d *dotWriter) writeEdge(n *Net, src, tgt Vertex) {
	srcNode := n.nodes[src.Index]
	tgtNode := n.nodes[tgt.Index]
	color := dotColor(n.numSpecial, int(src.Index), srcNode.Kind)
	penwidth := "1.5"
	if src.Port == Main && tgt.Port == Main {
		color = "red"
		penwidth = "4"
	}
	attrs := fmt.Sprintf("color=%q, penwidth=%s, taillabel=%s, headlabel=%s",
		color, penwidth, dotEndLabel(src.Port, color), dotEndLabel(tgt.Port, color))

	if src.Index == tgt.Index {
		d.printf("    %s:s -> %s:s [%s];\n",
			dotNodeName(src.Index, srcNode.Kind), dotNodeName(tgt.Index, tgtNode.Kind), attrs)
		return
	}
	d.printf("    %s%s -> %s%s [%s];\n",
		dotNodeName(src.Index, srcNode.Kind), dotCompass(srcNode.Kind, src.Port),
		dotNodeName(tgt.Index, tgtNode.Kind), dotCompass(tgtNode.Kind, tgt.Port),
		attrs)
}

func dotNodeName(index uint32, k Kind) string {
	switch k {
	case KindAbs:
		return fmt.Sprintf("abs%d", index)
	case KindFanOut:
		return fmt.Sprintf("fout%d", index)
	case KindApply:
		return fmt.Sprintf("app%d", index)
	default:
		return fmt.Sprintf("fin%d", index)
	}
}

func dotShape(k Kind) string {
	switch k {
	case KindAbs:
		return "egg"
	case KindFanOut, KindFanIn:
		return "septagon"
	default:
		return "ellipse"
	}
}

func dotLabel(index uint32, n Node) string {
	switch n.Kind {
	case KindAbs:
		mark := ""
		if !n.Bound {
			mark = "● "
		}
		return fmt.Sprintf("%d λ%s%s", index, mark, n.Name)
	case KindFanOut:
		return fmt.Sprintf("%d ▲ %d", index, n.FanLabel)
	case KindApply:
		return fmt.Sprintf("%d @", index)
	default:
		if n.Status.Stem {
			return fmt.Sprintf("%d ▼ stem", index)
		}
		return fmt.Sprintf("%d ▼ %d", index, n.Status.Label)
	}
}

var palette = [2][6]string{
	{"aquamarine", "cadetblue1", "cyan3", "cornflowerblue", "dodgerblue2", "deepskyblue1"},
	{"deeppink", "hotpink1", "indianred1", "lightsalmon2", "orange2", "tan"},
}

func dotColor(numSpecial, index int, k Kind) string {
	if index < numSpecial {
		return "gray27"
	}
	row := 0
	if k.IsDestructor() {
		row = 1
	}
	return palette[row][index%6]
}

// dotCompass picks a compass anchor per port so multi-edge nodes fan out
// legibly instead of stacking all edges on one side.
func dotCompass(k Kind, p Port) string {
	switch k {
	case KindAbs:
		switch p {
		case Main:
			return ":n"
		case Aux1:
			return ":e"
		default:
			return ":w"
		}
	case KindFanOut:
		switch p {
		case Main:
			return ":n"
		case Aux1:
			return ":se"
		default:
			return ":sw"
		}
	case KindApply:
		switch p {
		case Main:
			return ":sw"
		case Aux1:
			return ":n"
		default:
			return ":se"
		}
	default: // FanIn
		switch p {
		case Main:
			return ":s"
		case Aux1:
			return ":nw"
		default:
			return ":ne"
		}
	}
}

func dotEndLabel(p Port, color string) string {
	s := "A2"
	switch p {
	case Main:
		s = "M"
	case Aux1:
		s = "A1"
	}
	return fmt.Sprintf("<<font color=%q><b>%s</b></font>>", color, s)
}
