// Command eole parses a source file of let/run/read sentences, builds an
// interaction net for the named term, reduces it, reads the result back and
// prints it, then reports arena/interaction statistics on stderr.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/eolelang/eole/internal/inet"
	"github.com/eolelang/eole/pkg/lambda"
)

type options struct {
	strategy    string
	gc          string
	compact     string
	compactFreq int
	credit      int
	depth       int
	dotOut      string
}

func parseFlags(args []string) (options, []string) {
	fs := flag.NewFlagSet("eole", flag.ExitOnError)
	var o options
	fs.StringVar(&o.strategy, "strategy", "full", "reduction strategy: lazy or full")
	fs.StringVar(&o.gc, "gc", "erasink", "garbage collector: erasink or none")
	fs.StringVar(&o.compact, "compact", "interval", "compactor: interval, mapped, or none")
	fs.IntVar(&o.compactFreq, "compact-factor", 4, "compact when free-list size * factor exceeds arena size (0 disables)")
	fs.IntVar(&o.credit, "credit", 0, "step credit for the reducer (0 means unlimited)")
	fs.IntVar(&o.depth, "depth", 0, "max readback depth (0 means unlimited)")
	fs.StringVar(&o.dotOut, "dot", "", "if set, write a GraphViz dump of the final net to this path")
	fs.Parse(args)
	return o, fs.Args()
}

func main() {
	o, rest := parseFlags(os.Args[1:])

	var input []byte
	var err error
	if len(rest) > 0 {
		input, err = os.ReadFile(rest[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "eole: reading %s: %v\n", rest[0], err)
			os.Exit(1)
		}
	} else {
		input, err = io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "eole: reading stdin: %v\n", err)
			os.Exit(1)
		}
	}

	if err := run(o, string(input)); err != nil {
		fmt.Fprintf(os.Stderr, "eole: %v\n", err)
		os.Exit(1)
	}
}

func run(o options, source string) error {
	sentences, err := lambda.ParseSource(source)
	if err != nil {
		return err
	}

	term, reads, hasRun := lambda.Inline(sentences)
	if len(reads) > 0 {
		return fmt.Errorf("read is not implemented")
	}
	if !hasRun {
		return fmt.Errorf("no run sentence in source")
	}

	gc, err := newGC(o.gc)
	if err != nil {
		return err
	}
	cp, err := newCompactor(o.compact)
	if err != nil {
		return err
	}

	net := inet.NewNet(gc, cp)
	if err := lambda.Build(term, net); err != nil {
		return fmt.Errorf("building net: %w", err)
	}

	policy := inet.NeverCompact
	if cp != nil && o.compactFreq > 0 {
		policy = inet.FactorCompactionPolicy(o.compactFreq)
	}

	start := time.Now()
	switch o.strategy {
	case "lazy":
		_, err = inet.ReduceLazy(net, o.credit, policy)
	case "full":
		err = inet.ReduceFull(net, o.credit, policy)
	default:
		return fmt.Errorf("unknown strategy %q (want lazy or full)", o.strategy)
	}
	elapsed := time.Since(start)
	if err != nil && err != inet.ErrStepCreditExhausted {
		return fmt.Errorf("reducing: %w", err)
	}

	if o.dotOut != "" {
		f, ferr := os.Create(o.dotOut)
		if ferr != nil {
			return fmt.Errorf("writing dot dump: %w", ferr)
		}
		defer f.Close()
		if derr := net.WriteDot(f, 0, "final"); derr != nil {
			return fmt.Errorf("writing dot dump: %w", derr)
		}
	}

	result, ok := lambda.Readback(net, o.depth)
	if !ok {
		fmt.Fprintln(os.Stderr, "eole: readback depth exceeded, result truncated")
	} else {
		fmt.Println(result)
	}

	if err == inet.ErrStepCreditExhausted {
		fmt.Fprintln(os.Stderr, "eole: step credit exhausted before reaching normal form")
	}

	fmt.Fprintf(os.Stderr, "\nTime: %v\n", elapsed)
	fmt.Fprint(os.Stderr, net.PrintStats())
	return nil
}

func newGC(name string) (inet.GC, error) {
	switch name {
	case "erasink":
		return &inet.EraSinkGC{}, nil
	case "none":
		return &inet.NoGC{}, nil
	default:
		return nil, fmt.Errorf("unknown gc %q (want erasink or none)", name)
	}
}

func newCompactor(name string) (inet.Compactor, error) {
	switch name {
	case "interval":
		return &inet.Interval{}, nil
	case "mapped":
		return &inet.Mapped{}, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown compactor %q (want interval, mapped, or none)", name)
	}
}
