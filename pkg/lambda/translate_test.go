package lambda

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eolelang/eole/internal/inet"
)

func newTestNet() *inet.Net {
	return inet.NewNet(&inet.EraSinkGC{}, nil)
}

func TestBuildReadbackRoundTripIdentity(t *testing.T) {
	net := newTestNet()
	term := Abs{Name: "x", Body: Var{Name: "x"}}

	require.NoError(t, Build(term, net))

	result, ok := Readback(net, 0)
	require.True(t, ok)

	abs, ok := result.(Abs)
	require.True(t, ok)
	body, ok := abs.Body.(Var)
	require.True(t, ok)
	require.Equal(t, abs.Name, body.Name, "bound variable must read back to the same name as its binder")
}

func TestReadbackFreeVariableHasNoSuffix(t *testing.T) {
	net := newTestNet()
	require.NoError(t, Build(Var{Name: "a"}, net))

	result, ok := Readback(net, 0)
	require.True(t, ok)

	v, ok := result.(Var)
	require.True(t, ok)
	require.Equal(t, "a", v.Name, "a free variable must read back with its literal name, unsuffixed")
}

func TestFullReductionOfIdentityAppliedToFreeVariable(t *testing.T) {
	net := newTestNet()
	term := App{Fun: Abs{Name: "x", Body: Var{Name: "x"}}, Arg: Var{Name: "a"}}
	require.NoError(t, Build(term, net))

	err := inet.ReduceFull(net, 0, inet.NeverCompact)
	require.NoError(t, err)

	result, ok := Readback(net, 0)
	require.True(t, ok)
	v, ok := result.(Var)
	require.True(t, ok)
	require.Equal(t, "a", v.Name)
}

func TestFullReductionOfConstFunction(t *testing.T) {
	// (x -> y -> x) a b  ~>  a
	net := newTestNet()
	konst := Abs{Name: "x", Body: Abs{Name: "y", Body: Var{Name: "x"}}}
	term := App{Fun: App{Fun: konst, Arg: Var{Name: "a"}}, Arg: Var{Name: "b"}}
	require.NoError(t, Build(term, net))

	require.NoError(t, inet.ReduceFull(net, 0, inet.NeverCompact))

	result, ok := Readback(net, 0)
	require.True(t, ok)
	v, ok := result.(Var)
	require.True(t, ok)
	require.Equal(t, "a", v.Name)
}

func TestFullReductionOfSelfApplicationOfIdentity(t *testing.T) {
	// (x -> x x) (y -> y): x is used twice, so its bound variable goes
	// through a FanIn, and the duplicated identity meets the resulting
	// FanOut through an Apply/FanOut interaction before annihilating back
	// down to a single identity.
	net := newTestNet()
	selfApply := Abs{Name: "x", Body: App{Fun: Var{Name: "x"}, Arg: Var{Name: "x"}}}
	identity := Abs{Name: "y", Body: Var{Name: "y"}}
	term := App{Fun: selfApply, Arg: identity}
	require.NoError(t, Build(term, net))

	require.NoError(t, inet.ReduceFull(net, 0, inet.NeverCompact))

	result, ok := Readback(net, 0)
	require.True(t, ok)

	abs, ok := result.(Abs)
	require.True(t, ok, "expected the result to be an abstraction, got %T", result)
	body, ok := abs.Body.(Var)
	require.True(t, ok, "expected the result's body to be a bare variable, got %T", abs.Body)
	require.Equal(t, abs.Name, body.Name, "expected the result to be the identity function")
}

func TestFullReductionOfChurchTwoAppliedToFreeFunctionAndArgument(t *testing.T) {
	// two = f -> x -> f (f x); "two f z" shares f between both applications,
	// exercising FanIn insertion at the variable site, FanIn/Abs duplication
	// of the f-binder, and Apply/FanOut duplication of the shared argument.
	net := newTestNet()
	two := Abs{
		Name: "f",
		Body: Abs{
			Name: "x",
			Body: App{
				Fun: Var{Name: "f"},
				Arg: App{Fun: Var{Name: "f"}, Arg: Var{Name: "x"}},
			},
		},
	}
	term := App{Fun: App{Fun: two, Arg: Var{Name: "f"}}, Arg: Var{Name: "z"}}
	require.NoError(t, Build(term, net))

	require.NoError(t, inet.ReduceFull(net, 0, inet.NeverCompact))

	result, ok := Readback(net, 0)
	require.True(t, ok)

	outer, ok := result.(App)
	require.True(t, ok, "expected f (f z), got %T", result)
	outerFun, ok := outer.Fun.(Var)
	require.True(t, ok)
	require.Equal(t, "f", outerFun.Name)

	inner, ok := outer.Arg.(App)
	require.True(t, ok, "expected the argument to be another application, got %T", outer.Arg)
	innerFun, ok := inner.Fun.(Var)
	require.True(t, ok)
	require.Equal(t, "f", innerFun.Name)
	innerArg, ok := inner.Arg.(Var)
	require.True(t, ok)
	require.Equal(t, "z", innerArg.Name)
}

func TestLazyReductionLeavesAbstractionAtWHNF(t *testing.T) {
	net := newTestNet()
	require.NoError(t, Build(Abs{Name: "x", Body: Var{Name: "x"}}, net))

	_, err := inet.ReduceLazy(net, 0, inet.NeverCompact)
	require.NoError(t, err)

	result, ok := Readback(net, 0)
	require.True(t, ok)
	_, ok = result.(Abs)
	require.True(t, ok)
}

func TestInlineFoldsLetsRightToLeft(t *testing.T) {
	sentences, err := ParseSource(`
		let id = x -> x.
		run id a.
	`)
	require.NoError(t, err)

	term, reads, hasRun := Inline(sentences)
	require.True(t, hasRun)
	require.Empty(t, reads)
	require.Equal(t, "((id -> (id a)) (x -> x))", term.String())
}

func TestInlineWithoutRunReportsFalse(t *testing.T) {
	sentences, err := ParseSource(`let id = x -> x.`)
	require.NoError(t, err)

	_, _, hasRun := Inline(sentences)
	require.False(t, hasRun)
}
