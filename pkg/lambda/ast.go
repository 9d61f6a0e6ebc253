package lambda

import "fmt"

// Term is an untyped lambda-calculus term: a variable reference, an
// abstraction, or an application.
type Term interface {
	String() string
}

// Var is a reference to a bound or free name.
type Var struct {
	Name string
}

func (v Var) String() string { return v.Name }

// Abs is an abstraction `name -> body`.
type Abs struct {
	Name string
	Body Term
}

func (a Abs) String() string {
	return fmt.Sprintf("(%s -> %s)", a.Name, a.Body)
}

// App is a function application `fun arg`.
type App struct {
	Fun Term
	Arg Term
}

func (a App) String() string {
	return fmt.Sprintf("(%s %s)", a.Fun, a.Arg)
}

// Sentence is one top-level statement of a source file.
type Sentence interface {
	sentence()
}

// SLet binds Name to Body at top level; every later sentence (and the
// Run term) sees Name in scope. The builder inlines lets right-to-left
// rather than carrying an environment of definitions.
type SLet struct {
	Name string
	Body Term
}

func (SLet) sentence() {}

// SRun names the term to reduce. Only the first SRun in a source file is
// honored; later ones are ignored (spec.md §9: "do not guess").
type SRun struct {
	Term Term
}

func (SRun) sentence() {}

// SRead names a file to import, with an optional namespace prefix. Parsed
// but never executed: the driver rejects it with a fatal error rather than
// inventing import semantics (spec.md §9).
type SRead struct {
	Path string
	As   string // empty means no prefix
}

func (SRead) sentence() {}
