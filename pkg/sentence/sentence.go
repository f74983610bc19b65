// Package sentence parses and compares propositional logic sentences.
//
// A sentence is a tree of connectives over named atoms. Negation is not a
// node of its own: every node carries an affirmed flag, so "!(a&b)" is an
// And node whose affirmed flag is false.
package sentence

import "strings"

// =============================================================================
// Kind
// =============================================================================

// Kind identifies the connective at the root of a sentence.
type Kind int

// Sentence kinds. Binary kinds are ordered from weakest to strongest binding.
const (
	// Atom is a named proposition with no children.
	Atom Kind = iota
	// Iff is the biconditional, written '='.
	Iff
	// Implies is the conditional, written '>'.
	Implies
	// Or is disjunction, written '|' or '+'.
	Or
	// And is conjunction, written '&', '^' or '*'.
	And
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Atom:
		return "atom"
	case Iff:
		return "iff"
	case Implies:
		return "implies"
	case Or:
		return "or"
	case And:
		return "and"
	default:
		return "unknown"
	}
}

// Symbol returns the canonical operator character for a binary kind.
// Atom has no symbol and returns 0.
func (k Kind) Symbol() byte {
	switch k {
	case Iff:
		return '='
	case Implies:
		return '>'
	case Or:
		return '|'
	case And:
		return '&'
	default:
		return 0
	}
}

// =============================================================================
// Sentence
// =============================================================================

// Sentence is an immutable node of a parsed propositional formula.
//
// Atoms carry a name and no children; every other kind has exactly two
// children. A sentence is built once by Parse (or Copy) and never mutated
// afterwards, so it can be shared between goroutines.
type Sentence struct {
	kind     Kind
	name     string
	affirmed bool
	children []*Sentence
	valid    bool
}

// Kind returns the connective at the root.
func (s *Sentence) Kind() Kind { return s.kind }

// Name returns the atom name. It is empty for non-atoms.
func (s *Sentence) Name() string { return s.name }

// Affirmed reports whether the root is un-negated.
func (s *Sentence) Affirmed() bool { return s.affirmed }

// Children returns the operands of a binary sentence, left first.
// The returned slice must not be modified.
func (s *Sentence) Children() []*Sentence { return s.children }

// Left returns the left operand, or nil for an atom.
func (s *Sentence) Left() *Sentence {
	if len(s.children) == 0 {
		return nil
	}
	return s.children[0]
}

// Right returns the right operand, or nil for an atom.
func (s *Sentence) Right() *Sentence {
	if len(s.children) < 2 {
		return nil
	}
	return s.children[1]
}

// IsValid reports whether the sentence is well formed: atoms need a
// non-empty name free of operator and parenthesis characters, and every
// binary node needs two valid children. The result is computed at
// construction.
func (s *Sentence) IsValid() bool { return s.valid }

// Variable returns the pattern-variable key used when the sentence is a
// rule form: the first byte of the atom name. It returns 0 for non-atoms
// and unnamed atoms.
func (s *Sentence) Variable() byte {
	if s.kind != Atom || s.name == "" {
		return 0
	}
	return s.name[0]
}

// String renders the sentence fully parenthesized, for example "(a&!(b|c))".
// Negated nodes are prefixed with '!'.
func (s *Sentence) String() string {
	var b strings.Builder
	s.write(&b)
	return b.String()
}

func (s *Sentence) write(b *strings.Builder) {
	if !s.affirmed {
		b.WriteByte('!')
	}
	if s.kind == Atom {
		b.WriteString(s.name)
		return
	}
	b.WriteByte('(')
	s.children[0].write(b)
	b.WriteByte(s.kind.Symbol())
	s.children[1].write(b)
	b.WriteByte(')')
}

// Equals reports structural equality: same kind, same polarity at every
// node, equal atom names and pairwise-equal children in order.
func (s *Sentence) Equals(other *Sentence) bool {
	return EqualsAt(s, false, other, false)
}

// EqualsAt compares a and b as Equals does, except that the root polarity
// of a is inverted when negA is set and the root polarity of b is inverted
// when negB is set. Polarity below the roots is compared as stored.
func EqualsAt(a *Sentence, negA bool, b *Sentence, negB bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind || (a.affirmed != negA) != (b.affirmed != negB) {
		return false
	}
	if a.kind == Atom {
		return a.name == b.name
	}
	if len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if !a.children[i].Equals(b.children[i]) {
			return false
		}
	}
	return true
}

// Copy returns a sentence sharing the children of s whose root polarity is
// inverted when flip is set. Children are immutable so sharing is safe.
func (s *Sentence) Copy(flip bool) *Sentence {
	if !flip {
		return s
	}
	c := *s
	c.affirmed = !s.affirmed
	return &c
}

// Negate returns s with the root polarity inverted.
func (s *Sentence) Negate() *Sentence { return s.Copy(true) }

// NewAtom builds an affirmed atom.
func NewAtom(name string) *Sentence {
	return newNode(Atom, name, true, nil)
}

// NewBinary builds an affirmed binary sentence. Passing Atom as kind yields
// an invalid sentence.
func NewBinary(kind Kind, left, right *Sentence) *Sentence {
	if kind == Atom {
		return &Sentence{kind: Atom, affirmed: true}
	}
	return newNode(kind, "", true, []*Sentence{left, right})
}

func newNode(kind Kind, name string, affirmed bool, children []*Sentence) *Sentence {
	s := &Sentence{kind: kind, name: name, affirmed: affirmed, children: children}
	s.valid = s.computeValid()
	return s
}

func (s *Sentence) computeValid() bool {
	if s.kind == Atom {
		return s.name != "" && !strings.ContainsAny(s.name, reservedChars)
	}
	if len(s.children) != 2 || s.children[0] == nil || s.children[1] == nil {
		return false
	}
	return s.children[0].valid && s.children[1].valid
}
