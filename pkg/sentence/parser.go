package sentence

import (
	"fmt"
	"strings"
)

// reservedChars may not appear in an atom name.
const reservedChars = "=>|+&^*!~()"

// operatorClasses lists the binary operator characters from weakest to
// strongest binding, paired with the kind each produces.
var operatorClasses = []struct {
	kind  Kind
	chars string
}{
	{Iff, "="},
	{Implies, ">"},
	{Or, "|+"},
	{And, "&^*"},
}

// notChars are the prefix negation characters.
const notChars = "!~"

// ParseError reports text that does not form a valid sentence.
type ParseError struct {
	Text    string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %q: %s", e.Text, e.Message)
}

// Parse builds a sentence from text. Parse never fails: malformed input
// yields a sentence whose IsValid reports false, so a proof line can hold
// text the user is still typing.
//
// Binary operators at the same precedence split at their last occurrence,
// so "a>b>c" reads as "(a>b)>c". Whitespace around operands is ignored.
func Parse(text string) *Sentence {
	s := stripParens(strings.TrimSpace(text))

	for _, class := range operatorClasses {
		if i := lastTopLevel(s, class.chars); i >= 0 {
			left := Parse(s[:i])
			right := Parse(s[i+1:])
			return newNode(class.kind, "", true, []*Sentence{left, right})
		}
	}

	if s != "" && strings.IndexByte(notChars, s[0]) >= 0 {
		return Parse(s[1:]).Copy(true)
	}

	return newNode(Atom, s, true, nil)
}

// ParseValid parses text and returns a ParseError when the result is not a
// valid sentence.
func ParseValid(text string) (*Sentence, error) {
	s := Parse(text)
	if !s.IsValid() {
		return s, &ParseError{Text: text, Message: invalidReason(s)}
	}
	return s, nil
}

// MustParse is like ParseValid but panics on invalid text. It is meant for
// rule tables that are fixed at compile time.
func MustParse(text string) *Sentence {
	s, err := ParseValid(text)
	if err != nil {
		panic(err)
	}
	return s
}

func invalidReason(s *Sentence) string {
	if s.kind != Atom {
		for _, c := range s.children {
			if !c.valid {
				return invalidReason(c)
			}
		}
		return "malformed operand"
	}
	switch {
	case s.name == "":
		return "missing operand"
	case strings.ContainsAny(s.name, "()"):
		return fmt.Sprintf("unbalanced parentheses near %q", s.name)
	default:
		return fmt.Sprintf("misplaced operator in %q", s.name)
	}
}

// lastTopLevel returns the index of the last character of chars that sits
// outside every parenthesis pair, or -1.
func lastTopLevel(s, chars string) int {
	depth := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch c := s[i]; {
		case c == ')':
			depth++
		case c == '(':
			depth--
		case depth == 0 && strings.IndexByte(chars, c) >= 0:
			return i
		}
	}
	return -1
}

// stripParens removes parenthesis pairs that enclose the whole of s.
func stripParens(s string) string {
	for len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' && closingParen(s) == len(s)-1 {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// closingParen returns the index of the parenthesis closing s[0], or -1.
func closingParen(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
