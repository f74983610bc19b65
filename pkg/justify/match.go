package justify

import "github.com/leapstack-labs/leapproof/pkg/sentence"

// view is a sentence whose root polarity is inverted when neg is set. It
// lets forms and bindings flip a root without copying the tree.
type view struct {
	s   *sentence.Sentence
	neg bool
}

func viewOf(s *sentence.Sentence) view { return view{s: s} }

func (v view) affirmed() bool { return v.s.Affirmed() != v.neg }

// bindings maps pattern variables to the subtrees they matched. Every bind
// is logged so a failed branch can be rolled back to a mark.
type bindings struct {
	vals map[byte]view
	log  []byte
}

func newBindings() *bindings {
	return &bindings{vals: make(map[byte]view)}
}

func (b *bindings) lookup(key byte) (view, bool) {
	v, ok := b.vals[key]
	return v, ok
}

func (b *bindings) bind(key byte, v view) {
	b.vals[key] = v
	b.log = append(b.log, key)
}

func (b *bindings) mark() int { return len(b.log) }

func (b *bindings) undo(mark int) {
	for len(b.log) > mark {
		last := len(b.log) - 1
		delete(b.vals, b.log[last])
		b.log = b.log[:last]
	}
}

// sameFunc decides whether a variable already bound to prev may also stand
// for next.
type sameFunc func(prev, next view) bool

func identical(prev, next view) bool {
	return sentence.EqualsAt(prev.s, prev.neg, next.s, next.neg)
}

// match reports whether target fits form, extending b with the variables
// form introduces. A variable under a negated form binds the target with
// its root flipped, so "!a" against "!p" binds a to p. On failure b is
// left as it was.
func match(target, form view, b *bindings, same sameFunc) bool {
	m := b.mark()
	if matchInto(target, form, b, same) {
		return true
	}
	b.undo(m)
	return false
}

func matchInto(target, form view, b *bindings, same sameFunc) bool {
	if form.s.Kind() == sentence.Atom {
		key := form.s.Variable()
		bound := view{s: target.s, neg: target.neg != !form.affirmed()}
		if prev, ok := b.lookup(key); ok {
			return same(prev, bound)
		}
		b.bind(key, bound)
		return true
	}

	if target.s.Kind() != form.s.Kind() || target.affirmed() != form.affirmed() {
		return false
	}
	tc, fc := target.s.Children(), form.s.Children()
	if len(tc) != len(fc) {
		return false
	}
	for i := range fc {
		if !matchInto(viewOf(tc[i]), viewOf(fc[i]), b, same) {
			return false
		}
	}
	return true
}
