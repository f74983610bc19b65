package justify

import "github.com/leapstack-labs/leapproof/pkg/sentence"

// AreEquivalent reports whether a and b are interchangeable under the
// rule. Two trees are equivalent when they share kind and polarity and
// their children are pairwise equivalent, or when some pair of the rule
// matches them in either order. Variables bound twice may hold trees that
// are themselves equivalent, so rewrites apply at any depth.
func (j *Justification) AreEquivalent(a, b *sentence.Sentence) bool {
	if j.kind != KindEquivalence || a == nil || b == nil {
		return false
	}
	return j.equivalent(viewOf(a), viewOf(b))
}

func (j *Justification) equivalent(t1, t2 view) bool {
	if j.congruent(t1, t2) {
		return true
	}

	for _, p := range j.pairs {
		// Align the pair's polarity with the tree that meets its first form.
		flip := t1.affirmed() != p.First.Affirmed()
		b := newBindings()
		if match(t1, view{p.First, flip}, b, j.equivalent) &&
			match(t2, view{p.Second, flip}, b, j.equivalent) {
			return true
		}

		flip = t2.affirmed() != p.First.Affirmed()
		b = newBindings()
		if match(t2, view{p.First, flip}, b, j.equivalent) &&
			match(t1, view{p.Second, flip}, b, j.equivalent) {
			return true
		}
	}
	return false
}

func (j *Justification) congruent(t1, t2 view) bool {
	if t1.s.Kind() != t2.s.Kind() || t1.affirmed() != t2.affirmed() {
		return false
	}
	if t1.s.Kind() == sentence.Atom {
		return t1.s.Name() == t2.s.Name()
	}
	c1, c2 := t1.s.Children(), t2.s.Children()
	if len(c1) != len(c2) {
		return false
	}
	for i := range c1 {
		if !j.equivalent(viewOf(c1[i]), viewOf(c2[i])) {
			return false
		}
	}
	return true
}
