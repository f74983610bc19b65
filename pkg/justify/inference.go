package justify

import "github.com/leapstack-labs/leapproof/pkg/sentence"

func (j *Justification) inferenceJustified(consequent *sentence.Sentence, antecedents []Antecedent) bool {
	if j.consequent == nil || len(antecedents) > len(j.required) {
		return false
	}
	for _, a := range antecedents {
		if a == nil {
			return false
		}
	}

	b := newBindings()
	if !match(viewOf(consequent), viewOf(j.consequent), b, identical) {
		return false
	}

	s := &inferenceSearch{
		forms:       j.required,
		antecedents: antecedents,
		used:        make([]int, len(antecedents)),
		b:           b,
	}
	return s.assign(0)
}

// inferenceSearch assigns antecedents to required forms by backtracking.
// Every cited antecedent must be used by at least one form.
type inferenceSearch struct {
	forms       []RequiredForm
	antecedents []Antecedent
	used        []int
	b           *bindings
}

func (s *inferenceSearch) assign(i int) bool {
	if i == len(s.forms) {
		for _, n := range s.used {
			if n == 0 {
				return false
			}
		}
		return true
	}

	form := s.forms[i]
	for k, ant := range s.antecedents {
		if form.IsSubproof() {
			if s.assignSubproof(i, k, ant, form) {
				return true
			}
			continue
		}

		line := ant.Sentence()
		if line == nil {
			continue
		}
		m := s.b.mark()
		if match(viewOf(line), viewOf(form.Line), s.b, identical) && s.use(i, k) {
			return true
		}
		s.b.undo(m)
	}
	return false
}

func (s *inferenceSearch) assignSubproof(i, k int, ant Antecedent, form RequiredForm) bool {
	assumption := ant.Assumption()
	if assumption == nil {
		return false
	}
	m := s.b.mark()
	defer s.b.undo(m)

	if !match(viewOf(assumption), viewOf(form.Assumption), s.b, identical) {
		return false
	}
	for _, line := range ant.Lines() {
		lm := s.b.mark()
		if match(viewOf(line), viewOf(form.Line), s.b, identical) && s.use(i, k) {
			return true
		}
		s.b.undo(lm)
	}
	return false
}

// use counts antecedent k toward form i and continues with the next form.
func (s *inferenceSearch) use(i, k int) bool {
	s.used[k]++
	if s.assign(i + 1) {
		return true
	}
	s.used[k]--
	return false
}
