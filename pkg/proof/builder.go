package proof

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/leapproof/pkg/sentence"
)

// AddPremiseLine inserts an empty premise after the current line, moving
// the cursor back into the premise block first if it is past it. The new
// line becomes current.
func (d *Document) AddPremiseLine() {
	if d.cursor > d.lastPremise {
		d.cursor = d.lastPremise
	}
	id := d.newStatement(statement{parent: none, rule: d.premise})
	d.insertLine(d.cursor+1, id)
	d.lastPremise++
	d.cursor++
}

// AddLine inserts an empty derived line after the current line, in the
// same subproof as the current line. The cursor never stays inside the
// premise block. The new line becomes current.
func (d *Document) AddLine() {
	if d.cursor < d.lastPremise {
		d.cursor = d.lastPremise
	}
	id := d.newStatement(statement{parent: d.scope()})
	d.insertLine(d.cursor+1, id)
	d.cursor++
}

// AddSubproofLine opens a subproof after the current line. The inserted
// line is the subproof's assumption and becomes current. A blank line left
// by EndSubproof is reused instead of adding another.
func (d *Document) AddSubproofLine() {
	if id, err := d.current(); err == nil && d.stmts[id].placeholder {
		d.openSubproof(id)
		return
	}

	if d.cursor < d.lastPremise {
		d.cursor = d.lastPremise
	}
	id := d.newStatement(statement{parent: d.scope()})
	d.insertLine(d.cursor+1, id)
	d.cursor++
	d.openSubproof(id)
}

func (d *Document) openSubproof(line int) {
	sp := d.newStatement(statement{subproof: true, assumption: line, parent: d.stmts[line].parent})
	s := &d.stmts[line]
	s.parent = sp
	s.rule = d.assumption
	s.antecedents = nil
	s.placeholder = false
}

// scope returns the subproof holding the current line.
func (d *Document) scope() int {
	if d.cursor < 0 {
		return none
	}
	return d.stmts[d.lines[d.cursor]].parent
}

// EndSubproof closes the subproof holding the current line by adding a
// blank line to the enclosing scope. Called again while that blank line is
// current, it moves the line out one more level.
func (d *Document) EndSubproof() error {
	id, err := d.current()
	if err != nil {
		return err
	}
	sp := d.stmts[id].parent
	if sp == none {
		return ErrNotInSubproof
	}

	if d.stmts[id].placeholder {
		d.stmts[id].parent = d.stmts[sp].parent
		return nil
	}

	d.AddLine()
	line := &d.stmts[d.lines[d.cursor]]
	line.parent = d.stmts[sp].parent
	line.placeholder = true
	return nil
}

// SetPosition moves the cursor to index; -1 places it before the first line.
func (d *Document) SetPosition(index int) error {
	if index < none || index >= len(d.lines) {
		return fmt.Errorf("%w: %d", ErrLineOutOfRange, index)
	}
	d.cursor = index
	return nil
}

// SetStatement replaces the sentence of the current line. Malformed text is
// stored as is and reported by Verify.
func (d *Document) SetStatement(text string) error {
	id, err := d.current()
	if err != nil {
		return err
	}
	d.stmts[id].sentence = sentence.Parse(text)
	d.stmts[id].placeholder = false
	return nil
}

// SetJustification attaches the named catalog rule to the current line.
// An empty name clears it. Premises and assumptions keep their rule.
func (d *Document) SetJustification(name string) error {
	id, err := d.current()
	if err != nil {
		return err
	}
	if d.fixedRule(id) {
		return ErrPremiseLine
	}

	s := &d.stmts[id]
	s.placeholder = false
	if name == "" {
		s.rule = nil
		return nil
	}
	rule, ok := d.catalog.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRule, name)
	}
	s.rule = rule
	return nil
}

// ToggleAntecedent cites, or stops citing, the statement on line number n
// (1-based) from the current line. The line must come before the current
// one. A line inside a closed subproof resolves to the outermost closed
// subproof holding it, so the whole subproof is cited instead.
func (d *Document) ToggleAntecedent(n int) error {
	id, err := d.current()
	if err != nil {
		return err
	}
	if d.fixedRule(id) {
		return ErrPremiseLine
	}
	if n < 1 || n > d.cursor {
		return fmt.Errorf("%w: cannot cite line %d from line %d", ErrLineOutOfRange, n, d.cursor+1)
	}

	target := d.resolve(d.lines[n-1], id)
	s := &d.stmts[id]
	s.placeholder = false
	if i := slices.Index(s.antecedents, target); i >= 0 {
		s.antecedents = slices.Delete(s.antecedents, i, i+1)
		return nil
	}
	s.antecedents = append(s.antecedents, target)
	return nil
}

// resolve walks target up its subproofs until it sits in a scope visible
// from the statement from.
func (d *Document) resolve(target, from int) int {
	visible := map[int]bool{none: true}
	for p := d.stmts[from].parent; p != none; p = d.stmts[p].parent {
		visible[p] = true
	}
	for !visible[d.stmts[target].parent] {
		target = d.stmts[target].parent
	}
	return target
}

// fixedRule reports whether the line is a premise or subproof assumption.
func (d *Document) fixedRule(id int) bool {
	rule := d.stmts[id].rule
	return rule == d.premise || rule == d.assumption
}

// SetGoal sets the sentence the proof should reach. Empty text clears it.
func (d *Document) SetGoal(text string) error {
	if text == "" {
		d.goal = nil
		return nil
	}
	goal, err := sentence.ParseValid(text)
	if err != nil {
		return fmt.Errorf("goal: %w", err)
	}
	d.goal = goal
	return nil
}

// RemoveLine deletes the line at index. Removing a subproof assumption
// removes the whole subproof. Citations of removed statements are dropped.
func (d *Document) RemoveLine(index int) error {
	if index < 0 || index >= len(d.lines) {
		return fmt.Errorf("%w: %d", ErrLineOutOfRange, index)
	}

	id := d.lines[index]
	gone := map[int]bool{id: true}
	if d.isAssumption(id) {
		sp := d.stmts[id].parent
		gone[sp] = true
		for sid := range d.stmts {
			if d.within(sid, sp) {
				gone[sid] = true
			}
		}
	}

	cursor, lastPremise := d.cursor, d.lastPremise
	kept := d.lines[:0]
	for i, lid := range d.lines {
		if !gone[lid] {
			kept = append(kept, lid)
			continue
		}
		if i <= cursor {
			d.cursor--
		}
		if i <= lastPremise {
			d.lastPremise--
		}
	}
	d.lines = kept
	if d.cursor < none {
		d.cursor = none
	}

	for sid := range d.stmts {
		if gone[sid] {
			d.stmts[sid].removed = true
			continue
		}
		s := &d.stmts[sid]
		s.antecedents = slices.DeleteFunc(s.antecedents, func(a int) bool { return gone[a] })
	}
	return nil
}

// within reports whether statement id is nested, at any depth, in sp.
func (d *Document) within(id, sp int) bool {
	for p := d.stmts[id].parent; p != none; p = d.stmts[p].parent {
		if p == sp {
			return true
		}
	}
	return false
}
