package catalog

import (
	"fmt"
	"sort"
	"strings"

	"go.starlark.net/starlark"

	"github.com/leapstack-labs/leapproof/pkg/rules"
)

// ruleValue carries a rule definition through Starlark code.
type ruleValue struct {
	def rules.Definition
}

var _ starlark.Value = (*ruleValue)(nil)

func (r *ruleValue) String() string        { return fmt.Sprintf("<rule %q>", r.def.Name) }
func (r *ruleValue) Type() string          { return "rule" }
func (r *ruleValue) Freeze()               {}
func (r *ruleValue) Truth() starlark.Bool  { return starlark.True }
func (r *ruleValue) Hash() (uint32, error) { return starlark.String(r.def.Name).Hash() }

// predeclared returns the rule constructors available to catalog scripts:
//
//	equivalence(name, pairs)
//	inference(name, consequent, antecedents=[])
//	aggregate(name, rules)
//	subproof(assume, show)
//
// Antecedents are form strings, or subproof(...) values for forms that
// must be met by a subproof.
func predeclared() starlark.StringDict {
	return starlark.StringDict{
		"equivalence": starlark.NewBuiltin("equivalence", equivalenceBuiltin),
		"inference":   starlark.NewBuiltin("inference", inferenceBuiltin),
		"aggregate":   starlark.NewBuiltin("aggregate", aggregateBuiltin),
		"subproof":    starlark.NewBuiltin("subproof", subproofBuiltin),
	}
}

// ExecStarlark runs a catalog script and collects the rules bound to its
// exported globals, ordered by global name.
func ExecStarlark(name string, content []byte) ([]rules.Definition, error) {
	thread := &starlark.Thread{
		Name: fmt.Sprintf("rules:%s", name),
		Print: func(_ *starlark.Thread, _ string) {
			// Ignore prints while loading rules
		},
	}

	globals, err := starlark.ExecFile(thread, name, content, predeclared()) //nolint:staticcheck // SA1019: will migrate to ExecFileOptions later
	if err != nil {
		return nil, &LoadError{File: name, Message: fmt.Sprintf("Starlark execution error: %v", err), Err: err}
	}

	keys := make([]string, 0, len(globals))
	for key := range globals {
		if !strings.HasPrefix(key, "_") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var defs []rules.Definition
	for _, key := range keys {
		if rv, ok := globals[key].(*ruleValue); ok {
			defs = append(defs, rv.def)
		}
	}
	return defs, nil
}

func equivalenceBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var pairs starlark.Iterable
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "pairs", &pairs); err != nil {
		return nil, err
	}

	def := rules.Definition{Name: name, Kind: "equivalence"}
	for i, item := range iterate(pairs) {
		forms, err := stringList(item)
		if err != nil || len(forms) != 2 {
			return nil, fmt.Errorf("%s: pair %d must be two form strings", b.Name(), i+1)
		}
		def.Pairs = append(def.Pairs, [2]string{forms[0], forms[1]})
	}
	return &ruleValue{def: def}, nil
}

func inferenceBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name, consequent string
	var antecedents starlark.Iterable = starlark.NewList(nil)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"name", &name, "consequent", &consequent, "antecedents?", &antecedents); err != nil {
		return nil, err
	}

	def := rules.Definition{Name: name, Kind: "inference", Consequent: consequent}
	for i, item := range iterate(antecedents) {
		if s, ok := starlark.AsString(item); ok {
			def.Antecedents = append(def.Antecedents, rules.Form{Form: s})
			continue
		}
		forms, err := stringList(item)
		if err != nil || len(forms) != 2 {
			return nil, fmt.Errorf("%s: antecedent %d must be a form or subproof(assume, show)", b.Name(), i+1)
		}
		def.Antecedents = append(def.Antecedents, rules.Form{Subproof: forms[0], Form: forms[1]})
	}
	return &ruleValue{def: def}, nil
}

func aggregateBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var members starlark.Iterable
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "rules", &members); err != nil {
		return nil, err
	}

	def := rules.Definition{Name: name, Kind: "aggregate"}
	for i, item := range iterate(members) {
		rv, ok := item.(*ruleValue)
		if !ok {
			return nil, fmt.Errorf("%s: member %d is a %s, not a rule", b.Name(), i+1, item.Type())
		}
		def.Rules = append(def.Rules, rv.def)
	}
	return &ruleValue{def: def}, nil
}

func subproofBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var assume, show string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "assume", &assume, "show", &show); err != nil {
		return nil, err
	}
	return starlark.Tuple{starlark.String(assume), starlark.String(show)}, nil
}

func iterate(it starlark.Iterable) []starlark.Value {
	iter := it.Iterate()
	defer iter.Done()

	var out []starlark.Value
	var v starlark.Value
	for iter.Next(&v) {
		out = append(out, v)
	}
	return out
}

func stringList(v starlark.Value) ([]string, error) {
	it, ok := v.(starlark.Iterable)
	if !ok {
		return nil, fmt.Errorf("got %s, want a sequence of strings", v.Type())
	}
	var out []string
	for _, item := range iterate(it) {
		s, ok := starlark.AsString(item)
		if !ok {
			return nil, fmt.Errorf("got %s, want string", item.Type())
		}
		out = append(out, s)
	}
	return out, nil
}
