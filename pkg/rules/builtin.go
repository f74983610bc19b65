package rules

// Names of the built-in justifications that are not catalog entries.
const (
	// PremiseName labels premise lines.
	PremiseName = "Premise"
	// AssumptionName labels subproof openers.
	AssumptionName = "Assumption"
)

// equivalence and inference keep the built-in table readable.
func equivalence(name string, pairs ...[2]string) Definition {
	return Definition{Name: name, Kind: "equivalence", Pairs: pairs}
}

func inference(name, consequent string, forms ...Form) Definition {
	return Definition{Name: name, Kind: "inference", Consequent: consequent, Antecedents: forms}
}

func aggregate(name string, members ...Definition) Definition {
	return Definition{Name: name, Kind: "aggregate", Rules: members}
}

func line(form string) Form { return Form{Form: form} }

func subproof(assumption, form string) Form { return Form{Form: form, Subproof: assumption} }

// BuiltinDefinitions lists the standard rule set in registration order:
// replacement rules first, then inference rules.
var BuiltinDefinitions = []Definition{
	equivalence("Association", [2]string{"a&(b&c)", "(a&b)&c"}, [2]string{"a|(b|c)", "(a|b)|c"}),
	equivalence("Commutation", [2]string{"a&b", "b&a"}, [2]string{"a|b", "b|a"}),
	// Polarity alignment covers !(a|b) == !a&!b as well.
	equivalence("DeMorgan", [2]string{"!(a&b)", "!a|!b"}),
	equivalence("Distribution", [2]string{"a&(b|c)", "(a&b)|(a&c)"}, [2]string{"a|(b&c)", "(a|b)&(a|c)"}),
	equivalence("Idempotence", [2]string{"a&a", "a"}, [2]string{"a|a", "a"}),
	equivalence("Absorption", [2]string{"a&(a|b)", "a"}, [2]string{"a|(a&b)", "a"}),
	equivalence("Reduction", [2]string{"a&(!a|b)", "a&b"}, [2]string{"a|(!a&b)", "a|b"}),
	equivalence("Adjacency", [2]string{"(a|b)&(a|!b)", "a"}, [2]string{"(a&b)|(a&!b)", "a"}),

	equivalence("Implication", [2]string{"a>b", "!a|b"}),
	equivalence("Contraposition", [2]string{"a>b", "!b>!a"}),
	equivalence("Exportation", [2]string{"a>(b>c)", "(a&b)>c"}),
	equivalence("Equivalence", [2]string{"a=b", "(a>b)&(b>a)"}, [2]string{"a=b", "(a&b)|(!a&!b)"}),
	equivalence("Conditional Distribution",
		[2]string{"a>(b&c)", "(a>b)&(a>c)"},
		[2]string{"a>(b|c)", "(a>b)|(a>c)"},
		[2]string{"(a|b)>c", "(a>c)&(b>c)"},
		[2]string{"(a&b)>c", "(a>c)|(b>c)"},
	),
	equivalence("Conditional Reduction", [2]string{"(a>b)&a", "a&b"}, [2]string{"(a>b)&!b", "!a&!b"}),

	inference("Conjunction", "a&b", line("a"), line("b")),
	aggregate("Simplification",
		inference("simp1", "a", line("a&b")),
		inference("simp2", "b", line("a&b")),
	),
	aggregate("Addition",
		inference("add1", "a|b", line("a")),
		inference("add2", "a|b", line("b")),
	),
	inference("Proof by Cases", "c", line("a|b"), subproof("a", "c"), subproof("b", "c")),
	inference("Indirect Proof", "a", subproof("!a", "b&!b")),
	inference("Conditional Proof", "a>b", subproof("a", "b")),
	inference("Modus Ponens", "b", line("a>b"), line("a")),
	inference("Biconditional Proof", "a=b", subproof("b", "a"), subproof("a", "b")),
	aggregate("Biconditional Elimination",
		inference("be1", "a", line("a=b"), line("b")),
		inference("be2", "b", line("a=b"), line("a")),
	),
	inference("Modus Tollens", "!a", line("a>b"), line("!b")),
	inference("Hypothetical Syllogism", "a>c", line("a>b"), line("b>c")),
}

// Builtin returns a new catalog holding the standard rule set. Each call
// returns an independent catalog.
func Builtin() *Catalog {
	c, err := BuildAll(BuiltinDefinitions)
	if err != nil {
		panic("rules: invalid built-in definitions: " + err.Error())
	}
	return c
}
