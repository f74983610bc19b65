package rules

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapproof/pkg/justify"
)

func TestCatalog_Register(t *testing.T) {
	c := NewCatalog()

	require.NoError(t, c.Register(justify.NewEquivalenceRule("B")))
	require.NoError(t, c.Register(justify.NewAggregate("A")))

	err := c.Register(justify.NewAggregate("A"))
	require.ErrorIs(t, err, ErrDuplicateRule)

	require.ErrorIs(t, c.Register(nil), ErrEmptyName)
	require.ErrorIs(t, c.Register(justify.NewAggregate("")), ErrEmptyName)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"A", "B"}, c.Names())

	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, "B", all[0].Name(), "All keeps registration order")

	rule, ok := c.Lookup("B")
	require.True(t, ok)
	assert.Equal(t, justify.KindEquivalence, rule.Kind())

	_, ok = c.Lookup("missing")
	assert.False(t, ok)
}

func TestCatalog_Clone(t *testing.T) {
	base := NewCatalog()
	require.NoError(t, base.Register(justify.NewAggregate("Shared")))

	clone := base.Clone()
	require.NoError(t, clone.Register(justify.NewAggregate("Local")))

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, clone.Len())

	_, ok := base.Lookup("Local")
	assert.False(t, ok)

	a, _ := base.Lookup("Shared")
	b, _ := clone.Lookup("Shared")
	assert.Same(t, a, b)
}

func TestCatalog_Merge(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(justify.NewAggregate("A")))

	other := NewCatalog()
	require.NoError(t, other.Register(justify.NewAggregate("B")))
	require.NoError(t, c.Merge(other))
	assert.Equal(t, []string{"A", "B"}, c.Names())

	require.ErrorIs(t, c.Merge(other), ErrDuplicateRule)
}

func TestCatalog_ConcurrentAccess(t *testing.T) {
	c := Builtin()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range c.Names() {
				_, ok := c.Lookup(name)
				assert.True(t, ok)
			}
			_ = c.Clone()
		}()
	}
	wg.Wait()
}

func TestDefinition_Build(t *testing.T) {
	t.Run("inference with subproof", func(t *testing.T) {
		d := Definition{
			Name:        "Conditional Proof",
			Kind:        "inference",
			Consequent:  "a>b",
			Antecedents: []Form{{Form: "b", Subproof: "a"}},
		}
		rule, err := d.Build()
		require.NoError(t, err)
		require.Len(t, rule.RequiredForms(), 1)
		assert.True(t, rule.RequiredForms()[0].IsSubproof())
	})

	t.Run("unnamed aggregate members", func(t *testing.T) {
		d := Definition{
			Name: "Addition",
			Kind: "aggregate",
			Rules: []Definition{
				{Kind: "inference", Consequent: "a|b", Antecedents: []Form{{Form: "a"}}},
			},
		}
		rule, err := d.Build()
		require.NoError(t, err)
		require.Len(t, rule.Rules(), 1)
		assert.Equal(t, UnnamedRule, rule.Rules()[0].Name())
	})

	errCases := []struct {
		name string
		def  Definition
	}{
		{"unknown kind", Definition{Name: "X", Kind: "lemma"}},
		{"assumption", Definition{Name: "X", Kind: "assumption"}},
		{"no pairs", Definition{Name: "X", Kind: "equivalence"}},
		{"bad pair", Definition{Name: "X", Kind: "equivalence", Pairs: [][2]string{{"a&", "a"}}}},
		{"no consequent", Definition{Name: "X", Kind: "inference"}},
		{"bad consequent", Definition{Name: "X", Kind: "inference", Consequent: "(a"}},
		{"bad form", Definition{Name: "X", Kind: "inference", Consequent: "a", Antecedents: []Form{{Form: "a|"}}}},
		{"empty aggregate", Definition{Name: "X", Kind: "aggregate"}},
		{"bad member", Definition{Name: "X", Kind: "aggregate", Rules: []Definition{{Kind: "inference"}}}},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.def.Build()
			assert.Error(t, err)
		})
	}
}

func TestDefine_RoundTrip(t *testing.T) {
	for _, d := range BuiltinDefinitions {
		t.Run(d.Name, func(t *testing.T) {
			rule, err := d.Build()
			require.NoError(t, err)

			again, err := Define(rule).Build()
			require.NoError(t, err)
			assert.Equal(t, rule.Describe(), again.Describe())
			assert.Equal(t, rule.Kind(), again.Kind())
		})
	}
}

func TestBuildAll_Duplicate(t *testing.T) {
	defs := []Definition{
		equivalence("Same", [2]string{"a&b", "b&a"}),
		equivalence("Same", [2]string{"a|b", "b|a"}),
	}
	_, err := BuildAll(defs)
	require.ErrorIs(t, err, ErrDuplicateRule)
}
