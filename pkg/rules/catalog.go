// Package rules holds the catalog of named justifications a proof may cite
// and the built-in rule set of the proof checker.
package rules

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/leapstack-labs/leapproof/pkg/justify"
)

// Errors returned by Register.
var (
	// ErrDuplicateRule is returned when a rule name is already registered.
	ErrDuplicateRule = errors.New("rule already registered")
	// ErrEmptyName is returned for a nil rule or a rule without a name.
	ErrEmptyName = errors.New("rule name is empty")
)

// Catalog maps rule names to justifications. It is safe for concurrent use;
// registered rules are never modified, so lookups can be shared freely.
type Catalog struct {
	mu sync.RWMutex

	byName map[string]*justify.Justification

	// order keeps registration order for listings that want it
	order []string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byName: make(map[string]*justify.Justification)}
}

// Register adds a rule under its name.
func (c *Catalog) Register(rule *justify.Justification) error {
	if rule == nil || rule.Name() == "" {
		return ErrEmptyName
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byName[rule.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateRule, rule.Name())
	}
	c.byName[rule.Name()] = rule
	c.order = append(c.order, rule.Name())
	return nil
}

// Lookup returns the rule registered under name.
func (c *Catalog) Lookup(name string) (*justify.Justification, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rule, ok := c.byName[name]
	return rule, ok
}

// Names returns all rule names sorted alphabetically.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the rules in registration order.
func (c *Catalog) All() []*justify.Justification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*justify.Justification, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.byName[name])
	}
	return out
}

// Len returns the number of registered rules.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byName)
}

// Clone returns an independent catalog holding the same rules. Rules added
// to the clone are not visible in c.
func (c *Catalog) Clone() *Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()

	clone := &Catalog{
		byName: make(map[string]*justify.Justification, len(c.byName)),
		order:  append([]string(nil), c.order...),
	}
	for name, rule := range c.byName {
		clone.byName[name] = rule
	}
	return clone
}

// Merge registers every rule of other into c, in other's registration
// order. It stops at the first name clash.
func (c *Catalog) Merge(other *Catalog) error {
	for _, rule := range other.All() {
		if err := c.Register(rule); err != nil {
			return err
		}
	}
	return nil
}
