package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leapproof/pkg/justify"
	"github.com/leapstack-labs/leapproof/pkg/rules"
)

// generateRuleDocs writes one reference page covering every built-in rule.
func generateRuleDocs(outDir string) error {
	log.Printf("Generating rule docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Rule Reference", "Built-in rules of inference and replacement")
	w.GeneratedMarker()

	w.Header(1, "Rule Reference")
	w.Paragraph(`Letters in a form stand for any sentence. A letter bound once must
stand for the same sentence everywhere else in the form.`)

	catalog := rules.Builtin()
	for _, kind := range []justify.Kind{justify.KindEquivalence, justify.KindInference, justify.KindAggregate} {
		w.Header(2, kindTitle(kind))
		for _, rule := range catalog.All() {
			if rule.Kind() != kind {
				continue
			}
			w.Header(3, rule.Name())
			var forms []string
			for _, form := range rule.Describe() {
				forms = append(forms, InlineCode(form))
			}
			w.BulletList(forms)
		}
	}

	filename := filepath.Join(outDir, "index.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated index.md (%d rules)", catalog.Len())
	return nil
}

func kindTitle(kind justify.Kind) string {
	switch kind {
	case justify.KindEquivalence:
		return "Rules of Replacement"
	case justify.KindInference:
		return "Rules of Inference"
	default:
		return "Combined Rules"
	}
}
