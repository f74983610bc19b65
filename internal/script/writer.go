package script

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapproof/pkg/proof"
)

// Write emits doc as a script that Read turns back into the same proof.
// Lemmas are not written: they live in their own files.
func Write(w io.Writer, doc *proof.Document) error {
	bw := bufio.NewWriter(w)
	fileLine := map[int]int{}
	written, prevDepth := 0, 0

	emit := func(format string, args ...any) {
		written++
		fmt.Fprintf(bw, format+"\n", args...)
	}

	for _, v := range doc.Lines() {
		enclosing := v.Depth
		if v.Assumption {
			enclosing--
		}
		for range prevDepth - enclosing {
			emit("end")
		}
		prevDepth = v.Depth

		switch {
		case v.Premise:
			emit("pre %s", v.Text)
		case v.Assumption:
			emit("sub %s", v.Text)
		default:
			cites := make([]string, 0, len(v.Antecedents))
			for _, n := range v.Antecedents {
				cites = append(cites, strconv.Itoa(fileLine[n]))
			}
			emit("lin %s:%s:%s", v.Text, v.Rule, strings.Join(cites, " "))
		}
		fileLine[v.Number] = written
	}

	if goal := doc.Goal(); goal != nil {
		emit("gol %s", goal)
	}
	return bw.Flush()
}
