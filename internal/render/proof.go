package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapproof/pkg/proof"
)

// Line is the JSON shape of one proof line.
type Line struct {
	Number      int    `json:"line"`
	Text        string `json:"text"`
	Valid       bool   `json:"valid"`
	Depth       int    `json:"depth"`
	Rule        string `json:"rule,omitempty"`
	Antecedents []int  `json:"antecedents,omitempty"`
	Premise     bool   `json:"premise,omitempty"`
	Assumption  bool   `json:"assumption,omitempty"`
	Failure     string `json:"failure,omitempty"`
}

// CheckResult is the JSON shape of a verified proof.
type CheckResult struct {
	File     string           `json:"file,omitempty"`
	OK       bool             `json:"ok"`
	Failed   int              `json:"failed"`
	Goal     proof.GoalStatus `json:"goal"`
	GoalText string           `json:"goal_text,omitempty"`
	Lines    []Line           `json:"lines"`
	Warnings []string         `json:"warnings,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// NewCheckResult pairs the lines of doc with their verification results.
func NewCheckResult(file string, doc *proof.Document, report proof.Report) CheckResult {
	res := CheckResult{
		File:   file,
		OK:     report.OK(),
		Failed: report.FailedCount(),
		Goal:   report.Goal,
		Lines:  lines(doc),
	}
	if g := doc.Goal(); g != nil {
		res.GoalText = g.String()
	}
	for i, l := range report.Lines {
		if i < len(res.Lines) && l.Failure != proof.NoFailure {
			res.Lines[i].Failure = l.Failure.String()
		}
	}
	return res
}

func lines(doc *proof.Document) []Line {
	views := doc.Lines()
	out := make([]Line, 0, len(views))
	for _, v := range views {
		out = append(out, Line{
			Number:      v.Number,
			Text:        v.Text,
			Valid:       v.Valid,
			Depth:       v.Depth,
			Rule:        v.Rule,
			Antecedents: v.Antecedents,
			Premise:     v.Premise,
			Assumption:  v.Assumption,
		})
	}
	return out
}

// listingRow is one printed row of a proof listing: a numbered line or a
// separator under premises and assumptions.
type listingRow struct {
	number string
	bars   string
	text   string
	rule   string
}

func listing(doc *proof.Document) []listingRow {
	views := doc.Lines()
	width := len(strconv.Itoa(len(views)))

	var rows []listingRow
	for i, v := range views {
		bars := strings.Repeat("|", v.Depth+1)
		rows = append(rows, listingRow{
			number: fmt.Sprintf("%*d", width, v.Number),
			bars:   bars,
			text:   v.Text,
			rule:   citation(v),
		})

		lastPremise := v.Premise && (i+1 == len(views) || !views[i+1].Premise)
		if lastPremise || v.Assumption {
			rows = append(rows, listingRow{number: strings.Repeat(" ", width), bars: bars, text: "---"})
		}
	}
	return rows
}

func citation(v proof.LineView) string {
	if v.Rule == "" {
		return "No justification"
	}
	if len(v.Antecedents) == 0 {
		return v.Rule
	}
	nums := make([]string, 0, len(v.Antecedents))
	for _, n := range v.Antecedents {
		nums = append(nums, strconv.Itoa(n))
	}
	return v.Rule + " " + strings.Join(nums, ", ")
}

// Listing formats doc as plain text, one row per line:
//
//	1 |(p>q)  Premise
//	  |---
//	2 ||p     Assumption
//	  ||---
//	3 ||q     Modus Ponens 1, 2
func Listing(doc *proof.Document) string {
	rows := listing(doc)
	pad := 0
	for _, row := range rows {
		if row.rule != "" {
			pad = max(pad, len(row.bars)+len(row.text))
		}
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(row.number + " " + row.bars + row.text)
		if row.rule != "" {
			b.WriteString(strings.Repeat(" ", pad-len(row.bars)-len(row.text)+2) + row.rule)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Proof prints the lines of doc.
func (r *Renderer) Proof(file string, doc *proof.Document) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(struct {
			File  string `json:"file,omitempty"`
			Goal  string `json:"goal,omitempty"`
			Lines []Line `json:"lines"`
		}{File: file, Goal: goalText(doc), Lines: lines(doc)})
	case ModeMarkdown:
		if file != "" {
			r.Println(FormatHeader(1, file))
			r.Println("")
		}
		r.Println(FormatCodeBlock("", Listing(doc)))
		if g := goalText(doc); g != "" {
			r.Println("")
			r.Printf("**Goal:** `%s`\n", g)
		}
		return nil
	default:
		r.proofText(file, doc)
		return nil
	}
}

func (r *Renderer) proofText(file string, doc *proof.Document) {
	s := r.styles
	if file != "" {
		r.Println(s.Header1.Render(file))
	}

	rows := listing(doc)
	pad := 0
	for _, row := range rows {
		if row.rule != "" {
			pad = max(pad, len(row.bars)+len(row.text))
		}
	}
	for _, row := range rows {
		line := s.Number.Render(row.number) + " " + s.Bar.Render(row.bars)
		if row.rule == "" {
			r.Println(line + s.Muted.Render(row.text))
			continue
		}
		gap := strings.Repeat(" ", pad-len(row.bars)-len(row.text)+2)
		r.Println(line + row.text + gap + s.Rule.Render(row.rule))
	}
	if g := goalText(doc); g != "" {
		r.Println(s.Bold.Render("Goal: ") + g)
	}
}

func goalText(doc *proof.Document) string {
	if g := doc.Goal(); g != nil {
		return g.String()
	}
	return ""
}

// Report prints the verification result of doc. Text and markdown list each
// line that failed with its reason, or that all lines check out, followed
// by the goal status.
func (r *Renderer) Report(file string, doc *proof.Document, report proof.Report) error {
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(NewCheckResult(file, doc, report))
	}
	r.ReportLines(file, doc, report)
	return nil
}

// ReportLines prints the text or markdown form of a report. It is shared by
// commands that print several reports into one JSON document.
func (r *Renderer) ReportLines(file string, doc *proof.Document, report proof.Report) {
	s := r.styles
	markdown := r.EffectiveMode() == ModeMarkdown

	if file != "" {
		if markdown {
			r.Println(FormatHeader(2, file))
			r.Println("")
		} else {
			r.Println(s.Header2.Render(file))
		}
	}

	failed := report.Failed()
	views := doc.Lines()
	for _, l := range failed {
		text := ""
		if l.Number-1 < len(views) {
			text = views[l.Number-1].Text
		}
		if markdown {
			r.Printf("- Line %d `%s` is not justified: %s\n", l.Number, text, l.Failure)
		} else {
			r.Printf("  %s %s %s\n",
				s.Error.Render(fmt.Sprintf("Line %d", l.Number)),
				text,
				s.Muted.Render("is not justified: "+l.Failure.String()))
		}
	}
	if len(failed) == 0 {
		if markdown {
			r.Println("All lines check out")
		} else {
			r.Println("  " + s.Success.Render("All lines check out"))
		}
	}

	goal := goalText(doc)
	switch report.Goal {
	case proof.GoalMet:
		r.Printf("%sGoal %s: %s\n", indent(markdown), goal, s.Success.Render("met"))
	case proof.GoalMissing:
		r.Printf("%sGoal %s: %s\n", indent(markdown), goal, s.Error.Render("missing"))
	}
	if markdown {
		r.Println("")
	}
}

func indent(markdown bool) string {
	if markdown {
		return ""
	}
	return "  "
}
