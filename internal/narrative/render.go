package narrative

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ppiankov/estudio/internal/model"
	"github.com/ppiankov/estudio/internal/odds"
)

const (
	titleMarket  = "Market analysis vs. H2H history"
	titleStadium = "Precedent at this stadium"
	titleGeneral = "Most recent general H2H"
	duplicateMsg = "This precedent is the same match analyzed above."
)

// RenderHTML renders the market analysis as an HTML fragment. An analysis
// without readable current lines renders as the empty string.
func RenderHTML(a model.MarketAnalysis) (string, error) {
	if a.Status != model.StatusAnalyzed {
		return "", nil
	}

	root := element(atom.Div, "class", "market-analysis")
	root.AppendChild(headline(a))
	root.AppendChild(precedentBlock(titleStadium, a.Stadium))
	root.AppendChild(precedentBlock(titleGeneral, a.General))

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return "", fmt.Errorf("render market analysis: %w", err)
	}
	return buf.String(), nil
}

func headline(a model.MarketAnalysis) *html.Node {
	p := element(atom.P, "class", "headline")
	title := element(atom.Strong)
	title.AppendChild(text(titleMarket))
	p.AppendChild(title)
	p.AppendChild(element(atom.Br))

	lines := element(atom.Span, "class", "lines")
	lines.AppendChild(text(fmt.Sprintf("Current lines: AH %s / Goals %s | Favorite: ", a.HandicapDisplay, a.GoalLineDisplay)))
	switch {
	case a.Favorite == "":
		lines.AppendChild(text("none (line at 0)"))
	case a.Favorite == a.Home:
		fav := element(atom.Span, "class", "home-color")
		fav.AppendChild(text(a.Favorite))
		lines.AppendChild(fav)
	default:
		fav := element(atom.Span, "class", "away-color")
		fav.AppendChild(text(a.Favorite))
		lines.AppendChild(fav)
	}
	p.AppendChild(lines)
	return p
}

func precedentBlock(title string, pa model.PrecedentAnalysis) *html.Node {
	div := element(atom.Div, "class", "precedent", "data-role", string(pa.Role), "data-status", string(pa.Status))
	heading := element(atom.Strong)
	heading.AppendChild(text(title))
	div.AppendChild(heading)

	if pa.Status == model.StatusDuplicate {
		p := element(atom.P, "class", "duplicate")
		p.AppendChild(text(duplicateMsg))
		div.AppendChild(p)
		return div
	}

	ul := element(atom.Ul)
	ul.AppendChild(handicapItem(pa))
	ul.AppendChild(goalsItem(pa))
	div.AppendChild(ul)
	return div
}

func handicapItem(pa model.PrecedentAnalysis) *html.Node {
	li := element(atom.Li, "class", "handicap", "data-verdict", pa.Handicap.Outcome.Verdict.String())
	li.AppendChild(label("ah-value", "Handicap:"))
	if pa.Handicap.Status != model.StatusAnalyzed {
		li.AppendChild(text(" not enough data in this precedent."))
		return li
	}
	if pa.Handicap.Shift != nil {
		li.AppendChild(text(" " + ShiftSentence(*pa.Handicap.Shift)))
	}
	li.AppendChild(text(fmt.Sprintf(" With the result (%s), the current line would have been ", displayResult(pa.Result))))
	li.AppendChild(verdict(pa.Handicap.Outcome, VerdictText(pa.Handicap.Outcome)))
	li.AppendChild(text("."))
	return li
}

func goalsItem(pa model.PrecedentAnalysis) *html.Node {
	li := element(atom.Li, "class", "goals", "data-verdict", pa.Goals.Outcome.Verdict.String())
	li.AppendChild(label("score-value", "Goals:"))
	if pa.Goals.Status != model.StatusAnalyzed {
		li.AppendChild(text(" not enough data in this precedent."))
		return li
	}
	li.AppendChild(text(" The match had "))
	total := element(atom.Strong)
	total.AppendChild(text(fmt.Sprintf("%d goals", pa.Goals.TotalGoals)))
	li.AppendChild(total)
	li.AppendChild(text(", so the current line would have been "))
	li.AppendChild(verdict(pa.Goals.Outcome, pa.Goals.Outcome.Label))
	li.AppendChild(text("."))
	return li
}

func verdict(o odds.Outcome, caption string) *html.Node {
	s := element(atom.Span, "class", "verdict verdict-"+o.Verdict.String())
	s.AppendChild(text(caption))
	return s
}

func label(class, caption string) *html.Node {
	s := element(atom.Span, "class", class)
	s.AppendChild(text(caption))
	return s
}

// element builds an element node; attrs are key/value pairs
func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// RenderMarkdown renders the market analysis as a Markdown section
func RenderMarkdown(a model.MarketAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", titleMarket)
	if a.Status != model.StatusAnalyzed {
		b.WriteString("_Not enough data: the current handicap or goal line is missing._\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%s\n\n", HeadlineSentence(a))
	writePrecedentMarkdown(&b, titleStadium, a.Stadium)
	writePrecedentMarkdown(&b, titleGeneral, a.General)
	return b.String()
}

func writePrecedentMarkdown(b *strings.Builder, title string, pa model.PrecedentAnalysis) {
	fmt.Fprintf(b, "### %s\n\n", title)
	if pa.Status == model.StatusDuplicate {
		fmt.Fprintf(b, "_%s_\n\n", duplicateMsg)
		return
	}
	if pa.Home != "" || pa.Away != "" {
		fmt.Fprintf(b, "%s vs %s", pa.Home, pa.Away)
		if r := strings.TrimSpace(pa.Result); r != "" {
			fmt.Fprintf(b, " (%s)", displayResult(r))
		}
		b.WriteString("\n\n")
	}
	fmt.Fprintf(b, "- %s\n", HandicapSentence(pa))
	fmt.Fprintf(b, "- %s\n\n", GoalsSentence(pa))
}

// RenderIndirectMarkdown renders the indirect precedents as a table plus
// the comparative sentences.
func RenderIndirectMarkdown(ia model.IndirectAnalysis) string {
	rows := []struct {
		name  string
		entry *model.IndirectEntry
	}{
		{"Last home match", ia.LastHome},
		{"Last away match", ia.LastAway},
		{"Rivals H2H", ia.RivalsH2H},
		{"General H2H", ia.GeneralH2H},
		{"Home vs away's last rival", ia.ComparativeHome},
		{"Away vs home's last rival", ia.ComparativeAway},
	}

	var b strings.Builder
	b.WriteString("## Indirect precedents\n\n")
	b.WriteString("| Precedent | Match | Result | AH | O/U | Cover |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	written := 0
	for _, r := range rows {
		if r.entry == nil {
			continue
		}
		written++
		fmt.Fprintf(&b, "| %s | %s vs %s | %s | %s | %s | %s |\n",
			r.name, r.entry.Home, r.entry.Away, displayResult(r.entry.Result), r.entry.Line, r.entry.GoalLine, r.entry.Cover)
	}
	if written == 0 {
		b.WriteString("| - | - | - | - | - | - |\n")
	}
	b.WriteString("\n")

	if ia.RivalsSummary != "" {
		fmt.Fprintf(&b, "%s\n\n", ia.RivalsSummary)
	}
	for _, e := range []*model.IndirectEntry{ia.ComparativeHome, ia.ComparativeAway} {
		if e != nil && e.Description != "" {
			fmt.Fprintf(&b, "- %s\n", e.Description)
		}
	}
	return b.String()
}
