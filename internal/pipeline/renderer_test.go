package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ppiankov/estudio/internal/model"
)

func sampleReport(t *testing.T) *model.AnalysisReport {
	t.Helper()
	d := sampleDossier()
	d.HomeOverUnder = model.OverUnderStats{OverPct: 60, UnderPct: 40, Total: 10}
	a := NewAnalyzer(NewDirSource("testdata"), WithClock(fixedClock))
	return a.BuildReport(&d)
}

func TestRenderer_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "2401.json")
	if err := NewRenderer(true).RenderJSON(sampleReport(t), path); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var decoded model.AnalysisReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.MatchID != "2401" || decoded.Market.Status != model.StatusAnalyzed {
		t.Errorf("decoded report = %+v", decoded)
	}
}

func TestRenderer_Markdown(t *testing.T) {
	md := NewRenderer(true).Markdown(sampleReport(t))

	for _, want := range []string{
		"# Alpha vs Beta",
		"- **Match:** 2401",
		"- **League:** Liga",
		"## Market analysis vs. H2H history",
		"## Indirect precedents",
		"## Standings",
		"| Alpha | 1 | 10 | N/A |",
		"## Over/under record",
		"| Alpha | 60% | 40% | 0% | 10 |",
		"_Generated by estudio from dir:testdata at 2026-03-01 12:00:00 UTC.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
}

func TestRenderer_MarkdownWithoutFooterOrTables(t *testing.T) {
	report := sampleReport(t)
	report.HomeStandings = model.Standings{}
	report.HomeOverUnder = model.OverUnderStats{}

	md := NewRenderer(false).Markdown(report)
	for _, unwanted := range []string{"## Standings", "## Over/under record", "Generated by estudio"} {
		if strings.Contains(md, unwanted) {
			t.Errorf("markdown should not contain %q", unwanted)
		}
	}
}

func TestRenderer_Summary(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(false).RenderSummary(&buf, sampleReport(t))
	out := buf.String()

	if !strings.Contains(out, "Alpha vs Beta (match 2401)") {
		t.Errorf("summary header missing: %q", out)
	}
	if !strings.Contains(out, "stadium: AH") || !strings.Contains(out, "NOT SUPERADA") {
		t.Errorf("stadium line missing: %q", out)
	}
	if !strings.Contains(out, "same match as the stadium precedent") {
		t.Errorf("duplicate general precedent not reported: %q", out)
	}
}

func TestRenderer_SummaryInsufficientData(t *testing.T) {
	report := sampleReport(t)
	report.Market.Status = model.StatusInsufficientData

	var buf bytes.Buffer
	NewRenderer(false).RenderSummary(&buf, report)
	if !strings.Contains(buf.String(), "Not enough data") {
		t.Errorf("summary = %q", buf.String())
	}
}

func TestRenderReport_WritesLLMFile(t *testing.T) {
	dir := t.TempDir()
	report := sampleReport(t)
	report.LLM = &model.LLMSummary{Enabled: true, Provider: "mock", SummaryMD: "Alpha covered."}
	log, _ := test.NewNullLogger()

	jsonPath := filepath.Join(dir, "2401.json")
	mdPath := filepath.Join(dir, "2401.md")
	if err := RenderReport(NewRenderer(true), report, jsonPath, mdPath, log); err != nil {
		t.Fatalf("RenderReport: %v", err)
	}

	for _, p := range []string{jsonPath, mdPath, filepath.Join(dir, "2401.llm.md")} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s: %v", p, err)
		}
	}
	llmMD, _ := os.ReadFile(filepath.Join(dir, "2401.llm.md"))
	if !strings.Contains(string(llmMD), "Alpha covered.") {
		t.Errorf("LLM markdown = %q", llmMD)
	}
}

func TestRenderReport_SkipsDisabledLLM(t *testing.T) {
	dir := t.TempDir()
	report := sampleReport(t)
	report.LLM = &model.LLMSummary{Enabled: false}
	log, _ := test.NewNullLogger()

	mdPath := filepath.Join(dir, "2401.md")
	if err := RenderReport(NewRenderer(true), report, "", mdPath, log); err != nil {
		t.Fatalf("RenderReport: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "2401.llm.md")); !os.IsNotExist(err) {
		t.Errorf("LLM file should not exist, stat err = %v", err)
	}
}
