// Package report renders a completed research run as a markdown
// summary document.
package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"ideaforge/internal/agent/core"
)

// Render builds the workflow report for a finished (or aborted) run.
// Sections for slots the run never filled are left out.
func Render(st core.PipelineState) string {
	var b strings.Builder
	b.WriteString("# 📊 Business Idea Generation Workflow Report\n\n")
	fmt.Fprintf(&b, "**Run Date:** %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString("---\n\n")

	step := st.CurrentStep
	if step == "" {
		step = "unknown"
	}
	fmt.Fprintf(&b, "### Final Step: `%s`\n\n", step)

	record := st.ResearchOutput

	if mr := record.MarketResearch; mr != nil {
		b.WriteString("## 📈 Market Research\n")
		fmt.Fprintf(&b, "- Market Trends: **%s**\n", joinOr(trendNames(mr.MarketTrends), "none identified"))
		fmt.Fprintf(&b, "- Competitors: **%s**\n", joinOr(competitorNames(mr.Competitors), "none identified"))
		fmt.Fprintf(&b, "- Growth Opportunities: **%s**\n\n", joinOr(mr.GrowthOpportunities, "none identified"))
	}

	if pp := record.PainPointDiscovery; pp != nil {
		b.WriteString("## 🎯 Pain Points\n")
		fmt.Fprintf(&b, "- Pain Points Discovered: **%s**\n", joinOr(painDescriptions(pp.PainPoints), "none identified"))
		fmt.Fprintf(&b, "- Pain Categories: **%s**\n\n", joinOr(pp.TopPainCategories, "none identified"))
	}

	if ideas := record.BusinessModelGenerator; ideas != nil && ideas.RecommendedIdea != "" {
		b.WriteString("## 💡 Recommended Idea\n")
		fmt.Fprintf(&b, "- **%s**\n\n", ideas.RecommendedIdea)
	}

	if scores := qualityScores(record); len(scores) > 0 {
		b.WriteString("## 📊 Quality Scores\n")
		for _, line := range scores {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	if len(st.Errors) > 0 {
		b.WriteString("## ❌ Errors\n")
		for _, e := range st.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
		b.WriteString("\n")
	}

	if len(st.ToolsUsed) > 0 {
		b.WriteString("## 🔧 Tools Used\n")
		fmt.Fprintf(&b, "- %s\n", strings.Join(st.ToolsUsed, ", "))
	}

	return b.String()
}

// Write renders the report and saves it to path.
func Write(path string, st core.PipelineState) error {
	return os.WriteFile(path, []byte(Render(st)), 0o644)
}

func qualityScores(record core.ResearchRecord) []string {
	var out []string
	if record.ResearchQualityScore != nil {
		out = append(out, fmt.Sprintf("- Overall Research Quality: **%.1f/10**\n", *record.ResearchQualityScore))
	}
	if record.MarketResearch != nil {
		out = append(out, fmt.Sprintf("- Market Research Confidence: **%.1f/10**\n", record.MarketResearch.ConfidenceScore))
	}
	if record.PainPointDiscovery != nil {
		out = append(out, fmt.Sprintf("- Pain Point Confidence: **%.1f/10**\n", record.PainPointDiscovery.ConfidenceScore))
	}
	return out
}

func trendNames(trends []core.MarketTrend) []string {
	out := make([]string, 0, len(trends))
	for _, t := range trends {
		if t.TrendName != "" {
			out = append(out, t.TrendName)
		}
	}
	return out
}

func competitorNames(competitors []core.CompetitorInfo) []string {
	out := make([]string, 0, len(competitors))
	for _, c := range competitors {
		if c.Name != "" {
			out = append(out, c.Name)
		}
	}
	return out
}

func painDescriptions(points []core.PainPoint) []string {
	out := make([]string, 0, len(points))
	for _, p := range points {
		if p.ProblemDescription != "" {
			out = append(out, p.ProblemDescription)
		}
	}
	return out
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, "; ")
}
