// Package report writes a human-readable summary of the built warehouse:
// table counts, the latest build run, top channels, and top products. The
// markdown is also rendered to HTML.
package report

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/dawitkb/medwarehouse/internal/warehouse"
)

var md = goldmark.New()

const topN = 10

// Result holds the paths of the written report files.
type Result struct {
	MarkdownPath string
	HTMLPath     string
}

// Generator writes the warehouse report.
type Generator struct {
	db *warehouse.DB
}

// NewGenerator creates a new report generator.
func NewGenerator(db *warehouse.DB) *Generator {
	return &Generator{db: db}
}

// Run assembles the report and writes warehouse_report.md and
// warehouse_report.html into dir.
func (g *Generator) Run(dir string) (*Result, error) {
	body, err := g.assemble()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	mdPath := filepath.Join(dir, "warehouse_report.md")
	if err := os.WriteFile(mdPath, []byte(body), 0o644); err != nil {
		return nil, fmt.Errorf("writing markdown report: %w", err)
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return nil, fmt.Errorf("rendering report HTML: %w", err)
	}
	htmlPath := filepath.Join(dir, "warehouse_report.html")
	if err := os.WriteFile(htmlPath, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("writing HTML report: %w", err)
	}

	log.Printf("Report written to %s", mdPath)
	return &Result{MarkdownPath: mdPath, HTMLPath: htmlPath}, nil
}

func (g *Generator) assemble() (string, error) {
	stats, err := g.db.GetStats()
	if err != nil {
		return "", err
	}
	run, err := g.db.GetLastBuildRun()
	if err != nil {
		return "", err
	}
	channels, err := g.db.GetChannels()
	if err != nil {
		return "", err
	}
	products, err := g.db.GetProductSummaries(topN)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# Warehouse Report\n\n")

	b.WriteString("## Tables\n\n")
	b.WriteString("| Table | Rows |\n|---|---|\n")
	fmt.Fprintf(&b, "| raw_messages | %d |\n", stats.RawMessages)
	fmt.Fprintf(&b, "| stg_messages | %d |\n", stats.StagedMessages)
	fmt.Fprintf(&b, "| dim_dates | %d |\n", stats.Dates)
	fmt.Fprintf(&b, "| dim_channels | %d |\n", stats.Channels)
	fmt.Fprintf(&b, "| fct_messages | %d |\n", stats.Facts)
	fmt.Fprintf(&b, "| mart_product_summary | %d |\n", stats.Products)
	fmt.Fprintf(&b, "| mart_channel_performance | %d |\n", stats.PerformanceRows)

	b.WriteString("\n## Data Quality\n\n")
	fmt.Fprintf(&b, "- Staged messages flagged needs_review: %d\n", stats.NeedsReview)
	if run != nil {
		fmt.Fprintf(&b, "- Raw records without a usable date: %d\n", run.NullDateDropped)
		fmt.Fprintf(&b, "- Future-dated rows excluded: %d\n", run.FutureDropped)
		fmt.Fprintf(&b, "- Fact rows dropped (unresolved channel): %d\n", run.DroppedNoChannel)
		fmt.Fprintf(&b, "- Fact rows dropped (outside date range): %d\n", run.DroppedNoDate)
	}

	if run != nil {
		b.WriteString("\n## Last Build\n\n")
		fmt.Fprintf(&b, "- Run: %s\n", run.RunID)
		fmt.Fprintf(&b, "- As of: %s\n", run.AsOf)
		fmt.Fprintf(&b, "- Status: %s\n", run.Status)
	}

	if len(channels) > 0 {
		b.WriteString("\n## Channels\n\n")
		b.WriteString("| Key | Channel | Type | Posts | Avg Views | Status |\n|---|---|---|---|---|---|\n")
		for _, c := range channels {
			fmt.Fprintf(&b, "| %d | %s | %s | %d | %.2f | %s |\n",
				c.ChannelKey, c.ChannelName, c.ChannelType, c.TotalPosts, c.AvgViews, c.ActivityStatus)
		}
	}

	if len(products) > 0 {
		fmt.Fprintf(&b, "\n## Top %d Products\n\n", len(products))
		b.WriteString("| Rank | Product | Category | Mentions | Views |\n|---|---|---|---|---|\n")
		for _, p := range products {
			fmt.Fprintf(&b, "| %d | %s | %s | %d | %d |\n",
				p.PopularityRank, p.ProductName, p.ProductCategory, p.MentionCount, p.TotalViews)
		}
	}

	return b.String(), nil
}
