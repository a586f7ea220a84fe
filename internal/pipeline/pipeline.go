// Package pipeline orchestrates the warehouse build in dependency order:
// staging, then the two dimensions, then the fact table, then the marts.
// A failed step halts every step that depends on its output.
package pipeline

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/dawitkb/medwarehouse/internal/channels"
	"github.com/dawitkb/medwarehouse/internal/config"
	"github.com/dawitkb/medwarehouse/internal/datedim"
	"github.com/dawitkb/medwarehouse/internal/facts"
	"github.com/dawitkb/medwarehouse/internal/marts"
	"github.com/dawitkb/medwarehouse/internal/staging"
	"github.com/dawitkb/medwarehouse/internal/warehouse"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full build.
type Result struct {
	RunID string
	AsOf  time.Time
	Steps []StepResult
}

// Failed reports whether any step errored.
func (r *Result) Failed() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Pipeline orchestrates the 6-step warehouse build.
type Pipeline struct {
	cfg *config.Config
	db  *warehouse.DB
}

// New creates a new pipeline.
func New(cfg *config.Config, db *warehouse.DB) *Pipeline {
	return &Pipeline{cfg: cfg, db: db}
}

// Run executes the full build. The asOf time anchors every build-time-relative
// computation (future-date checks, activity status, posts-last-7-days), so
// two runs at the same instant produce identical tables.
func (p *Pipeline) Run(asOf time.Time) *Result {
	runID := uuid.NewString()
	r := &Result{RunID: runID, AsOf: asOf}
	run := &warehouse.BuildRun{RunID: runID, AsOf: asOf.Format(warehouse.DateTimeLayout)}

	if err := p.db.StartBuildRun(run.RunID, run.AsOf); err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Start", Err: err})
		return r
	}

	// Step 1: Staging. Everything downstream reads its output.
	step, stagingResult := p.runStaging(asOf)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		p.finish(run, r)
		return r
	}
	run.RawCount = stagingResult.RawCount
	run.StagedCount = stagingResult.Staged
	run.FlaggedCount = stagingResult.Flagged
	run.NullDateDropped = stagingResult.NullDateDropped
	run.FutureDropped = stagingResult.FutureDropped

	// Steps 2+3: the dimensions are independent of each other.
	step, dateResult := p.runDateDim()
	r.Steps = append(r.Steps, step)
	dateErr := step.Err
	if dateResult != nil {
		run.DateCount = dateResult.Days
	}

	step, channelResult := p.runChannelDim(asOf)
	r.Steps = append(r.Steps, step)
	if step.Err != nil || dateErr != nil {
		p.finish(run, r)
		return r
	}
	run.ChannelCount = channelResult.Channels

	// Step 4: Facts require both dimensions.
	step, factResult := p.runFacts()
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		p.finish(run, r)
		return r
	}
	run.FactCount = factResult.Facts
	run.DroppedNoChannel = factResult.DroppedNoChannel
	run.DroppedNoDate = factResult.DroppedNoDate

	// Steps 5+6: marts read only facts and dimensions.
	step, productResult := p.runProductMart()
	r.Steps = append(r.Steps, step)
	if productResult != nil {
		run.ProductCount = productResult.Products
	}

	step, perfResult := p.runPerformanceMart(asOf)
	r.Steps = append(r.Steps, step)
	if perfResult != nil {
		run.PerformanceCount = perfResult.Channels
	}

	p.finish(run, r)
	return r
}

// DryRun shows what a build would do using current table counts.
func (p *Pipeline) DryRun() *Result {
	r := &Result{}

	stats, err := p.db.GetStats()
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Staging", Err: err})
		return r
	}

	r.Steps = append(r.Steps,
		StepResult{Name: "Staging", Summary: fmt.Sprintf("[dry-run] %d raw messages to stage", stats.RawMessages)},
		StepResult{Name: "Date dimension", Summary: fmt.Sprintf("[dry-run] %d calendar days present", stats.Dates)},
		StepResult{Name: "Channel dimension", Summary: fmt.Sprintf("[dry-run] %d channels present", stats.Channels)},
		StepResult{Name: "Facts", Summary: fmt.Sprintf("[dry-run] %d fact rows present", stats.Facts)},
		StepResult{Name: "Product mart", Summary: fmt.Sprintf("[dry-run] %d products present", stats.Products)},
		StepResult{Name: "Performance mart", Summary: fmt.Sprintf("[dry-run] %d channel rollups present", stats.PerformanceRows)},
	)
	return r
}

func (p *Pipeline) finish(run *warehouse.BuildRun, r *Result) {
	run.Status = "succeeded"
	if r.Failed() {
		run.Status = "failed"
	}
	if err := p.db.FinishBuildRun(run); err != nil {
		log.Printf("Error recording build run: %v", err)
	}
}

func (p *Pipeline) runStaging(asOf time.Time) (StepResult, *staging.Result) {
	log.Println("Step 1/6: Staging raw messages...")
	result, err := staging.NewStager(p.db).Run(asOf)
	if err != nil {
		return StepResult{Name: "Staging", Err: err}, nil
	}
	return StepResult{
		Name: "Staging",
		Summary: fmt.Sprintf("Staged %d of %d raw messages (%d flagged, %d null dates, %d future-dated excluded)",
			result.Staged, result.RawCount, result.Flagged, result.NullDateDropped, result.FutureDropped),
	}, result
}

func (p *Pipeline) runDateDim() (StepResult, *datedim.Result) {
	log.Println("Step 2/6: Building date dimension...")
	start, end, err := p.cfg.DateRange()
	if err != nil {
		return StepResult{Name: "Date dimension", Err: err}, nil
	}
	result, err := datedim.NewBuilder(p.db).Run(start, end)
	if err != nil {
		return StepResult{Name: "Date dimension", Err: err}, nil
	}
	return StepResult{
		Name:    "Date dimension",
		Summary: fmt.Sprintf("%d days in range, %d rows added", result.Days, result.RowsAdded),
	}, result
}

func (p *Pipeline) runChannelDim(asOf time.Time) (StepResult, *channels.Result) {
	log.Println("Step 3/6: Building channel dimension...")
	result, err := channels.NewBuilder(p.db, p.cfg.Classification).Run(asOf)
	if err != nil {
		return StepResult{Name: "Channel dimension", Err: err}, nil
	}
	return StepResult{
		Name:    "Channel dimension",
		Summary: fmt.Sprintf("%d channels from %d valid messages", result.Channels, result.Messages),
	}, result
}

func (p *Pipeline) runFacts() (StepResult, *facts.Result) {
	log.Println("Step 4/6: Building fact table...")
	result, err := facts.NewBuilder(p.db).Run()
	if err != nil {
		return StepResult{Name: "Facts", Err: err}, nil
	}
	return StepResult{
		Name: "Facts",
		Summary: fmt.Sprintf("%d fact rows (%d dropped without channel, %d outside date range)",
			result.Facts, result.DroppedNoChannel, result.DroppedNoDate),
	}, result
}

func (p *Pipeline) runProductMart() (StepResult, *marts.ProductResult) {
	log.Println("Step 5/6: Building product mention mart...")
	result, err := marts.NewProductBuilder(p.db, p.cfg.ProductCategories).Run()
	if err != nil {
		return StepResult{Name: "Product mart", Err: err}, nil
	}
	return StepResult{
		Name:    "Product mart",
		Summary: fmt.Sprintf("%d products from %d mentions", result.Products, result.Mentions),
	}, result
}

func (p *Pipeline) runPerformanceMart(asOf time.Time) (StepResult, *marts.PerformanceResult) {
	log.Println("Step 6/6: Building channel performance mart...")
	result, err := marts.NewPerformanceBuilder(p.db).Run(asOf)
	if err != nil {
		return StepResult{Name: "Performance mart", Err: err}, nil
	}
	return StepResult{
		Name:    "Performance mart",
		Summary: fmt.Sprintf("%d channel rollups", result.Channels),
	}, result
}
