package pipeline

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/dawitkb/medwarehouse/internal/config"
	"github.com/dawitkb/medwarehouse/internal/warehouse"
)

var asOf = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *warehouse.DB {
	t.Helper()
	db, err := warehouse.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		DateDimension:     config.DateDimension{StartDate: "2024-06-01", EndDate: "2024-06-30"},
		Classification:    config.DefaultClassification(),
		ProductCategories: config.DefaultProductCategories(),
	}
}

func ptr(s string) *string { return &s }

func seedRaw(t *testing.T, db *warehouse.DB) {
	t.Helper()
	messages := []warehouse.RawMessage{
		{MessageID: 1, ChannelName: "city_pharmacy", MessageDate: ptr("2024-06-10 09:00:00"),
			MessageText: ptr("Paracetamol 500mg in stock"), Views: 120, Forwards: 3,
			ImagePath: ptr("photos/1.jpg"), HasMedia: true, PotentialProducts: []string{"Paracetamol"}},
		{MessageID: 2, ChannelName: "city_pharmacy", MessageDate: ptr("2024-06-28 10:00:00"),
			MessageText: ptr("Amoxicillin capsules"), Views: 80, PotentialProducts: []string{"Amoxicillin"}},
		{MessageID: 3, ChannelName: "beauty_corner", MessageDate: ptr("2024-06-15 11:00:00"),
			MessageText: ptr("New skin cream"), Views: 40},
		{MessageID: 4, ChannelName: "city_pharmacy", MessageText: ptr("no date, dropped")},
		{MessageID: 5, ChannelName: "city_pharmacy", MessageDate: ptr("2030-01-01 00:00:00"),
			MessageText: ptr("future, excluded")},
	}
	for i := range messages {
		if _, err := db.InsertRawMessage(&messages[i]); err != nil {
			t.Fatalf("seeding raw messages: %v", err)
		}
	}
}

func TestRunFullBuild(t *testing.T) {
	db := openTestDB(t)
	seedRaw(t, db)

	result := New(testConfig(), db).Run(asOf)
	if result.Failed() {
		for _, s := range result.Steps {
			if s.Err != nil {
				t.Errorf("step %s failed: %v", s.Name, s.Err)
			}
		}
		t.FailNow()
	}
	if len(result.Steps) != 6 {
		t.Fatalf("expected 6 steps, got %d", len(result.Steps))
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.StagedMessages != 3 {
		t.Errorf("expected 3 staged (1 null date, 1 future), got %d", stats.StagedMessages)
	}
	if stats.Dates != 30 {
		t.Errorf("expected 30 days of June, got %d", stats.Dates)
	}
	if stats.Channels != 2 || stats.Facts != 3 {
		t.Errorf("unexpected star schema: %+v", stats)
	}
	if stats.Products != 2 || stats.PerformanceRows != 2 {
		t.Errorf("unexpected marts: %+v", stats)
	}

	run, err := db.GetLastBuildRun()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run == nil || run.Status != "succeeded" {
		t.Fatalf("expected succeeded run, got %+v", run)
	}
	if run.RawCount != 5 || run.StagedCount != 3 || run.NullDateDropped != 1 || run.FutureDropped != 1 {
		t.Errorf("unexpected staging counts: %+v", run)
	}
	if run.FactCount != 3 || run.ProductCount != 2 || run.PerformanceCount != 2 {
		t.Errorf("unexpected downstream counts: %+v", run)
	}
}

func TestRunDeterministicRebuild(t *testing.T) {
	db := openTestDB(t)
	seedRaw(t, db)
	p := New(testConfig(), db)

	if r := p.Run(asOf); r.Failed() {
		t.Fatalf("first build failed: %+v", r.Steps)
	}
	channels1, _ := db.GetChannels()
	facts1, _ := db.GetFacts()
	products1, _ := db.GetProductSummaries(0)

	if r := p.Run(asOf); r.Failed() {
		t.Fatalf("second build failed: %+v", r.Steps)
	}
	channels2, _ := db.GetChannels()
	facts2, _ := db.GetFacts()
	products2, _ := db.GetProductSummaries(0)

	if !reflect.DeepEqual(channels1, channels2) {
		t.Error("channel dimension changed across identical rebuilds")
	}
	if !reflect.DeepEqual(facts1, facts2) {
		t.Error("fact table changed across identical rebuilds")
	}
	if !reflect.DeepEqual(products1, products2) {
		t.Error("product mart changed across identical rebuilds")
	}
}

func TestRunEmptyWarehouse(t *testing.T) {
	db := openTestDB(t)
	result := New(testConfig(), db).Run(asOf)
	if result.Failed() {
		t.Fatalf("expected empty build to succeed: %+v", result.Steps)
	}

	stats, _ := db.GetStats()
	if stats.Dates != 30 {
		t.Errorf("expected date dimension built regardless of data, got %d", stats.Dates)
	}
	if stats.Channels != 0 || stats.Facts != 0 {
		t.Errorf("expected empty star schema, got %+v", stats)
	}
}

func TestRunHaltsOnBadDateRange(t *testing.T) {
	db := openTestDB(t)
	seedRaw(t, db)

	cfg := testConfig()
	cfg.DateDimension = config.DateDimension{StartDate: "2024-12-31", EndDate: "2024-01-01"}

	result := New(cfg, db).Run(asOf)
	if !result.Failed() {
		t.Fatal("expected build to fail on inverted date range")
	}
	// Staging and both dimension steps run; facts and marts never do.
	if len(result.Steps) != 3 {
		t.Errorf("expected halt after dimensions, got %d steps", len(result.Steps))
	}

	run, err := db.GetLastBuildRun()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run == nil || run.Status != "failed" {
		t.Errorf("expected failed run recorded, got %+v", run)
	}
}

func TestDryRun(t *testing.T) {
	db := openTestDB(t)
	seedRaw(t, db)

	result := New(testConfig(), db).DryRun()
	if result.Failed() {
		t.Fatalf("unexpected failure: %+v", result.Steps)
	}
	if len(result.Steps) != 6 {
		t.Errorf("expected 6 planned steps, got %d", len(result.Steps))
	}

	// A dry run never writes.
	stats, _ := db.GetStats()
	if stats.StagedMessages != 0 || stats.Dates != 0 {
		t.Errorf("dry run mutated the warehouse: %+v", stats)
	}
	run, _ := db.GetLastBuildRun()
	if run != nil {
		t.Error("dry run recorded a build run")
	}
}
