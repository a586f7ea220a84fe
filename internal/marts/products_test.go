package marts

import (
	"testing"

	"github.com/dawitkb/medwarehouse/internal/config"
	"github.com/dawitkb/medwarehouse/internal/warehouse"
)

func fact(id int64, channelKey, dateKey, views, forwards int, products ...string) warehouse.MessageFact {
	return warehouse.MessageFact{
		MessageID:         id,
		ChannelKey:        channelKey,
		DateKey:           dateKey,
		ViewCount:         views,
		ForwardCount:      forwards,
		PotentialProducts: products,
	}
}

func TestBuildProductSummariesFanOut(t *testing.T) {
	facts := []warehouse.MessageFact{
		fact(1, 1, 20240610, 100, 2, "Paracetamol", "Amoxicillin"),
		fact(2, 2, 20240615, 50, 0, "paracetamol "),
		fact(3, 1, 20240612, 30, 1),
	}

	products, mentions := BuildProductSummaries(facts, nil)
	if mentions != 3 {
		t.Errorf("expected 3 mentions, got %d", mentions)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	// Normalization folds "Paracetamol" and "paracetamol " together.
	p := products[0]
	if p.ProductName != "paracetamol" {
		t.Fatalf("expected paracetamol first by mentions, got %q", p.ProductName)
	}
	if p.MentionCount != 2 || p.ChannelCount != 2 {
		t.Errorf("unexpected counts: %+v", p)
	}
	if p.TotalViews != 150 || p.AvgViews != 75 {
		t.Errorf("unexpected views: %+v", p)
	}
	if p.FirstMentioned != "2024-06-10" || p.LastMentioned != "2024-06-15" {
		t.Errorf("unexpected mention range: %s .. %s", p.FirstMentioned, p.LastMentioned)
	}
}

func TestBuildProductSummariesSkipsEmptyNames(t *testing.T) {
	facts := []warehouse.MessageFact{fact(1, 1, 20240610, 10, 0, "  ", "", "aspirin")}
	products, mentions := BuildProductSummaries(facts, nil)
	if mentions != 1 || len(products) != 1 || products[0].ProductName != "aspirin" {
		t.Errorf("expected only aspirin counted, got %d mentions, %+v", mentions, products)
	}
}

func TestBuildProductSummariesEmptyFacts(t *testing.T) {
	products, mentions := BuildProductSummaries(nil, nil)
	if mentions != 0 || len(products) != 0 {
		t.Errorf("expected empty mart, got %d mentions, %d products", mentions, len(products))
	}
}

func TestBuildProductSummariesRanks(t *testing.T) {
	facts := []warehouse.MessageFact{
		// "a" mentioned twice with low views, "b" once with high views,
		// "c" once with high views (ties "b" on views, name breaks it).
		fact(1, 1, 20240610, 10, 0, "a"),
		fact(2, 1, 20240611, 10, 0, "a"),
		fact(3, 1, 20240612, 500, 0, "c"),
		fact(4, 1, 20240613, 500, 0, "b"),
	}
	products, _ := BuildProductSummaries(facts, nil)

	byName := map[string]warehouse.ProductSummary{}
	for _, p := range products {
		byName[p.ProductName] = p
	}
	if byName["a"].PopularityRank != 1 {
		t.Errorf("expected a popularity rank 1, got %d", byName["a"].PopularityRank)
	}
	if byName["b"].PopularityRank != 2 || byName["c"].PopularityRank != 3 {
		t.Errorf("expected name tie-break b then c, got b=%d c=%d",
			byName["b"].PopularityRank, byName["c"].PopularityRank)
	}
	if byName["b"].ViewsRank != 1 || byName["c"].ViewsRank != 2 || byName["a"].ViewsRank != 3 {
		t.Errorf("unexpected views ranks: b=%d c=%d a=%d",
			byName["b"].ViewsRank, byName["c"].ViewsRank, byName["a"].ViewsRank)
	}

	// Output slice is ordered by popularity rank.
	if products[0].ProductName != "a" {
		t.Errorf("expected a first, got %q", products[0].ProductName)
	}
}

func TestCategorizeProduct(t *testing.T) {
	categories := config.DefaultProductCategories()
	cases := []struct {
		name string
		want string
	}{
		{"paracetamol 500mg tablet", "Tablets"},
		{"amoxicillin capsule", "Capsules"},
		{"hydrocortisone cream", "Topical"},
		{"cough syrup", "Liquids"},
		{"insulin injection", "Injectables"},
		{"vitamin c", "Supplements"},
		{"blood pressure device", "Medical Devices"},
		{"bandage", "Other"},
	}
	for _, c := range cases {
		if got := CategorizeProduct(c.name, categories); got != c.want {
			t.Errorf("CategorizeProduct(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestCategorizeProductPriority(t *testing.T) {
	// "pill" (Tablets) is listed before "gel" (Topical).
	got := CategorizeProduct("pill gel combo", config.DefaultProductCategories())
	if got != "Tablets" {
		t.Errorf("CategorizeProduct = %q, want Tablets", got)
	}
}

func TestExtractStrength(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"paracetamol 500mg", "500mg"},
		{"paracetamol 500 mg tablets", "500mg"},
		{"syrup 100 ml", "100ml"},
		{"powder 2.5g", "2.5g"},
		{"amoxicillin 250mg or 500mg", "250mg"},
	}
	for _, c := range cases {
		got := ExtractStrength(c.name)
		if got == nil || *got != c.want {
			t.Errorf("ExtractStrength(%q) = %v, want %q", c.name, got, c.want)
		}
	}

	if got := ExtractStrength("plain aspirin"); got != nil {
		t.Errorf("expected nil strength, got %q", *got)
	}
	if got := ExtractStrength("item 500kg"); got != nil {
		t.Errorf("expected nil for unknown unit, got %q", *got)
	}
}
