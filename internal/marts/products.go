// Package marts derives the analytic summary tables from the fact table and
// the channel dimension: the product mention mart and the channel
// performance mart.
package marts

import (
	"fmt"
	"log"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dawitkb/medwarehouse/internal/config"
	"github.com/dawitkb/medwarehouse/internal/warehouse"
)

// OtherCategory is assigned when no product pattern matches.
const OtherCategory = "Other"

// strengthPattern captures the first dosage token: a number followed by an
// optional space and a unit.
var strengthPattern = regexp.MustCompile(`\b(\d+(?:\.\d+)?) ?(mg|ml|g)\b`)

// ProductResult holds the results of a product mart build.
type ProductResult struct {
	Mentions int
	Products int
}

// ProductBuilder builds the product mention mart.
type ProductBuilder struct {
	db         *warehouse.DB
	categories []config.ProductCategory
}

// NewProductBuilder creates a product mart builder with the given category
// patterns (evaluated in order, first match wins).
func NewProductBuilder(db *warehouse.DB, categories []config.ProductCategory) *ProductBuilder {
	if len(categories) == 0 {
		categories = config.DefaultProductCategories()
	}
	return &ProductBuilder{db: db, categories: categories}
}

// Run reads the fact table, aggregates product mentions, and replaces the
// product mart.
func (b *ProductBuilder) Run() (*ProductResult, error) {
	facts, err := b.db.GetFacts()
	if err != nil {
		return nil, err
	}

	products, mentions := BuildProductSummaries(facts, b.categories)

	if err := b.db.ReplaceProductSummaries(products); err != nil {
		return nil, err
	}

	log.Printf("Product mart complete: %d products from %d mentions", len(products), mentions)
	return &ProductResult{Mentions: mentions, Products: len(products)}, nil
}

// productAgg accumulates per-product aggregates during the fan-out pass.
type productAgg struct {
	name        string
	mentions    int
	channels    map[int]bool
	sumViews    int
	sumForwards int
	firstDay    string
	lastDay     string
}

// BuildProductSummaries fans each fact row out into one row per potential
// product, normalizes names (lower-case, trimmed; empty names excluded), and
// aggregates per product. Both ranks are assigned by stable sort and
// enumeration with product_name ascending as the tie-break, so input order
// never affects the result. Returns the summaries ordered by popularity_rank
// and the total mention count.
func BuildProductSummaries(facts []warehouse.MessageFact, categories []config.ProductCategory) ([]warehouse.ProductSummary, int) {
	groups := make(map[string]*productAgg)
	var order []string
	mentions := 0

	for i := range facts {
		f := &facts[i]
		day := dayFromKey(f.DateKey)
		for _, raw := range f.PotentialProducts {
			name := strings.ToLower(strings.TrimSpace(raw))
			if name == "" {
				continue
			}
			mentions++

			g, ok := groups[name]
			if !ok {
				g = &productAgg{name: name, channels: make(map[int]bool), firstDay: day, lastDay: day}
				groups[name] = g
				order = append(order, name)
			}
			g.mentions++
			g.channels[f.ChannelKey] = true
			g.sumViews += f.ViewCount
			g.sumForwards += f.ForwardCount
			if day < g.firstDay {
				g.firstDay = day
			}
			if day > g.lastDay {
				g.lastDay = day
			}
		}
	}

	products := make([]warehouse.ProductSummary, 0, len(order))
	for _, name := range order {
		g := groups[name]
		products = append(products, warehouse.ProductSummary{
			ProductName:     g.name,
			ProductCategory: CategorizeProduct(g.name, categories),
			Strength:        ExtractStrength(g.name),
			MentionCount:    g.mentions,
			ChannelCount:    len(g.channels),
			TotalViews:      g.sumViews,
			TotalForwards:   g.sumForwards,
			AvgViews:        round2(float64(g.sumViews) / float64(g.mentions)),
			AvgForwards:     round2(float64(g.sumForwards) / float64(g.mentions)),
			FirstMentioned:  g.firstDay,
			LastMentioned:   g.lastDay,
		})
	}

	rankProducts(products)
	return products, mentions
}

// CategorizeProduct returns the first matching category for a normalized
// product name, checking each pattern as a substring in list order.
func CategorizeProduct(name string, categories []config.ProductCategory) string {
	for _, c := range categories {
		for _, p := range c.Patterns {
			if strings.Contains(name, strings.ToLower(p)) {
				return c.Category
			}
		}
	}
	return OtherCategory
}

// ExtractStrength captures the first quantity+unit token (mg, ml or g) in a
// normalized product name, e.g. "paracetamol 500mg" -> "500mg". Absence
// yields nil, not an error.
func ExtractStrength(name string) *string {
	m := strengthPattern.FindStringSubmatch(name)
	if m == nil {
		return nil
	}
	s := m[1] + m[2]
	return &s
}

// rankProducts assigns popularity_rank (by mention_count) and views_rank
// (by total_views), both descending with product_name ascending on ties,
// and leaves the slice ordered by popularity_rank.
func rankProducts(products []warehouse.ProductSummary) {
	byViews := make([]*warehouse.ProductSummary, len(products))
	for i := range products {
		byViews[i] = &products[i]
	}
	sort.SliceStable(byViews, func(i, j int) bool {
		if byViews[i].TotalViews != byViews[j].TotalViews {
			return byViews[i].TotalViews > byViews[j].TotalViews
		}
		return byViews[i].ProductName < byViews[j].ProductName
	})
	for i, p := range byViews {
		p.ViewsRank = i + 1
	}

	sort.SliceStable(products, func(i, j int) bool {
		if products[i].MentionCount != products[j].MentionCount {
			return products[i].MentionCount > products[j].MentionCount
		}
		return products[i].ProductName < products[j].ProductName
	})
	for i := range products {
		products[i].PopularityRank = i + 1
	}
}

// dayFromKey converts a YYYYMMDD date key back to its YYYY-MM-DD form.
func dayFromKey(key int) string {
	return fmt.Sprintf("%04d-%02d-%02d", key/10000, key/100%100, key%100)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// parseDay is a small helper shared with the performance mart.
func parseDay(s string) (time.Time, error) {
	return time.Parse(warehouse.DateLayout, s)
}
