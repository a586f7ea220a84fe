// Package server exposes the built warehouse as a read-only JSON API for
// analytical consumers.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"

	"github.com/dawitkb/medwarehouse/internal/warehouse"
)

// Server is the HTTP server for the analytical API.
type Server struct {
	db  *warehouse.DB
	mux *http.ServeMux
}

// New creates a new Server.
func New(db *warehouse.DB) *Server {
	s := &Server{db: db, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/channels", s.handleChannels)
	s.mux.HandleFunc("/api/reports/top-products", s.handleTopProducts)
	s.mux.HandleFunc("/api/reports/channel-performance", s.handleChannelPerformance)
	s.mux.HandleFunc("/api/reports/daily-trends", s.handleDailyTrends)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetStats()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"status": "ok",
		"stats":  stats,
	})
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := s.db.GetChannels()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	type channelView struct {
		ChannelKey      int     `json:"channel_key"`
		ChannelName     string  `json:"channel_name"`
		ChannelType     string  `json:"channel_type"`
		TotalPosts      int     `json:"total_posts"`
		AvgViews        float64 `json:"avg_views"`
		AvgForwards     float64 `json:"avg_forwards"`
		MediaPercentage float64 `json:"media_percentage"`
		ImagePercentage float64 `json:"image_percentage"`
		ActivityStatus  string  `json:"activity_status"`
		LastPostDate    string  `json:"last_post_date"`
	}

	views := make([]channelView, 0, len(channels))
	for _, c := range channels {
		views = append(views, channelView{
			ChannelKey:      c.ChannelKey,
			ChannelName:     c.ChannelName,
			ChannelType:     c.ChannelType,
			TotalPosts:      c.TotalPosts,
			AvgViews:        c.AvgViews,
			AvgForwards:     c.AvgForwards,
			MediaPercentage: c.MediaPercentage,
			ImagePercentage: c.ImagePercentage,
			ActivityStatus:  c.ActivityStatus,
			LastPostDate:    c.LastPostDate.Format(warehouse.DateLayout),
		})
	}

	writeJSON(w, map[string]any{
		"channels":       views,
		"total_channels": len(views),
	})
}

func (s *Server) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10, 1, 100)

	products, err := s.db.GetProductSummaries(limit)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"products":       products,
		"total_products": len(products),
	})
}

func (s *Server) handleChannelPerformance(w http.ResponseWriter, r *http.Request) {
	minPosts := queryInt(r, "min_posts", 1, 1, 1<<30)

	perf, err := s.db.GetChannelPerformance(minPosts)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"channels":       perf,
		"total_channels": len(perf),
	})
}

func (s *Server) handleDailyTrends(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7, 1, 365)

	daily, err := s.db.GetDailyActivity()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Aggregate across channels per day.
	type trend struct {
		FullDate       string `json:"full_date"`
		PostCount      int    `json:"post_count"`
		TotalViews     int    `json:"total_views"`
		ChannelsActive int    `json:"channels_active"`
	}
	byDay := make(map[string]*trend)
	var order []string
	for _, a := range daily {
		tr, ok := byDay[a.Day]
		if !ok {
			tr = &trend{FullDate: a.Day}
			byDay[a.Day] = tr
			order = append(order, a.Day)
		}
		tr.PostCount += a.Posts
		tr.TotalViews += a.TotalViews
		tr.ChannelsActive++
	}

	// Most recent first, capped to the requested window.
	sort.Strings(order)
	trends := make([]trend, 0, len(order))
	for i := len(order) - 1; i >= 0 && len(trends) < days; i-- {
		trends = append(trends, *byDay[order[i]])
	}

	writeJSON(w, map[string]any{
		"days_analyzed": days,
		"trends":        trends,
	})
}

func queryInt(r *http.Request, name string, def, min, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// Serve starts the HTTP server on the given port.
func Serve(db *warehouse.DB, port int) error {
	srv := New(db)
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
