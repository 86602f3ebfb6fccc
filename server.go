// FILE: server.go
// Package main – HTTP API behind the dashboard.
//
// Routes:
//   GET  /healthz            – liveness
//   GET  /metrics            – Prometheus exposition
//   GET  /api/sales?n=300    – last n (date, sales) points of the loaded series
//   GET  /api/weather        – live weather, modifier and reason
//   POST /api/simulate       – promotion decision with live weather (or a given
//                              {"condition": "..."}), recorded to history
//   GET  /api/decisions      – recent decisions (?limit=20)
//
// The series and artifacts are loaded once at startup and only read afterwards.
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// weatherSource is satisfied by *WeatherClient; tests swap in a fixed report.
type weatherSource interface {
	Current(ctx context.Context) WeatherReport
}

type Server struct {
	cfg     Config
	series  RawTable
	arts    *Artifacts
	history *History
	weather weatherSource
}

func NewServer(cfg Config, series RawTable, arts *Artifacts, history *History, weather weatherSource) *Server {
	return &Server{cfg: cfg, series: series, arts: arts, history: history, weather: weather}
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(cors.Default())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok\n") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/sales", s.handleSales)
	api.GET("/weather", s.handleWeather)
	api.POST("/simulate", s.handleSimulate)
	api.GET("/decisions", s.handleDecisions)
	return r
}

type salesPoint struct {
	Date  string  `json:"date"`
	Sales float64 `json:"sales"`
}

func (s *Server) handleSales(c *gin.Context) {
	n, err := strconv.Atoi(c.DefaultQuery("n", "300"))
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "n must be a positive integer"})
		return
	}
	t := TailRaw(s.series, n)
	sales := t.Columns[ColSales]
	out := make([]salesPoint, 0, t.Len())
	for i, d := range t.Dates {
		p := salesPoint{Date: dayKey(d)}
		if i < len(sales) {
			p.Sales = sales[i]
		}
		out = append(out, p)
	}
	c.JSON(http.StatusOK, gin.H{"points": out})
}

func (s *Server) handleWeather(c *gin.Context) {
	rep := s.weather.Current(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"report":   rep,
		"modifier": WeatherModifier(rep.Condition),
		"reason":   WeatherReason(rep.Condition),
	})
}

// simulateRequest is the optional POST body; an empty body reads live weather.
type simulateRequest struct {
	Condition string `json:"condition" binding:"omitempty,max=64"`
}

func (s *Server) handleSimulate(c *gin.Context) {
	if s.arts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model not trained; run `promocast train` first"})
		return
	}
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var rep WeatherReport
	if req.Condition != "" {
		rep = WeatherReport{Condition: req.Condition, TempC: 20}
	} else {
		rep = s.weather.Current(c.Request.Context())
	}
	res, err := Simulate(s.cfg, s.arts, s.series, rep)
	if err != nil {
		logger.Error("simulate failed", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	body := gin.H{
		"weather":  rep,
		"reason":   WeatherReason(rep.Condition),
		"decision": res,
		"lift":     res.Lift(),
		"summary":  res.Summary(),
	}
	if s.history != nil {
		rec, err := s.history.Record(c.Request.Context(), s.arts.Meta.RunID, rep.Condition, res)
		if err != nil {
			logger.Warn("history record failed", zap.Error(err))
		} else {
			body["id"] = rec.ID
		}
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleDecisions(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusOK, gin.H{"decisions": []DecisionRecord{}})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	recs, err := s.history.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if recs == nil {
		recs = []DecisionRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"decisions": recs})
}
