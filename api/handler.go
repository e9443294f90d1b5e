package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"quantlab/backtest"
	"quantlab/config"
	"quantlab/metrics"
	"quantlab/recorder"
	"quantlab/scanner"
)

// Handler API处理器
type Handler struct {
	cfg     *config.Config
	rec     recorder.Recorder
	runner  *backtest.Runner
	scanner *scanner.Scanner
}

// NewHandler 创建处理器
func NewHandler(cfg *config.Config, rec recorder.Recorder) *Handler {
	return &Handler{
		cfg:     cfg,
		rec:     rec,
		runner:  backtest.NewRunner(),
		scanner: scanner.NewScanner(),
	}
}

// BacktestRequest 回测请求体
type BacktestRequest struct {
	Symbols             []string       `json:"symbols" binding:"required"`
	Days                int            `json:"days"`
	Start               string         `json:"start"`
	End                 string         `json:"end"`
	InitialCash         float64        `json:"initial_cash"`
	MonthlyContribution float64        `json:"monthly_contribution"`
	Strategy            string         `json:"strategy"`
	Params              map[string]any `json:"params"`
	// Record 为true时把结果落库
	Record bool `json:"record"`
}

func (r BacktestRequest) toRunConfig() (backtest.RunConfig, error) {
	cfg := backtest.DefaultRunConfig()
	cfg.Symbols = r.Symbols
	if r.Days > 0 {
		cfg.Days = r.Days
	}
	if r.InitialCash > 0 {
		cfg.InitialCash = r.InitialCash
	}
	if r.MonthlyContribution > 0 {
		cfg.MonthlyContribution = r.MonthlyContribution
	}
	if r.Start != "" {
		t, err := time.ParseInLocation("2006-01-02", r.Start, time.Local)
		if err != nil {
			return cfg, err
		}
		cfg.Start = t
	}
	if r.End != "" {
		t, err := time.ParseInLocation("2006-01-02", r.End, time.Local)
		if err != nil {
			return cfg, err
		}
		cfg.End = t
	}
	strat, err := backtest.BuildStrategy(r.Strategy, r.Params)
	if err != nil {
		return cfg, err
	}
	cfg.Strategy = strat
	return cfg, cfg.Validate()
}

// RunBacktest 执行回测
func (h *Handler) RunBacktest(c *gin.Context) {
	var req BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := req.toRunConfig()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.runner.Run(cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	metrics.BacktestsTotal.WithLabelValues(cfg.Strategy.Name()).Add(float64(len(results)))

	var runIDs []string
	if req.Record {
		for _, res := range results {
			if len(res.Errors) > 0 {
				continue
			}
			if id, err := h.rec.RecordRun(res); err == nil && id != "" {
				runIDs = append(runIDs, id)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"count":   len(results),
		"run_ids": runIDs,
		"data":    results,
	})
}

// CompareRequest 策略对比请求体
type CompareRequest struct {
	Symbol      string   `json:"symbol" binding:"required"`
	Days        int      `json:"days"`
	InitialCash float64  `json:"initial_cash"`
	Strategies  []string `json:"strategies"`
}

// CompareStrategies 同一标的上并行对比多个策略
func (h *Handler) CompareStrategies(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := backtest.DefaultRunConfig()
	if req.Days > 0 {
		cfg.Days = req.Days
	}
	if req.InitialCash > 0 {
		cfg.InitialCash = req.InitialCash
	}

	bars, err := h.runner.LoadBars(req.Symbol, cfg)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	results, err := backtest.CompareStrategies(req.Symbol, bars, cfg, req.Strategies)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for _, res := range results {
		metrics.BacktestsTotal.WithLabelValues(res.Strategy).Inc()
	}

	c.JSON(http.StatusOK, gin.H{
		"code":  0,
		"count": len(results),
		"data":  results,
	})
}

// GetStrategies 可用策略列表
func (h *Handler) GetStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": backtest.StrategyTypes(),
	})
}

// Scan 扫描监控列表的最新信号
func (h *Handler) Scan(c *gin.Context) {
	reports, err := h.scanner.Scan(scanner.Options{
		Watchlist: h.cfg.Watchlist,
		Days:      h.cfg.ScanDays,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":  0,
		"count": len(reports),
		"data":  reports,
	})
}

// GetRuns 查询已落库的回测运行
func (h *Handler) GetRuns(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := h.rec.ListRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":  0,
		"count": len(runs),
		"data":  runs,
	})
}
