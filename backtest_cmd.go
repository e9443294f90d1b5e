package main

import (
	"fmt"
	"log"
	"os"

	"quantlab/backtest"
	"quantlab/config"
	"quantlab/metrics"
	"quantlab/recorder"
)

func runBacktest(btConfigPath, outPath, appConfigPath string, record bool) error {
	cfg, err := backtest.LoadRunConfig(btConfigPath)
	if err != nil {
		return err
	}

	runner := backtest.NewRunner()
	results, err := runner.Run(cfg)
	if err != nil {
		return err
	}
	metrics.BacktestsTotal.WithLabelValues(cfg.Strategy.Name()).Add(float64(len(results)))

	if record {
		rec, err := openRecorder(appConfigPath)
		if err != nil {
			return err
		}
		defer rec.Close()
		for _, res := range results {
			if len(res.Errors) > 0 {
				continue
			}
			if _, err := rec.RecordRun(res); err != nil {
				log.Printf("[WARN] 回测落库失败 %s: %v\n", res.Symbol, err)
			}
		}
	}

	if outPath == "" {
		return backtest.WriteResultsJSON(os.Stdout, results)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()
	return backtest.WriteResultsJSON(f, results)
}

// runCompare 在一个标的上并行对比全部策略，输出排名表
func runCompare(symbol, btConfigPath, outPath string) error {
	cfg := backtest.DefaultRunConfig()
	if _, err := os.Stat(btConfigPath); err == nil {
		loaded, err := backtest.LoadRunConfig(btConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	runner := backtest.NewRunner()
	bars, err := runner.LoadBars(symbol, cfg)
	if err != nil {
		return err
	}

	results, err := backtest.CompareStrategies(symbol, bars, cfg, nil)
	if err != nil {
		return err
	}
	for _, res := range results {
		metrics.BacktestsTotal.WithLabelValues(res.Strategy).Inc()
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	backtest.WriteComparisonTable(out, symbol, results)
	return nil
}

// openRecorder 按服务配置打开落库器，未启用时也强制使用SQLite默认路径
func openRecorder(appConfigPath string) (recorder.Recorder, error) {
	appCfg := config.GetConfig(appConfigPath)
	path := appCfg.RecorderPath
	if path == "" {
		path = config.DefaultConfig.RecorderPath
	}
	return recorder.NewSQLiteRecorder(path)
}
