package main

import (
	"fmt"
	"os"

	"quantlab/config"
	"quantlab/scanner"
)

func runScan(appConfigPath, outPath string, asJSON bool, days int, chart bool, chartDir string, chartBars int) error {
	appCfg := config.GetConfig(appConfigPath)

	opts := scanner.Options{
		Watchlist: appCfg.Watchlist,
		Days:      appCfg.ScanDays,
		Chart:     chart,
		ChartDir:  chartDir,
		ChartBars: chartBars,
	}
	if days > 0 {
		opts.Days = days
	}

	reports, err := scanner.NewScanner().Scan(opts)
	if err != nil {
		return err
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

	if asJSON {
		return scanner.WriteJSON(out, reports)
	}
	scanner.WriteTable(out, reports)
	return nil
}
