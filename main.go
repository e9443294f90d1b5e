package main

import (
	"flag"
	"log"
	"os"
)

var (
	configPath     string
	backtestMode   bool
	backtestConfig string
	backtestOut    string
	compareSymbol  string
	scanMode       bool
	scanOut        string
	scanJSON       bool
	scanDays       int
	scanChart      bool
	scanChartDir   string
	scanChartBars  int
	serveMode      bool
	daemonMode     bool
	recordRuns     bool
)

func main() {
	flag.StringVar(&configPath, "config", "", "服务配置文件路径(YAML格式)")
	flag.BoolVar(&backtestMode, "backtest", false, "运行日线回测并退出")
	flag.StringVar(&backtestConfig, "bt-config", "backtest.yaml", "回测配置文件路径(YAML格式)")
	flag.StringVar(&backtestOut, "bt-out", "", "回测输出JSON文件路径(默认stdout)")
	flag.StringVar(&compareSymbol, "compare", "", "对单个标的并行对比全部策略并退出(如 sh510300)")
	flag.BoolVar(&scanMode, "scan", false, "扫描监控列表最新一根日K的信号并退出")
	flag.StringVar(&scanOut, "scan-out", "", "扫描输出路径(默认stdout)")
	flag.BoolVar(&scanJSON, "scan-json", false, "扫描输出使用 JSON 格式(默认表格文本)")
	flag.IntVar(&scanDays, "scan-days", 0, "扫描时覆盖K线天数(默认用配置文件的值)")
	flag.BoolVar(&scanChart, "scan-chart", false, "扫描时输出带通道与抄底标记的K线图(SVG)到目录")
	flag.StringVar(&scanChartDir, "scan-chart-dir", "scan_charts", "扫描图输出目录(配合 -scan-chart)")
	flag.IntVar(&scanChartBars, "scan-chart-bars", 220, "每个标的输出最近 N 根K线到图中(配合 -scan-chart)")
	flag.BoolVar(&serveMode, "serve", false, "启动HTTP服务")
	flag.BoolVar(&daemonMode, "daemon", false, "启动HTTP服务并按cron定时扫描")
	flag.BoolVar(&recordRuns, "record", false, "回测结果落库(SQLite)")
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if scanMode {
		if err := runScan(configPath, scanOut, scanJSON, scanDays, scanChart, scanChartDir, scanChartBars); err != nil {
			log.Printf("[ERROR] 扫描失败: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if compareSymbol != "" {
		if err := runCompare(compareSymbol, backtestConfig, backtestOut); err != nil {
			log.Printf("[ERROR] 策略对比失败: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if backtestMode {
		if err := runBacktest(backtestConfig, backtestOut, configPath, recordRuns); err != nil {
			log.Printf("[ERROR] 回测失败: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if serveMode || daemonMode {
		if err := runServe(configPath, daemonMode); err != nil {
			log.Printf("[ERROR] 服务退出: %v\n", err)
			os.Exit(1)
		}
		return
	}

	flag.Usage()
	os.Exit(2)
}
