package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"quantlab/api"
	"quantlab/config"
	"quantlab/recorder"
	"quantlab/scanner"
)

func runServe(appConfigPath string, daemon bool) error {
	cfg := config.GetConfig(appConfigPath)

	var rec recorder.Recorder = recorder.Noop{}
	if cfg.RecorderEnabled {
		sqlRec, err := recorder.NewSQLiteRecorder(cfg.RecorderPath)
		if err != nil {
			return err
		}
		rec = sqlRec
		defer sqlRec.Close()
	}

	log.Println("=== 指标回测与信号扫描服务 ===")
	server := api.NewServer(cfg, rec)
	go func() {
		if err := server.Start(); err != nil {
			log.Printf("[ERROR] HTTP服务启动失败: %v\n", err)
		}
	}()

	var scheduler *cron.Cron
	if daemon {
		// 带秒字段的cron表达式
		scheduler = cron.New(cron.WithSeconds())
		_, err := scheduler.AddFunc(cfg.ScanCron, func() {
			log.Printf("[CRON] 定时扫描开始: %d 个标的\n", len(cfg.Watchlist))
			reports, err := scanner.NewScanner().Scan(scanner.Options{
				Watchlist: cfg.Watchlist,
				Days:      cfg.ScanDays,
			})
			if err != nil {
				log.Printf("[CRON] 定时扫描失败: %v\n", err)
				return
			}
			hits := 0
			for _, r := range reports {
				if r.Bottom || r.RelaxedBottom {
					hits++
					log.Printf("[CRON] 信号: %s %s 收盘 %.2f 抄底=%v 宽松=%v\n",
						r.Symbol, r.Name, r.LastClose, r.Bottom, r.RelaxedBottom)
				}
			}
			log.Printf("[CRON] 定时扫描完成: %d/%d 有信号\n", hits, len(reports))
		})
		if err != nil {
			return err
		}
		scheduler.Start()
		log.Printf("[CRON] 定时扫描已启动: %s\n", cfg.ScanCron)
	}

	// 等待退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("正在关闭服务...")
	if scheduler != nil {
		scheduler.Stop()
	}
	if err := server.Shutdown(); err != nil {
		log.Printf("[WARN] 关闭HTTP服务: %v\n", err)
	}
	log.Println("服务已关闭")
	return nil
}
