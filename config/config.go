package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLConfig YAML配置文件结构
type YAMLConfig struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Scan struct {
		Watchlist []string `yaml:"watchlist"`
		Days      int      `yaml:"days"`
		Cron      string   `yaml:"cron"`
	} `yaml:"scan"`

	Recorder struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"recorder"`
}

// Config 服务配置
type Config struct {
	// HTTP 服务端口
	Port int

	// 监控的标的列表
	Watchlist []string

	// 每次扫描拉取的K线天数
	ScanDays int

	// 定时扫描的cron表达式（带秒字段）
	ScanCron string

	// 是否落库
	RecorderEnabled bool

	// SQLite数据库路径
	RecorderPath string
}

// DefaultConfig 默认配置
var DefaultConfig = Config{
	Port:     19527,
	ScanDays: 500,
	ScanCron: "0 10 15 * * 1-5", // 工作日收盘后
	Watchlist: []string{
		"sh510300", // 沪深300ETF
		"sh513130", // 恒生科技ETF
		"sz159915", // 创业板ETF
	},
	RecorderEnabled: false,
	RecorderPath:    "quantlab.db",
}

// LoadFromFile 从YAML文件加载配置
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var yamlConfig YAMLConfig
	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 从YAML配置转换为Config
	config := DefaultConfig

	if yamlConfig.Server.Port > 0 {
		config.Port = yamlConfig.Server.Port
	}
	if len(yamlConfig.Scan.Watchlist) > 0 {
		config.Watchlist = normalizeSymbols(yamlConfig.Scan.Watchlist)
	}
	if yamlConfig.Scan.Days > 0 {
		config.ScanDays = yamlConfig.Scan.Days
	}
	if strings.TrimSpace(yamlConfig.Scan.Cron) != "" {
		config.ScanCron = strings.TrimSpace(yamlConfig.Scan.Cron)
	}
	config.RecorderEnabled = yamlConfig.Recorder.Enabled
	if yamlConfig.Recorder.Path != "" {
		config.RecorderPath = yamlConfig.Recorder.Path
	}

	return &config, nil
}

// GetConfig 获取配置 (优先级: 配置文件 > 默认值)
func GetConfig(configPath string) *Config {
	config := DefaultConfig

	if configPath != "" {
		if cfg, err := LoadFromFile(configPath); err == nil {
			config = *cfg
		} else {
			fmt.Printf("警告: 无法加载配置文件 %s: %v\n", configPath, err)
		}
	}

	return &config
}

// normalizeSymbols 去空白、转小写交易所前缀并去重
func normalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	seen := map[string]struct{}{}
	for _, s := range symbols {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if len(s) > 2 {
			prefix := strings.ToLower(s[:2])
			if prefix == "sh" || prefix == "sz" {
				s = prefix + s[2:]
			}
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
