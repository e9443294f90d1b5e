package fetcher

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"quantlab/model"
)

var cst = time.FixedZone("CST", 8*3600)

// KLineFetcher 日K线数据拉取器
type KLineFetcher struct {
	client *http.Client
}

// NewKLineFetcher 创建K线数据拉取器
func NewKLineFetcher() *KLineFetcher {
	return &KLineFetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchDaily 获取股票前复权日K线
// symbol: 股票代码（如 sh600000, sz000001）
// days: 获取天数
func (f *KLineFetcher) FetchDaily(symbol string, days int) ([]model.PriceBar, error) {
	// 使用东方财富接口获取日K数据
	// 转换代码格式: sh600000 -> 1.600000, sz000001 -> 0.000001
	var secid string
	if len(symbol) > 2 {
		market := symbol[:2]
		num := symbol[2:]
		if market == "sh" {
			secid = "1." + num
		} else if market == "sz" {
			secid = "0." + num
		} else {
			return nil, fmt.Errorf("未知的股票代码格式: %s", symbol)
		}
	} else {
		return nil, fmt.Errorf("股票代码格式错误: %s", symbol)
	}

	url := fmt.Sprintf(
		"https://push2his.eastmoney.com/api/qt/stock/kline/get?secid=%s&fields1=f1,f2,f3,f4,f5,f6&fields2=f51,f52,f53,f54,f55,f56,f57&klt=101&fqt=1&end=20500101&lmt=%d",
		secid, days,
	)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Referer", "https://quote.eastmoney.com/")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return parseDailyBars(body)
}

// parseDailyBars 解析东方财富K线响应
func parseDailyBars(data []byte) ([]model.PriceBar, error) {
	var result struct {
		Data struct {
			Klines []string `json:"klines"`
		} `json:"data"`
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	var bars []model.PriceBar
	for _, line := range result.Data.Klines {
		// 格式: 日期,开盘,收盘,最高,最低,成交量,成交额
		parts := strings.Split(line, ",")
		if len(parts) < 6 {
			continue
		}

		t, err := time.ParseInLocation("2006-01-02", parts[0], cst)
		if err != nil {
			continue
		}
		open, _ := strconv.ParseFloat(parts[1], 64)
		closeP, _ := strconv.ParseFloat(parts[2], 64)
		high, _ := strconv.ParseFloat(parts[3], 64)
		low, _ := strconv.ParseFloat(parts[4], 64)
		volume, _ := strconv.ParseInt(parts[5], 10, 64)

		bars = append(bars, model.PriceBar{
			Time:   t,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closeP,
			Volume: volume,
		})
	}

	return bars, nil
}
