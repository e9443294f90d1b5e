package model

import (
	"fmt"
	"time"
)

// PriceBar 单根K线（日线或重采样后的多小时线）
type PriceBar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// ValidateSeries 校验K线序列契约：时间严格递增、OHLC齐全且为正、高低价合法。
// 序列乱序或字段缺失属于调用方契约违规，直接拒绝整个序列。
func ValidateSeries(bars []PriceBar) error {
	for i, b := range bars {
		if b.Time.IsZero() {
			return fmt.Errorf("bar %d: missing timestamp", i)
		}
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return fmt.Errorf("bar %d (%s): incomplete OHLC", i, b.Time.Format("2006-01-02"))
		}
		if b.High < b.Low {
			return fmt.Errorf("bar %d (%s): high %.4f below low %.4f", i, b.Time.Format("2006-01-02"), b.High, b.Low)
		}
		if i > 0 && !bars[i-1].Time.Before(b.Time) {
			return fmt.Errorf("bar %d (%s): timestamp not increasing", i, b.Time.Format("2006-01-02"))
		}
	}
	return nil
}

// Closes 提取收盘价序列
func Closes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Highs 提取最高价序列
func Highs(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

// Lows 提取最低价序列
func Lows(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}
