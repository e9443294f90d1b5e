package model

import (
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestValidateSeriesOK(t *testing.T) {
	bars := []PriceBar{
		{Time: day(0), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
		{Time: day(1), Open: 10.5, High: 12, Low: 10, Close: 11, Volume: 120},
	}
	if err := ValidateSeries(bars); err != nil {
		t.Fatalf("valid series rejected: %v", err)
	}
}

func TestValidateSeriesNonMonotonic(t *testing.T) {
	bars := []PriceBar{
		{Time: day(1), Open: 10, High: 11, Low: 9, Close: 10.5},
		{Time: day(0), Open: 10, High: 11, Low: 9, Close: 10.5},
	}
	if err := ValidateSeries(bars); err == nil {
		t.Fatal("expected error for non-increasing timestamps")
	}

	dup := []PriceBar{
		{Time: day(0), Open: 10, High: 11, Low: 9, Close: 10.5},
		{Time: day(0), Open: 10, High: 11, Low: 9, Close: 10.5},
	}
	if err := ValidateSeries(dup); err == nil {
		t.Fatal("expected error for duplicate timestamps")
	}
}

func TestValidateSeriesMissingFields(t *testing.T) {
	bars := []PriceBar{
		{Time: day(0), Open: 10, High: 11, Low: 9, Close: 0},
	}
	if err := ValidateSeries(bars); err == nil {
		t.Fatal("expected error for missing close")
	}

	bad := []PriceBar{
		{Time: day(0), Open: 10, High: 9, Low: 11, Close: 10},
	}
	if err := ValidateSeries(bad); err == nil {
		t.Fatal("expected error for high below low")
	}
}
