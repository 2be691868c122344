package models

import (
	"fmt"
	"time"
)

// Series identifies one of the price sample tables.
type Series string

const (
	// SeriesCurrency is keyed by unix seconds.
	SeriesCurrency Series = "currency"
	// SeriesAsset is keyed by unix milliseconds.
	SeriesAsset Series = "asset"
)

var AllSeries = []Series{SeriesCurrency, SeriesAsset}

func ParseSeries(s string) (Series, error) {
	switch Series(s) {
	case SeriesCurrency, SeriesAsset:
		return Series(s), nil
	}
	return "", fmt.Errorf("unknown price series %q", s)
}

// Scale is the number of key units per second.
func (s Series) Scale() int64 {
	if s == SeriesAsset {
		return 1000
	}
	return 1
}

// Stamp converts t to the series' key precision.
func (s Series) Stamp(t time.Time) int64 {
	if s == SeriesAsset {
		return t.UnixMilli()
	}
	return t.Unix()
}

// PriceSample is a USD-per-token high with 4 implied decimals.
type PriceSample struct {
	OpenTime    int64  `json:"open_time"`
	Value       int64  `json:"value"`
	IntervalSec uint32 `json:"interval_sec"`
}
