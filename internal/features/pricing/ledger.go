// Package pricing keeps the time-bounded window of token price samples used
// to convert USD level prices into token amounts.
package pricing

import (
	"time"

	"contest-backend/internal/common/errors"
	"contest-backend/internal/features/contest/models"
)

var (
	ErrSampleTooOld    = errors.New(errors.ErrCodeValidation, "price sample is older than the retention window")
	ErrSampleInFuture  = errors.New(errors.ErrCodeValidation, "price sample opens in the future")
	ErrDuplicateSample = errors.New(errors.ErrCodeValidation, "duplicate unique key: price sample already recorded")
	ErrInvalidSample   = errors.New(errors.ErrCodeValidation, "price sample value must be positive")
	ErrUnknownSeries   = errors.New(errors.ErrCodeValidation, "unknown price series")
)

// SampleReader is the read side of a sample table.
type SampleReader interface {
	// Samples returns the series in ascending openTime.
	Samples(series models.Series) []models.PriceSample
}

// SampleWriter mutates a sample table inside one transaction.
type SampleWriter interface {
	SampleReader
	HasSample(series models.Series, openTime int64) bool
	PutSample(series models.Series, sample models.PriceSample)
	DeleteSample(series models.Series, openTime int64) bool
}

func checkSeries(series models.Series) error {
	if _, err := models.ParseSeries(string(series)); err != nil {
		return errors.With(ErrUnknownSeries, map[string]interface{}{"series": series})
	}
	return nil
}

// Record prunes every sample older than the retention window and inserts
// sample. It returns the number of pruned rows. The prune loop is bounded by
// the number of rows present when the call starts.
//
// A sample may open at most one interval after now; anything later would
// shadow every real sample as the latest fresh price.
func Record(w SampleWriter, series models.Series, sample models.PriceSample, now time.Time, retentionSec uint32) (int, error) {
	if err := checkSeries(series); err != nil {
		return 0, err
	}
	if sample.Value <= 0 {
		return 0, errors.With(ErrInvalidSample, map[string]interface{}{"value": sample.Value})
	}

	cutoff := series.Stamp(now) - int64(retentionSec)*series.Scale()
	if sample.OpenTime < cutoff {
		return 0, errors.With(ErrSampleTooOld, map[string]interface{}{
			"open_time": sample.OpenTime,
			"cutoff":    cutoff,
		})
	}
	// для asset IntervalSec обычно 0: не позже now
	horizon := series.Stamp(now) + int64(sample.IntervalSec)*series.Scale()
	if sample.OpenTime > horizon {
		return 0, errors.With(ErrSampleInFuture, map[string]interface{}{
			"open_time": sample.OpenTime,
			"horizon":   horizon,
		})
	}
	if w.HasSample(series, sample.OpenTime) {
		return 0, errors.With(ErrDuplicateSample, map[string]interface{}{"open_time": sample.OpenTime})
	}

	stored := w.Samples(series)
	pruned := 0
	for i := 0; i < len(stored); i++ {
		if stored[i].OpenTime >= cutoff {
			break
		}
		w.DeleteSample(series, stored[i].OpenTime)
		pruned++
	}

	w.PutSample(series, sample)
	return pruned, nil
}

// LatestFresh returns the sample with the greatest openTime that is not older
// than asOf minus the freshness window.
func LatestFresh(r SampleReader, series models.Series, asOf time.Time, freshnessSec uint32) (models.PriceSample, bool) {
	samples := r.Samples(series)
	if len(samples) == 0 {
		return models.PriceSample{}, false
	}
	latest := samples[len(samples)-1]
	if latest.OpenTime < series.Stamp(asOf)-int64(freshnessSec)*series.Scale() {
		return models.PriceSample{}, false
	}
	return latest, true
}

// Range returns samples with from <= openTime <= to. A zero to means no
// upper bound.
func Range(r SampleReader, series models.Series, from, to int64) []models.PriceSample {
	var out []models.PriceSample
	for _, s := range r.Samples(series) {
		if s.OpenTime < from {
			continue
		}
		if to != 0 && s.OpenTime > to {
			break
		}
		out = append(out, s)
	}
	return out
}
