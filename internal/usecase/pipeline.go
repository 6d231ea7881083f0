package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"EmaPull/internal/domain/models"
	domrepo "EmaPull/internal/domain/repository"
	"EmaPull/internal/services/indicator"
	"EmaPull/pkg/logger"
	"EmaPull/pkg/metrics"
)

// PipelineConfig holds the per-run settings of the compute pipeline.
type PipelineConfig struct {
	Symbols   []string
	Timeframe string
	Periods   []int
	Lookback  int
	TTL       time.Duration
	PairDelay time.Duration
}

// Pipeline fetches candles, computes EMAs and signals, and caches one
// snapshot per symbol. Failures on one symbol never stop the others;
// only a cache outage aborts the run.
type Pipeline struct {
	source    domrepo.CandleSource
	store     domrepo.SnapshotStore
	publisher domrepo.Publisher
	archive   domrepo.CandleArchive
	cfg       PipelineConfig
	rec       *metrics.Recorder
	log       *logger.Logger
}

func NewPipeline(
	source domrepo.CandleSource,
	store domrepo.SnapshotStore,
	publisher domrepo.Publisher,
	archive domrepo.CandleArchive,
	cfg PipelineConfig,
	rec *metrics.Recorder,
	log *logger.Logger,
) *Pipeline {
	return &Pipeline{
		source:    source,
		store:     store,
		publisher: publisher,
		archive:   archive,
		cfg:       cfg,
		rec:       rec,
		log:       log,
	}
}

// SymbolFailure records why one symbol was skipped in a run.
type SymbolFailure struct {
	Symbol string
	Err    error
}

// RunReport summarizes one pipeline pass.
type RunReport struct {
	Processed int
	Synthetic int
	Failures  []SymbolFailure
	Elapsed   time.Duration
}

// Run processes every configured symbol once. It returns an error only
// when the cache itself is unusable; per symbol problems are collected
// in the report and logged.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{}

	for i, symbol := range p.cfg.Symbols {
		if i > 0 && p.cfg.PairDelay > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(p.cfg.PairDelay):
			}
		}

		synthetic, err := p.RunSymbol(ctx, symbol)
		if err != nil {
			if errors.Is(err, domrepo.ErrCacheUnavailable) {
				p.rec.RecordError("cache_unavailable")
				return report, err
			}
			report.Failures = append(report.Failures, SymbolFailure{Symbol: symbol, Err: err})
			p.log.Error("symbol skipped",
				logger.String("symbol", symbol),
				logger.Error(err),
			)
			continue
		}
		report.Processed++
		if synthetic {
			report.Synthetic++
		}
	}

	report.Elapsed = time.Since(start)
	p.rec.RecordLatency("pipeline_run", report.Elapsed.Seconds())
	p.log.Info("pipeline run finished",
		logger.Int("processed", report.Processed),
		logger.Int("synthetic", report.Synthetic),
		logger.Int("failed", len(report.Failures)),
		logger.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

// RunSymbol computes and caches the snapshot for one symbol. The bool
// result reports whether the series came from the synthetic generator.
func (p *Pipeline) RunSymbol(ctx context.Context, symbol string) (bool, error) {
	start := time.Now()

	series, err := p.source.Fetch(ctx, symbol, p.cfg.Timeframe, p.cfg.Lookback)
	if err != nil {
		p.rec.RecordError("data_source_unavailable")
		return false, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	if err := series.Validate(); err != nil {
		p.rec.RecordError("data_source_unavailable")
		return false, fmt.Errorf("%w: %v", domrepo.ErrDataSourceUnavailable, err)
	}
	if series.Synthetic {
		p.rec.RecordSyntheticSeries(symbol)
	}

	snapshot := p.buildSnapshot(series)

	if err := p.store.Store(ctx, snapshot, p.cfg.TTL); err != nil {
		if errors.Is(err, domrepo.ErrSerialization) {
			p.rec.RecordError("serialization")
		}
		return series.Synthetic, err
	}
	p.rec.RecordSnapshotWritten(symbol)
	p.rec.RecordLastPrice(symbol, snapshot.LastPrice)
	p.rec.RecordLatency("symbol_run", time.Since(start).Seconds())

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, snapshot); err != nil {
			p.rec.RecordError("publish")
			p.log.Warn("snapshot publish failed",
				logger.String("symbol", symbol),
				logger.Error(err),
			)
		}
	}
	if p.archive != nil {
		if err := p.archive.Archive(ctx, series); err != nil {
			p.rec.RecordError("archive")
			p.log.Warn("candle archive failed",
				logger.String("symbol", symbol),
				logger.Error(err),
			)
		}
	}

	p.log.Info("snapshot cached",
		logger.String("symbol", symbol),
		logger.Int("candles", series.Len()),
		logger.Int("emas", len(snapshot.Emas)),
		logger.Bool("synthetic", series.Synthetic),
		logger.Float64("last_price", snapshot.LastPrice),
	)
	return series.Synthetic, nil
}

func (p *Pipeline) buildSnapshot(series *models.CandleSeries) *models.EmaSnapshot {
	snapshot := models.NewSnapshot(series.Symbol, series.Timeframe, time.Now())
	snapshot.Synthetic = series.Synthetic
	snapshot.LastPrice = series.LastPrice()

	last := series.Last()
	snapshot.Candle = models.CandleData{
		Open:   last.Open,
		High:   last.High,
		Low:    last.Low,
		Close:  last.Close,
		Volume: last.Volume,
	}

	snapshot.Emas = indicator.ComputeEMAs(series, p.cfg.Periods)
	snapshot.Signals = indicator.DeriveSignals(snapshot.LastPrice, snapshot.Emas, p.cfg.Periods)

	skipped := len(p.cfg.Periods) - len(snapshot.Emas)
	if skipped > 0 {
		p.log.Debug("periods skipped for insufficient history",
			logger.String("symbol", series.Symbol),
			logger.Int("candles", series.Len()),
			logger.Int("skipped", skipped),
		)
	}
	return snapshot
}
