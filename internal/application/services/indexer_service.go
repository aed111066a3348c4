package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/chainscan/explorer/internal/config"
	"github.com/chainscan/explorer/internal/domain/repositories"
)

var (
	blocksIndexedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indexer_blocks_indexed_total",
		Help: "Total number of blocks ingested",
	})
	lastIndexedHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "indexer_last_indexed_height",
		Help: "Watermark height after the most recent successful persist",
	})
	tickErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "indexer_tick_errors_total",
		Help: "Total number of aborted indexing ticks",
	})
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "indexer_tick_duration_seconds",
		Help:    "Time taken by one indexing tick",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	})
)

// IndexerService advances the watermark on a fixed timer, persisting and
// publishing every block the chain has produced since the last checkpoint.
type IndexerService struct {
	chain         ChainClient
	validators    ValidatorSource
	blockRepo     repositories.BlockRepository
	txRepo        repositories.TransactionRepository
	validatorRepo repositories.ValidatorRepository
	watermarkRepo repositories.WatermarkRepository
	publisher     Publisher
	cfg           config.IndexerConfig
	logger        *zap.Logger

	// busy serializes ticks: a tick that outlasts the poll interval makes
	// the next one a no-op instead of overlapping it.
	busy   atomic.Bool
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewIndexerService creates a new indexer service
func NewIndexerService(
	chain ChainClient,
	validators ValidatorSource,
	blockRepo repositories.BlockRepository,
	txRepo repositories.TransactionRepository,
	validatorRepo repositories.ValidatorRepository,
	watermarkRepo repositories.WatermarkRepository,
	publisher Publisher,
	cfg config.IndexerConfig,
	logger *zap.Logger,
) *IndexerService {
	return &IndexerService{
		chain:         chain,
		validators:    validators,
		blockRepo:     blockRepo,
		txRepo:        txRepo,
		validatorRepo: validatorRepo,
		watermarkRepo: watermarkRepo,
		publisher:     publisher,
		cfg:           cfg,
		logger:        logger,
		stopCh:        make(chan struct{}),
	}
}

// Start launches the indexing and validator refresh loops
func (s *IndexerService) Start(ctx context.Context) {
	s.logger.Info("Starting indexer",
		zap.Duration("poll_interval", s.cfg.PollInterval),
	)

	s.wg.Add(2)
	go s.runIndexLoop(ctx)
	go s.runValidatorLoop(ctx)
}

// Stop gracefully stops the indexer
func (s *IndexerService) Stop() {
	s.logger.Info("Stopping indexer")
	close(s.stopCh)
	s.wg.Wait()
}

func (s *IndexerService) runIndexLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	// Run immediately on start
	s.indexNewBlocks(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.indexNewBlocks(ctx)
		}
	}
}

func (s *IndexerService) runValidatorLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.ValidatorRefreshInterval)
	defer ticker.Stop()

	s.refreshValidators(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.refreshValidators(ctx)
		}
	}
}

// indexNewBlocks runs one tick: every height above the watermark is fetched,
// persisted and published, and the watermark advances per height. Any error
// abandons the tick; the next tick resumes from the same watermark, and the
// unique-height constraint makes the re-attempt harmless.
func (s *IndexerService) indexNewBlocks(ctx context.Context) {
	if !s.busy.CompareAndSwap(false, true) {
		s.logger.Debug("Tick skipped, previous tick still running")
		return
	}
	defer s.busy.Store(false)

	start := time.Now()
	defer func() { tickDuration.Observe(time.Since(start).Seconds()) }()

	height, err := s.chain.Height(ctx)
	if err != nil {
		s.logger.Error("Failed to get chain height", zap.Error(err))
		tickErrorsTotal.Inc()
		return
	}

	watermark, err := s.watermarkRepo.Get(ctx)
	if err != nil {
		s.logger.Error("Failed to read watermark", zap.Error(err))
		tickErrorsTotal.Inc()
		return
	}

	if watermark >= height {
		return
	}

	for h := watermark + 1; h <= height; h++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := s.ingestHeight(ctx, h); err != nil {
			s.logger.Error("Tick aborted",
				zap.Int64("height", h),
				zap.Int64("watermark", h-1),
				zap.Error(err),
			)
			tickErrorsTotal.Inc()
			return
		}
	}

	s.logger.Info("Indexed new blocks",
		zap.Int64("from", watermark+1),
		zap.Int64("to", height),
		zap.Duration("took", time.Since(start)),
	)
}

// ingestHeight persists one block and advances the watermark past it
func (s *IndexerService) ingestHeight(ctx context.Context, height int64) error {
	block, txs, err := s.chain.BlockAt(ctx, height)
	if err != nil {
		return err
	}

	if err := s.blockRepo.Upsert(ctx, block); err != nil {
		return err
	}

	if err := s.txRepo.BatchInsert(ctx, txs); err != nil {
		return err
	}

	if err := s.watermarkRepo.Set(ctx, height); err != nil {
		return err
	}

	s.publisher.Publish(ChannelBlocks, EventNewBlock, block)

	blocksIndexedTotal.Inc()
	lastIndexedHeight.Set(float64(height))

	s.logger.Debug("Ingested block",
		zap.Int64("height", height),
		zap.Int("txs", len(txs)),
	)

	return nil
}

// refreshValidators upserts the chain's current validator set
func (s *IndexerService) refreshValidators(ctx context.Context) {
	validators, err := s.validators.FetchValidators(ctx)
	if err != nil {
		s.logger.Warn("Failed to refresh validators", zap.Error(err))
		return
	}

	if len(validators) == 0 {
		return
	}

	if err := s.validatorRepo.UpsertAll(ctx, validators); err != nil {
		s.logger.Error("Failed to persist validators", zap.Error(err))
		return
	}

	s.logger.Debug("Refreshed validators", zap.Int("count", len(validators)))
}
