package datasource

import (
	"context"
	"math/rand"
	"sync"

	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"go.uber.org/zap"
)

// SyntheticDataSource serves generated series. Symbol and timeframe of a query are ignored.
type SyntheticDataSource struct {
	generator *Generator
	logger    *logger.Logger
	mu        sync.Mutex
}

// NewSyntheticDataSource creates a data source around a generator drawing from rng.
func NewSyntheticDataSource(config GeneratorConfig, rng *rand.Rand, logger *logger.Logger) (DataSource, error) {
	if logger == nil {
		logger = nopLogger()
	}

	generator, err := NewGenerator(config, rng)
	if err != nil {
		return nil, err
	}

	return &SyntheticDataSource{
		generator: generator,
		logger:    logger,
		mu:        sync.Mutex{},
	}, nil
}

// Series implements DataSource.
func (s *SyntheticDataSource) Series(ctx context.Context, query SeriesQuery) (types.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// the generator shares one random source across queries
	s.mu.Lock()
	defer s.mu.Unlock()

	series := s.generator.Generate(query.StartDate, query.EndDate)
	s.logger.Debug("Generated synthetic series",
		zap.String("symbol", query.Symbol),
		zap.Int("bars", len(series)),
	)

	return series, nil
}

// Close implements DataSource.
func (s *SyntheticDataSource) Close() error {
	return nil
}
