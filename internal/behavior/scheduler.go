package behavior

import (
	"context"

	"go.uber.org/zap"
)

// Scheduler selects and executes a random non-empty subset of the catalog
// each round.
type Scheduler struct {
	catalog *Catalog
	src     Source
	logger  *zap.Logger
}

// NewScheduler builds a scheduler over the catalog, sharing its random source.
func NewScheduler(catalog *Catalog, src Source, logger *zap.Logger) *Scheduler {
	return &Scheduler{catalog: catalog, src: src, logger: logger}
}

// RunRound samples 1-3 distinct behaviors without replacement and executes
// them sequentially in the sampled order. Each execution sits behind its own
// failure boundary: an error is recorded in that behavior's outcome and
// logged as a warning, and the round continues with the remaining behaviors.
// The returned slice has one outcome per chosen behavior, success or not.
func (s *Scheduler) RunRound(ctx context.Context) []Outcome {
	entries := s.catalog.entries()

	count := 1 + s.src.Intn(3)
	order := s.src.Perm(len(entries))[:count]

	outcomes := make([]Outcome, 0, count)
	for _, idx := range order {
		chosen := entries[idx]
		err := chosen.run(ctx)
		if err != nil {
			s.logger.Warn("interaction failed",
				zap.String("behavior", chosen.name),
				zap.Error(err),
			)
		}
		outcomes = append(outcomes, Outcome{Behavior: chosen.name, Err: err})
	}
	return outcomes
}
