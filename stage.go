package qurantag

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ShardReport holds the counters of one shard in one stage. For classify and
// reclassify, UnknownBefore counts the entries that were candidates.
// Reclassified counts those that left 6.1 completely, Partial those that were
// segmented but still carry a 6.1 slot.
type ShardReport struct {
	Stage         string `json:"stage"`
	Shard         int    `json:"shard"`
	Key           string `json:"key"`
	Revision      string `json:"revision,omitempty"`
	Total         int    `json:"total"`
	UnknownBefore int    `json:"unknown_before"`
	Reclassified  int    `json:"reclassified"`
	StillUnknown  int    `json:"still_unknown"`
	Partial       int    `json:"partial"`
	Overridden    int    `json:"overridden,omitempty"`
	Ambiguous     int    `json:"ambiguous"`
	Malformed     int    `json:"malformed"`
	Kept          bool   `json:"kept,omitempty"`
	Skipped       bool   `json:"skipped,omitempty"`
}

func (s *ShardReport) add(o ShardReport) {
	s.Total += o.Total
	s.UnknownBefore += o.UnknownBefore
	s.Reclassified += o.Reclassified
	s.StillUnknown += o.StillUnknown
	s.Partial += o.Partial
	s.Overridden += o.Overridden
	s.Ambiguous += o.Ambiguous
	s.Malformed += o.Malformed
}

// StageReport is always returned, even with an error. Shards are ordered by
// shard index, not by completion.
type StageReport struct {
	Stage    string        `json:"stage"`
	RunID    string        `json:"run"`
	Revision string        `json:"revision,omitempty"`
	Shards   []ShardReport `json:"shards"`
	// Skipped lists the artifact keys that were missing.
	Skipped []string `json:"skipped,omitempty"`
}

func (r StageReport) Totals() ShardReport {
	result := ShardReport{Stage: r.Stage, Revision: r.Revision}
	for _, shard := range r.Shards {
		result.add(shard)
	}
	return result
}

type shardFunc func(ctx context.Context, shard int) (ShardReport, error)

// runShards processes shards in parallel bounded by the pipeline concurrency.
// A missing artifact skips the shard; other failures are collected.
func (p *Pipeline) runShards(ctx context.Context, stage, revision string, shards []int, fn shardFunc) (*StageReport, error) {
	report := &StageReport{
		Stage:    stage,
		RunID:    p.runID,
		Revision: revision,
		Shards:   make([]ShardReport, len(shards)),
	}
	errs := &CombinedError{Message: fmt.Sprintf("%s failed", stage)}
	var lock sync.Mutex
	sem := semaphore.NewWeighted(int64(p.concurrency))
	eg, ctx := errgroup.WithContext(ctx)
	for i, shard := range shards {
		i, shard := i, shard
		if err := sem.Acquire(ctx, 1); err != nil {
			lock.Lock()
			errs.append(fmt.Errorf("shard %d: %w", shard, err))
			lock.Unlock()
			report.Shards[i] = ShardReport{Stage: stage, Shard: shard, Skipped: true}
			continue
		}
		eg.Go(func() error {
			defer sem.Release(1)
			log := p.logger.With(zap.String("stage", stage), zap.Int("shard", shard))
			log.Info("start")
			result, err := fn(ctx, shard)
			result.Stage = stage
			result.Shard = shard
			switch {
			case isMissing(err):
				log.Warn("input artifact is missing, shard skipped", zap.String("key", result.Key), zap.Error(err))
				result.Skipped = true
			case err != nil:
				log.Error("shard failed", zap.Error(err))
				result.Skipped = true
				lock.Lock()
				errs.append(fmt.Errorf("shard %d: %w", shard, err))
				lock.Unlock()
			default:
				log.Info("finish",
					zap.Int("total", result.Total),
					zap.Int("unknown_before", result.UnknownBefore),
					zap.Int("reclassified", result.Reclassified),
					zap.Int("still_unknown", result.StillUnknown),
					zap.Int("partial", result.Partial))
				p.publish(result)
			}
			report.Shards[i] = result
			return nil
		})
	}
	eg.Wait()
	for _, shard := range report.Shards {
		if shard.Skipped && shard.Key != "" {
			report.Skipped = append(report.Skipped, shard.Key)
		}
	}
	return report, errs.errorOrNil()
}
