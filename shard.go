package qurantag

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Span is the half-open token range [Start, End) of a 1-based shard.
type Span struct {
	Shard int
	Start int
	End   int
}

func (s Span) Len() int {
	return s.End - s.Start
}

// Partition cuts total tokens into exactly n contiguous spans of
// ceil(total/n) tokens. Trailing spans may be short or empty.
func Partition(total, n int) ([]Span, error) {
	if n < 1 {
		return nil, fmt.Errorf("partition into %d: %w", n, ErrNoShards)
	}
	size := (total + n - 1) / n
	result := make([]Span, n)
	for i := range result {
		start := min(i*size, total)
		result[i] = Span{
			Shard: i + 1,
			Start: start,
			End:   min(start+size, total),
		}
	}
	return result, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Split writes the raw token list as shard files. Existing shards are kept
// unless the pipeline was opened with Force.
func (p *Pipeline) Split(ctx context.Context) (*StageReport, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.split(ctx)
}

func (p *Pipeline) split(ctx context.Context) (*StageReport, error) {
	report := &StageReport{Stage: "split", RunID: p.runID}
	var tokens []Token
	err := p.artifacts.ReadJSON(ctx, SourceKey, &tokens)
	if isMissing(err) {
		p.logger.Warn("input artifact is missing, split skipped", zap.String("key", SourceKey))
		report.Skipped = append(report.Skipped, SourceKey)
		return report, nil
	} else if err != nil {
		return report, err
	}
	if tokens == nil {
		tokens = []Token{}
	}
	spans, err := Partition(len(tokens), p.shards)
	if err != nil {
		return report, err
	}
	errs := &CombinedError{Message: "split failed"}
	for _, span := range spans {
		key := ShardKey(span.Shard)
		shard := ShardReport{Stage: "split", Shard: span.Shard, Key: key, Total: span.Len()}
		for _, token := range tokens[span.Start:span.End] {
			if token.Malformed() {
				shard.Malformed++
			}
		}
		exists, err := p.artifacts.Exists(ctx, key)
		if err != nil {
			errs.append(err)
			shard.Skipped = true
		} else if exists && !p.force {
			shard.Kept = true
		} else if err := p.artifacts.WriteJSON(ctx, key, tokens[span.Start:span.End], map[string]string{metaRunID: p.runID}); err != nil {
			errs.append(err)
			shard.Skipped = true
		} else {
			p.publish(shard)
		}
		report.Shards = append(report.Shards, shard)
	}
	p.logger.Info("split finished", zap.Int("tokens", len(tokens)), zap.Int("shards", len(spans)))
	return report, errs.errorOrNil()
}

// ReadShard returns the tokens of one shard file.
func (p *Pipeline) ReadShard(ctx context.Context, shard int) ([]Token, error) {
	var tokens []Token
	err := p.artifacts.ReadJSON(ctx, ShardKey(shard), &tokens)
	return tokens, err
}
