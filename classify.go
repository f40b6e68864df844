package qurantag

import (
	"context"

	"github.com/future-architect/qurantag/nlp"
	"go.uber.org/zap"
)

// Classify tags the given shards (all shards when none are given) and writes
// final/final_NN.json. A shard that was already tagged is not rebuilt:
//
//   - tagged by the same revision, only 6.1 entries are retried.
//   - tagged by another revision, dictionary hits also replace earlier tags.
//
// Heuristic results never replace a resolved entry. Force rebuilds from the
// shard file.
func (p *Pipeline) Classify(ctx context.Context, shards ...int) (*StageReport, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.classify(ctx, shards)
}

func (p *Pipeline) classify(ctx context.Context, shards []int) (*StageReport, error) {
	selected, err := p.selectShards(shards)
	if err != nil {
		return &StageReport{Stage: "classify", RunID: p.runID}, err
	}
	return p.runShards(ctx, "classify", p.tagger.Revision(), selected, p.classifyShard)
}

func (p *Pipeline) classifyShard(ctx context.Context, shard int) (ShardReport, error) {
	key := TaggedKey(shard)
	if !p.force {
		metadata, err := p.artifacts.Metadata(ctx, key)
		if err == nil {
			return p.retagShard(ctx, shard, metadata[metaRevision])
		} else if !isMissing(err) {
			return ShardReport{Key: key}, err
		}
	}
	report := ShardReport{Key: ShardKey(shard), Revision: p.tagger.Revision()}
	tokens, err := p.ReadShard(ctx, shard)
	if err != nil {
		return report, err
	}
	entries := make([]TaggedEntry, len(tokens))
	for i, token := range tokens {
		report.Total++
		report.UnknownBefore++
		if token.Malformed() {
			p.logger.Debug("malformed token", zap.Int("shard", shard), zap.Int("index", i))
			report.Malformed++
			report.StillUnknown++
			entries[i] = NewTaggedEntry("", "", string(nlp.Unknown))
			continue
		}
		res := p.tagger.Tag(token.Surface, token.Root)
		entries[i] = entryOf(res, token.Root)
		report.count(res)
	}
	report.Key = key
	return report, p.artifacts.WriteJSON(ctx, key, entries, p.metadata(p.tagger, ""))
}

func (p *Pipeline) retagShard(ctx context.Context, shard int, previous string) (ShardReport, error) {
	key := TaggedKey(shard)
	report := ShardReport{Key: key, Revision: p.tagger.Revision()}
	var entries []TaggedEntry
	if err := p.artifacts.ReadJSON(ctx, key, &entries); err != nil {
		return report, err
	}
	override := previous != p.tagger.Revision()
	changed := false
	for i, entry := range entries {
		report.Total++
		if entry.Malformed() {
			p.logger.Debug("malformed entry", zap.Int("shard", shard), zap.Int("index", i))
			report.Malformed++
			continue
		}
		if !nlp.IsUnresolved(entry.Tags) {
			if !override {
				continue
			}
			res, ok := p.tagger.Lookup(entry.Surface, entry.Root)
			if !ok {
				continue
			}
			updated := entryOf(res, entry.Root)
			if updated.fields() != entry.fields() {
				entries[i] = updated
				report.Overridden++
				changed = true
			}
			continue
		}
		report.UnknownBefore++
		res := p.tagger.Tag(entry.Surface, entry.Root)
		if res.Resolved() {
			entries[i] = entryOf(res, entry.Root)
			changed = true
		}
		report.count(res)
	}
	if !changed && !override {
		return report, nil
	}
	return report, p.artifacts.WriteJSON(ctx, key, entries, p.metadata(p.tagger, ""))
}

func (p *Pipeline) metadata(tagger *nlp.Tagger, pass string) map[string]string {
	result := map[string]string{
		metaRevision: tagger.Revision(),
		metaRunID:    p.runID,
	}
	if pass != "" {
		result[metaPass] = pass
	}
	return result
}

// entryOf converts a tagger result. The input root is kept when the result
// has none.
func entryOf(res nlp.Result, root string) TaggedEntry {
	if res.Root != "" {
		root = res.Root
	}
	return NewTaggedEntry(res.Surface, root, res.TagString())
}

func (r *ShardReport) count(res nlp.Result) {
	switch {
	case !res.Resolved():
		r.StillUnknown++
	case nlp.NeedsReview(res.TagString()):
		r.Partial++
	default:
		r.Reclassified++
	}
	if res.Ambiguous {
		r.Ambiguous++
	}
}
