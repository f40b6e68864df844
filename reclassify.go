package qurantag

import (
	"context"
	"strconv"

	"github.com/future-architect/qurantag/nlp"
	"go.uber.org/zap"
)

// Reclassify retries only the entries tagged exactly 6.1 with the reclassify
// revision and writes the result to final/final_NN_reclassified.json. The
// input is the latest reclassified copy when one exists, so repeated passes
// accumulate. An entry is replaced when the new result is no longer a bare
// 6.1. A segmented result that keeps a 6.1 slot still replaces it, for its
// segmentation, but is counted as Partial and left out of the ledger.
func (p *Pipeline) Reclassify(ctx context.Context, shards ...int) (*StageReport, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.reclassify(ctx, shards)
}

func (p *Pipeline) reclassify(ctx context.Context, shards []int) (*StageReport, error) {
	selected, err := p.selectShards(shards)
	if err != nil {
		return &StageReport{Stage: "reclassify", RunID: p.runID}, err
	}
	report, err := p.runShards(ctx, "reclassify", p.reclassifier.Revision(), selected, p.reclassifyShard)
	totals := report.Totals()
	if ledgerErr := p.storage.RecordPass(ctx, totals.Reclassified); ledgerErr != nil {
		p.logger.Warn("can't update reclassification ledger", zap.Error(ledgerErr))
	}
	return report, err
}

// ReclassifyEntries is the pure part of the pass. It returns a copy of
// entries; untouched entries keep their original encoding.
func ReclassifyEntries(tagger *nlp.Tagger, entries []TaggedEntry) ([]TaggedEntry, ShardReport) {
	var report ShardReport
	report.Revision = tagger.Revision()
	result := make([]TaggedEntry, len(entries))
	copy(result, entries)
	for i, entry := range entries {
		report.Total++
		if entry.Malformed() {
			report.Malformed++
			continue
		}
		if !nlp.IsUnresolved(entry.Tags) {
			continue
		}
		report.UnknownBefore++
		res := tagger.Tag(entry.Surface, entry.Root)
		if res.Resolved() {
			result[i] = entryOf(res, entry.Root)
		}
		report.count(res)
	}
	return result, report
}

func (p *Pipeline) reclassifyShard(ctx context.Context, shard int) (ShardReport, error) {
	key, pass, err := p.latestTagged(ctx, shard)
	if err != nil {
		return ShardReport{Key: key}, err
	}
	var entries []TaggedEntry
	if err := p.artifacts.ReadJSON(ctx, key, &entries); err != nil {
		return ShardReport{Key: key}, err
	}
	if entries == nil {
		entries = []TaggedEntry{}
	}
	result, report := ReclassifyEntries(p.reclassifier, entries)
	for i, entry := range entries {
		if entry.Malformed() {
			p.logger.Debug("malformed entry", zap.Int("shard", shard), zap.Int("index", i))
		}
	}
	report.Key = ReclassifiedKey(shard)
	return report, p.artifacts.WriteJSON(ctx, report.Key, result, p.metadata(p.reclassifier, strconv.Itoa(pass+1)))
}

// latestTagged picks the reclassified copy when present, otherwise the
// tagged shard, and the number of passes already applied.
func (p *Pipeline) latestTagged(ctx context.Context, shard int) (string, int, error) {
	key := ReclassifiedKey(shard)
	metadata, err := p.artifacts.Metadata(ctx, key)
	if err == nil {
		pass, _ := strconv.Atoi(metadata[metaPass])
		return key, pass, nil
	} else if !isMissing(err) {
		return key, 0, err
	}
	return TaggedKey(shard), 0, nil
}
