package qurantag

import (
	"context"
	"sort"

	"github.com/future-architect/qurantag/nlp"
	"go.uber.org/zap"
)

// MergeReport describes one alignment. Mismatch is the length difference of
// the two streams; the longer one was truncated.
type MergeReport struct {
	Mode               string `json:"mode"`
	Tagged             int    `json:"tagged"`
	Positions          int    `json:"positions"`
	Records            int    `json:"records"`
	Mismatch           int    `json:"mismatch"`
	MalformedEntries   int    `json:"malformed_entries"`
	MalformedPositions int    `json:"malformed_positions"`
}

const (
	ModeUnique     = "unique"
	ModeSequential = "sequential"
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// entryFields applies the ("", "", "") default of malformed entries.
func entryFields(entry TaggedEntry) (string, string, string) {
	if entry.Malformed() {
		return "", "", ""
	}
	return entry.Surface, entry.Root, entry.Tags
}

// MergeUnique pairs the i-th tagged entry with the i-th reference.
func MergeUnique(entries []TaggedEntry, refs []Reference) ([]WordRecord, MergeReport) {
	n := min(len(entries), len(refs))
	report := MergeReport{
		Mode:      ModeUnique,
		Tagged:    len(entries),
		Positions: len(refs),
		Records:   n,
		Mismatch:  abs(len(entries) - len(refs)),
	}
	result := make([]WordRecord, n)
	for i := 0; i < n; i++ {
		word, root, tags := entryFields(entries[i])
		if entries[i].Malformed() {
			report.MalformedEntries++
		}
		positions := refs[i].Positions
		if positions == nil {
			positions = []Position{}
		}
		report.MalformedPositions += refs[i].Malformed
		result[i] = WordRecord{
			Index:           i + 1,
			Word:            word,
			Root:            root,
			Tags:            tags,
			Positions:       positions,
			OccurrenceCount: len(positions),
		}
	}
	return result, report
}

// MergeSequential flattens every occurrence in reference order and zips it
// 1:1 with the tagged stream.
func MergeSequential(entries []TaggedEntry, refs []Reference) ([]OccurrenceRecord, MergeReport) {
	positions := FlattenReferences(refs)
	n := min(len(entries), len(positions))
	report := MergeReport{
		Mode:      ModeSequential,
		Tagged:    len(entries),
		Positions: len(positions),
		Records:   n,
		Mismatch:  abs(len(entries) - len(positions)),
	}
	for _, ref := range refs {
		report.MalformedPositions += ref.Malformed
	}
	result := make([]OccurrenceRecord, n)
	for i := 0; i < n; i++ {
		word, root, tags := entryFields(entries[i])
		if entries[i].Malformed() {
			report.MalformedEntries++
		}
		result[i] = OccurrenceRecord{
			Index:        i + 1,
			Surah:        positions[i].Surah,
			Ayah:         positions[i].Ayah,
			WordPosition: positions[i].Word,
			Word:         word,
			Root:         root,
			Tags:         tags,
		}
	}
	return result, report
}

// ExpandOccurrences builds the reading-order view from the unique view: one
// record per occurrence, ordered by (surah, ayah, word) and indexed from 1.
func ExpandOccurrences(words []WordRecord) []OccurrenceRecord {
	var result []OccurrenceRecord
	for _, word := range words {
		for _, pos := range word.Positions {
			result = append(result, OccurrenceRecord{
				Surah:        pos.Surah,
				Ayah:         pos.Ayah,
				WordPosition: pos.Word,
				Word:         word.Word,
				Root:         word.Root,
				Tags:         word.Tags,
			})
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Position().Less(result[j].Position())
	})
	for i := range result {
		result[i].Index = i + 1
	}
	return result
}

type MergeOption struct {
	// Store publishes the unique view to the corpus store.
	Store bool
	// ReadingOrder writes the sequential view from ExpandOccurrences instead
	// of zipping the flattened references.
	ReadingOrder bool
}

type MergeResult struct {
	RunID      string      `json:"run"`
	Unique     MergeReport `json:"unique"`
	Sequential MergeReport `json:"sequential"`
	// Sources is the tagged artifact used per shard, in shard order.
	Sources []string `json:"sources"`
	// Substituted lists shards whose untagged batch stood in as 6.1 entries.
	Substituted      []int    `json:"substituted,omitempty"`
	Skipped          []string `json:"skipped,omitempty"`
	ReferenceMissing bool     `json:"reference_missing,omitempty"`
	Published        int      `json:"published"`
}

// Merge joins the tagged shards with words-ref.json and writes both views.
// It writes nothing when the reference file is missing.
func (p *Pipeline) Merge(ctx context.Context, opt MergeOption) (*MergeResult, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.merge(ctx, opt)
}

func (p *Pipeline) merge(ctx context.Context, opt MergeOption) (*MergeResult, error) {
	result := &MergeResult{RunID: p.runID}
	var refs []Reference
	err := p.artifacts.ReadJSON(ctx, ReferenceKey, &refs)
	if isMissing(err) {
		p.logger.Warn("input artifact is missing, merge skipped", zap.String("key", ReferenceKey))
		result.ReferenceMissing = true
		result.Skipped = append(result.Skipped, ReferenceKey)
		return result, nil
	} else if err != nil {
		return result, err
	}
	entries, err := p.taggedStream(ctx, result)
	if err != nil {
		return result, err
	}

	words, unique := MergeUnique(entries, refs)
	result.Unique = unique
	var occurrences []OccurrenceRecord
	if opt.ReadingOrder {
		occurrences = ExpandOccurrences(words)
		result.Sequential = MergeReport{
			Mode:      ModeSequential,
			Tagged:    len(entries),
			Positions: len(FlattenReferences(refs)),
			Records:   len(occurrences),
		}
	} else {
		occurrences, result.Sequential = MergeSequential(entries, refs)
	}
	if occurrences == nil {
		occurrences = []OccurrenceRecord{}
	}
	if unique.Mismatch > 0 || result.Sequential.Mismatch > 0 {
		p.logger.Warn("alignment mismatch",
			zap.Int("unique_mismatch", unique.Mismatch),
			zap.Int("sequential_mismatch", result.Sequential.Mismatch))
	}
	metadata := map[string]string{metaRunID: p.runID}
	if err := p.artifacts.WriteJSON(ctx, CompleteKey, words, metadata); err != nil {
		return result, err
	}
	if err := p.artifacts.WriteJSON(ctx, FullKey, occurrences, metadata); err != nil {
		return result, err
	}
	if opt.Store {
		result.Published, err = p.publishCorpus(ctx, words)
		if err != nil {
			return result, err
		}
	}
	p.logger.Info("merge finished",
		zap.Int("words", len(words)),
		zap.Int("occurrences", len(occurrences)),
		zap.Int("published", result.Published))
	return result, nil
}

// taggedStream concatenates the latest tagged artifact of every shard.
func (p *Pipeline) taggedStream(ctx context.Context, result *MergeResult) ([]TaggedEntry, error) {
	var stream []TaggedEntry
	for _, shard := range p.allShards() {
		key, _, err := p.latestTagged(ctx, shard)
		if err != nil {
			return nil, err
		}
		var entries []TaggedEntry
		err = p.artifacts.ReadJSON(ctx, key, &entries)
		if err == nil {
			result.Sources = append(result.Sources, key)
			stream = append(stream, entries...)
			continue
		} else if !isMissing(err) {
			return nil, err
		}
		tokens, err := p.ReadShard(ctx, shard)
		if isMissing(err) {
			p.logger.Warn("shard is missing, merge continues without it", zap.Int("shard", shard))
			result.Skipped = append(result.Skipped, key, ShardKey(shard))
			continue
		} else if err != nil {
			return nil, err
		}
		p.logger.Warn("tagged shard is missing, using its batch as unresolved", zap.Int("shard", shard))
		result.Substituted = append(result.Substituted, shard)
		result.Sources = append(result.Sources, ShardKey(shard))
		for _, token := range tokens {
			if token.Malformed() {
				stream = append(stream, NewTaggedEntry("", "", string(nlp.Unknown)))
				continue
			}
			stream = append(stream, NewTaggedEntry(token.Surface, token.Root, string(nlp.Unknown)))
		}
	}
	return stream, nil
}
