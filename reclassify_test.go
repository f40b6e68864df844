package qurantag

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/future-architect/qurantag/nlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// knownWords resolves only the listed surfaces as common nouns.
func knownWords(revision string, words ...string) *nlp.Tagger {
	known := make(map[string]bool)
	for _, word := range words {
		known[word] = true
	}
	return nlp.NewTagger(revision, nil, nlp.RuleFunc("known", func(surface, root string) (nlp.Result, bool) {
		if !known[surface] {
			return nlp.Result{}, false
		}
		return nlp.Result{Surface: surface, Root: root, Tags: []nlp.Code{nlp.CommonNoun}}, true
	}))
}

func hundredEntries() []TaggedEntry {
	var entries []TaggedEntry
	for i := 0; i < 100; i++ {
		if i%10 == 9 {
			entries = append(entries, NewTaggedEntry(fmt.Sprintf("u%d", i/10), "", "6.1"))
		} else {
			entries = append(entries, NewTaggedEntry(fmt.Sprintf("w%d", i), "ر.ب.ب", "1.5,2.1"))
		}
	}
	return entries
}

func TestReclassifyEntries(t *testing.T) {
	tagger := knownWords("test-v2", "u0", "u1", "u2", "u3", "u4", "u5")
	entries := hundredEntries()
	entries = append(entries, NewTaggedEntry("u0", "", "1.5,6.1"))

	result, report := ReclassifyEntries(tagger, entries)
	assert.Equal(t, 101, report.Total)
	assert.Equal(t, 10, report.UnknownBefore)
	assert.Equal(t, 6, report.Reclassified)
	assert.Equal(t, 4, report.StillUnknown)
	// only an exact 6.1 is a candidate
	assert.Equal(t, "1.5,6.1", result[100].Tags)
	assert.Equal(t, "2.1", result[9].Tags)
	assert.Equal(t, "6.1", result[99].Tags)
	// input is not modified
	assert.Equal(t, "6.1", entries[9].Tags)
}

func TestReclassifyEntries_Partial(t *testing.T) {
	tagger := nlp.NewTagger("test-v3", nil, nlp.RuleFunc("prefix", func(surface, root string) (nlp.Result, bool) {
		if surface != "وَقَ" {
			return nlp.Result{}, false
		}
		return nlp.Result{Surface: "وَ+قَ", Root: root, Tags: []nlp.Code{"1.2", nlp.Unknown}}, true
	}))
	entries := []TaggedEntry{
		NewTaggedEntry("وَقَ", "", "6.1"),
		NewTaggedEntry("x", "", "6.1"),
	}
	result, report := ReclassifyEntries(tagger, entries)
	assert.Equal(t, 2, report.UnknownBefore)
	assert.Equal(t, 0, report.Reclassified)
	assert.Equal(t, 1, report.Partial)
	assert.Equal(t, 1, report.StillUnknown)
	assert.Equal(t, [3]string{"وَ+قَ", "", "1.2,6.1"}, result[0].fields())
	assert.True(t, nlp.NeedsReview(result[0].Tags))
}

func TestPipeline_Reclassify(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t, nil, Option{
		ReclassifyTagger: knownWords("test-v2", "u0", "u1", "u2", "u3", "u4", "u5"),
	})
	defer p.Close()
	require.Nil(t, p.artifacts.WriteJSON(ctx, TaggedKey(1), hundredEntries(), map[string]string{metaRevision: "core"}))

	report, err := p.Reclassify(ctx, 1)
	require.Nil(t, err)
	shard := report.Shards[0]
	assert.Equal(t, ReclassifiedKey(1), shard.Key)
	assert.Equal(t, 100, shard.Total)
	assert.Equal(t, 10, shard.UnknownBefore)
	assert.Equal(t, 6, shard.Reclassified)
	assert.Equal(t, 4, shard.StillUnknown)

	var before, after []json.RawMessage
	require.Nil(t, json.Unmarshal(readRaw(t, p, TaggedKey(1)), &before))
	require.Nil(t, json.Unmarshal(readRaw(t, p, ReclassifiedKey(1)), &after))
	require.Len(t, after, 100)
	for i := range before {
		if i%10 == 9 {
			continue
		}
		assert.Equal(t, string(before[i]), string(after[i]), "entry %d", i)
	}

	metadata, err := p.artifacts.Metadata(ctx, ReclassifiedKey(1))
	require.Nil(t, err)
	assert.Equal(t, "test-v2", metadata[metaRevision])
	assert.Equal(t, "1", metadata[metaPass])

	ledger, err := p.Ledger(ctx)
	require.Nil(t, err)
	assert.Equal(t, Ledger{Passes: 1, Resolved: 6}, ledger)
}

func TestPipeline_Reclassify_Accumulates(t *testing.T) {
	ctx := context.Background()
	first := newTestPipeline(t, nil, Option{ReclassifyTagger: knownWords("test-v2", "u0")})
	require.Nil(t, first.artifacts.WriteJSON(ctx, TaggedKey(1), hundredEntries(), nil))
	_, err := first.Reclassify(ctx, 1)
	require.Nil(t, err)

	second := newTestPipeline(t, first.artifacts.bucket, Option{ReclassifyTagger: knownWords("test-v3", "u1")})
	defer second.Close()
	report, err := second.Reclassify(ctx, 1)
	require.Nil(t, err)
	assert.Equal(t, 9, report.Shards[0].UnknownBefore)
	assert.Equal(t, 1, report.Shards[0].Reclassified)

	entries := readEntries(t, second, ReclassifiedKey(1))
	assert.Equal(t, "2.1", entries[9].Tags)
	assert.Equal(t, "2.1", entries[19].Tags)
	assert.Equal(t, "6.1", entries[29].Tags)
	metadata, err := second.artifacts.Metadata(ctx, ReclassifiedKey(1))
	require.Nil(t, err)
	assert.Equal(t, "2", metadata[metaPass])
	// the first pass result is still there
	assert.Equal(t, "6.1", readEntries(t, second, TaggedKey(1))[19].Tags)
}

func TestPipeline_Reclassify_Idempotent(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t, nil, Option{})
	defer p.Close()
	require.Nil(t, p.artifacts.WriteJSON(ctx, TaggedKey(1), []TaggedEntry{
		NewTaggedEntry("مِن", "م.ن", "1.1"),
		NewTaggedEntry("ال+كِتاب", "", "1.5,2.1"),
	}, nil))

	_, err := p.Reclassify(ctx, 1)
	require.Nil(t, err)
	assert.Equal(t, string(readRaw(t, p, TaggedKey(1))), string(readRaw(t, p, ReclassifiedKey(1))))

	first := readRaw(t, p, ReclassifiedKey(1))
	_, err = p.Reclassify(ctx, 1)
	require.Nil(t, err)
	assert.Equal(t, string(first), string(readRaw(t, p, ReclassifiedKey(1))))
}

func TestPipeline_Reclassify_MalformedPassThrough(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t, nil, Option{})
	defer p.Close()
	seed(t, p, TaggedKey(1), []json.RawMessage{
		json.RawMessage(`["نَسِيَ","ن.س.ي","6.1"]`),
		json.RawMessage(`["broken"]`),
	})

	report, err := p.Reclassify(ctx, 1)
	require.Nil(t, err)
	assert.Equal(t, 1, report.Shards[0].Malformed)
	assert.Equal(t, 1, report.Shards[0].Reclassified)

	var after []json.RawMessage
	require.Nil(t, json.Unmarshal(readRaw(t, p, ReclassifiedKey(1)), &after))
	require.Len(t, after, 2)
	assert.JSONEq(t, `["broken"]`, string(after[1]))
	entries := readEntries(t, p, ReclassifiedKey(1))
	assert.Equal(t, "3.1", entries[0].Tags)
}

func TestPipeline_Reclassify_Missing(t *testing.T) {
	p := newTestPipeline(t, nil, Option{})
	defer p.Close()
	report, err := p.Reclassify(context.Background(), 2)
	require.Nil(t, err)
	assert.Equal(t, []string{TaggedKey(2)}, report.Skipped)
}
