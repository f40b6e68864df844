package qurantag

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fiveEntries() []TaggedEntry {
	return []TaggedEntry{
		NewTaggedEntry("بِسْمِ", "س.م.و", "1.1,2.1"),
		NewTaggedEntry("ٱللَّهِ", "ء.ل.ه", "1.5,2.2"),
		NewTaggedEntry("ٱل+رَّحْمَٰنِ", "ر.ح.م", "1.5,2.1"),
		NewTaggedEntry("ٱل+رَّحِيمِ", "ر.ح.م", "1.5,2.1"),
		NewTaggedEntry("ٱلْحَمْدُ", "ح.م.د", "6.1"),
	}
}

func references(t *testing.T, src string) []Reference {
	var refs []Reference
	require.Nil(t, json.Unmarshal([]byte(src), &refs))
	return refs
}

func TestMergeUnique(t *testing.T) {
	refs := references(t, `[
		[[1,1,1],[11,30,1],[27,30,5]],
		[[1,1,2],[1,2,3]],
		[1,1,3],
		[[1,1,4],[1,3,2]],
		[[1,2,1]]
	]`)
	words, report := MergeUnique(fiveEntries(), refs)
	require.Len(t, words, 5)
	assert.Equal(t, 0, report.Mismatch)
	assert.Equal(t, 5, report.Records)
	counts := []int{3, 2, 1, 2, 1}
	for i, word := range words {
		assert.Equal(t, i+1, word.Index)
		assert.Equal(t, counts[i], word.OccurrenceCount)
		assert.Len(t, word.Positions, word.OccurrenceCount)
	}
	assert.Equal(t, "ٱللَّهِ", words[1].Word)
	assert.Equal(t, []Position{{1, 1, 2}, {1, 2, 3}}, words[1].Positions)
}

func TestMergeUnique_Mismatch(t *testing.T) {
	refs := references(t, `[[1,1,1],[1,1,2],[1,1,3],[1,1,4]]`)
	words, report := MergeUnique(fiveEntries(), refs)
	assert.Len(t, words, 4)
	assert.Equal(t, 1, report.Mismatch)
	assert.Equal(t, 5, report.Tagged)
	assert.Equal(t, 4, report.Positions)
}

func TestMergeSequential(t *testing.T) {
	refs := references(t, `[[[1,1,1],[1,1,2]], [1,1,3], [[1,1,4],[1,1,5]]]`)
	records, report := MergeSequential(fiveEntries(), refs)
	require.Len(t, records, 5)
	assert.Equal(t, 0, report.Mismatch)
	for i, record := range records {
		assert.Equal(t, i+1, record.Index)
		assert.Equal(t, Position{1, 1, i + 1}, record.Position())
	}
	assert.Equal(t, "ٱلْحَمْدُ", records[4].Word)

	records, report = MergeSequential(fiveEntries(), references(t, `[[[1,1,1],[1,1,2]], [[1,1,3],[1,1,4]]]`))
	assert.Len(t, records, 4)
	assert.Equal(t, 1, report.Mismatch)
}

func TestMergeSequential_Malformed(t *testing.T) {
	var entries []TaggedEntry
	require.Nil(t, json.Unmarshal([]byte(`[["a","r","2.1"], ["b"], 7]`), &entries))
	refs := references(t, `[[1,1,1], "bad", [1,1,3]]`)
	records, report := MergeSequential(entries, refs)
	require.Len(t, records, 3)
	assert.Equal(t, 2, report.MalformedEntries)
	assert.Equal(t, 1, report.MalformedPositions)
	assert.Equal(t, OccurrenceRecord{Index: 2}, records[1])
	assert.Equal(t, "", records[2].Word)
	assert.Equal(t, Position{1, 1, 3}, records[2].Position())
}

func TestExpandOccurrences(t *testing.T) {
	words := []WordRecord{
		{Index: 1, Word: "a", Tags: "2.1", Positions: []Position{{2, 1, 1}, {1, 1, 2}}},
		{Index: 2, Word: "b", Tags: "1.1", Positions: []Position{{1, 1, 1}}},
		{Index: 3, Word: "c", Tags: "6.1", Positions: []Position{}},
	}
	records := ExpandOccurrences(words)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"b", "a", "a"}, []string{records[0].Word, records[1].Word, records[2].Word})
	for i, record := range records {
		assert.Equal(t, i+1, record.Index)
	}
	assert.Equal(t, Position{2, 1, 1}, records[2].Position())
}

func TestPipeline_Merge(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t, nil, Option{Shards: 2})
	defer p.Close()
	entries := fiveEntries()
	seed(t, p, TaggedKey(1), entries[:3])
	// shard 2 was never tagged, its batch stands in
	seed(t, p, ShardKey(2), tokens("ٱل+رَّحِيمِ", "ر.ح.م", "ٱلْحَمْدُ", "ح.م.د"))
	seed(t, p, ReferenceKey, json.RawMessage(`[[1,1,1],[1,1,2],[1,1,3],[1,1,4],[1,2,1]]`))

	result, err := p.Merge(ctx, MergeOption{Store: true})
	require.Nil(t, err)
	assert.Equal(t, []int{2}, result.Substituted)
	assert.Equal(t, []string{TaggedKey(1), ShardKey(2)}, result.Sources)
	assert.Equal(t, 0, result.Unique.Mismatch)
	assert.Equal(t, 5, result.Published)

	var words []WordRecord
	require.Nil(t, p.artifacts.ReadJSON(ctx, CompleteKey, &words))
	require.Len(t, words, 5)
	assert.Equal(t, "6.1", words[3].Tags)
	assert.Equal(t, "1.5,2.2", words[1].Tags)

	var occurrences []OccurrenceRecord
	require.Nil(t, p.artifacts.ReadJSON(ctx, FullKey, &occurrences))
	require.Len(t, occurrences, 5)
	assert.Equal(t, Position{1, 2, 1}, occurrences[4].Position())

	found, err := p.Lookup(ctx, "ٱللَّهِ", "missing")
	require.Nil(t, err)
	require.NotNil(t, found[0])
	assert.Nil(t, found[1])
	assert.Equal(t, []Position{{1, 1, 2}}, found[0].Positions)
}

func TestPipeline_Merge_PrefersReclassified(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t, nil, Option{Shards: 1})
	defer p.Close()
	seed(t, p, TaggedKey(1), []TaggedEntry{NewTaggedEntry("a", "", "6.1")})
	require.Nil(t, p.artifacts.WriteJSON(ctx, ReclassifiedKey(1), []TaggedEntry{NewTaggedEntry("a", "", "2.1")}, map[string]string{metaPass: "1"}))
	seed(t, p, ReferenceKey, json.RawMessage(`[[1,1,1]]`))

	result, err := p.Merge(ctx, MergeOption{ReadingOrder: true})
	require.Nil(t, err)
	assert.Equal(t, []string{ReclassifiedKey(1)}, result.Sources)
	var occurrences []OccurrenceRecord
	require.Nil(t, p.artifacts.ReadJSON(ctx, FullKey, &occurrences))
	assert.Equal(t, "2.1", occurrences[0].Tags)
}

func TestPipeline_Merge_MissingReference(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t, nil, Option{Shards: 1})
	defer p.Close()
	seed(t, p, TaggedKey(1), fiveEntries())

	result, err := p.Merge(ctx, MergeOption{})
	require.Nil(t, err)
	assert.True(t, result.ReferenceMissing)
	exists, err := p.artifacts.Exists(ctx, CompleteKey)
	require.Nil(t, err)
	assert.False(t, exists)
}

func TestPipeline_Merge_MissingShard(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t, nil, Option{Shards: 2})
	defer p.Close()
	seed(t, p, TaggedKey(1), fiveEntries()[:2])
	seed(t, p, ReferenceKey, json.RawMessage(`[[1,1,1],[1,1,2],[1,1,3]]`))

	result, err := p.Merge(ctx, MergeOption{})
	require.Nil(t, err)
	assert.Equal(t, []string{TaggedKey(2), ShardKey(2)}, result.Skipped)
	assert.Equal(t, 2, result.Unique.Records)
	assert.Equal(t, 1, result.Unique.Mismatch)
}
