package qurantag

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/pubsub"
)

func TestPipeline_Classify(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t, nil, Option{})
	defer p.Close()
	seed(t, p, ShardKey(1), []json.RawMessage{
		json.RawMessage(`["مِن", ""]`),
		json.RawMessage(`["يَكْتُبُ", "ك.ت.ب"]`),
		json.RawMessage(`["الكِتاب"]`),
		json.RawMessage(`["كِتاب", "ك.ت.ب"]`),
		json.RawMessage(`42`),
	})

	report, err := p.Classify(ctx, 1)
	require.Nil(t, err)
	require.Len(t, report.Shards, 1)
	shard := report.Shards[0]
	assert.Equal(t, TaggedKey(1), shard.Key)
	assert.Equal(t, "core", shard.Revision)
	assert.Equal(t, 5, shard.Total)
	assert.Equal(t, 5, shard.UnknownBefore)
	assert.Equal(t, 3, shard.Reclassified)
	assert.Equal(t, 2, shard.StillUnknown)
	assert.Equal(t, 1, shard.Malformed)

	entries := readEntries(t, p, TaggedKey(1))
	require.Len(t, entries, 5)
	assert.Equal(t, [3]string{"مِن", "م.ن", "1.1"}, entries[0].fields())
	assert.Equal(t, [3]string{"يَ+كْتُبُ", "ك.ت.ب", "1.17,3.2"}, entries[1].fields())
	assert.Equal(t, [3]string{"ال+كِتاب", "", "1.5,2.1"}, entries[2].fields())
	assert.Equal(t, [3]string{"كِتاب", "ك.ت.ب", "6.1"}, entries[3].fields())
	assert.Equal(t, [3]string{"", "", "6.1"}, entries[4].fields())

	metadata, err := p.artifacts.Metadata(ctx, TaggedKey(1))
	require.Nil(t, err)
	assert.Equal(t, "core", metadata[metaRevision])
	assert.Equal(t, p.RunID(), metadata[metaRunID])
}

func TestPipeline_Classify_MissingShard(t *testing.T) {
	p := newTestPipeline(t, nil, Option{})
	defer p.Close()
	seed(t, p, ShardKey(1), tokens("مِن", ""))

	report, err := p.Classify(context.Background())
	require.Nil(t, err)
	require.Len(t, report.Shards, 3)
	assert.False(t, report.Shards[0].Skipped)
	assert.True(t, report.Shards[1].Skipped)
	assert.True(t, report.Shards[2].Skipped)
	assert.Equal(t, []string{ShardKey(2), ShardKey(3)}, report.Skipped)
	assert.Equal(t, 1, report.Totals().Total)
}

func TestPipeline_Classify_OutOfRange(t *testing.T) {
	p := newTestPipeline(t, nil, Option{})
	defer p.Close()
	_, err := p.Classify(context.Background(), 4)
	assert.NotNil(t, err)
}

func TestPipeline_Classify_SameRevisionRetriesUnknown(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t, nil, Option{})
	defer p.Close()
	require.Nil(t, p.artifacts.WriteJSON(ctx, TaggedKey(1), []TaggedEntry{
		NewTaggedEntry("مِن", "", "2.1"),
		NewTaggedEntry("يَكْتُبُ", "ك.ت.ب", "6.1"),
		NewTaggedEntry("كِتاب", "ك.ت.ب", "6.1"),
	}, map[string]string{metaRevision: "core"}))

	report, err := p.Classify(ctx, 1)
	require.Nil(t, err)
	shard := report.Shards[0]
	assert.Equal(t, 3, shard.Total)
	assert.Equal(t, 2, shard.UnknownBefore)
	assert.Equal(t, 1, shard.Reclassified)
	assert.Equal(t, 1, shard.StillUnknown)
	assert.Equal(t, 0, shard.Overridden)

	entries := readEntries(t, p, TaggedKey(1))
	// a resolved entry is not touched by the same revision
	assert.Equal(t, "2.1", entries[0].Tags)
	assert.Equal(t, "1.17,3.2", entries[1].Tags)
	assert.Equal(t, "6.1", entries[2].Tags)
}

func TestPipeline_Classify_NewRevisionDictionaryOverrides(t *testing.T) {
	ctx := context.Background()
	core := newTestPipeline(t, nil, Option{})
	seed(t, core, ShardKey(1), tokens("عِنْدَ", "", "كَتَبَ", "ك.ت.ب", "نَسِيَ", "ن.س.ي", "مِن", ""))
	_, err := core.Classify(ctx, 1)
	require.Nil(t, err)
	entries := readEntries(t, core, TaggedKey(1))
	assert.Equal(t, "3.1", entries[0].Tags)
	assert.Equal(t, "6.1", entries[2].Tags)

	extended := newTestPipeline(t, core.artifacts.bucket, Option{Revision: "extended"})
	defer extended.Close()
	report, err := extended.Classify(ctx, 1)
	require.Nil(t, err)
	shard := report.Shards[0]
	assert.Equal(t, 1, shard.Overridden)
	assert.Equal(t, 1, shard.UnknownBefore)
	assert.Equal(t, 1, shard.Reclassified)

	entries = readEntries(t, extended, TaggedKey(1))
	assert.Equal(t, [3]string{"عِنْدَ", "ع.ن.د", "5.2"}, entries[0].fields())
	assert.Equal(t, "3.1", entries[1].Tags)
	assert.Equal(t, "3.1", entries[2].Tags)
	assert.Equal(t, [3]string{"مِن", "م.ن", "1.1"}, entries[3].fields())

	metadata, err := extended.artifacts.Metadata(ctx, TaggedKey(1))
	require.Nil(t, err)
	assert.Equal(t, "extended", metadata[metaRevision])
}

func TestPipeline_Classify_Force(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t, nil, Option{Force: true})
	defer p.Close()
	seed(t, p, ShardKey(1), tokens("مِن", ""))
	require.Nil(t, p.artifacts.WriteJSON(ctx, TaggedKey(1), []TaggedEntry{
		NewTaggedEntry("x", "", "2.1"),
		NewTaggedEntry("y", "", "2.1"),
	}, map[string]string{metaRevision: "core"}))

	_, err := p.Classify(ctx, 1)
	require.Nil(t, err)
	entries := readEntries(t, p, TaggedKey(1))
	require.Len(t, entries, 1)
	assert.Equal(t, "1.1", entries[0].Tags)
}

func TestPipeline_Classify_PublishesEvents(t *testing.T) {
	p := newTestPipeline(t, nil, Option{})
	defer p.Close()
	var lock sync.Mutex
	var events []ShardEvent
	p.fanOut = func(msg *pubsub.Message) error {
		event, err := DecodeShardEvent(msg)
		assert.Nil(t, err)
		assert.Equal(t, "classify", msg.Metadata["stage"])
		lock.Lock()
		events = append(events, event)
		lock.Unlock()
		return nil
	}
	for shard := 1; shard <= 3; shard++ {
		seed(t, p, ShardKey(shard), tokens("مِن", "", "كِتاب", ""))
	}

	_, err := p.Classify(context.Background())
	require.Nil(t, err)
	require.Len(t, events, 3)
	for _, event := range events {
		assert.Equal(t, p.RunID(), event.RunID)
		assert.Equal(t, "core", event.Revision)
		assert.Equal(t, 2, event.Total)
		assert.Equal(t, 1, event.Unknown)
		assert.Equal(t, 1, event.Resolved)
	}
}
