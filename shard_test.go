package qurantag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartition(t *testing.T) {
	tests := []struct {
		name  string
		total int
		n     int
		want  []int
	}{
		{name: "remainder in last shard", total: 10, n: 3, want: []int{4, 4, 2}},
		{name: "short last shard", total: 10, n: 4, want: []int{3, 3, 3, 1}},
		{name: "trailing empty shard", total: 10, n: 6, want: []int{2, 2, 2, 2, 2, 0}},
		{name: "even", total: 9, n: 3, want: []int{3, 3, 3}},
		{name: "single shard", total: 7, n: 1, want: []int{7}},
		{name: "more shards than tokens", total: 2, n: 4, want: []int{1, 1, 0, 0}},
		{name: "empty corpus", total: 0, n: 3, want: []int{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans, err := Partition(tt.total, tt.n)
			require.Nil(t, err)
			var sizes []int
			next := 0
			for i, span := range spans {
				assert.Equal(t, i+1, span.Shard)
				assert.Equal(t, next, span.Start)
				next = span.End
				sizes = append(sizes, span.Len())
			}
			assert.Equal(t, tt.total, next)
			assert.Equal(t, tt.want, sizes)
		})
	}
}

func TestPartition_NoShards(t *testing.T) {
	_, err := Partition(10, 0)
	assert.True(t, errors.Is(err, ErrNoShards))
}

func TestPipeline_Split(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t, nil, Option{Shards: 3})
	defer p.Close()
	source := tokens("مِن", "", "يَكْتُبُ", "ك.ت.ب", "الكِتاب", "", "كِتاب", "ك.ت.ب", "قالُوا", "ق.و.ل", "عِنْدَ", "", "ص", "NTWS")
	seed(t, p, SourceKey, source)

	report, err := p.Split(ctx)
	require.Nil(t, err)
	require.Len(t, report.Shards, 3)
	var joined []Token
	for i, shard := range report.Shards {
		assert.False(t, shard.Kept)
		shardTokens, err := p.ReadShard(ctx, i+1)
		require.Nil(t, err)
		assert.Len(t, shardTokens, shard.Total)
		joined = append(joined, shardTokens...)
	}
	assert.Equal(t, []int{3, 3, 1}, []int{report.Shards[0].Total, report.Shards[1].Total, report.Shards[2].Total})
	require.Len(t, joined, len(source))
	for i := range source {
		assert.Equal(t, source[i].Surface, joined[i].Surface)
		assert.Equal(t, source[i].Root, joined[i].Root)
	}

	// existing shards are kept
	seed(t, p, SourceKey, tokens("مِن", ""))
	report, err = p.Split(ctx)
	require.Nil(t, err)
	assert.True(t, report.Shards[0].Kept)
	shard, err := p.ReadShard(ctx, 1)
	require.Nil(t, err)
	assert.Len(t, shard, 3)
}

func TestPipeline_Split_Force(t *testing.T) {
	ctx := context.Background()
	p := newTestPipeline(t, nil, Option{Shards: 2, Force: true})
	defer p.Close()
	seed(t, p, ShardKey(1), tokens("x", "", "y", ""))
	seed(t, p, SourceKey, tokens("مِن", ""))

	report, err := p.Split(ctx)
	require.Nil(t, err)
	assert.False(t, report.Shards[0].Kept)
	shard, err := p.ReadShard(ctx, 1)
	require.Nil(t, err)
	assert.Len(t, shard, 1)
	shard, err = p.ReadShard(ctx, 2)
	require.Nil(t, err)
	assert.Len(t, shard, 0)
	assert.Equal(t, "[]\n", string(readRaw(t, p, ShardKey(2))))
}

func TestPipeline_Split_MissingSource(t *testing.T) {
	p := newTestPipeline(t, nil, Option{})
	defer p.Close()
	report, err := p.Split(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, []string{SourceKey}, report.Skipped)
	assert.Empty(t, report.Shards)
}

func TestNewPipeline_InvalidShards(t *testing.T) {
	_, err := NewPipeline(context.Background(), Option{Shards: -1})
	assert.True(t, errors.Is(err, ErrNoShards))
}

func TestNewPipeline_InvalidConcurrency(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{name: "workers", opt: Option{ArtifactUrl: "mem://", Concurrency: -1}},
		{name: "counter shards", opt: Option{ArtifactUrl: "mem://", CounterConcurrency: -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPipeline(context.Background(), tt.opt)
			assert.True(t, errors.Is(err, ErrConcurrency))
		})
	}
}
