package qurantag

import (
	"context"
	"testing"

	_ "github.com/future-architect/qurantag/nlp/arabic"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"
)

// newTestPipeline opens a pipeline on an in-memory bucket. Passing the bucket
// of another pipeline shares its artifacts.
func newTestPipeline(t *testing.T, bucket *blob.Bucket, opt Option) *Pipeline {
	t.Helper()
	if bucket == nil {
		bucket = memblob.OpenBucket(nil)
	}
	opt.BucketOpener = func(ctx context.Context, opt Option) (*blob.Bucket, error) {
		return bucket, nil
	}
	if opt.Shards == 0 {
		opt.Shards = 3
	}
	p, err := NewPipeline(context.Background(), opt)
	require.Nil(t, err)
	return p
}

func tokens(pairs ...string) []Token {
	var result []Token
	for i := 0; i+1 < len(pairs); i += 2 {
		result = append(result, Token{Surface: pairs[i], Root: pairs[i+1]})
	}
	return result
}

func seed(t *testing.T, p *Pipeline, key string, v interface{}) {
	t.Helper()
	require.Nil(t, p.artifacts.WriteJSON(context.Background(), key, v, nil))
}

func readEntries(t *testing.T, p *Pipeline, key string) []TaggedEntry {
	t.Helper()
	var entries []TaggedEntry
	require.Nil(t, p.artifacts.ReadJSON(context.Background(), key, &entries))
	return entries
}

func readRaw(t *testing.T, p *Pipeline, key string) []byte {
	t.Helper()
	data, err := p.artifacts.bucket.ReadAll(context.Background(), key)
	require.Nil(t, err)
	return data
}
