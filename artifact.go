package qurantag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"
)

// Artifact keys inside the bucket.
const (
	SourceKey    = "words-qu.json"
	ReferenceKey = "words-ref.json"
	CompleteKey  = "merged_quran_complete.json"
	FullKey      = "merged_quran_full.json"

	batchPrefix = "batches/"
	finalPrefix = "final/"
)

// Blob metadata written next to tagged shards.
const (
	metaRevision = "revision"
	metaPass     = "pass"
	metaRunID    = "run"
)

// ShardKey is the key of the 1-based shard file.
func ShardKey(shard int) string {
	return fmt.Sprintf("%sbatch_%02d.json", batchPrefix, shard)
}

func TaggedKey(shard int) string {
	return fmt.Sprintf("%sfinal_%02d.json", finalPrefix, shard)
}

func ReclassifiedKey(shard int) string {
	return fmt.Sprintf("%sfinal_%02d_reclassified.json", finalPrefix, shard)
}

// ArtifactStore keeps every pipeline file as a key in one bucket.
type ArtifactStore struct {
	bucket *blob.Bucket
}

// DefaultBucketOpener accepts either a gocloud blob URL or a local folder.
// file:// URLs may be relative and the folder is created when missing.
func DefaultBucketOpener(ctx context.Context, opt Option) (*blob.Bucket, error) {
	url := opt.ArtifactUrl
	if strings.Contains(url, "://") && !strings.HasPrefix(url, "file://") {
		bucket, err := blob.OpenBucket(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("Can't open bucket %s: %w", url, err)
		}
		return bucket, nil
	}
	dir, err := filepath.Abs(strings.TrimPrefix(url, "file://"))
	if err != nil {
		return nil, fmt.Errorf("Can't resolve artifact folder %s: %w", url, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("Can't create artifact folder %s: %w", dir, err)
	}
	bucket, err := fileblob.OpenBucket(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("Can't open artifact folder %s: %w", dir, err)
	}
	return bucket, nil
}

func NewArtifactStore(bucket *blob.Bucket) *ArtifactStore {
	return &ArtifactStore{bucket: bucket}
}

// ReadJSON decodes the artifact into v. A missing key is reported as
// ErrMissingArtifact.
func (s *ArtifactStore) ReadJSON(ctx context.Context, key string, v interface{}) error {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return fmt.Errorf("%s: %w", key, ErrMissingArtifact)
		}
		return fmt.Errorf("Can't read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("Can't parse %s: %w", key, err)
	}
	return nil
}

// WriteJSON replaces the artifact in one step. When encoding fails the writer
// context is canceled, which aborts the upload and leaves the old content.
func (s *ArtifactStore) WriteJSON(ctx context.Context, key string, v interface{}, metadata map[string]string) error {
	var buf bytes.Buffer
	if err := encodeJSON(&buf, v); err != nil {
		return fmt.Errorf("Can't encode %s: %w", key, err)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{
		ContentType: "application/json",
		Metadata:    metadata,
	})
	if err != nil {
		return fmt.Errorf("Can't open %s for writing: %w", key, err)
	}
	if _, err := io.Copy(w, &buf); err != nil {
		cancel()
		w.Close()
		return fmt.Errorf("Can't write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("Can't write %s: %w", key, err)
	}
	return nil
}

func encodeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Metadata returns the blob metadata of an artifact.
func (s *ArtifactStore) Metadata(ctx context.Context, key string) (map[string]string, error) {
	attrs, err := s.bucket.Attributes(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%s: %w", key, ErrMissingArtifact)
		}
		return nil, err
	}
	return attrs.Metadata, nil
}

func (s *ArtifactStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.bucket.Exists(ctx, key)
}

// Keys lists artifact keys under prefix in lexical order.
func (s *ArtifactStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var result []string
	iter := s.bucket.List(&blob.ListOptions{Prefix: prefix})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if obj.IsDir {
			continue
		}
		result = append(result, obj.Key)
	}
	sort.Strings(result)
	return result, nil
}

func (s *ArtifactStore) Close() error {
	return s.bucket.Close()
}
