// Package qurantag drives the tagging pipeline over a sharded Arabic corpus:
// split, classify, reclassify and merge, with every artifact kept in one
// gocloud bucket and the merged word list published to a document store.
package qurantag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/future-architect/qurantag/nlp"
	"github.com/rs/xid"
	"go.uber.org/zap"
	"gocloud.dev/blob"
	"gocloud.dev/pubsub"
)

// Pipeline owns the artifact bucket, the corpus store and the tagger
// revisions of one run. Stages are serialized.
type Pipeline struct {
	ctx          context.Context
	runID        string
	artifacts    *ArtifactStore
	storage      Storage
	tagger       *nlp.Tagger
	reclassifier *nlp.Tagger
	shards       int
	concurrency  int
	force        bool
	logger       *zap.Logger
	fanOut       func(msg *pubsub.Message) error
	topic        *pubsub.Topic
	lock         sync.Mutex
	close        sync.Once
}

type Option struct {
	ArtifactUrl        string
	BucketOpener       func(ctx context.Context, opt Option) (*blob.Bucket, error)
	DocumentUrl        string
	LocalFolder        string
	Collection         string
	CounterConcurrency int
	EventUrl           string
	Shards             int
	Concurrency        int
	Revision           string
	ReclassifyRevision string
	// Tagger and ReclassifyTagger override the registered revisions.
	Tagger           *nlp.Tagger
	ReclassifyTagger *nlp.Tagger
	Logger           *zap.Logger
	// Force lets split and classify overwrite existing artifacts.
	Force bool
}

const (
	DefaultArtifactUrl = "file://./qu"
	DefaultShards      = 15
)

func initOpt(opt ...Option) (Option, error) {
	var option Option
	if len(opt) > 0 {
		option = opt[0]
	}
	if option.ArtifactUrl == "" {
		option.ArtifactUrl = os.Getenv("QURANTAG_ARTIFACT_URL")
	}
	if option.ArtifactUrl == "" {
		option.ArtifactUrl = DefaultArtifactUrl
	}
	if option.DocumentUrl == "" {
		option.DocumentUrl = os.Getenv("QURANTAG_DOCUMENT_URL")
	}
	if option.EventUrl == "" {
		option.EventUrl = os.Getenv("QURANTAG_EVENT_URL")
	}
	if option.Shards < 0 {
		return option, fmt.Errorf("NewPipeline: %d shards: %w", option.Shards, ErrNoShards)
	}
	if option.Shards == 0 {
		option.Shards = DefaultShards
	}
	if option.Concurrency < 0 {
		return option, fmt.Errorf("NewPipeline: %d workers: %w", option.Concurrency, ErrConcurrency)
	}
	if option.CounterConcurrency < 0 {
		return option, fmt.Errorf("NewPipeline: %d counter shards: %w", option.CounterConcurrency, ErrConcurrency)
	}
	if option.Concurrency == 0 {
		option.Concurrency = 4
	}
	if option.CounterConcurrency == 0 {
		option.CounterConcurrency = 5
	}
	if option.Collection == "" {
		option.Collection = "corpus"
	}
	if option.Revision == "" {
		option.Revision = "core"
	}
	if option.ReclassifyRevision == "" {
		option.ReclassifyRevision = "extended"
	}
	if option.Logger == nil {
		option.Logger = zap.NewNop()
	}
	return option, nil
}

// NewPipeline opens the artifact bucket, the corpus store and the shard event
// topic. Tagger revisions must be registered before, usually by importing
// nlp/arabic.
func NewPipeline(ctx context.Context, opt ...Option) (*Pipeline, error) {
	option, err := initOpt(opt...)
	if err != nil {
		return nil, err
	}
	tagger, err := resolveTagger(option.Tagger, option.Revision)
	if err != nil {
		return nil, err
	}
	reclassifier, err := resolveTagger(option.ReclassifyTagger, option.ReclassifyRevision)
	if err != nil {
		return nil, err
	}
	if option.BucketOpener == nil {
		option.BucketOpener = DefaultBucketOpener
	}
	runID := xid.New().String()
	result := &Pipeline{
		ctx:          ctx,
		runID:        runID,
		tagger:       tagger,
		reclassifier: reclassifier,
		shards:       option.Shards,
		concurrency:  option.Concurrency,
		force:        option.Force,
		logger:       option.Logger.With(zap.String("run", runID)),
		fanOut:       dummyFanOut,
	}
	bucket, err := option.BucketOpener(ctx, option)
	if err != nil {
		return nil, err
	}
	result.artifacts = NewArtifactStore(bucket)
	if option.DocumentUrl != "" {
		result.storage, err = newDocstoreStorage(ctx, option)
	} else {
		result.storage = newLocalStorage()
	}
	if err != nil {
		bucket.Close()
		return nil, err
	}
	if option.EventUrl != "" {
		result.topic, err = openTopic(ctx, option.EventUrl)
		if err != nil {
			result.Close()
			return nil, err
		}
		result.fanOut = func(msg *pubsub.Message) error {
			return result.topic.Send(ctx, msg)
		}
	}
	go func() {
		<-ctx.Done()
		result.Close()
	}()
	return result, nil
}

func resolveTagger(tagger *nlp.Tagger, revision string) (*nlp.Tagger, error) {
	if tagger != nil {
		return tagger, nil
	}
	return nlp.FindTagger(revision)
}

func (p *Pipeline) RunID() string {
	return p.runID
}

func (p *Pipeline) Artifacts() *ArtifactStore {
	return p.artifacts
}

func (p *Pipeline) Tagger() *nlp.Tagger {
	return p.tagger
}

func (p *Pipeline) ReclassifyTagger() *nlp.Tagger {
	return p.reclassifier
}

func (p *Pipeline) Shards() int {
	return p.shards
}

// Close releases the bucket, the corpus store and the topic. memdocstore
// needs Close() to save its file.
func (p *Pipeline) Close() (err error) {
	p.close.Do(func() {
		errs := &CombinedError{Message: "Can't close pipeline"}
		if p.artifacts != nil {
			errs.appendIfError(p.artifacts.Close())
		}
		if p.storage != nil {
			errs.appendIfError(p.storage.Close())
		}
		if p.topic != nil {
			errs.appendIfError(p.topic.Shutdown(context.Background()))
		}
		err = errs.errorOrNil()
	})
	return
}

func (p *Pipeline) allShards() []int {
	result := make([]int, p.shards)
	for i := range result {
		result[i] = i + 1
	}
	return result
}

func (p *Pipeline) selectShards(shards []int) ([]int, error) {
	if len(shards) == 0 {
		return p.allShards(), nil
	}
	for _, shard := range shards {
		if shard < 1 || shard > p.shards {
			return nil, fmt.Errorf("shard %d is out of range 1-%d", shard, p.shards)
		}
	}
	return shards, nil
}

func isMissing(err error) bool {
	return errors.Is(err, ErrMissingArtifact)
}
