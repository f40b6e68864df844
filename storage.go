package qurantag

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"sync"

	"github.com/future-architect/gocloudurls"
	"github.com/shibukawa/cloudcounter"
	"gocloud.dev/docstore"
	"gocloud.dev/gcerrors"
)

const reclassifyPasses cloudcounter.CounterKey = "reclassify_passes"

// resolvedTotal is the ledger document holding the resolved word sum.
const resolvedTotal = "resolved_words"

type ledgerTotal struct {
	ID    string `docstore:"id"`
	Value int    `docstore:"value"`
}

// batchSize bounds one docstore action list.
const batchSize = 500

// Storage keeps the published unique-word view and the reclassification ledger.
type Storage interface {
	PutWords(ctx context.Context, words []*wordEntity) error
	GetWords(ctx context.Context, words []*wordEntity) (map[int]bool, error)
	WordsByRoot(ctx context.Context, root string) ([]*wordEntity, error)
	RecordPass(ctx context.Context, resolved int) error
	Ledger(ctx context.Context) (Ledger, error)
	Close() error
	WriteIndex(ctx context.Context, w io.Writer) error
	ReadIndex(ctx context.Context, r io.Reader) error
}

// Ledger is the running total of reclassification passes.
type Ledger struct {
	Passes   int `json:"passes"`
	Resolved int `json:"resolved"`
}

var (
	_ Storage = &docstoreStorage{}
	_ Storage = &localStorage{}
)

// snapshot is the gob form shared by both storages.
type snapshot struct {
	Words    map[string]*wordEntity
	Passes   int
	Resolved int
}

type docstoreStorage struct {
	words   *docstore.Collection
	ledger  *docstore.Collection
	counter *cloudcounter.Counter
}

func localFilePath(filename, folder string) string {
	if folder == "" {
		return ""
	}
	return filepath.Join(folder, filename)
}

func openCollection(ctx context.Context, opt Option, collection, keyName, fileName string) (*docstore.Collection, error) {
	url, err := gocloudurls.NormalizeDocStoreURL(opt.DocumentUrl, gocloudurls.Option{
		Collection: collection,
		KeyName:    keyName,
		FileName:   localFilePath(fileName, opt.LocalFolder),
	})
	if err != nil {
		return nil, fmt.Errorf("Can't parse document URL: %w", err)
	}
	result, err := docstore.OpenCollection(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("Can't open collection %s: %w", collection, err)
	}
	return result, nil
}

func newDocstoreStorage(ctx context.Context, opt Option) (Storage, error) {
	words, err := openCollection(ctx, opt, opt.Collection, "key", "corpus.db")
	if err != nil {
		return nil, err
	}
	ledger, err := openCollection(ctx, opt, opt.Collection+"_ledger", "id", "ledger.db")
	if err != nil {
		words.Close()
		return nil, err
	}
	result := &docstoreStorage{
		words:  words,
		ledger: ledger,
	}
	result.counter = cloudcounter.NewCounter(ledger, cloudcounter.Option{
		Concurrency: opt.CounterConcurrency,
		Prefix:      opt.Collection + "c",
	})
	if err := result.counter.Register(ctx, reclassifyPasses); err != nil {
		result.Close()
		return nil, err
	}
	err = ledger.Get(ctx, &ledgerTotal{ID: resolvedTotal})
	if gcerrors.Code(err) == gcerrors.NotFound {
		err = ledger.Create(ctx, &ledgerTotal{ID: resolvedTotal})
		if gcerrors.Code(err) == gcerrors.AlreadyExists {
			err = nil
		}
	}
	if err != nil {
		result.Close()
		return nil, fmt.Errorf("Can't prepare reclassification ledger: %w", err)
	}
	return result, nil
}

func (d *docstoreStorage) PutWords(ctx context.Context, words []*wordEntity) error {
	for start := 0; start < len(words); start += batchSize {
		actions := d.words.Actions()
		for _, word := range words[start:min(start+batchSize, len(words))] {
			actions = actions.Put(word)
		}
		if err := actions.Do(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (d *docstoreStorage) GetWords(ctx context.Context, words []*wordEntity) (errs map[int]bool, err error) {
	actions := d.words.Actions()
	for i := range words {
		actions = actions.Get(words[i])
	}
	err = actions.Do(ctx)
	if errs, ok := err.(docstore.ActionListError); ok {
		hasErrors := make(map[int]bool)
		for _, err := range errs {
			hasErrors[err.Index] = true
		}
		return hasErrors, err
	}
	return nil, err
}

func (d *docstoreStorage) WordsByRoot(ctx context.Context, root string) ([]*wordEntity, error) {
	iter := d.words.Query().Where("root", "=", root).Get(ctx)
	defer iter.Stop()
	var result []*wordEntity
	for {
		word := &wordEntity{}
		err := iter.Next(ctx, word)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		result = append(result, word)
	}
	sortEntities(result)
	return result, nil
}

func (d *docstoreStorage) RecordPass(ctx context.Context, resolved int) error {
	if _, err := d.counter.Increment(ctx, reclassifyPasses); err != nil {
		return err
	}
	if resolved == 0 {
		return nil
	}
	return d.ledger.Actions().
		Update(&ledgerTotal{ID: resolvedTotal}, docstore.Mods{"value": docstore.Increment(resolved)}).
		Do(ctx)
}

func (d *docstoreStorage) Ledger(ctx context.Context) (Ledger, error) {
	passes, err := d.counter.Get(ctx, reclassifyPasses)
	if err != nil {
		return Ledger{}, err
	}
	resolved := ledgerTotal{ID: resolvedTotal}
	if err := d.ledger.Get(ctx, &resolved); err != nil {
		return Ledger{}, err
	}
	return Ledger{Passes: passes, Resolved: resolved.Value}, nil
}

func (d *docstoreStorage) Close() error {
	errs := &CombinedError{Message: "Can't close corpus store"}
	errs.appendIfError(d.words.Close())
	errs.appendIfError(d.ledger.Close())
	return errs.errorOrNil()
}

// WriteIndex dumps every stored word into the same gob snapshot the local
// storage uses.
func (d *docstoreStorage) WriteIndex(ctx context.Context, w io.Writer) error {
	ledger, err := d.Ledger(ctx)
	if err != nil {
		return err
	}
	cp := &snapshot{
		Words:    make(map[string]*wordEntity),
		Passes:   ledger.Passes,
		Resolved: ledger.Resolved,
	}
	iter := d.words.Query().Get(ctx)
	defer iter.Stop()
	for {
		word := &wordEntity{}
		err := iter.Next(ctx, word)
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		cp.Words[word.Key] = word
	}
	return gob.NewEncoder(w).Encode(cp)
}

// ReadIndex stores the words of a snapshot. The ledger of the snapshot is not
// replayed into the counters.
func (d *docstoreStorage) ReadIndex(ctx context.Context, r io.Reader) error {
	cp := &snapshot{}
	if err := gob.NewDecoder(r).Decode(cp); err != nil {
		return err
	}
	words := make([]*wordEntity, 0, len(cp.Words))
	for _, word := range cp.Words {
		words = append(words, word)
	}
	sortEntities(words)
	return d.PutWords(ctx, words)
}

type localStorage struct {
	Words    map[string]*wordEntity
	Passes   int
	Resolved int
	lock     *sync.RWMutex
}

var ErrBatchGet = errors.New("batch get error")

func newLocalStorage() *localStorage {
	return &localStorage{
		Words: make(map[string]*wordEntity),
		lock:  &sync.RWMutex{},
	}
}

func (l *localStorage) PutWords(ctx context.Context, words []*wordEntity) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	for _, word := range words {
		cp := *word
		l.Words[word.Key] = &cp
	}
	return nil
}

func (l *localStorage) GetWords(ctx context.Context, words []*wordEntity) (map[int]bool, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	errors := make(map[int]bool)
	for i, word := range words {
		res, ok := l.Words[word.Key]
		if !ok {
			errors[i] = true
			continue
		}
		*word = *res
	}
	if len(errors) == 0 {
		return nil, nil
	}
	return errors, ErrBatchGet
}

func (l *localStorage) WordsByRoot(ctx context.Context, root string) ([]*wordEntity, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	var result []*wordEntity
	for _, word := range l.Words {
		if word.Root == root {
			cp := *word
			result = append(result, &cp)
		}
	}
	sortEntities(result)
	return result, nil
}

func (l *localStorage) RecordPass(ctx context.Context, resolved int) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.Passes++
	l.Resolved += resolved
	return nil
}

func (l *localStorage) Ledger(ctx context.Context) (Ledger, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return Ledger{Passes: l.Passes, Resolved: l.Resolved}, nil
}

func (l *localStorage) Close() error {
	return nil
}

// WriteIndex writes content into io.Writer
func (l *localStorage) WriteIndex(ctx context.Context, w io.Writer) error {
	l.lock.RLock()
	defer l.lock.RUnlock()
	cp := &snapshot{
		Words:    l.Words,
		Passes:   l.Passes,
		Resolved: l.Resolved,
	}
	return gob.NewEncoder(w).Encode(cp)
}

// ReadIndex replaces the content with a snapshot.
func (l *localStorage) ReadIndex(ctx context.Context, r io.Reader) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	cp := &snapshot{}
	if err := gob.NewDecoder(r).Decode(cp); err != nil {
		return err
	}
	if cp.Words == nil {
		cp.Words = make(map[string]*wordEntity)
	}
	l.Words = cp.Words
	l.Passes = cp.Passes
	l.Resolved = cp.Resolved
	return nil
}

func sortEntities(words []*wordEntity) {
	sort.Slice(words, func(i, j int) bool {
		return words[i].Index < words[j].Index
	})
}
