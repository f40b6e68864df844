package qurantag

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/shibukawa/compints"
)

// Occurrence positions are packed as surah*1_000_000 + ayah*1_000 + word.
const (
	surahBase = 1000000
	ayahBase  = 1000
)

func packPosition(p Position) (uint32, error) {
	if p.Ayah >= ayahBase || p.Word >= ayahBase || p.Surah >= 4000 {
		return 0, fmt.Errorf("position %s can't be packed", p)
	}
	return uint32(p.Surah*surahBase + p.Ayah*ayahBase + p.Word), nil
}

func unpackPosition(v uint32) Position {
	return Position{
		Surah: int(v / surahBase),
		Ayah:  int(v % surahBase / ayahBase),
		Word:  int(v % ayahBase),
	}
}

// packPositions compresses an occurrence list. Ascending lists use the
// delta form.
func packPositions(positions []Position) ([]byte, bool, error) {
	if len(positions) == 0 {
		return nil, true, nil
	}
	values := make([]uint32, len(positions))
	for i, pos := range positions {
		v, err := packPosition(pos)
		if err != nil {
			return nil, false, err
		}
		values[i] = v
	}
	sorted := sort.SliceIsSorted(values, func(i, j int) bool {
		return values[i] < values[j]
	})
	return compints.CompressToBytes(values, sorted), sorted, nil
}

func unpackPositions(data []byte, sorted bool) ([]Position, error) {
	if len(data) == 0 {
		return []Position{}, nil
	}
	values, err := compints.DecompressFromBytes(data, sorted)
	if err != nil {
		return nil, err
	}
	result := make([]Position, len(values))
	for i, v := range values {
		result[i] = unpackPosition(v)
	}
	return result, nil
}

func toEntity(word WordRecord) (*wordEntity, error) {
	positions, sorted, err := packPositions(word.Positions)
	if err != nil {
		return nil, fmt.Errorf("word %s: %w", word.Word, err)
	}
	return &wordEntity{
		Key:             word.Word,
		Index:           word.Index,
		Root:            word.Root,
		Tags:            word.Tags,
		Positions:       positions,
		Sorted:          sorted,
		OccurrenceCount: word.OccurrenceCount,
	}, nil
}

func fromEntity(entity *wordEntity) (*WordRecord, error) {
	positions, err := unpackPositions(entity.Positions, entity.Sorted)
	if err != nil {
		return nil, fmt.Errorf("Compressed data is broken of positions of word %s: %w", entity.Key, err)
	}
	return &WordRecord{
		Index:           entity.Index,
		Word:            entity.Key,
		Root:            entity.Root,
		Tags:            entity.Tags,
		Positions:       positions,
		OccurrenceCount: entity.OccurrenceCount,
	}, nil
}

// publishCorpus stores the unique view keyed by word. Words without a surface
// are not stored. A surface listed twice keeps its first record with the
// occurrences of both.
func (p *Pipeline) publishCorpus(ctx context.Context, words []WordRecord) (int, error) {
	order := make([]string, 0, len(words))
	byKey := make(map[string]*WordRecord, len(words))
	for _, word := range words {
		if word.Word == "" {
			continue
		}
		if existing, ok := byKey[word.Word]; ok {
			existing.Positions = append(existing.Positions, word.Positions...)
			existing.OccurrenceCount = len(existing.Positions)
			continue
		}
		cp := word
		cp.Positions = append([]Position(nil), word.Positions...)
		byKey[word.Word] = &cp
		order = append(order, word.Word)
	}
	entities := make([]*wordEntity, 0, len(order))
	for _, key := range order {
		entity, err := toEntity(*byKey[key])
		if err != nil {
			return 0, err
		}
		entities = append(entities, entity)
	}
	if err := p.storage.PutWords(ctx, entities); err != nil {
		return 0, fmt.Errorf("Can't publish corpus: %w", err)
	}
	return len(entities), nil
}

// Lookup returns the published record of each word, or nil when the word is
// not in the corpus store.
func (p *Pipeline) Lookup(ctx context.Context, words ...string) ([]*WordRecord, error) {
	if len(words) == 0 {
		return nil, nil
	}
	entities := make([]*wordEntity, len(words))
	for i, word := range words {
		entities[i] = &wordEntity{Key: word}
	}
	missing, err := p.storage.GetWords(ctx, entities)
	if err != nil && missing == nil {
		return nil, err
	}
	result := make([]*WordRecord, len(words))
	for i, entity := range entities {
		if missing[i] {
			continue
		}
		record, err := fromEntity(entity)
		if err != nil {
			return nil, err
		}
		result[i] = record
	}
	return result, nil
}

// ByRoot returns every published word of a root ordered by index.
func (p *Pipeline) ByRoot(ctx context.Context, root string) ([]*WordRecord, error) {
	entities, err := p.storage.WordsByRoot(ctx, root)
	if err != nil {
		return nil, err
	}
	result := make([]*WordRecord, len(entities))
	for i, entity := range entities {
		result[i], err = fromEntity(entity)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (p *Pipeline) Ledger(ctx context.Context) (Ledger, error) {
	return p.storage.Ledger(ctx)
}

// Export writes a gob snapshot of the corpus store.
func (p *Pipeline) Export(ctx context.Context, w io.Writer) error {
	return p.storage.WriteIndex(ctx, w)
}

// Import loads a snapshot written by Export.
func (p *Pipeline) Import(ctx context.Context, r io.Reader) error {
	return p.storage.ReadIndex(ctx, r)
}
