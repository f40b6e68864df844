package qurantag

import (
	"context"
	"sort"
	"strings"

	"github.com/future-architect/qurantag/nlp"
)

const (
	topCount      = 20
	reviewSamples = 100
)

type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type ShardSummary struct {
	Shard           int    `json:"shard"`
	Key             string `json:"key"`
	Total           int    `json:"total"`
	NeedsReview     int    `json:"needs_review"`
	FullyClassified int    `json:"fully_classified"`
}

// Summary is the read-only statistics view over the merged corpus and the
// tagged shards. Tags other than 6.1 count as resolved.
type Summary struct {
	TotalWords   int            `json:"total_words"`
	UniqueWords  int            `json:"unique_words"`
	UniqueRoots  int            `json:"unique_roots"`
	TagFrequency map[string]int `json:"tag_frequency"`
	TopWords     []Count        `json:"top_words"`
	TopRoots     []Count        `json:"top_roots"`
	TopMorphemes []Count        `json:"top_morphemes"`
	TopTagPairs  []Count        `json:"top_tag_pairs"`
	SurahWords   map[int]int    `json:"surah_words"`
	SurahRoots   map[int]int    `json:"surah_roots"`

	Entries       int            `json:"entries"`
	Resolved      int            `json:"resolved"`
	NeedsReview   int            `json:"needs_review"`
	Ambiguous     int            `json:"ambiguous"`
	Shards        []ShardSummary `json:"shards"`
	ReviewSamples []TaggedEntry  `json:"review_samples"`
}

// SuccessRate is the share of tagged entries without any 6.1 slot.
func (s Summary) SuccessRate() float64 {
	if s.Entries == 0 {
		return 0
	}
	return float64(s.Resolved) / float64(s.Entries) * 100
}

// Summarize counts the merged occurrences and the tagged shards in shard
// order. When tagger is given, entries whose tags are the default sense of an
// ambiguous dictionary word are counted as Ambiguous.
func Summarize(occurrences []OccurrenceRecord, shards map[int][]TaggedEntry, tagger *nlp.Tagger) Summary {
	result := Summary{
		TagFrequency: make(map[string]int),
		SurahWords:   make(map[int]int),
		SurahRoots:   make(map[int]int),
	}
	words := make(map[string]int)
	roots := make(map[string]int)
	morphemes := make(map[string]int)
	pairs := make(map[string]int)
	surahRoots := make(map[int]map[string]bool)
	for _, occurrence := range occurrences {
		result.TotalWords++
		words[occurrence.Word]++
		result.SurahWords[occurrence.Surah]++
		if nlp.HasRoot(occurrence.Root) {
			roots[occurrence.Root]++
			if surahRoots[occurrence.Surah] == nil {
				surahRoots[occurrence.Surah] = make(map[string]bool)
			}
			surahRoots[occurrence.Surah][occurrence.Root] = true
		}
		if occurrence.Tags != "" {
			tags := nlp.ParseTags(occurrence.Tags)
			for i, tag := range tags {
				result.TagFrequency[string(tag)]++
				for _, other := range tags[i+1:] {
					pairs[string(tag)+" "+string(other)]++
				}
			}
		}
		if strings.Contains(occurrence.Word, nlp.Separator) {
			for _, morpheme := range strings.Split(occurrence.Word, nlp.Separator) {
				morphemes[morpheme]++
			}
		}
	}
	for surah, set := range surahRoots {
		result.SurahRoots[surah] = len(set)
	}
	result.UniqueWords = len(words)
	result.UniqueRoots = len(roots)
	result.TopWords = top(words, topCount)
	result.TopRoots = top(roots, topCount)
	result.TopMorphemes = top(morphemes, topCount)
	result.TopTagPairs = top(pairs, topCount)

	indexes := make([]int, 0, len(shards))
	for shard := range shards {
		indexes = append(indexes, shard)
	}
	sort.Ints(indexes)
	for _, shard := range indexes {
		summary := ShardSummary{Shard: shard}
		for _, entry := range shards[shard] {
			summary.Total++
			if entry.Malformed() || nlp.NeedsReview(entry.Tags) {
				summary.NeedsReview++
				if len(result.ReviewSamples) < reviewSamples {
					result.ReviewSamples = append(result.ReviewSamples, entry)
				}
			} else {
				summary.FullyClassified++
			}
			if tagger != nil && !entry.Malformed() {
				if res, ok := tagger.Lookup(entry.Surface, entry.Root); ok && res.Ambiguous && res.TagString() == entry.Tags {
					result.Ambiguous++
				}
			}
		}
		result.Entries += summary.Total
		result.Resolved += summary.FullyClassified
		result.NeedsReview += summary.NeedsReview
		result.Shards = append(result.Shards, summary)
	}
	return result
}

func top(counts map[string]int, n int) []Count {
	result := make([]Count, 0, len(counts))
	for key, count := range counts {
		result = append(result, Count{Key: key, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Key < result[j].Key
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}

// Stats summarizes the current artifacts. Missing artifacts only leave their
// part of the summary empty.
func (p *Pipeline) Stats(ctx context.Context) (Summary, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	var occurrences []OccurrenceRecord
	if err := p.artifacts.ReadJSON(ctx, FullKey, &occurrences); err != nil && !isMissing(err) {
		return Summary{}, err
	}
	shards := make(map[int][]TaggedEntry)
	keys := make(map[int]string)
	for _, shard := range p.allShards() {
		key, _, err := p.latestTagged(ctx, shard)
		if err != nil {
			return Summary{}, err
		}
		var entries []TaggedEntry
		err = p.artifacts.ReadJSON(ctx, key, &entries)
		if isMissing(err) {
			continue
		} else if err != nil {
			return Summary{}, err
		}
		shards[shard] = entries
		keys[shard] = key
	}
	result := Summarize(occurrences, shards, p.reclassifier)
	for i := range result.Shards {
		result.Shards[i].Key = keys[result.Shards[i].Shard]
	}
	return result, nil
}
