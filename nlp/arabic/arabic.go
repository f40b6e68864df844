// Package arabic registers the Arabic tagger revisions: the closed-class
// dictionary, the shape heuristics and the morpheme segmenter.
package arabic

import (
	"fmt"

	"github.com/future-architect/qurantag/nlp"
)

const (
	// RevisionCore is the first classification pass.
	RevisionCore = "core"
	// RevisionExtended adds adverbs, more particles and proper nouns, and
	// root-aware verb shapes. The reclassification pass uses it.
	RevisionExtended = "extended"
)

func init() {
	nlp.RegisterTagger(mustBuild(RevisionCore, coreEntries(), false))
	nlp.RegisterTagger(mustBuild(RevisionExtended, extendedEntries(), true))
}

func mustBuild(revision string, entries []Entry, extended bool) *nlp.Tagger {
	tagger, _, err := build(revision, entries, extended)
	if err != nil {
		panic(err)
	}
	return tagger
}

func build(revision string, entries []Entry, extended bool) (*nlp.Tagger, *Lexicon, error) {
	lexicon, err := NewLexicon(revision, entries...)
	if err != nil {
		return nil, nil, err
	}
	prefixes := newTable(nlp.Key, corePrefixes)
	if extended {
		prefixes = prefixes.extend(extendedPrefixes)
	}
	h := heuristics{segmenter: newSegmenter(lexicon, prefixes, extended)}
	rules := []nlp.Rule{
		nlp.RuleFunc("segmented", h.segmented),
		nlp.RuleFunc("imperfective", h.imperfective),
		nlp.RuleFunc("perfective", h.perfective),
	}
	if extended {
		rules = append(rules, nlp.RuleFunc("rooted-perfective", h.rootedPerfective))
	}
	rules = append(rules, nlp.RuleFunc("article", h.article))
	return nlp.NewTagger(revision, NewDictionary(lexicon), rules...), lexicon, nil
}

// BaseEntries returns the table rows of a built-in revision.
func BaseEntries(revision string) ([]Entry, error) {
	switch revision {
	case RevisionCore:
		return coreEntries(), nil
	case RevisionExtended:
		return extendedEntries(), nil
	}
	return nil, fmt.Errorf("no built-in lexicon %s: %w", revision, nlp.ErrUnknownRevision)
}
