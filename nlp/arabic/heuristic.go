package arabic

import (
	"strings"
	"unicode/utf8"

	"github.com/future-architect/qurantag/nlp"
)

const (
	fatha  = "َ"
	shadda = 'ّ'
)

// roots that carry no consonantal skeleton
type suffixShape struct {
	match string
	// restore is appended to the base after cutting match.
	restore string
	part    string
}

var perfectiveSuffixes = []suffixShape{
	{match: "ُوا", part: "ُوا"},
	{match: "َتْ", restore: fatha, part: "تْ"},
}

var imperfectiveSuffixes = []suffixShape{
	{match: "ُونَ", part: "ُونَ"},
	{match: "ُوا", part: "ُوا"},
}

func keyLen(s string) int {
	return utf8.RuneCountInString(nlp.Key(s))
}

// imperfectivePrefix returns the verb prefix when a base letter follows it.
func imperfectivePrefix(surface string) (string, bool) {
	for _, prefix := range imperfectivePrefixes {
		if !strings.HasPrefix(surface, prefix) {
			continue
		}
		next, _ := utf8.DecodeRuneInString(surface[len(prefix):])
		if next == utf8.RuneError || nlp.IsDiacritic(next) {
			return "", false
		}
		return prefix, true
	}
	return "", false
}

func hasArticle(surface string) bool {
	return strings.HasPrefix(nlp.Key(surface), "ال")
}

func cutSuffix(surface string, shapes []suffixShape) (base string, shape suffixShape, ok bool) {
	for _, shape := range shapes {
		if strings.HasSuffix(surface, shape.match) {
			return strings.TrimSuffix(surface, shape.match) + shape.restore, shape, true
		}
	}
	return "", suffixShape{}, false
}

type heuristics struct {
	segmenter *Segmenter
}

// segmented handles surfaces that already carry + boundaries. Each part is
// classified on its own; the segmentation is kept as is.
func (h heuristics) segmented(surface, root string) (nlp.Result, bool) {
	if !strings.Contains(surface, nlp.Separator) {
		return nlp.Result{}, false
	}
	return h.segmenter.Segment(surface, root)
}

// imperfective splits يَ/تَ/نَ/أَ off a stem of at least four letters.
func (h heuristics) imperfective(surface, root string) (nlp.Result, bool) {
	prefix, ok := imperfectivePrefix(surface)
	if !ok || keyLen(surface) < 4 {
		return nlp.Result{}, false
	}
	stem := surface[len(prefix):]
	if core, shape, ok := cutSuffix(stem, imperfectiveSuffixes); ok && keyLen(core) >= 2 {
		return nlp.Result{
			Surface: strings.Join([]string{prefix, core, shape.part}, nlp.Separator),
			Root:    root,
			Tags:    []nlp.Code{nlp.ImperfectivePrefix, nlp.ImperfectiveVerb, nlp.AttachedPronoun},
		}, true
	}
	return nlp.Result{
		Surface: prefix + nlp.Separator + stem,
		Root:    root,
		Tags:    []nlp.Code{nlp.ImperfectivePrefix, nlp.ImperfectiveVerb},
	}, true
}

// perfective fires on a fatha ending or a subject suffix shape.
// Words opening with a verb prefix or the article are left to other rules.
func (h heuristics) perfective(surface, root string) (nlp.Result, bool) {
	if _, ok := imperfectivePrefix(surface); ok || hasArticle(surface) || keyLen(surface) < 3 {
		return nlp.Result{}, false
	}
	if base, shape, ok := cutSuffix(surface, perfectiveSuffixes); ok && keyLen(base) >= 2 {
		return nlp.Result{
			Surface: base + nlp.Separator + shape.part,
			Root:    root,
			Tags:    []nlp.Code{nlp.PerfectiveVerb, nlp.AttachedPronoun},
		}, true
	}
	if strings.HasSuffix(surface, fatha) {
		return nlp.Result{
			Surface: surface,
			Root:    root,
			Tags:    []nlp.Code{nlp.PerfectiveVerb},
		}, true
	}
	return nlp.Result{}, false
}

// rootedPerfective trusts a real root: a fatha ending is a past verb even
// when the word starts like an imperfective prefix (نَسِيَ).
func (h heuristics) rootedPerfective(surface, root string) (nlp.Result, bool) {
	if !nlp.HasRoot(root) || hasArticle(surface) || keyLen(surface) < 3 || !strings.HasSuffix(surface, fatha) {
		return nlp.Result{}, false
	}
	return nlp.Result{
		Surface: surface,
		Root:    root,
		Tags:    []nlp.Code{nlp.PerfectiveVerb},
	}, true
}

// article splits ال off and tags the remainder as a common noun unless it is
// a known proper-noun or relative-noun stem.
func (h heuristics) article(surface, root string) (nlp.Result, bool) {
	if !hasArticle(surface) || keyLen(surface) <= 2 {
		return nlp.Result{}, false
	}
	head, rest := nlp.SplitLetters(surface, 2)
	tag := nlp.CommonNoun
	ambiguous := false
	if code, amb, ok := h.segmenter.nominal(rest); ok {
		tag, ambiguous = code, amb
	}
	return nlp.Result{
		Surface:   head + nlp.Separator + rest,
		Root:      root,
		Tags:      []nlp.Code{nlp.DefiniteArticle, tag},
		Ambiguous: ambiguous,
	}, true
}
