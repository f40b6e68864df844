package arabic

import (
	"strings"

	"github.com/future-architect/qurantag/nlp"
)

// Segmenter tags every part of a +-delimited surface independently.
type Segmenter struct {
	lexicon   *Lexicon
	prefixes  table
	suffixes  table
	fragments table
	// rooted enables part-level verb shapes guarded by a real root.
	rooted bool
}

func newSegmenter(lexicon *Lexicon, prefixes table, rooted bool) *Segmenter {
	return &Segmenter{
		lexicon:   lexicon,
		prefixes:  prefixes,
		suffixes:  newTable(nlp.Key, suffixPronouns),
		fragments: newTable(shaddaKey, fragments),
		rooted:    rooted,
	}
}

// Segment returns one tag per part. Parts nothing can classify keep a 6.1
// slot; a surface where every slot is 6.1 is reported as a miss.
func (s *Segmenter) Segment(surface, root string) (nlp.Result, bool) {
	parts := strings.Split(surface, nlp.Separator)
	tags := make([]nlp.Code, len(parts))
	ambiguous := false
	for i := range parts {
		code, amb := s.classifyPart(parts, tags, i, root)
		tags[i] = code
		ambiguous = ambiguous || amb
	}
	for i := 1; i < len(parts); i++ {
		if tags[i] == nlp.AttachedPronoun && verbalSuffixes[parts[i]] && tags[i-1] == nlp.CommonNoun {
			tags[i-1] = nlp.PerfectiveVerb
		}
	}
	resolved := false
	for _, tag := range tags {
		if tag != nlp.Unknown {
			resolved = true
			break
		}
	}
	if !resolved {
		return nlp.Result{}, false
	}
	return nlp.Result{
		Surface:   surface,
		Root:      root,
		Tags:      tags,
		Ambiguous: ambiguous,
		Rule:      "segmented",
	}, true
}

func (s *Segmenter) classifyPart(parts []string, tags []nlp.Code, i int, root string) (nlp.Code, bool) {
	part := parts[i]
	if nlp.Key(part) == "" {
		return nlp.Unknown, false
	}
	var prev nlp.Code
	if i > 0 {
		prev = tags[i-1]
	}
	afterStem := i > 0 && prev != nlp.Unknown && !prev.IsParticle()
	last := i == len(parts)-1

	if prev == nlp.ImperfectivePrefix {
		return nlp.ImperfectiveVerb, false
	}
	if afterStem {
		if code, ok := s.suffixes.find(part); ok {
			return code, false
		}
	}
	if !last && s.verbPrefix(part, parts[i+1]) {
		return nlp.ImperfectivePrefix, false
	}
	if code, amb, ok := s.lexicon.single(part); ok {
		return code, amb
	}
	if code, ok := s.prefixes.find(part); ok && !last {
		return code, false
	}
	if code, ok := s.suffixes.find(part); ok && i > 0 {
		return code, false
	}
	if code, ok := s.fragments.find(part); ok {
		return code, false
	}
	if code, ok := s.verbShape(part, root); ok {
		return code, false
	}
	return nlp.CommonNoun, false
}

// verbPrefix reports whether part is يَ/تَ/نَ/أَ glued to a stem rather than
// to another particle.
func (s *Segmenter) verbPrefix(part, next string) bool {
	isPrefix := false
	for _, prefix := range imperfectivePrefixes {
		if part == prefix {
			isPrefix = true
			break
		}
	}
	if !isPrefix {
		return false
	}
	if _, ok := s.prefixes.find(next); ok {
		return false
	}
	if code, _, ok := s.lexicon.single(next); ok && code.IsParticle() {
		return false
	}
	return keyLen(next) >= 2
}

// verbShape classifies a single unsplit part by its shape.
func (s *Segmenter) verbShape(part, root string) (nlp.Code, bool) {
	if hasArticle(part) {
		return "", false
	}
	_, prefixed := imperfectivePrefix(part)
	if prefixed && keyLen(part) >= 4 {
		return nlp.ImperfectiveVerb, true
	}
	if strings.HasSuffix(part, fatha) && keyLen(part) >= 3 {
		if !prefixed || (s.rooted && nlp.HasRoot(root)) {
			return nlp.PerfectiveVerb, true
		}
	}
	return "", false
}

// nominal matches a stem that followed ال against the proper-noun and
// relative-noun tables.
func (s *Segmenter) nominal(stem string) (nlp.Code, bool, bool) {
	if code, ok := s.fragments.find(stem); ok {
		return code, false, true
	}
	entry, exact, ok := s.lexicon.Lookup(stem)
	if !ok {
		return "", false, false
	}
	if entry.Class != ClassProperNoun && entry.Class != ClassRelative {
		return "", false, false
	}
	codes := entry.codes()
	if len(codes) != 1 {
		return "", false, false
	}
	return codes[0], len(entry.Senses) > 0 || (!exact && s.lexicon.Collided(stem)), true
}
