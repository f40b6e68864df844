package arabic

import (
	"fmt"
	"strings"

	"github.com/future-architect/qurantag/nlp"
)

// Class groups lexicon entries by closed word class.
type Class string

const (
	ClassParticle      Class = "particle"
	ClassConjunction   Class = "conjunction"
	ClassNegation      Class = "negation"
	ClassEmphasis      Class = "emphasis"
	ClassProperNoun    Class = "proper-noun"
	ClassDemonstrative Class = "demonstrative"
	ClassRelative      Class = "relative"
	ClassPronoun       Class = "pronoun"
	ClassAdverb        Class = "adverb"
	ClassIdiom         Class = "idiom"
)

var classes = map[Class]bool{
	ClassParticle: true, ClassConjunction: true, ClassNegation: true, ClassEmphasis: true,
	ClassProperNoun: true, ClassDemonstrative: true, ClassRelative: true, ClassPronoun: true,
	ClassAdverb: true, ClassIdiom: true,
}

// Entry is one curated dictionary row. Morphemes is set for multi-morpheme idioms.
type Entry struct {
	Surface   string   `yaml:"surface"`
	Morphemes []string `yaml:"morphemes,omitempty"`
	Root      string   `yaml:"root,omitempty"`
	Tags      string   `yaml:"tags"`
	Class     Class    `yaml:"class"`
	// Senses lists alternative tags the default sense may be hiding.
	Senses []string `yaml:"senses,omitempty"`
}

func (e Entry) codes() []nlp.Code {
	return nlp.ParseTags(e.Tags)
}

func (e Entry) segments() []string {
	if len(e.Morphemes) > 0 {
		return e.Morphemes
	}
	return strings.Split(e.Surface, nlp.Separator)
}

func (e Entry) validate() error {
	if e.Surface == "" {
		return fmt.Errorf("entry has no surface")
	}
	if !classes[e.Class] {
		return fmt.Errorf("entry %s: unknown class %q", e.Surface, e.Class)
	}
	codes := e.codes()
	if len(codes) == 0 {
		return fmt.Errorf("entry %s: no tags", e.Surface)
	}
	for _, code := range codes {
		if !code.Valid() {
			return fmt.Errorf("entry %s: tag %q is not in the taxonomy", e.Surface, code)
		}
		if code == nlp.Unknown {
			return fmt.Errorf("entry %s: dictionary entries can't be unresolved", e.Surface)
		}
	}
	for _, sense := range e.Senses {
		if !nlp.Code(sense).Valid() {
			return fmt.Errorf("entry %s: sense %q is not in the taxonomy", e.Surface, sense)
		}
	}
	if len(codes) != len(e.segments()) {
		return fmt.Errorf("entry %s: %d tags for %d morphemes", e.Surface, len(codes), len(e.segments()))
	}
	return nil
}

// output renders the surface for a hit. Exact hits use the curated morphemes;
// diacritic-insensitive hits keep the caller's diacritics when the letters line up.
func (e Entry) output(surface string, exact bool) string {
	if len(e.Morphemes) == 0 {
		if exact {
			return e.Surface
		}
		return surface
	}
	if !exact {
		if parts, ok := resegment(surface, e.Morphemes); ok {
			return strings.Join(parts, nlp.Separator)
		}
	}
	return strings.Join(e.Morphemes, nlp.Separator)
}

func resegment(surface string, morphemes []string) ([]string, bool) {
	var result []string
	rest := surface
	for i, m := range morphemes {
		if i == len(morphemes)-1 {
			result = append(result, rest)
			break
		}
		n := nlp.LetterCount(nlp.Key(m))
		head, tail := nlp.SplitLetters(rest, n)
		if nlp.Key(head) != nlp.Key(m) {
			return nil, false
		}
		result = append(result, head)
		rest = tail
	}
	if nlp.Key(result[len(result)-1]) != nlp.Key(morphemes[len(morphemes)-1]) {
		return nil, false
	}
	return result, true
}

// Lexicon is an immutable, versioned closed-class table.
//
// Exact surfaces: a later entry replaces an earlier one, so overlays win.
// Normalized keys: the first entry keeps the key and later ones with a different
// tag are recorded as collisions, which mark key hits as ambiguous.
type Lexicon struct {
	revision   string
	entries    []Entry
	exact      map[string]int
	keyed      map[string]int
	morphemes  map[string]int
	collisions map[string][]string
}

func NewLexicon(revision string, entries ...Entry) (*Lexicon, error) {
	l := &Lexicon{
		revision:   revision,
		exact:      make(map[string]int),
		keyed:      make(map[string]int),
		morphemes:  make(map[string]int),
		collisions: make(map[string][]string),
	}
	for _, entry := range entries {
		if err := entry.validate(); err != nil {
			return nil, fmt.Errorf("lexicon %s: %w", revision, err)
		}
		index := len(l.entries)
		l.entries = append(l.entries, entry)
		l.exact[entry.Surface] = index
		if len(entry.Morphemes) > 1 {
			l.morphemes[morphemeKey(entry.Morphemes)] = index
		}
		key := nlp.Key(entry.Surface)
		if prev, ok := l.keyed[key]; ok {
			if l.entries[prev].Tags != entry.Tags {
				l.collisions[key] = append(l.collisions[key], entry.Surface)
			}
			continue
		}
		l.keyed[key] = index
	}
	return l, nil
}

func (l *Lexicon) Revision() string {
	return l.revision
}

func (l *Lexicon) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the table rows in registration order.
func (l *Lexicon) Entries() []Entry {
	result := make([]Entry, len(l.entries))
	copy(result, l.entries)
	return result
}

// Lookup tries an exact surface match first and then the normalized key.
func (l *Lexicon) Lookup(surface string) (entry Entry, exact bool, ok bool) {
	if i, found := l.exact[surface]; found {
		return l.entries[i], true, true
	}
	if i, found := l.keyed[nlp.Key(surface)]; found {
		return l.entries[i], false, true
	}
	return Entry{}, false, false
}

// LookupSegments finds an idiom by its morphemes, for surfaces that arrive
// already split. The parts must line up with the idiom's morphemes.
func (l *Lexicon) LookupSegments(parts []string) (entry Entry, exact bool, ok bool) {
	i, found := l.morphemes[morphemeKey(parts)]
	if !found {
		return Entry{}, false, false
	}
	entry = l.entries[i]
	if len(entry.Morphemes) != len(parts) {
		return Entry{}, false, false
	}
	exact = true
	for j, part := range parts {
		if nlp.Key(part) != nlp.Key(entry.Morphemes[j]) {
			return Entry{}, false, false
		}
		exact = exact && part == entry.Morphemes[j]
	}
	return entry, exact, true
}

func morphemeKey(parts []string) string {
	keys := make([]string, len(parts))
	for i, part := range parts {
		keys[i] = nlp.Key(part)
	}
	return strings.Join(keys, nlp.Separator)
}

// Collided reports whether several entries with different tags share surface's key.
func (l *Lexicon) Collided(surface string) bool {
	return len(l.collisions[nlp.Key(surface)]) > 0
}

// Ambiguities lists normalized keys shared by entries with different tags.
func (l *Lexicon) Ambiguities() map[string][]string {
	result := make(map[string][]string, len(l.collisions))
	for key, surfaces := range l.collisions {
		first := l.entries[l.keyed[key]].Surface
		result[key] = append([]string{first}, surfaces...)
	}
	return result
}

// single returns the tag of a one-morpheme entry, for part classification.
func (l *Lexicon) single(part string) (nlp.Code, bool, bool) {
	entry, exact, ok := l.Lookup(part)
	if !ok {
		return "", false, false
	}
	codes := entry.codes()
	if len(codes) != 1 {
		return "", false, false
	}
	ambiguous := len(entry.Senses) > 0 || (!exact && l.Collided(part))
	return codes[0], ambiguous, true
}

// table is a small segment-level lookup keyed by exact form and a normalized key.
type table struct {
	exact map[string]nlp.Code
	keyed map[string]nlp.Code
	key   func(string) string
}

func newTable(key func(string) string, rows map[string]nlp.Code) table {
	t := table{
		exact: make(map[string]nlp.Code, len(rows)),
		keyed: make(map[string]nlp.Code, len(rows)),
		key:   key,
	}
	for form, code := range rows {
		t.exact[form] = code
		k := key(form)
		if prev, ok := t.keyed[k]; !ok || nlp.Less(code, prev) {
			t.keyed[k] = code
		}
	}
	return t
}

func (t table) extend(rows map[string]nlp.Code) table {
	merged := make(map[string]nlp.Code, len(t.exact)+len(rows))
	for form, code := range t.exact {
		merged[form] = code
	}
	for form, code := range rows {
		merged[form] = code
	}
	return newTable(t.key, merged)
}

func (t table) find(form string) (nlp.Code, bool) {
	if code, ok := t.exact[form]; ok {
		return code, true
	}
	k := t.key(form)
	if k == "" {
		return "", false
	}
	code, ok := t.keyed[k]
	return code, ok
}

// shaddaKey strips diacritics but keeps shadda, so the fragment لّه does not
// collide with the preposition+pronoun لَهُ.
func shaddaKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == shadda || !nlp.IsDiacritic(r) {
			b.WriteRune(r)
		}
	}
	return nlp.Fold(b.String())
}
