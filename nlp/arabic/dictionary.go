package arabic

import (
	"strings"

	"github.com/future-architect/qurantag/nlp"
)

// Dictionary is the closed-class lookup rule. Its hits are authoritative.
type Dictionary struct {
	lexicon *Lexicon
}

func NewDictionary(lexicon *Lexicon) *Dictionary {
	return &Dictionary{lexicon: lexicon}
}

func (d *Dictionary) Name() string {
	return "dictionary"
}

// Apply tries an exact match, then a diacritic-insensitive one. A surface that
// is already segmented matches an idiom by its morphemes or, when the morpheme
// counts agree, by the joined letters. It keeps its own segmentation.
func (d *Dictionary) Apply(surface, root string) (nlp.Result, bool) {
	if strings.Contains(surface, nlp.Separator) {
		if entry, exact, ok := d.lexicon.Lookup(surface); ok {
			return d.result(entry, exact, surface, root, entry.output(surface, exact)), true
		}
		parts := strings.Split(surface, nlp.Separator)
		if entry, exact, ok := d.lexicon.LookupSegments(parts); ok {
			return d.result(entry, exact, surface, root, surface), true
		}
		entry, exact, ok := d.lexicon.Lookup(strings.Join(parts, ""))
		if !ok || len(entry.codes()) != len(parts) {
			return nlp.Result{}, false
		}
		return d.result(entry, exact, surface, root, surface), true
	}
	entry, exact, ok := d.lexicon.Lookup(surface)
	if !ok {
		return nlp.Result{}, false
	}
	return d.result(entry, exact, surface, root, entry.output(surface, exact)), true
}

func (d *Dictionary) result(entry Entry, exact bool, surface, root, output string) nlp.Result {
	if entry.Root != "" {
		root = entry.Root
	}
	return nlp.Result{
		Surface:   output,
		Root:      root,
		Tags:      entry.codes(),
		Ambiguous: len(entry.Senses) > 0 || (!exact && d.lexicon.Collided(surface)),
		Rule:      d.Name(),
	}
}
