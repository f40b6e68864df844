package arabic

import (
	"errors"
	"fmt"
	"io"

	"github.com/future-architect/qurantag/nlp"
	"gopkg.in/yaml.v3"
)

// Overlay is a curated set of entries layered over a built-in revision.
//
//	revision: extended-2024
//	base: extended
//	entries:
//	  - surface: فِرْعَوْنَ
//	    root: NTWS
//	    tags: "2.2"
//	    class: proper-noun
type Overlay struct {
	Revision string  `yaml:"revision"`
	Base     string  `yaml:"base"`
	Entries  []Entry `yaml:"entries"`
}

func LoadOverlay(r io.Reader) (*Overlay, error) {
	var overlay Overlay
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&overlay); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("lexicon overlay is empty")
		}
		return nil, fmt.Errorf("can't parse lexicon overlay: %w", err)
	}
	if overlay.Revision == "" {
		return nil, errors.New("lexicon overlay needs a revision name")
	}
	if overlay.Base == "" {
		overlay.Base = RevisionExtended
	}
	if overlay.Revision == overlay.Base {
		return nil, fmt.Errorf("lexicon overlay revision %s shadows its base", overlay.Revision)
	}
	for i, entry := range overlay.Entries {
		if err := entry.validate(); err != nil {
			return nil, fmt.Errorf("lexicon overlay entry %d: %w", i, err)
		}
	}
	return &overlay, nil
}

// NewTagger builds an immutable tagger revision from an overlay.
// Overlay rows replace base rows with the same surface.
func NewTagger(overlay *Overlay) (*nlp.Tagger, error) {
	base, err := BaseEntries(overlay.Base)
	if err != nil {
		return nil, err
	}
	entries := append(base, overlay.Entries...)
	tagger, _, err := build(overlay.Revision, entries, overlay.Base == RevisionExtended)
	return tagger, err
}
