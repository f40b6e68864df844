package qurantag

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Token is one [surface, root] row of a shard file. The root may be missing.
type Token struct {
	Surface string
	Root    string

	raw       json.RawMessage
	orig      [2]string
	malformed bool
}

func (t Token) Malformed() bool {
	return t.malformed
}

func (t Token) MarshalJSON() ([]byte, error) {
	fields := [2]string{t.Surface, t.Root}
	if t.raw != nil && (t.malformed || fields == t.orig) {
		return t.raw, nil
	}
	return json.Marshal(fields)
}

func (t *Token) UnmarshalJSON(data []byte) error {
	*t = Token{raw: append(json.RawMessage(nil), data...)}
	fields, ok := stringFields(data)
	if !ok || len(fields) < 1 {
		t.malformed = true
		return nil
	}
	t.Surface = fields[0]
	if len(fields) > 1 {
		t.Root = fields[1]
	}
	t.orig = [2]string{t.Surface, t.Root}
	return nil
}

// TaggedEntry is one [surface, root, tags] row of a tagged shard.
// Rows of the wrong shape decode as malformed with empty fields. Rows that
// were not changed are written back exactly as they were read.
type TaggedEntry struct {
	Surface string
	Root    string
	Tags    string

	raw       json.RawMessage
	orig      [3]string
	malformed bool
}

func NewTaggedEntry(surface, root, tags string) TaggedEntry {
	return TaggedEntry{Surface: surface, Root: root, Tags: tags}
}

func (e TaggedEntry) Malformed() bool {
	return e.malformed
}

func (e TaggedEntry) fields() [3]string {
	return [3]string{e.Surface, e.Root, e.Tags}
}

func (e TaggedEntry) MarshalJSON() ([]byte, error) {
	fields := e.fields()
	if e.raw != nil && (e.malformed || fields == e.orig) {
		return e.raw, nil
	}
	return json.Marshal(fields)
}

func (e *TaggedEntry) UnmarshalJSON(data []byte) error {
	*e = TaggedEntry{raw: append(json.RawMessage(nil), data...)}
	fields, ok := stringFields(data)
	if !ok || len(fields) < 3 {
		e.malformed = true
		return nil
	}
	e.Surface, e.Root, e.Tags = fields[0], fields[1], fields[2]
	e.orig = [3]string{e.Surface, e.Root, e.Tags}
	return nil
}

// stringFields decodes a JSON array whose leading elements are strings.
// Decoding stops at the first non-string element.
func stringFields(data []byte) ([]string, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	result := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			break
		}
		result = append(result, s)
	}
	return result, true
}

// Position locates one literal occurrence: (surah, ayah, word index).
// The zero value is the sentinel for a malformed reference.
type Position struct {
	Surah int
	Ayah  int
	Word  int
}

func (p Position) IsZero() bool {
	return p == Position{}
}

func (p Position) Less(o Position) bool {
	if p.Surah != o.Surah {
		return p.Surah < o.Surah
	}
	if p.Ayah != o.Ayah {
		return p.Ayah < o.Ayah
	}
	return p.Word < o.Word
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d:%d", p.Surah, p.Ayah, p.Word)
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{p.Surah, p.Ayah, p.Word})
}

func (p *Position) UnmarshalJSON(data []byte) error {
	pos, ok := parseTriple(data)
	if !ok {
		return fmt.Errorf("position %s is not a [surah, ayah, word] triple", string(data))
	}
	*p = pos
	return nil
}

// parseTriple accepts [s, a, w] where each item is a number or a numeric string.
func parseTriple(data []byte) (Position, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil || len(items) != 3 {
		return Position{}, false
	}
	var values [3]int
	for i, item := range items {
		v, ok := parseInt(item)
		if !ok || v < 0 {
			return Position{}, false
		}
		values[i] = v
	}
	return Position{Surah: values[0], Ayah: values[1], Word: values[2]}, true
}

func parseInt(item json.RawMessage) (int, bool) {
	var n json.Number
	if err := json.Unmarshal(item, &n); err == nil {
		i, err := strconv.Atoi(n.String())
		return i, err == nil
	}
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		i, err := strconv.Atoi(strings.TrimSpace(s))
		return i, err == nil
	}
	return 0, false
}

// WordRecord is the unique-word view: one token with every occurrence.
type WordRecord struct {
	Index           int        `json:"index"`
	Word            string     `json:"word"`
	Root            string     `json:"root"`
	Tags            string     `json:"tags"`
	Positions       []Position `json:"positions"`
	OccurrenceCount int        `json:"occurrence_count"`
}

// OccurrenceRecord is the sequential view: one literal occurrence.
type OccurrenceRecord struct {
	Index        int    `json:"index"`
	Surah        int    `json:"surah"`
	Ayah         int    `json:"ayah"`
	WordPosition int    `json:"word_position"`
	Word         string `json:"word"`
	Root         string `json:"root"`
	Tags         string `json:"tags"`
}

func (o OccurrenceRecord) Position() Position {
	return Position{Surah: o.Surah, Ayah: o.Ayah, Word: o.WordPosition}
}

// wordEntity is the corpus store document for a WordRecord.
type wordEntity struct {
	Key             string `json:"key" docstore:"key"`
	Index           int    `json:"index" docstore:"index"`
	Root            string `json:"root" docstore:"root"`
	Tags            string `json:"tags" docstore:"tags"`
	Positions       []byte `json:"-" docstore:"positions"`
	Sorted          bool   `json:"-" docstore:"sorted"`
	OccurrenceCount int    `json:"occurrence_count" docstore:"occurrence_count"`
}
