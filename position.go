package qurantag

import (
	"encoding/json"
	"strings"
)

// Reference is the occurrence list of one unique token in words-ref.json.
//
// Accepted element shapes:
//
//	[1, 2, 3]                      one occurrence
//	[[1, 2, 3], [4, 5, 6]]         many occurrences
//	[[[1, 2, 3], [4, 5, 6]]]       many occurrences wrapped once more
//	["[1,2,3],[4,5,6]"]            the string form of the extraction tool
//
// An empty list is a token without occurrences. Anything else becomes a single
// (0, 0, 0) occurrence, and a bad triple inside a list becomes (0, 0, 0) in
// its place.
type Reference struct {
	Positions []Position
	// Malformed counts sentinel positions produced while parsing.
	Malformed int
}

func (r Reference) MarshalJSON() ([]byte, error) {
	if r.Positions == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Positions)
}

func (r *Reference) UnmarshalJSON(data []byte) error {
	*r = parseReference(data)
	return nil
}

func parseReference(data []byte) Reference {
	if pos, ok := parseTriple(data); ok {
		return Reference{Positions: []Position{pos}}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		return sentinel()
	}
	if len(items) == 0 {
		return Reference{Positions: []Position{}}
	}
	var text string
	if err := json.Unmarshal(items[0], &text); err == nil {
		return parseText(text)
	}
	if len(items) == 1 && isList(items[0]) && !isTripleShaped(items[0]) {
		return parseList(items[0])
	}
	// a flat entry that is not a triple is one bad occurrence, not one per item
	for _, item := range items {
		if isList(item) {
			return parseList(data)
		}
	}
	return sentinel()
}

// parseText reads the occurrence list the extraction tool wrote as a string,
// either "[1,2,3],[4,5,6]" or "1,2,3],[4,5,6".
func parseText(text string) Reference {
	text = strings.TrimSpace(text)
	for _, candidate := range []string{"[" + text + "]", "[[" + text + "]]"} {
		data := []byte(candidate)
		if !json.Valid(data) {
			continue
		}
		if pos, ok := parseTriple(data); ok {
			return Reference{Positions: []Position{pos}}
		}
		return parseList(data)
	}
	return sentinel()
}

func parseList(data []byte) Reference {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil || len(items) == 0 {
		return sentinel()
	}
	result := Reference{Positions: make([]Position, 0, len(items))}
	for _, item := range items {
		pos, ok := parseTriple(item)
		if !ok {
			result.Malformed++
		}
		result.Positions = append(result.Positions, pos)
	}
	return result
}

func sentinel() Reference {
	return Reference{Positions: []Position{{}}, Malformed: 1}
}

func isList(data json.RawMessage) bool {
	var items []json.RawMessage
	return json.Unmarshal(data, &items) == nil
}

// isTripleShaped is true for [x, y, z] whose items are not arrays.
func isTripleShaped(data json.RawMessage) bool {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil || len(items) != 3 {
		return false
	}
	for _, item := range items {
		if isList(item) {
			return false
		}
	}
	return true
}

// FlattenReferences lists every occurrence in reference order.
func FlattenReferences(refs []Reference) []Position {
	var result []Position
	for _, ref := range refs {
		result = append(result, ref.Positions...)
	}
	return result
}
