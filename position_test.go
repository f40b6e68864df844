package qurantag

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReference_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		want          []Position
		wantMalformed int
	}{
		{
			name:  "flat triple",
			input: `[1, 2, 3]`,
			want:  []Position{{1, 2, 3}},
		},
		{
			name:  "numeric strings",
			input: `["1", "2", "3"]`,
			want:  []Position{{1, 2, 3}},
		},
		{
			name:  "list of triples",
			input: `[[1, 1, 1], [2, 5, 4]]`,
			want:  []Position{{1, 1, 1}, {2, 5, 4}},
		},
		{
			name:  "list of one triple",
			input: `[[7, 1, 2]]`,
			want:  []Position{{7, 1, 2}},
		},
		{
			name:  "wrapped list",
			input: `[[[1, 1, 1], [2, 5, 4]]]`,
			want:  []Position{{1, 1, 1}, {2, 5, 4}},
		},
		{
			name:  "string form",
			input: `["[1,1,1],[2,5,4]"]`,
			want:  []Position{{1, 1, 1}, {2, 5, 4}},
		},
		{
			name:  "string form without outer brackets",
			input: `["1,1,1],[2,5,4"]`,
			want:  []Position{{1, 1, 1}, {2, 5, 4}},
		},
		{
			name:  "string form of one triple",
			input: `["3,4,5"]`,
			want:  []Position{{3, 4, 5}},
		},
		{
			name:          "bad triple inside a list",
			input:         `[[1, 1, 1], [2, "x", 4], [3, 3]]`,
			want:          []Position{{1, 1, 1}, {}, {}},
			wantMalformed: 2,
		},
		{
			name:          "not a list",
			input:         `"hello"`,
			want:          []Position{{}},
			wantMalformed: 1,
		},
		{
			name:  "empty list",
			input: `[]`,
			want:  []Position{},
		},
		{
			name:          "short flat entry",
			input:         `[1, 2]`,
			want:          []Position{{}},
			wantMalformed: 1,
		},
		{
			name:          "flat entry with a bad item",
			input:         `[1, 1, "x"]`,
			want:          []Position{{}},
			wantMalformed: 1,
		},
		{
			name:          "long flat entry",
			input:         `[1, 2, 3, 4]`,
			want:          []Position{{}},
			wantMalformed: 1,
		},
		{
			name:          "broken string",
			input:         `["1,2,"]`,
			want:          []Position{{}},
			wantMalformed: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ref Reference
			require.Nil(t, json.Unmarshal([]byte(tt.input), &ref))
			assert.Equal(t, tt.want, ref.Positions)
			assert.Equal(t, tt.wantMalformed, ref.Malformed)
		})
	}
}

func TestReference_File(t *testing.T) {
	var refs []Reference
	require.Nil(t, json.Unmarshal([]byte(`[[1,1,1], [[1,1,2],[2,3,4]], null, ["[5,6,7]"]]`), &refs))
	require.Len(t, refs, 4)
	assert.Equal(t, []Position{{1, 1, 1}, {1, 1, 2}, {2, 3, 4}, {}, {5, 6, 7}}, FlattenReferences(refs))
}

func TestReference_MalformedKeepsAlignment(t *testing.T) {
	var refs []Reference
	require.Nil(t, json.Unmarshal([]byte(`[[1,1,1], [1,2], [1,1,3], [1,1,"x"], [2,1,1], []]`), &refs))
	require.Len(t, refs, 6)
	assert.Equal(t, []Position{{1, 1, 1}, {}, {1, 1, 3}, {}, {2, 1, 1}}, FlattenReferences(refs))

	entries := []TaggedEntry{
		NewTaggedEntry("a", "", "1.1"),
		NewTaggedEntry("b", "", "1.1"),
		NewTaggedEntry("c", "", "1.1"),
		NewTaggedEntry("d", "", "1.1"),
		NewTaggedEntry("e", "", "1.1"),
	}
	records, report := MergeSequential(entries, refs[:5])
	assert.Equal(t, 0, report.Mismatch)
	assert.Equal(t, 2, report.MalformedPositions)
	require.Len(t, records, 5)
	assert.Equal(t, "c", records[2].Word)
	assert.Equal(t, 3, records[2].WordPosition)
	assert.Equal(t, "e", records[4].Word)
	assert.Equal(t, 2, records[4].Surah)

	words, _ := MergeUnique(entries, refs[1:])
	assert.Equal(t, 0, words[4].OccurrenceCount)
	assert.Equal(t, []Position{}, words[4].Positions)
}

func TestPosition_JSON(t *testing.T) {
	data, err := json.Marshal(Position{2, 255, 1})
	require.Nil(t, err)
	assert.Equal(t, `[2,255,1]`, string(data))

	var pos Position
	assert.Nil(t, json.Unmarshal([]byte(`[2, "255", 1]`), &pos))
	assert.Equal(t, Position{2, 255, 1}, pos)
	assert.NotNil(t, json.Unmarshal([]byte(`[2, 255]`), &pos))
	assert.True(t, Position{}.IsZero())
	assert.True(t, Position{1, 9, 9}.Less(Position{2, 1, 1}))
	assert.Equal(t, "2:255:1", Position{2, 255, 1}.String())
}
