package nlp

import (
	"sort"
	"strconv"
	"strings"
)

// Code is one taxonomy code such as "1.1" or "6.1".
type Code string

const (
	Preposition        Code = "1.1"
	Conjunction        Code = "1.2"
	Subjunctive        Code = "1.3"
	Jussive            Code = "1.4"
	DefiniteArticle    Code = "1.5"
	Vocative           Code = "1.6"
	Interrogative      Code = "1.7"
	Exception          Code = "1.8"
	Emphasis           Code = "1.9"
	Negation           Code = "1.10"
	Future             Code = "1.12"
	Digression         Code = "1.14"
	ImperfectivePrefix Code = "1.17"
	Rectification      Code = "1.18"
	Simile             Code = "1.21"
	CommonNoun         Code = "2.1"
	ProperNoun         Code = "2.2"
	Demonstrative      Code = "2.3"
	RelativeNoun       Code = "2.4"
	VerbalNoun         Code = "2.5"
	PerfectiveVerb     Code = "3.1"
	ImperfectiveVerb   Code = "3.2"
	ImperativeVerb     Code = "3.3"
	DisjointPronoun    Code = "4.1"
	AttachedPronoun    Code = "4.2"
	TimeAdverb         Code = "5.1"
	PlaceAdverb        Code = "5.2"
	Unknown            Code = "6.1"
	Adjective          Code = "7.0"
)

// Category describes one taxonomy code.
type Category struct {
	Code        Code
	Major       int
	Description string
	Arabic      string
}

var taxonomy = map[Code]Category{
	Preposition:        {Preposition, 1, "preposition", "حرف جر"},
	Conjunction:        {Conjunction, 1, "conjunction", "حرف عطف"},
	Subjunctive:        {Subjunctive, 1, "subjunctive particle", "حرف نصب"},
	Jussive:            {Jussive, 1, "jussive or conditional particle", "حرف جزم"},
	DefiniteArticle:    {DefiniteArticle, 1, "definite article", "أداة التعريف"},
	Vocative:           {Vocative, 1, "vocative particle", "حرف نداء"},
	Interrogative:      {Interrogative, 1, "interrogative particle", "حرف استفهام"},
	Exception:          {Exception, 1, "exception particle", "حرف استثناء"},
	Emphasis:           {Emphasis, 1, "emphasis particle", "حرف توكيد"},
	Negation:           {Negation, 1, "negation particle", "حرف نفي"},
	Future:             {Future, 1, "future particle", "حرف استقبال"},
	Digression:         {Digression, 1, "digression particle", "حرف إضراب"},
	ImperfectivePrefix: {ImperfectivePrefix, 1, "imperfective prefix", "حرف المضارعة"},
	Rectification:      {Rectification, 1, "rectification particle", "حرف استدراك"},
	Simile:             {Simile, 1, "simile particle", "حرف تشبيه"},
	CommonNoun:         {CommonNoun, 2, "common noun", "اسم"},
	ProperNoun:         {ProperNoun, 2, "proper noun", "اسم علم"},
	Demonstrative:      {Demonstrative, 2, "demonstrative", "اسم إشارة"},
	RelativeNoun:       {RelativeNoun, 2, "relative noun", "اسم موصول"},
	VerbalNoun:         {VerbalNoun, 2, "verbal noun", "مصدر"},
	PerfectiveVerb:     {PerfectiveVerb, 3, "perfective verb", "فعل ماض"},
	ImperfectiveVerb:   {ImperfectiveVerb, 3, "imperfective verb", "فعل مضارع"},
	ImperativeVerb:     {ImperativeVerb, 3, "imperative verb", "فعل أمر"},
	DisjointPronoun:    {DisjointPronoun, 4, "disjoint pronoun", "ضمير منفصل"},
	AttachedPronoun:    {AttachedPronoun, 4, "attached pronoun", "ضمير متصل"},
	TimeAdverb:         {TimeAdverb, 5, "adverb of time", "ظرف زمان"},
	PlaceAdverb:        {PlaceAdverb, 5, "adverb of place", "ظرف مكان"},
	Unknown:            {Unknown, 6, "unresolved", "غير محدد"},
	Adjective:          {Adjective, 7, "adjective", "صفة"},
}

// Lookup returns the category for code.
func Lookup(code Code) (Category, bool) {
	c, ok := taxonomy[code]
	return c, ok
}

// Valid reports whether code belongs to the fixed taxonomy.
func (c Code) Valid() bool {
	_, ok := taxonomy[c]
	return ok
}

func (c Code) Major() int {
	return taxonomy[c].Major
}

func (c Code) IsParticle() bool {
	return c.Major() == 1
}

func (c Code) IsVerb() bool {
	return c.Major() == 3
}

// Codes returns every taxonomy code ordered by major then minor number.
func Codes() []Code {
	result := make([]Code, 0, len(taxonomy))
	for code := range taxonomy {
		result = append(result, code)
	}
	sort.Slice(result, func(i, j int) bool {
		return Less(result[i], result[j])
	})
	return result
}

// Less orders codes numerically, so 1.2 sorts before 1.10.
func Less(a, b Code) bool {
	am, an := splitCode(a)
	bm, bn := splitCode(b)
	if am != bm {
		return am < bm
	}
	if an != bn {
		return an < bn
	}
	return a < b
}

func splitCode(c Code) (int, int) {
	parts := strings.SplitN(string(c), ".", 2)
	major, _ := strconv.Atoi(parts[0])
	minor := 0
	if len(parts) == 2 {
		minor, _ = strconv.Atoi(parts[1])
	}
	return major, minor
}

// ParseTags splits a comma-joined tag string. Empty slots are kept as empty codes.
func ParseTags(tags string) []Code {
	if tags == "" {
		return nil
	}
	parts := strings.Split(tags, ",")
	result := make([]Code, len(parts))
	for i, part := range parts {
		result[i] = Code(strings.TrimSpace(part))
	}
	return result
}

func JoinTags(codes []Code) string {
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = string(code)
	}
	return strings.Join(parts, ",")
}

// IsUnresolved reports whether tags is exactly the unresolved code.
func IsUnresolved(tags string) bool {
	return strings.TrimSpace(tags) == string(Unknown)
}

// NeedsReview reports whether any slot of tags is unresolved or outside the taxonomy.
func NeedsReview(tags string) bool {
	codes := ParseTags(tags)
	if len(codes) == 0 {
		return true
	}
	for _, code := range codes {
		if code == Unknown || !code.Valid() {
			return true
		}
	}
	return false
}

var rootSentinels = map[string]bool{
	"":     true,
	"NTWS": true,
	"X":    true,
	"حرف":  true,
	"ظرف":  true,
}

// HasRoot reports whether root is a real consonantal root rather than a sentinel.
func HasRoot(root string) bool {
	return !rootSentinels[strings.TrimSpace(root)]
}
