package nlp

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Separator delimits morphemes inside a surface form.
const Separator = "+"

var ErrUnknownRevision = errors.New("unknown tagger revision")

var (
	revisions = make(map[string]*Tagger)
	lock      sync.RWMutex
)

// Result is the outcome of a classification attempt.
type Result struct {
	Surface string
	Root    string
	Tags    []Code
	// Ambiguous is set when the chosen tag is a default sense of a word with alternatives.
	Ambiguous bool
	// Rule names the rule that produced the result.
	Rule string
}

// Unresolved is the terminal classification gap.
func Unresolved(surface, root string) Result {
	return Result{
		Surface: surface,
		Root:    root,
		Tags:    []Code{Unknown},
		Rule:    "unresolved",
	}
}

func (r Result) Segments() []string {
	return strings.Split(r.Surface, Separator)
}

func (r Result) TagString() string {
	return JoinTags(r.Tags)
}

// Resolved is false only for the bare 6.1 result.
func (r Result) Resolved() bool {
	return !(len(r.Tags) == 1 && r.Tags[0] == Unknown)
}

// Consistent reports whether there is exactly one tag per surface segment.
func (r Result) Consistent() bool {
	return len(r.Tags) > 0 && len(r.Tags) == len(r.Segments())
}

// Rule attempts a classification and reports whether it fired.
type Rule interface {
	Name() string
	Apply(surface, root string) (Result, bool)
}

type ruleFunc struct {
	name string
	fn   func(surface, root string) (Result, bool)
}

func (r ruleFunc) Name() string {
	return r.name
}

func (r ruleFunc) Apply(surface, root string) (Result, bool) {
	res, ok := r.fn(surface, root)
	if ok && res.Rule == "" {
		res.Rule = r.name
	}
	return res, ok
}

// RuleFunc adapts a plain function to Rule.
func RuleFunc(name string, fn func(surface, root string) (Result, bool)) Rule {
	return ruleFunc{name: name, fn: fn}
}

// Tagger is a priority ordered rule chain. The first rule is the dictionary,
// which has authority over every later rule.
type Tagger struct {
	revision   string
	dictionary Rule
	rules      []Rule
}

func NewTagger(revision string, dictionary Rule, rules ...Rule) *Tagger {
	return &Tagger{
		revision:   revision,
		dictionary: dictionary,
		rules:      rules,
	}
}

func (t *Tagger) Revision() string {
	return t.revision
}

// Tag runs the chain and falls back to the unresolved result.
func (t *Tagger) Tag(surface, root string) Result {
	if res, ok := t.Lookup(surface, root); ok {
		return res
	}
	for _, rule := range t.rules {
		res, ok := rule.Apply(surface, root)
		if ok && res.Consistent() {
			return res
		}
	}
	return Unresolved(surface, root)
}

// Lookup consults only the dictionary rule.
func (t *Tagger) Lookup(surface, root string) (Result, bool) {
	if t.dictionary == nil {
		return Result{}, false
	}
	res, ok := t.dictionary.Apply(surface, root)
	if !ok || !res.Consistent() {
		return Result{}, false
	}
	return res, true
}

// RegisterTagger makes a tagger revision available by name. Revisions are
// registered from package init functions and never replaced afterwards.
func RegisterTagger(tagger *Tagger) {
	lock.Lock()
	defer lock.Unlock()
	if _, ok := revisions[tagger.revision]; ok {
		panic(fmt.Sprintf("tagger revision %s is already registered", tagger.revision))
	}
	revisions[tagger.revision] = tagger
}

func FindTagger(revision string) (*Tagger, error) {
	lock.RLock()
	defer lock.RUnlock()
	tagger, ok := revisions[revision]
	if !ok {
		return nil, fmt.Errorf("can't find tagger for %s: %w", revision, ErrUnknownRevision)
	}
	return tagger, nil
}

// Revisions lists registered revision names.
func Revisions() []string {
	lock.RLock()
	defer lock.RUnlock()
	var result []string
	for name := range revisions {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
