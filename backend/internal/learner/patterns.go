package learner

import (
	"sort"
	"strings"
	"sync"
	"time"

	"wordweave/backend/internal/cache"
	"wordweave/backend/internal/constants"
	"wordweave/backend/internal/lexicon"
)

// KnowledgePattern tracks a unigram or bigram and what followed it.
type KnowledgePattern struct {
	Frequency int            `json:"frequency"`
	Contexts  []string       `json:"contexts"`
	Outputs   map[string]int `json:"outputs"`
}

// PatternMemory records token patterns seen in learned sentences.
type PatternMemory struct {
	mu       sync.RWMutex
	patterns map[string]*KnowledgePattern
}

// NewPatternMemory returns an empty PatternMemory
func NewPatternMemory() *PatternMemory {
	return &PatternMemory{patterns: make(map[string]*KnowledgePattern)}
}

// Observe records every unigram and bigram of sentence and returns how
// many pattern entries were touched. label is kept in each pattern's
// context window.
func (p *PatternMemory) Observe(sentence, label string) int {
	var tokens []string
	for _, tok := range lexicon.Tokenize(sentence) {
		if lexicon.IsValidWord(tok) {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return 0
	}
	if label == "" {
		label = sentence
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	touched := 0
	for i, tok := range tokens {
		next := ""
		if i+1 < len(tokens) {
			next = tokens[i+1]
		}
		p.recordLocked(tok, next, label)
		touched++

		if next == "" {
			continue
		}
		after := ""
		if i+2 < len(tokens) {
			after = tokens[i+2]
		}
		p.recordLocked(tok+" "+next, after, label)
		touched++
	}
	return touched
}

func (p *PatternMemory) recordLocked(key, next, label string) {
	kp := p.patterns[key]
	if kp == nil {
		kp = &KnowledgePattern{Outputs: make(map[string]int)}
		p.patterns[key] = kp
	}
	kp.Frequency++
	kp.Contexts = append(kp.Contexts, label)
	if over := len(kp.Contexts) - constants.PatternContextWindow; over > 0 {
		kp.Contexts = append([]string(nil), kp.Contexts[over:]...)
	}
	if next != "" {
		kp.Outputs[next]++
	}
}

// Get returns a copy of the pattern stored under key.
func (p *PatternMemory) Get(key string) (KnowledgePattern, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	kp, ok := p.patterns[key]
	if !ok {
		return KnowledgePattern{}, false
	}
	return copyPattern(kp), true
}

// Outputs returns the next-word counts observed after key.
func (p *PatternMemory) Outputs(key string) map[string]int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	kp, ok := p.patterns[key]
	if !ok {
		return nil
	}
	out := make(map[string]int, len(kp.Outputs))
	for k, v := range kp.Outputs {
		out[k] = v
	}
	return out
}

// TopUnigrams returns up to n single-word patterns that have outputs,
// most frequent first.
func (p *PatternMemory) TopUnigrams(n int) []string {
	p.mu.RLock()
	type entry struct {
		word string
		freq int
	}
	var all []entry
	for key, kp := range p.patterns {
		if len(kp.Outputs) == 0 || strings.Contains(key, " ") {
			continue
		}
		all = append(all, entry{key, kp.Frequency})
	}
	p.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].freq != all[j].freq {
			return all[i].freq > all[j].freq
		}
		return all[i].word < all[j].word
	})
	if n > 0 && len(all) > n {
		all = all[:n]
	}
	out := make([]string, len(all))
	for i, e := range all {
		out[i] = e.word
	}
	return out
}

// Len is the number of distinct patterns.
func (p *PatternMemory) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.patterns)
}

// Snapshot returns a deep copy of every pattern.
func (p *PatternMemory) Snapshot() map[string]KnowledgePattern {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]KnowledgePattern, len(p.patterns))
	for k, kp := range p.patterns {
		out[k] = copyPattern(kp)
	}
	return out
}

// Restore replaces the memory with snapshot, trimming oversized windows.
func (p *PatternMemory) Restore(snapshot map[string]KnowledgePattern) {
	patterns := make(map[string]*KnowledgePattern, len(snapshot))
	for k, kp := range snapshot {
		cp := copyPattern(&kp)
		if over := len(cp.Contexts) - constants.PatternContextWindow; over > 0 {
			cp.Contexts = cp.Contexts[over:]
		}
		patterns[k] = &cp
	}
	p.mu.Lock()
	p.patterns = patterns
	p.mu.Unlock()
}

// Flush writes the snapshot into c.
func (p *PatternMemory) Flush(c cache.Cache, ttl time.Duration) error {
	return c.Set(cache.KeyPatterns, p.Snapshot(), ttl)
}

// Load restores the snapshot from c. A miss leaves the memory untouched.
func (p *PatternMemory) Load(c cache.Cache) (bool, error) {
	var snapshot map[string]KnowledgePattern
	ok, err := c.Get(cache.KeyPatterns, &snapshot)
	if err != nil || !ok {
		return false, err
	}
	p.Restore(snapshot)
	return true, nil
}

func copyPattern(kp *KnowledgePattern) KnowledgePattern {
	out := KnowledgePattern{
		Frequency: kp.Frequency,
		Contexts:  append([]string(nil), kp.Contexts...),
		Outputs:   make(map[string]int, len(kp.Outputs)),
	}
	for k, v := range kp.Outputs {
		out.Outputs[k] = v
	}
	return out
}
