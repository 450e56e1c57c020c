// Package suggest holds the catalogue of one-click example questions.
package suggest

import (
	"fmt"
	"math/rand/v2"
)

// DefaultPrompts is the suggested-question catalogue. Each prompt appears once;
// the index is the position in this slice.
var DefaultPrompts = []string{
	"Write a concise bulleted list of key controls based on the provided documents.",
	"Are there any standard process controls you DO NOT SEE covered in the provided documents?",
	"Based on the documents, what are 3 ways this process or its controls could be circumvented?",
	"Write a table of all the acronyms used in the provided documents and their definitions.",
	"What are all the IT systems mentioned in the provided documents?",
	"What is the first control in this process document? Write audit procedures to test it.",
	"Write a table of all the people involved in this process and briefly describe their roles.",
	"What is the main objective of this process?",
	"Based on the provided document, write a short high-level executive summary to explain the process to an audit executive.",
	"Briefly summarize this document.",
	"When was this document created and/or last updated?",
	"How would you describe the tone of this document? Formal? Casual? Informed? Ignorant? Explain why.",
	"What business risks does this process appear designed to mitigate?",
	"Who owns this document? Is there any contact info for them?",
	"Write questions I can use to confirm how this process works. Do not ask leading questions.",
	"If this process had an animal mascot, what would it be and why? Use emojis.",
	"What overrides or circumvention methods are mentioned in the documents?",
	"What is the most frequent term used on each page of the document?",
}

// Pool is an immutable, duplicate-free set of prompts.
type Pool struct {
	prompts []string
}

// NewPool copies prompts, dropping blanks and repeated entries while keeping order.
func NewPool(prompts []string) *Pool {
	seen := make(map[string]struct{}, len(prompts))
	out := make([]string, 0, len(prompts))
	for _, p := range prompts {
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return &Pool{prompts: out}
}

func Default() *Pool {
	return NewPool(DefaultPrompts)
}

func (p *Pool) Len() int {
	return len(p.prompts)
}

func (p *Pool) At(i int) (string, bool) {
	if i < 0 || i >= len(p.prompts) {
		return "", false
	}
	return p.prompts[i], true
}

// Contains reports whether prompt is part of the catalogue.
func (p *Pool) Contains(prompt string) bool {
	for _, candidate := range p.prompts {
		if candidate == prompt {
			return true
		}
	}
	return false
}

// Sample draws n distinct prompts without replacement. A nil rng uses the
// package-level source.
func (p *Pool) Sample(n int, rng *rand.Rand) ([]string, error) {
	if n < 1 || n > len(p.prompts) {
		return nil, fmt.Errorf("suggest: cannot sample %d of %d prompts", n, len(p.prompts))
	}

	var perm []int
	if rng != nil {
		perm = rng.Perm(len(p.prompts))
	} else {
		perm = rand.Perm(len(p.prompts))
	}

	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = p.prompts[perm[i]]
	}
	return out, nil
}

// ValidWidth reports whether n is a supported number of visible suggestions.
func ValidWidth(n int) bool {
	return n == 3 || n == 4
}
