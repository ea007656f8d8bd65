// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

// Package textmatch finds fixed keywords inside free text (track titles and
// artist names) with an Aho-Corasick automaton, so a candidate is checked
// against a whole keyword list in a single pass over its text.
//
// Matching is plain case-insensitive substring matching: "ost" matches
// "ghost", and a dot in a keyword is a literal dot.
//
//	blacklist := textmatch.New("soundtrack", "ost", "bgm")
//	blacklist.Contains("Zelda's Lullaby (Original Soundtrack)") // true
package textmatch

import "strings"

// KeywordSet is an immutable compiled keyword list. It is safe for
// concurrent use.
type KeywordSet struct {
	root     *node
	keywords []string
}

type node struct {
	next   map[rune]*node
	fail   *node
	output []int // indices into keywords ending at this node
}

func newNode() *node {
	return &node{next: make(map[rune]*node)}
}

// New compiles the keywords. Empty keywords are ignored and duplicates
// (after lowercasing) are kept once.
func New(keywords ...string) *KeywordSet {
	ks := &KeywordSet{root: newNode()}

	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		ks.insert(len(ks.keywords), kw)
		ks.keywords = append(ks.keywords, kw)
	}
	ks.link()
	return ks
}

func (ks *KeywordSet) insert(index int, kw string) {
	n := ks.root
	for _, ch := range kw {
		child, ok := n.next[ch]
		if !ok {
			child = newNode()
			n.next[ch] = child
		}
		n = child
	}
	n.output = append(n.output, index)
}

// link builds failure links breadth-first and merges suffix outputs.
func (ks *KeywordSet) link() {
	queue := make([]*node, 0, len(ks.root.next))
	for _, child := range ks.root.next {
		child.fail = ks.root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ch, child := range current.next {
			queue = append(queue, child)

			f := current.fail
			for f != nil && f.next[ch] == nil {
				f = f.fail
			}
			if f == nil {
				child.fail = ks.root
				continue
			}
			child.fail = f.next[ch]
			child.output = append(child.output, child.fail.output...)
		}
	}
}

// scan walks text and calls visit for every keyword hit until visit
// returns false.
func (ks *KeywordSet) scan(text string, visit func(kw int) bool) {
	if len(ks.keywords) == 0 {
		return
	}
	n := ks.root
	for _, ch := range strings.ToLower(text) {
		for n != ks.root && n.next[ch] == nil {
			n = n.fail
		}
		if child, ok := n.next[ch]; ok {
			n = child
		}
		for _, kw := range n.output {
			if !visit(kw) {
				return
			}
		}
	}
}

// Contains reports whether any keyword occurs in text.
func (ks *KeywordSet) Contains(text string) bool {
	found := false
	ks.scan(text, func(int) bool {
		found = true
		return false
	})
	return found
}

// First returns the first keyword found while reading text left to right.
func (ks *KeywordSet) First(text string) (string, bool) {
	hit := -1
	ks.scan(text, func(kw int) bool {
		hit = kw
		return false
	})
	if hit < 0 {
		return "", false
	}
	return ks.keywords[hit], true
}

// Matches returns every distinct keyword occurring in text, in order of
// first occurrence.
func (ks *KeywordSet) Matches(text string) []string {
	var out []string
	seen := make(map[int]struct{})
	ks.scan(text, func(kw int) bool {
		if _, ok := seen[kw]; !ok {
			seen[kw] = struct{}{}
			out = append(out, ks.keywords[kw])
		}
		return true
	})
	return out
}

// Len returns the number of distinct keywords.
func (ks *KeywordSet) Len() int {
	return len(ks.keywords)
}

// Keywords returns a copy of the compiled (lowercased) keywords.
func (ks *KeywordSet) Keywords() []string {
	out := make([]string, len(ks.keywords))
	copy(out, ks.keywords)
	return out
}
