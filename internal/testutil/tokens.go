package testutil

import (
	"fmt"
	"sync"
)

// FixedTokens returns predetermined redemption tokens in order.
//
//	gen := NewFixedTokens("tok-1", "tok-2")
//	gen.Generate() // "tok-1"
//	gen.Generate() // "tok-2"
//	gen.Generate() // panic: all tokens exhausted
//
// Running out is a test misconfiguration, so it panics.
type FixedTokens struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedTokens creates a generator over tokens.
func NewFixedTokens(tokens ...string) *FixedTokens {
	return &FixedTokens{tokens: tokens}
}

// Generate returns the next token.
func (g *FixedTokens) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("FixedTokens: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}

// Used returns how many tokens have been handed out.
func (g *FixedTokens) Used() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.idx
}

// SequentialTokens returns "<prefix>-1", "<prefix>-2", ... forever.
type SequentialTokens struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialTokens creates a generator. An empty prefix becomes "token".
func NewSequentialTokens(prefix string) *SequentialTokens {
	if prefix == "" {
		prefix = "token"
	}
	return &SequentialTokens{prefix: prefix}
}

// Generate returns the next token.
func (g *SequentialTokens) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// RepeatingToken returns the same token every time. Useful for exercising
// collision handling.
type RepeatingToken string

// Generate returns the token.
func (r RepeatingToken) Generate() string {
	return string(r)
}
