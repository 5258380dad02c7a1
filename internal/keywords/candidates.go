package keywords

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// tokenize lower-cases and NFKC-normalises text and splits it into word
// tokens of at least two characters. '+', '#' and '.' count as word
// characters so "c++", "c#" and "node.js" survive; trailing dots are dropped.
func tokenize(text string) []string {
	text = strings.ToLower(norm.NFKC.String(text))

	var (
		tokens []string
		word   strings.Builder
	)
	flush := func() {
		w := strings.Trim(word.String(), ".")
		word.Reset()
		if len([]rune(w)) < 2 {
			return
		}
		if _, stop := stopWords[w]; stop {
			return
		}
		tokens = append(tokens, w)
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' || r == '_' {
			word.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// candidates builds the unigram and bigram phrases of text, ordered by
// frequency (first occurrence breaks ties) and capped at limit when limit > 0.
func candidates(text string, limit int) []string {
	tokens := tokenize(text)

	type stat struct {
		count int
		first int
	}
	stats := map[string]*stat{}
	var order []string
	add := func(phrase string, pos int) {
		if s, ok := stats[phrase]; ok {
			s.count++
			return
		}
		stats[phrase] = &stat{count: 1, first: pos}
		order = append(order, phrase)
	}

	pos := 0
	for i, tok := range tokens {
		add(tok, pos)
		pos++
		if i+1 < len(tokens) && tokens[i+1] != tok {
			add(tok+" "+tokens[i+1], pos)
			pos++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := stats[order[i]], stats[order[j]]
		if a.count != b.count {
			return a.count > b.count
		}
		return a.first < b.first
	})

	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	return order
}
