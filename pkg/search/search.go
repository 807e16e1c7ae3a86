// Package search ranks records against a free-text query using
// character n-gram similarity. It is self-contained: callers describe
// each record as a list of searchable fields plus a sort key, and get
// back the matching records in rank order.
package search

import (
	"sort"
	"strings"
	"unicode"
)

const (
	// minQueryLen is the shortest normalized query that gets fuzzy
	// treatment; anything shorter falls back to substring containment.
	minQueryLen = 2
	// shortQueryMax is the longest normalized query scored with
	// bigrams only; longer queries add trigrams.
	shortQueryMax = 4
	// baseThreshold cuts off bigram+trigram scores.
	baseThreshold = 0.2
	// shortThreshold cuts off bigram-only scores, which are noisier.
	shortThreshold = 0.12
	// fallbackLimit caps the best-effort suggestions returned when no
	// record clears the threshold.
	fallbackLimit = 10
)

// Rank scores every item against the query and returns the matches in
// descending score order, ties broken alphabetically by sort key.
// Records at or above the similarity threshold are returned; if none
// clear it but some score positively, the top suggestions come back
// instead; if nothing scores, the result is empty.
func Rank[T any](query string, items []T, fields func(T) []string, sortKey func(T) string) []T {
	normalizedQuery := normalize(query)
	if len(normalizedQuery) < minQueryLen {
		return containmentFilter(query, items, fields, sortKey)
	}

	useTrigrams := len(normalizedQuery) > shortQueryMax
	threshold := shortThreshold
	if useTrigrams {
		threshold = baseThreshold
	}

	type scored struct {
		item  T
		score float64
	}
	var candidates []scored
	for _, item := range items {
		score := similarityScore(query, normalizedQuery, fields(item), useTrigrams)
		if score > 0 {
			candidates = append(candidates, scored{item: item, score: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return strings.ToLower(sortKey(candidates[i].item)) < strings.ToLower(sortKey(candidates[j].item))
	})

	var close []T
	for _, c := range candidates {
		if c.score >= threshold {
			close = append(close, c.item)
		}
	}
	if len(close) > 0 {
		return close
	}
	if len(candidates) == 0 {
		return nil
	}
	limit := fallbackLimit
	if len(candidates) < limit {
		limit = len(candidates)
	}
	result := make([]T, 0, limit)
	for _, c := range candidates[:limit] {
		result = append(result, c.item)
	}
	return result
}

// containmentFilter is the non-fuzzy path for queries too short to
// produce meaningful n-grams: case-insensitive substring match over
// the raw fields, sorted alphabetically.
func containmentFilter[T any](query string, items []T, fields func(T) []string, sortKey func(T) string) []T {
	var matched []T
	for _, item := range items {
		if containsFold(fields(item), query) {
			matched = append(matched, item)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return strings.ToLower(sortKey(matched[i])) < strings.ToLower(sortKey(matched[j]))
	})
	return matched
}

func containsFold(fields []string, query string) bool {
	q := strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// similarityScore is 1.0 for a raw substring hit, otherwise the best
// n-gram similarity across every field and every field token.
func similarityScore(rawQuery, normalizedQuery string, fields []string, useTrigrams bool) float64 {
	if containsFold(fields, rawQuery) {
		return 1.0
	}
	best := 0.0
	for _, field := range fields {
		if s := bestFieldSimilarity(normalizedQuery, field, useTrigrams); s > best {
			best = s
		}
	}
	return best
}

// bestFieldSimilarity compares the query against the whole normalized
// field and against each token of it. Token scores carry a length-ratio
// penalty so that a short unrelated token cannot dominate.
func bestFieldSimilarity(normalizedQuery, field string, useTrigrams bool) float64 {
	if normalizedQuery == "" || field == "" {
		return 0
	}
	best := ngramSimilarity(normalizedQuery, normalize(field), useTrigrams)
	for _, token := range tokenize(field) {
		normalizedToken := normalize(token)
		if normalizedToken == "" {
			continue
		}
		score := ngramSimilarity(normalizedQuery, normalizedToken, useTrigrams)
		score *= lengthPenalty(len(normalizedQuery), len(normalizedToken))
		if score > best {
			best = score
		}
	}
	return best
}

// ngramSimilarity is the Jaccard index of the two strings' n-gram sets
// (bigrams, plus trigrams for longer queries).
func ngramSimilarity(a, b string, useTrigrams bool) float64 {
	if a == "" || b == "" {
		return 0
	}
	gramsA := ngrams(a, useTrigrams)
	gramsB := ngrams(b, useTrigrams)
	if len(gramsA) == 0 || len(gramsB) == 0 {
		return 0
	}
	intersection := 0
	for gram := range gramsA {
		if _, ok := gramsB[gram]; ok {
			intersection++
		}
	}
	union := len(gramsA) + len(gramsB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func ngrams(value string, useTrigrams bool) map[string]struct{} {
	grams := make(map[string]struct{})
	addNgrams(grams, value, 2)
	if useTrigrams {
		addNgrams(grams, value, 3)
	}
	return grams
}

func addNgrams(target map[string]struct{}, value string, n int) {
	if len(value) < n {
		return
	}
	for i := 0; i+n <= len(value); i++ {
		target[value[i:i+n]] = struct{}{}
	}
}

// normalize lowercases and strips every non-alphanumeric rune.
func normalize(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// tokenize splits a field on non-alphanumeric boundaries.
func tokenize(value string) []string {
	return strings.FieldsFunc(strings.ToLower(value), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// lengthPenalty shrinks token scores by the squared length ratio of
// query and token.
func lengthPenalty(queryLen, tokenLen int) float64 {
	if queryLen <= 0 || tokenLen <= 0 {
		return 0
	}
	min, max := queryLen, tokenLen
	if min > max {
		min, max = max, min
	}
	ratio := float64(min) / float64(max)
	return ratio * ratio
}
