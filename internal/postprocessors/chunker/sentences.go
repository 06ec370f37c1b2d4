package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// packSentences fills each chunk with whole sentences up to chunkSize runes.
// The next chunk starts with the trailing sentences of the previous one that
// fit in overlap. A sentence longer than chunkSize is cut by split.
func (p *Processor) packSentences(text string) []string {
	var (
		out    []string
		window []string
		fresh  bool // window holds a sentence not yet emitted
	)

	emit := func() {
		if fresh {
			out = append(out, strings.Join(window, " "))
		}
		window = carryOver(window, p.overlap)
		fresh = false
	}

	for _, s := range sentences(text) {
		n := utf8.RuneCountInString(s)
		if n > p.chunkSize {
			emit()
			window = nil
			out = append(out, p.split(s)...)
			continue
		}
		if fresh && joinedLen(window)+1+n > p.chunkSize {
			emit()
		}
		for len(window) > 0 && joinedLen(window)+1+n > p.chunkSize {
			window = window[1:]
		}
		window = append(window, s)
		fresh = true
	}
	emit()
	return out
}

// carryOver returns the longest tail of window whose joined length fits budget.
func carryOver(window []string, budget int) []string {
	i := len(window)
	for i > 0 && joinedLen(window[i-1:]) <= budget {
		i--
	}
	return append([]string(nil), window[i:]...)
}

// joinedLen is the rune length of the sentences joined by single spaces.
func joinedLen(ss []string) int {
	if len(ss) == 0 {
		return 0
	}
	n := len(ss) - 1
	for _, s := range ss {
		n += utf8.RuneCountInString(s)
	}
	return n
}

// sentences splits text after '.', '!' or '?' followed by whitespace.
// Line breaks also end a sentence.
func sentences(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		start := 0
		for i := 0; i < len(runes)-1; i++ {
			if strings.ContainsRune(".!?", runes[i]) && unicode.IsSpace(runes[i+1]) {
				if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			out = append(out, s)
		}
	}
	return out
}
