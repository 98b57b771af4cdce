package compressor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	repeatedBangs = regexp.MustCompile(`[!?]{2,}`)
	repeatedDots  = regexp.MustCompile(`\.{2,}`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Normalize trims the text, collapses punctuation runs and whitespace, and
// drops immediately repeated words ("the the" becomes "the").
func Normalize(text string) string {
	t := strings.TrimSpace(text)
	t = repeatedBangs.ReplaceAllString(t, "!")
	t = repeatedDots.ReplaceAllString(t, ".")
	t = whitespaceRun.ReplaceAllString(t, " ")
	return collapseRepeatedWords(t)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isWordRune(r) {
			return false
		}
	}
	return true
}

// collapseRepeatedWords expects single-space separated tokens
func collapseRepeatedWords(t string) string {
	if t == "" {
		return t
	}
	tokens := strings.Split(t, " ")
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if n := len(out); n > 0 {
			prev := out[n-1]
			if isWord(prev) && len(tok) >= len(prev) && (len(tok) == len(prev) || utf8.RuneStart(tok[len(prev)])) &&
				strings.EqualFold(tok[:len(prev)], prev) {
				rest := tok[len(prev):]
				if rest == "" {
					continue
				}
				if r := []rune(rest)[0]; !isWordRune(r) {
					out[n-1] = prev + rest
					continue
				}
			}
		}
		out = append(out, tok)
	}
	return strings.Join(out, " ")
}

// SplitSentences splits after '.', '!' or '?' followed by whitespace. The
// terminator stays with its sentence; empty pieces are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
		default:
			continue
		}
		if i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
