package compressor

import (
	"regexp"
	"strings"

	"github.com/secmon-lab/stormfront/pkg/domain/types"
)

// Classifier assigns a sentence to exactly one bucket
type Classifier interface {
	Classify(sentence string) types.Bucket
}

// ClassifierFunc adapts a function to Classifier
type ClassifierFunc func(sentence string) types.Bucket

// Classify calls f
func (f ClassifierFunc) Classify(sentence string) types.Bucket {
	return f(sentence)
}

type keywordRule struct {
	bucket  types.Bucket
	pattern *regexp.Regexp
}

func keywordPattern(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// rules are checked in order; a sentence matching none is a note
var keywordRules = []keywordRule{
	{types.BucketFacts, keywordPattern("is", "are", "will be", "means")},
	{types.BucketGoals, keywordPattern("goal", "aim", "intend", "want to")},
	{types.BucketConstraints, keywordPattern("must", "cannot", "should not", "required")},
	{types.BucketHistory, keywordPattern("because", "therefore", "so that")},
}

// KeywordClassifier buckets sentences by whole-word keyword matches
var KeywordClassifier = ClassifierFunc(func(sentence string) types.Bucket {
	for _, rule := range keywordRules {
		if rule.pattern.MatchString(sentence) {
			return rule.bucket
		}
	}
	return types.BucketNotes
})
