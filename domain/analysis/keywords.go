package analysis

import "strings"

// Matching is case-insensitive substring containment, not tokenized:
// "numb" also matches "numbers".

var concerningKeywords = []string{
	// self-harm and suicide
	"suicide", "kill myself", "end it all", "not worth living", "better off dead",
	"hurt myself", "self harm", "cut myself", "overdose",

	// hopelessness and worthlessness
	"no point", "hopeless", "worthless", "burden", "everyone hates me",
	"can't take it", "give up", "no way out", "trapped",

	// withdrawal and numbness
	"can't get out of bed", "sleeping all day", "not eating", "everything hurts",
	"numb", "empty inside", "dead inside",
}

var highRiskKeywords = []string{
	"suicide", "kill myself", "end it all", "hurt myself", "overdose",
}

var rapidCyclingKeywords = []string{
	"manic", "can't sleep", "racing thoughts", "unstoppable", "invincible",
	"spending spree", "talking fast", "euphoric", "grandiose",
}

// ConcerningKeywords returns a copy of the concerning-language list
func ConcerningKeywords() []string {
	return append([]string(nil), concerningKeywords...)
}

// RapidCyclingKeywords returns a copy of the manic-language list
func RapidCyclingKeywords() []string {
	return append([]string(nil), rapidCyclingKeywords...)
}

// matchKeywords returns the keywords contained in text, in list order
func matchKeywords(text string, keywords []string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	var matched []string
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			matched = append(matched, k)
		}
	}
	return matched
}

func containsAnyKeyword(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func isHighRisk(matched []string) bool {
	for _, m := range matched {
		for _, h := range highRiskKeywords {
			if strings.Contains(m, h) {
				return true
			}
		}
	}
	return false
}
