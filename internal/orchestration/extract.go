package orchestration

import (
	"regexp"
	"strconv"
)

// Scale extraction never guesses: a value is either parsed from the text and
// within [0, 10], or absent.

type scaleKeyword struct {
	slash     *regexp.Regexp // keyword then "N/10" or "N /10"
	proximity *regexp.Regexp // keyword then 1-2 digits within 6 characters
}

var (
	painKeyword = scaleKeyword{
		slash:     regexp.MustCompile(`(?i)(?:pain|ache)[^\d]{0,6}(\d{1,2})\s*/\s*10`),
		proximity: regexp.MustCompile(`(?i)(?:pain|ache)[^\d]{0,6}(\d{1,2})`),
	}
	rpeKeyword = scaleKeyword{
		slash:     regexp.MustCompile(`(?i)\brpe\b[^\d]{0,6}(\d{1,2})\s*/\s*10`),
		proximity: regexp.MustCompile(`(?i)\brpe\b[^\d]{0,6}(\d{1,2})`),
	}
)

func extractScale(text string, key scaleKeyword) *float64 {
	for _, re := range []*regexp.Regexp{key.slash, key.proximity} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 0 || n > 10 {
			continue
		}
		v := float64(n)
		return &v
	}
	return nil
}

// ExtractPain pulls an 0..10 pain rating out of free text, if present.
func ExtractPain(text string) *float64 { return extractScale(text, painKeyword) }

// ExtractRPE pulls an 0..10 perceived-effort rating out of free text, if present.
func ExtractRPE(text string) *float64 { return extractScale(text, rpeKeyword) }
