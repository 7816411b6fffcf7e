package plate

import "regexp"

type serialLayout struct {
	name    string
	pattern *regexp.Regexp
}

// Separated layouts come first: a bare six-digit run is easily confused with
// unrelated numbers in the text.
var serialLayouts = []serialLayout{
	{"hyphenated", regexp.MustCompile(`(\d{2})-(\d{4})`)},
	{"spaced-hyphen", regexp.MustCompile(`(\d{2})\s*-\s*(\d{4})`)},
	{"space-separated", regexp.MustCompile(`(\d{2})\s+(\d{4})`)},
	{"contiguous", regexp.MustCompile(`(\d{2})(\d{4})`)},
}

// ExtractSerial finds the six-digit serial in text and returns it as dd-dddd
// in Bangla numerals, along with the name of the layout that matched.
func ExtractSerial(text string) (serial, layout string, ok bool) {
	normalized := ToASCIIDigits(text)
	for _, l := range serialLayouts {
		m := l.pattern.FindStringSubmatch(normalized)
		if m == nil {
			continue
		}
		return ToBanglaDigits(m[1] + "-" + m[2]), l.name, true
	}
	return "", "", false
}
