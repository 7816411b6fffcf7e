package plate

import (
	"strings"

	"golang.org/x/text/cases"
)

var (
	banglaToASCII = strings.NewReplacer(
		"০", "0", "১", "1", "২", "2", "৩", "3", "৪", "4",
		"৫", "5", "৬", "6", "৭", "7", "৮", "8", "৯", "9",
	)
	asciiToBangla = strings.NewReplacer(
		"0", "০", "1", "১", "2", "২", "3", "৩", "4", "৪",
		"5", "৫", "6", "৬", "7", "৭", "8", "৮", "9", "৯",
	)
)

// ToASCIIDigits replaces Bangla numerals with their ASCII equivalents.
// Every other character is left untouched.
func ToASCIIDigits(s string) string {
	return banglaToASCII.Replace(s)
}

// ToBanglaDigits replaces ASCII digits with Bangla numerals.
func ToBanglaDigits(s string) string {
	return asciiToBangla.Replace(s)
}

// FoldLatin case-folds s so that "DHAKA", "Dhaka" and "dhaka" compare equal.
// Bangla text has no case and passes through unchanged.
func FoldLatin(s string) string {
	// A Caser keeps state between calls and must not be shared.
	return cases.Fold().String(s)
}
