package recognizer

import "strings"

// splitLanguages turns "eng+jpn" or "eng, jpn" into Tesseract codes.
func splitLanguages(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '+' || r == ',' || r == ' ' })
}
