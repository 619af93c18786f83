package utils

import (
	"strings"
	"unicode"
)

// Title upper-cases the first letter of each word and lower-cases the rest
func Title(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		for j := 1; j < len(runes); j++ {
			runes[j] = unicode.ToLower(runes[j])
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// HumanizeEnum renders a status constant such as BANK_TRANSFER as "Bank Transfer"
func HumanizeEnum(s string) string {
	return Title(strings.ReplaceAll(s, "_", " "))
}
