package service

import (
	goaway "github.com/TwiN/go-away"
)

// culinaryExempt lists dictionary words that name common foods more often
// than not (meatballs, rum balls, jerk chicken, beef jerky).
var culinaryExempt = map[string]bool{
	"balls": true,
	"jerk":  true,
}

// culinaryFalsePositives are dish and ingredient names whose lowercased,
// spaceless form contains a dictionary word. go-away strips spaces and
// hyphens before matching, so entries are written the same way.
var culinaryFalsePositives = []string{
	"assam",
	"assort",
	"banana",
	"bostonbutt",
	"coarse",
	"cockaleekie",
	"cockle",
	"cumin",
	"cumquat",
	"faggot",
	"hoecake",
	"kvass",
	"muffin",
	"muffuletta",
	"muffaletta",
	"parsnip",
	"pissaladiere",
	"porkbutt",
	"potass",
	"prickly",
	"rapeseed",
	"sassafras",
	"spotteddick",
	"turducken",
	"turnip",
}

var promptDetector = newPromptDetector()

func newPromptDetector() *goaway.ProfanityDetector {
	profanities := make([]string, 0, len(goaway.DefaultProfanities))
	for _, word := range goaway.DefaultProfanities {
		if !culinaryExempt[word] {
			profanities = append(profanities, word)
		}
	}
	falsePositives := make([]string, 0, len(goaway.DefaultFalsePositives)+len(culinaryFalsePositives))
	falsePositives = append(falsePositives, goaway.DefaultFalsePositives...)
	falsePositives = append(falsePositives, culinaryFalsePositives...)
	falseNegatives := append([]string(nil), goaway.DefaultFalseNegatives...)

	return goaway.NewProfanityDetector().
		WithSanitizeLeetSpeak(true).
		WithSanitizeSpecialCharacters(true).
		WithSanitizeAccents(false).
		WithCustomDictionary(profanities, falsePositives, falseNegatives)
}

// isProfane reports whether a prompt contains inappropriate language once
// known food names are set aside.
func isProfane(prompt string) bool {
	return promptDetector.IsProfane(prompt)
}
