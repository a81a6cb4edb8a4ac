package domain

import "errors"

var ErrUnsupportedLanguage = errors.New("unsupported language")

// Lang is a two-letter recognizer/translator language code.
type Lang string

const (
	LangRussian Lang = "ru"
	LangEnglish Lang = "en"
)

// voiceCodes maps client voice identifiers to translator language codes.
var voiceCodes = map[string]Lang{
	"RU":    LangRussian,
	"EN-US": LangEnglish,
}

// ParseVoice resolves a client voice code ("RU", "EN-US") to a language.
// Unknown codes are a hard input validation error.
func ParseVoice(code string) (Lang, error) {
	lang, ok := voiceCodes[code]
	if !ok {
		return "", ErrUnsupportedLanguage
	}
	return lang, nil
}

// SupportedVoices lists the accepted client voice codes.
func SupportedVoices() []string {
	out := make([]string, 0, len(voiceCodes))
	for code := range voiceCodes {
		out = append(out, code)
	}
	return out
}
