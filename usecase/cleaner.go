package usecase

import (
	"strings"
	"unicode/utf8"
)

// transcriptArtifacts are attribution strings the speech model hallucinates on
// silence or music. They are removed wherever they appear.
var transcriptArtifacts = []string{
	"Subtitles by the Amara.org community",
	"Subtitled by the Amara.org community",
	"Transcribed by https://otter.ai",
	"www.mooji.org",
}

// emptyUtterances are results that carry no meaning after cleaning. Matched
// case-insensitively against the whole cleaned string.
var emptyUtterances = map[string]struct{}{
	"":            {},
	"you":         {},
	"thank you.":  {},
	".":           {},
	" ":           {},
	"[music]":     {},
	"[silence]":   {},
	"you.":        {},
	"hmm.":        {},
	"uh.":         {},
	"um.":         {},
	"ah.":         {},
	"[inaudible]": {},
	"[applause]":  {},
	"scratch":     {},
	"scratch.":    {},
	"test":        {},
	"testing":     {},
}

const minTranscriptLength = 5

// separatorCutset holds the punctuation treated as token decoration: stripped
// when comparing tokens for duplication and trimmed from the ends of the
// cleaned string.
const separatorCutset = ".,;:!?- "

// CleanTranscript normalizes raw speech-to-text output. It returns the empty
// string for results that are semantically empty. The function is idempotent:
// cleaning an already accepted result returns it unchanged.
func CleanTranscript(raw string) string {
	text := raw
	for _, artifact := range transcriptArtifacts {
		text = strings.ReplaceAll(text, artifact, "")
	}

	// Collapse repeated whitespace and consecutive case-insensitive duplicate
	// tokens ("Scratch. Scratch. Scratch." stutter loops). Tokens compare
	// with surrounding separators stripped, so "Hello hello-" collapses the
	// same way "Hello hello" does and re-cleaning never finds new duplicates
	// that an end-of-string trim exposed.
	tokens := strings.Fields(text)
	collapsed := make([]string, 0, len(tokens))
	previous := ""
	for _, token := range tokens {
		key := strings.Trim(strings.ToLower(token), separatorCutset)
		if len(collapsed) > 0 && key == previous {
			continue
		}
		collapsed = append(collapsed, token)
		previous = key
	}
	text = strings.Join(collapsed, " ")

	// Strip leading punctuation and stray trailing separators. Sentence-final
	// punctuation stays, the blacklist entries depend on it.
	text = strings.TrimLeft(text, separatorCutset)
	text = strings.TrimRight(text, ",;:- ")

	if _, rejected := emptyUtterances[strings.ToLower(text)]; rejected {
		return ""
	}
	if utf8.RuneCountInString(text) < minTranscriptLength {
		return ""
	}
	return text
}
