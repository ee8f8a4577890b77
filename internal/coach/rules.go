package coach

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// rule finds one kind of mistake and returns the text with it fixed.
type rule interface {
	apply(text string) (string, []GrammarError)
}

// patternRule fixes every match of re. fix gets the submatches and the
// text preceding the match, and reports false to leave a match alone.
type patternRule struct {
	kind        string
	explanation string
	re          *regexp.Regexp
	fix         func(m []string, before string) (string, bool)
}

func (r patternRule) apply(text string) (string, []GrammarError) {
	var (
		b    strings.Builder
		errs []GrammarError
		last int
	)
	for _, loc := range r.re.FindAllStringSubmatchIndex(text, -1) {
		m := make([]string, len(loc)/2)
		for i := range m {
			if loc[2*i] >= 0 {
				m[i] = text[loc[2*i]:loc[2*i+1]]
			}
		}
		fixed, ok := r.fix(m, text[:loc[0]])
		if !ok || fixed == m[0] {
			continue
		}
		b.WriteString(text[last:loc[0]])
		b.WriteString(fixed)
		last = loc[1]
		errs = append(errs, GrammarError{Original: m[0], Correction: fixed, Explanation: r.explanation, Kind: r.kind})
	}
	if errs == nil {
		return text, nil
	}
	b.WriteString(text[last:])
	return b.String(), errs
}

type funcRule func(text string) (string, []GrammarError)

func (f funcRule) apply(text string) (string, []GrammarError) { return f(text) }

// rules run in order; each sees the output of the previous one.
var rules = []rule{
	patternRule{
		kind:        KindCapitalization,
		explanation: `The pronoun "I" is always written with a capital letter.`,
		re:          regexp.MustCompile(`\bi\b`),
		fix:         func([]string, string) (string, bool) { return "I", true },
	},
	patternRule{
		kind:        KindArticle,
		explanation: `Use "an" before a vowel sound and "a" before a consonant sound.`,
		re:          regexp.MustCompile(`\b([Aa]n?) ([A-Za-z]+)`),
		fix:         fixArticle,
	},
	patternRule{
		kind:        KindVerbForm,
		explanation: `With he, she or it, present simple verbs take an -s ending.`,
		re:          regexp.MustCompile(`\b([Hh]e|[Ss]he|[Ii]t) ([a-z]+)\b`),
		fix:         fixThirdPerson,
	},
	patternRule{
		kind:        KindAgreement,
		explanation: `The verb "to be" must agree with its subject: I am, he/she/it is, you/we/they are.`,
		re:          regexp.MustCompile(`\b(I|[Hh]e|[Ss]he|[Ii]t|[Yy]ou|[Ww]e|[Tt]hey) (is|are|am)\b`),
		fix:         fixBe,
	},
	funcRule(fixDoubledWords),
	funcRule(fixFinalPunctuation),
	funcRule(fixInitialCapital),
}

// checkText runs every rule over text and returns the mistakes found and
// the corrected text.
func checkText(text string) ([]GrammarError, string) {
	errs := []GrammarError{}
	for _, r := range rules {
		var found []GrammarError
		text, found = r.apply(text)
		errs = append(errs, found...)
	}
	return errs, text
}

// localScore is 100 minus 15 per mistake, never below 30.
func localScore(errorCount int) int {
	return max(30, 100-15*errorCount)
}

var (
	// Vowel-letter words that start with a consonant sound.
	consonantSoundPrefixes = []string{"uni", "use", "usu", "uti", "eu", "one", "once", "ura"}
	// Consonant-letter words that start with a vowel sound.
	vowelSoundPrefixes = []string{"hour", "honest", "honor", "honour", "heir"}
)

func startsWithVowelSound(word string) bool {
	w := strings.ToLower(word)
	for _, p := range vowelSoundPrefixes {
		if strings.HasPrefix(w, p) {
			return true
		}
	}
	for _, p := range consonantSoundPrefixes {
		if strings.HasPrefix(w, p) {
			return false
		}
	}
	return strings.ContainsRune("aeiou", rune(w[0]))
}

// notNouns never follow an article; "plan A is" is not an article error.
var notNouns = map[string]bool{
	"is": true, "are": true, "was": true, "and": true, "or": true, "of": true,
	"in": true, "on": true, "at": true, "to": true, "as": true, "if": true,
	"it": true, "I": true, "for": true, "but": true,
}

func fixArticle(m []string, _ string) (string, bool) {
	article, word := m[1], m[2]
	if notNouns[word] {
		return "", false
	}
	want := "a"
	if startsWithVowelSound(word) {
		want = "an"
	}
	if article[0] == 'A' {
		want = "A" + want[1:]
	}
	return want + " " + word, true
}

var presentVerbs = map[string]bool{
	"like": true, "love": true, "want": true, "need": true, "go": true,
	"have": true, "do": true, "work": true, "live": true, "play": true,
	"eat": true, "drink": true, "watch": true, "make": true, "know": true,
	"think": true, "study": true, "try": true, "say": true, "get": true,
	"read": true, "write": true, "speak": true, "take": true, "come": true,
	"cook": true, "teach": true, "wash": true, "finish": true, "enjoy": true,
	"help": true, "walk": true, "run": true, "sleep": true, "feel": true,
}

// auxiliaries take the bare verb after the subject ("does he like").
var auxiliaries = map[string]bool{
	"does": true, "did": true, "doesn't": true, "didn't": true, "can": true,
	"could": true, "will": true, "would": true, "should": true, "must": true,
	"may": true, "might": true, "let": true, "make": true, "made": true,
	"help": true, "see": true, "watch": true, "hear": true,
}

func fixThirdPerson(m []string, before string) (string, bool) {
	verb := m[2]
	if !presentVerbs[verb] {
		return "", false
	}
	if auxiliaries[strings.ToLower(lastWord(before))] {
		return "", false
	}
	return m[1] + " " + thirdPerson(verb), true
}

func thirdPerson(verb string) string {
	switch verb {
	case "have":
		return "has"
	case "do", "go":
		return verb + "es"
	}
	for _, suffix := range []string{"ch", "sh", "s", "x", "z", "o"} {
		if strings.HasSuffix(verb, suffix) {
			return verb + "es"
		}
	}
	if n := len(verb); n > 1 && verb[n-1] == 'y' && !strings.ContainsRune("aeiou", rune(verb[n-2])) {
		return verb[:n-1] + "ies"
	}
	return verb + "s"
}

func fixBe(m []string, before string) (string, bool) {
	var want string
	switch strings.ToLower(m[1]) {
	case "i":
		want = "am"
	case "he", "she", "it":
		want = "is"
	default:
		want = "are"
	}
	if m[2] == "are" && joinsSubjects(strings.ToLower(lastWord(before))) {
		return "", false
	}
	return m[1] + " " + want, true
}

// joinsSubjects reports whether word makes the pronoun after it part of a
// compound subject ("you and I are").
func joinsSubjects(word string) bool {
	return word == "and" || word == "or" || word == "nor"
}

var wordRe = regexp.MustCompile(`[A-Za-z']+`)

// Words that are correctly doubled in ordinary English.
var allowedDoubles = map[string]bool{"had": true, "that": true}

func fixDoubledWords(text string) (string, []GrammarError) {
	var (
		b    strings.Builder
		errs []GrammarError
		last int
	)
	words := wordRe.FindAllStringIndex(text, -1)
	for i := 1; i < len(words); i++ {
		prev, cur := words[i-1], words[i]
		gap := text[prev[1]:cur[0]]
		w1, w2 := text[prev[0]:prev[1]], text[cur[0]:cur[1]]
		if strings.TrimSpace(gap) != "" || !strings.EqualFold(w1, w2) || allowedDoubles[strings.ToLower(w2)] {
			continue
		}
		b.WriteString(text[last:prev[1]])
		last = cur[1]
		errs = append(errs, GrammarError{
			Original:    text[prev[0]:cur[1]],
			Correction:  w1,
			Explanation: "The word is repeated.",
			Kind:        KindRepetition,
		})
	}
	if errs == nil {
		return text, nil
	}
	b.WriteString(text[last:])
	return b.String(), errs
}

func fixFinalPunctuation(text string) (string, []GrammarError) {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	r, _ := utf8.DecodeLastRuneInString(strings.TrimRight(trimmed, `"')`))
	if trimmed == "" || strings.ContainsRune(".!?…", r) {
		return text, nil
	}
	word := lastWord(trimmed)
	return trimmed + ".", []GrammarError{{
		Original:    word,
		Correction:  word + ".",
		Explanation: "A sentence ends with a full stop, question mark or exclamation mark.",
		Kind:        KindPunctuation,
	}}
}

func fixInitialCapital(text string) (string, []GrammarError) {
	start := strings.IndexFunc(text, unicode.IsLetter)
	if start < 0 {
		return text, nil
	}
	r, size := utf8.DecodeRuneInString(text[start:])
	if !unicode.IsLower(r) {
		return text, nil
	}
	fixed := text[:start] + string(unicode.ToUpper(r)) + text[start+size:]
	word := firstWord(text[start:])
	return fixed, []GrammarError{{
		Original:    word,
		Correction:  string(unicode.ToUpper(r)) + word[size:],
		Explanation: "A sentence starts with a capital letter.",
		Kind:        KindCapitalization,
	}}
}

func lastWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[len(fields)-1], `.,!?;:"'`)
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
