package coach

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		corrected string
		kinds     []string
	}{
		{"clean sentence", "I like green tea.", "I like green tea.", nil},
		{"lowercase i", "Yesterday i went home.", "Yesterday I went home.", []string{KindCapitalization}},
		{"i contraction", "Today i'm tired.", "Today I'm tired.", []string{KindCapitalization}},
		{"a before vowel", "She has a apple.", "She has an apple.", []string{KindArticle}},
		{"an before consonant", "It was an book.", "It was a book.", []string{KindArticle}},
		{"a university is fine", "I study at a university.", "I study at a university.", nil},
		{"an hour is fine", "We waited an hour.", "We waited an hour.", nil},
		{"plan A is fine", "Plan A is good.", "Plan A is good.", nil},
		{"third person", "He like football.", "He likes football.", []string{KindVerbForm}},
		{"third person es", "She watch films, then she go out.", "She watches films, then she goes out.", []string{KindVerbForm, KindVerbForm}},
		{"third person y", "He study English.", "He studies English.", []string{KindVerbForm}},
		{"question form untouched", "Does she like tea?", "Does she like tea?", nil},
		{"I is", "I is happy.", "I am happy.", []string{KindAgreement}},
		{"he are", "He are my friend.", "He is my friend.", []string{KindAgreement}},
		{"they is", "They is late.", "They are late.", []string{KindAgreement}},
		{"you and I are", "You and I are friends.", "You and I are friends.", nil},
		{"tom and he are", "Tom and he are cousins.", "Tom and he are cousins.", nil},
		{"doubled word", "I went to the the park.", "I went to the park.", []string{KindRepetition}},
		{"had had allowed", "She had had enough.", "She had had enough.", nil},
		{"missing full stop", "I like cats", "I like cats.", []string{KindPunctuation}},
		{"question mark ends", "Do you like cats?", "Do you like cats?", nil},
		{"quoted ending", `He said "hello."`, `He said "hello."`, nil},
		{"missing capital", "my name is Ana.", "My name is Ana.", []string{KindCapitalization}},
		{
			"several mistakes",
			"i is a engineer and he work here",
			"I am an engineer and he works here.",
			[]string{KindCapitalization, KindArticle, KindVerbForm, KindAgreement, KindPunctuation},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, corrected := checkText(tt.text)
			assert.Equal(t, tt.corrected, corrected)
			kinds := make([]string, 0, len(errs))
			for _, e := range errs {
				kinds = append(kinds, e.Kind)
				assert.NotEmpty(t, e.Explanation)
			}
			if tt.kinds == nil {
				assert.Empty(t, kinds)
			} else {
				assert.Equal(t, tt.kinds, kinds)
			}
		})
	}
}

func TestCheckTextReportsFragments(t *testing.T) {
	errs, _ := checkText("I saw a owl.")
	require.Len(t, errs, 1)
	assert.Equal(t, "a owl", errs[0].Original)
	assert.Equal(t, "an owl", errs[0].Correction)

	errs, _ = checkText("We we are ready.")
	require.Len(t, errs, 1)
	assert.Equal(t, "We we", errs[0].Original)
	assert.Equal(t, "We", errs[0].Correction)
}

func TestLocalScore(t *testing.T) {
	assert.Equal(t, 100, localScore(0))
	assert.Equal(t, 85, localScore(1))
	assert.Equal(t, 40, localScore(4))
	assert.Equal(t, 30, localScore(5))
	assert.Equal(t, 30, localScore(12))
}

func TestThirdPerson(t *testing.T) {
	for verb, want := range map[string]string{
		"have": "has", "go": "goes", "do": "does", "watch": "watches",
		"wash": "washes", "fix": "fixes", "try": "tries", "play": "plays", "like": "likes",
	} {
		assert.Equal(t, want, thirdPerson(verb), verb)
	}
}
