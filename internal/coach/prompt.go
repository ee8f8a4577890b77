package coach

import (
	"fmt"
	"strings"

	"github.com/abhisek/fluent/internal/progress"
)

const analysisSystemPrompt = `You are a friendly English teacher reviewing short texts written or spoken by an adult learner. You point out real mistakes only and explain each one in one plain sentence.`

func buildAnalysisMessage(text string, level progress.Difficulty) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Learner level: %s\n", levelOrDefault(level))
	fmt.Fprintf(&b, "Text:\n%s\n", text)
	b.WriteString(`
Instructions:
1. List every grammar, spelling, article, agreement, punctuation or capitalization mistake. Quote the wrong fragment exactly as written in "original" and give the fixed fragment in "correction".
2. Do not flag stylistic choices or informal but correct English.
3. Give the whole text with all corrections applied in "corrected_text".
4. Score the text from 0 to 100 for accuracy, taking the learner level into account.
5. Ask one short follow-up question in "next_question" that invites the learner to keep talking about the same subject. Match the vocabulary to the learner level.`)
	return b.String()
}

func conversationSystemPrompt(level progress.Difficulty, topic string) string {
	var b strings.Builder
	b.WriteString("You are a warm English conversation partner helping an adult practise speaking. ")
	fmt.Fprintf(&b, "The learner is at %s level; keep sentences short and vocabulary suitable for that level. ", levelOrDefault(level))
	if topic != "" {
		fmt.Fprintf(&b, "The conversation topic is %q. ", topic)
	}
	b.WriteString("Reply in two or three sentences and end with a question. If the learner made an obvious mistake, repeat their idea back correctly without lecturing. ")
	b.WriteString(`Also suggest up to three short follow-up questions the learner could ask you in "follow_ups".`)
	return b.String()
}

func levelOrDefault(level progress.Difficulty) progress.Difficulty {
	if level.Valid() {
		return level
	}
	return progress.DifficultyBeginner
}
