package coach

import (
	"fmt"
	"strings"

	"github.com/abhisek/fluent/internal/progress"
)

var levelQuestions = map[progress.Difficulty][]string{
	progress.DifficultyBeginner: {
		"What do you usually eat for breakfast?",
		"Can you tell me about your family?",
		"What is your favourite day of the week, and why?",
		"What did you do last weekend?",
		"Where do you live?",
	},
	progress.DifficultyIntermediate: {
		"What is something you have learned recently that surprised you?",
		"How would you describe a typical day at your work or school?",
		"If you could visit any country, where would you go and why?",
		"What is a habit you would like to change?",
		"Tell me about a film or book you enjoyed recently.",
	},
	progress.DifficultyAdvanced: {
		"How has technology changed the way people in your country communicate?",
		"What do you think makes a city a good place to live?",
		"Describe a decision you made that turned out differently than you expected.",
		"Should schools teach practical skills like cooking and budgeting? Why or why not?",
		"What role should governments play in protecting the environment?",
	},
}

var topicQuestions = map[string][]string{
	"travel": {
		"What was the best trip you have ever taken?",
		"Do you prefer travelling alone or with friends?",
		"What do you always pack first?",
	},
	"food": {
		"What dish from your country should everyone try?",
		"Do you enjoy cooking at home?",
		"What did you have for dinner yesterday?",
	},
	"work": {
		"What do you like most about your job?",
		"What would your dream job be?",
		"How do you usually get to work?",
	},
	"hobbies": {
		"What do you do to relax in the evening?",
		"Is there a hobby you would like to start?",
		"How did you get interested in your favourite hobby?",
	},
	"daily life": {
		"What time do you usually wake up?",
		"What is the busiest part of your day?",
		"What do you do on a rainy day?",
	},
}

var acknowledgements = []string{
	"That sounds interesting!",
	"Thanks for sharing that.",
	"Nice, I like hearing about that.",
	"Great answer!",
	"I see, tell me more.",
}

func questionsFor(level progress.Difficulty, topic string) []string {
	if qs, ok := topicQuestions[strings.ToLower(strings.TrimSpace(topic))]; ok {
		return qs
	}
	return levelQuestions[levelOrDefault(level)]
}

// Topics lists the conversation topics with canned questions.
func Topics() []string {
	return []string{"daily life", "food", "hobbies", "travel", "work"}
}

// localAnalysis answers an analysis request from the built-in rules.
func (c *Coach) localAnalysis(text string, level progress.Difficulty) *Analysis {
	errs, corrected := checkText(text)
	return &Analysis{
		Errors:        errs,
		CorrectedText: corrected,
		Score:         localScore(len(errs)),
		NextQuestion:  c.pick(levelQuestions[levelOrDefault(level)]),
		Fallback:      true,
	}
}

// localReply acknowledges the learner, points out the first mistake if
// any, and asks a question on the topic.
func (c *Coach) localReply(req ConversationRequest) *Reply {
	errs, _ := checkText(req.Input)
	qs := questionsFor(req.Level, req.Topic)

	var b strings.Builder
	b.WriteString(c.pick(acknowledgements))
	if len(errs) > 0 {
		fmt.Fprintf(&b, " Small tip: say %q instead of %q.", errs[0].Correction, errs[0].Original)
	}
	b.WriteString(" ")
	b.WriteString(c.pick(qs))

	return &Reply{
		Text:      b.String(),
		FollowUps: c.sample(qs, 2),
		Fallback:  true,
	}
}
