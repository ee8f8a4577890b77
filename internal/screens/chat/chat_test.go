package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/fluent/internal/coach"
	"github.com/abhisek/fluent/internal/llm"
	"github.com/abhisek/fluent/internal/progress"
	"github.com/abhisek/fluent/internal/router"
	"github.com/abhisek/fluent/internal/screens"
	"github.com/abhisek/fluent/internal/screens/screenstest"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func testChat(t *testing.T, provider llm.Provider) (*ChatScreen, screens.Deps, *fakeClock) {
	t.Helper()
	deps := screenstest.Deps(t, provider)
	lesson, err := deps.Curriculum.Lesson("greetings")
	require.NoError(t, err)
	ex, err := deps.Curriculum.Exercise("greetings", "intro-chat")
	require.NoError(t, err)

	clock := &fakeClock{t: screenstest.Now}
	return newWithClock(deps, lesson, ex, progress.DifficultyBeginner, clock.now), deps, clock
}

func typeText(s *ChatScreen, text string) {
	for _, msg := range screenstest.Type(text) {
		s.Update(msg)
	}
}

func TestOpensWithExercisePrompt(t *testing.T) {
	s, _, _ := testChat(t, nil)
	require.Len(t, s.history, 1)
	assert.Equal(t, coach.SpeakerTutor, s.history[0].Speaker)
	assert.Contains(t, s.history[0].Text, "Introduce yourself")
	assert.Equal(t, "Greetings and Introductions", s.Title())
}

func TestEmptyInputCannotBeSent(t *testing.T) {
	s, _, _ := testChat(t, nil)

	_, cmd := s.Update(screenstest.Key("enter"))
	assert.Nil(t, cmd)
	assert.False(t, s.send.Active)

	typeText(s, "   ")
	_, cmd = s.Update(screenstest.Key("enter"))
	assert.Nil(t, cmd)
	assert.Len(t, s.history, 1)
	assert.False(t, s.waiting)
}

func TestSendAnalysesAndReplies(t *testing.T) {
	s, _, _ := testChat(t, nil)

	typeText(s, "i am Ana and I am from Spain.")
	assert.True(t, s.send.Active)

	_, cmd := s.Update(screenstest.Key("enter"))
	require.NotNil(t, cmd)
	assert.True(t, s.waiting)
	assert.False(t, s.send.Active, "no second message while waiting")
	assert.True(t, s.input.Empty())
	require.Len(t, s.history, 2)
	assert.Equal(t, "i am Ana and I am from Spain.", s.history[1].Text)

	typeText(s, "again")
	_, blocked := s.Update(screenstest.Key("enter"))
	assert.Nil(t, blocked)

	s.Update(cmd())
	assert.False(t, s.waiting)
	require.Len(t, s.scores, 1)
	require.NotNil(t, s.last)
	assert.True(t, s.last.Fallback)
	assert.NotEmpty(t, s.last.Errors, "lowercase i is flagged")
	require.Len(t, s.history, 3)
	assert.Equal(t, coach.SpeakerTutor, s.history[2].Speaker)
	assert.True(t, s.send.Active, "draft typed while waiting can be sent now")
}

func TestSendUsesModel(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.JSONResponse(map[string]any{
			"errors":         []map[string]any{},
			"corrected_text": "I am Ana.",
			"score":          95,
			"next_question":  "Where do you live?",
		}),
		llm.JSONResponse(map[string]any{
			"reply":      "Nice to meet you, Ana! Where do you live?",
			"follow_ups": []string{"Where do you live?"},
		}),
	)
	s, _, _ := testChat(t, mock)

	typeText(s, "I am Ana.")
	_, cmd := s.Update(screenstest.Key("enter"))
	s.Update(cmd())

	assert.Equal(t, []int{95}, s.scores)
	assert.Equal(t, "Nice to meet you, Ana! Where do you live?", s.history[2].Text)
	assert.Equal(t, 2, mock.CallCount())
}

func TestBackWithoutMessagesOnlyCloses(t *testing.T) {
	s, deps, _ := testChat(t, nil)

	cmd := s.Back()
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())

	lp, err := deps.Progress.LessonProgress(context.Background(), "greetings")
	require.NoError(t, err)
	assert.Nil(t, lp)
}

func TestBackRecordsOutcome(t *testing.T) {
	s, deps, clock := testChat(t, nil)
	ctx := context.Background()

	for _, text := range []string{"I am Ana.", "i live in madrid"} {
		typeText(s, text)
		_, cmd := s.Update(screenstest.Key("enter"))
		s.Update(cmd())
	}
	require.Len(t, s.scores, 2)
	clock.t = clock.t.Add(4*time.Minute + 10*time.Second)

	cmd := s.Back()
	require.NotNil(t, cmd)
	assert.Nil(t, s.Back(), "second Esc while saving is ignored")

	msg := cmd()
	require.IsType(t, savedMsg{}, msg)
	require.NoError(t, msg.(savedMsg).Err)

	lp, err := deps.Progress.LessonProgress(ctx, "greetings")
	require.NoError(t, err)
	require.NotNil(t, lp)
	assert.Equal(t, 5, lp.TimeSpent)
	assert.False(t, lp.Completed)

	ep := lp.Exercise("intro-chat")
	require.NotNil(t, ep)
	assert.Equal(t, MeanScore(s.scores), ep.Score)
	assert.Equal(t, 1, ep.Attempts)
	assert.Contains(t, ep.Transcript, "Learner: I am Ana.")
	assert.Contains(t, ep.Transcript, "Learner: i live in madrid")
	assert.NotEmpty(t, ep.Feedback)

	_, next := s.Update(msg)
	assert.NotNil(t, next)
}

func TestSaveErrorKeepsScreenOpen(t *testing.T) {
	s, _, _ := testChat(t, nil)
	s.saving = true

	_, cmd := s.Update(savedMsg{Err: assert.AnError})
	assert.Nil(t, cmd)
	assert.False(t, s.saving)
	assert.Contains(t, s.View(100, 30), "Could not save")
}

func TestMeanScore(t *testing.T) {
	assert.Equal(t, 0, MeanScore(nil))
	assert.Equal(t, 80, MeanScore([]int{80}))
	assert.Equal(t, 78, MeanScore([]int{70, 85}))
}

func TestTranscript(t *testing.T) {
	got := Transcript([]coach.Turn{
		{Speaker: coach.SpeakerTutor, Text: "Hi!"},
		{Speaker: coach.SpeakerLearner, Text: "Hello."},
	})
	assert.Equal(t, "Tutor: Hi!\nLearner: Hello.", got)
}

func TestViewShowsConversation(t *testing.T) {
	s, _, _ := testChat(t, nil)
	typeText(s, "I am Ana.")
	_, cmd := s.Update(screenstest.Key("enter"))
	s.Update(cmd())

	view := s.View(100, 30)
	assert.Contains(t, view, "You:")
	assert.Contains(t, view, "Score")
}
