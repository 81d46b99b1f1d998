package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shauryapandit/tutor-api-gdg/internal/catalog"
	"github.com/shauryapandit/tutor-api-gdg/internal/models"
	"github.com/shauryapandit/tutor-api-gdg/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
)

// fakeStore keeps sessions in a map and applies $set merges the way the
// Mongo repository does.
type fakeStore struct {
	sessions  map[string]*models.QuizSession
	createErr error
	findErr   error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[string]*models.QuizSession)}
}

func storeKey(userID, sessionID string) string {
	return userID + "/" + sessionID
}

func (f *fakeStore) Create(_ context.Context, session *models.QuizSession) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *session
	f.sessions[storeKey(session.UserID, session.SessionID)] = &copied
	return nil
}

func (f *fakeStore) Find(_ context.Context, userID, sessionID string) (*models.QuizSession, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	session, ok := f.sessions[storeKey(userID, sessionID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (f *fakeStore) Update(_ context.Context, userID, sessionID string, update bson.M) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	session, ok := f.sessions[storeKey(userID, sessionID)]
	if !ok {
		return repository.ErrNotFound
	}
	for field, value := range update {
		switch field {
		case "history":
			session.History = value.([]models.HistoryEntry)
		case "remaining_topics":
			session.RemainingTopics = value.([]models.Topic)
		case "current_question":
			session.CurrentQuestion = value.(string)
		case "status":
			session.Status = value.(string)
		case "updated_at":
			session.UpdatedAt = value.(time.Time)
		}
	}
	return nil
}

// fakeLLM returns canned responses in order and records the prompts it saw.
type fakeLLM struct {
	responses []string
	err       error
	errAtCall int // 1-based call index that fails; 0 means err applies to every call
	calls     int
	prompts   []string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil && (f.errAtCall == 0 || f.errAtCall == f.calls) {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "generated text", nil
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	return next, nil
}

func (f *fakeLLM) Chat(_ context.Context, _ string, _ []models.ChatMessage, _ string) (string, error) {
	return "", errors.New("not used in quiz tests")
}

const quizTestCSV = `Topic,Difficulty
What is a budget?,Beginner
What is compound interest?,Beginner
What is a stock?,Intermediate
What is technical analysis?,Advanced
`

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Parse(strings.NewReader(quizTestCSV))
	if err != nil {
		t.Fatalf("catalog parse failed: %v", err)
	}
	return c
}

func newTestQuizService(t *testing.T, store SessionStore, gen *fakeLLM) *QuizService {
	t.Helper()
	return NewQuizService(store, testCatalog(t), gen, nil)
}

func TestStart_AllLevels(t *testing.T) {
	wantTopics := map[models.Level]int{
		models.LevelBeginner:     2,
		models.LevelIntermediate: 1,
		models.LevelAdvanced:     1,
	}

	for _, level := range models.Levels {
		t.Run(string(level), func(t *testing.T) {
			store := newFakeStore()
			svc := newTestQuizService(t, store, &fakeLLM{responses: []string{"What is compound interest?"}})

			result, err := svc.Start(context.Background(), "u1", string(level))
			if err != nil {
				t.Fatalf("Start failed: %v", err)
			}
			if result.SessionID == "" {
				t.Error("expected a generated session id")
			}
			if result.Question == "" {
				t.Error("expected a non-empty question")
			}

			session, err := store.Find(context.Background(), "u1", result.SessionID)
			if err != nil {
				t.Fatalf("persisted session not found: %v", err)
			}
			if session.Status != models.StatusActive {
				t.Errorf("expected status %q, got %q", models.StatusActive, session.Status)
			}
			if len(session.History) != 0 {
				t.Errorf("expected empty history, got %d entries", len(session.History))
			}
			if len(session.RemainingTopics) != wantTopics[level] {
				t.Errorf("expected %d remaining topics, got %d", wantTopics[level], len(session.RemainingTopics))
			}
			if session.CurrentQuestion != result.Question {
				t.Errorf("stored question %q differs from returned %q", session.CurrentQuestion, result.Question)
			}
		})
	}
}

func TestStart_InvalidLevel(t *testing.T) {
	for _, level := range []string{"Expert", "beginner", "", "BEGINNER"} {
		t.Run(level, func(t *testing.T) {
			store := newFakeStore()
			svc := newTestQuizService(t, store, &fakeLLM{})

			_, err := svc.Start(context.Background(), "u1", level)
			if !errors.Is(err, ErrInvalidLevel) {
				t.Fatalf("expected ErrInvalidLevel, got %v", err)
			}
			if len(store.sessions) != 0 {
				t.Error("no session should be persisted for an invalid level")
			}
		})
	}
}

func TestStart_EmptyCatalogIsServerError(t *testing.T) {
	emptyCat, err := catalog.Parse(strings.NewReader("Topic,Difficulty\nWhat is a budget?,Beginner\n"))
	if err != nil {
		t.Fatal(err)
	}
	svc := NewQuizService(newFakeStore(), emptyCat, &fakeLLM{}, nil)

	_, err = svc.Start(context.Background(), "u1", "Advanced")
	if !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestStart_EmptyGenerationUsesFallback(t *testing.T) {
	store := newFakeStore()
	svc := newTestQuizService(t, store, &fakeLLM{responses: []string{""}})

	result, err := svc.Start(context.Background(), "u1", "Beginner")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if result.Question != fallbackQuestion {
		t.Errorf("expected fallback question %q, got %q", fallbackQuestion, result.Question)
	}
}

func TestStart_GeneratorFailureIsFatal(t *testing.T) {
	store := newFakeStore()
	svc := newTestQuizService(t, store, &fakeLLM{err: errors.New("quota exceeded")})

	if _, err := svc.Start(context.Background(), "u1", "Beginner"); err == nil {
		t.Fatal("expected error when generation fails")
	}
	if len(store.sessions) != 0 {
		t.Error("no session should be persisted when generation fails")
	}
}

func seedSession(store *fakeStore, topics ...models.Topic) *models.QuizSession {
	session := &models.QuizSession{
		UserID:          "u1",
		SessionID:       "s1",
		Level:           models.LevelBeginner,
		RemainingTopics: topics,
		CurrentQuestion: "What is compound interest?",
		History:         []models.HistoryEntry{},
		Status:          models.StatusActive,
		StartedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	store.sessions[storeKey("u1", "s1")] = session
	return session
}

func TestAnswer_AppendsHistoryAndAdvances(t *testing.T) {
	store := newFakeStore()
	seedSession(store, models.Topic{Name: "What is a budget?", Difficulty: "Beginner"})
	gen := &fakeLLM{responses: []string{"Correct. Interest on interest.", "What is a budget, in your own words?"}}
	svc := newTestQuizService(t, store, gen)

	result, err := svc.Answer(context.Background(), "u1", "s1", "Interest on interest")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if result.Evaluation != "Correct. Interest on interest." {
		t.Errorf("unexpected evaluation %q", result.Evaluation)
	}
	if result.NextQuestion == "" {
		t.Error("expected a next question while topics remain")
	}
	if result.Message != "" {
		t.Errorf("completion message must be empty while topics remain, got %q", result.Message)
	}

	session := store.sessions[storeKey("u1", "s1")]
	if len(session.History) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(session.History))
	}
	entry := session.History[0]
	if entry.Question != "What is compound interest?" || entry.UserAnswer != "Interest on interest" {
		t.Errorf("history entry does not match the answered question: %+v", entry)
	}
	if len(session.RemainingTopics) != 0 {
		t.Errorf("expected topic queue to shrink to 0, got %d", len(session.RemainingTopics))
	}
	if session.CurrentQuestion != result.NextQuestion {
		t.Errorf("stored current question %q differs from returned %q", session.CurrentQuestion, result.NextQuestion)
	}
	if session.Status != models.StatusActive {
		t.Errorf("session should stay active, got %q", session.Status)
	}
}

func TestAnswer_CompletesWhenTopicsExhausted(t *testing.T) {
	store := newFakeStore()
	seedSession(store) // no remaining topics
	svc := newTestQuizService(t, store, &fakeLLM{responses: []string{"Correct."}})

	result, err := svc.Answer(context.Background(), "u1", "s1", "Interest on interest")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if result.Message != "Quiz completed!" {
		t.Errorf("expected completion message, got %q", result.Message)
	}
	if result.NextQuestion != "" {
		t.Errorf("no next question expected on completion, got %q", result.NextQuestion)
	}

	session := store.sessions[storeKey("u1", "s1")]
	if session.Status != models.StatusCompleted {
		t.Errorf("expected status %q, got %q", models.StatusCompleted, session.Status)
	}
	if session.CurrentQuestion != "" {
		t.Errorf("current question must be cleared on completion, got %q", session.CurrentQuestion)
	}
	if len(session.History) != 1 {
		t.Errorf("expected 1 history entry, got %d", len(session.History))
	}

	// Further answers get the explicit completed signal, not "no session".
	if _, err := svc.Answer(context.Background(), "u1", "s1", "again"); !errors.Is(err, ErrQuizCompleted) {
		t.Fatalf("expected ErrQuizCompleted, got %v", err)
	}
}

func TestAnswer_EmptyAnswerNeverMutates(t *testing.T) {
	store := newFakeStore()
	seedSession(store, models.Topic{Name: "What is a budget?", Difficulty: "Beginner"})
	gen := &fakeLLM{}
	svc := newTestQuizService(t, store, gen)

	for _, answer := range []string{"", "   ", "\n\t"} {
		if _, err := svc.Answer(context.Background(), "u1", "s1", answer); !errors.Is(err, ErrEmptyAnswer) {
			t.Fatalf("answer %q: expected ErrEmptyAnswer, got %v", answer, err)
		}
	}

	session := store.sessions[storeKey("u1", "s1")]
	if len(session.History) != 0 {
		t.Errorf("history must not grow on rejected answers, got %d entries", len(session.History))
	}
	if gen.calls != 0 {
		t.Errorf("the gateway must not be called for rejected answers, got %d calls", gen.calls)
	}
}

func TestAnswer_UnknownSession(t *testing.T) {
	svc := newTestQuizService(t, newFakeStore(), &fakeLLM{})

	_, err := svc.Answer(context.Background(), "u1", "missing", "anything")
	if !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestAnswer_GenerationFailureKeepsAcceptedAnswer(t *testing.T) {
	store := newFakeStore()
	seedSession(store, models.Topic{Name: "What is a budget?", Difficulty: "Beginner"})
	// First call (evaluation) succeeds, second (next question) fails.
	gen := &fakeLLM{responses: []string{"Correct."}, err: errors.New("gateway down"), errAtCall: 2}
	svc := newTestQuizService(t, store, gen)

	if _, err := svc.Answer(context.Background(), "u1", "s1", "Interest on interest"); err == nil {
		t.Fatal("expected error when next-question generation fails")
	}

	session := store.sessions[storeKey("u1", "s1")]
	if len(session.History) != 1 {
		t.Fatalf("accepted answer must survive a generation failure, got %d entries", len(session.History))
	}
	if len(session.RemainingTopics) != 0 {
		t.Errorf("topic pop must be persisted with the answer, got %d remaining", len(session.RemainingTopics))
	}
}

func TestAnswer_EmptyEvaluationUsesFallback(t *testing.T) {
	store := newFakeStore()
	seedSession(store)
	svc := newTestQuizService(t, store, &fakeLLM{responses: []string{""}})

	result, err := svc.Answer(context.Background(), "u1", "s1", "Interest on interest")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if result.Evaluation != fallbackEvaluation {
		t.Errorf("expected fallback evaluation %q, got %q", fallbackEvaluation, result.Evaluation)
	}
}

func TestProgress_ReturnsOrderedHistory(t *testing.T) {
	store := newFakeStore()
	session := seedSession(store)
	session.History = []models.HistoryEntry{
		{Question: "q1", UserAnswer: "a1", Evaluation: "e1"},
		{Question: "q2", UserAnswer: "a2", Evaluation: "e2"},
		{Question: "q3", UserAnswer: "a3", Evaluation: "e3"},
	}
	session.Status = models.StatusCompleted
	svc := newTestQuizService(t, store, &fakeLLM{})

	history, err := svc.Progress(context.Background(), "u1", "s1")
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(history))
	}
	for i, want := range []string{"q1", "q2", "q3"} {
		if history[i].Question != want {
			t.Errorf("position %d: expected %q, got %q", i, want, history[i].Question)
		}
	}
}

func TestProgress_UnknownSession(t *testing.T) {
	svc := newTestQuizService(t, newFakeStore(), &fakeLLM{})

	_, err := svc.Progress(context.Background(), "u1", "missing")
	if !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestQuizLifecycle_EndToEnd(t *testing.T) {
	// One Intermediate catalog topic: first question generated at start,
	// one more after the first answer, completion after the second.
	store := newFakeStore()
	gen := &fakeLLM{responses: []string{
		"What is a stock?",
		"Correct, a share of ownership.",
		"How do stocks differ from bonds?",
		"Right, bonds are debt instruments.",
	}}
	svc := newTestQuizService(t, store, gen)

	start, err := svc.Start(context.Background(), "u1", "Intermediate")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	first, err := svc.Answer(context.Background(), "u1", start.SessionID, "A share of a company")
	if err != nil {
		t.Fatalf("first Answer failed: %v", err)
	}
	if first.NextQuestion == "" {
		t.Fatal("expected a next question after the first answer")
	}

	second, err := svc.Answer(context.Background(), "u1", start.SessionID, "Bonds are loans")
	if err != nil {
		t.Fatalf("second Answer failed: %v", err)
	}
	if second.Message != "Quiz completed!" {
		t.Fatalf("expected completion, got %+v", second)
	}

	history, err := svc.Progress(context.Background(), "u1", start.SessionID)
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].Question != start.Question {
		t.Errorf("first entry question %q should match the starting question %q", history[0].Question, start.Question)
	}
	if history[1].Question != first.NextQuestion {
		t.Errorf("second entry question %q should match the advanced question %q", history[1].Question, first.NextQuestion)
	}

	if _, err := svc.Answer(context.Background(), "u1", start.SessionID, "one more"); !errors.Is(err, ErrQuizCompleted) {
		t.Fatalf("expected ErrQuizCompleted after completion, got %v", err)
	}
}
