package session

import (
	"slices"
	"time"

	"lecture-quiz/api/internal/quiz"
)

type Stage string

const (
	StageNew       Stage = "new"
	StageUploaded  Stage = "uploaded"
	StageGenerated Stage = "generated"
	StageAnswered  Stage = "answered"
	StageScored    Stage = "scored"
)

// Session is the per-user state of one upload → generate → answer → grade flow.
type Session struct {
	ID           string       `json:"id"`
	Stage        Stage        `json:"stage"`
	SourceName   string       `json:"source_name,omitempty"`
	SourceText   string       `json:"source_text,omitempty"`
	NumQuestions int          `json:"num_questions"`
	Kinds        []quiz.Kind  `json:"kinds"`
	LLMName      string       `json:"llm_name,omitempty"`
	Set          *quiz.Set    `json:"set,omitempty"`
	Answers      quiz.Answers `json:"answers,omitempty"`
	ShowResults  bool         `json:"show_results"`
	// Awaiting is the 1-based item waiting for a typed answer; 0 when none.
	Awaiting  int       `json:"awaiting,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Limits bounds SetCount.
type Limits struct {
	Min, Max, Default int
}

func New(id string, kinds []quiz.Kind, l Limits) *Session {
	return &Session{
		ID:           id,
		Stage:        StageNew,
		NumQuestions: l.Default,
		Kinds:        slices.Clone(kinds),
		Answers:      quiz.Answers{},
	}
}

// Upload installs freshly extracted text; any previous quiz is dropped.
func (s *Session) Upload(name, text string) {
	s.SourceName = name
	s.SourceText = text
	s.Set = nil
	s.Answers = quiz.Answers{}
	s.ShowResults = false
	s.Awaiting = 0
	s.Stage = StageUploaded
}

// Replace installs a new set. Answers and the results flag never survive it.
func (s *Session) Replace(set quiz.Set) {
	s.Set = &set
	s.Answers = quiz.Answers{}
	s.ShowResults = false
	s.Awaiting = 0
	s.Stage = StageGenerated
}

func (s *Session) HasQuiz() bool { return s.Set != nil && !s.Set.Empty() }

// Answer records the submission for item i; an out-of-range index is ignored.
func (s *Session) Answer(i int, text string) bool {
	if !s.HasQuiz() || i < 0 || i >= s.Set.Len() {
		return false
	}
	if s.Answers == nil {
		s.Answers = quiz.Answers{}
	}
	s.Answers[i] = text
	s.Awaiting = 0
	if s.Stage == StageGenerated || s.Stage == StageScored {
		s.Stage = StageAnswered
	}
	s.ShowResults = false
	return true
}

func (s *Session) Grade(g *quiz.Grader) (quiz.Result, error) {
	if !s.HasQuiz() {
		return quiz.Result{}, quiz.ErrNoQuiz
	}
	if g == nil {
		g = quiz.NewGrader(nil)
	}
	res, err := g.Grade(*s.Set, s.Answers)
	if err != nil {
		return quiz.Result{}, err
	}
	s.ShowResults = true
	s.Stage = StageScored
	return res, nil
}

// ToggleKind adds k when absent and removes it otherwise. Display order follows order.
func (s *Session) ToggleKind(k quiz.Kind, order []quiz.Kind) {
	if i := slices.Index(s.Kinds, k); i >= 0 {
		s.Kinds = slices.Delete(s.Kinds, i, i+1)
		return
	}
	s.Kinds = append(s.Kinds, k)
	if len(order) > 0 {
		slices.SortStableFunc(s.Kinds, func(a, b quiz.Kind) int {
			return rank(order, a) - rank(order, b)
		})
	}
}

func rank(order []quiz.Kind, k quiz.Kind) int {
	if i := slices.Index(order, k); i >= 0 {
		return i
	}
	return len(order)
}

func (s *Session) HasKind(k quiz.Kind) bool { return slices.Contains(s.Kinds, k) }

// SetCount clamps n into l.
func (s *Session) SetCount(n int, l Limits) int {
	if n < l.Min {
		n = l.Min
	}
	if l.Max > 0 && n > l.Max {
		n = l.Max
	}
	s.NumQuestions = n
	return n
}
