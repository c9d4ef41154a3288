package handler

import (
	"context"
	"sync"
	"time"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

// memoryStore - общее in-memory хранилище для фейковых репозиториев
type memoryStore struct {
	mu           sync.Mutex
	quizzes      map[uint]*entity.Quiz
	questions    map[uint][]entity.Question
	participants map[[2]uint]*entity.Participant
	feedbacks    map[uint]*entity.Feedback
	nextID       uint
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		quizzes:      make(map[uint]*entity.Quiz),
		questions:    make(map[uint][]entity.Question),
		participants: make(map[[2]uint]*entity.Participant),
		feedbacks:    make(map[uint]*entity.Feedback),
		nextID:       100,
	}
}

func (s *memoryStore) id() uint {
	s.nextID++
	return s.nextID
}

type fakeQuizRepo struct{ *memoryStore }

func (r fakeQuizRepo) Create(ctx context.Context, quiz *entity.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz.ID = r.id()
	r.quizzes[quiz.ID] = quiz
	return nil
}

func (r fakeQuizRepo) GetByID(ctx context.Context, id uint) (*entity.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quizzes[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *q
	return &copied, nil
}

func (r fakeQuizRepo) GetWithQuestions(ctx context.Context, id uint) (*entity.Quiz, error) {
	q, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	q.Questions = append([]entity.Question(nil), r.questions[id]...)
	r.mu.Unlock()
	return q, nil
}

func (r fakeQuizRepo) Update(ctx context.Context, quiz *entity.Quiz, assoc repository.QuizAssociations) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizzes[quiz.ID] = quiz
	return nil
}

func (r fakeQuizRepo) List(ctx context.Context, filters repository.QuizFilters, limit, offset int) ([]entity.Quiz, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Quiz
	for _, q := range r.quizzes {
		out = append(out, *q)
	}
	return out, int64(len(out)), nil
}

func (r fakeQuizRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.quizzes, id)
	return nil
}

type fakeQuestionRepo struct{ *memoryStore }

func (r fakeQuestionRepo) Create(ctx context.Context, question *entity.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	question.ID = r.id()
	r.questions[question.QuizID] = append(r.questions[question.QuizID], *question)
	return nil
}

func (r fakeQuestionRepo) GetByID(ctx context.Context, id uint) (*entity.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, qs := range r.questions {
		for i := range qs {
			if qs[i].ID == id {
				q := qs[i]
				return &q, nil
			}
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r fakeQuestionRepo) ListByQuiz(ctx context.Context, quizID uint) ([]entity.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.Question(nil), r.questions[quizID]...), nil
}

func (r fakeQuestionRepo) Update(ctx context.Context, question *entity.Question) error {
	return nil
}

func (r fakeQuestionRepo) Delete(ctx context.Context, id uint) error {
	return nil
}

type fakeParticipantRepo struct{ *memoryStore }

func (r fakeParticipantRepo) UpsertAttempt(ctx context.Context, userID, quizID uint, start, end time.Time) (*entity.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]uint{userID, quizID}
	p, ok := r.participants[key]
	if !ok {
		p = &entity.Participant{ID: r.id(), UserID: userID, QuizID: quizID}
		r.participants[key] = p
	}
	p.StartTime, p.EndTime, p.Score = start, end, nil
	copied := *p
	return &copied, nil
}

func (r fakeParticipantRepo) GetByUserAndQuiz(ctx context.Context, userID, quizID uint) (*entity.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[[2]uint{userID, quizID}]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r fakeParticipantRepo) SubmitScore(ctx context.Context, userID, quizID uint, grade repository.GradeFunc) (*entity.Participant, error) {
	r.mu.Lock()
	p, ok := r.participants[[2]uint{userID, quizID}]
	var locked entity.Participant
	if ok {
		locked = *p
	}
	r.mu.Unlock()
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	// grade читает вопросы через то же хранилище, поэтому вызывается без мьютекса
	score, err := grade(&locked)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants[[2]uint{userID, quizID}].Score = &score
	locked.Score = &score
	return &locked, nil
}

func (r fakeParticipantRepo) ListByQuiz(ctx context.Context, quizID uint, limit, offset int) ([]entity.Participant, int64, error) {
	all, _ := r.ListAllByQuiz(ctx, quizID)
	return all, int64(len(all)), nil
}

func (r fakeParticipantRepo) ListAllByQuiz(ctx context.Context, quizID uint) ([]entity.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Participant
	for key, p := range r.participants {
		if key[1] == quizID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeFeedbackRepo struct{ *memoryStore }

func (r fakeFeedbackRepo) Create(ctx context.Context, feedback *entity.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	feedback.ID = r.id()
	copied := *feedback
	r.feedbacks[feedback.ID] = &copied
	return nil
}

func (r fakeFeedbackRepo) GetByID(ctx context.Context, id uint) (*entity.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.feedbacks[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *f
	for _, p := range r.participants {
		if p.ID == f.ParticipantID {
			participant := *p
			copied.Participant = &participant
		}
	}
	return &copied, nil
}

func (r fakeFeedbackRepo) ListByQuiz(ctx context.Context, quizID uint, limit, offset int) ([]entity.Feedback, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Feedback
	for _, f := range r.feedbacks {
		if f.QuizID == quizID {
			out = append(out, *f)
		}
	}
	return out, int64(len(out)), nil
}

func (r fakeFeedbackRepo) Update(ctx context.Context, feedback *entity.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *feedback
	r.feedbacks[feedback.ID] = &copied
	return nil
}

func (r fakeFeedbackRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.feedbacks, id)
	return nil
}

// fakeCategoryRepo знает только категорию с ID 1; остальные методы не вызываются
type fakeCategoryRepo struct{ repository.CategoryRepository }

func (fakeCategoryRepo) GetByIDs(ctx context.Context, ids []uint) ([]entity.Category, error) {
	var out []entity.Category
	for _, id := range ids {
		if id == 1 {
			out = append(out, entity.Category{ID: 1, Name: "Programming"})
		}
	}
	return out, nil
}

type fakeTagRepo struct{ repository.TagRepository }

func (fakeTagRepo) GetByIDs(ctx context.Context, ids []uint) ([]entity.Tag, error) {
	return nil, nil
}
