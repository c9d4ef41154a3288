package dto

import (
	"time"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/handler/helper"
	"github.com/yourusername/quiz-api/internal/service"
)

// QuestionResponse представляет вопрос в формате для ответа клиенту
type QuestionResponse struct {
	ID           uint                  `json:"id"`
	QuizID       uint                  `json:"quiz_id"`
	Text         string                `json:"text"`
	QuestionType entity.QuestionType   `json:"question_type"`
	Points       int                   `json:"points"`
	Answers      []helper.AnswerOption `json:"answers"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// QuizResponse представляет викторину в формате для ответа клиенту
type QuizResponse struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	TimeLimit   int                `json:"time_limit"`
	CreatedBy   uint               `json:"created_by"`
	Categories  []entity.Category  `json:"categories"`
	Tags        []entity.Tag       `json:"tags"`
	Questions   []QuestionResponse `json:"questions,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// AttemptWindowResponse - окно попытки, возвращаемое при старте
type AttemptWindowResponse struct {
	QuizID    uint      `json:"quiz_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// SubmissionResponse - итог сдачи попытки
type SubmissionResponse struct {
	QuizID  uint                      `json:"quiz_id"`
	Answers []service.SubmittedAnswer `json:"answers"`
	Score   int                       `json:"score"`
}

// ParticipantResponse представляет попытку пользователя
type ParticipantResponse struct {
	ID        uint                 `json:"id"`
	UserID    uint                 `json:"user_id"`
	Username  string               `json:"username,omitempty"`
	QuizID    uint                 `json:"quiz_id"`
	StartTime time.Time            `json:"start_time"`
	EndTime   time.Time            `json:"end_time"`
	Score     *int                 `json:"score"`
	Status    entity.AttemptStatus `json:"status"`
}

// AttemptStatusResponse - состояние попытки текущего пользователя
type AttemptStatusResponse struct {
	QuizID           uint                 `json:"quiz_id"`
	Status           entity.AttemptStatus `json:"status"`
	Attempt          *ParticipantResponse `json:"attempt"`
	RemainingSeconds int                  `json:"remaining_seconds"`
}

// FeedbackResponse представляет отзыв
type FeedbackResponse struct {
	ID            uint      `json:"id"`
	ParticipantID uint      `json:"participant"`
	QuizID        uint      `json:"quiz"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PaginatedResponse - страница списка
type PaginatedResponse struct {
	Results  interface{} `json:"results"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// NewQuestionResponse создает DTO для вопроса. Признак верности ответов
// раскрывается только при revealCorrect.
func NewQuestionResponse(q *entity.Question, revealCorrect bool) QuestionResponse {
	return QuestionResponse{
		ID:           q.ID,
		QuizID:       q.QuizID,
		Text:         q.Text,
		QuestionType: q.Type,
		Points:       q.Points,
		Answers:      helper.ConvertAnswers(q.Answers, revealCorrect),
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
	}
}

// NewQuestionListResponse создает DTO для списка вопросов
func NewQuestionListResponse(questions []entity.Question, revealCorrect bool) []QuestionResponse {
	out := make([]QuestionResponse, len(questions))
	for i := range questions {
		out[i] = NewQuestionResponse(&questions[i], revealCorrect)
	}
	return out
}

// NewQuizResponse создает DTO для викторины
func NewQuizResponse(quiz *entity.Quiz, includeQuestions, revealCorrect bool) *QuizResponse {
	resp := &QuizResponse{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		TimeLimit:   quiz.TimeLimit,
		CreatedBy:   quiz.CreatedByID,
		Categories:  quiz.Categories,
		Tags:        quiz.Tags,
		CreatedAt:   quiz.CreatedAt,
		UpdatedAt:   quiz.UpdatedAt,
	}
	if resp.Categories == nil {
		resp.Categories = []entity.Category{}
	}
	if resp.Tags == nil {
		resp.Tags = []entity.Tag{}
	}
	if includeQuestions {
		resp.Questions = NewQuestionListResponse(quiz.Questions, revealCorrect)
	}
	return resp
}

// NewListQuizResponse создает DTO для списка викторин (без вопросов)
func NewListQuizResponse(quizzes []entity.Quiz) []*QuizResponse {
	out := make([]*QuizResponse, len(quizzes))
	for i := range quizzes {
		out[i] = NewQuizResponse(&quizzes[i], false, false)
	}
	return out
}

// NewParticipantResponse создает DTO для попытки
func NewParticipantResponse(p *entity.Participant, now time.Time) *ParticipantResponse {
	resp := &ParticipantResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		QuizID:    p.QuizID,
		StartTime: p.StartTime,
		EndTime:   p.EndTime,
		Score:     p.Score,
		Status:    p.Status(now),
	}
	if p.User != nil {
		resp.Username = p.User.Username
	}
	return resp
}

// NewParticipantListResponse создает DTO для списка попыток
func NewParticipantListResponse(participants []entity.Participant, now time.Time) []*ParticipantResponse {
	out := make([]*ParticipantResponse, len(participants))
	for i := range participants {
		out[i] = NewParticipantResponse(&participants[i], now)
	}
	return out
}

// NewAttemptStatusResponse создает DTO состояния попытки; p может быть nil
func NewAttemptStatusResponse(quizID uint, p *entity.Participant, status entity.AttemptStatus, now time.Time) *AttemptStatusResponse {
	resp := &AttemptStatusResponse{QuizID: quizID, Status: status}
	if p != nil {
		resp.Attempt = NewParticipantResponse(p, now)
		if status == entity.AttemptStatusInProgress {
			resp.RemainingSeconds = int(p.Remaining(now).Seconds())
		}
	}
	return resp
}

// NewFeedbackResponse создает DTO для отзыва
func NewFeedbackResponse(f *entity.Feedback) *FeedbackResponse {
	return &FeedbackResponse{
		ID:            f.ID,
		ParticipantID: f.ParticipantID,
		QuizID:        f.QuizID,
		Rating:        f.Rating,
		Comment:       f.Comment,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// NewFeedbackListResponse создает DTO для списка отзывов
func NewFeedbackListResponse(feedbacks []entity.Feedback) []*FeedbackResponse {
	out := make([]*FeedbackResponse, len(feedbacks))
	for i := range feedbacks {
		out[i] = NewFeedbackResponse(&feedbacks[i])
	}
	return out
}
