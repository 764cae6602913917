// services/quiz_service.go - Quiz Content Access
package services

import (
	"encoding/json"
	"errors"
	"ustaadgpt/models"

	"gorm.io/gorm"
)

// QuizService reads generated quiz content. Quiz sets are immutable once
// written; nothing here mutates them.
type QuizService struct {
	db *gorm.DB
}

func NewQuizService(db *gorm.DB) *QuizService {
	return &QuizService{db: db}
}

// PlayQuestion is a question stripped of its answer key, safe to hand to
// a participant about to take the quiz.
type PlayQuestion struct {
	ID      uint     `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// QuestionCount returns the number of questions in a quiz set.
func (s *QuizService) QuestionCount(quizSetID uint) (int, error) {
	var count int64
	err := s.db.Model(&models.Question{}).
		Where("quiz_set_id = ?", quizSetID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// GetQuizSet fetches a quiz set with its questions.
func (s *QuizService) GetQuizSet(quizSetID uint) (*models.QuizSet, error) {
	var quizSet models.QuizSet
	err := s.db.Preload("Questions").First(&quizSet, quizSetID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &quizSet, nil
}

// PlayQuestions returns the quiz set's questions in stored order with the
// correct answer index removed.
func (s *QuizService) PlayQuestions(quizSetID uint) ([]PlayQuestion, error) {
	var questions []models.Question
	err := s.db.Where("quiz_set_id = ?", quizSetID).
		Order("id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNotFound
	}

	play := make([]PlayQuestion, 0, len(questions))
	for _, q := range questions {
		var options []string
		if err := json.Unmarshal([]byte(q.Options), &options); err != nil {
			return nil, err
		}
		play = append(play, PlayQuestion{
			ID:      q.ID,
			Text:    q.Text,
			Options: options,
		})
	}
	return play, nil
}

// GradeAnswers scores a completed run locally: one point per answer
// matching the stored correct index. Questions are matched by id.
func (s *QuizService) GradeAnswers(quizSetID uint, answers map[uint]int) (int, error) {
	var questions []models.Question
	err := s.db.Where("quiz_set_id = ?", quizSetID).Find(&questions).Error
	if err != nil {
		return 0, err
	}

	score := 0
	for _, q := range questions {
		if picked, ok := answers[q.ID]; ok && picked == q.CorrectIndex {
			score++
		}
	}
	return score, nil
}
