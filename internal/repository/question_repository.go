package repository

import (
	"github.com/lshigami/Kadabra/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	Create(question *model.Question) error
	FindByID(id string) (*model.Question, error)
	FindAll(topic *model.Topic) ([]model.Question, error)
	// SampleRandom picks one question uniformly at random from the bank.
	// Returns gorm.ErrRecordNotFound when the bank is empty.
	SampleRandom() (*model.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(question *model.Question) error {
	return r.db.Create(question).Error
}

func (r *questionRepository) FindByID(id string) (*model.Question, error) {
	var question model.Question
	if err := r.db.First(&question, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindAll(topic *model.Topic) ([]model.Question, error) {
	var questions []model.Question
	query := r.db.Order("created_at desc")
	if topic != nil {
		query = query.Where("topic = ?", *topic)
	}
	if err := query.Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) SampleRandom() (*model.Question, error) {
	var question model.Question
	if err := r.db.Order("RANDOM()").First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}
