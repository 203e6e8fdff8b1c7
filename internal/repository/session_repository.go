package repository

import (
	"time"

	"github.com/lshigami/Kadabra/internal/model"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(session *model.Session) error
	// FindMostRecent returns the most recently created session, the single
	// active conversation by design. Returns gorm.ErrRecordNotFound when no
	// session exists.
	FindMostRecent() (*model.Session, error)
	FindByID(id string) (*model.Session, error)
	// Save replaces the whole session document.
	Save(session *model.Session) error
	Touch(id string, ttl time.Duration) error
	DeleteAll() (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *model.Session) error {
	return r.db.Create(session).Error
}

func (r *sessionRepository) FindMostRecent() (*model.Session, error) {
	var session model.Session
	if err := r.db.Order("created_at desc").First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) FindByID(id string) (*model.Session, error) {
	var session model.Session
	if err := r.db.First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Save(session *model.Session) error {
	return r.db.Save(session).Error
}

func (r *sessionRepository) Touch(id string, ttl time.Duration) error {
	now := time.Now().UTC()
	return r.db.Model(&model.Session{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_activity_at": now,
		"ttl_expires_at":   now.Add(ttl),
	}).Error
}

func (r *sessionRepository) DeleteAll() (int64, error) {
	res := r.db.Where("1 = 1").Delete(&model.Session{})
	return res.RowsAffected, res.Error
}
