package service

import (
	"errors"
	"time"

	"github.com/lshigami/Kadabra/config"
	"github.com/lshigami/Kadabra/internal/model"
	"github.com/lshigami/Kadabra/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SessionService owns session lifecycle: the app is single-user, so "the
// session" is always the most recently created one, and starting fresh wipes
// everything that came before.
type SessionService interface {
	// StartFresh deletes all sessions and creates a new one.
	StartFresh(targetRole, experienceLevel string) (*model.Session, error)
	// EnsureSession returns the active session, creating one if none exists.
	// Reusing an existing session slides its TTL window.
	EnsureSession() (*model.Session, error)
	DeleteAll() (int64, error)
	TTL() time.Duration
}

type sessionService struct {
	repo repository.SessionRepository
	ttl  time.Duration
}

func NewSessionService(repo repository.SessionRepository, cfg *config.Config) SessionService {
	return &sessionService{
		repo: repo,
		ttl:  time.Duration(cfg.SessionTTLMinutes) * time.Minute,
	}
}

func (s *sessionService) TTL() time.Duration {
	return s.ttl
}

func (s *sessionService) StartFresh(targetRole, experienceLevel string) (*model.Session, error) {
	deleted, err := s.repo.DeleteAll()
	if err != nil {
		return nil, err
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Msg("Cleared previous sessions before starting fresh")
	}

	session := model.NewSession(targetRole, experienceLevel, s.ttl)
	if err := s.repo.Create(session); err != nil {
		log.Error().Err(err).Msg("Failed to create session")
		return nil, err
	}
	log.Info().Str("sessionID", session.ID).Msg("Created new session")
	return session, nil
}

func (s *sessionService) EnsureSession() (*model.Session, error) {
	session, err := s.repo.FindMostRecent()
	if err == nil {
		session.Touch(s.ttl)
		if touchErr := s.repo.Touch(session.ID, s.ttl); touchErr != nil {
			log.Warn().Err(touchErr).Str("sessionID", session.ID).Msg("Failed to touch session TTL")
		}
		return session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session = model.NewSession("", "", s.ttl)
	if err := s.repo.Create(session); err != nil {
		return nil, err
	}
	log.Info().Str("sessionID", session.ID).Msg("No session found, created a fresh one")
	return session, nil
}

func (s *sessionService) DeleteAll() (int64, error) {
	deleted, err := s.repo.DeleteAll()
	if err != nil {
		log.Error().Err(err).Msg("Failed to delete sessions")
		return 0, err
	}
	log.Info().Int64("deleted", deleted).Msg("Deleted all sessions")
	return deleted, nil
}
