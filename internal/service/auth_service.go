package service

import (
	"context"
	"errors"
	"time"

	"sheetpos/internal/dto"
	"sheetpos/internal/model"
	"sheetpos/internal/repository"
	"sheetpos/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, sess *session.Session) error
	Current(ctx context.Context, sessionID string) (*session.Session, error)
}

type authService struct {
	users    repository.UserRepository
	sessions session.Store
	audit    AuditWriter
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthService(users repository.UserRepository, sessions session.Store, audit AuditWriter, secret string, ttl time.Duration) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		audit:    audit,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	sess := session.Session{
		ID:          uuid.NewString(),
		Username:    user.Username,
		Role:        user.Role,
		DisplayName: user.DisplayName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	token, err := s.generateToken(sess)
	if err != nil {
		return nil, err
	}

	s.record(ctx, model.AuditRecord{User: user.Username, Action: model.ActionLogin, Reason: "Signed in"})

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.ttl.Seconds()),
		Session:     dto.NewSessionResponse(sess),
	}, nil
}

func (s *authService) Logout(ctx context.Context, sess *session.Session) error {
	if err := s.sessions.Clear(ctx, sess.ID); err != nil {
		return err
	}
	s.record(ctx, model.AuditRecord{User: sess.Username, Action: model.ActionLogout, Reason: "Signed out"})
	return nil
}

func (s *authService) Current(ctx context.Context, sessionID string) (*session.Session, error) {
	return s.sessions.Load(ctx, sessionID)
}

func (s *authService) generateToken(sess session.Session) (string, error) {
	claims := jwt.MapClaims{
		"sid":      sess.ID,
		"sub":      sess.Username,
		"username": sess.Username,
		"role":     sess.Role,
		"exp":      sess.ExpiresAt.Unix(),
		"iat":      sess.CreatedAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *authService) record(ctx context.Context, rec model.AuditRecord) {
	if s.audit == nil {
		return
	}
	rec.Timestamp = s.now().UTC().Format(time.RFC3339)
	if err := s.audit.Record(ctx, rec); err != nil {
		log.Warn().Err(err).Str("action", rec.Action).Str("user", rec.User).Msg("audit entry not recorded")
	}
}
