package authentication

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/collegeos/internal/sessions"
	"github.com/collegeos/internal/students"
)

const SessionTTL = 30 * 24 * time.Hour

var ErrUnauthenticated = errors.New("unauthenticated")

type Service struct {
	logger        *slog.Logger
	verifier      IdentityVerifier
	parser        *students.Parser
	studentsStore *students.Store
	sessionsStore *sessions.Store
}

func NewService(
	logger *slog.Logger,
	verifier IdentityVerifier,
	parser *students.Parser,
	studentsStore *students.Store,
	sessionsStore *sessions.Store,
) *Service {
	return &Service{
		logger:        logger,
		verifier:      verifier,
		parser:        parser,
		studentsStore: studentsStore,
		sessionsStore: sessionsStore,
	}
}

// Login verifies the identity token, derives the enrollment from the email,
// stores the profile and opens a session.
func (s *Service) Login(ctx context.Context, idToken string) (*sessions.Session, *students.Student, error) {
	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, nil, fmt.Errorf("verify: %w", err)
	}

	enrollment, err := s.parser.Parse(identity.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("parse enrollment: %w", err)
	}

	student := &students.Student{
		ID:         identity.Subject,
		Name:       identity.Name,
		Email:      identity.Email,
		Enrollment: *enrollment,
		LastLogin:  time.Now(),
	}
	if err := s.studentsStore.Upsert(ctx, student); err != nil {
		return nil, nil, fmt.Errorf("upsert student: %w", err)
	}

	session := sessions.New(student.ID, SessionTTL)
	if err := s.sessionsStore.Insert(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("insert session: %w", err)
	}

	s.logger.InfoContext(ctx, "student logged in",
		"student_id", student.ID,
		"enrollment", enrollment.Number,
		"section", enrollment.Section)
	return session, student, nil
}

func (s *Service) Logout(ctx context.Context, id sessions.ID) error {
	if err := s.sessionsStore.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// AuthenticateContext resolves the session into the student profile and
// returns a context carrying both.
func (s *Service) AuthenticateContext(ctx context.Context, id sessions.ID) (context.Context, error) {
	session, err := s.sessionsStore.FindByID(ctx, id)
	if errors.Is(err, sessions.ErrNotFound) {
		return ctx, ErrUnauthenticated
	} else if err != nil {
		return ctx, fmt.Errorf("find session %q: %w", id, err)
	}

	student, err := s.studentsStore.FindByID(ctx, session.StudentID)
	if errors.Is(err, students.ErrNotFound) {
		return ctx, ErrUnauthenticated
	} else if err != nil {
		return ctx, fmt.Errorf("find student %q: %w", session.StudentID, err)
	}

	ctx = sessions.NewContext(ctx, session)
	return students.NewContext(ctx, student), nil
}
