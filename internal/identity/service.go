package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/agricontract-backend/internal/storage"
	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	"github.com/angelmondragon/agricontract-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/agricontract-backend/pkg/errors"
	"github.com/angelmondragon/agricontract-backend/pkg/events"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
	"github.com/angelmondragon/agricontract-backend/pkg/metrics"
	"github.com/angelmondragon/agricontract-backend/pkg/security"
	"github.com/angelmondragon/agricontract-backend/pkg/validation"
)

const invalidCredentialsMessage = "invalid email or password"

type store interface {
	Users(ctx context.Context) (map[string]models.User, error)
	CurrentSession(ctx context.Context) (*models.Session, error)
	Commit(ctx context.Context, cs *storage.ChangeSet) error
}

// Service owns users and the current session of one store namespace.
type Service struct {
	mu        sync.Mutex
	store     store
	hasher    security.Hasher
	publisher events.Publisher
	metrics   *metrics.CommandMetrics
	logg      *logger.Logger
	now       func() time.Time
	newID     func(time.Time) string
}

// ServiceParams bundles the dependencies required to build an identity service.
type ServiceParams struct {
	Store     store
	Hasher    security.Hasher
	Publisher events.Publisher
	Metrics   *metrics.CommandMetrics
	Logger    *logger.Logger
	Clock     func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		store:     params.Store,
		hasher:    params.Hasher,
		publisher: params.Publisher,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       clock,
		newID:     newUserID,
	}, nil
}

// Register creates a user. It does not start a session.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (user *models.User, err error) {
	defer s.observe(ctx, "register", s.now())(&err)

	req = req.normalized()
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	role, err := enums.ParseRole(req.Role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	if _, taken := findByEmail(users, req.Email); taken {
		return nil, pkgerrors.New(pkgerrors.CodeDuplicateEmail, "an account with this email already exists")
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	now := s.now().UTC()
	created := models.User{
		ID:             s.newID(now),
		Name:           req.Name,
		Email:          req.Email,
		PasswordDigest: digest,
		Role:           role,
		CreatedAt:      now,
	}
	for {
		if _, clash := users[created.ID]; !clash {
			break
		}
		created.ID = s.newID(now)
	}

	next := make(map[string]models.User, len(users)+1)
	for id, u := range users {
		next[id] = u
	}
	next[created.ID] = created

	if err := s.store.Commit(ctx, storage.NewChangeSet().PutUsers(next)); err != nil {
		return nil, err
	}

	s.publish(ctx, events.DomainEvent{
		Type:          enums.EventUserRegistered,
		AggregateType: enums.AggregateUser,
		AggregateID:   created.ID,
		Actor:         &events.ActorRef{UserID: created.ID, Role: created.Role},
		Data: events.UserRegisteredPayload{
			UserID: created.ID,
			Name:   created.Name,
			Email:  created.Email,
			Role:   created.Role,
		},
	})
	return &created, nil
}

// Login verifies credentials and stores the resulting session as current.
func (s *Service) Login(ctx context.Context, req LoginRequest) (sess *models.Session, err error) {
	defer s.observe(ctx, "login", s.now())(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.verify(ctx, req)
	if err != nil {
		return nil, err
	}
	session := user.Session()
	if err := s.store.Commit(ctx, storage.NewChangeSet().PutSession(session)); err != nil {
		return nil, err
	}

	s.publish(ctx, events.DomainEvent{
		Type:          enums.EventSessionStarted,
		AggregateType: enums.AggregateSession,
		AggregateID:   session.ID,
		Actor:         &events.ActorRef{UserID: session.ID, Role: session.Role},
		Data:          events.SessionPayload{Session: session},
	})
	return &session, nil
}

// Authenticate verifies credentials without touching the current session.
func (s *Service) Authenticate(ctx context.Context, req LoginRequest) (sess *models.Session, err error) {
	defer s.observe(ctx, "authenticate", s.now())(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.verify(ctx, req)
	if err != nil {
		return nil, err
	}
	session := user.Session()
	return &session, nil
}

// Logout clears the current session. Calling it with no session is a no-op.
func (s *Service) Logout(ctx context.Context) (err error) {
	defer s.observe(ctx, "logout", s.now())(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.CurrentSession(ctx)
	if err != nil {
		return err
	}
	if err := s.store.Commit(ctx, storage.NewChangeSet().ClearSession()); err != nil {
		return err
	}
	if current != nil {
		s.publish(ctx, events.DomainEvent{
			Type:          enums.EventSessionEnded,
			AggregateType: enums.AggregateSession,
			AggregateID:   current.ID,
			Actor:         &events.ActorRef{UserID: current.ID, Role: current.Role},
			Data:          events.SessionPayload{Session: *current},
		})
	}
	return nil
}

// CurrentSession returns nil when nobody is logged in.
func (s *Service) CurrentSession(ctx context.Context) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.CurrentSession(ctx)
}

// RequireRole returns the current session when it exists and, if role is
// non-empty, carries that role.
func (s *Service) RequireRole(ctx context.Context, role enums.Role) (*models.Session, error) {
	sess, err := s.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	return CheckRole(sess, role)
}

// CheckRole applies the RequireRole rule to an already resolved session.
func CheckRole(sess *models.Session, role enums.Role) (*models.Session, error) {
	if sess == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}
	if role != "" && sess.Role != role {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, fmt.Sprintf("%s access required", role.DisplayName()))
	}
	return sess, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	user, ok := users[strings.TrimSpace(id)]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return &user, nil
}

func (s *Service) verify(ctx context.Context, req LoginRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}
	users, err := s.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	user, ok := findByEmail(users, email)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}
	match, err := s.hasher.Verify(req.Password, user.PasswordDigest)
	if err != nil || !match {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}
	return &user, nil
}

func findByEmail(users map[string]models.User, email string) (models.User, bool) {
	for _, u := range users {
		if normalizeEmail(u.Email) == email {
			return u, true
		}
	}
	return models.User{}, false
}

func (s *Service) publish(ctx context.Context, event events.DomainEvent) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, event)
}

func (s *Service) observe(ctx context.Context, command string, started time.Time) func(*error) {
	return func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		s.metrics.Observe(command, s.now().Sub(started), err)
		if err != nil && s.logg != nil {
			if typed := pkgerrors.As(err); typed == nil || typed.Code() == pkgerrors.CodeInternal || typed.Code() == pkgerrors.CodeDependency {
				s.logg.Error(s.logg.WithField(ctx, "command", command), "identity command failed", err)
			}
		}
	}
}
