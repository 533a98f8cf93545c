package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"tagflow/internal/auth"
	"tagflow/internal/config"
	"tagflow/internal/logging"
	"tagflow/internal/services"
	"tagflow/internal/store"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6
)

// Service implements account operations over the store.
type Service struct {
	store  *store.Store
	tokens *auth.TokenIssuer
	cfg    config.Auth
	logger *slog.Logger
}

// NewService constructs the account service. cfg must be validated.
func NewService(cfg *config.Config, st *store.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  st,
		tokens: auth.NewTokenIssuer(cfg.Auth.SecretKey, cfg.TokenTTL()),
		cfg:    cfg.Auth,
		logger: logging.NewComponentLogger(logger, "accounts"),
	}
}

// Registration is a new account request.
type Registration struct {
	Username string
	Password string
	Role     string
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *store.User
}

func (r *Registration) normalize() (auth.Role, error) {
	r.Username = strings.TrimSpace(r.Username)
	n := utf8.RuneCountInString(r.Username)
	if n < minUsernameLen || n > maxUsernameLen {
		return "", &services.ValidationError{Entity: "user", Field: "username",
			Msg: fmt.Sprintf("username must be %d-%d characters", minUsernameLen, maxUsernameLen)}
	}
	if strings.ContainsAny(r.Username, " \t\r\n") {
		return "", &services.ValidationError{Entity: "user", Field: "username", Msg: "username must not contain whitespace"}
	}
	if utf8.RuneCountInString(r.Password) < minPasswordLen {
		return "", &services.ValidationError{Entity: "user", Field: "password",
			Msg: fmt.Sprintf("password must be at least %d characters", minPasswordLen)}
	}
	return auth.ParseRole(r.Role)
}

// Register creates an account. Without open registration only admins may
// register users; with it, anyone may register a non-admin account.
func (s *Service) Register(ctx context.Context, caller auth.Identity, reg Registration) (*store.User, error) {
	role, err := reg.normalize()
	if err != nil {
		return nil, err
	}
	if !s.cfg.OpenRegistration || role == auth.RoleAdmin {
		if err := caller.Require(auth.CapAdmin, "register "+string(role)); err != nil {
			return nil, err
		}
	}
	return s.create(ctx, reg.Username, reg.Password, role)
}

func (s *Service) create(ctx context.Context, username, password string, role auth.Role) (*store.User, error) {
	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	user, err := s.store.CreateUser(ctx, username, hash, string(role))
	if errors.Is(err, store.ErrDuplicate) {
		return nil, &services.ConflictError{Entity: "user", Msg: fmt.Sprintf("username %q is taken", username)}
	}
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}
	s.logger.Info("user registered",
		logging.Int64(logging.FieldUserID, user.ID),
		logging.String("username", user.Username),
		logging.String("role", user.Role),
		logging.Event("user_registered"),
	)
	return user, nil
}

// Login verifies credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if user == nil {
		return nil, &services.UnauthorizedError{Msg: "invalid username or password"}
	}
	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		s.logger.Warn("login rejected",
			logging.String("username", user.Username),
			logging.Event("login_rejected"),
		)
		return nil, &services.UnauthorizedError{Msg: "invalid username or password"}
	}
	token, expires, err := s.tokens.Issue(auth.Identity{UserID: user.ID, Role: auth.Role(user.Role)})
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// Resolve verifies a bearer token and returns the caller's current identity.
// The role comes from the stored account, not the token.
func (s *Service) Resolve(ctx context.Context, token string) (auth.Identity, *store.User, error) {
	claimed, err := s.tokens.Verify(token)
	if err != nil {
		return auth.Identity{}, nil, err
	}
	user, err := s.store.GetUser(ctx, claimed.UserID)
	if err != nil {
		return auth.Identity{}, nil, fmt.Errorf("resolve token: %w", err)
	}
	if user == nil {
		return auth.Identity{}, nil, &services.UnauthorizedError{Msg: "account no longer exists"}
	}
	return IdentityOf(user), user, nil
}

// IdentityOf converts a stored user to the identity passed to engine calls.
func IdentityOf(user *store.User) auth.Identity {
	if user == nil {
		return auth.Identity{}
	}
	return auth.Identity{UserID: user.ID, Role: auth.Role(user.Role)}
}

// Lookup resolves a username to its identity.
func (s *Service) Lookup(ctx context.Context, username string) (auth.Identity, *store.User, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return auth.Identity{}, nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return auth.Identity{}, nil, &services.NotFoundError{Entity: "user", Key: username}
	}
	return IdentityOf(user), user, nil
}

// User returns the account with the given id.
func (s *Service) User(ctx context.Context, id int64) (*store.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, &services.NotFoundError{Entity: "user", ID: id}
	}
	return user, nil
}

// List returns users matching filter ordered by username. Admin only.
func (s *Service) List(ctx context.Context, caller auth.Identity, filter store.UserFilter) ([]*store.User, error) {
	if err := caller.Require(auth.CapAdmin, "list users"); err != nil {
		return nil, err
	}
	if filter.Role != "" {
		role, err := auth.ParseRole(filter.Role)
		if err != nil {
			return nil, err
		}
		filter.Role = string(role)
	}
	users, err := s.store.ListUsers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// EnsureBootstrapAdmin creates the configured bootstrap admin when no admin
// exists and a bootstrap password is set. It reports whether it created one.
func (s *Service) EnsureBootstrapAdmin(ctx context.Context) (bool, error) {
	if s.cfg.BootstrapAdmin == "" || s.cfg.BootstrapPassword == "" {
		return false, nil
	}
	admins, err := s.store.CountUsersWithRole(ctx, string(auth.RoleAdmin))
	if err != nil {
		return false, err
	}
	if admins > 0 {
		return false, nil
	}
	reg := Registration{Username: s.cfg.BootstrapAdmin, Password: s.cfg.BootstrapPassword, Role: string(auth.RoleAdmin)}
	if _, err := reg.normalize(); err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	if _, err := s.create(ctx, reg.Username, reg.Password, auth.RoleAdmin); err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	return true, nil
}
