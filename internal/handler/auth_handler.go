package handler

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/coachbase/backend/internal/domain"
	"github.com/coachbase/backend/internal/password"
	"github.com/coachbase/backend/internal/response"
	"github.com/coachbase/backend/internal/session"
)

type AuthHandler struct {
	users             domain.UserRepository
	sessions          *session.Manager
	logger            *slog.Logger
	bcryptCost        int
	sessionCookieName string
	cookieMaxAge      time.Duration
	secureCookie      bool
	cookieDomain      string
}

type AuthHandlerConfig struct {
	Users             domain.UserRepository
	Sessions          *session.Manager
	Logger            *slog.Logger
	BcryptCost        int
	SessionCookieName string
	CookieMaxAge      time.Duration
	SecureCookie      bool
	CookieDomain      string
}

func NewAuthHandler(cfg AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		users:             cfg.Users,
		sessions:          cfg.Sessions,
		logger:            cfg.Logger,
		bcryptCost:        cfg.BcryptCost,
		sessionCookieName: cfg.SessionCookieName,
		cookieMaxAge:      cfg.CookieMaxAge,
		secureCookie:      cfg.SecureCookie,
		cookieDomain:      cfg.CookieDomain,
	}
}

// Register mounts the public credential endpoints on the /auth group.
func (h *AuthHandler) Register(auth fiber.Router) {
	auth.Post("/register", h.RegisterUser)
	auth.Post("/login", h.Login)
	auth.Post("/logout", h.Logout)
}

// RegisterProtected mounts the endpoints that require a live session on an
// already-authenticated router.
func (h *AuthHandler) RegisterProtected(api fiber.Router) {
	api.Get("/auth/me", h.GetCurrentUser)
	api.Post("/auth/password", h.ChangePassword)
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsCoach  bool   `json:"isCoach"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	IsCoach   bool      `json:"isCoach"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		IsCoach:   u.IsCoach,
		CreatedAt: u.CreatedAt,
	}
}

func (h *AuthHandler) RegisterUser(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, MsgInvalidRequestBody)
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return response.BadRequest(c, MsgUsernameRequired)
	}

	if violations := password.Violations(password.ValidateComplexity(req.Password)); len(violations) > 0 {
		return response.PasswordPolicyViolation(c, violations)
	}

	taken, err := h.users.UsernameExists(c.Context(), req.Username)
	if err != nil {
		h.logger.Error("username lookup failed", "error", err)
		return response.InternalError(c)
	}
	if taken {
		return response.Conflict(c, MsgUsernameTaken)
	}

	hash, err := password.Hash(req.Password, h.bcryptCost)
	if err != nil {
		h.logger.Error("password hashing failed", "error", err)
		return response.InternalError(c)
	}

	user, err := h.users.Create(c.Context(), domain.CreateUserInput{
		Username:     req.Username,
		PasswordHash: hash,
		IsCoach:      req.IsCoach,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return response.Conflict(c, MsgUsernameTaken)
	}
	if err != nil {
		h.logger.Error("user creation failed", "error", err)
		return response.InternalError(c)
	}

	h.logger.Info("user registered", "user_id", user.ID, "is_coach", user.IsCoach)

	rawToken, err := h.sessions.Create(c.Context(), user.ID)
	if err != nil {
		h.logger.Error("session creation failed", "error", err, "user_id", user.ID)
		return response.InternalError(c)
	}

	h.setSessionCookie(c, rawToken)

	return response.Created(c, sessionResponse{Token: rawToken, User: toUserResponse(user)})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, MsgInvalidRequestBody)
	}

	// Unknown username and wrong password produce the identical response,
	// so login cannot be used to enumerate usernames.
	user, err := h.users.FindByUsername(c.Context(), strings.TrimSpace(req.Username))
	if errors.Is(err, domain.ErrNotFound) {
		return response.InvalidCredentials(c)
	}
	if err != nil {
		h.logger.Error("user lookup failed", "error", err)
		return response.InternalError(c)
	}

	if err := password.Verify(user.PasswordHash, req.Password); err != nil {
		return response.InvalidCredentials(c)
	}

	rawToken, err := h.sessions.Create(c.Context(), user.ID)
	if err != nil {
		h.logger.Error("session creation failed", "error", err, "user_id", user.ID)
		return response.InternalError(c)
	}

	h.logger.Info("user logged in", "user_id", user.ID)

	h.setSessionCookie(c, rawToken)

	return response.OK(c, sessionResponse{Token: rawToken, User: toUserResponse(user)})
}

// Logout revokes whatever session the request presents. It deliberately
// does not require authentication: revoking an absent or already-dead
// session is not an error.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if rawToken := CandidateToken(c, h.sessionCookieName); rawToken != "" {
		if err := h.sessions.Revoke(c.Context(), rawToken); err != nil {
			h.logger.Error("session revocation failed", "error", err)
			return response.InternalError(c)
		}
	}

	ClearCookie(c, h.sessionCookieName, h.secureCookie, h.cookieDomain)

	return response.OK(c, map[string]string{"message": MsgLoggedOut})
}

func (h *AuthHandler) GetCurrentUser(c *fiber.Ctx) error {
	principal := GetPrincipalFromContext(c)
	if principal == nil {
		return response.Unauthorized(c, MsgNotAuthenticated)
	}

	return response.OK(c, toUserResponse(principal.User))
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal := GetPrincipalFromContext(c)
	if principal == nil {
		return response.Unauthorized(c, MsgNotAuthenticated)
	}

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, MsgInvalidRequestBody)
	}

	if err := password.Verify(principal.User.PasswordHash, req.CurrentPassword); err != nil {
		return response.InvalidCredentials(c)
	}

	if violations := password.Violations(password.ValidateComplexity(req.NewPassword)); len(violations) > 0 {
		return response.PasswordPolicyViolation(c, violations)
	}

	hash, err := password.Hash(req.NewPassword, h.bcryptCost)
	if err != nil {
		h.logger.Error("password hashing failed", "error", err)
		return response.InternalError(c)
	}

	user, err := h.users.SetPassword(c.Context(), principal.User.ID, hash)
	if err != nil {
		h.logger.Error("password update failed", "error", err, "user_id", principal.User.ID)
		return response.InternalError(c)
	}

	// Other devices keep sessions issued against the old password; kill
	// them. The current session stays alive.
	if err := h.sessions.RevokeOthers(c.Context(), principal); err != nil {
		h.logger.Error("failed to revoke other sessions", "error", err, "user_id", user.ID)
		return response.InternalError(c)
	}

	h.logger.Info("password changed", "user_id", user.ID)

	return response.OK(c, toUserResponse(user))
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, rawToken string) {
	SetCookie(c, h.sessionCookieName, rawToken, int(h.cookieMaxAge.Seconds()), h.secureCookie, h.cookieDomain)
}
