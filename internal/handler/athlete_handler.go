package handler

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/coachbase/backend/internal/domain"
	"github.com/coachbase/backend/internal/response"
)

type AthleteHandler struct {
	athletes domain.AthleteRepository
	logger   *slog.Logger
}

func NewAthleteHandler(athletes domain.AthleteRepository, logger *slog.Logger) *AthleteHandler {
	return &AthleteHandler{athletes: athletes, logger: logger}
}

// RegisterCoach mounts the athlete routes on an authenticated router,
// gating each route on coach capability.
func (h *AthleteHandler) RegisterCoach(api fiber.Router, coachOnly fiber.Handler) {
	api.Get("/athletes", coachOnly, h.List)
	api.Post("/athletes", coachOnly, h.Create)
	api.Get("/athletes/:id", coachOnly, h.Get)
	api.Put("/athletes/:id", coachOnly, h.Update)
	api.Delete("/athletes/:id", coachOnly, h.Delete)
}

type athleteRequest struct {
	Name      string     `json:"name"`
	BirthDate *time.Time `json:"birthDate"`
	Notes     string     `json:"notes"`
}

type athleteUpdateRequest struct {
	Name      *string    `json:"name"`
	BirthDate *time.Time `json:"birthDate"`
	Notes     *string    `json:"notes"`
}

type AthleteResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func toAthleteResponse(a *domain.Athlete) AthleteResponse {
	return AthleteResponse{
		ID:        a.ID,
		Name:      a.Name,
		BirthDate: a.BirthDate,
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (h *AthleteHandler) List(c *fiber.Ctx) error {
	coach, ok := GetCoachFromContext(c)
	if !ok {
		return response.Forbidden(c, "coach privileges required")
	}

	page, perPage := parsePagination(c)

	athletes, total, err := h.athletes.FindByCoachID(c.Context(), coach.User.ID, perPage, (page-1)*perPage)
	if err != nil {
		h.logger.Error("failed to list athletes", "error", err)
		return response.InternalError(c)
	}

	responses := make([]AthleteResponse, len(athletes))
	for i := range athletes {
		responses[i] = toAthleteResponse(&athletes[i])
	}

	return response.OKWithPagination(c, responses, page, perPage, total)
}

func (h *AthleteHandler) Create(c *fiber.Ctx) error {
	coach, ok := GetCoachFromContext(c)
	if !ok {
		return response.Forbidden(c, "coach privileges required")
	}

	var req athleteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, MsgInvalidRequestBody)
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return response.BadRequest(c, "name is required")
	}

	athlete, err := h.athletes.Create(c.Context(), domain.CreateAthleteInput{
		CoachID:   coach.User.ID,
		Name:      req.Name,
		BirthDate: req.BirthDate,
		Notes:     req.Notes,
	})
	if err != nil {
		h.logger.Error("failed to create athlete", "error", err)
		return response.InternalError(c)
	}

	return response.Created(c, toAthleteResponse(athlete))
}

func (h *AthleteHandler) Get(c *fiber.Ctx) error {
	athlete, err := h.ownedAthlete(c)
	if err != nil {
		return HandleDomainError(c, err)
	}
	return response.OK(c, toAthleteResponse(athlete))
}

func (h *AthleteHandler) Update(c *fiber.Ctx) error {
	athlete, err := h.ownedAthlete(c)
	if err != nil {
		return HandleDomainError(c, err)
	}

	var req athleteUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, MsgInvalidRequestBody)
	}

	updated, err := h.athletes.Update(c.Context(), athlete.ID, domain.UpdateAthleteInput{
		Name:      req.Name,
		BirthDate: req.BirthDate,
		Notes:     req.Notes,
	})
	if err != nil {
		return HandleNotFoundOrInternal(c, err, MsgAthleteNotFound)
	}

	return response.OK(c, toAthleteResponse(updated))
}

func (h *AthleteHandler) Delete(c *fiber.Ctx) error {
	athlete, err := h.ownedAthlete(c)
	if err != nil {
		return HandleDomainError(c, err)
	}

	if err := h.athletes.Delete(c.Context(), athlete.ID); err != nil {
		return HandleNotFoundOrInternal(c, err, MsgAthleteNotFound)
	}

	return response.NoContent(c)
}

// ownedAthlete loads the :id athlete and checks the requesting coach owns
// it. A foreign athlete reads as not found so IDs do not leak.
func (h *AthleteHandler) ownedAthlete(c *fiber.Ctx) (*domain.Athlete, error) {
	coach, ok := GetCoachFromContext(c)
	if !ok {
		return nil, domain.ErrForbidden
	}

	athlete, err := h.athletes.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return nil, err
	}
	if athlete.CoachID != coach.User.ID {
		return nil, domain.ErrNotFound
	}

	return athlete, nil
}
