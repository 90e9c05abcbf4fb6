package handler

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/coachbase/backend/internal/domain"
	"github.com/coachbase/backend/internal/response"
)

type WorkoutHandler struct {
	workouts domain.WorkoutRepository
	athletes domain.AthleteRepository
	logger   *slog.Logger
}

func NewWorkoutHandler(workouts domain.WorkoutRepository, athletes domain.AthleteRepository, logger *slog.Logger) *WorkoutHandler {
	return &WorkoutHandler{workouts: workouts, athletes: athletes, logger: logger}
}

// RegisterCoach mounts the workout routes on an authenticated router,
// gating each route on coach capability.
func (h *WorkoutHandler) RegisterCoach(api fiber.Router, coachOnly fiber.Handler) {
	api.Get("/workouts", coachOnly, h.List)
	api.Post("/workouts", coachOnly, h.Create)
	api.Get("/athletes/:id/workouts", coachOnly, h.ListForAthlete)
	api.Delete("/workouts/:id", coachOnly, h.Delete)
}

type workoutRequest struct {
	AthleteID   string    `json:"athleteId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

type WorkoutResponse struct {
	ID          string    `json:"id"`
	AthleteID   string    `json:"athleteId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ScheduledAt time.Time `json:"scheduledAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toWorkoutResponse(w *domain.Workout) WorkoutResponse {
	return WorkoutResponse{
		ID:          w.ID,
		AthleteID:   w.AthleteID,
		Title:       w.Title,
		Description: w.Description,
		ScheduledAt: w.ScheduledAt,
		CreatedAt:   w.CreatedAt,
	}
}

func (h *WorkoutHandler) List(c *fiber.Ctx) error {
	coach, ok := GetCoachFromContext(c)
	if !ok {
		return response.Forbidden(c, "coach privileges required")
	}

	page, perPage := parsePagination(c)

	workouts, total, err := h.workouts.FindByCoachID(c.Context(), coach.User.ID, perPage, (page-1)*perPage)
	if err != nil {
		h.logger.Error("failed to list workouts", "error", err)
		return response.InternalError(c)
	}

	return response.OKWithPagination(c, toWorkoutResponses(workouts), page, perPage, total)
}

func (h *WorkoutHandler) ListForAthlete(c *fiber.Ctx) error {
	coach, ok := GetCoachFromContext(c)
	if !ok {
		return response.Forbidden(c, "coach privileges required")
	}

	athlete, err := h.athletes.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return HandleNotFoundOrInternal(c, err, MsgAthleteNotFound)
	}
	if athlete.CoachID != coach.User.ID {
		return response.NotFound(c, MsgAthleteNotFound)
	}

	page, perPage := parsePagination(c)

	workouts, total, err := h.workouts.FindByAthleteID(c.Context(), athlete.ID, perPage, (page-1)*perPage)
	if err != nil {
		h.logger.Error("failed to list athlete workouts", "error", err)
		return response.InternalError(c)
	}

	return response.OKWithPagination(c, toWorkoutResponses(workouts), page, perPage, total)
}

func (h *WorkoutHandler) Create(c *fiber.Ctx) error {
	coach, ok := GetCoachFromContext(c)
	if !ok {
		return response.Forbidden(c, "coach privileges required")
	}

	var req workoutRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, MsgInvalidRequestBody)
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return response.BadRequest(c, "title is required")
	}
	if req.ScheduledAt.IsZero() {
		return response.BadRequest(c, "scheduledAt is required")
	}

	athlete, err := h.athletes.FindByID(c.Context(), req.AthleteID)
	if err != nil {
		return HandleNotFoundOrInternal(c, err, MsgAthleteNotFound)
	}
	if athlete.CoachID != coach.User.ID {
		return response.NotFound(c, MsgAthleteNotFound)
	}

	workout, err := h.workouts.Create(c.Context(), domain.CreateWorkoutInput{
		AthleteID:   athlete.ID,
		CoachID:     coach.User.ID,
		Title:       req.Title,
		Description: req.Description,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		h.logger.Error("failed to create workout", "error", err)
		return response.InternalError(c)
	}

	return response.Created(c, toWorkoutResponse(workout))
}

func (h *WorkoutHandler) Delete(c *fiber.Ctx) error {
	coach, ok := GetCoachFromContext(c)
	if !ok {
		return response.Forbidden(c, "coach privileges required")
	}

	workout, err := h.workouts.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return HandleNotFoundOrInternal(c, err, MsgWorkoutNotFound)
	}
	if workout.CoachID != coach.User.ID {
		return response.NotFound(c, MsgWorkoutNotFound)
	}

	if err := h.workouts.Delete(c.Context(), workout.ID); err != nil {
		return HandleNotFoundOrInternal(c, err, MsgWorkoutNotFound)
	}

	return response.NoContent(c)
}

func toWorkoutResponses(workouts []domain.Workout) []WorkoutResponse {
	responses := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		responses[i] = toWorkoutResponse(&workouts[i])
	}
	return responses
}
