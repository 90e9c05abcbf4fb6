package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/coachbase/backend/internal/domain"
	"github.com/coachbase/backend/internal/response"
)

func HandleDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		return response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, err.Error())
	default:
		return response.InternalError(c)
	}
}

func HandleNotFoundOrInternal(c *fiber.Ctx, err error, notFoundMsg string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return response.NotFound(c, notFoundMsg)
	}
	return response.InternalError(c)
}

func parsePagination(c *fiber.Ctx) (page, perPage int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage = c.QueryInt("perPage", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}
