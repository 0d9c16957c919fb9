package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/resto-backoffice/backend/internal/auth"
	"example.com/resto-backoffice/backend/internal/models"
	"example.com/resto-backoffice/backend/internal/repository"
)

type StaffHandler struct {
	Staff *repository.StaffRepository
}

// NewStaffHandler создает обработчик персонала и прав доступа.
func NewStaffHandler(staff *repository.StaffRepository) *StaffHandler {
	return &StaffHandler{Staff: staff}
}

type CreateStaffRequest struct {
	UserID       string          `json:"user_id" validate:"required,uuid"`
	Role         string          `json:"role" validate:"required,max=100"`
	ModuleAccess map[string]bool `json:"module_access"`
}

type UpdateStaffRequest struct {
	Role         string          `json:"role" validate:"required,max=100"`
	IsActive     *bool           `json:"is_active" validate:"required"`
	ModuleAccess map[string]bool `json:"module_access"`
}

// Create добавляет сотрудника с правами по модулям. Неизвестные модули во
// входе отклоняются.
func (h *StaffHandler) Create(c echo.Context) error {
	var req CreateStaffRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	access, unknown := models.NormalizeModuleAccess(req.ModuleAccess)
	if len(unknown) > 0 {
		return badRequest(c, "unknown modules: "+strings.Join(unknown, ", "))
	}

	entry, err := h.Staff.Create(c.Request().Context(), userID, strings.TrimSpace(req.Role), access)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, "user is already staff")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, entry)
}

// List возвращает всех сотрудников.
func (h *StaffHandler) List(c echo.Context) error {
	entries, err := h.Staff.List(c.Request().Context())
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, entries)
}

// Update меняет роль, активность и права сотрудника.
func (h *StaffHandler) Update(c echo.Context) error {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid staff id")
	}

	var req UpdateStaffRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	access, unknown := models.NormalizeModuleAccess(req.ModuleAccess)
	if len(unknown) > 0 {
		return badRequest(c, "unknown modules: "+strings.Join(unknown, ", "))
	}

	entry, err := h.Staff.Update(c.Request().Context(), staffID, strings.TrimSpace(req.Role), *req.IsActive, access)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "staff member not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, entry)
}

// Delete удаляет сотрудника.
func (h *StaffHandler) Delete(c echo.Context) error {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid staff id")
	}

	if err := h.Staff.Delete(c.Request().Context(), staffID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "staff member not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

// ModuleMiddleware пропускает запрос, если пользователю разрешен модуль.
// Администраторы из списка конфигурации проходят без записи в персонале.
func ModuleMiddleware(staff *repository.StaffRepository, users *repository.UserRepository, adminEmails []string, module models.Module) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		trimmed := strings.ToLower(strings.TrimSpace(email))
		if trimmed == "" {
			continue
		}
		allowed[trimmed] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := auth.UserIDFromContext(c)
			if !ok {
				return unauthorized(c)
			}

			if len(allowed) > 0 {
				user, err := users.GetByID(c.Request().Context(), userID)
				if err != nil && !errors.Is(err, repository.ErrNotFound) {
					return serverError(c)
				}
				if err == nil {
					email := strings.ToLower(strings.TrimSpace(user.Email))
					if _, ok := allowed[email]; ok {
						return next(c)
					}
				}
			}

			hasAccess, err := staff.HasAccess(c.Request().Context(), userID, module)
			if err != nil {
				return serverError(c)
			}
			if !hasAccess {
				return forbidden(c)
			}

			return next(c)
		}
	}
}
