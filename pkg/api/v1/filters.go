package apiv1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/breeze-mail/breeze/pkg/auth"
	"github.com/breeze-mail/breeze/pkg/filters"
	"github.com/breeze-mail/breeze/pkg/repository"
	"github.com/breeze-mail/breeze/pkg/types"
)

// FiltersGroup manages classification rules and tags, and runs the
// engine on demand.
type FiltersGroup struct {
	backend repository.BackendRepository
	engine  *filters.Engine
}

func NewFiltersGroup(g *echo.Group, backend repository.BackendRepository, engine *filters.Engine) *FiltersGroup {
	group := &FiltersGroup{backend: backend, engine: engine}

	g.POST("", auth.WithAuth(group.Create))
	g.GET("", auth.WithAuth(group.List))
	g.PUT("/:external_id", auth.WithAuth(group.Update))
	g.DELETE("/:external_id", auth.WithAuth(group.Delete))
	g.POST("/apply", auth.WithAuth(group.Apply))

	return group
}

type FilterRequest struct {
	Name       string                 `json:"name"`
	Conditions types.FilterConditions `json:"conditions"`
	Actions    types.FilterActions    `json:"actions"`
	Priority   int                    `json:"priority"`
	IsActive   *bool                  `json:"is_active,omitempty"`
	UseAI      bool                   `json:"use_ai,omitempty"`
	AIPrompt   string                 `json:"ai_prompt,omitempty"`
}

func (h *FiltersGroup) Create(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	var req FilterRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request")
	}
	if req.Name == "" {
		return ErrorResponse(c, http.StatusBadRequest, "name is required")
	}
	if req.Conditions.IsEmpty() && !req.UseAI {
		return ErrorResponse(c, http.StatusBadRequest, "at least one condition is required")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	filter, err := h.backend.CreateFilter(ctx, &types.Filter{
		UserId:     user.Id,
		Name:       req.Name,
		Conditions: req.Conditions,
		Actions:    req.Actions,
		Priority:   req.Priority,
		IsActive:   isActive,
		UseAI:      req.UseAI,
		AIPrompt:   req.AIPrompt,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create filter")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to create filter")
	}

	return SuccessResponse(c, filter)
}

func (h *FiltersGroup) List(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	list, err := h.backend.ListFilters(ctx, user.Id, false)
	if err != nil {
		log.Error().Err(err).Msg("failed to list filters")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to list filters")
	}

	return SuccessResponse(c, map[string]any{"filters": list})
}

func (h *FiltersGroup) Update(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	var req FilterRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	filter, err := h.backend.UpdateFilter(ctx, &types.Filter{
		ExternalId: c.Param("external_id"),
		UserId:     user.Id,
		Name:       req.Name,
		Conditions: req.Conditions,
		Actions:    req.Actions,
		Priority:   req.Priority,
		IsActive:   isActive,
		UseAI:      req.UseAI,
		AIPrompt:   req.AIPrompt,
	})
	if err != nil {
		var notFound *types.ErrFilterNotFound
		if errors.As(err, &notFound) {
			return ErrorResponse(c, http.StatusNotFound, "filter not found")
		}
		log.Error().Err(err).Msg("failed to update filter")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to update filter")
	}

	return SuccessResponse(c, filter)
}

func (h *FiltersGroup) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	if err := h.backend.DeleteFilter(ctx, user.Id, c.Param("external_id")); err != nil {
		var notFound *types.ErrFilterNotFound
		if errors.As(err, &notFound) {
			return ErrorResponse(c, http.StatusNotFound, "filter not found")
		}
		log.Error().Err(err).Msg("failed to delete filter")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to delete filter")
	}

	return SuccessResponse(c, map[string]any{"deleted": true})
}

type ApplyFiltersRequest struct {
	MessageId string `json:"message_id"`
}

// Apply runs the user's active filters against one mirrored message.
func (h *FiltersGroup) Apply(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	var req ApplyFiltersRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request")
	}
	if req.MessageId == "" {
		return ErrorResponse(c, http.StatusBadRequest, "message_id is required")
	}

	msg, err := h.backend.GetMessage(ctx, user.Id, req.MessageId)
	if err != nil {
		var notFound *types.ErrMessageNotFound
		if errors.As(err, &notFound) {
			return ErrorResponse(c, http.StatusNotFound, "message not found")
		}
		log.Error().Err(err).Msg("failed to load message")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to load message")
	}

	result, err := h.engine.Apply(ctx, user.Id, msg)
	if err != nil {
		log.Error().Err(err).Msg("failed to apply filters")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to apply filters")
	}

	return SuccessResponse(c, result)
}

// TagsGroup serves the user's tag list.
type TagsGroup struct {
	backend repository.BackendRepository
}

func NewTagsGroup(g *echo.Group, backend repository.BackendRepository) *TagsGroup {
	group := &TagsGroup{backend: backend}

	g.GET("", auth.WithAuth(group.List))

	return group
}

func (h *TagsGroup) List(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	tags, err := h.backend.ListTags(ctx, user.Id)
	if err != nil {
		log.Error().Err(err).Msg("failed to list tags")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to list tags")
	}

	return SuccessResponse(c, map[string]any{"tags": tags})
}
