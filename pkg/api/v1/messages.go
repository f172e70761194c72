package apiv1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/breeze-mail/breeze/pkg/auth"
	"github.com/breeze-mail/breeze/pkg/repository"
	"github.com/breeze-mail/breeze/pkg/types"
)

const messagesPageSize = 50

// MessagesGroup serves mirror-store reads for the UI: message listings,
// labels, and contact autocomplete. Nothing here touches Gmail.
type MessagesGroup struct {
	backend repository.BackendRepository
}

func NewMessagesGroup(g *echo.Group, backend repository.BackendRepository) *MessagesGroup {
	group := &MessagesGroup{backend: backend}

	g.GET("", auth.WithAuth(group.List))
	g.GET("/labels", auth.WithAuth(group.Labels))
	g.GET("/contacts", auth.WithAuth(group.Contacts))

	return group
}

func (h *MessagesGroup) List(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	account, err := h.resolveAccount(c, user.Id)
	if err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "no connected Gmail account")
	}

	page := 0
	if raw := c.QueryParam("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil || page < 0 {
			return ErrorResponse(c, http.StatusBadRequest, "invalid page")
		}
	}

	messages, err := h.backend.ListMessages(ctx, user.Id, account.Id,
		c.QueryParam("mailbox"), c.QueryParam("q"), messagesPageSize, page*messagesPageSize)
	if err != nil {
		var validationErr *types.ValidationError
		if errors.As(err, &validationErr) {
			return ErrorResponse(c, http.StatusBadRequest, validationErr.Error())
		}
		log.Error().Err(err).Msg("failed to list messages")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to list messages")
	}

	return SuccessResponse(c, map[string]any{
		"messages": messages,
		"page":     page,
	})
}

func (h *MessagesGroup) Labels(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	account, err := h.resolveAccount(c, user.Id)
	if err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "no connected Gmail account")
	}

	labels, err := h.backend.ListLabels(ctx, user.Id, account.Id)
	if err != nil {
		log.Error().Err(err).Msg("failed to list labels")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to list labels")
	}

	return SuccessResponse(c, map[string]any{"labels": labels})
}

// Contacts powers recipient autocomplete from the mirrored directory.
func (h *MessagesGroup) Contacts(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	query := c.QueryParam("q")
	if query == "" {
		account, err := h.resolveAccount(c, user.Id)
		if err != nil {
			return ErrorResponse(c, http.StatusBadRequest, "no connected Gmail account")
		}
		contacts, err := h.backend.ListContacts(ctx, user.Id, account.Id)
		if err != nil {
			log.Error().Err(err).Msg("failed to list contacts")
			return ErrorResponse(c, http.StatusInternalServerError, "failed to list contacts")
		}
		return SuccessResponse(c, map[string]any{"contacts": contacts})
	}

	contacts, err := h.backend.SearchContacts(ctx, user.Id, query, 10)
	if err != nil {
		log.Error().Err(err).Msg("failed to search contacts")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to search contacts")
	}
	return SuccessResponse(c, map[string]any{"contacts": contacts})
}

func (h *MessagesGroup) resolveAccount(c echo.Context, userId uint) (*types.Account, error) {
	ctx := c.Request().Context()
	if raw := c.QueryParam("account_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, err
		}
		return h.backend.GetAccount(ctx, userId, uint(parsed))
	}
	return h.backend.GetAccountByProvider(ctx, userId, types.ProviderGmail)
}
