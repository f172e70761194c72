package apiv1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/breeze-mail/breeze/pkg/auth"
	"github.com/breeze-mail/breeze/pkg/repository"
	"github.com/breeze-mail/breeze/pkg/types"
)

// SyncGroup enqueues directory syncs and reports their progress.
type SyncGroup struct {
	backend repository.BackendRepository
	queue   repository.SyncJobQueue
}

func NewSyncGroup(g *echo.Group, backend repository.BackendRepository, queue repository.SyncJobQueue) *SyncGroup {
	group := &SyncGroup{backend: backend, queue: queue}

	g.POST("", auth.WithAuth(group.Trigger))
	g.GET("/status", auth.WithAuth(group.Status))

	return group
}

type TriggerSyncRequest struct {
	AccountId uint `json:"account_id"`
}

// Trigger enqueues a sync job and returns immediately; the worker does
// the actual work and progress lands in sync_status rows.
func (h *SyncGroup) Trigger(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	var req TriggerSyncRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request")
	}

	account, err := h.resolveAccount(c, user.Id, req.AccountId)
	if err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "no connected Gmail account")
	}

	if _, err := h.backend.CreateSyncStatuses(ctx, user.Id, account.Id); err != nil {
		log.Error().Err(err).Msg("failed to create sync statuses")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to start sync")
	}

	if err := h.queue.Push(ctx, &types.SyncJob{UserId: user.Id, AccountId: account.Id}); err != nil {
		log.Error().Err(err).Msg("failed to enqueue sync job")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to start sync")
	}

	log.Info().Uint("user_id", user.Id).Uint("account_id", account.Id).Msg("sync enqueued")

	return SuccessResponse(c, map[string]any{"success": true})
}

// Status returns the per-phase progress rows for an account.
func (h *SyncGroup) Status(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	accountId := uint(0)
	if raw := c.QueryParam("account_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return ErrorResponse(c, http.StatusBadRequest, "invalid account_id")
		}
		accountId = uint(parsed)
	}

	account, err := h.resolveAccount(c, user.Id, accountId)
	if err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "no connected Gmail account")
	}

	statuses, err := h.backend.GetSyncStatuses(ctx, user.Id, account.Id)
	if err != nil {
		log.Error().Err(err).Msg("failed to load sync statuses")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to load sync status")
	}

	return SuccessResponse(c, map[string]any{"statuses": statuses})
}

func (h *SyncGroup) resolveAccount(c echo.Context, userId, accountId uint) (*types.Account, error) {
	ctx := c.Request().Context()
	if accountId != 0 {
		return h.backend.GetAccount(ctx, userId, accountId)
	}
	return h.backend.GetAccountByProvider(ctx, userId, types.ProviderGmail)
}
