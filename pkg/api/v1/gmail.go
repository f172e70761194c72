package apiv1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/breeze-mail/breeze/pkg/auth"
	"github.com/breeze-mail/breeze/pkg/gmail"
	"github.com/breeze-mail/breeze/pkg/oauth"
	"github.com/breeze-mail/breeze/pkg/repository"
	"github.com/breeze-mail/breeze/pkg/storage"
	syncpkg "github.com/breeze-mail/breeze/pkg/sync"
	"github.com/breeze-mail/breeze/pkg/types"
)

const (
	maxImportBatch      = 100
	importConcurrency   = 10
	errMsgReconnect     = "reconnect your Gmail account"
	errMsgUpstream      = "Gmail request failed"
	errMsgUnknownAction = "unknown action: %s"
)

// GmailGroup is the gateway action dispatcher: one POST endpoint that
// multiplexes every mailbox operation behind an action discriminator.
type GmailGroup struct {
	backend      repository.BackendRepository
	tokenManager *oauth.TokenManager
	gmailClient  *gmail.Client
	attachments  *storage.AttachmentStore
}

// NewGmailGroup creates and registers the gateway routes. attachments
// may be nil when no blob store is configured; send requests with
// attachments are then rejected.
func NewGmailGroup(g *echo.Group, backend repository.BackendRepository, tokenManager *oauth.TokenManager, gmailClient *gmail.Client, attachments *storage.AttachmentStore) *GmailGroup {
	group := &GmailGroup{
		backend:      backend,
		tokenManager: tokenManager,
		gmailClient:  gmailClient,
		attachments:  attachments,
	}

	g.POST("", auth.WithAuth(group.Dispatch))

	return group
}

// AttachmentRef points at an uploaded blob by storage key.
type AttachmentRef struct {
	Key      string `json:"key"`
	Filename string `json:"filename"`
}

type ActionRequest struct {
	Action    string `json:"action"`
	AccountId uint   `json:"account_id,omitempty"`

	// import
	Mailbox string `json:"mailbox,omitempty"`
	Max     int    `json:"max,omitempty"`

	// modify / get
	Id             string   `json:"id,omitempty"`
	AddLabelIds    []string `json:"add_label_ids,omitempty"`
	RemoveLabelIds []string `json:"remove_label_ids,omitempty"`

	// send / draft
	To          []string        `json:"to,omitempty"`
	Cc          []string        `json:"cc,omitempty"`
	Bcc         []string        `json:"bcc,omitempty"`
	Subject     string          `json:"subject,omitempty"`
	BodyText    string          `json:"body_text,omitempty"`
	BodyHtml    string          `json:"body_html,omitempty"`
	Attachments []AttachmentRef `json:"attachments,omitempty"`
	DraftId     string          `json:"draft_id,omitempty"`

	// create-label
	Name string `json:"name,omitempty"`
}

// Dispatch refreshes the access token, then routes to the action
// handler. The refresh happens on every call regardless of the stored
// expiry; the persisted expiry is informational only.
func (h *GmailGroup) Dispatch(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	var req ActionRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Action == "" {
		return ErrorResponse(c, http.StatusBadRequest, "action is required")
	}

	account, err := h.resolveAccount(ctx, user.Id, req.AccountId)
	if err != nil {
		return h.mapError(c, err)
	}

	token, err := h.tokenManager.FreshAccessToken(ctx, account)
	if err != nil {
		var refreshErr *types.TokenRefreshError
		if errors.As(err, &refreshErr) {
			return ErrorResponse(c, http.StatusUnauthorized, errMsgReconnect)
		}
		return h.mapError(c, err)
	}

	switch req.Action {
	case "import":
		return h.actionImport(c, user, account, token, &req)
	case "modify":
		return h.actionModify(c, user, account, token, &req)
	case "send":
		return h.actionSend(c, user, account, token, &req)
	case "draft":
		return h.actionDraft(c, account, token, &req)
	case "get":
		return h.actionGet(c, user, token, &req)
	case "create-label":
		return h.actionCreateLabel(c, token, &req)
	default:
		return ErrorResponse(c, http.StatusBadRequest, fmt.Sprintf(errMsgUnknownAction, req.Action))
	}
}

func (h *GmailGroup) resolveAccount(ctx context.Context, userId, accountId uint) (*types.Account, error) {
	if accountId != 0 {
		return h.backend.GetAccount(ctx, userId, accountId)
	}
	return h.backend.GetAccountByProvider(ctx, userId, types.ProviderGmail)
}

// mapError converts domain errors to response codes. Upstream detail is
// logged truncated, never returned to the client.
func (h *GmailGroup) mapError(c echo.Context, err error) error {
	var validationErr *types.ValidationError
	if errors.As(err, &validationErr) {
		return ErrorResponse(c, http.StatusBadRequest, validationErr.Message)
	}

	var accountErr *types.ErrAccountNotFound
	if errors.As(err, &accountErr) {
		return ErrorResponse(c, http.StatusBadRequest, "no connected Gmail account")
	}

	var messageErr *types.ErrMessageNotFound
	if errors.As(err, &messageErr) {
		return ErrorResponse(c, http.StatusBadRequest, "message not found")
	}

	var upstreamErr *types.UpstreamError
	if errors.As(err, &upstreamErr) {
		detail := upstreamErr.Detail
		if len(detail) > 512 {
			detail = detail[:512]
		}
		log.Warn().
			Str("service", upstreamErr.Service).
			Int("status", upstreamErr.StatusCode).
			Str("detail", detail).
			Msg("upstream request failed")
		return ErrorResponse(c, http.StatusBadRequest, errMsgUpstream)
	}

	log.Error().Err(err).Msg("gateway action failed")
	return ErrorResponse(c, http.StatusInternalServerError, "internal error")
}

func (h *GmailGroup) actionImport(c echo.Context, user *types.User, account *types.Account, token string, req *ActionRequest) error {
	ctx := c.Request().Context()

	mailbox := req.Mailbox
	if mailbox == "" {
		mailbox = "inbox"
	}
	query, ok := gmail.MailboxQueries[mailbox]
	if !ok {
		return ErrorResponse(c, http.StatusBadRequest, "mailbox must be one of inbox, sent, drafts")
	}

	max := req.Max
	if max <= 0 || max > maxImportBatch {
		max = maxImportBatch
	}

	list, err := h.gmailClient.ListMessages(ctx, token, query, max, "")
	if err != nil {
		return h.mapError(c, err)
	}

	messages := make([]*gmail.Message, len(list.Messages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(importConcurrency)
	for i, ref := range list.Messages {
		g.Go(func() error {
			msg, err := h.gmailClient.GetMessage(gctx, token, ref.Id, gmail.FormatFull)
			if err != nil {
				// Partial failures are tolerated; nil slots are skipped.
				log.Warn().Err(err).Str("message_id", ref.Id).Msg("import fetch failed")
				return nil
			}
			messages[i] = msg
			return nil
		})
	}
	g.Wait()

	imported := 0
	failed := 0
	for _, msg := range messages {
		if msg == nil {
			failed++
			continue
		}
		row := syncpkg.MessageToMirror(user.Id, account.Id, msg)
		if _, err := h.backend.UpsertMessage(ctx, row); err != nil {
			log.Warn().Err(err).Str("message_id", msg.Id).Msg("import upsert failed")
			failed++
			continue
		}
		imported++
	}

	if imported == 0 && failed > 0 {
		return ErrorResponse(c, http.StatusBadRequest, "import failed for all messages")
	}
	if failed > 0 {
		log.Warn().Int("imported", imported).Int("failed", failed).Msg("partial import")
	}

	return SuccessResponse(c, map[string]any{"imported": imported})
}

func (h *GmailGroup) actionModify(c echo.Context, user *types.User, account *types.Account, token string, req *ActionRequest) error {
	ctx := c.Request().Context()

	if req.Id == "" {
		return ErrorResponse(c, http.StatusBadRequest, "id is required")
	}
	if len(req.AddLabelIds) == 0 && len(req.RemoveLabelIds) == 0 {
		return ErrorResponse(c, http.StatusBadRequest, "no label changes requested")
	}

	modified, err := h.gmailClient.ModifyMessage(ctx, token, req.Id, req.AddLabelIds, req.RemoveLabelIds)
	if err != nil {
		return h.mapError(c, err)
	}

	// Mirror the authoritative label set; a message missing from the
	// mirror just hasn't been imported yet.
	if _, err := h.backend.UpdateMessageLabels(ctx, user.Id, req.Id, modified.LabelIds); err != nil {
		var notFound *types.ErrMessageNotFound
		if !errors.As(err, &notFound) {
			return h.mapError(c, err)
		}
	}

	return SuccessResponse(c, map[string]any{
		"modified": true,
		"labels":   modified.LabelIds,
	})
}

func (h *GmailGroup) actionSend(c echo.Context, user *types.User, account *types.Account, token string, req *ActionRequest) error {
	ctx := c.Request().Context()

	outgoing, err := h.buildOutgoing(ctx, account, req)
	if err != nil {
		return h.mapError(c, err)
	}

	raw, err := gmail.BuildRawMessage(outgoing)
	if err != nil {
		return h.mapError(c, err)
	}

	sent, sendErr := h.gmailClient.Send(ctx, token, raw)

	// Every attempt is logged, success or failure.
	entry := &types.OutgoingMailLog{
		UserId:       user.Id,
		AccountId:    account.Id,
		ToAddresses:  req.To,
		CcAddresses:  req.Cc,
		BccAddresses: req.Bcc,
		Subject:      req.Subject,
		Status:       types.OutgoingStatusSent,
	}
	if sendErr != nil {
		entry.Status = types.OutgoingStatusFailed
		entry.ErrorMessage = sendErr.Error()
	} else {
		entry.GmailMessageId = sent.Id
	}
	if _, err := h.backend.LogOutgoingMail(ctx, entry); err != nil {
		log.Error().Err(err).Msg("failed to log outgoing mail")
	}

	if sendErr != nil {
		return h.mapError(c, sendErr)
	}

	return SuccessResponse(c, map[string]any{
		"sent": true,
		"id":   sent.Id,
	})
}

// buildOutgoing validates recipients and resolves attachment blobs.
// Sizes are checked via HEAD before any download starts, so an
// oversized attachment costs no transfer.
func (h *GmailGroup) buildOutgoing(ctx context.Context, account *types.Account, req *ActionRequest) (*gmail.OutgoingMessage, error) {
	if len(req.To) == 0 {
		return nil, &types.ValidationError{Field: "to", Message: "at least one recipient is required"}
	}

	outgoing := &gmail.OutgoingMessage{
		From:     account.EmailAddress,
		To:       req.To,
		Cc:       req.Cc,
		Bcc:      req.Bcc,
		Subject:  req.Subject,
		BodyText: req.BodyText,
		BodyHtml: req.BodyHtml,
	}

	if len(req.Attachments) == 0 {
		return outgoing, nil
	}
	if h.attachments == nil {
		return nil, &types.ValidationError{Field: "attachments", Message: "attachment storage is not configured"}
	}

	for _, ref := range req.Attachments {
		size, err := h.attachments.Size(ctx, ref.Key)
		if err != nil {
			return nil, fmt.Errorf("stat attachment %s: %w", ref.Key, err)
		}
		if size > gmail.MaxAttachmentSize {
			return nil, &types.ValidationError{Field: "attachments", Message: "Attachments must be under 25MB each."}
		}
	}

	for _, ref := range req.Attachments {
		data, contentType, err := h.attachments.Download(ctx, ref.Key)
		if err != nil {
			return nil, fmt.Errorf("fetch attachment %s: %w", ref.Key, err)
		}
		outgoing.Attachments = append(outgoing.Attachments, gmail.Attachment{
			Filename:    ref.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}

	return outgoing, nil
}

func (h *GmailGroup) actionDraft(c echo.Context, account *types.Account, token string, req *ActionRequest) error {
	ctx := c.Request().Context()

	outgoing, err := h.buildOutgoing(ctx, account, req)
	if err != nil {
		return h.mapError(c, err)
	}

	raw, err := gmail.BuildRawMessage(outgoing)
	if err != nil {
		return h.mapError(c, err)
	}

	var draft *gmail.Draft
	if req.DraftId != "" {
		draft, err = h.gmailClient.UpdateDraft(ctx, token, req.DraftId, raw)
	} else {
		draft, err = h.gmailClient.CreateDraft(ctx, token, raw)
	}
	if err != nil {
		return h.mapError(c, err)
	}

	resp := map[string]any{
		"draft": true,
		"id":    draft.Id,
	}
	if draft.Message != nil {
		resp["message"] = map[string]any{"id": draft.Message.Id, "threadId": draft.Message.ThreadId}
	}
	return SuccessResponse(c, resp)
}

func (h *GmailGroup) actionGet(c echo.Context, user *types.User, token string, req *ActionRequest) error {
	ctx := c.Request().Context()

	if req.Id == "" {
		return ErrorResponse(c, http.StatusBadRequest, "id is required")
	}

	msg, err := h.gmailClient.GetMessage(ctx, token, req.Id, gmail.FormatFull)
	if err != nil {
		return h.mapError(c, err)
	}

	bodyText, bodyHtml := gmail.CollectTextBodies(msg.Payload)

	// Lazy backfill; a mirror miss is fine, the body just isn't cached.
	if err := h.backend.UpdateMessageBodies(ctx, user.Id, req.Id, bodyText, bodyHtml); err != nil {
		var notFound *types.ErrMessageNotFound
		if !errors.As(err, &notFound) {
			log.Warn().Err(err).Str("message_id", req.Id).Msg("body backfill failed")
		}
	}

	return SuccessResponse(c, map[string]any{
		"body_text": bodyText,
		"body_html": bodyHtml,
	})
}

func (h *GmailGroup) actionCreateLabel(c echo.Context, token string, req *ActionRequest) error {
	ctx := c.Request().Context()

	if req.Name == "" {
		return ErrorResponse(c, http.StatusBadRequest, "name is required")
	}

	label, err := h.gmailClient.CreateLabel(ctx, token, req.Name)
	if err != nil {
		return h.mapError(c, err)
	}

	return SuccessResponse(c, map[string]any{
		"created": true,
		"label":   label,
	})
}
