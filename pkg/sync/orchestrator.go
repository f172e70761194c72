package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/breeze-mail/breeze/pkg/gmail"
	"github.com/breeze-mail/breeze/pkg/oauth"
	"github.com/breeze-mail/breeze/pkg/people"
	"github.com/breeze-mail/breeze/pkg/repository"
	"github.com/breeze-mail/breeze/pkg/types"
)

// Orchestrator runs a full directory sync for an account: labels, then
// contacts, then messages. Phases fail independently; one broken phase
// never stops the others.
type Orchestrator struct {
	backendRepo  repository.BackendRepository
	tokenManager *oauth.TokenManager
	gmailClient  *gmail.Client
	peopleClient *people.Client
	config       types.SyncConfig
}

func NewOrchestrator(
	backendRepo repository.BackendRepository,
	tokenManager *oauth.TokenManager,
	gmailClient *gmail.Client,
	peopleClient *people.Client,
	config types.SyncConfig,
) *Orchestrator {
	return &Orchestrator{
		backendRepo:  backendRepo,
		tokenManager: tokenManager,
		gmailClient:  gmailClient,
		peopleClient: peopleClient,
		config:       config.WithDefaults(),
	}
}

// Run executes all three phases for the account. The returned error
// reflects setup failures only (missing account, dead refresh token);
// per-phase failures land in sync_status rows instead.
func (o *Orchestrator) Run(ctx context.Context, userId, accountId uint) error {
	account, err := o.backendRepo.GetAccount(ctx, userId, accountId)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}

	token, err := o.tokenManager.FreshAccessToken(ctx, account)
	if err != nil {
		// Mark every pending phase failed so clients see a terminal state.
		for _, syncType := range types.AllSyncTypes {
			o.backendRepo.FailSyncPhase(ctx, userId, accountId, syncType, "token refresh failed")
		}
		return fmt.Errorf("refresh token: %w", err)
	}

	log.Info().Uint("user_id", userId).Uint("account_id", accountId).Msg("directory sync started")

	o.runPhase(ctx, userId, accountId, types.SyncTypeLabels, func() (int, error) {
		return o.syncLabels(ctx, userId, accountId, token)
	})
	o.runPhase(ctx, userId, accountId, types.SyncTypeContacts, func() (int, error) {
		return o.syncContacts(ctx, userId, accountId, token)
	})
	o.runPhase(ctx, userId, accountId, types.SyncTypeMessages, func() (int, error) {
		return o.syncMessages(ctx, userId, accountId, token)
	})

	log.Info().Uint("user_id", userId).Uint("account_id", accountId).Msg("directory sync finished")
	return nil
}

func (o *Orchestrator) runPhase(ctx context.Context, userId, accountId uint, syncType types.SyncType, phase func() (int, error)) {
	synced, err := phase()
	if err != nil {
		log.Error().Err(err).Str("phase", string(syncType)).Uint("account_id", accountId).Msg("sync phase failed")
		o.backendRepo.FailSyncPhase(ctx, userId, accountId, syncType, err.Error())
		return
	}

	log.Info().Str("phase", string(syncType)).Int("synced", synced).Uint("account_id", accountId).Msg("sync phase complete")
	o.backendRepo.CompleteSyncPhase(ctx, userId, accountId, syncType)
}

func (o *Orchestrator) syncLabels(ctx context.Context, userId, accountId uint, token string) (int, error) {
	labels, err := o.gmailClient.ListLabels(ctx, token)
	if err != nil {
		return 0, fmt.Errorf("list labels: %w", err)
	}

	if _, err := o.backendRepo.StartSyncPhase(ctx, userId, accountId, types.SyncTypeLabels, len(labels)); err != nil {
		return 0, err
	}

	synced := 0
	for _, l := range labels {
		// The list endpoint omits counters; fetch each label for them.
		detail, err := o.gmailClient.GetLabel(ctx, token, l.Id)
		if err != nil {
			return synced, fmt.Errorf("get label %s: %w", l.Id, err)
		}

		mirrored := &types.Label{
			UserId:         userId,
			AccountId:      accountId,
			GmailLabelId:   detail.Id,
			Name:           detail.Name,
			Type:           detail.Type,
			MessagesTotal:  detail.MessagesTotal,
			MessagesUnread: detail.MessagesUnread,
			ThreadsTotal:   detail.ThreadsTotal,
			IsVisible:      detail.LabelListVisibility != "labelHide",
		}
		if detail.Color != nil {
			mirrored.Color = detail.Color.BackgroundColor
		}

		if _, err := o.backendRepo.UpsertLabel(ctx, mirrored); err != nil {
			return synced, err
		}

		synced++
		o.backendRepo.UpdateSyncProgress(ctx, userId, accountId, types.SyncTypeLabels, synced)
	}

	return synced, nil
}

func (o *Orchestrator) syncContacts(ctx context.Context, userId, accountId uint, token string) (int, error) {
	connections, err := o.peopleClient.ListConnections(ctx, token, o.config.MaxContacts)
	if err != nil {
		return 0, fmt.Errorf("list connections: %w", err)
	}

	if _, err := o.backendRepo.StartSyncPhase(ctx, userId, accountId, types.SyncTypeContacts, len(connections)); err != nil {
		return 0, err
	}

	synced := 0
	for _, conn := range connections {
		contact := contactFromConnection(userId, accountId, conn)
		if _, err := o.backendRepo.UpsertContact(ctx, contact); err != nil {
			return synced, err
		}

		synced++
		if synced%25 == 0 || synced == len(connections) {
			o.backendRepo.UpdateSyncProgress(ctx, userId, accountId, types.SyncTypeContacts, synced)
		}
	}

	return synced, nil
}

func contactFromConnection(userId, accountId uint, conn people.Connection) *types.Contact {
	contact := &types.Contact{
		UserId:         userId,
		AccountId:      accountId,
		GmailContactId: conn.ResourceName,
	}

	if len(conn.Names) > 0 {
		contact.DisplayName = conn.Names[0].DisplayName
	}
	for _, e := range conn.EmailAddresses {
		contact.EmailAddresses = append(contact.EmailAddresses, e.Value)
	}
	for _, p := range conn.PhoneNumbers {
		contact.PhoneNumbers = append(contact.PhoneNumbers, p.Value)
	}
	if len(conn.Organizations) > 0 {
		contact.Organization = conn.Organizations[0].Name
		contact.JobTitle = conn.Organizations[0].Title
	}
	if len(conn.Photos) > 0 {
		contact.PhotoUrl = conn.Photos[0].Url
	}

	return contact
}

func (o *Orchestrator) syncMessages(ctx context.Context, userId, accountId uint, token string) (int, error) {
	query := fmt.Sprintf("q=newer_than:%dm", o.config.MessageWindowMonths)

	ids, err := o.listMessageIds(ctx, token, query)
	if err != nil {
		return 0, fmt.Errorf("list messages: %w", err)
	}

	if _, err := o.backendRepo.StartSyncPhase(ctx, userId, accountId, types.SyncTypeMessages, len(ids)); err != nil {
		return 0, err
	}

	synced := 0
	for start := 0; start < len(ids); start += o.config.ChunkSize {
		end := start + o.config.ChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		messages := make([]*gmail.Message, len(chunk))
		g, gctx := errgroup.WithContext(ctx)
		for i, id := range chunk {
			g.Go(func() error {
				// Metadata only; bodies are backfilled lazily on read.
				msg, err := o.gmailClient.GetMessage(gctx, token, id, gmail.FormatMetadata)
				if err != nil {
					return fmt.Errorf("get message %s: %w", id, err)
				}
				messages[i] = msg
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return synced, err
		}

		for _, msg := range messages {
			row := MessageToMirror(userId, accountId, msg)
			if _, err := o.backendRepo.UpsertMessage(ctx, row); err != nil {
				return synced, err
			}
			synced++
		}

		o.backendRepo.UpdateSyncProgress(ctx, userId, accountId, types.SyncTypeMessages, synced)

		// Pause between chunks to stay under upstream rate limits.
		if end < len(ids) {
			select {
			case <-ctx.Done():
				return synced, ctx.Err()
			case <-time.After(o.config.ChunkDelay):
			}
		}
	}

	return synced, nil
}

func (o *Orchestrator) listMessageIds(ctx context.Context, token, query string) ([]string, error) {
	var ids []string
	pageToken := ""

	for len(ids) < o.config.MaxMessages {
		pageSize := o.config.MaxMessages - len(ids)
		if pageSize > 100 {
			pageSize = 100
		}

		page, err := o.gmailClient.ListMessages(ctx, token, query, pageSize, pageToken)
		if err != nil {
			return nil, err
		}

		for _, ref := range page.Messages {
			ids = append(ids, ref.Id)
		}

		if page.NextPageToken == "" || len(page.Messages) == 0 {
			break
		}
		pageToken = page.NextPageToken
	}

	if len(ids) > o.config.MaxMessages {
		ids = ids[:o.config.MaxMessages]
	}
	return ids, nil
}

// MessageToMirror converts a Gmail wire message to a mirror row. Bodies
// are the concatenation of every text leaf of the matching type, in
// document order.
func MessageToMirror(userId, accountId uint, msg *gmail.Message) *types.EmailMessage {
	bodyText, bodyHtml := gmail.CollectTextBodies(msg.Payload)

	return &types.EmailMessage{
		UserId:         userId,
		AccountId:      accountId,
		GmailMessageId: msg.Id,
		ThreadId:       msg.ThreadId,
		Subject:        msg.Header("Subject"),
		FromAddress:    msg.Header("From"),
		ToAddresses:    gmail.SplitAddressList(msg.Header("To")),
		CcAddresses:    gmail.SplitAddressList(msg.Header("Cc")),
		BccAddresses:   gmail.SplitAddressList(msg.Header("Bcc")),
		Snippet:        msg.Snippet,
		LabelIds:       msg.LabelIds,
		BodyText:       bodyText,
		BodyHtml:       bodyHtml,
		InternalDate:   gmail.ParseInternalDate(msg.InternalDate),
		IsRead:         types.IsReadFromLabels(msg.LabelIds),
		SizeEstimate:   msg.SizeEstimate,
	}
}
