package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/ta28nov/appandroid-sub000/internal/models"
	"github.com/ta28nov/appandroid-sub000/internal/repository"
)

type conversationStore interface {
	GetOrCreate(ctx context.Context, userA, userB int64) (*models.Conversation, bool, error)
	GetByID(ctx context.Context, conversationID int64) (*models.Conversation, error)
	ListForParticipant(ctx context.Context, participantID int64, limit, offset int) ([]models.ConversationSummary, error)
	CountForParticipant(ctx context.Context, participantID int64) (int, error)
}

type messageStore interface {
	ListBefore(ctx context.Context, conversationID, beforeID int64, limit int) ([]models.Message, error)
	MarkRead(ctx context.Context, messageIDs []int64, readerID int64) error
}

type userReader interface {
	GetPublicByID(ctx context.Context, id int64) (*models.PublicProfile, error)
}

type ChatService struct {
	db            *pgxpool.Pool
	conversations conversationStore
	messages      messageStore
	users         userReader

	// markReadDone, when set, is called after the detached read-marking task
	// finishes. Tests use it to wait for the side effect deterministically.
	markReadDone func(error)
}

// ChatDelivery carries a freshly appended message plus the participant it
// should be announced to.
type ChatDelivery struct {
	Conversation *models.Conversation
	Message      *models.Message
	RecipientID  int64
}

func NewChatService(
	db *pgxpool.Pool,
	conversations conversationStore,
	messages messageStore,
	users userReader,
) *ChatService {
	return &ChatService{
		db:            db,
		conversations: conversations,
		messages:      messages,
		users:         users,
	}
}

// SetMarkReadDone installs a completion hook for the detached read-marking
// task started by ListMessages.
func (s *ChatService) SetMarkReadDone(hook func(error)) {
	s.markReadDone = hook
}

// CreateConversation finds or lazily creates the conversation between actor
// and recipient. The boolean reports whether it was created on this call.
func (s *ChatService) CreateConversation(
	ctx context.Context,
	actorID int64,
	recipientID int64,
) (*models.Conversation, bool, error) {
	if recipientID <= 0 {
		return nil, false, ErrValidation
	}
	if recipientID == actorID {
		return nil, false, ErrInvalidOperation
	}

	if _, err := s.users.GetPublicByID(ctx, recipientID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, ErrNotFound
		}
		return nil, false, err
	}

	return s.conversations.GetOrCreate(ctx, actorID, recipientID)
}

func (s *ChatService) ListConversations(
	ctx context.Context,
	actorID int64,
	page int,
	pageSize int,
) ([]models.ConversationSummary, int, error) {
	if page <= 0 || pageSize <= 0 {
		return nil, 0, ErrValidation
	}

	total, err := s.conversations.CountForParticipant(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}

	summaries, err := s.conversations.ListForParticipant(ctx, actorID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}

	return summaries, total, nil
}

// ListMessages returns up to limit messages strictly older than beforeID
// (0 = newest page), newest first. Marking the returned messages as read by
// the actor happens on a detached goroutine; the response never waits on it.
func (s *ChatService) ListMessages(
	ctx context.Context,
	actorID int64,
	conversationID int64,
	beforeID int64,
	limit int,
) ([]models.Message, error) {
	if conversationID <= 0 || limit <= 0 || beforeID < 0 {
		return nil, ErrValidation
	}

	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !conversation.HasParticipant(actorID) {
		return nil, ErrForbidden
	}

	messages, err := s.messages.ListBefore(ctx, conversationID, beforeID, limit)
	if err != nil {
		return nil, err
	}

	unreadIDs := make([]int64, 0, len(messages))
	for _, message := range messages {
		if message.SenderID != actorID && !message.ReadByUser(actorID) {
			unreadIDs = append(unreadIDs, message.ID)
		}
	}

	go s.markRead(unreadIDs, actorID)

	return messages, nil
}

func (s *ChatService) markRead(messageIDs []int64, readerID int64) {
	var err error
	if len(messageIDs) > 0 {
		// Detached from the request: a fresh context so the update is not
		// cancelled when the response finishes first.
		err = s.messages.MarkRead(context.Background(), messageIDs, readerID)
		if err != nil {
			log.Warn().Err(err).Int64("reader_id", readerID).Msg("mark messages read failed")
		}
	}
	if s.markReadDone != nil {
		s.markReadDone(err)
	}
}

// SendMessage appends a message and refreshes the conversation snapshot in one
// transaction, then hands back the delivery target for notification.
func (s *ChatService) SendMessage(
	ctx context.Context,
	actorID int64,
	conversationID int64,
	text string,
) (*ChatDelivery, error) {
	if conversationID <= 0 {
		return nil, ErrValidation
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrValidation
	}

	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !conversation.HasParticipant(actorID) {
		return nil, ErrForbidden
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txMessageRepo := repository.NewMessageRepository(tx)
	txConversationRepo := repository.NewConversationRepository(tx)

	message, err := txMessageRepo.Create(ctx, conversationID, actorID, trimmed)
	if err != nil {
		return nil, err
	}

	if err := txConversationRepo.UpdateSnapshot(
		ctx,
		conversationID,
		actorID,
		message.Text,
		message.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &ChatDelivery{
		Conversation: conversation,
		Message:      message,
		RecipientID:  conversation.OtherParticipant(actorID),
	}, nil
}
