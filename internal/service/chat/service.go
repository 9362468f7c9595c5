package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/oduya/pendo/internal/app"
	"github.com/oduya/pendo/internal/db"
	svcErr "github.com/oduya/pendo/internal/errors"
	"github.com/oduya/pendo/internal/repository"

	"gorm.io/gorm"
)

// Service implements the conversation API: listing a match's messages,
// the credit-gated send, the caller's balance and the realtime
// subscription endpoint.
type Service struct {
	appCtx      *app.AppContext
	matchRepo   *repository.MatchRepository
	messageRepo *repository.MessageRepository
	creditRepo  *repository.CreditRepository
	profileRepo *repository.ProfileRepository
}

// NewChatService creates a new Chat service with dependencies from AppContext.
func NewChatService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		messageRepo: repository.NewMessageRepository(appCtx.DB),
		creditRepo:  repository.NewCreditRepository(appCtx.DB),
		profileRepo: repository.NewProfileRepository(appCtx.DB),
	}
}

// ListMessages returns the conversation for a match the caller may view,
// ascending by creation time. Restartable on each call.
func (s *Service) ListMessages(ctx context.Context, userID, matchID string) ([]db.Message, error) {
	if _, _, err := s.resolveMatch(ctx, userID, matchID); err != nil {
		return nil, err
	}
	return s.messageRepo.ListByMatch(ctx, matchID)
}

// Send appends a message to a match, spending one credit.
//
// The debit and the insert run in a single transaction:
//
//  1. Conditional debit (balance = balance - 1 WHERE balance > 0);
//     zero rows affected aborts with ErrInsufficientCredit and nothing
//     is written.
//  2. Message insert.
//
// Both commit or neither, so a send can never lose its debit and two
// concurrent sends against balance 1 can never both succeed. After
// commit the message is pushed to subscribed viewers and the cached
// balance is invalidated.
//
// Operator replies (admin posting into a match they don't own) are
// flagged is_admin_reply and are not debited.
func (s *Service) Send(ctx context.Context, userID, matchID, content string) (*db.Message, int64, error) {
	s.appCtx.Logger.Debug("send called", "user_id", userID, "match_id", matchID)

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, 0, svcErr.InvalidArgument("message content must not be empty")
	}

	match, adminReply, err := s.resolveMatch(ctx, userID, matchID)
	if err != nil {
		return nil, 0, err
	}

	var msg db.Message
	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !adminReply {
			if err := repository.NewCreditRepository(tx).Debit(ctx, userID); err != nil {
				return err
			}
		}
		msg = db.Message{
			MatchID:      match.ID,
			SenderID:     userID,
			Content:      content,
			IsAdminReply: adminReply,
		}
		return repository.NewMessageRepository(tx).Insert(ctx, &msg)
	})
	if err != nil {
		if !errors.Is(err, svcErr.ErrInsufficientCredit) {
			s.appCtx.Logger.Error("send failed", "user_id", userID, "match_id", matchID, "err", err)
		}
		return nil, 0, err
	}

	// Fan out only after the insert is committed, so subscribers never
	// see a message that later rolled back.
	s.appCtx.Hub.Publish(match.ID, msg)

	_ = s.appCtx.RedisCache.InvalidateCreditBalance(ctx, userID)
	balance, err := s.creditRepo.GetBalance(ctx, userID)
	if err != nil {
		balance = 0
	} else {
		_ = s.appCtx.RedisCache.UpdateCreditBalance(ctx, userID, balance)
	}

	s.appCtx.Logger.Debug("send result", "message_id", msg.ID, "balance", balance)
	return &msg, balance, nil
}

// Balance returns the caller's credit balance.
// Cache-first strategy:
//  1. Attempts to read from Redis (credits:balance:userID).
//  2. On cache miss, falls back to the DB.
//  3. On DB fetch, updates Redis with a TTL.
//
// A missing ledger row reads as balance 0.
func (s *Service) Balance(ctx context.Context, userID string) (int64, error) {
	if cached, found, err := s.appCtx.RedisCache.GetCreditBalance(ctx, userID); err == nil && found {
		return cached, nil
	}

	balance, err := s.creditRepo.GetBalance(ctx, userID)
	if err != nil {
		return 0, err
	}

	_ = s.appCtx.RedisCache.UpdateCreditBalance(ctx, userID, balance)
	return balance, nil
}

// resolveMatch loads the match the caller may act on. Ownership scopes
// normal users; admins may reach any match, which marks their messages
// as operator replies.
func (s *Service) resolveMatch(ctx context.Context, userID, matchID string) (*db.Match, bool, error) {
	match, err := s.matchRepo.GetOwned(ctx, matchID, userID)
	if err == nil {
		return match, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	isAdmin, err := s.profileRepo.IsAdmin(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if !isAdmin {
		return nil, false, svcErr.NotFound("match not found")
	}

	match, err = s.matchRepo.GetByID(ctx, matchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, svcErr.NotFound("match not found")
	}
	if err != nil {
		return nil, false, err
	}
	return match, true, nil
}
