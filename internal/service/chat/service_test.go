package chat_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oduya/pendo/internal/app"
	"github.com/oduya/pendo/internal/cache"
	"github.com/oduya/pendo/internal/config"
	"github.com/oduya/pendo/internal/db"
	svcErr "github.com/oduya/pendo/internal/errors"
	"github.com/oduya/pendo/internal/realtime"
	"github.com/oduya/pendo/internal/service/chat"
)

//
// Test helpers
//

// setupApp spins up an in-memory SQLite DB, applies migrations, seeds
// the minimal fixture, starts a miniredis, and wires everything into an
// AppContext. Each test gets its own isolated DB + Redis + hub.
//
// Fixture (db.SeedMinimalTestData):
//   - u-alex  (male, seeking female, 2 credits)
//   - u-betty (female, seeking male, 1 credit)
//   - u-carol (female, seeking male, no ledger row -> balance 0)
func setupApp(t *testing.T) *app.AppContext {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(dbase))
	require.NoError(t, db.SeedMinimalTestData(dbase))

	// Fake Redis
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests

	return app.New(dbase, redisCache, realtime.NewHub(), logger)
}

// createMatch inserts a match row directly so chat tests don't depend
// on the match service.
func createMatch(t *testing.T, gdb *gorm.DB, id, userID, profileID string) {
	t.Helper()
	require.NoError(t, gdb.Create(&db.Match{
		ID: id, UserID: userID, MatchedProfileID: profileID,
	}).Error)
}

//
// Tests
//

// TestSendDebitsAndAppends checks the happy path: a send spends exactly
// one credit and the message lands at the tail of the conversation.
func TestSendDebitsAndAppends(t *testing.T) {
	ctx := context.Background()
	appCtx := setupApp(t)
	createMatch(t, appCtx.DB, "m-1", "u-alex", "p-betty")
	svc := chat.NewChatService(appCtx)

	msg, balance, err := svc.Send(ctx, "u-alex", "m-1", "hi Betty")
	require.NoError(t, err)
	assert.Equal(t, "hi Betty", msg.Content)
	assert.False(t, msg.IsAdminReply)
	assert.Equal(t, int64(1), balance) // started with 2

	time.Sleep(2 * time.Millisecond)
	_, balance, err = svc.Send(ctx, "u-alex", "m-1", "are you there?")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	messages, err := svc.ListMessages(ctx, "u-alex", "m-1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hi Betty", messages[0].Content)
	assert.Equal(t, "are you there?", messages[1].Content)
}

// TestSendRejectedAtZeroBalance ensures the rejection happens before
// anything is written: no message row and no debit.
func TestSendRejectedAtZeroBalance(t *testing.T) {
	ctx := context.Background()
	appCtx := setupApp(t)
	createMatch(t, appCtx.DB, "m-1", "u-carol", "p-alex")
	svc := chat.NewChatService(appCtx)

	_, _, err := svc.Send(ctx, "u-carol", "m-1", "hello")
	assert.ErrorIs(t, err, svcErr.ErrInsufficientCredit)

	var count int64
	require.NoError(t, appCtx.DB.Model(&db.Message{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSendRejectsEmptyContent(t *testing.T) {
	ctx := context.Background()
	appCtx := setupApp(t)
	createMatch(t, appCtx.DB, "m-1", "u-alex", "p-betty")
	svc := chat.NewChatService(appCtx)

	_, _, err := svc.Send(ctx, "u-alex", "m-1", "   \n\t ")
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)

	// nothing was spent
	balance, err := svc.Balance(ctx, "u-alex")
	require.NoError(t, err)
	assert.Equal(t, int64(2), balance)
}

// TestSendForeignMatchIsNotFound: a conversation owned by someone else
// is indistinguishable from a missing one.
func TestSendForeignMatchIsNotFound(t *testing.T) {
	ctx := context.Background()
	appCtx := setupApp(t)
	createMatch(t, appCtx.DB, "m-1", "u-alex", "p-betty")
	svc := chat.NewChatService(appCtx)

	_, _, err := svc.Send(ctx, "u-betty", "m-1", "sneaky")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	_, _, err = svc.Send(ctx, "u-alex", "m-missing", "hello?")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

// TestConcurrentSendsNeverOverspend is the regression target for the
// credit race: two sends racing on a balance of 1 must never both
// succeed, and the balance must never go negative.
func TestConcurrentSendsNeverOverspend(t *testing.T) {
	ctx := context.Background()
	appCtx := setupApp(t)
	createMatch(t, appCtx.DB, "m-1", "u-betty", "p-alex") // betty has exactly 1 credit
	svc := chat.NewChatService(appCtx)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.Send(ctx, "u-betty", "m-1", fmt.Sprintf("race %d", i))
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		}
	}
	assert.LessOrEqual(t, successes, 1, "two sends spent a single credit")

	balance, err := repositoryBalance(ctx, appCtx)
	require.NoError(t, err)
	assert.Equal(t, int64(1-successes), balance)
	assert.GreaterOrEqual(t, balance, int64(0))

	var count int64
	require.NoError(t, appCtx.DB.Model(&db.Message{}).Count(&count).Error)
	assert.Equal(t, int64(successes), count)
}

func repositoryBalance(ctx context.Context, appCtx *app.AppContext) (int64, error) {
	var credit db.Credit
	err := appCtx.DB.WithContext(ctx).Where("user_id = ?", "u-betty").First(&credit).Error
	if err != nil {
		return 0, err
	}
	return credit.Balance, nil
}

// TestSendPushesToSubscriber: a viewer subscribed to the match scope
// receives the insert within the same session, in order.
func TestSendPushesToSubscriber(t *testing.T) {
	ctx := context.Background()
	appCtx := setupApp(t)
	createMatch(t, appCtx.DB, "m-1", "u-alex", "p-betty")
	svc := chat.NewChatService(appCtx)

	sub := appCtx.Hub.Subscribe("m-1", 8)
	defer sub.Cancel()

	sent, _, err := svc.Send(ctx, "u-alex", "m-1", "ping")
	require.NoError(t, err)

	select {
	case got := <-sub.C():
		assert.Equal(t, sent.ID, got.ID)
		assert.Equal(t, "ping", got.Content)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the pushed insert")
	}
}

// TestAdminReplyIsFree: an operator posting into a match they don't own
// is flagged and not debited.
func TestAdminReplyIsFree(t *testing.T) {
	ctx := context.Background()
	appCtx := setupApp(t)
	createMatch(t, appCtx.DB, "m-1", "u-alex", "p-betty")

	require.NoError(t, appCtx.DB.Create(&db.User{ID: "u-op", Email: "op@test.com", PasswordHash: "x"}).Error)
	require.NoError(t, appCtx.DB.Create(&db.Profile{
		ID: "p-op", UserID: "u-op", Name: "Op", Age: 30,
		Gender: "female", SeekingGender: "male", IsAdmin: true,
	}).Error)

	svc := chat.NewChatService(appCtx)

	msg, _, err := svc.Send(ctx, "u-op", "m-1", "hello from support")
	require.NoError(t, err)
	assert.True(t, msg.IsAdminReply)

	// the operator has no ledger row and still sends fine
	var count int64
	require.NoError(t, appCtx.DB.Model(&db.Credit{}).Where("user_id = ?", "u-op").Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

// TestBalanceCacheFirst verifies the cache-then-DB read path.
func TestBalanceCacheFirst(t *testing.T) {
	ctx := context.Background()
	appCtx := setupApp(t)
	svc := chat.NewChatService(appCtx)

	// First call → DB, primes the cache
	balance, err := svc.Balance(ctx, "u-alex")
	require.NoError(t, err)
	assert.Equal(t, int64(2), balance)

	// Mutate the DB behind the cache; the cached value is served
	require.NoError(t, appCtx.DB.Model(&db.Credit{}).
		Where("user_id = ?", "u-alex").
		Update("balance", 99).Error)

	balance, err = svc.Balance(ctx, "u-alex")
	require.NoError(t, err)
	assert.Equal(t, int64(2), balance)

	// Invalidation falls back to the DB
	require.NoError(t, appCtx.RedisCache.InvalidateCreditBalance(ctx, "u-alex"))
	balance, err = svc.Balance(ctx, "u-alex")
	require.NoError(t, err)
	assert.Equal(t, int64(99), balance)
}

// TestBalanceMissingRowIsZero: a user without a ledger row reads as 0.
func TestBalanceMissingRowIsZero(t *testing.T) {
	ctx := context.Background()
	appCtx := setupApp(t)
	svc := chat.NewChatService(appCtx)

	balance, err := svc.Balance(ctx, "u-carol")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}
