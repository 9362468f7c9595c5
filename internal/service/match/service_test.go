package match_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
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
	"github.com/oduya/pendo/internal/service/match"
)

// setupService wires an isolated in-memory DB + miniredis into a match
// service. Fixture: u-alex (male, seeking female), u-betty and u-carol
// (female, seeking male).
func setupService(t *testing.T) (*match.Service, *app.AppContext) {
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

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	appCtx := app.New(dbase, redisCache, realtime.NewHub(), logger)
	return match.NewMatchService(appCtx), appCtx
}

// TestRecordInterestCreatesMatch: liking a compatible candidate yields
// a match that then shows in the caller's list.
func TestRecordInterestCreatesMatch(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	m, created, err := svc.RecordInterest(ctx, "u-alex", "p-betty")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "u-alex", m.UserID)
	assert.Equal(t, "p-betty", m.MatchedProfileID)

	matches, _, err := svc.List(ctx, "u-alex", nil, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, m.ID, matches[0].ID)
	assert.Equal(t, "Betty", matches[0].Profile.Name)
}

// TestRecordInterestWrongGenderFails: a candidate whose gender doesn't
// equal the caller's seeking_gender must not silently succeed.
func TestRecordInterestWrongGenderFails(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	// betty seeks male; carol is female
	_, _, err := svc.RecordInterest(ctx, "u-betty", "p-carol")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestRecordInterestOwnProfileFails(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, _, err := svc.RecordInterest(ctx, "u-alex", "p-alex")
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)
}

func TestRecordInterestMissingProfileFails(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, _, err := svc.RecordInterest(ctx, "u-alex", "p-nobody")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

// TestRecordInterestRepeatedLikeIsNoOp: hardening of the duplicate-like
// open question — the pair is unique, the first row wins.
func TestRecordInterestRepeatedLikeIsNoOp(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)

	first, created, err := svc.RecordInterest(ctx, "u-alex", "p-betty")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.RecordInterest(ctx, "u-alex", "p-betty")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, appCtx.DB.Model(&db.Match{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// TestRecordInterestWithoutProfileFails: a caller with no profile has
// no seeking_gender to filter by.
func TestRecordInterestWithoutProfileFails(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)

	require.NoError(t, appCtx.DB.Create(&db.User{ID: "u-new", Email: "new@test.com", PasswordHash: "x"}).Error)

	_, _, err := svc.RecordInterest(ctx, "u-new", "p-betty")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestListPagination(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupService(t)

	// extra female profiles for alex to like
	for i := 0; i < 3; i++ {
		pid := fmt.Sprintf("p-extra-%d", i)
		require.NoError(t, appCtx.DB.Create(&db.Profile{
			ID: pid, UserID: "owner-" + pid, Name: pid,
			Age: 24, Gender: "female", SeekingGender: "male",
		}).Error)
		_, _, err := svc.RecordInterest(ctx, "u-alex", pid)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	page1, next, err := svc.List(ctx, "u-alex", nil, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, next)
	assert.Equal(t, "p-extra-2", page1[0].MatchedProfileID) // newest first

	page2, next2, err := svc.List(ctx, "u-alex", next, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Nil(t, next2)
	assert.Equal(t, "p-extra-0", page2[0].MatchedProfileID)
}
