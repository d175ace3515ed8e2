package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	database "educenter_backend/internals/databases"
	authModel "educenter_backend/internals/features/users/auth/model"
)

func TestBlacklist(t *testing.T) {
	db, err := database.OpenTestDB()
	require.NoError(t, err)
	ctx := context.Background()
	uid := uuid.New()
	now := time.Now().UTC()

	assert.Len(t, HashToken("abc"), 64)
	assert.Equal(t, HashToken("abc"), HashToken(" abc "))

	require.NoError(t, BlacklistToken(ctx, db, "tok-old", &uid, now.Add(-48*time.Hour)))
	require.NoError(t, BlacklistToken(ctx, db, "tok-new", nil, now.Add(time.Hour)))
	// logout kedua dengan token yang sama tidak error
	require.NoError(t, BlacklistToken(ctx, db, "tok-new", nil, now.Add(time.Hour)))
	assert.Error(t, BlacklistToken(ctx, db, "  ", nil, now))

	var rows []authModel.TokenBlacklist
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.NotContains(t, r.TokenHash, "tok-")
	}

	ok, err := IsTokenBlacklisted(ctx, db, "tok-new")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = IsTokenBlacklisted(ctx, db, "tok-unknown")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := PurgeExpiredBlacklist(ctx, db, now.Add(-24*time.Hour), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ok, err = IsTokenBlacklisted(ctx, db, "tok-old")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = IsTokenBlacklisted(ctx, db, "tok-new")
	require.NoError(t, err)
	assert.True(t, ok)
}
