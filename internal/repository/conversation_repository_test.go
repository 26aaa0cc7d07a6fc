package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"support-bot-go/internal/model"
)

// setupRepo 用内存 SQLite 和 miniredis 构造仓库。
// 连接池限制为单连接，避免每个连接各自拿到一个空的内存库。
func setupRepo(t *testing.T) (ConversationRepository, *miniredis.Miniredis, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.Message{}))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewConversationRepository(db, client), mr, db
}

func TestAppendAndGetHistory(t *testing.T) {
	repo, _, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendMessage(ctx, "s1", "user", "hi"))
	require.NoError(t, repo.AppendMessage(ctx, "s1", "assistant", "hello"))

	history, err := repo.GetHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []model.ChatMessage{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}, history)
}

func TestGetHistoryUnknownSession(t *testing.T) {
	repo, _, _ := setupRepo(t)

	history, err := repo.GetHistory(context.Background(), "never-seen")
	require.NoError(t, err)
	// 未知会话返回空切片而不是 nil，序列化为 [] 而不是 null。
	require.NotNil(t, history)
	assert.Empty(t, history)
}

func TestGetHistoryNormalizesRoles(t *testing.T) {
	repo, _, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendMessage(ctx, "s1", "system", "instruction"))
	require.NoError(t, repo.AppendMessage(ctx, "s1", "assistant", "reply"))
	require.NoError(t, repo.AppendMessage(ctx, "s1", "bot", "legacy row"))

	history, err := repo.GetHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "assistant", history[1].Role)
	assert.Equal(t, "user", history[2].Role)
}

func TestSessionIsolation(t *testing.T) {
	repo, _, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendMessage(ctx, "a", "user", "for a"))
	require.NoError(t, repo.AppendMessage(ctx, "b", "user", "for b"))

	history, err := repo.GetHistory(ctx, "a")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "for a", history[0].Content)
}

func TestGetHistoryFillsAndServesCache(t *testing.T) {
	repo, mr, db := setupRepo(t)
	ctx := context.Background()
	key := "conversation:history:s1"

	require.NoError(t, repo.AppendMessage(ctx, "s1", "user", "hi"))

	_, err := repo.GetHistory(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, historyCacheTTL, mr.TTL(key))

	// 绕过仓库直接写库，缓存命中时读取不应看到这行。
	require.NoError(t, db.Create(&model.Message{SessionID: "s1", Role: "assistant", Content: "direct"}).Error)

	history, err := repo.GetHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, history, 1)

	// 追加让缓存失效，下一次读取回源数据库。
	require.NoError(t, repo.AppendMessage(ctx, "s1", "user", "again"))
	history, err = repo.GetHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "direct", history[1].Content)
	assert.Equal(t, "again", history[2].Content)
}

func TestClearHistory(t *testing.T) {
	repo, mr, _ := setupRepo(t)
	ctx := context.Background()
	key := "conversation:history:s1"

	require.NoError(t, repo.AppendMessage(ctx, "s1", "user", "hi"))
	require.NoError(t, repo.AppendMessage(ctx, "s1", "assistant", "hello"))
	_, err := repo.GetHistory(ctx, "s1")
	require.NoError(t, err)
	require.True(t, mr.Exists(key))

	deleted, err := repo.ClearHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.False(t, mr.Exists(key))

	history, err := repo.GetHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	// 对已空会话幂等。
	deleted, err = repo.ClearHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestGetHistoryCorruptCacheFallsBack(t *testing.T) {
	repo, mr, _ := setupRepo(t)
	ctx := context.Background()
	key := "conversation:history:s1"

	require.NoError(t, repo.AppendMessage(ctx, "s1", "user", "hi"))
	require.NoError(t, mr.Set(key, "{definitely not json"))

	history, err := repo.GetHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hi", history[0].Content)

	// 回源后用干净数据覆盖损坏的缓存。
	cached, err := mr.Get(key)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"role":"user","content":"hi"}]`, cached)
}

func TestRedisUnavailableDegradesToDatabase(t *testing.T) {
	repo, mr, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendMessage(ctx, "s1", "user", "hi"))

	// 缓存层宕机后读写路径都必须继续工作。
	mr.Close()

	require.NoError(t, repo.AppendMessage(ctx, "s1", "assistant", "hello"))
	history, err := repo.GetHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	deleted, err := repo.ClearHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}
