package data

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/tasker/internal/domain/model"
)

func newTestCache(t *testing.T, ttl time.Duration) (*ResultCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewResultCache(client, ttl), mr
}

func completedView(id uuid.UUID) *model.TaskView {
	now := time.Now().UTC().Truncate(time.Second)
	return &model.TaskView{
		TaskUUID:    id,
		Status:      model.TaskStatusCompleted,
		TaskOutput:  map[string]any{"result": float64(5)},
		CreatedAt:   now.Add(-time.Minute),
		CompletedAt: &now,
	}
}

func TestResultCache_SetAndGetView(t *testing.T) {
	cache, mr := newTestCache(t, time.Hour)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, cache.SetView(ctx, completedView(id)))

	got, err := cache.GetView(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.TaskUUID)
	assert.Equal(t, model.TaskStatusCompleted, got.Status)
	assert.Equal(t, float64(5), got.TaskOutput["result"])

	ttl := mr.TTL("response:" + id.String())
	assert.Equal(t, time.Hour, ttl)
}

func TestResultCache_GetView_MissReturnsNil(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour)

	got, err := cache.GetView(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResultCache_GetView_ExpiredEntryIsMiss(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, cache.SetView(ctx, completedView(id)))
	mr.FastForward(2 * time.Minute)

	got, err := cache.GetView(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResultCache_GetView_IgnoresNonCompletedEntry(t *testing.T) {
	cache, mr := newTestCache(t, time.Hour)
	id := uuid.New()

	// An entry with non-terminal status can only appear through outside
	// interference; it must read as a miss, never as truth.
	poisoned, err := json.Marshal(&model.TaskView{TaskUUID: id, Status: model.TaskStatusRunning})
	require.NoError(t, err)
	require.NoError(t, mr.Set("response:"+id.String(), string(poisoned)))

	got, err := cache.GetView(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResultCache_SetView_RejectsNonCompleted(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	for _, status := range []model.TaskStatus{model.TaskStatusPending, model.TaskStatusRunning, model.TaskStatusFailed} {
		err := cache.SetView(ctx, &model.TaskView{TaskUUID: uuid.New(), Status: status})
		assert.Error(t, err, "status %s must not be cached", status)
	}

	assert.Error(t, cache.SetView(ctx, nil))
}

func TestResultCache_Health(t *testing.T) {
	cache, mr := newTestCache(t, time.Hour)
	require.NoError(t, cache.Health(context.Background()))

	mr.Close()
	assert.Error(t, cache.Health(context.Background()))
}
