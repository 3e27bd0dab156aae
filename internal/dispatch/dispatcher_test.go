package dispatch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/tasker/internal/domain/model"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *asynq.Inspector) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisOpt := asynq.RedisClientOpt{Addr: mr.Addr()}

	client := asynq.NewClient(redisOpt)
	d, err := NewDispatcher(Options{
		Client:   client,
		Queue:    "tasks",
		MaxRetry: 3,
		Timeout:  time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	inspector := asynq.NewInspector(redisOpt)
	t.Cleanup(func() { _ = inspector.Close() })
	return d, inspector
}

func TestDispatcher_Enqueue(t *testing.T) {
	d, inspector := newTestDispatcher(t)

	msg := model.DispatchMessage{
		TaskID:     uuid.New(),
		TaskName:   "sum",
		Parameters: map[string]any{"a": float64(1), "b": float64(2)},
	}
	require.NoError(t, d.Enqueue(context.Background(), msg))

	pending, err := inspector.ListPendingTasks("tasks")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	info := pending[0]
	assert.Equal(t, TypeExecuteTask, info.Type)
	assert.Equal(t, 3, info.MaxRetry)

	var got model.DispatchMessage
	require.NoError(t, json.Unmarshal(info.Payload, &got))
	assert.Equal(t, msg.TaskID, got.TaskID)
	assert.Equal(t, "sum", got.TaskName)
	assert.Equal(t, msg.Parameters, got.Parameters)
}

func TestDispatcher_Enqueue_BrokerDown_ReturnsDispatchError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	d, err := NewDispatcher(Options{Client: client})
	require.NoError(t, err)
	mr.Close()

	err = d.Enqueue(context.Background(), model.DispatchMessage{TaskID: uuid.New(), TaskName: "sum"})
	require.Error(t, err)
	var de *model.DispatchError
	assert.ErrorAs(t, err, &de)
}

func TestNewDispatcher_RequiresClient(t *testing.T) {
	_, err := NewDispatcher(Options{})
	assert.Error(t, err)
}
