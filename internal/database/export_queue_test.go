package database

import (
	"context"
	"testing"
	"time"

	"gymdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportQueueLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	task := &models.ExportTask{
		TaskType: "schedule",
		Payload:  `{"start":"2025-06-02","end":"2025-06-15"}`,
		Status:   "pending",
	}
	require.NoError(t, db.CreateExportTask(ctx, task))
	assert.NotZero(t, task.ID)

	pending, err := db.GetPendingExportTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "schedule", pending[0].TaskType)

	require.NoError(t, db.UpdateExportTaskStatus(ctx, task.ID, "completed", "", nil))

	pending, err = db.GetPendingExportTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestExportQueue_RetryScheduling(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	task := &models.ExportTask{TaskType: "schedule", Payload: "{}", Status: "pending"}
	require.NoError(t, db.CreateExportTask(ctx, task))

	// retry in the future is not picked up
	future := time.Now().Add(time.Hour)
	require.NoError(t, db.UpdateExportTaskStatus(ctx, task.ID, "retry", "boom", &future))

	pending, err := db.GetPendingExportTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// retry in the past is picked up with the incremented count
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.UpdateExportTaskStatus(ctx, task.ID, "retry", "boom again", &past))

	pending, err = db.GetPendingExportTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].RetryCount)
	assert.Equal(t, "boom again", pending[0].LastError)
}
