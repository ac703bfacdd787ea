package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := OpenConnection(":memory:")
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db))

	t.Cleanup(func() { db.Close() })
	return db
}

func newTask(name string, status domain.TaskStatus) *domain.Task {
	req := domain.CreateTaskRequest{
		Name:         name,
		Hashes:       []string{"5f4dcc3b5aa765d61d8327deb882cf99"},
		AttackMode:   domain.AttackModeStraight,
		WordlistPath: "rockyou.txt",
	}
	task := req.ToTask()
	task.Status = status
	return task
}

func TestRunMigrationsIsRepeatable(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, RunMigrations(db))
}

func TestTaskRepository(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(openTestDB(t))

	running := newTask("running", domain.TaskStatusPending)
	require.NoError(t, repos.Tasks.Create(ctx, running))
	require.NoError(t, repos.Tasks.Create(ctx, newTask("assigned", domain.TaskStatusAssigned)))
	require.NoError(t, repos.Tasks.Create(ctx, newTask("failed", domain.TaskStatusFailed)))

	got, err := repos.Tasks.GetByID(ctx, running.ID)
	require.NoError(t, err)
	assert.Equal(t, "running", got.Name)
	assert.Equal(t, []string{"5f4dcc3b5aa765d61d8327deb882cf99"}, got.Hashes)
	assert.Equal(t, domain.AttackModeStraight, got.AttackMode)

	_, err = repos.Tasks.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	status := domain.TaskStatusRunning
	require.NoError(t, repos.Tasks.UpdateProgress(ctx, running.ID, domain.TaskProgressUpdate{
		Status: &status, Progress: 42.5, Speed: 1_500_000,
	}))

	got, err = repos.Tasks.GetByID(ctx, running.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusRunning, got.Status)
	assert.Equal(t, 42.5, got.Progress)
	assert.NotNil(t, got.StartedAt)
	assert.Nil(t, got.CompletedAt)

	speed, err := repos.Tasks.TotalRunningSpeed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1_500_000.0, speed)

	counts, err := repos.Tasks.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.TaskStatusRunning])
	assert.Equal(t, 1, counts[domain.TaskStatusAssigned])
	assert.Equal(t, 1, counts[domain.TaskStatusFailed])

	completed := domain.TaskStatusCompleted
	require.NoError(t, repos.Tasks.UpdateProgress(ctx, running.ID, domain.TaskProgressUpdate{
		Status: &completed, Progress: 100,
	}))
	n, err := repos.Tasks.CountCompletedSince(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tasks, total, err := repos.Tasks.List(ctx, domain.TaskListParams{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, tasks, 2)

	err = repos.Tasks.UpdateProgress(ctx, uuid.New(), domain.TaskProgressUpdate{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAgentRepository(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(openTestDB(t))

	stale := &domain.Agent{
		ID: "agent-1", Name: "rig-1", APIKey: "api_key_1", Status: domain.AgentStatusOnline,
		LastSeen: time.Now().Add(-10 * time.Minute), CreatedAt: time.Now(),
	}
	fresh := &domain.Agent{
		ID: "agent-2", Name: "rig-2", APIKey: "api_key_2", Status: domain.AgentStatusOnline,
		LastSeen: time.Now(), CreatedAt: time.Now(),
	}
	require.NoError(t, repos.Agents.Create(ctx, stale))
	require.NoError(t, repos.Agents.Create(ctx, fresh))

	taskID := uuid.New()
	require.NoError(t, repos.Agents.Heartbeat(ctx, domain.AgentHeartbeat{
		AgentID: "agent-2", Hostname: "gpu-box", Status: domain.AgentStatusBusy, CurrentTaskID: &taskID,
	}))

	got, err := repos.Agents.GetByID(ctx, "agent-2")
	require.NoError(t, err)
	assert.Equal(t, domain.AgentStatusBusy, got.Status)
	assert.Equal(t, "gpu-box", got.Hostname)
	require.NotNil(t, got.CurrentTaskID)
	assert.Equal(t, taskID, *got.CurrentTaskID)

	n, err := repos.Agents.MarkOfflineAgents(ctx, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	counts, err := repos.Agents.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[domain.AgentStatus]int{domain.AgentStatusBusy: 1, domain.AgentStatusOffline: 1}, counts)

	err = repos.Agents.Heartbeat(ctx, domain.AgentHeartbeat{AgentID: "missing", Status: domain.AgentStatusOnline})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResultRepositoryFilters(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(openTestDB(t))

	task := newTask("md5", domain.TaskStatusRunning)
	require.NoError(t, repos.Tasks.Create(ctx, task))

	n, err := repos.Results.CreateBatch(ctx, domain.ResultBatch{
		TaskID: task.ID,
		Results: []domain.CrackedHash{
			{Hash: "ABCDEF01", Plaintext: "Password1"},
			{Hash: "abc99999", Plaintext: "letmein"},
			{Hash: "ffff0000", Plaintext: "100%_sure"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	tests := []struct {
		name   string
		filter domain.ResultFilter
		want   int
	}{
		{name: "no filter", filter: domain.ResultFilter{}, want: 3},
		{name: "hash prefix is case-insensitive", filter: domain.ResultFilter{HashValue: "abc"}, want: 2},
		{name: "hash must be a prefix", filter: domain.ResultFilter{HashValue: "def"}, want: 0},
		{name: "plaintext contains", filter: domain.ResultFilter{Plaintext: "PASS"}, want: 1},
		{name: "like wildcards are literal", filter: domain.ResultFilter{Plaintext: "%_"}, want: 1},
		{name: "task id", filter: domain.ResultFilter{TaskID: &task.ID}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, total, err := repos.Results.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
			assert.Len(t, results, tt.want)
		})
	}

	count, err := repos.Results.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = repos.Results.GetByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPerformanceRepositoryUpsertsHourBucket(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(openTestDB(t))

	hour := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repos.Performance.Record(ctx, &domain.PerformanceMetric{Timestamp: hour.Add(5 * time.Minute), ActiveAgents: 1}))
	require.NoError(t, repos.Performance.Record(ctx, &domain.PerformanceMetric{Timestamp: hour.Add(40 * time.Minute), ActiveAgents: 3, Speed: 2e6}))
	require.NoError(t, repos.Performance.Record(ctx, &domain.PerformanceMetric{Timestamp: hour.Add(-2 * time.Hour), ActiveAgents: 9}))

	metrics, err := repos.Performance.ListSince(ctx, hour.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, 3, metrics[0].ActiveAgents)
	assert.Equal(t, 2e6, metrics[0].Speed)
	assert.True(t, metrics[0].Timestamp.Equal(hour))
}
