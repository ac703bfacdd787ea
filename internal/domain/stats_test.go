package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTaskCounts(t *testing.T) {
	tests := []struct {
		name  string
		attrs map[string]string
		want  TaskCounts
	}{
		{
			name:  "all present",
			attrs: map[string]string{"task-pending": "3", "task-running": "2", "task-completed": "10", "task-failed": "1", "task-cancelled": "4"},
			want:  TaskCounts{Pending: 3, Running: 2, Completed: 10, Failed: 1, Cancelled: 4},
		},
		{
			name:  "missing attributes default to zero",
			attrs: map[string]string{"task-running": "5"},
			want:  TaskCounts{Running: 5},
		},
		{
			name:  "malformed and negative values are zero",
			attrs: map[string]string{"task-pending": "abc", "task-failed": "-2", "task-completed": " 7 "},
			want:  TaskCounts{Completed: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTaskCounts(func(k string) string { return tt.attrs[k] })
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAgentCounts(t *testing.T) {
	attrs := map[string]string{"agent-online": "2", "agent-offline": "x"}

	got := ParseAgentCounts(func(k string) string { return attrs[k] })

	assert.Equal(t, AgentCounts{Online: 2}, got)
	assert.Equal(t, 2, got.Total())
}

func TestCountBuckets(t *testing.T) {
	var tc TaskCounts
	tc.AddTaskStatus(TaskStatusAssigned, 2)
	tc.AddTaskStatus(TaskStatusPending, 1)
	tc.AddTaskStatus(TaskStatusCancelled, 3)
	assert.Equal(t, TaskCounts{Pending: 3, Cancelled: 3}, tc)

	var ac AgentCounts
	ac.AddAgentStatus(AgentStatusError, 1)
	ac.AddAgentStatus(AgentStatusOffline, 1)
	ac.AddAgentStatus(AgentStatusBusy, 4)
	assert.Equal(t, AgentCounts{Busy: 4, Offline: 2}, ac)
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "50%", FormatPercent(50))
	assert.Equal(t, "42.5%", FormatPercent(42.5))
	assert.Equal(t, "0%", FormatPercent(0))
}
