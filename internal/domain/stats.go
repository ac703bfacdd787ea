package domain

import (
	"strconv"
	"strings"
)

// TaskCounts holds the number of tasks per lifecycle state
type TaskCounts struct {
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// AgentCounts holds the number of agents per state
type AgentCounts struct {
	Online  int `json:"online"`
	Busy    int `json:"busy"`
	Offline int `json:"offline"`
}

// Stats contains dashboard statistics
type Stats struct {
	Tasks   TaskCounts  `json:"tasks"`
	Agents  AgentCounts `json:"agents"`
	Results int         `json:"results"`
}

// Segment is one labelled value of a status breakdown
type Segment struct {
	Label string
	Key   string
	Value int
	Color string
}

// Attribute keys as embedded in the dashboard's #chart-data element,
// without the data- prefix.
const (
	AttrTaskPending   = "task-pending"
	AttrTaskRunning   = "task-running"
	AttrTaskCompleted = "task-completed"
	AttrTaskFailed    = "task-failed"
	AttrTaskCancelled = "task-cancelled"
	AttrAgentOnline   = "agent-online"
	AttrAgentBusy     = "agent-busy"
	AttrAgentOffline  = "agent-offline"
)

// Segments returns the breakdown in display order
func (c TaskCounts) Segments() []Segment {
	return []Segment{
		{Label: "Pending", Key: AttrTaskPending, Value: c.Pending, Color: "#FBBF24"},
		{Label: "Running", Key: AttrTaskRunning, Value: c.Running, Color: "#3B82F6"},
		{Label: "Completed", Key: AttrTaskCompleted, Value: c.Completed, Color: "#10B981"},
		{Label: "Failed", Key: AttrTaskFailed, Value: c.Failed, Color: "#EF4444"},
		{Label: "Cancelled", Key: AttrTaskCancelled, Value: c.Cancelled, Color: "#6B7280"},
	}
}

func (c TaskCounts) Total() int {
	return c.Pending + c.Running + c.Completed + c.Failed + c.Cancelled
}

// Segments returns the breakdown in display order
func (c AgentCounts) Segments() []Segment {
	return []Segment{
		{Label: "Online", Key: AttrAgentOnline, Value: c.Online, Color: "#10B981"},
		{Label: "Busy", Key: AttrAgentBusy, Value: c.Busy, Color: "#3B82F6"},
		{Label: "Offline", Key: AttrAgentOffline, Value: c.Offline, Color: "#6B7280"},
	}
}

func (c AgentCounts) Total() int {
	return c.Online + c.Busy + c.Offline
}

// AddTaskStatus counts one task in the bucket for its status.
// Assigned tasks have not started yet and count as pending.
func (c *TaskCounts) AddTaskStatus(s TaskStatus, n int) {
	switch s {
	case TaskStatusPending, TaskStatusAssigned:
		c.Pending += n
	case TaskStatusRunning:
		c.Running += n
	case TaskStatusCompleted:
		c.Completed += n
	case TaskStatusFailed:
		c.Failed += n
	case TaskStatusCancelled:
		c.Cancelled += n
	}
}

// AddAgentStatus counts agents in the bucket for their status.
// Agents in error cannot take work and count as offline.
func (c *AgentCounts) AddAgentStatus(s AgentStatus, n int) {
	switch s {
	case AgentStatusOnline:
		c.Online += n
	case AgentStatusBusy:
		c.Busy += n
	case AgentStatusOffline, AgentStatusError:
		c.Offline += n
	}
}

// ParseTaskCounts reads task counts through lookup, keyed by the
// Attr* names. Missing or malformed values count as zero.
func ParseTaskCounts(lookup func(key string) string) TaskCounts {
	return TaskCounts{
		Pending:   parseCount(lookup(AttrTaskPending)),
		Running:   parseCount(lookup(AttrTaskRunning)),
		Completed: parseCount(lookup(AttrTaskCompleted)),
		Failed:    parseCount(lookup(AttrTaskFailed)),
		Cancelled: parseCount(lookup(AttrTaskCancelled)),
	}
}

// ParseAgentCounts is ParseTaskCounts for agents
func ParseAgentCounts(lookup func(key string) string) AgentCounts {
	return AgentCounts{
		Online:  parseCount(lookup(AttrAgentOnline)),
		Busy:    parseCount(lookup(AttrAgentBusy)),
		Offline: parseCount(lookup(AttrAgentOffline)),
	}
}

func parseCount(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// FormatPercent prints a percentage without trailing zeros, e.g. 42.5%
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
