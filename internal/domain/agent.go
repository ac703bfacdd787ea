package domain

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// AgentStatus represents the status of a cracking agent
type AgentStatus string

const (
	AgentStatusOnline  AgentStatus = "online"
	AgentStatusBusy    AgentStatus = "busy"
	AgentStatusOffline AgentStatus = "offline"
	AgentStatusError   AgentStatus = "error"
)

func (s AgentStatus) IsValid() bool {
	switch s {
	case AgentStatusOnline, AgentStatusBusy, AgentStatusOffline, AgentStatusError:
		return true
	}
	return false
}

// Heartbeat settings for agents
const (
	HeartbeatInterval = 30 * time.Second
	HeartbeatTimeout  = 90 * time.Second
)

// Agent represents a hashcat worker node
type Agent struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Hostname      string      `json:"hostname"`
	APIKey        string      `json:"api_key,omitempty"`
	Status        AgentStatus `json:"status"`
	CurrentTaskID *uuid.UUID  `json:"current_task_id,omitempty"`
	LastSeen      time.Time   `json:"last_seen"`
	CreatedAt     time.Time   `json:"created_at"`
}

// IsOnline returns true if the agent has sent a heartbeat recently
func (a *Agent) IsOnline(timeout time.Duration) bool {
	return a.Status != AgentStatusOffline && time.Since(a.LastSeen) < timeout
}

// CreateAgentRequest registers a new agent
type CreateAgentRequest struct {
	Name     string `json:"name"`
	Hostname string `json:"hostname"`
}

// AgentHeartbeat is the request from an agent to update its status
type AgentHeartbeat struct {
	AgentID       string      `json:"agent_id"`
	Hostname      string      `json:"hostname"`
	Status        AgentStatus `json:"status"`
	CurrentTaskID *uuid.UUID  `json:"current_task_id,omitempty"`
}

// AgentListParams are parameters for listing agents
type AgentListParams struct {
	Status *AgentStatus
	Limit  int
	Offset int
}

const (
	apiKeyPrefix   = "api_key_"
	apiKeyLength   = 24
	apiKeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateAPIKey returns a new agent key of the form api_key_<24 alphanumerics>
func GenerateAPIKey() (string, error) {
	buf := make([]byte, apiKeyLength)
	limit := big.NewInt(int64(len(apiKeyAlphabet)))

	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf[i] = apiKeyAlphabet[n.Int64()]
	}

	return apiKeyPrefix + string(buf), nil
}
