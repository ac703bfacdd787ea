package domain

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskRequestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  CreateTaskRequest
		want error
	}{
		{
			name: "straight with wordlist",
			req:  CreateTaskRequest{Name: "t", Hashes: []string{"abc"}, AttackMode: AttackModeStraight, WordlistPath: "rockyou.txt"},
		},
		{
			name: "missing name",
			req:  CreateTaskRequest{Hashes: []string{"abc"}},
			want: ErrTaskNameRequired,
		},
		{
			name: "blank hashes",
			req:  CreateTaskRequest{Name: "t", Hashes: []string{" ", ""}},
			want: ErrHashesRequired,
		},
		{
			name: "unknown mode",
			req:  CreateTaskRequest{Name: "t", Hashes: []string{"abc"}, AttackMode: 2},
			want: ErrInvalidAttackMode,
		},
		{
			name: "mask mode without mask",
			req:  CreateTaskRequest{Name: "t", Hashes: []string{"abc"}, AttackMode: AttackModeBruteForce},
			want: ErrMaskRequired,
		},
		{
			name: "hybrid without wordlist",
			req:  CreateTaskRequest{Name: "t", Hashes: []string{"abc"}, AttackMode: AttackModeHybridMaskWordlist, Mask: "?d?d"},
			want: ErrWordlistRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Validate())
		})
	}
}

func TestCreateTaskRequestToTask(t *testing.T) {
	req := CreateTaskRequest{
		Name:         " crack md5 ",
		Hashes:       []string{"a", " ", "b "},
		AttackMode:   AttackModeBruteForce,
		WordlistPath: "ignored.txt",
		RulePath:     "ignored.rule",
		Mask:         "?a?a?a",
	}

	task := req.ToTask()

	assert.Equal(t, "crack md5", task.Name)
	assert.Equal(t, []string{"a", "b"}, task.Hashes)
	assert.Equal(t, TaskStatusPending, task.Status)
	assert.Empty(t, task.WordlistPath)
	assert.Empty(t, task.RulePath)
	assert.Equal(t, "?a?a?a", task.Mask)
}

func TestGenerateAPIKey(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^api_key_[A-Za-z0-9]{24}$`), key)

	other, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}
