package clipboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopy(t *testing.T) {
	tests := []struct {
		kind    Kind
		want    string
		message string
	}{
		{kind: KindHash, want: "abc123", message: "Hash copied to clipboard!"},
		{kind: KindPlaintext, want: "secretpw", message: "Password copied to clipboard!"},
		{kind: KindBoth, want: "abc123:secretpw", message: "Hash:Password copied to clipboard!"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			cb := &MemoryClipboard{}
			notes := &NoticeRecorder{}

			text, err := NewCopier(cb, notes).Copy(context.Background(), tt.kind, "abc123", "secretpw")
			require.NoError(t, err)

			assert.Equal(t, tt.want, text)
			assert.Equal(t, tt.want, cb.Text())
			assert.Equal(t, []Notice{{Level: "success", Message: tt.message}}, notes.Notices())
		})
	}
}

func TestCopyFailure(t *testing.T) {
	cb := &MemoryClipboard{}
	cb.FailWith(errors.New("no display"))
	notes := &NoticeRecorder{}

	_, err := NewCopier(cb, notes).Copy(context.Background(), KindBoth, "abc123", "secretpw")
	require.Error(t, err)

	assert.Empty(t, cb.Text())
	assert.Equal(t, []Notice{{Level: "error", Message: FailureMessage}}, notes.Notices())
}

func TestCopyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	notes := &NoticeRecorder{}
	_, err := NewCopier(&MemoryClipboard{}, notes).Copy(ctx, KindHash, "abc", "pw")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, notes.Notices())
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "", want: KindBoth},
		{in: "hash", want: KindHash},
		{in: "Plaintext", want: KindPlaintext},
		{in: "both", want: KindBoth},
		{in: "salt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
