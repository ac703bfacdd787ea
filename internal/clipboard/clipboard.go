// Package clipboard copies cracked hashes and passwords to a clipboard
// and reports the outcome to the user.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
)

// Kind selects what a copy button copies
type Kind string

const (
	KindHash      Kind = "hash"
	KindPlaintext Kind = "plaintext"
	KindBoth      Kind = "both"
)

// FailureMessage is shown when writing to the clipboard fails
const FailureMessage = "Failed to copy to clipboard"

var (
	ErrInvalidKind = errors.New("invalid copy kind")
	ErrUnsupported = errors.New("clipboard not available on this system")
)

// ParseKind reads a copy kind; an empty string means both
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindBoth, nil
	case KindHash, KindPlaintext, KindBoth:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Text returns the string to copy
func (k Kind) Text(hash, plaintext string) string {
	switch k {
	case KindHash:
		return hash
	case KindPlaintext:
		return plaintext
	default:
		return hash + ":" + plaintext
	}
}

// SuccessMessage is the notification shown after a successful copy
func (k Kind) SuccessMessage() string {
	switch k {
	case KindHash:
		return "Hash copied to clipboard!"
	case KindPlaintext:
		return "Password copied to clipboard!"
	default:
		return "Hash:Password copied to clipboard!"
	}
}

// Clipboard is a place text can be copied to
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard is the clipboard of the local desktop session
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}

// MemoryClipboard keeps the last copied text in memory
type MemoryClipboard struct {
	mu   sync.Mutex
	text string
	err  error
}

// FailWith makes every following write fail with err
func (m *MemoryClipboard) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemoryClipboard) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.text = text
	return nil
}

func (m *MemoryClipboard) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Notifier shows copy outcomes to the user. Success is transient,
// Alert must be acknowledged.
type Notifier interface {
	Success(message string)
	Alert(message string)
}

// LogNotifier writes notifications to the log
type LogNotifier struct{}

func (LogNotifier) Success(message string) { log.Println(message) }
func (LogNotifier) Alert(message string)   { log.Printf("ERROR: %s", message) }

// Notice is a recorded notification
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// NoticeRecorder keeps notifications so they can be sent back in a
// response.
type NoticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *NoticeRecorder) Success(message string) { n.add("success", message) }
func (n *NoticeRecorder) Alert(message string)   { n.add("error", message) }

func (n *NoticeRecorder) add(level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, Notice{Level: level, Message: message})
}

// Notices returns what was recorded so far
func (n *NoticeRecorder) Notices() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notice(nil), n.notices...)
}

// Copier writes composed text to a clipboard and notifies the result
type Copier struct {
	clipboard Clipboard
	notifier  Notifier
}

// NewCopier creates a Copier. A nil notifier logs.
func NewCopier(cb Clipboard, notifier Notifier) *Copier {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Copier{clipboard: cb, notifier: notifier}
}

// Copy places the text for kind on the clipboard. It returns the copied
// text. Failures are alerted once and not retried.
func (c *Copier) Copy(ctx context.Context, kind Kind, hash, plaintext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text := kind.Text(hash, plaintext)

	if err := c.clipboard.WriteAll(text); err != nil {
		log.Printf("failed to copy text: %v", err)
		c.notifier.Alert(FailureMessage)
		return "", fmt.Errorf("failed to copy to clipboard: %w", err)
	}

	c.notifier.Success(kind.SuccessMessage())
	return text, nil
}
