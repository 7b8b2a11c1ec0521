package audit

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Audit event kinds, written verbatim to the log.
const (
	EventClientDisconnected = "CLIENT_DISCONNECTED"
	EventInvalidMessage     = "INVALID_MESSAGE"
	EventSendFailure        = "SEND_FAILURE"
	EventProcessingError    = "PROCESSING_ERROR"
)

const header = "log_id,timestamp,connection_id,event\n"

// Logger is the append-only event sink consumed by the hub.
type Logger interface {
	Log(connectionID, event string)
}

// FileLog appends audit rows to a CSV file, newest at the end. The
// header row is written exactly once, when the file does not yet exist.
type FileLog struct {
	mu      sync.Mutex
	path    string
	counter int64
	now     func() time.Time
	onError func(error)
}

// NewFileLog opens (or creates) the audit log at path. onError receives
// write failures; pass nil to discard them.
func NewFileLog(path string, onError func(error)) (*FileLog, error) {
	l := &FileLog{
		path:    path,
		now:     time.Now,
		onError: onError,
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(header), 0o644); err != nil {
			return nil, fmt.Errorf("create audit log %s: %w", path, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat audit log %s: %w", path, err)
	}
	return l, nil
}

// Log appends one row: log_id, ISO-8601 UTC timestamp, connection id,
// event. Failures go to the error callback, never to the caller.
func (l *FileLog) Log(connectionID, event string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counter++
	row := fmt.Sprintf("%d,%s,%s,%s\n",
		l.counter, l.now().UTC().Format(time.RFC3339Nano), connectionID, event)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.fail(err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(row); err != nil {
		l.fail(err)
	}
}

func (l *FileLog) fail(err error) {
	if l.onError != nil {
		l.onError(err)
	}
}
