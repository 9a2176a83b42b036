package paste

import (
	"io"
	"net"
	"time"

	"github.com/staticbackendhq/imgpaste/logger"
)

// Editor is the part of the host text editor the orchestrator needs.
// Offsets are rune offsets into the document.
type Editor interface {
	Cursor() int
	String() string
	ReplaceSelection(text string)
	ReplaceRange(text string, start, end int)
}

// Notifier shows a short transient message to the user.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

// LogNotifier reports notices through the logger.
type LogNotifier struct {
	Log *logger.Logger
}

func (n LogNotifier) Notify(msg string) {
	n.Log.Info().Msg(msg)
}

// Connectivity tells whether the host believes it is online.
type Connectivity interface {
	Online() bool
}

// AlwaysOnline is for hosts without a connectivity signal.
type AlwaysOnline struct{}

func (AlwaysOnline) Online() bool { return true }

// ProbeConnectivity dials Addr and reports online when the dial succeeds.
type ProbeConnectivity struct {
	Addr    string
	Timeout time.Duration
}

// DefaultProbe dials the Cloud Storage endpoint.
func DefaultProbe() ProbeConnectivity {
	return ProbeConnectivity{Addr: "storage.googleapis.com:443", Timeout: 2 * time.Second}
}

func (p ProbeConnectivity) Online() bool {
	conn, err := net.DialTimeout("tcp", p.Addr, p.Timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Item is one clipboard entry.
type Item struct {
	MimeType string
	Name     string
	Data     io.Reader
}

// Event is a paste carrying the clipboard items, only the last one counts.
type Event struct {
	Items []Item
}

// Clock schedules f after d. Tests replace it to fire timers by hand.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
