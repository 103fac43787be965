package observability

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

var startTime = time.Now()

const (
	colorReset    = "\033[0m"
	colorNeonCyan = "\033[96m"
)

// termMu synchronizes all terminal output so log lines never interleave
// with a progress redraw.
var termMu sync.Mutex

// ------------------------------------------------------------
// Utility
// ------------------------------------------------------------

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

// LockTerminal serialises a multi-write redraw with log output.
func LockTerminal() func() {
	termMu.Lock()
	return termMu.Unlock
}

// ------------------------------------------------------------
// TermWriter – a mutex-guarded io.Writer for log output.
// ------------------------------------------------------------

type termWriter struct{}

func (tw termWriter) Write(p []byte) (n int, err error) {
	termMu.Lock()
	defer termMu.Unlock()
	return os.Stderr.Write(p)
}

// NewTermWriter returns an io.Writer suitable for log.SetOutput().
func NewTermWriter() io.Writer {
	return termWriter{}
}

// ------------------------------------------------------------
// Banner
// ------------------------------------------------------------

func PrintBanner(w io.Writer) {
	banner := `
 _    ______  __  _____   ____________
| |  / / __ \ \ \/ /   | / ____/ ____/
| | / / / / /  \  / /| |/ / __/ __/
| |/ / /_/ /   / / ___ / /_/ / /___
|___/\____/   /_/_/  |_\____/_____/

     >> MULTI-AGENT TRAVEL CONCIERGE <<
`

	width := termWidth()
	for _, l := range strings.Split(banner, "\n") {
		padding := (width - len(l)) / 2
		if padding < 0 {
			padding = 0
		}
		fmt.Fprintf(w, "%s%s%s\n", strings.Repeat(" ", padding), colorNeonCyan+l, colorReset)
	}
}

// ------------------------------------------------------------
// Status
// ------------------------------------------------------------

// StatusLine summarises the process state in one plain-text line.
func StatusLine() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stage, requestID, lastHB := GetStatus()

	uptime := time.Since(startTime).Round(time.Second)
	memMB := float64(m.Alloc) / 1024 / 1024

	task := requestID
	if task == "" {
		task = "Waiting..."
	}

	return fmt.Sprintf("[%s] stage=%s request=%s uptime=%v mem=%.1fMB",
		lastHB.Format("15:04:05"), stage, task, uptime, memMB)
}
