package gateway

import (
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/rahul/voyage/internal/agent"
	"github.com/rahul/voyage/internal/observability"
)

const clearScreen = "\033[2J\033[H"

// Terminal renders pipeline progress on a console.
type Terminal struct {
	Out io.Writer
	// Interactive redraws the whole log on every event instead of appending.
	Interactive bool
}

func NewTerminal(out *os.File) *Terminal {
	return &Terminal{Out: out, Interactive: observability.IsTerminal(out)}
}

// Render prints every event and returns the final one.
func (t *Terminal) Render(events iter.Seq[agent.ProgressEvent]) agent.ProgressEvent {
	var last agent.ProgressEvent
	shown := ""

	for evt := range events {
		unlock := observability.LockTerminal()
		if t.Interactive {
			fmt.Fprint(t.Out, clearScreen+evt.Log)
			if !evt.Final {
				fmt.Fprintf(t.Out, "\n%s\n", evt.Result)
			}
		} else if strings.HasPrefix(evt.Log, shown) {
			fmt.Fprint(t.Out, evt.Log[len(shown):])
		} else {
			fmt.Fprint(t.Out, evt.Log)
		}
		shown = evt.Log

		if evt.Final {
			if !strings.HasSuffix(evt.Log, "\n") {
				fmt.Fprintln(t.Out)
			}
			if evt.Result != "" {
				fmt.Fprintf(t.Out, "\n%s\n", evt.Result)
			}
		}
		unlock()
		last = evt
	}
	return last
}
