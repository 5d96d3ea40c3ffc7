package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/bnema/dexplore/internal/adapters/in/cli/ui/styles"
	"github.com/bnema/dexplore/internal/domain"
)

const shortIDLength = 12

var cliWriteLine = func(w io.Writer, msg string) error {
	_, err := fmt.Fprintln(w, msg)
	return err
}

var cliWritef = func(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

// isTerminal reports whether w is an interactive terminal. Styled output
// is only rendered there.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func cliRenderSuccess(w io.Writer, msg string) string {
	if !isTerminal(w) {
		return msg
	}
	return styles.RenderSuccess(msg)
}

func cliRenderListItem(w io.Writer, msg string) string {
	if !isTerminal(w) {
		return msg
	}
	return styles.RenderListItem(msg)
}

func formatShortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}

func formatCreated(raw string, now time.Time) string {
	created, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		if raw == "" {
			return "-"
		}
		return raw
	}
	return humanize.RelTime(created, now, "ago", "from now")
}

func formatState(running, styled bool) string {
	if styled {
		return styles.RenderState(running)
	}
	if running {
		return "running"
	}
	return "stopped"
}

func formatPorts(c *domain.Container) string {
	if len(c.ExposedPorts) == 0 {
		return "-"
	}
	ports := make([]string, 0, len(c.ExposedPorts))
	for port := range c.ExposedPorts {
		ports = append(ports, string(port))
	}
	sort.Strings(ports)
	return strings.Join(ports, ", ")
}
