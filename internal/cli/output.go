package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/redscript/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Printer writes script replies and errors. Pretty output mimics redis-cli;
// otherwise every reply is one JSON document per line.
type Printer struct {
	out    io.Writer
	errOut *termenv.Output
	pretty bool
}

// NewPrinter writes to stdout and stderr, choosing pretty output when stdout
// is a terminal unless forceJSON is set.
func NewPrinter(forceJSON bool) *Printer {
	pretty := !forceJSON && term.IsTerminal(int(os.Stdout.Fd()))
	return NewPrinterTo(os.Stdout, os.Stderr, pretty)
}

// NewPrinterTo is NewPrinter with explicit destinations.
func NewPrinterTo(out, errOut io.Writer, pretty bool) *Printer {
	return &Printer{
		out:    out,
		errOut: termenv.NewOutput(errOut),
		pretty: pretty,
	}
}

// Result prints a script reply.
func (p *Printer) Result(res any) error {
	if !p.pretty {
		return json.NewEncoder(p.out).Encode(res)
	}
	_, err := fmt.Fprintln(p.out, FormatReply(res))
	return err
}

// Error prints err. Script errors get their source positions highlighted.
func (p *Printer) Error(err error) {
	if !p.pretty {
		resp := map[string]string{"error": err.Error()}
		var serr *domain.ScriptError
		if errors.As(err, &serr) {
			resp["script"] = serr.Script
			if serr.Prelude != "" {
				resp["prelude"] = serr.Prelude
			}
		}
		_ = json.NewEncoder(p.errOut).Encode(resp)
		return
	}

	label := p.errOut.String("(error)").Foreground(p.errOut.Color("1")).Bold()
	msg := err.Error()

	var serr *domain.ScriptError
	if errors.As(err, &serr) {
		msg = p.highlight(msg, serr.Script)
		if serr.Prelude != "" {
			msg = p.highlight(msg, serr.Prelude)
		}
	}
	fmt.Fprintf(p.errOut, "%s %s\n", label, msg)
}

func (p *Printer) highlight(msg, path string) string {
	return strings.ReplaceAll(msg, path+":", p.errOut.String(path).Underline().String()+":")
}

// FormatReply renders a reply the way redis-cli does.
func FormatReply(v any) string {
	var b strings.Builder
	formatReply(&b, v, 0)
	return b.String()
}

func formatReply(b *strings.Builder, v any, indent int) {
	switch val := v.(type) {
	case nil:
		b.WriteString("(nil)")
	case string:
		fmt.Fprintf(b, "%q", val)
	case int64:
		fmt.Fprintf(b, "(integer) %d", val)
	case []any:
		if len(val) == 0 {
			b.WriteString("(empty array)")
			return
		}
		width := len(fmt.Sprint(len(val)))
		for i, item := range val {
			if i > 0 {
				b.WriteString("\n")
				b.WriteString(strings.Repeat(" ", indent))
			}
			prefix := fmt.Sprintf("%*d) ", width, i+1)
			b.WriteString(prefix)
			formatReply(b, item, indent+len(prefix))
		}
	default:
		fmt.Fprintf(b, "%v", val)
	}
}
