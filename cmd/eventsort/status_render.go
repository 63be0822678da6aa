package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"

	"eventsort/internal/progress"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusStyles = map[statusKind]struct {
	tag   string
	color text.Color
}{
	statusInfo:  {"INFO", text.FgBlue},
	statusOK:    {"OK", text.FgGreen},
	statusWarn:  {"WARN", text.FgYellow},
	statusError: {"ERROR", text.FgRed},
}

// statusPrinter writes aligned "Label: [TAG] message" lines, colored only
// when out is a terminal and NO_COLOR is unset.
type statusPrinter struct {
	out   io.Writer
	color bool
}

func newStatusPrinter(out io.Writer) statusPrinter {
	_, noColor := os.LookupEnv("NO_COLOR")
	return statusPrinter{out: out, color: !noColor && progress.IsTerminal(out)}
}

func (p statusPrinter) line(label string, kind statusKind, message string) {
	fmt.Fprintln(p.out, p.format(label, kind, message))
}

func (p statusPrinter) format(label string, kind statusKind, message string) string {
	style, ok := statusStyles[kind]
	if !ok {
		style = statusStyles[statusInfo]
	}
	s := fmt.Sprintf("%-12s [%s]", label+":", style.tag)
	if message != "" {
		s += " " + message
	}
	if p.color {
		return style.color.Sprint(s)
	}
	return s
}
