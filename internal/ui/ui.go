package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ANSI palette indices used for message levels.
const (
	colorError   = "1"
	colorSuccess = "2"
	colorWarn    = "3"
	colorInfo    = "4"
)

// UI writes user-facing messages. Results go to Out, diagnostics to Err.
type UI struct {
	Out          io.Writer
	Err          io.Writer
	Output       *termenv.Output
	ErrOutput    *termenv.Output
	ColorEnabled bool
}

func New(out io.Writer, err io.Writer, mode ColorMode, disableColor bool) *UI {
	output := termenv.NewOutput(out)
	return &UI{
		Out:          out,
		Err:          err,
		Output:       output,
		ErrOutput:    termenv.NewOutput(err),
		ColorEnabled: colorEnabled(output, mode, disableColor),
	}
}

func colorEnabled(output *termenv.Output, mode ColorMode, disableColor bool) bool {
	if disableColor {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return output.ColorProfile() != termenv.Ascii
	}
}

func (u *UI) Errorf(format string, args ...any) {
	u.emit(u.Err, u.ErrOutput, colorError, format, args...)
}

func (u *UI) Warnf(format string, args ...any) {
	u.emit(u.Err, u.ErrOutput, colorWarn, format, args...)
}

func (u *UI) Infof(format string, args ...any) {
	u.emit(u.Out, u.Output, colorInfo, format, args...)
}

func (u *UI) Successf(format string, args ...any) {
	u.emit(u.Out, u.Output, colorSuccess, format, args...)
}

func (u *UI) emit(w io.Writer, output *termenv.Output, color string, format string, args ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	if u.ColorEnabled && output != nil {
		msg = output.String(msg).Foreground(output.Color(color)).String()
	}
	fmt.Fprintln(w, msg)
}

// IsTerminal reports whether Out is attached to a terminal.
func (u *UI) IsTerminal() bool {
	return isTerminal(u.Out)
}

// ErrIsTerminal reports whether Err is attached to a terminal.
func (u *UI) ErrIsTerminal() bool {
	return isTerminal(u.Err)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func NormalizeColorMode(value string) ColorMode {
	switch ColorMode(strings.ToLower(strings.TrimSpace(value))) {
	case ColorAlways:
		return ColorAlways
	case ColorNever:
		return ColorNever
	default:
		return ColorAuto
	}
}
