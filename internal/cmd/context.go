package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"

	"github.com/jimezsa/sportstx/internal/config"
	"github.com/jimezsa/sportstx/internal/ui"
)

type Context struct {
	Out        io.Writer
	Err        io.Writer
	UI         *ui.UI
	Config     config.Config
	ConfigDir  string
	Logger     zerolog.Logger
	Verbose    bool
	JSONOutput bool
	PlainText  bool
	Version    string
	ColorMode  ui.ColorMode
}

// requestContext returns a context carrying the logger that is cancelled on
// interrupt.
func (c *Context) requestContext() (context.Context, context.CancelFunc) {
	base := c.Logger.WithContext(context.Background())
	return signal.NotifyContext(base, os.Interrupt)
}
