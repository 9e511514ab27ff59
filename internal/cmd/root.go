package cmd

import (
	"github.com/alecthomas/kong"
)

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto"`
	JSON    bool   `help:"JSON output to stdout; disables colors."`
	Plain   bool   `help:"TSV output to stdout; disables colors."`
	Verbose bool   `help:"Enable debug logging."`

	VersionFlag kong.VersionFlag `help:"Print version."`

	Version VersionCmd `cmd:"" help:"Print version."`
	Config  ConfigCmd  `cmd:"" help:"Manage configuration."`
	Search  SearchCmd  `cmd:"" help:"Search sports transactions."`
	URL     URLCmd     `cmd:"" name:"url" help:"Print the search URL without fetching it."`
	Fetch   FetchCmd   `cmd:"" help:"Fetch a page through the configured request handler."`
	Seen    SeenCmd    `cmd:"" help:"Seen transactions utilities."`
	Proxies ProxiesCmd `cmd:"" help:"Proxy utilities."`
}

func NewCLI() *CLI {
	return &CLI{}
}
