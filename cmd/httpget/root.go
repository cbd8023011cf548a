package main

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/jongio/httpio/browser"
	"github.com/jongio/httpio/cliout"
	"github.com/jongio/httpio/config"
	"github.com/jongio/httpio/httpclient"
	"github.com/jongio/httpio/keyvault"
	"github.com/jongio/httpio/logutil"
	"github.com/jongio/httpio/version"
	"github.com/spf13/cobra"
)

// deps holds the collaborators that tests replace.
type deps struct {
	// credential backs bearer tokens when a scope is configured.
	credential func() (azcore.TokenCredential, error)
	// secrets resolves Key Vault references in header values.
	secrets func() (*keyvault.Resolver, error)
	// launch opens a URL in the browser.
	launch func(browser.LaunchOptions) error
}

func defaultDeps() deps {
	credential := func() (azcore.TokenCredential, error) {
		return azidentity.NewDefaultAzureCredential(nil)
	}
	return deps{
		credential: credential,
		secrets: func() (*keyvault.Resolver, error) {
			cred, err := credential()
			if err != nil {
				return nil, err
			}
			return keyvault.NewResolver(cred), nil
		},
		launch: browser.Launch,
	}
}

// app is the state shared by all subcommands once flags are parsed.
type app struct {
	info       *version.Info
	deps       deps
	configPath string
	output     string
	color      string
	cfg        *config.Config
}

func newRootCommand(info *version.Info, d deps) *cobra.Command {
	a := &app{info: info, deps: d}

	root := &cobra.Command{
		Use:   "httpget [url]",
		Short: "Fetch a URL over HTTP or HTTPS",
		Long: `httpget validates a URL, sends a single request and prints the response
status, headers and body.

Only absolute http and https URLs with a host are accepted. The URL defaults to
` + config.DefaultURL + `.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.cfg.URL = args[0]
			}
			return a.get(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Path to a YAML config file (default $"+config.EnvConfig+")")
	pf.StringVarP(&a.output, "output", "o", "default", "Output format (default, json)")
	pf.Bool("debug", false, "Enable debug logging")
	pf.String("log-level", "", "Log level (debug, info, warn, error); overrides --debug")
	pf.StringVar(&a.color, "color", "auto", "Colorize output (auto, always, never)")
	pf.Bool("https-only", false, "Reject plain http URLs except for localhost")

	f := root.Flags()
	f.StringP("method", "X", "GET", "HTTP method")
	f.Duration("timeout", 0, "Per-attempt timeout, e.g. 10s (0 uses the configured default)")
	f.Int("retry", 0, "Extra attempts after a network error or 5xx response")
	f.StringArrayP("header", "H", nil, "Request header as 'Name: value' or 'Name=value' (repeatable)")
	f.Int64("max-size", httpclient.DefaultMaxResponseSize, "Maximum response body size in bytes")
	f.Int("rate-limit", 0, "Maximum requests per second per host (0 disables)")
	f.String("scope", "", "Azure token scope; enables bearer authentication")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address while running, e.g. :9090")
	f.String("save", "", "Write the response body to this file instead of stdout")

	root.AddCommand(
		newCheckCommand(a),
		newOpenCommand(a),
		newMCPCommand(a),
		version.NewCommand(info, &a.output),
	)
	return root
}

// setup loads the config, overlays set flags and configures logging and output.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return err
	}

	level, ok, err := cfg.Level()
	if err != nil {
		return err
	}
	logutil.SetupLogger(cfg.Debug, cfg.StructuredLogs)
	logutil.SetOutput(cmd.ErrOrStderr())
	if ok {
		logutil.SetLevel(level)
	}

	switch a.color {
	case "auto":
	case "always":
		cliout.ForceColor()
	case "never":
		cliout.NoColor()
	default:
		return fmt.Errorf("invalid --color: %s (valid options: auto, always, never)", a.color)
	}

	if err := cliout.SetFormat(cfg.Output); err != nil {
		return err
	}
	a.output = cfg.Output
	a.cfg = cfg
	return nil
}
