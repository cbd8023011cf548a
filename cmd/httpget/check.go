package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jongio/httpio/cliout"
	"github.com/jongio/httpio/mcpserver"
	"github.com/spf13/cobra"
)

// errCheckFailed is returned after the report when any URL was rejected.
var errCheckFailed = errors.New("one or more URLs failed validation")

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <url>...",
		Short: "Validate URLs without sending requests",
		Long: `check runs every URL through the same gate httpget applies before a request
and reports the scheme, host and effective port, or the reason it was rejected.
It exits non-zero if any URL is rejected.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.check(args)
		},
	}
}

func (a *app) check(urls []string) error {
	policy := a.cfg.Policy()
	results := make([]mcpserver.ValidationResult, len(urls))
	failed := 0
	for i, raw := range urls {
		results[i] = mcpserver.Validate(policy, raw)
		if !results[i].Valid {
			failed++
		}
	}

	if err := cliout.Print(results, func() { printCheckTable(urls, results) }); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errCheckFailed, failed, len(urls))
	}
	return nil
}

func printCheckTable(urls []string, results []mcpserver.ValidationResult) {
	rows := make([]cliout.TableRow, len(results))
	for i, r := range results {
		if !r.Valid {
			rows[i] = cliout.TableRow{"URL": urls[i], "Result": "invalid (" + r.Kind + ")", "Detail": r.Error}
			continue
		}
		rows[i] = cliout.TableRow{
			"URL":    urls[i],
			"Result": "ok",
			"Scheme": r.Scheme,
			"Host":   r.Host,
			"Port":   strconv.Itoa(int(r.Port)),
		}
	}
	cliout.Table([]string{"URL", "Result", "Scheme", "Host", "Port", "Detail"}, rows)
}
