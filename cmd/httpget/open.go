package main

import (
	"fmt"
	"time"

	"github.com/jongio/httpio/browser"
	"github.com/jongio/httpio/cliout"
	"github.com/spf13/cobra"
)

func newOpenCommand(a *app) *cobra.Command {
	var target string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "open <url>",
		Short: "Validate a URL and open it in the browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !browser.IsValid(target) {
				return fmt.Errorf("invalid browser target %q (valid targets: %s)", target, browser.FormatValidTargets())
			}
			u, err := a.cfg.Policy().Check(args[0])
			if err != nil {
				return err
			}

			err = a.deps.launch(browser.LaunchOptions{
				URL:     u.String(),
				Target:  browser.Target(target),
				Timeout: timeout,
				Wait:    true,
			})
			if err != nil {
				return err
			}
			if !cliout.IsJSON() {
				cliout.Success("Opened %s in %s", u, browser.GetTargetDisplayName(browser.Target(target)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "browser", string(browser.TargetDefault), "Browser target ("+browser.FormatValidTargets()+")")
	cmd.Flags().DurationVar(&timeout, "launch-timeout", browser.DefaultTimeout, "How long to wait for the browser to start")
	return cmd
}
