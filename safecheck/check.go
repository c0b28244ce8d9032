package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"safeRestServer/checker"
	"safeRestServer/scoring"
)

const (
	exitInvalid = 1
	exitBlocked = 2
)

type urlChecker interface {
	Validate(raw *string) (string, error)
	Check(ctx context.Context, url string) (*checker.Decision, bool)
}

type builder func(ctx context.Context, verbose bool) (urlChecker, func(), error)

type options struct {
	json        bool
	noBanner    bool
	failOnBlock bool
	verbose     bool
}

func newRootCmd(build builder) *cobra.Command {
	root := &cobra.Command{
		Use:           "safecheck",
		Short:         "Score URLs for phishing and scam risk",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCheckCmd(build))
	return root
}

func newCheckCmd(build builder) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "check <url>...",
		Short: "Check one or more URLs and print the recommended action",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chk, cleanup, err := build(cmd.Context(), opts.verbose)
			if err != nil {
				return err
			}
			defer cleanup()

			if !opts.json && !opts.noBanner {
				printBanner(cmd.OutOrStdout())
			}
			return runCheck(cmd.Context(), chk, args, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print one JSON decision per line")
	cmd.Flags().BoolVar(&opts.noBanner, "no-banner", false, "Do not print the banner")
	cmd.Flags().BoolVar(&opts.failOnBlock, "fail-on-block", false, "Exit with status 2 when any URL should be blocked")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log lookup failures")
	return cmd
}

func printBanner(w io.Writer) {
	fig := figure.NewFigure("safecheck", "doom", true)
	fprintf(w, "%s\n", fig.String())
}

func runCheck(ctx context.Context, chk urlChecker, urls []string, opts options, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)

	invalid, blocked := 0, 0
	for _, raw := range urls {
		url, err := chk.Validate(&raw)
		if err != nil {
			invalid++
			var ve *checker.ValidationError
			if errors.As(err, &ve) {
				fprintf(errOut, "%s: %s (%s)\n", raw, ve.Message, ve.Code)
			} else {
				fprintf(errOut, "%s: %v\n", raw, err)
			}
			continue
		}

		d, _ := chk.Check(ctx, url)
		if d.Action == scoring.Block {
			blocked++
		}

		if opts.json {
			if err := enc.Encode(d); err != nil {
				return err
			}
			continue
		}
		printDecision(out, d)
	}

	if opts.failOnBlock && blocked > 0 {
		return &exitError{code: exitBlocked, msg: fmt.Sprintf("%d URL(s) should be blocked", blocked)}
	}
	if invalid > 0 {
		return &exitError{code: exitInvalid, msg: fmt.Sprintf("%d invalid URL(s)", invalid)}
	}
	return nil
}

func actionColor(a scoring.Action) *color.Color {
	switch a {
	case scoring.Allow:
		return color.New(color.FgGreen, color.Bold)
	case scoring.Warn:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func printDecision(w io.Writer, d *checker.Decision) {
	action := actionColor(d.Action).Sprint(strings.ToUpper(string(d.Action)))
	fprintf(w, "%-5s %3d  %s  (%s)\n", action, d.Score, d.URL, d.RiskClassification)

	gray := color.New(color.FgHiBlack)
	for _, r := range d.RiskFactors {
		fprintf(w, "      %s\n", gray.Sprintf("-%d %s", r.Points, r.Code))
	}

	age := "unknown"
	if d.Details.DomainAgeDays != nil {
		age = fmt.Sprintf("%d days", *d.Details.DomainAgeDays)
	}
	sb := "not listed"
	if d.Details.SafeBrowsing.Listed {
		sb = "listed by " + d.Details.SafeBrowsing.Source
	} else if d.Details.SafeBrowsing.Note != "" {
		sb = "not listed (" + d.Details.SafeBrowsing.Note + ")"
	}
	fprintf(w, "      %s\n", gray.Sprintf("domain age: %s, feeds: %s, redirects: %d", age, sb, d.Details.Redirects))
}
