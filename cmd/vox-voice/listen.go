package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/vox-portal/internal/bootstrap"
	"github.com/bobmcallan/vox-portal/internal/page"
	"github.com/bobmcallan/vox-portal/internal/portal"
	"github.com/bobmcallan/vox-portal/internal/voice"
)

// listenOptions holds flags for the listen command.
type listenOptions struct {
	*rootOptions
	Page string
}

// tabState is the page state printed when a listen session ends.
type tabState struct {
	Page       string          `json:"page"`
	History    []string        `json:"history"`
	Background string          `json:"background,omitempty"`
	Alerts     []string        `json:"alerts,omitempty"`
	Ticker     string          `json:"ticker,omitempty"`
	Chart      *page.ChartSpec `json:"chart,omitempty"`
	Breed      *page.Detail    `json:"breed,omitempty"`
	Utterances int             `json:"utterances"`
}

func newListenCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &listenOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Dispatch utterances read from stdin against a headless page",
		Long: `Open a headless page and dispatch each line of stdin as one utterance.

Alternatives of a single utterance are separated by "|" and tried in order.
When input ends the resulting page state is printed.

Example:
  echo "navigate to stocks" | vox-voice listen
  printf 'lookup msft\nchange the color to teal\n' | vox-voice listen --page stocks --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListen(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Page, "page", "home", "page to open first (home|stocks|dogs)")

	return cmd
}

func runListen(opts *listenOptions, cmd *cobra.Command) error {
	kind, ok := page.ParseKind(opts.Page)
	if !ok {
		return fmt.Errorf("unknown page %q", opts.Page)
	}

	cfg, err := opts.load()
	if err != nil {
		return err
	}
	logger := opts.logger(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := portal.New(cfg, logger)
	tab := svc.NewTab(ctx, kind)
	defer tab.Close()

	out := cmd.OutOrStdout()
	if opts.Format == "text" {
		unsubscribe := svc.Router.Subscribe(func(m voice.Match, matched bool) {
			if !matched {
				fmt.Fprintf(out, "no match: %s\n", m.Phrase)
				return
			}
			fmt.Fprintf(out, "%s -> %s %s\n", m.Phrase, m.Pattern, strings.Join(m.Args, " "))
		})
		defer unsubscribe()
	}

	rec := voice.NewLineRecognizer(cmd.InOrStdin())
	defer rec.Close()

	session, err := svc.Router.Listen(ctx, rec, tab, voice.SessionOptions{
		Continuous:  cfg.Voice.Continuous,
		AutoRestart: cfg.Voice.AutoRestart,
	})
	if err != nil {
		return err
	}
	if err := session.Wait(); err != nil {
		return fmt.Errorf("recognition failed: %w", err)
	}

	return printState(out, opts.Format, snapshot(tab, session.Utterances()))
}

func snapshot(tab *bootstrap.Tab, utterances int) tabState {
	doc := tab.Document()
	st := tabState{Page: string(doc.Kind), Utterances: utterances}
	for _, k := range tab.History() {
		st.History = append(st.History, string(k))
	}
	st.Background = doc.Background()
	st.Alerts = doc.Alerts()
	if doc.Form != nil {
		st.Ticker, _ = doc.Form.Values()
	}
	if doc.Chart != nil {
		if spec, ok := doc.Chart.Current(); ok {
			st.Chart = &spec
		}
	}
	if doc.Breeds != nil {
		if d := doc.Breeds.Detail(); d.Visible {
			st.Breed = &d
		}
	}
	return st
}

func printState(w io.Writer, format string, st tabState) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	fmt.Fprintf(w, "page: %s (history %s)\n", st.Page, strings.Join(st.History, " > "))
	if st.Background != "" {
		fmt.Fprintf(w, "background: %s\n", st.Background)
	}
	for _, a := range st.Alerts {
		fmt.Fprintf(w, "alert: %s\n", a)
	}
	if st.Ticker != "" {
		fmt.Fprintf(w, "ticker: %s\n", st.Ticker)
	}
	if st.Chart != nil {
		fmt.Fprintf(w, "chart: %d points\n", len(st.Chart.Labels))
	}
	if st.Breed != nil {
		fmt.Fprintf(w, "breed: %s (%s, %s)\n", st.Breed.Name, st.Breed.Temperament, st.Breed.LifeSpan)
	}
	return nil
}
