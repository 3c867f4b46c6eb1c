package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/UnknownOlympus/roster-console/internal/client"
	"github.com/UnknownOlympus/roster-console/internal/config"
	"github.com/UnknownOlympus/roster-console/internal/metrics"
	"github.com/UnknownOlympus/roster-console/internal/render"
)

// app carries the dependencies shared by every command. They are built in the root pre-run hook.
type app struct {
	configPath string

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	cfg     *config.Config
	log     *slog.Logger
	reg     *prometheus.Registry
	metrics *metrics.Metrics
	tokens  *client.TokenStore
	api     *client.APIClient
	render  *render.Renderer
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{in: bufio.NewReader(in), out: out, errOut: errOut}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "roster",
		Short:             "Roster admin console: divisions, employees and score records",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return a.setup() },
	}
	cmd.SetIn(a.in)
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to the YAML config file (defaults to $CONFIG_PATH)")

	cmd.AddCommand(newLoginCmd(a))
	cmd.AddCommand(newLogoutCmd(a))
	cmd.AddCommand(newWhoamiCmd(a))
	cmd.AddCommand(newDivisionsCmd(a))
	cmd.AddCommand(newEmployeesCmd(a))
	cmd.AddCommand(newScoresCmd(a))
	cmd.AddCommand(newBrowseCmd(a))
	cmd.AddCommand(newMirrorCmd(a))

	return cmd
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = setupLogger(cfg.Env, a.errOut)

	// Create a separate registry for metrics
	a.reg = prometheus.NewRegistry()
	a.reg.MustRegister(collectors.NewGoCollector())
	a.reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.NewMetrics(a.reg)

	// An explicitly configured token wins over the one saved by `login`.
	a.tokens = client.NewTokenStore(a.log, cfg.API.Token, cfg.API.TokenFile)
	if cfg.API.Token == "" {
		if err = a.tokens.Load(); err != nil {
			return err
		}
	}

	a.api, err = client.NewAPIClient(a.log, client.CreateHTTPClient(a.log, cfg.API.Timeout),
		cfg.API.URL, cfg.API.AssetOrigin, a.tokens, a.metrics)
	if err != nil {
		return err
	}
	a.render = render.New(a.out)

	return nil
}

// prompt writes label and returns the next input line without its line ending.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)

	line, err := a.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// confirmDelete asks the Cancel/Delete question. Anything but "d" or "delete" cancels.
func (a *app) confirmDelete(label string) (bool, error) {
	answer, err := a.prompt(fmt.Sprintf("Delete %s? [c]ancel/[d]elete: ", label))
	if err != nil {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "d", "delete":
		return true, nil
	default:
		return false, nil
	}
}
