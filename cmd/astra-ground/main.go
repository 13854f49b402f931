package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/tidwall/gjson"

	"github.com/ghalamif/AstraLink"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "status":
		err = statusCommand(os.Args[2:], os.Stdout)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "astra-ground %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func runCommand(args []string) error {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	cfgPath := fs.StringP("config", "c", "./data/config.yaml", "path to ground station configuration file")
	feed := fs.String("feed", "", "override feed.kind (websocket, opcua, lines, sim)")
	logLevel := fs.String("log-level", "info", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level, err := parseLevel(*logLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	flow, err := astralink.Conf(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *feed != "" {
		flow.Config().Feed.Kind = *feed
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return flow.Run(ctx)
}

func validateCommand(args []string) error {
	fs := pflag.NewFlagSet("validate", pflag.ContinueOnError)
	cfgPath := fs.StringP("config", "c", "./data/config.yaml", "path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := astralink.LoadConfig(*cfgPath)
	if err != nil {
		return err
	}
	fmt.Printf("config %s looks good (feed=%s, history=%d, packet_log=%d)\n",
		*cfgPath, cfg.Feed.Kind, cfg.Window.HistorySize, cfg.Window.PacketLogSize)
	return nil
}

func statusCommand(args []string, w io.Writer) error {
	fs := pflag.NewFlagSet("status", pflag.ContinueOnError)
	url := fs.String("url", "http://localhost:9100/snapshot", "snapshot endpoint of a running ground station")
	interval := fs.Duration("interval", 2*time.Second, "refresh interval")
	once := fs.Bool("once", false, "print a single status line and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client := &http.Client{Timeout: 5 * time.Second}
	if *once {
		return printStatus(client, *url, w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Fprintf(w, "Polling %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printStatus(client, *url, w); err != nil {
				fmt.Fprintf(os.Stderr, "status error: %v\n", err)
			}
		}
	}
}

func printStatus(client *http.Client, url string, w io.Writer) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("snapshot is not valid JSON")
	}
	_, err = fmt.Fprintln(w, formatStatus(body))
	return err
}

func formatStatus(body []byte) string {
	res := gjson.GetManyBytes(body,
		"mission.flight_stage",
		"mission.recovery_status",
		"summary.current_altitude",
		"summary.current_velocity",
		"summary.max_altitude",
		"summary.flight_time",
		"signal_strength",
		"ingested",
	)
	return fmt.Sprintf("t=%.1fs stage=%s recovery=%s alt=%.1fm vel=%.1fm/s max_alt=%.1fm signal=%s samples=%d",
		res[5].Float(),
		res[0].String(),
		res[1].String(),
		res[2].Float(),
		res[3].Float(),
		res[4].Float(),
		bars(res[6]),
		res[7].Uint(),
	)
}

func bars(signal gjson.Result) string {
	var b strings.Builder
	signal.ForEach(func(_, lit gjson.Result) bool {
		if lit.Bool() {
			b.WriteByte('|')
		} else {
			b.WriteByte('.')
		}
		return true
	})
	return b.String()
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func printUsage() {
	fmt.Printf(`AstraLink ground station

Usage:
  astra-ground <command> [flags]

Commands:
  run        Start the ground runtime using the provided config
  validate   Load and validate a config file without starting the runtime
  status     Poll a running station's /snapshot endpoint and print mission state

Examples:
  astra-ground run --config ./data/config.yaml
  astra-ground run --config ./data/config.yaml --feed sim
  astra-ground validate --config ./data/config.yaml
  astra-ground status --url http://localhost:9100/snapshot --interval 1s
`)
}
