package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	sddaemon "github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"voidnet/internal/compose"
	"voidnet/internal/docker"
	"voidnet/internal/logging"
	"voidnet/internal/overseer"
	"voidnet/internal/registration"
	"voidnet/internal/support/buildinfo"
	"voidnet/internal/uplink"
)

func main() {
	if err := logging.ConfigureJSON(logging.LevelInfo); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := rootCmd().Execute(); err != nil {
		slog.Error("uplink failed", "err", err)
		os.Exit(1)
	}
}

// uplinkEnv is the agent's process environment, read once at startup. The
// service supervisor injects these via the generated service definition.
type uplinkEnv struct {
	host          string
	port          string
	overseerURL   string
	satelliteName string
	satelliteIP   string
	apiKey        string
}

func readEnv() uplinkEnv {
	return uplinkEnv{
		host:          envOr("UPLINK_HOST", "0.0.0.0"),
		port:          envOr("UPLINK_PORT", "8001"),
		overseerURL:   os.Getenv("OVERSEER_URL"),
		satelliteName: envOr("SATELLITE_NAME", hostname()),
		satelliteIP:   os.Getenv("SATELLITE_IP"),
		apiKey:        os.Getenv("OVERSEER_API_KEY"),
	}
}

func rootCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:     "void-uplink",
		Short:   "VoidNet satellite agent",
		Version: buildinfo.Version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelInfo
			if debug {
				level = logging.LevelDebug
			}
			return logging.ConfigureJSON(level)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, readEnv())
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	return cmd
}

func run(ctx context.Context, env uplinkEnv) error {
	rt, err := docker.NewRuntime()
	if err != nil {
		return fmt.Errorf("connect container runtime: %w", err)
	}
	defer rt.Close()

	waitCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := rt.WaitReady(waitCtx); err != nil {
		return fmt.Errorf("wait for container runtime: %w", err)
	}

	srv := &uplink.Server{
		Name:     env.satelliteName,
		Version:  buildinfo.Version,
		APIKey:   env.apiKey,
		Runtime:  rt,
		Executor: compose.NewExecutor(),
		OnReady: func() {
			if _, err := sddaemon.SdNotify(false, sddaemon.SdNotifyReady); err != nil {
				slog.Debug("sd_notify failed", "err", err)
			}
		},
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx, env.host+":"+env.port)
	})
	if env.apiKey == "" && env.overseerURL != "" {
		g.Go(func() error {
			announce(ctx, env)
			return nil
		})
	}
	return g.Wait()
}

// announce performs a one-shot self-registration when the agent starts
// without a credential. The issued key is logged for the operator to wire
// into the service definition; failure is a warning, the agent serves
// regardless.
func announce(ctx context.Context, env uplinkEnv) {
	client := overseer.New(env.overseerURL, "")
	id := registration.DetectIdentity(env.satelliteName)
	if env.satelliteIP != "" {
		id.IP = env.satelliteIP
	}

	var resp overseer.RegisterResponse
	op := func() error {
		var err error
		resp, err = client.RegisterSatellite(ctx, overseer.RegisterRequest{
			Name:         id.Name,
			IPAddress:    id.IP,
			Hostname:     id.Hostname,
			Capabilities: id.Capabilities,
		})
		if overseer.IsConflict(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		slog.Warn("self-registration failed, serving unauthenticated", "err", err)
		return
	}
	slog.Info("self-registered with overseer",
		"satellite_id", resp.SatelliteID, "api_key", resp.APIKey)
	slog.Warn("restart the agent with OVERSEER_API_KEY set to enable authentication")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
