// timeclockctl is the operator CLI: it mints development credentials and
// triggers or inspects background jobs.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/pflag"

	"github.com/schooner-time/timeclock/cmd/timeclockctl/cli"
	"github.com/schooner-time/timeclock/internal/app"
	"github.com/schooner-time/timeclock/internal/auth"
)

const usage = `usage: timeclockctl <command> [flags]

commands:
  token                 mint a signed credential
  jobs trigger <name>   enqueue a job (stale-scan)
  jobs stats            show default queue counters
  jobs scheduled        list scheduled tasks
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	switch args[0] {
	case "token":
		return runToken(cfg, args[1:])
	case "jobs":
		return runJobs(ctx, cfg, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
}

func runToken(cfg *app.Config, args []string) int {
	var opts cli.TokenOptions
	flagSet := pflag.NewFlagSet("token", pflag.ContinueOnError)
	flagSet.StringVar(&opts.Subject, "sub", "", "user id (uuid) to embed as subject")
	flagSet.StringVar(&opts.Role, "role", "employee", "role claim: employee or manager")
	flagSet.StringVar(&opts.Email, "email", "", "email claim")
	flagSet.DurationVar(&opts.TTL, "ttl", cfg.JWTTTL, "credential lifetime")
	flagSet.BoolVar(&opts.JSONOutput, "json", false, "print JSON instead of the bare token")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}
	gateCfg := auth.GateConfig{Secret: []byte(cfg.JWTSecret), Issuer: cfg.JWTIssuer, Audience: cfg.JWTAudience}
	return cli.TokenCommand(gateCfg, opts)
}

func runJobs(ctx context.Context, cfg *app.Config, args []string) int {
	var staleAfter time.Duration
	var size int
	flagSet := pflag.NewFlagSet("jobs", pflag.ContinueOnError)
	flagSet.DurationVar(&staleAfter, "stale-after", cfg.StaleEntryAfter, "stale scan threshold")
	flagSet.IntVar(&size, "size", 10, "page size for scheduled")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}
	rest := flagSet.Args()
	if len(rest) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	jc, err := cli.NewJobsCLI(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
		return 1
	}
	defer func() { _ = jc.Close() }()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	switch rest[0] {
	case "trigger":
		if len(rest) < 2 {
			fmt.Fprintln(os.Stderr, "jobs trigger: job name required")
			return 2
		}
		info, err := jc.Trigger(ctx, rest[1], staleAfter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs trigger: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
		return 0
	case "stats":
		stats, err := jc.InspectQueue(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs stats: %v\n", err)
			return 1
		}
		_ = enc.Encode(stats)
		return 0
	case "scheduled":
		tasks, err := jc.ListScheduled(ctx, size)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs scheduled: %v\n", err)
			return 1
		}
		for _, t := range tasks {
			fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", t.ID, t.Type, t.NextProcessAt.Format(time.RFC3339))
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "jobs: unknown subcommand %q\n", rest[0])
		return 2
	}
}
