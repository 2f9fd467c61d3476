// Command switcherctl drives a running switcher server from the shell.
//
// Usage:
//
//	switcherctl [-addr URL] <command> [args]
//
// Commands:
//
//	apps | installed | removed | hotcodes | health
//	scan NAME...            report installed apps
//	hotkey APP CODE         bind CODE to APP ("" clears)
//	remove APP | restore APP
//	move SOURCE DEST        reorder
//	resize HEIGHT
//	setup | reset | donate | later
//	send JSON               post a raw event envelope
//	play SCRIPT             post every event of a replay script
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/switcher/internal/client"
	"github.com/GriffinCanCode/switcher/internal/domain/applist"
	"github.com/GriffinCanCode/switcher/internal/script"
)

func main() {
	cfg := client.DefaultConfig()
	flag.StringVar(&cfg.BaseURL, "addr", envOr("SWITCHER_ADDR", cfg.BaseURL), "Server URL")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Request timeout")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	out, err := run(ctx, client.New(cfg), flag.Arg(0), flag.Args()[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "switcherctl: %v\n", err)
		os.Exit(1)
	}

	data, err := sonic.ConfigStd.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "switcherctl: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(ctx context.Context, c *client.Client, cmd string, args []string) (any, error) {
	switch cmd {
	case "apps":
		return c.Apps(ctx)
	case "installed":
		return c.Installed(ctx)
	case "removed":
		return c.Removed(ctx)
	case "hotcodes":
		return c.HotCodes(ctx)
	case "health":
		return c.Health(ctx)
	case "send":
		if err := need(cmd, args, 1); err != nil {
			return nil, err
		}
		var env applist.Envelope
		if err := sonic.UnmarshalString(args[0], &env); err != nil {
			return nil, fmt.Errorf("send: %w", err)
		}
		return c.Send(ctx, env)
	case "play":
		if err := need(cmd, args, 1); err != nil {
			return nil, err
		}
		return play(ctx, c, args[0])
	}

	event, err := parseEvent(cmd, args)
	if err != nil {
		return nil, err
	}
	return c.Dispatch(ctx, event)
}

// parseEvent builds the event for a shorthand command
func parseEvent(cmd string, args []string) (applist.Event, error) {
	switch cmd {
	case "scan":
		return applist.InstalledAppsScanned{Names: args}, nil
	case "hotkey":
		if err := need(cmd, args, 2); err != nil {
			return nil, err
		}
		return applist.HotCodeUpdated{AppName: args[0], Value: args[1]}, nil
	case "remove":
		if err := need(cmd, args, 1); err != nil {
			return nil, err
		}
		return applist.AppRemoved{AppName: args[0]}, nil
	case "restore":
		if err := need(cmd, args, 1); err != nil {
			return nil, err
		}
		return applist.AppRestored{AppName: args[0]}, nil
	case "move":
		if err := need(cmd, args, 2); err != nil {
			return nil, err
		}
		return applist.AppReordered{SourceName: args[0], DestinationName: args[1]}, nil
	case "resize":
		if err := need(cmd, args, 1); err != nil {
			return nil, err
		}
		height, err := strconv.Atoi(args[0])
		if err != nil || height <= 0 {
			return nil, fmt.Errorf("resize: invalid height %q", args[0])
		}
		return applist.PickerResized{Height: height}, nil
	case "setup":
		return applist.SetupCompleted{}, nil
	case "reset":
		return applist.ResetConfirmed{}, nil
	case "donate":
		return applist.DonateClicked{}, nil
	case "later":
		// The server stamps the time
		return applist.MaybeLaterClicked{}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", cmd)
	}
}

func play(ctx context.Context, c *client.Client, path string) (any, error) {
	format, err := script.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := script.Parse(data, format)
	if err != nil {
		return nil, err
	}
	events, err := s.Decode()
	if err != nil {
		return nil, err
	}

	var last any
	for i, event := range events {
		resp, err := c.Dispatch(ctx, event)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		last = resp
	}
	return last, nil
}

func need(cmd string, args []string, n int) error {
	if len(args) < n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", cmd, n, len(args))
	}
	return nil
}
