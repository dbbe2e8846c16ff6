package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mollom/mollomclient-go/client"
	"github.com/mollom/mollomclient-go/config"
)

var opts struct {
	configPath string
	logFile    string
	debug      bool
	servers    []string
	timeout    int
}

var rootCmd = &cobra.Command{
	Use:           "mollom",
	Short:         "Mollom command line client",
	Long:          "Check content, fetch CAPTCHAs and send feedback to the Mollom service.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file (MOLLOM_* variables override it)")
	pf.StringVar(&opts.logFile, "log-file", "", "write JSON logs to this file instead of stderr")
	pf.BoolVar(&opts.debug, "debug", false, "log every request")
	pf.StringSliceVar(&opts.servers, "server", nil, "server to use, skips bootstrap (repeatable)")
	pf.IntVar(&opts.timeout, "timeout", 0, "request timeout in seconds")
}

func newLogger() *zap.Logger {
	level := zapcore.InfoLevel
	if opts.debug {
		level = zapcore.DebugLevel
	}

	var out zapcore.WriteSyncer
	if opts.logFile != "" {
		out = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.logFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	} else {
		out = zapcore.Lock(os.Stderr)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), out, level))
}

// newClient builds a client from the config file, the environment and the
// flags. With bootstrap set the server list is fetched when none is configured.
func newClient(ctx context.Context, logger *zap.Logger, bootstrap bool) (*client.Client, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	cfg.WithServers(opts.servers...)
	if opts.timeout != 0 {
		cfg.WithTimeout(opts.timeout)
	}

	c, err := client.NewClient(cfg, client.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if bootstrap && len(c.Servers()) == 0 {
		if _, err := c.Bootstrap(ctx); err != nil {
			c.Close()
			return nil, fmt.Errorf("bootstrap: %w", err)
		}
	}
	return c, nil
}

type commandFunc func(ctx context.Context, c *client.Client, args []string) error

// run wraps a command body with logger and client setup
func run(fn commandFunc) func(*cobra.Command, []string) error {
	return runClient(true, fn)
}

// runClient is run for commands that manage the server list themselves
func runClient(bootstrap bool, fn commandFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		defer func() { _ = logger.Sync() }()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		c, err := newClient(ctx, logger, bootstrap)
		if err != nil {
			return err
		}
		defer c.Close()
		return fn(ctx, c, args)
	}
}
