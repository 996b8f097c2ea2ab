package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/minhyannv/superagent-chat-go/pkg/bootstrap"
	configpkg "github.com/minhyannv/superagent-chat-go/pkg/config"
	"github.com/minhyannv/superagent-chat-go/pkg/direct"
	loggerpkg "github.com/minhyannv/superagent-chat-go/pkg/logger"
	"github.com/minhyannv/superagent-chat-go/pkg/profile"
	"github.com/minhyannv/superagent-chat-go/pkg/remote"
	"github.com/minhyannv/superagent-chat-go/pkg/session"
	"github.com/minhyannv/superagent-chat-go/pkg/superagent"
	"github.com/minhyannv/superagent-chat-go/pkg/terminal"
	"github.com/spf13/cobra"
)

type streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func newRootCmd(std streams) *cobra.Command {
	v := configpkg.NewViper()
	defaults := configpkg.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "superagent-chat",
		Short:         "Chat with a hosted research agent from the terminal",
		Long:          "superagent-chat provisions an agent with an LLM and a browser tool, then forwards each line you type to it. Type exit to quit.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			cfg, err := configpkg.Load(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, std)
		},
	}

	flags := cmd.Flags()
	flags.String(configpkg.KeyBackend, defaults.Backend, "Agent backend: superagent or direct")
	flags.String(configpkg.KeyProfile, "", "Path to an agent profile (YAML front matter plus prompt body)")
	flags.String(configpkg.KeyLogLevel, defaults.LogLevel, "Log level: trace, debug, info, warn, error or silent")
	flags.Bool(configpkg.KeyVerbose, false, "Log every remote call")
	flags.Bool(configpkg.KeyNoColor, false, "Disable colored output and the spinner colors")
	flags.Duration(configpkg.KeyRequestTimeout, 0, "Timeout for each remote request (0 disables it)")

	for _, key := range []string{
		configpkg.KeyBackend,
		configpkg.KeyProfile,
		configpkg.KeyLogLevel,
		configpkg.KeyVerbose,
		configpkg.KeyNoColor,
		configpkg.KeyRequestTimeout,
	} {
		_ = v.BindPFlag(key, flags.Lookup(key))
	}
	return cmd
}

// run provisions the agent and drives the chat session until exit or EOF.
func run(ctx context.Context, cfg configpkg.Config, std streams) error {
	logger := newLogger(std.Err, cfg.LogLevel)
	console := terminal.NewConsole(std.Out, consoleOptions(std.Out, cfg.NoColor))

	agentProfile := profile.Default()
	if cfg.ProfilePath != "" {
		p, err := profile.Load(cfg.ProfilePath)
		if err != nil {
			return err
		}
		agentProfile = p
	}

	for name, value := range requiredCredentials(cfg, agentProfile.Provider) {
		if value == "" {
			loggerpkg.Warn(logger, "credential not set", map[string]any{"env": name})
		}
	}

	service := newService(cfg, logger)
	loggerpkg.Debug(cfg.Verbose, logger, "service ready", map[string]any{
		"backend": cfg.Backend,
		"profile": agentProfile.Name,
	})

	console.Info("Provisioning agent...")
	agentID, err := bootstrap.New(
		service,
		cfg.ProviderKey(agentProfile.Provider),
		bootstrap.WithProfile(agentProfile),
		bootstrap.WithLogger(logger),
	).ProvisionAgent(ctx)
	if err != nil {
		return err
	}

	console.Info("Agent ready. Type exit to quit.")

	loop := session.New(service, console, std.In,
		session.WithSessionID(uuid.NewString()),
		session.WithLogger(logger),
	)
	err = loop.Run(ctx, agentID)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newService(cfg configpkg.Config, logger loggerpkg.Logger) remote.Service {
	if cfg.Backend == configpkg.BackendDirect {
		return direct.New(
			direct.WithProviderBaseURL(cfg.ProviderBaseURL),
			direct.WithRequestTimeout(cfg.RequestTimeout),
			direct.WithLogger(logger, cfg.Verbose),
		)
	}
	return superagent.New(cfg.SuperagentBaseURL, cfg.SuperagentAPIKey,
		superagent.WithTimeout(cfg.RequestTimeout),
		superagent.WithLogger(logger, cfg.Verbose),
	)
}

func requiredCredentials(cfg configpkg.Config, provider string) map[string]string {
	creds := map[string]string{}
	if cfg.Backend == configpkg.BackendSuperagent {
		creds["SUPERAGENT_API_KEY"] = cfg.SuperagentAPIKey
	}
	if provider == direct.ProviderAnthropic {
		creds["ANTHROPIC_API_KEY"] = cfg.ProviderKey(provider)
	} else {
		creds["OPENAI_API_KEY"] = cfg.ProviderKey(provider)
	}
	return creds
}

func newLogger(w io.Writer, level string) loggerpkg.Logger {
	if w == os.Stderr {
		return loggerpkg.New(nil, level)
	}
	return loggerpkg.New(w, level)
}

func consoleOptions(w io.Writer, noColor bool) terminal.Options {
	f, ok := w.(*os.File)
	if !ok {
		return terminal.Options{}
	}
	return terminal.DetectOptions(f, noColor)
}
