package main

//  ____                       ____                  _
// |  _ \   ___   ___  _ __   / ___|   ___   ___  | | __
// | | | | / _ \ / _ \| '_ \  \___ \  / _ \ / _ \ | |/ /
// | |_| ||  __/|  __/| |_) |  ___) ||  __/|  __/ |   <
// |____/  \___| \___|| .__/  |____/  \___| \___| |_|\_\
//  a coding assistant with function calling and reasoning

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/joelfuller2016/deepseek-engineer/internal/config"
	"github.com/joelfuller2016/deepseek-engineer/internal/core"
	"github.com/joelfuller2016/deepseek-engineer/internal/engine"
	"github.com/joelfuller2016/deepseek-engineer/internal/llm"
	"github.com/joelfuller2016/deepseek-engineer/internal/session"
	"github.com/joelfuller2016/deepseek-engineer/internal/term"
	"github.com/joelfuller2016/deepseek-engineer/internal/tools"
)

const version = "0.9"

func main() {
	cmd := &cli.Command{
		Name:    "deepseek-engineer",
		Usage:   "an agentic coding assistant for your terminal",
		Version: version + " - http://github.com/joelfuller2016/deepseek-engineer",
		Flags:   config.GetFlags(),
		Action:  run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		// Print to stderr first in case logger isn't initialized
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		zap.S().Fatal(err)
	}
}

func run(ctx context.Context, c *cli.Command) error {
	cfg := config.NewConfiguration(c)
	core.InitLogger(cfg.Verbose)
	defer zap.L().Sync() // Flushes buffer, if any

	if cfg.API.Key == "" {
		return fmt.Errorf("no API key configured, set DEEPSEEK_API_KEY or pass --apikey")
	}

	if cfg.Verbose {
		cfg.PrintConfig()
	}

	console := term.NewConsole(os.Stdout, os.Stdin)
	console.Banner(version)
	console.Welcome(cfg.Budget.MaxContextTokens, cfg.Budget.MaxFileTokens, cfg.Budget.MaxFilesPerAdd)

	sess := session.NewSession(
		engine.SystemPrompt(cfg.Session.Prompt),
		cfg.Session.MaxMessages,
		cfg.Budget.MaxContextTokens,
	)
	client := llm.NewClient(cfg)
	dispatcher := tools.NewDispatcher(sess, console)
	eng := engine.NewEngineer(cfg, sess, client, dispatcher, console)

	repl(ctx, eng, console)

	console.Goodbye()
	return nil
}

// repl drives the read-eval loop until exit or EOF. Transport failures are
// reported and the session continues.
func repl(ctx context.Context, eng *engine.Engineer, console *term.Console) {
	for {
		line, ok := console.ReadLine()
		if !ok {
			return
		}
		if line == "" {
			continue
		}

		switch {
		case line == "exit" || line == "quit":
			return

		case line == "/clear":
			eng.Session().Reset()
			console.Notice("🧹 Conversation cleared")

		case line == "/tokens":
			console.TokenUsage(eng.TokenUsage())

		case strings.HasPrefix(line, "/add "):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/add "))
			report, err := eng.AddPath(path)
			if err != nil {
				console.Error(err)
				continue
			}
			console.AddReport(report)

		default:
			if err := eng.RunTurn(ctx, line); err != nil {
				console.Error(err)
			}
			fmt.Println()
		}
	}
}
