package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxchat/internal/assistant"
	"github.com/teemow/inboxchat/internal/chatui"
)

type commandKind int

const (
	cmdUtterance commandKind = iota
	cmdEmpty
	cmdMore
	cmdSelect
	cmdClear
	cmdRefresh
	cmdHistory
	cmdHelp
	cmdQuit
	cmdUnknown
)

type chatCommand struct {
	kind   commandKind
	text   string
	option int
}

const chatHelp = `Ask about your mail in plain language, for example "show unread emails".
Commands:
  :more               next page of the last result
  <number>            choose one of the offered options
  :refresh [scope]    reload the mailbox (scope: all or an account name)
  :history            show the conversation so far
  :clear              forget the conversation
  :quit               leave`

// parseChatLine turns one line of input into a command. Bare numbers select
// an offered option; everything else without a leading colon is an utterance.
func parseChatLine(line string) chatCommand {
	line = strings.TrimSpace(line)
	if line == "" {
		return chatCommand{kind: cmdEmpty}
	}
	if n, err := strconv.Atoi(line); err == nil {
		return chatCommand{kind: cmdSelect, option: n}
	}
	if !strings.HasPrefix(line, ":") {
		return chatCommand{kind: cmdUtterance, text: line}
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(name) {
	case "more", "m":
		return chatCommand{kind: cmdMore}
	case "clear":
		return chatCommand{kind: cmdClear}
	case "refresh":
		return chatCommand{kind: cmdRefresh, text: arg}
	case "history":
		return chatCommand{kind: cmdHistory}
	case "help", "h", "?":
		return chatCommand{kind: cmdHelp}
	case "quit", "q", "exit":
		return chatCommand{kind: cmdQuit}
	}
	return chatCommand{kind: cmdUnknown, text: name}
}

func newChatCmd() *cobra.Command {
	var accounts string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat about your mailbox",
		Long: `Start an interactive chat in the terminal.

The mailbox of every configured account is loaded once at startup. Ask
questions like "emails from github" or "show starred emails", page with
:more and answer offered choices with their number.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			logger := newLogger()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if list := parseCommaSeparatedList(accounts); list != nil {
				cfg.Accounts = list
			}

			a, err := newApp(ctx, cfg, logger, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ui := chatui.NewRenderer(out)
			fmt.Fprintln(out, ui.Info(fmt.Sprintf("%d emails loaded. Type :help for commands.", a.mailbox.Len())))
			return runChat(ctx, a.newEngine("terminal"), cmd.InOrStdin(), out, ui)
		},
	}

	cmd.Flags().StringVar(&accounts, "accounts", "", "Comma-separated account names, overrides the config file")

	return cmd
}

// runChat reads lines from in until EOF or :quit and writes answers to out.
func runChat(ctx context.Context, engine *assistant.Engine, in io.Reader, out io.Writer, ui *chatui.Renderer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, ui.Prompt())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		c := parseChatLine(scanner.Text())
		switch c.kind {
		case cmdEmpty:
			continue
		case cmdQuit:
			return nil
		case cmdHelp:
			fmt.Fprintln(out, ui.Info(chatHelp))
		case cmdUnknown:
			fmt.Fprintln(out, ui.Info(fmt.Sprintf("Unknown command :%s. Type :help for commands.", c.text)))
		case cmdMore:
			fmt.Fprintln(out, ui.Response(engine.LoadMore(ctx)))
		case cmdSelect:
			if c.option < 1 {
				fmt.Fprintln(out, ui.Info("Options are numbered from 1."))
				continue
			}
			fmt.Fprintln(out, ui.Response(engine.SelectAction(ctx, c.option-1)))
		case cmdClear:
			engine.Clear()
			fmt.Fprintln(out, ui.Info("Conversation cleared."))
		case cmdRefresh:
			if err := refreshEngine(ctx, engine, c.text); err != nil {
				fmt.Fprintln(out, ui.Info("Refresh failed: "+err.Error()))
				continue
			}
			fmt.Fprintln(out, ui.Info(fmt.Sprintf("%d emails loaded.", engine.Store().Len())))
		case cmdHistory:
			for _, turn := range engine.History() {
				fmt.Fprintln(out, ui.Turn(turn))
			}
		default:
			fmt.Fprintln(out, ui.Response(engine.ProcessUtterance(ctx, c.text)))
		}
	}
}

func refreshEngine(ctx context.Context, engine *assistant.Engine, scope string) error {
	if scope == "" {
		return engine.Refresh(ctx)
	}
	return engine.RefreshScope(ctx, scope)
}
