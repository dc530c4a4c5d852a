package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/planwise/plugin/ai/action"
	"github.com/hrygo/planwise/plugin/ai/timeout"
)

type processOptions struct {
	identity string
	stdin    bool
	json     bool
}

func newProcessCommand(v *viper.Viper) *cobra.Command {
	opts := &processOptions{}
	cmd := &cobra.Command{
		Use:   "process [message]",
		Short: "Turn a message into a task, event or goal",
		Long: `Process a natural-language message and persist the task, event or goal it asks for.

With --stdin every non-empty input line is processed as its own message.
Plain chat produces no record.`,
		Example: `  planwise process "add task buy milk tomorrow"
  planwise process --identity alice "dentist appointment friday at 3pm"
  cat messages.txt | planwise process --stdin --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.stdin == (len(args) > 0) {
				return errors.New("pass exactly one message argument or --stdin")
			}
			if len(args) > 1 {
				return errors.New("quote the message so it is a single argument")
			}

			rt, err := newApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer rt.close()
			dispatcher, err := rt.newDispatcher()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !opts.stdin {
				result := dispatcher.ProcessWithTimeout(cmd.Context(), args[0], opts.identity, timeout.ActionTimeout)
				return writeResult(out, args[0], result, opts.json)
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				message := strings.TrimSpace(scanner.Text())
				if message == "" {
					continue
				}
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				result := dispatcher.ProcessWithTimeout(cmd.Context(), message, opts.identity, timeout.ActionTimeout)
				if err := writeResult(out, message, result, opts.json); err != nil {
					return err
				}
			}
			return errors.Wrap(scanner.Err(), "failed to read messages")
		},
	}
	cmd.Flags().StringVar(&opts.identity, "identity", "", "owner of the created records; empty stores them anonymously")
	cmd.Flags().BoolVar(&opts.stdin, "stdin", false, "read one message per line from standard input")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print results as JSON lines")
	return cmd
}

type processOutput struct {
	Message string               `json:"message"`
	Chat    bool                 `json:"chat"`
	Result  *action.ActionResult `json:"result,omitempty"`
}

func writeResult(w io.Writer, message string, result *action.ActionResult, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(processOutput{Message: message, Chat: result == nil, Result: result})
	}
	if result == nil {
		_, err := fmt.Fprintln(w, "chat: no action taken")
		return err
	}
	_, err := fmt.Fprintf(w, "%s %s: %s\n", result.Kind, result.Outcome, result.UserMessage)
	return err
}
