package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gui-agent/internal/domain/entity"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var allDevices bool

	cmd := &cobra.Command{
		Use:   "run [instruction]",
		Short: "Run the agent on one target until the task is finished.",
		Long: "Run the agent on one target until the task is finished.\n" +
			"The instruction is read from stdin when no arguments are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			instruction, err := readInstruction(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if a.cfg.Model.APIKey == "" {
				return errors.New("model api key is not set (GUIAGENT_MODEL_API_KEY or OPENROUTER_API_KEY)")
			}

			c, err := a.container(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if allDevices {
				targets := c.OnlineTargets(ctx)
				if len(targets) == 0 {
					return errors.New("no online devices")
				}
				c.Logger.Info("Task started", "task", instruction, "targets", len(targets))
				results, err := c.Sessions.ExecuteAll(ctx, targets, instruction)
				for i, result := range results {
					printSummary(out, targets[i], result)
				}
				return err
			}

			target := entity.ParseTarget(a.cfg.Agent.Target)
			if !target.IsLocal() {
				c.Availability.Check(ctx)
			}
			c.Logger.Info("Task started", "task", instruction, "target", target.String())
			result, err := c.Sessions.Execute(ctx, target, instruction)
			printSummary(out, target, result)
			return err
		},
	}

	cmd.Flags().StringP("target", "t", "", `"local" or an adb device serial`)
	cmd.Flags().Int("max-rounds", 0, "abort after this many rounds")
	cmd.Flags().BoolVar(&allDevices, "all-devices", false, "run one session per online adb device")
	_ = a.v.BindPFlag("agent.target", cmd.Flags().Lookup("target"))
	_ = a.v.BindPFlag("agent.max_rounds", cmd.Flags().Lookup("max-rounds"))
	return cmd
}

func readInstruction(args []string, in io.Reader) (string, error) {
	instruction := strings.TrimSpace(strings.Join(args, " "))
	if instruction == "" && in != nil {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read instruction: %w", err)
		}
		instruction = strings.TrimSpace(string(data))
	}
	if instruction == "" {
		return "", errors.New("instruction is empty")
	}
	return instruction, nil
}

func printSummary(out io.Writer, target entity.Target, result *entity.RunResult) {
	if result == nil {
		color.New(color.FgRed).Fprintf(out, "✗ [%s] session did not start\n", target)
		return
	}

	switch result.Status {
	case entity.RunFinished:
		final := "finished"
		if result.FinalAction != nil {
			final = string(result.FinalAction.Type)
		}
		color.New(color.FgGreen, color.Bold).Fprintf(out, "✓ [%s] %s after %d rounds\n", target, final, result.Rounds)
	default:
		color.New(color.FgRed, color.Bold).Fprintf(out, "✗ [%s] failed after %d rounds: %v\n", target, result.Rounds, result.Err)
	}
}
