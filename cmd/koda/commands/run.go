package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/koda-agent/koda/internal/agentrole"
	"github.com/koda-agent/koda/internal/config"
	"github.com/koda-agent/koda/internal/controller"
	"github.com/koda-agent/koda/internal/logging"
	"github.com/koda-agent/koda/internal/prompt"
	"github.com/koda-agent/koda/internal/reflector"
	"github.com/koda-agent/koda/internal/tree"
	"github.com/koda-agent/koda/pkg/ktypes"
)

var (
	runDir           string
	runSessionID     string
	runRole          string
	runMaxIterations int
	runFormat        string
	runNoReflect     bool
)

var runCmd = &cobra.Command{
	Use:   "run [description...]",
	Short: "Run one task synchronously against a session",
	Long: `Run submits a task description to the Iteration Controller and
blocks until it finishes (success, failure, or iteration exhaustion),
then prints the TaskResult.

Examples:
  koda run "write a function that parses durations"
  koda run --session abc123 --role reviewer "tighten up error handling"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTask,
}

func init() {
	runCmd.Flags().StringVar(&runDir, "directory", "", "Workspace directory (default: current directory)")
	runCmd.Flags().StringVarP(&runSessionID, "session", "s", "", "Session ID to continue (default: create a new session)")
	runCmd.Flags().StringVar(&runRole, "role", "coder", "agentrole to gate tool selection by (coder|reviewer)")
	runCmd.Flags().IntVar(&runMaxIterations, "max-iterations", 0, "Override the task's max iterations (0: use config/Task default)")
	runCmd.Flags().StringVar(&runFormat, "format", "text", "Output format (text|json)")
	runCmd.Flags().BoolVar(&runNoReflect, "no-reflect", false, "Skip the Reflective Reviewer entirely (static and model passes)")
}

func runTask(cmd *cobra.Command, args []string) error {
	workDir, err := getWorkDir(runDir)
	if err != nil {
		return err
	}

	cfg, err := config.Load(workDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()
	complete, err := buildCompleter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("building model adapter: %w", err)
	}

	manager := tree.NewManager(workDir)
	var session *tree.Session
	if runSessionID != "" {
		session, err = manager.LoadSession(ctx, runSessionID)
		if err != nil {
			return fmt.Errorf("loading session %s: %w", runSessionID, err)
		}
	} else {
		session = manager.CreateSession("main")
	}

	role, ok := agentrole.BuiltInRoles()[runRole]
	if !ok {
		return fmt.Errorf("unknown role %q", runRole)
	}
	composer := prompt.New(prompt.Options{
		SelectedTools: role.SelectedTools([]string{"read", "write", "edit", "bash"}),
		Cwd:           workDir,
	})

	var refl *reflector.Reflector
	if !runNoReflect {
		refl = reflector.New(reflector.Completer(complete))
	}

	ctrl := controller.New(session, controller.Completer(complete), refl, composer, controller.Config{
		AcceptanceThreshold: cfg.Agent.ValidationScoreThreshold,
		DisableBranching:    !cfg.Agent.EnableBranches,
	})

	maxIter := runMaxIterations
	if maxIter == 0 {
		maxIter = cfg.Agent.MaxIterations
	}

	result := ctrl.Run(ctx, ktypes.Task{
		Description:   strings.Join(args, " "),
		MaxIterations: maxIter,
	})

	if err := session.Save(ctx, manager.Store()); err != nil {
		logging.Warn().Err(err).Msg("failed to persist session after task")
	}

	return printResult(result)
}

func printResult(result ktypes.TaskResult) error {
	if runFormat == "json" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	status := "FAILED"
	if result.Success {
		status = "SUCCESS"
	}
	fmt.Printf("%s after %d iteration(s), score %.1f\n", status, result.Iterations, result.ValidationScore)
	if result.Error != "" {
		fmt.Printf("error: %s\n", result.Error)
	}
	fmt.Println("---")
	fmt.Println(result.Source)
	return nil
}
