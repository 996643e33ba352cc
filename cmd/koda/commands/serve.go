package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/koda-agent/koda/internal/agentrole"
	"github.com/koda-agent/koda/internal/config"
	"github.com/koda-agent/koda/internal/controller"
	"github.com/koda-agent/koda/internal/httpapi"
	"github.com/koda-agent/koda/internal/logging"
	"github.com/koda-agent/koda/internal/prompt"
	"github.com/koda-agent/koda/internal/reflector"
	"github.com/koda-agent/koda/internal/tree"
)

var (
	servePort int
	serveDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the debug HTTP API",
	Long: `Serve starts the debug HTTP API (GET /sessions/{id}, GET
/sessions/{id}/tree, POST /tasks) over a workspace's sessions.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", httpapi.DefaultConfig().Port, "Port to listen on")
	serveCmd.Flags().StringVar(&serveDir, "directory", "", "Workspace directory (default: current directory)")
}

func runServe(cmd *cobra.Command, args []string) error {
	workDir, err := getWorkDir(serveDir)
	if err != nil {
		return err
	}

	cfg, err := config.Load(workDir)
	if err != nil {
		return err
	}

	ctx := context.Background()
	complete, err := buildCompleter(ctx, cfg)
	if err != nil {
		return err
	}

	manager := tree.NewManager(workDir)

	var refl *reflector.Reflector
	if cfg.Agent.EnableReflection {
		refl = reflector.New(reflector.Completer(complete))
	}

	coder := agentrole.BuiltInRoles()["coder"]
	composer := prompt.New(prompt.Options{
		SelectedTools: coder.SelectedTools([]string{"read", "write", "edit", "bash"}),
		Cwd:           workDir,
	})

	apiCfg := httpapi.DefaultConfig()
	apiCfg.Port = servePort

	srv := httpapi.New(apiCfg, manager, controller.Completer(complete), refl, composer, controller.Config{
		AcceptanceThreshold: cfg.Agent.ValidationScoreThreshold,
		DisableBranching:    !cfg.Agent.EnableBranches,
	})

	go func() {
		logging.Info().Int("port", servePort).Str("directory", workDir).Msg("debug HTTP API listening")
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logging.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("server shutdown error")
	}
	return nil
}
