// Command swarmd is the orchestration runtime's host process: it loads
// session configuration, builds every core component, and serves the
// invocation surface over HTTP plus a WebSocket feed of live Blackboard
// events — the same shape as the teacher's cmd/tarsy/main.go (.env via
// godotenv, --config-dir flag, gin.Default() router, /health endpoint).
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/codeready-toolchain/swarmweave/pkg/agentregistry"
	"github.com/codeready-toolchain/swarmweave/pkg/blackboard"
	"github.com/codeready-toolchain/swarmweave/pkg/contentrouter"
	"github.com/codeready-toolchain/swarmweave/pkg/guardrails"
	"github.com/codeready-toolchain/swarmweave/pkg/phase"
	"github.com/codeready-toolchain/swarmweave/pkg/planner"
	"github.com/codeready-toolchain/swarmweave/pkg/router"
	"github.com/codeready-toolchain/swarmweave/pkg/scheduler"
	"github.com/codeready-toolchain/swarmweave/pkg/session"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

type app struct {
	cfg      *session.Config
	bb       *blackboard.Store
	registry *agentregistry.Registry
	watcher  *agentregistry.Watcher
	agentRt  *router.Router
	content  *contentrouter.Router
	guard    *guardrails.Manager
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("warning: could not load %s: %v", envPath, err)
	} else {
		log.Printf("loaded environment from %s", envPath)
	}

	httpPort := getEnv("HTTP_PORT", "8080")
	gin.SetMode(getEnv("GIN_MODE", "release"))

	cfg, err := session.Load(*configDir)
	if err != nil {
		log.Fatalf("failed to load session configuration: %v", err)
	}

	a, err := newApp(cfg)
	if err != nil {
		log.Fatalf("failed to initialize swarmd: %v", err)
	}
	defer a.close()

	engine := gin.Default()
	a.registerRoutes(engine)

	slog.Info("swarmd listening", "port", httpPort, "config_dir", *configDir)
	if err := engine.Run(":" + httpPort); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func newApp(cfg *session.Config) (*app, error) {
	bb := blackboard.New()

	reg := agentregistry.New(cfg.Router.ProjectAgentsDir, cfg.Router.UserAgentsDir)
	if err := reg.Reload(); err != nil {
		return nil, err
	}
	watcher, err := agentregistry.WatchForReload(reg)
	if err != nil {
		slog.Warn("agentregistry: hot reload disabled", "error", err)
	}

	textProvider := contentrouter.NewHTTPProvider("text", getEnv("TEXT_MODEL_URL", "http://localhost:9001/generate"), 60*time.Second)
	var visionProvider contentrouter.Provider
	if url := os.Getenv("VISION_MODEL_URL"); url != "" {
		visionProvider = contentrouter.NewHTTPProvider("vision", url, 60*time.Second)
	}
	contentRt := contentrouter.New(contentrouter.StrategyAuto, textProvider, visionProvider, nil, true)

	guard := guardrails.New()
	agentRt := router.New(reg)

	return &app{
		cfg:      cfg,
		bb:       bb,
		registry: reg,
		watcher:  watcher,
		agentRt:  agentRt,
		content:  contentRt,
		guard:    guard,
	}, nil
}

func (a *app) close() {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
}

// schedulerOptions converts the merged session.Config into scheduler.Options.
func (a *app) schedulerOptions() scheduler.Options {
	sc := a.cfg.Scheduler
	return scheduler.Options{
		MaxConcurrency:      sc.MaxConcurrency,
		PerTaskTimeout:      time.Duration(sc.PerTaskTimeoutMs) * time.Millisecond,
		SessionDeadline:     time.Duration(sc.SessionDeadlineMs) * time.Millisecond,
		MaxRetries:          sc.MaxRetries,
		BackoffPolicy:       sc.Backoff.Policy(sc.MaxRetries),
		GracePeriod:         5 * time.Second,
		OrphanCheckInterval: time.Minute,
	}
}

// runSession executes one full Metadata -> Execution pass over query using
// a fresh PhaseOrchestrator/Scheduler pair, each bound to this app's shared
// Blackboard/Registry/ContentRouter/GuardrailManager.
func (a *app) runSession(ctx context.Context, taskID, query string) (phase.Result, error) {
	dagResult, err := planner.Decompose(query, planner.Preferences{
		MaxTasks:               a.cfg.Planner.MaxTasks,
		DetailLevel:            a.cfg.Planner.DetailLevel,
		ParallelismPreference:  a.cfg.Planner.ParallelismPreference,
	})
	if err != nil {
		return phase.Result{}, err
	}

	exec := newContentRouterExecutor(a.content)
	sched := scheduler.New(a.bb, a.agentRt, exec, a.guard, a.schedulerOptions())

	paretoCaller := &modelPhaseCaller{router: a.content}
	strategicCaller := &modelPhaseCaller{router: a.content}

	orch := phase.New(a.guard, paretoCaller, strategicCaller, schedulerRunner{sched, dagResult.DAG}, nil)
	orch.InitializeMetadata(taskID)

	if err := orch.ExecutePareto(ctx, query); err != nil {
		return phase.Result{}, err
	}
	if err := orch.ExecuteStrategic(ctx, query); err != nil {
		return phase.Result{}, err
	}
	return orch.ExecuteExecution(ctx, dagResult.DAG)
}

// schedulerRunner adapts a bound Scheduler+DAG pair to phase.ExecutionRunner,
// since the DAG a session runs is only known once planning has completed.
type schedulerRunner struct {
	sched *scheduler.Scheduler
	dag   *planner.DAG
}

func (r schedulerRunner) RunDAG(ctx context.Context, _ *planner.DAG) (phase.CompletionInput, error) {
	return r.sched.RunDAG(ctx, r.dag)
}
