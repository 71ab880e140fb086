package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"vibeagent/internal/config"
	"vibeagent/internal/engine"
	"vibeagent/internal/mcptool"
	"vibeagent/internal/prompts"
	"vibeagent/internal/providers"
	"vibeagent/internal/session"
	"vibeagent/internal/tools"
	"vibeagent/internal/workflow"
)

func main() {
	// Load .env if present; real environment still wins inside ApplyEnv.
	_ = godotenv.Load()

	fs := flag.NewFlagSet("vibeagent", flag.ExitOnError)
	sessionFlag := fs.String("session", "", "Resume the session with this ID")
	listFlag := fs.Bool("list", false, "List saved sessions and exit")
	searchFlag := fs.String("search", "", "Search saved transcripts and exit")
	yoloFlag := fs.Bool("yolo", false, "Run tool calls without confirmation")
	planFlag := fs.Bool("plan", false, "Start in plan workflow")
	verboseFlag := fs.Bool("verbose", false, "Log engine activity to stderr")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	cfgManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("failed to initialize config manager: %v", err)
	}
	cfg, err := cfgManager.Load()
	if err != nil {
		log.Printf("⚠️  Failed to load user config: %v", err)
		cfg = &config.Config{}
	}
	cfg.ApplyEnv()

	store := session.NewStore(cfgManager.Dir())

	if *listFlag {
		if err := listSessions(store); err != nil {
			log.Fatal(err)
		}
		return
	}
	if *searchFlag != "" {
		if err := searchTranscripts(ctx, cfgManager.Dir(), *searchFlag); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := runREPL(ctx, cfg, cfgManager.Dir(), store, *sessionFlag, *yoloFlag, *planFlag, *verboseFlag); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

func runREPL(ctx context.Context, cfg *config.Config, configDir string, store *session.Store, sessionID string, yolo, plan, verbose bool) error {
	llm, model, err := providers.NewLLMClient(cfg.LLMProvider, cfg.APIKey, cfg.BaseURL, cfg.Model)
	if err != nil {
		return err
	}

	backend, backendCleanup := buildToolBackend(ctx, cfg)
	defer backendCleanup()

	templates, err := buildTemplates(cfg, configDir)
	if err != nil {
		log.Printf("⚠️  Workflow templates unavailable: %v", err)
	}
	if templates != nil {
		defer templates.Close()
	}

	console := newConsoleHook(os.Stdout)
	hooks := engine.Hooks{console}
	if verbose {
		hooks = append(hooks, engine.LoggerHook{L: log.New(os.Stderr, "engine ", log.LstdFlags)})
	}
	confirmer := &stdinConfirmer{in: bufio.NewReader(os.Stdin), out: os.Stdout}

	var templateSource engine.TemplateSource
	if templates != nil {
		templateSource = templates
	}

	agent := engine.NewAgent(llm, backend, confirmer, hooks, engine.DefaultEngineConfig(), templateSource, nil)
	if err := agent.Init(ctx); err != nil {
		log.Printf("⚠️  %v", err)
		fmt.Println("Running in degraded mode: no tools are available this session.")
	} else {
		fmt.Printf("Tools available: %s\n", strings.Join(agent.ToolNames(), ", "))
	}

	sess, st, err := openSession(store, sessionID, model)
	if err != nil {
		return err
	}
	if yolo || cfg.YoloMode {
		st.YoloMode = true
	}
	if plan {
		st.Workflow = engine.WorkflowPlan
	}

	searchIndex, err := session.NewSearchIndex(ctx, filepath.Join(configDir, "transcripts.db"))
	if err != nil {
		log.Printf("⚠️  Transcript search disabled: %v", err)
		searchIndex = nil
	} else {
		defer searchIndex.Close()
	}

	fmt.Printf("Session %s (model %s). Type 'exit' to quit.\n", sess.ID, st.Model)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		console.BeginTurn()
		if err := agent.RunTurn(ctx, st, line); err != nil {
			log.Printf("error: %v", err)
		}
		if !console.Streamed() {
			printLastAssistant(st)
		}
		fmt.Println()

		persistSession(ctx, store, searchIndex, sess)

		if st.ExitChat {
			finishSession(ctx, llm, sess, store, searchIndex)
			break
		}
	}
	return nil
}

// buildToolBackend prefers a configured MCP server and falls back to
// the built-in registry when none is configured or the server cannot
// enumerate its tools.
func buildToolBackend(ctx context.Context, cfg *config.Config) (engine.ToolBackend, func()) {
	if cfg.MCPServerURL == "" && cfg.MCPCommand == "" {
		return tools.NewBuiltinRegistry(), func() {}
	}

	var command string
	var args []string
	if cfg.MCPCommand != "" {
		fields := strings.Fields(cfg.MCPCommand)
		command = fields[0]
		args = fields[1:]
	}

	client := mcptool.New(mcptool.Config{
		ServerURL: cfg.MCPServerURL,
		Command:   command,
		Args:      args,
	})
	if _, err := client.ListTools(ctx); err != nil {
		log.Printf("⚠️  MCP server unavailable (%v), using built-in tools", err)
		_ = client.Close()
		return tools.NewBuiltinRegistry(), func() {}
	}
	return client, func() { _ = client.Close() }
}

func buildTemplates(cfg *config.Config, configDir string) (*workflow.Library, error) {
	dir := cfg.WorkflowDir
	if dir == "" {
		dir = filepath.Join(configDir, "workflows")
	}
	lib, err := workflow.NewLibrary(dir, nil)
	if err != nil {
		return nil, err
	}
	if err := lib.Watch(); err != nil {
		log.Printf("⚠️  Workflow hot reload disabled: %v", err)
	}
	return lib, nil
}

func openSession(store *session.Store, sessionID, model string) (*session.Session, *engine.State, error) {
	if sessionID != "" {
		sess, err := store.Load(sessionID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resume session %s: %w", sessionID, err)
		}
		if sess.State == nil {
			return nil, nil, fmt.Errorf("session %s has no state", sessionID)
		}
		if sess.Summary != "" {
			fmt.Printf("Resuming: %s\n", sess.Summary)
		}
		return sess, sess.State, nil
	}

	st := engine.NewState(model, prompts.ChatSystem())
	return session.NewSession(st), st, nil
}

func persistSession(ctx context.Context, store *session.Store, idx *session.SearchIndex, sess *session.Session) {
	if err := store.Save(sess); err != nil {
		log.Printf("⚠️  Failed to save session: %v", err)
		return
	}
	if idx != nil {
		if err := idx.Index(ctx, sess); err != nil {
			log.Printf("⚠️  Failed to index transcript: %v", err)
		}
	}
}

// finishSession names the session and writes a handoff summary so the
// next run can resume with context.
func finishSession(ctx context.Context, llm engine.LLMClient, sess *session.Session, store *session.Store, idx *session.SearchIndex) {
	summarizer := session.NewSummarizer(llm, sess.State.Model)
	history := sess.State.History.All()

	if title, err := summarizer.GenerateTitle(ctx, history); err == nil && title != "" {
		sess.Title = title
	}
	if summary, err := summarizer.GenerateSummary(ctx, history); err == nil {
		sess.Summary = summary
	}
	persistSession(ctx, store, idx, sess)
}

func printLastAssistant(st *engine.State) {
	msgs := st.History.All()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == engine.RoleAssistant {
			if msgs[i].Content != "" {
				fmt.Println(msgs[i].Content)
			}
			return
		}
	}
}

func listSessions(store *session.Store) error {
	sessions, err := store.List()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No saved sessions.")
		return nil
	}
	for _, s := range sessions {
		fmt.Printf("%s  %s  (%s)\n", s.ID, s.Title, s.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func searchTranscripts(ctx context.Context, configDir, query string) error {
	idx, err := session.NewSearchIndex(ctx, filepath.Join(configDir, "transcripts.db"))
	if err != nil {
		return err
	}
	defer idx.Close()

	hits, err := idx.Search(ctx, query, 20)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, h := range hits {
		fmt.Printf("[%s] %s (%s): %s\n", h.SessionID[:8], h.Title, h.Role, preview(h.Content, 120))
	}
	return nil
}
