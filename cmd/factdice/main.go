package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hurttlocker/factdice/internal/config"
	"github.com/hurttlocker/factdice/internal/facts"
	"github.com/hurttlocker/factdice/internal/llm"
	"github.com/hurttlocker/factdice/internal/logging"
	"github.com/hurttlocker/factdice/internal/mcp"
	"github.com/hurttlocker/factdice/internal/roll"
	"github.com/hurttlocker/factdice/internal/store"
	"github.com/hurttlocker/factdice/internal/theme"
	"github.com/hurttlocker/factdice/internal/topic"
	"github.com/hurttlocker/factdice/internal/ui"
)

const version = "0.1.0-dev"

var (
	globalDBPath     string
	globalConfigPath string
	globalEnvFile    string
	globalLLM        string
	globalMode       string
	globalTopic      string
	globalVerbose    bool
)

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout

func main() {
	args := parseGlobalFlags(os.Args[1:])
	logging.SetVerbose(globalVerbose)

	if len(args) < 1 {
		printUsage()
		os.Exit(0)
	}

	var err error
	switch args[0] {
	case "roll":
		err = runRoll(args[1:])
	case "topics":
		err = runTopics(args[1:])
	case "history":
		err = runHistory(args[1:])
	case "theme":
		err = runTheme(args[1:])
	case "config":
		err = runConfig(args[1:])
	case "tui":
		err = runTUI(args[1:])
	case "mcp":
		err = runMCP(args[1:])
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "factdice %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseGlobalFlags pulls the flags shared by every command out of args and
// returns what is left. Both "--flag value" and "--flag=value" are accepted.
func parseGlobalFlags(args []string) []string {
	targets := map[string]*string{
		"--db":       &globalDBPath,
		"--config":   &globalConfigPath,
		"--env-file": &globalEnvFile,
		"--llm":      &globalLLM,
		"--mode":     &globalMode,
		"--topic":    &globalTopic,
	}

	var rest []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--verbose" || arg == "-V" {
			globalVerbose = true
			continue
		}
		name, value, hasValue := strings.Cut(arg, "=")
		dst, ok := targets[name]
		if !ok {
			rest = append(rest, arg)
			continue
		}
		if !hasValue {
			if i+1 >= len(args) {
				rest = append(rest, arg)
				continue
			}
			i++
			value = args[i]
		}
		*dst = value
	}
	return rest
}

func resolveConfig() (config.ResolvedConfig, error) {
	return config.ResolveConfig(config.ResolveOptions{
		ConfigPath: globalConfigPath,
		EnvFile:    globalEnvFile,
		CLILLM:     globalLLM,
		CLIDBPath:  globalDBPath,
		CLIMode:    globalMode,
		CLITopic:   globalTopic,
	})
}

func openStore(cfg config.ResolvedConfig) (store.Store, error) {
	s, err := store.NewStore(store.StoreConfig{DBPath: cfg.DBPath.Value})
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return s, nil
}

// llmConfig turns the resolved --llm value into a provider config. A bare
// provider name ("google") keeps that provider's default model.
func llmConfig(cfg config.ResolvedConfig) (llm.Config, error) {
	v := strings.TrimSpace(cfg.LLMProvider.Value)
	var out llm.Config
	if strings.Contains(v, "/") {
		parsed, err := llm.ParseLLMFlag(v)
		if err != nil {
			return llm.Config{}, err
		}
		out = parsed
	} else {
		out.Provider = strings.ToLower(v)
	}
	out.APIKey = cfg.APIKeyForProvider(v).Value
	out.BaseURL = cfg.LLMBaseURL.Value
	out.RatePerMinute = cfg.RatePerMinute()
	return out, nil
}

func newRand() *rand.Rand {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// newSession wires the resolver, the sampler and the store together.
func newSession(ctx context.Context, cfg config.ResolvedConfig, st store.Store) (*roll.Session, error) {
	lc, err := llmConfig(cfg)
	if err != nil {
		return nil, err
	}
	r := newRand()
	resolver := facts.NewResolver(rand.New(rand.NewPCG(r.Uint64(), r.Uint64())), func() (llm.Provider, error) {
		return llm.NewProvider(lc)
	})

	session, err := roll.NewSession(roll.Options{
		Mode:     cfg.Mode.Value,
		Resolver: resolver,
		Rand:     r,
		Store:    st,
	})
	if err != nil {
		return nil, err
	}
	if err := session.Restore(ctx); err != nil {
		logging.Warn("could not restore previous roll", "err", err)
	}
	return session, nil
}

func runRoll(args []string) error {
	jsonOut := false
	for _, arg := range args {
		switch {
		case arg == "--json":
			jsonOut = true
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unknown flag: %s", arg)
		default:
			return fmt.Errorf("usage: factdice roll [--topic <id>] [--mode remote|local] [--json]")
		}
	}

	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	session, err := newSession(ctx, cfg, st)
	if err != nil {
		return err
	}

	res, err := session.Roll(ctx, cfg.Topic.Value)
	if err != nil {
		return err
	}

	if jsonOut {
		data, _ := json.MarshalIndent(res, "", "  ")
		fmt.Fprintln(stdout, string(data))
		return nil
	}
	printResult(stdout, res)
	if res.Notice {
		fmt.Fprintln(os.Stderr, ui.NoticeText)
	}
	return nil
}

func printResult(w io.Writer, res *roll.Result) {
	fmt.Fprintln(w, res.Label)
	for i, f := range res.Facts {
		fmt.Fprintf(w, "  %d. %s\n", i+1, f)
	}
	if res.Source != facts.SourceRemote && globalVerbose {
		fmt.Fprintf(w, "  (source: %s", res.Source)
		if res.Reason != "" {
			fmt.Fprintf(w, ", %s", res.Reason)
		}
		fmt.Fprintln(w, ")")
	}
}

func runTopics(args []string) error {
	jsonOut := len(args) > 0 && args[0] == "--json"
	if len(args) > 0 && !jsonOut {
		return fmt.Errorf("unknown flag: %s", args[0])
	}

	all := topic.All()
	if jsonOut {
		data, _ := json.MarshalIndent(all, "", "  ")
		fmt.Fprintln(stdout, string(data))
		return nil
	}
	for _, t := range all {
		marker := " "
		if t.ID == topic.DefaultID {
			marker = "*"
		}
		fmt.Fprintf(stdout, "%s %-12s %s\n", marker, t.ID, t.Name)
	}
	return nil
}

func runHistory(args []string) error {
	opts := store.ListOpts{Limit: store.DefaultHistoryLimit}
	jsonOut, clear, stats := false, false, false

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--json":
			jsonOut = true
		case arg == "--clear":
			clear = true
		case arg == "--stats":
			stats = true
		case arg == "--limit" && i+1 < len(args):
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid --limit %q", args[i])
			}
			opts.Limit = n
		case strings.HasPrefix(arg, "--limit="):
			n, err := strconv.Atoi(strings.TrimPrefix(arg, "--limit="))
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid %s", arg)
			}
			opts.Limit = n
		default:
			return fmt.Errorf("unknown flag: %s", arg)
		}
	}
	opts.Topic = globalTopic

	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	ctx := context.Background()

	switch {
	case clear:
		n, err := st.ClearRolls(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Cleared %d rolls\n", n)
		return nil
	case stats:
		s, err := st.Stats(ctx)
		if err != nil {
			return err
		}
		data, _ := json.MarshalIndent(s, "", "  ")
		fmt.Fprintln(stdout, string(data))
		return nil
	}

	rolls, err := st.ListRolls(ctx, opts)
	if err != nil {
		return err
	}
	if jsonOut {
		if rolls == nil {
			rolls = []*store.Roll{}
		}
		data, _ := json.MarshalIndent(rolls, "", "  ")
		fmt.Fprintln(stdout, string(data))
		return nil
	}
	if len(rolls) == 0 {
		fmt.Fprintln(stdout, "No rolls yet.")
		return nil
	}
	for _, r := range rolls {
		fmt.Fprintf(stdout, "#%d  %s  %-10s rolled %d (%s)\n",
			r.ID, r.RolledAt.Local().Format("2006-01-02 15:04"), r.Topic, r.DiceValue, r.Source)
		for _, f := range r.Facts {
			fmt.Fprintf(stdout, "      - %s\n", f)
		}
	}
	return nil
}

func runTheme(args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	ctx := context.Background()

	current := theme.Load(ctx, st, cfg.Theme.Value, theme.DetectDark)
	if len(args) == 0 {
		fmt.Fprintln(stdout, current)
		return nil
	}

	var next theme.Name
	if args[0] == "toggle" {
		next = theme.Toggle(current)
	} else {
		next, err = theme.Parse(args[0])
		if err != nil {
			return err
		}
	}
	if err := theme.Save(ctx, st, next); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Theme set to %s\n", next)
	return nil
}

func runConfig(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("usage: factdice config")
	}
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	type view struct {
		config.ResolvedConfig
		APIKey          config.ResolvedValue `json:"api_key"`
		RemoteAvailable bool                 `json:"remote_available"`
	}
	key := cfg.APIKeyForProvider(cfg.LLMProvider.Value)
	if key.Value != "" {
		key.Value = redact(key.Value)
	}
	data, _ := json.MarshalIndent(view{
		ResolvedConfig:  cfg,
		APIKey:          key,
		RemoteAvailable: remoteAvailable(cfg),
	}, "", "  ")
	fmt.Fprintln(stdout, string(data))
	return nil
}

// remoteAvailable reports whether a roll would reach the remote provider,
// building it the same way newSession does.
func remoteAvailable(cfg config.ResolvedConfig) bool {
	lc, err := llmConfig(cfg)
	if err != nil {
		return false
	}
	_, err = llm.NewProvider(lc)
	return err == nil
}

func redact(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

func runTUI(args []string) error {
	delay := ui.DefaultRollDelay
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--delay" && i+1 < len(args):
			i++
			d, err := time.ParseDuration(args[i])
			if err != nil {
				return fmt.Errorf("invalid --delay: %w", err)
			}
			delay = d
		case strings.HasPrefix(arg, "--delay="):
			d, err := time.ParseDuration(strings.TrimPrefix(arg, "--delay="))
			if err != nil {
				return fmt.Errorf("invalid --delay: %w", err)
			}
			delay = d
		default:
			return fmt.Errorf("unknown flag: %s", arg)
		}
	}

	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	// The widget owns the terminal, so logs go to a file.
	if path, err := logging.InitFile(tuiLogDir(cfg.DBPath.Value)); err != nil {
		logging.SetOutput(io.Discard)
	} else {
		defer logging.Close()
		logging.Debug("widget starting", "log", path)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	ctx := context.Background()

	session, err := newSession(ctx, cfg, st)
	if err != nil {
		return err
	}

	return ui.Run(ui.Options{
		Session:   session,
		Store:     st,
		Topic:     cfg.Topic.Value,
		Theme:     theme.Load(ctx, st, cfg.Theme.Value, theme.DetectDark),
		RollDelay: delay,
	})
}

// tuiLogDir places widget logs next to the database. In-memory databases have
// no directory, so "" selects the default ~/.factdice/logs.
func tuiLogDir(dbPath string) string {
	if dbPath == "" || dbPath == ":memory:" {
		return ""
	}
	return filepath.Join(filepath.Dir(dbPath), "logs")
}

func runMCP(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("usage: factdice mcp")
	}
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	session, err := newSession(context.Background(), cfg, st)
	if err != nil {
		return err
	}

	srv := mcp.NewServer(mcp.ServerConfig{Session: session, Store: st, Version: version})
	if err := mcp.ServeStdio(srv); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func printUsage() {
	fmt.Fprintf(stdout, `factdice %s: roll a dice, get that many facts

Usage:
  factdice [global flags] <command> [arguments]

Commands:
  roll                Roll the dice and print the facts
  topics              List the available topics
  history             Show previous rolls (--limit N, --json, --stats, --clear)
  theme [light|dark|toggle]
                      Show or set the widget theme
  config              Show the resolved configuration and where each value came from
  tui                 Open the interactive dice widget (--delay 1s)
  mcp                 Serve the MCP tools over stdio
  version             Print version

Global Flags:
  --topic <id>        Topic to roll for (default: agent-ai)
  --mode <m>          remote (Gemini with fallback) or local (static pool)
  --llm <p/model>     Provider and model, e.g. google/gemini-2.5-flash
  --db <path>         Database path (default: ~/.factdice/factdice.db)
  --config <path>     Config file (default: ~/.factdice/config.yaml)
  --env-file <path>   .env file holding GEMINI_API_KEY (default: ./.env)
  -V, --verbose       Debug logging and fact sources
  --json              JSON output (roll, topics, history)
`, version)
}
