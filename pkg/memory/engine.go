package memory

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mczabca-boop/tinyclaw/pkg/config"
	"github.com/mczabca-boop/tinyclaw/pkg/logger"
)

// Engine decides whether historical context is needed for a message,
// queries the external search backend, ranks the hits and composes a
// prompt block. All mutable state (backend probe results, per-agent
// collection state, warn-once flags) is owned here so tests can reset it
// by constructing a fresh engine.
type Engine struct {
	dataDir string
	log     *logger.Logger

	mu           sync.Mutex
	backends     map[string]*backendState
	capabilities map[string]bool
	agents       map[string]*agentState
	warned       map[string]bool

	run runFunc
	now func() time.Time
}

// NewEngine creates an engine over the given data directory. Each agent
// gets a turns subdirectory under it.
func NewEngine(dataDir string, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewDefaultLogger()
	}
	return &Engine{
		dataDir:      dataDir,
		log:          log,
		backends:     make(map[string]*backendState),
		capabilities: make(map[string]bool),
		agents:       make(map[string]*agentState),
		warned:       make(map[string]bool),
		run:          execBackend,
		now:          time.Now,
	}
}

// warnOnce logs a warning at most once per process lifetime per kind.
func (e *Engine) warnOnce(kind, format string, args ...interface{}) {
	e.mu.Lock()
	if e.warned[kind] {
		e.mu.Unlock()
		return
	}
	e.warned[kind] = true
	e.mu.Unlock()
	e.log.Warn(format, args...)
}

// Enrich augments message with relevant excerpts from the agent's prior
// turns. It is total: any failure at any stage returns the original
// message unmodified.
func (e *Engine) Enrich(ctx context.Context, agentID, channel, message string, cfg *config.MemoryConfig) string {
	if cfg == nil || !cfg.Enabled {
		return message
	}
	if strings.TrimSpace(message) == "" || !channelEligible(channel) {
		return message
	}

	local := *cfg
	local.Normalize()

	bin, ok := e.probe(ctx, local.BackendPath)
	if !ok {
		return message
	}

	searchTimeout := time.Duration(local.SearchTimeoutSecs) * time.Second

	collection, err := e.ensureCollection(ctx, bin, agentID, searchTimeout)
	if err != nil {
		e.log.Warn("memory: %v", err)
		return message
	}

	refreshInterval := time.Duration(local.RefreshIntervalSecs) * time.Second
	if err := e.maybeRefresh(ctx, bin, agentID, collection, refreshInterval, searchTimeout); err != nil {
		e.log.Warn("memory: %v", err)
		return message
	}

	variants := queryVariants(message)
	if len(variants) == 0 {
		return message
	}

	if local.PrecheckEnabled {
		precheckTimeout := time.Duration(local.PrecheckTimeoutSecs) * time.Second
		if !e.hasQuickHit(ctx, bin, collection, variants, local.MinScore, precheckTimeout) {
			if local.Debug {
				e.log.Debug("memory: no-hit for %q in %s", variants[0], collection)
			}
			return message
		}
	}

	hits, query := e.query(ctx, bin, collection, message, variants, &local)
	if len(hits) == 0 {
		if local.Debug {
			e.log.Debug("memory: no results for %q in %s", query, collection)
		}
		return message
	}

	hits = rankHits(hits, query, e.turnsDir(agentID), local.TopK)
	block := composePrompt(hits, local.PromptMaxChars)
	if block == "" {
		return message
	}
	return message + "\n\n" + block
}

// PersistTurn writes one completed exchange under the agent's turn
// directory. Failures are logged and swallowed; persistence must never
// fail the surrounding conversation turn.
func (e *Engine) PersistTurn(t Turn) {
	if _, err := writeTurnFile(e.turnsDir(t.AgentID), t); err != nil {
		e.log.Warn("memory: persist turn for %s: %v", t.AgentID, err)
	}
}

// channelEligible reports whether a channel can carry memory. A turn
// without a durable channel identifier has nothing to attribute the
// exchange to.
func channelEligible(channel string) bool {
	return strings.TrimSpace(channel) != ""
}

// hasQuickHit runs the lexical variants with result count 1 as a cheap
// existence check before the expensive primary query. Any error counts
// as "no hit": the gate exists for cost avoidance, not correctness.
func (e *Engine) hasQuickHit(ctx context.Context, bin, collection string, variants []string, minScore float64, timeout time.Duration) bool {
	for _, v := range variants {
		out, err := e.run(ctx, bin, searchArgs("search", v, collection, 1, minScore), nil, timeout)
		if err != nil {
			return false
		}
		if len(parseHits(out)) > 0 {
			return true
		}
	}
	return false
}

// query selects the retrieval strategy and issues the search.
func (e *Engine) query(ctx context.Context, bin, collection, message string, variants []string, cfg *config.MemoryConfig) ([]Hit, string) {
	if e.useVector(bin, cfg) {
		return e.runVector(ctx, bin, collection, message, cfg), message
	}
	return e.runBm25WithVariants(ctx, bin, collection, variants, cfg)
}

// useVector applies the safety policy for semantic search: vector search
// runs only when explicitly enabled AND either the unsafe override is
// set, or expansion suppression is both requested and supported by the
// resolved backend. Otherwise it downgrades to keyword search with one
// warning per reason per process lifetime.
func (e *Engine) useVector(bin string, cfg *config.MemoryConfig) bool {
	if !cfg.SemanticEnabled {
		return false
	}
	if cfg.UnsafeAllowSemantic {
		return true
	}
	if !cfg.DisableQueryExpansion {
		e.warnOnce("expansion-not-disabled",
			"semantic search requested but query expansion is not disabled; using keyword search")
		return false
	}
	if !e.noExpandSupported(bin) {
		e.warnOnce("no-expand-unsupported",
			"backend install cannot suppress query expansion; using keyword search")
		return false
	}
	return true
}

// runBm25WithVariants tries each lexical variant in order and returns on
// the first one yielding results, paired with the variant used. With no
// hits at all it returns an empty set and the last-tried variant.
func (e *Engine) runBm25WithVariants(ctx context.Context, bin, collection string, variants []string, cfg *config.MemoryConfig) ([]Hit, string) {
	timeout := time.Duration(cfg.SearchTimeoutSecs) * time.Second
	last := ""
	for _, v := range variants {
		last = v
		out, err := e.run(ctx, bin, searchArgs("search", v, collection, cfg.TopK, cfg.MinScore), nil, timeout)
		if err != nil {
			e.log.Warn("memory: search: %v", err)
			return nil, v
		}
		if hits := parseHits(out); len(hits) > 0 {
			return hits, v
		}
	}
	return nil, last
}

// runVector issues one semantic search with the verbatim message. When
// suppression is requested and supported, the backend is told to skip
// query expansion through its environment.
func (e *Engine) runVector(ctx context.Context, bin, collection, message string, cfg *config.MemoryConfig) []Hit {
	timeout := time.Duration(cfg.VectorTimeoutSecs) * time.Second
	var env []string
	if cfg.DisableQueryExpansion && e.noExpandSupported(bin) {
		env = []string{noExpandEnv + "=1"}
	}
	out, err := e.run(ctx, bin, searchArgs("vsearch", message, collection, cfg.TopK, cfg.MinScore), env, timeout)
	if err != nil {
		e.log.Warn("memory: vsearch: %v", err)
		return nil
	}
	return parseHits(out)
}

func searchArgs(subcommand, query, collection string, topK int, minScore float64) []string {
	return []string{
		subcommand, query, "--json",
		"-c", collection,
		"-n", strconv.Itoa(topK),
		"--min-score", strconv.FormatFloat(minScore, 'f', -1, 64),
	}
}
