package memory

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// backendName is the search backend executable.
	backendName = "csearch"
	// noExpandEnv, when set to "1", tells the backend to skip automatic
	// query expansion. Unsuppressed expansion can trigger heavyweight
	// model downloads inside the backend.
	noExpandEnv = "CSEARCH_NO_EXPAND"
	// probeTimeout bounds the help invocation used to detect the backend.
	probeTimeout = 5 * time.Second
)

// backendState caches the probe outcome for one configured backend path.
type backendState struct {
	found bool
	path  string
}

// probe locates the backend executable. Candidates are tried in order:
// the explicitly configured path, the user-local install, the system
// install, then $PATH. The first candidate answering a help invocation
// is adopted and cached for the process lifetime, keyed by the
// configured path so a config change re-probes.
func (e *Engine) probe(ctx context.Context, preferred string) (string, bool) {
	e.mu.Lock()
	if st, ok := e.backends[preferred]; ok {
		e.mu.Unlock()
		return st.path, st.found
	}
	e.mu.Unlock()

	var candidates []string
	if preferred != "" {
		candidates = append(candidates, preferred)
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".local", "bin", backendName))
	}
	candidates = append(candidates, filepath.Join("/usr/local/bin", backendName))
	if p, err := exec.LookPath(backendName); err == nil {
		candidates = append(candidates, p)
	}

	st := &backendState{}
	for _, cand := range candidates {
		if _, err := os.Stat(cand); err != nil {
			continue
		}
		if _, err := e.run(ctx, cand, []string{"--help"}, nil, probeTimeout); err != nil {
			continue
		}
		st.found = true
		st.path = cand
		break
	}

	e.mu.Lock()
	e.backends[preferred] = st
	e.mu.Unlock()

	if !st.found {
		e.warnOnce("backend-unavailable", "memory search backend %q not found; memory disabled", backendName)
	}
	return st.path, st.found
}

// Probe reports whether a search backend is reachable, preferring the
// explicitly configured path. Used by the CLI status command; Enrich
// probes internally.
func (e *Engine) Probe(ctx context.Context, preferred string) (string, bool) {
	return e.probe(ctx, preferred)
}

// SupportsNoExpand reports whether the backend at path can suppress
// automatic query expansion.
func (e *Engine) SupportsNoExpand(path string) bool {
	return e.noExpandSupported(path)
}

// noExpandSupported reports whether the resolved backend install honors
// the expansion-suppression environment variable. Detection only works
// for the user-local install, where the entrypoint script can be scanned
// for the variable name; other installs are treated as unsupported.
// The result is cached per resolved path.
func (e *Engine) noExpandSupported(path string) bool {
	e.mu.Lock()
	if v, ok := e.capabilities[path]; ok {
		e.mu.Unlock()
		return v
	}
	e.mu.Unlock()

	supported := false
	home, err := os.UserHomeDir()
	if err == nil && strings.HasPrefix(path, filepath.Join(home, ".local")+string(filepath.Separator)) {
		if data, err := os.ReadFile(path); err == nil {
			supported = strings.Contains(string(data), noExpandEnv)
		}
	}

	e.mu.Lock()
	e.capabilities[path] = supported
	e.mu.Unlock()
	return supported
}
