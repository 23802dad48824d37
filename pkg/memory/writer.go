package memory

import "sync"

// TurnWriter persists turns from a background goroutine so a slow disk
// cannot stall the conversational turn. Write failures are logged and
// swallowed; the surrounding exchange must never fail on persistence.
type TurnWriter struct {
	mu     sync.Mutex
	closed bool
	ch     chan Turn
	wg     sync.WaitGroup
	engine *Engine
}

// NewTurnWriter starts a background writer over the engine's data
// directory with the given queue depth.
func NewTurnWriter(engine *Engine, buffer int) *TurnWriter {
	w := &TurnWriter{
		ch:     make(chan Turn, buffer),
		engine: engine,
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for t := range w.ch {
			w.engine.PersistTurn(t)
		}
	}()
	return w
}

// Append queues a turn for persistence. It never blocks the caller on
// failure and is a no-op after Close.
func (w *TurnWriter) Append(t Turn) {
	if w == nil {
		return
	}
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	ch := w.ch
	w.mu.Unlock()
	ch <- t
}

// Close drains the queue and stops the writer.
func (w *TurnWriter) Close() {
	if w == nil {
		return
	}
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.ch)
	w.mu.Unlock()
	w.wg.Wait()
}
