// Package script runs Lua scripts against an in-memory editing session.
//
// Scripts drive the editor through the compactlog module, which is
// installed as a global table:
//
//	compactlog.select(6, 10, 16)      -- line 6, columns 10 through 16
//	assert(compactlog.toggle())
//	for _, l in ipairs(compactlog.list()) do print(l.line, l.payload) end
//
// Lines and columns are 1-based and ranges are inclusive, like string.sub.
// Every call that changes the document or the selection delivers the
// resulting events before it returns, so the session is always settled
// between calls.
package script

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/compactlog/internal/controller"
	"github.com/dshills/compactlog/internal/host/memhost"
	"github.com/dshills/compactlog/internal/logging"
)

// DefaultInstructionLimit bounds the API calls of one Run.
const DefaultInstructionLimit = 1_000_000

// Runner executes scripts. It is not safe for concurrent use; the mutex
// only guards against overlapping Run calls.
type Runner struct {
	L *lua.LState

	mu sync.Mutex

	ws  *memhost.Workspace
	ctl *controller.Controller
	log *logging.Logger
	out io.Writer

	instructionLimit int64
	instructionCount int64
	exceeded         bool

	closed bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithInstructionLimit sets the maximum API calls per Run. Zero disables
// the limit.
func WithInstructionLimit(limit int64) Option {
	return func(r *Runner) {
		r.instructionLimit = limit
	}
}

// WithOutput redirects print.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runner) {
		r.log = l
	}
}

// New creates a sandboxed runner for a workspace and the controller
// attached to it.
func New(ws *memhost.Workspace, ctl *controller.Controller, opts ...Option) *Runner {
	r := &Runner{
		ws:               ws,
		ctl:              ctl,
		log:              logging.Nop(),
		out:              io.Discard,
		instructionLimit: DefaultInstructionLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithComponent("script")

	r.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(r.L)
	r.installSandbox()
	r.register()
	return r
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// io, os, debug, and package are intentionally not opened.
}

// installSandbox removes loaders and routes print to the runner's output.
func (r *Runner) installSandbox() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		r.L.SetGlobal(name, lua.LNil)
	}

	r.L.SetGlobal("print", r.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		fmt.Fprintln(r.out, strings.Join(parts, "\t"))
		return 0
	}))
}

// Run executes code. The context bounds execution time; name identifies
// the chunk in errors.
func (r *Runner) Run(ctx context.Context, name, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrStateClosed
	}

	r.instructionCount = 0
	r.exceeded = false
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	fn, err := r.L.Load(strings.NewReader(code), name)
	if err != nil {
		return fmt.Errorf("script %s: %w", name, err)
	}

	r.L.Push(fn)
	err = r.doWithRecovery(func() error {
		return r.L.PCall(0, lua.MultRet, nil)
	})
	switch {
	case r.exceeded:
		return fmt.Errorf("script %s: %w", name, ErrInstructionLimit)
	case ctx.Err() != nil:
		return fmt.Errorf("script %s: %w", name, ctx.Err())
	case err != nil:
		return fmt.Errorf("script %s: %w", name, err)
	}
	r.log.Debug("script %s finished after %d calls", name, r.instructionCount)
	return nil
}

// doWithRecovery executes a function with panic recovery.
func (r *Runner) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("lua panic: %v", p)
		}
	}()
	return fn()
}

// Close releases the Lua state.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.L.Close()
}

// step counts one API call and raises a Lua error past the limit.
func (r *Runner) step(L *lua.LState) {
	r.instructionCount++
	if r.instructionLimit > 0 && r.instructionCount > r.instructionLimit {
		r.exceeded = true
		L.RaiseError("instruction limit of %d exceeded", r.instructionLimit)
	}
}
