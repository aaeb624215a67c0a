package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/compactlog/internal/annotation"
	"github.com/dshills/compactlog/internal/config"
	"github.com/dshills/compactlog/internal/controller"
	"github.com/dshills/compactlog/internal/host/memhost"
	"github.com/dshills/compactlog/internal/logging"
	"github.com/dshills/compactlog/internal/render"
	"github.com/dshills/compactlog/internal/script"
	"github.com/dshills/compactlog/internal/store"
	"github.com/dshills/compactlog/internal/textrange"
	"github.com/dshills/compactlog/internal/watch"
)

// env carries what every command needs.
type env struct {
	cfg    *config.Config
	log    *logging.Logger
	stdout io.Writer
	stderr io.Writer
}

// session is one file loaded into an in-memory editor with a controller
// attached.
type session struct {
	ws  *memhost.Workspace
	ed  *memhost.Editor
	ctl *controller.Controller
}

func (e *env) controllerOptions(n controller.Option) []controller.Option {
	opts := []controller.Option{
		controller.WithLogger(e.log),
		controller.WithMinPayloadLength(e.cfg.Engine.MinPayloadLength),
	}
	if n != nil {
		opts = append(opts, n)
	}
	return opts
}

func (e *env) open(path string) (*session, error) {
	ws := memhost.NewWorkspace()
	ed, err := ws.OpenFile(path)
	if err != nil {
		return nil, err
	}
	ctl := controller.New(ws, e.controllerOptions(controller.WithNotifier(ws))...)
	return &session{ws: ws, ed: ed, ctl: ctl}, nil
}

// settle delivers queued events and reports any message shown to the user.
func (s *session) settle() error {
	if _, err := s.ws.Drain(); err != nil {
		return err
	}
	if msgs := s.ws.Errors(); len(msgs) > 0 {
		return errors.New(strings.Join(msgs, "; "))
	}
	return nil
}

func (s *session) close() {
	s.ctl.Close()
}

func (e *env) store() (store.Store, error) {
	return store.Open(e.cfg.Store.Backend, e.cfg.Store.Path)
}

// storeKey is the key entries for path are saved under.
func storeKey(path string) (string, error) {
	return filepath.Abs(path)
}

// parseSpec parses LINE:COL or LINE:COL-END, 1-based with END inclusive,
// into a selection.
func parseSpec(spec string) (textrange.Selection, error) {
	lineText, cols, ok := strings.Cut(spec, ":")
	if !ok {
		return textrange.Selection{}, fmt.Errorf("position %q: want LINE:COL or LINE:COL-END", spec)
	}
	firstText, lastText, isRange := strings.Cut(cols, "-")

	line, err := strconv.Atoi(lineText)
	if err != nil || line < 1 {
		return textrange.Selection{}, fmt.Errorf("position %q: bad line", spec)
	}
	first, err := strconv.Atoi(firstText)
	if err != nil || first < 1 {
		return textrange.Selection{}, fmt.Errorf("position %q: bad column", spec)
	}
	start := textrange.Pos(line-1, first-1)
	if !isRange {
		return textrange.Cursor(start), nil
	}
	last, err := strconv.Atoi(lastText)
	if err != nil || last < first {
		return textrange.Selection{}, fmt.Errorf("position %q: bad end column", spec)
	}
	return textrange.NewSelection(start, textrange.Pos(line-1, last)), nil
}

func cmdToggle(e *env, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	sel, err := parseSpec(args[1])
	if err != nil {
		return err
	}

	s, err := e.open(args[0])
	if err != nil {
		return err
	}
	defer s.close()

	if !s.ed.Buffer().Valid(sel.Anchor) || !s.ed.Buffer().Valid(sel.Active) {
		return fmt.Errorf("%s: position %s is outside the file", args[0], args[1])
	}
	s.ed.Select(sel)
	if err := s.settle(); err != nil {
		return err
	}
	if err := s.ctl.Toggle(); err != nil && !s.hasMessages() {
		return err
	}
	if err := s.settle(); err != nil {
		return err
	}
	_, err = s.ed.Save()
	return err
}

func (s *session) hasMessages() bool {
	return len(s.ws.Errors()) > 0
}

func cmdList(e *env, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	for _, path := range args {
		ws := memhost.NewWorkspace()
		ed, err := ws.OpenFile(path)
		if err != nil {
			return err
		}
		for _, a := range annotation.ParseDocument(ed.Document()) {
			stale := ""
			if a.LineDrift() || a.StringifyDrift() {
				stale = " (stale)"
			}
			fmt.Fprintf(e.stdout, "%s:%d:%d: %s%s\n", path, a.Line+1, a.FullRange.Start.Column+1, a.PayloadText, stale)
		}
	}
	return nil
}

func cmdSync(e *env, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	for _, path := range args {
		wrote, err := watch.SyncFile(path, e.controllerOptions(nil)...)
		if err != nil {
			return err
		}
		if wrote {
			fmt.Fprintf(e.stdout, "updated %s\n", path)
		}
	}
	return nil
}

func cmdClear(e *env, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	path := args[0]
	key, err := storeKey(path)
	if err != nil {
		return err
	}

	st, err := e.store()
	if err != nil {
		return err
	}
	defer st.Close()

	s, err := e.open(path)
	if err != nil {
		return err
	}
	defer s.close()

	entries := s.ctl.ClearAll()
	if err := s.settle(); err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(e.stdout, "no logs in %s\n", path)
		return nil
	}
	if err := st.Save(key, entries); err != nil {
		return err
	}
	if _, err := s.ed.Save(); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "cleared %d logs from %s\n", len(entries), path)
	return nil
}

func cmdRestore(e *env, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	path := args[0]
	key, err := storeKey(path)
	if err != nil {
		return err
	}

	st, err := e.store()
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.Load(key)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(e.stdout, "nothing saved for %s\n", path)
		return nil
	}

	s, err := e.open(path)
	if err != nil {
		return err
	}
	defer s.close()

	n := s.ctl.Restore(entries)
	if err := s.settle(); err != nil {
		return err
	}
	if _, err := s.ed.Save(); err != nil {
		return err
	}
	if err := st.Save(key, nil); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "restored %d of %d logs in %s\n", n, len(entries), path)
	return nil
}

func cmdView(e *env, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	s, err := e.open(args[0])
	if err != nil {
		return err
	}
	defer s.close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	v := render.NewView(screen,
		render.WithHighlight(tcell.GetColor(e.cfg.View.HighlightFg), tcell.GetColor(e.cfg.View.HighlightBg)),
		render.WithMarker(e.cfg.View.Marker),
	)
	v.Run(s.ed)
	return nil
}

func cmdRun(e *env, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	code, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	s, err := e.open(args[1])
	if err != nil {
		return err
	}
	defer s.close()

	r := script.New(s.ws, s.ctl,
		script.WithInstructionLimit(int64(e.cfg.Script.InstructionLimit)),
		script.WithOutput(e.stdout),
		script.WithLogger(e.log),
	)
	defer r.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := r.Run(ctx, filepath.Base(args[0]), string(code)); err != nil {
		return err
	}
	if _, err := s.ws.Drain(); err != nil {
		return err
	}
	_, err = s.ed.Save()
	return err
}

func cmdWatch(e *env, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	w, err := watch.New(
		watch.WithDebounce(e.cfg.Debounce()),
		watch.WithLogger(e.log),
		watch.WithControllerOptions(e.controllerOptions(nil)...),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, path := range args {
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(e.stdout, "watching %d files\n", len(args))
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
