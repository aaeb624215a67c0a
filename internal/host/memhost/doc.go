// Package memhost is an in-memory implementation of the host editor
// surface.
//
// It backs the command line tool, the Lua scripting surface, and the tests.
// A Workspace holds editors and a FIFO event queue; nothing is delivered
// until Drain (or Step) is called, which mirrors the one-event-at-a-time
// delivery of a real editor:
//
//	ws := memhost.NewWorkspace()
//	ed := ws.Open("app.js", "const a = foo.bar;")
//	ctl := controller.New(ws, controller.WithNotifier(ws))
//
//	ed.Select(textrange.NewSelection(textrange.Pos(0, 10), textrange.Pos(0, 17)))
//	ctl.Toggle()
//	ws.Drain()
//
// ApplyEdit applies a batch immediately, then queues the document-changed
// event followed by the acknowledgement. Decorations keep the ranges they
// were drawn with; the controller redraws annotations whose geometry moved.
package memhost
