// Package watch re-runs an action when source files change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Op describes a filesystem change.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// Has reports whether all bits of other are set.
func (op Op) Has(other Op) bool {
	return op&other == other
}

// Event describes a filesystem change event.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// Watcher delivers filesystem events.
type Watcher interface {
	Events() <-chan Event
	Errors() <-chan error
	Add(name string) error
	Remove(name string) error
	Close() error
}

// Runner dispatches create and write events to Handle.
type Runner struct {
	Watcher Watcher
	Filter  func(path string) bool // nil accepts every file
	Handle  func(ctx context.Context, path string) error
	OnError func(err error) // handler and watcher errors

	group singleflight.Group
	wg    sync.WaitGroup

	mu  sync.Mutex
	gen map[string]uint64 // events seen per path
}

// Run blocks until ctx is cancelled or the watcher closes. Events for a
// path whose handler is still running join that run, and the handler runs
// once more after it finishes. Directories created while running are
// watched too.
func (r *Runner) Run(ctx context.Context) error {
	defer r.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-r.Watcher.Errors():
			if !ok {
				return nil
			}
			r.report(err)
		case ev, ok := <-r.Watcher.Events():
			if !ok {
				return nil
			}
			r.dispatch(ctx, ev)
		}
	}
}

// Run is shorthand for a Runner without an error callback.
func Run(ctx context.Context, w Watcher, filter func(string) bool, handle func(context.Context, string) error) error {
	r := &Runner{Watcher: w, Filter: filter, Handle: handle}
	return r.Run(ctx)
}

func (r *Runner) dispatch(ctx context.Context, ev Event) {
	if ev.Op&(OpCreate|OpWrite) == 0 {
		return
	}
	if ev.Op.Has(OpCreate) {
		if info, err := os.Stat(ev.Path); err == nil && info.IsDir() {
			if err := AddRecursive(r.Watcher, ev.Path); err != nil {
				r.report(err)
			}
			return
		}
	}
	if r.Filter != nil && !r.Filter(ev.Path) {
		return
	}

	r.mu.Lock()
	if r.gen == nil {
		r.gen = make(map[string]uint64)
	}
	r.gen[ev.Path]++
	r.mu.Unlock()
	r.run(ctx, ev.Path)
}

// run starts the handler for path or joins the run in flight. The handler
// repeats while events for path arrived after it started.
func (r *Runner) run(ctx context.Context, path string) {
	r.wg.Add(1)
	ch := r.group.DoChan(path, func() (interface{}, error) {
		for {
			seen := r.generation(path)
			err := r.Handle(ctx, path)
			if err != nil {
				r.report(err)
			}
			if r.generation(path) == seen || ctx.Err() != nil {
				return nil, err
			}
		}
	})
	go func() {
		defer r.wg.Done()
		<-ch
	}()
}

func (r *Runner) generation(path string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen[path]
}

func (r *Runner) report(err error) {
	if r.OnError != nil {
		r.OnError(err)
	}
}

// AddRecursive watches root and every directory below it, skipping hidden
// directories, vendor and testdata.
func AddRecursive(w Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
