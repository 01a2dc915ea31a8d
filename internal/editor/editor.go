package editor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/componentbridge/internal/bridge"
	"github.com/GriffinCanCode/componentbridge/internal/theme"
	"github.com/GriffinCanCode/componentbridge/internal/types"
)

// ErrNoItem is returned by edits made before the context item arrived.
var ErrNoItem = errors.New("editor: no context item loaded")

// Editor edits the host's context item
type Editor struct {
	bridge *bridge.Bridge
	sheets *theme.Document
	logger *zap.Logger

	mu     sync.Mutex
	out    io.Writer
	item   *types.Item
	loaded chan struct{}
	once   sync.Once
}

// New creates an editor writing feedback to out
func New(b *bridge.Bridge, sheets *theme.Document, out io.Writer, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{
		bridge: b,
		sheets: sheets,
		logger: logger.Named("editor"),
		out:    out,
		loaded: make(chan struct{}),
	}
}

// Load subscribes to the context item and waits for the first delivery.
// Later deliveries replace the item being edited.
func (e *Editor) Load(ctx context.Context) error {
	err := e.bridge.StreamContextItem(func(item *types.Item) {
		if item == nil {
			return
		}
		e.mu.Lock()
		e.item = item
		e.mu.Unlock()
		e.once.Do(func() { close(e.loaded) })
		e.logger.Debug("Context item received", zap.String("uuid", item.UUID))
	})
	if err != nil {
		return fmt.Errorf("stream context item: %w", err)
	}

	select {
	case <-e.loaded:
		e.printf("editing %s\n", e.Item().UUID)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Item returns the item being edited, or nil before Load completes.
func (e *Editor) Item() *types.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.item
}

// Text returns the current note text
func (e *Editor) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.item == nil {
		return ""
	}
	text, _ := e.item.Content["text"].(string)
	return text
}

// Run executes lines from in until EOF, :quit or ctx cancellation.
func (e *Editor) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			quit, err := e.Exec(line)
			if err != nil {
				e.printf("error: %v\n", err)
			}
			if quit {
				return nil
			}
		}
	}
}

// Exec runs one input line. It reports whether the line asked to quit.
func (e *Editor) Exec(line string) (bool, error) {
	if !strings.HasPrefix(line, ":") {
		return false, e.edit(line)
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit":
		return true, nil
	case ":save":
		return false, e.save(true)
	case ":set":
		if len(fields) < 3 {
			return false, errors.New("usage: :set KEY VALUE")
		}
		return false, e.bridge.SetComponentDataValue(fields[1], strings.Join(fields[2:], " "))
	case ":get":
		if len(fields) != 2 {
			return false, errors.New("usage: :get KEY")
		}
		v, ok := e.bridge.ComponentDataValue(fields[1])
		if !ok {
			e.printf("%s is not set\n", fields[1])
			return false, nil
		}
		e.printf("%s = %v\n", fields[1], v)
		return false, nil
	case ":themes":
		active := e.sheets.Active()
		if len(active) == 0 {
			e.printf("no themes\n")
		}
		for _, url := range active {
			e.printf("%s\n", url)
		}
		return false, nil
	case ":env":
		e.printf("environment=%s uuid=%s desktop=%t\n",
			e.bridge.Environment(), e.bridge.SelfUUID(), e.bridge.IsRunningInDesktopApplication())
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %s", fields[0])
	}
}

// Flush saves the item immediately and waits for the host to
// acknowledge it.
func (e *Editor) Flush(ctx context.Context) error {
	e.mu.Lock()
	if e.item == nil {
		e.mu.Unlock()
		return ErrNoItem
	}
	acked := make(chan struct{})
	err := e.bridge.SaveItem(e.item, func() { close(acked) }, true)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	select {
	case <-acked:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Editor) edit(text string) error {
	e.mu.Lock()
	if e.item == nil {
		e.mu.Unlock()
		return ErrNoItem
	}
	// A held save still references the previous map
	content := maps.Clone(e.item.Content)
	if content == nil {
		content = make(map[string]any, 1)
	}
	content["text"] = text
	e.item.Content = content
	e.mu.Unlock()
	return e.save(false)
}

func (e *Editor) save(now bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.item == nil {
		return ErrNoItem
	}
	uuid := e.item.UUID
	return e.bridge.SaveItem(e.item, func() {
		e.printf("saved %s\n", uuid)
	}, now)
}

func (e *Editor) printf(format string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintf(e.out, format, args...)
}
