package shell

import (
	"fmt"
	"time"

	"github.com/1broseidon/underlay/internal/platform"
)

const (
	// SpawnWorkerMessage is the undocumented Progman message that makes
	// Explorer create the WorkerW behind the desktop icons.
	SpawnWorkerMessage uint32 = 0x052C

	DefaultProgmanClass = "Progman"
	DefaultWorkerClass  = "WorkerW"
	DefaultDefViewClass = "SHELLDLL_DefView"
)

// WorkerW locates Explorer's WorkerW window.
//
// Two layouts exist. Since Windows 11 24H2 the WorkerW is a direct child of
// Progman. Before that, the icons' SHELLDLL_DefView lives in a top-level
// WorkerW and the empty WorkerW we want is the next top-level WorkerW after it.
type WorkerW struct {
	ProgmanClass string
	WorkerClass  string
	DefViewClass string
	SpawnMessage uint32
	Timeout      time.Duration
}

// NewWorkerW returns a WorkerW locator with Explorer's class names.
func NewWorkerW() *WorkerW {
	return &WorkerW{
		ProgmanClass: DefaultProgmanClass,
		WorkerClass:  DefaultWorkerClass,
		DefViewClass: DefaultDefViewClass,
		SpawnMessage: SpawnWorkerMessage,
		Timeout:      time.Second,
	}
}

func (w *WorkerW) Name() string { return "workerw" }

func (w *WorkerW) Locate(b platform.Backend) (platform.WindowID, error) {
	progman, err := findTopLevel(b, w.ProgmanClass)
	if err != nil {
		return 0, fmt.Errorf("no %s window: %w", w.ProgmanClass, err)
	}

	if m, ok := b.(platform.Messenger); ok {
		if _, err := m.SendMessageTimeout(progman, w.SpawnMessage, 0, 0, w.Timeout); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrShellUnresponsive, err)
		}
	}

	if worker, ok := findChild(b, progman, w.WorkerClass); ok {
		return worker, nil
	}

	top, err := b.Children(b.Root())
	if err != nil {
		return 0, fmt.Errorf("failed to list top-level windows: %w", err)
	}
	for i, host := range top {
		if _, ok := findChild(b, host, w.DefViewClass); !ok {
			continue
		}
		for _, next := range top[i+1:] {
			if hasClass(b, next, w.WorkerClass) {
				return next, nil
			}
		}
		break
	}
	return 0, ErrNotFound
}
