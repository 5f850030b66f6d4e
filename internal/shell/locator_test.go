package shell

import (
	"errors"
	"testing"
	"time"

	"github.com/1broseidon/underlay/internal/config"
	"github.com/1broseidon/underlay/internal/platform"
	"github.com/1broseidon/underlay/internal/platform/platformtest"
)

var screen = platform.Rect{Width: 1920, Height: 1080}

// classicDesktop builds the pre-24H2 Explorer layout, bottom-most first:
// Progman, the empty WorkerW, the WorkerW hosting the icons, an app window.
func classicDesktop(t *testing.T) (*platformtest.Backend, platform.WindowID) {
	t.Helper()
	b := platformtest.New()
	root := b.Root()
	b.Add(root, "Progman", screen)
	worker := b.Add(root, "WorkerW", screen)
	host := b.Add(root, "WorkerW", screen)
	b.Add(host, "SHELLDLL_DefView", screen)
	b.Add(root, "Notepad", platform.Rect{X: 100, Y: 100, Width: 400, Height: 300})
	return b, worker
}

func TestWorkerW_ClassicLayout(t *testing.T) {
	b, want := classicDesktop(t)

	got, err := NewWorkerW().Locate(b)
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}
	if got != want {
		t.Fatalf("Locate = %d, want %d", got, want)
	}
	if len(b.Messages) != 1 || b.Messages[0].Msg != SpawnWorkerMessage {
		t.Fatalf("expected one spawn message, got %+v", b.Messages)
	}
	if b.Messages[0].Timeout != time.Second {
		t.Fatalf("timeout = %v, want 1s", b.Messages[0].Timeout)
	}
}

func TestWorkerW_NestedLayout(t *testing.T) {
	b := platformtest.New()
	progman := b.Add(b.Root(), "Progman", screen)
	b.Add(progman, "SHELLDLL_DefView", screen)
	want := b.AddBottom(progman, "WorkerW", screen)

	got, err := NewWorkerW().Locate(b)
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}
	if got != want {
		t.Fatalf("Locate = %d, want %d", got, want)
	}
}

func TestWorkerW_SpawnMessageCreatesContainer(t *testing.T) {
	b := platformtest.New()
	root := b.Root()
	progman := b.Add(root, "Progman", screen)
	b.Add(progman, "SHELLDLL_DefView", screen)

	var spawned platform.WindowID
	b.OnMessage = func(b *platformtest.Backend, msg platformtest.Message) {
		if msg.Target == progman && msg.Msg == SpawnWorkerMessage && spawned == 0 {
			spawned = b.AddBottom(progman, "WorkerW", screen)
		}
	}

	got, err := NewWorkerW().Locate(b)
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}
	if spawned == 0 || got != spawned {
		t.Fatalf("Locate = %d, want spawned %d", got, spawned)
	}
}

func TestWorkerW_NotFound(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *platformtest.Backend)
	}{
		{"no progman", func(b *platformtest.Backend) {
			b.Add(b.Root(), "WorkerW", screen)
		}},
		{"message fails", func(b *platformtest.Backend) {
			b.Add(b.Root(), "Progman", screen)
			b.Add(b.Root(), "WorkerW", screen)
			b.FailMessages = true
		}},
		{"no defview host", func(b *platformtest.Backend) {
			b.Add(b.Root(), "Progman", screen)
			b.Add(b.Root(), "WorkerW", screen)
		}},
		{"host without worker after it", func(b *platformtest.Backend) {
			progman := b.Add(b.Root(), "Progman", screen)
			b.Add(progman, "SHELLDLL_DefView", screen)
			b.Add(b.Root(), "WorkerW", screen)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := platformtest.New()
			tt.setup(b)
			_, err := NewWorkerW().Locate(b)
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestWorkerW_RepeatedLookupReturnsSameWindow(t *testing.T) {
	b, want := classicDesktop(t)
	loc := NewWorkerW()
	for i := 0; i < 2; i++ {
		got, err := loc.Locate(b)
		if err != nil {
			t.Fatalf("Locate #%d error: %v", i, err)
		}
		if got != want {
			t.Fatalf("Locate #%d = %d, want %d", i, got, want)
		}
	}
}

func TestWorkerW_FollowsShellRestart(t *testing.T) {
	b, first := classicDesktop(t)
	loc := NewWorkerW()
	if got, _ := loc.Locate(b); got != first {
		t.Fatalf("first lookup = %d, want %d", got, first)
	}

	b.Destroy(first)
	second := b.AddBottom(b.Root(), "WorkerW", screen)

	got, err := loc.Locate(b)
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}
	if got != second {
		t.Fatalf("after restart Locate = %d, want %d", got, second)
	}
}

func TestEWMHDesktop_PrefersWindowType(t *testing.T) {
	b := platformtest.New()
	b.Add(b.Root(), "xfdesktop", screen)
	typed := b.Add(b.Root(), "Nemo-desktop", screen)
	b.SetTypes(typed, DesktopWindowType)

	got, err := NewEWMHDesktop().Locate(b)
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}
	if got != typed {
		t.Fatalf("Locate = %d, want %d", got, typed)
	}
}

func TestEWMHDesktop_FallsBackToClass(t *testing.T) {
	b := platformtest.New()
	b.Add(b.Root(), "Firefox", screen)
	want := b.Add(b.Root(), "pcmanfm", screen)

	got, err := NewEWMHDesktop().Locate(b)
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}
	if got != want {
		t.Fatalf("Locate = %d, want %d", got, want)
	}

	if _, err := (&EWMHDesktop{Classes: []string{"xfdesktop"}}).Locate(b); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// untypedBackend hides WindowsOfType, like the Win32 backend.
type untypedBackend struct {
	platform.Backend
	platform.Messenger
}

func TestEWMHDesktop_RequiresWindowTypes(t *testing.T) {
	b := platformtest.New()
	b.Add(b.Root(), "Desktop", screen)
	b.Add(b.Root(), "pcmanfm", screen)
	win := untypedBackend{Backend: b, Messenger: b}

	if _, err := NewEWMHDesktop().Locate(win); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestChain_FailedSpawnOnWindowsIsNotFound(t *testing.T) {
	b := platformtest.New()
	b.Add(b.Root(), "Progman", screen)
	b.Add(b.Root(), "Desktop", platform.Rect{X: 50, Y: 50, Width: 640, Height: 480})
	b.FailMessages = true
	win := untypedBackend{Backend: b, Messenger: b}

	chain := Chain{NewWorkerW(), NewEWMHDesktop()}
	if got, err := chain.Locate(win); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Locate = %d, %v; want ErrNotFound", got, err)
	}

	// The shell is present, so the chain stops even on a typed backend.
	got, err := chain.Locate(b)
	if !errors.Is(err, ErrShellUnresponsive) {
		t.Fatalf("Locate = %d, %v; want ErrShellUnresponsive", got, err)
	}
}

func TestChain(t *testing.T) {
	b := platformtest.New()
	want := b.Add(b.Root(), "xfdesktop", screen)

	chain := Chain{NewWorkerW(), NewEWMHDesktop()}
	got, err := chain.Locate(b)
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}
	if got != want {
		t.Fatalf("Locate = %d, want %d", got, want)
	}
	if chain.Name() != "workerw,ewmh-desktop" {
		t.Fatalf("Name = %q", chain.Name())
	}

	empty := platformtest.New()
	if _, err := chain.Locate(empty); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig().Locator
	cfg.MessageTimeoutMS = 300
	cfg.WorkerW.WorkerClass = "WorkerX"

	loc, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig error: %v", err)
	}
	chain, ok := loc.(Chain)
	if !ok || len(chain) != 2 {
		t.Fatalf("expected two-element chain, got %#v", loc)
	}
	w := chain[0].(*WorkerW)
	if w.Timeout != 300*time.Millisecond || w.WorkerClass != "WorkerX" {
		t.Fatalf("unexpected workerw settings %+v", w)
	}

	cfg.Strategies = []string{config.StrategyEWMHDesktop}
	loc, err = FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig error: %v", err)
	}
	if _, ok := loc.(*EWMHDesktop); !ok {
		t.Fatalf("expected single EWMHDesktop, got %T", loc)
	}

	cfg.Strategies = []string{"bogus"}
	if _, err := FromConfig(cfg); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
