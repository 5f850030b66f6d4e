package shell

import (
	"fmt"
	"time"

	"github.com/1broseidon/underlay/internal/config"
)

// FromConfig builds the locator chain named by cfg.Strategies.
func FromConfig(cfg config.LocatorConfig) (Locator, error) {
	var chain Chain
	for _, name := range cfg.Strategies {
		switch name {
		case config.StrategyWorkerW:
			w := NewWorkerW()
			w.ProgmanClass = cfg.WorkerW.ProgmanClass
			w.WorkerClass = cfg.WorkerW.WorkerClass
			w.DefViewClass = cfg.WorkerW.DefViewClass
			if cfg.SpawnMessage != 0 {
				w.SpawnMessage = cfg.SpawnMessage
			}
			if cfg.MessageTimeoutMS > 0 {
				w.Timeout = time.Duration(cfg.MessageTimeoutMS) * time.Millisecond
			}
			chain = append(chain, w)
		case config.StrategyEWMHDesktop:
			d := NewEWMHDesktop()
			if len(cfg.DesktopClasses) > 0 {
				d.Classes = append([]string(nil), cfg.DesktopClasses...)
			}
			chain = append(chain, d)
		default:
			return nil, fmt.Errorf("unknown locator strategy %q", name)
		}
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("no locator strategies configured")
	}
	if len(chain) == 1 {
		return chain[0], nil
	}
	return chain, nil
}
