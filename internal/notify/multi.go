package notify

import "context"

// MultiNotifier fans events out to several notifiers.
type MultiNotifier struct {
	targets []Notifier
}

// NewMulti combines notifiers into one.
func NewMulti(targets ...Notifier) *MultiNotifier {
	return &MultiNotifier{targets: targets}
}

func (m *MultiNotifier) RunStarted(ctx context.Context, event RunEvent) {
	for _, t := range m.targets {
		t.RunStarted(ctx, event)
	}
}

func (m *MultiNotifier) RunFinished(ctx context.Context, event RunEvent) {
	for _, t := range m.targets {
		t.RunFinished(ctx, event)
	}
}

func (m *MultiNotifier) Close() error {
	var firstErr error
	for _, t := range m.targets {
		if err := t.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
