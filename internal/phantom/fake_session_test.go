package phantom

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/iradul/vscode-phantomjs-debug/internal/bridge"
	"github.com/iradul/vscode-phantomjs-debug/internal/cdp"
)

type fakeTimer struct {
	delay   time.Duration
	f       func()
	stopped bool
	ran     bool
}

// fakeSession is a bridge.Session whose deferred work runs only when the test says so.
type fakeSession struct {
	lock sync.Mutex

	attachErr  error
	attachFunc func(ctx context.Context) error // Overrides attachErr if set.
	attached   []bridge.AttachOptions

	evalResult  bridge.EvaluateResult
	evaluations []string

	callErr error
	calls   []string

	subscribers map[string]func(json.RawMessage)
	console     []*cdp.ConsoleAPICalledEvent
	timers      []*fakeTimer
	terminated  chan string
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		subscribers: map[string]func(json.RawMessage){},
		terminated:  make(chan string, 4),
	}
}

func (s *fakeSession) Attach(ctx context.Context, opts bridge.AttachOptions) error {
	s.lock.Lock()
	s.attached = append(s.attached, opts)
	attachFunc, attachErr := s.attachFunc, s.attachErr
	s.lock.Unlock()

	if attachFunc != nil {
		return attachFunc(ctx)
	}
	return attachErr
}

func (s *fakeSession) Evaluate(expression string) <-chan bridge.EvaluateResult {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.evaluations = append(s.evaluations, expression)
	resultCh := make(chan bridge.EvaluateResult, 1)
	resultCh <- s.evalResult
	close(resultCh)
	return resultCh
}

func (s *fakeSession) Call(_ context.Context, method string, _ any, _ any) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.calls = append(s.calls, method)
	return s.callErr
}

func (s *fakeSession) Subscribe(method string, handler func(params json.RawMessage)) {
	s.subscribers[method] = handler
}

func (s *fakeSession) ConsoleAPICalled(ev *cdp.ConsoleAPICalledEvent) {
	s.console = append(s.console, ev)
}

func (s *fakeSession) AfterFunc(d time.Duration, f func()) func() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	timer := &fakeTimer{delay: d, f: f}
	s.timers = append(s.timers, timer)
	return func() bool {
		s.lock.Lock()
		defer s.lock.Unlock()
		if timer.stopped || timer.ran {
			return false
		}
		timer.stopped = true
		return true
	}
}

// runTimers runs all deferred functions that are due and were not stopped.
func (s *fakeSession) runTimers() {
	s.lock.Lock()
	var due []*fakeTimer
	for _, timer := range s.timers {
		if !timer.stopped && !timer.ran {
			timer.ran = true
			due = append(due, timer)
		}
	}
	s.lock.Unlock()

	for _, timer := range due {
		timer.f()
	}
}

func (s *fakeSession) Terminate(reason string) {
	s.terminated <- reason
}

func (s *fakeSession) Logger() logr.Logger {
	return logr.Discard()
}

func (s *fakeSession) Evaluations() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.evaluations...)
}

func (s *fakeSession) Timers() []*fakeTimer {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]*fakeTimer(nil), s.timers...)
}

var _ bridge.Session = (*fakeSession)(nil)
