package envelope

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/pretty"

	"github.com/dshills/announcement/internal/event"
)

// Adapter bridges JSON envelopes and an Announcement: it emits decoded
// envelopes and taps emitted events out to writers.
type Adapter struct {
	a      *event.Announcement
	logger logrus.FieldLogger
	pretty bool

	mu     sync.Mutex
	taps   []*event.Listener
	closed bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(ad *Adapter) {
		if logger != nil {
			ad.logger = logger
		}
	}
}

// WithPretty makes taps write indented JSON instead of one line per event.
func WithPretty(enabled bool) Option {
	return func(ad *Adapter) {
		ad.pretty = enabled
	}
}

// NewAdapter creates an adapter for a.
func NewAdapter(a *event.Announcement, opts ...Option) *Adapter {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ad := &Adapter{
		a:      a,
		logger: logger,
	}
	for _, opt := range opts {
		opt(ad)
	}
	return ad
}

// EmitJSON decodes data and emits the event it names.
func (ad *Adapter) EmitJSON(data []byte) error {
	env, err := Decode(data)
	if err != nil {
		return err
	}
	ad.a.Emit(env.Event, env.Args...)
	return nil
}

// EmitLines emits one event per non-blank line read from r and returns how
// many were emitted. Lines that fail to decode are logged and skipped; only
// read errors are returned.
func (ad *Adapter) EmitLines(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	emitted := 0
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		if err := ad.EmitJSON(data); err != nil {
			ad.logger.WithError(err).WithField("line", line).Warn("Skipping envelope")
			continue
		}
		emitted++
	}
	if err := scanner.Err(); err != nil {
		return emitted, fmt.Errorf("read envelopes: %w", err)
	}
	return emitted, nil
}

// Tap registers a listener for name that writes every emitted event to w
// as an envelope. Encoding and write failures are logged. Writes happen on
// the scheduler, so w needs no locking of its own unless it is shared.
func (ad *Adapter) Tap(name string, w io.Writer) *event.Listener {
	l := ad.a.On(name, func(args ...any) {
		out, err := Encode(Envelope{Event: name, Args: args})
		if err != nil {
			ad.logger.WithError(err).WithField("event", name).Warn("Cannot encode event")
			return
		}
		if ad.pretty {
			out = pretty.Pretty(out)
		} else {
			out = append(out, '\n')
		}
		if _, err := w.Write(out); err != nil {
			ad.logger.WithError(err).WithField("event", name).Warn("Cannot write event")
		}
	})

	ad.mu.Lock()
	defer ad.mu.Unlock()
	if ad.closed {
		ad.a.Off(name, l)
		return nil
	}
	ad.taps = append(ad.taps, l)
	return l
}

// Close removes every tap.
func (ad *Adapter) Close() error {
	ad.mu.Lock()
	defer ad.mu.Unlock()

	if ad.closed {
		return nil
	}
	ad.closed = true
	for _, l := range ad.taps {
		ad.a.Off(l.Name(), l)
	}
	ad.taps = nil
	return nil
}
