package bridge

import (
	"context"
	"fmt"
	"net/url"

	"github.com/specialistvlad/circles/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	sioclient "github.com/zishang520/socket.io-client-go/socket"
)

// Observer receives events seen by a Monitor.
type Observer func(event string, payload any)

// Monitor connects to a running bridge server as a client and reports every
// graph, params and error event to observe until ctx ends. On connect it asks
// for the latest graph.
func Monitor(ctx context.Context, rawURL string, observe Observer) error {
	logger := ctxlog.FromContext(ctx).With("monitor", rawURL)

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse monitor URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("monitor URL %q needs a scheme and host", rawURL)
	}

	baseURL := fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
	opts := sioclient.DefaultOptions()
	if parsed.Path != "" && parsed.Path != "/" {
		opts.SetPath(parsed.Path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := sioclient.NewManager(baseURL, opts)
	io := manager.Socket("/", opts)
	defer func() {
		logger.Debug("Disconnecting monitor client.")
		io.Disconnect()
	}()

	connectErr := make(chan error, 1)

	io.On(types.EventName("connect"), func(...any) {
		logger.Info("Monitor connected.", "sid", io.Id())
		io.Emit(EventGraphGet, map[string]any{})
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("monitor connection failed")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = fmt.Errorf("monitor connection failed: %w", e)
			}
		}
		select {
		case connectErr <- err:
		default:
		}
	})
	for _, event := range []string{EventGraph, EventParams, EventError} {
		io.On(types.EventName(event), func(data ...any) {
			var payload any
			if len(data) > 0 {
				payload = data[0]
			}
			observe(event, payload)
		})
	}

	io.Connect()

	select {
	case <-ctx.Done():
		return nil
	case err := <-connectErr:
		return err
	}
}
