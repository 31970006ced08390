package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/coder/websocket"

	"github.com/MKhiriev/nota-sync/internal/logger"
)

// Watch implements [RemoteStore]. It dials the realtime endpoint for one
// collection and invokes onRecords with every whole-collection update the
// remote pushes. The call blocks until ctx is cancelled or the connection
// drops; reconnecting is the caller's responsibility.
func (h *httpRemoteStore) Watch(ctx context.Context, uid, collection string, onRecords func(json.RawMessage)) error {
	log := logger.FromContext(ctx)

	wsURL := h.wsBaseURL + collectionPath(uid, collection) + "/watch"

	opts := &websocket.DialOptions{}
	if token := h.Token(); token != "" {
		opts.HTTPHeader = http.Header{"Authorization": {"Bearer " + token}}
	}

	conn, _, err := websocket.Dial(ctx, wsURL, opts)
	if err != nil {
		return fmt.Errorf("watch %s dial: %w", collection, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	log.Debug().
		Str("func", "httpRemoteStore.Watch").
		Str("collection", collection).
		Msg("realtime subscription established")

	for {
		_, data, readErr := conn.Read(ctx)
		if readErr != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("watch %s read: %w", collection, readErr)
		}

		onRecords(json.RawMessage(data))
	}
}
