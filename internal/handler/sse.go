package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// streamSSE はスナップショット購読をServer-Sent Eventsとして流す。
// 書き込みが追いつかない間に届いた更新は最新1件に潰す
// （どうせ全量スナップショットなので途中を飛ばしてよい）。
func streamSSE[T any](c echo.Context, subscribe func(context.Context, func(T)) (func(), error)) error {
	ctx := c.Request().Context()

	updates := make(chan T, 1)
	offerLatest := func(v T) {
		for {
			select {
			case updates <- v:
				return
			default:
				select {
				case <-updates:
				default:
				}
			}
		}
	}

	cancel, err := subscribe(ctx, offerLatest)
	if err != nil {
		return writeError(c, err)
	}
	defer cancel()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	for {
		select {
		case <-ctx.Done():
			return nil
		case v := <-updates:
			payload, err := json.Marshal(v)
			if err != nil {
				return nil
			}
			if _, err := fmt.Fprintf(res, "data: %s\n\n", payload); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
