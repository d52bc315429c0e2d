package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
)

// stream writes every snapshot from ch as a server-sent event until the
// channel closes, which happens when the request context ends.
func stream[T, V any](c *gin.Context, event string, ch <-chan []T, render func([]T) V) {
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		snapshot, ok := <-ch
		if !ok {
			return false
		}
		c.SSEvent(event, render(snapshot))
		return true
	})
}
