package httpserver

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"nexuscart/internal/cache"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// watchCartHandler streams cart changes to the client as server-sent
// events, so a second open session sees mutations made by the first. The
// subscription lives for the duration of the request and is torn down
// when the client disconnects.
func watchCartHandler(rdb *redis.Client, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live updates unavailable"})
			return
		}
		ownerID := currentUser(c).ID
		channel := fmt.Sprintf(cache.ChannelCart, ownerID)

		sub := rdb.Subscribe(c.Request.Context(), channel)
		defer sub.Close()
		msgs := sub.Channel()

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")

		c.Stream(func(w io.Writer) bool {
			select {
			case <-c.Request.Context().Done():
				return false
			case msg, ok := <-msgs:
				if !ok {
					return false
				}
				var payload json.RawMessage
				if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
					logger.Printf("cart watch: bad payload owner_id=%s error=%v", ownerID, err)
					return true
				}
				c.SSEvent("cart", payload)
				return true
			}
		})
	}
}
