package middlewares

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/gob"
	"encoding/hex"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type cachedBody struct {
	Status int
	Header map[string][]string
	Body   []byte
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// cacheKeyFrom maps a request to its cache key. Only the public event feed
// is cached; everything else passes through.
func cacheKeyFrom(c *gin.Context) string {
	if c.Request.Method != "GET" || c.FullPath() != "/api/events" {
		return ""
	}
	return "cache:events:list:" + sha1Hex("GET|/api/events|"+c.Request.URL.RawQuery)
}

// ResponseCache serves the public feed from Redis when a fresh copy exists,
// and captures 2xx responses for ttl otherwise.
func ResponseCache(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := cacheKeyFrom(c)
		if key == "" {
			c.Next()
			return
		}

		if b, err := rdb.Get(context.Background(), key).Bytes(); err == nil && len(b) > 0 {
			var hit cachedBody
			if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&hit); err == nil {
				for k, vals := range hit.Header {
					for _, v := range vals {
						c.Writer.Header().Add(k, v)
					}
				}
				c.Writer.Header().Set("X-Cache", "HIT")
				c.Status(hit.Status)
				_, _ = c.Writer.Write(hit.Body)
				c.Abort()
				return
			}
		}

		buf := &bytes.Buffer{}
		bw := &bufferedWriter{ResponseWriter: c.Writer, buf: buf}
		c.Writer = bw

		c.Next()

		if bw.Status() >= 200 && bw.Status() < 300 {
			item := cachedBody{
				Status: bw.Status(),
				Header: c.Writer.Header(),
				Body:   buf.Bytes(),
			}
			var o bytes.Buffer
			if err := gob.NewEncoder(&o).Encode(item); err == nil {
				_ = rdb.Set(context.Background(), key, o.Bytes(), ttl).Err()
			}
			c.Writer.Header().Set("X-Cache", "MISS")
		}
	}
}

type bufferedWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}
