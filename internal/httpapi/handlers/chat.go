package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mango278/physiome/internal/ai"
	"github.com/mango278/physiome/internal/common"
)

const severeLogsReply = "Severe pain detected in logs. Please seek in-person care."

// Chat relays one composed prompt to the model provider and streams the text
// deltas back as a plain-text body. Mid-stream failures are appended as a
// trailing JSON blob since headers are committed by then.
func (h *Handler) Chat(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req orchestrateReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Input) == "" {
		common.Fail(c, http.StatusBadRequest, 10001, "missing 'input' string")
		return
	}

	ctx := c.Request.Context()

	tc, err := h.Repo.LoadTurnContext(ctx, uid, h.Cfg.RecentLogLimit)
	if err != nil {
		log.Printf("[Chat] context load failed uid=%d err=%v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error", "detail": err.Error()})
		return
	}

	for _, l := range tc.Logs.Logs {
		if l.Pain != nil && *l.Pain >= 7 {
			c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(severeLogsReply))
			return
		}
	}

	messages := []ai.Message{
		{Role: "system", Content: ai.SystemPrompt()},
		{Role: "user", Content: ai.ComposeUserMessage(req.Input, tc)},
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no") // helpful if behind nginx
	c.Status(http.StatusOK)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error", "detail": "streaming unsupported"})
		return
	}

	chunks, errs := h.Model.StreamChat(ctx, messages)

	wrote := false
	for {
		select {
		case ch, ok := <-chunks:
			if !ok {
				chunks = nil
				// drain a late provider error, if any
				select {
				case err := <-errs:
					if err != nil {
						writeStreamError(c, flusher, wrote, err)
					}
				default:
				}
				return
			}
			fmt.Fprint(c.Writer, ch)
			flusher.Flush()
			wrote = true

		case err := <-errs:
			if err == nil {
				errs = nil
				continue
			}
			writeStreamError(c, flusher, wrote, err)
			return

		case <-ctx.Done():
			return
		}
	}
}

// writeStreamError signals failure in-band once bytes are already out, or as
// a structured 500 when nothing has been written yet.
func writeStreamError(c *gin.Context, flusher http.Flusher, wrote bool, err error) {
	if !wrote {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upstream error", "detail": err.Error()})
		return
	}
	blob, mErr := json.Marshal(gin.H{"error": err.Error()})
	if mErr != nil {
		return
	}
	fmt.Fprintf(c.Writer, "\n%s", blob)
	flusher.Flush()
}
