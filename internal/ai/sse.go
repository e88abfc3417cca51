package ai

import (
	"bytes"
	"encoding/json"
	"strings"
)

// DeltaDecoder turns raw byte chunks of an OpenAI-style event stream into
// complete text fragments. It buffers partial lines across feeds; frames can
// validly split mid-token, so malformed JSON payloads are dropped rather than
// surfaced.
type DeltaDecoder struct {
	buf  []byte
	done bool
}

type streamPayload struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Feed consumes one chunk and returns the fragments completed by it.
// After the [DONE] sentinel every further feed returns nothing.
func (d *DeltaDecoder) Feed(chunk []byte) []string {
	if d.done {
		return nil
	}
	d.buf = append(d.buf, chunk...)

	var out []string
	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			return out
		}
		line := strings.TrimSpace(string(d.buf[:i]))
		d.buf = d.buf[i+1:]

		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			d.done = true
			return out
		}

		var decoded streamPayload
		if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
			continue
		}
		if len(decoded.Choices) == 0 {
			continue
		}
		if delta := decoded.Choices[0].Delta.Content; delta != "" {
			out = append(out, delta)
		}
	}
}

// Done reports whether the [DONE] sentinel has been seen.
func (d *DeltaDecoder) Done() bool { return d.done }
