package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/es-stream-helper/docgate/internal/payload"
)

// Request bodies and response decoding shared by the Elasticsearch and
// OpenSearch backends, which speak the same REST dialect.

var matchAllQuery = []byte(`{"query":{"match_all":{}}}`)

func matchIDQuery(id string) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{"_id": id},
		},
	})
}

// upsertBody patches an existing document with source and creates it from
// source when absent.
func upsertBody(source []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(2*len(source) + 20)
	buf.WriteString(`{"doc":`)
	buf.Write(source)
	buf.WriteString(`,"upsert":`)
	buf.Write(source)
	buf.WriteByte('}')
	return buf.Bytes()
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func decodeHits(r io.Reader) ([]Hit, error) {
	var resp searchResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	hits := make([]Hit, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		src := payload.NewMap()
		if len(h.Source) > 0 && string(h.Source) != "null" {
			m, err := payload.Unmarshal(h.Source)
			if err != nil {
				return nil, fmt.Errorf("decode hit %s: %w", h.ID, err)
			}
			src = m
		}
		hits = append(hits, Hit{ID: h.ID, Source: src})
	}
	return hits, nil
}

func decodeIndexID(r io.Reader) (string, error) {
	var resp struct {
		ID string `json:"_id"`
	}
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return "", fmt.Errorf("decode index response: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("index response carries no _id")
	}
	return resp.ID, nil
}

func decodeUpdate(r io.Reader) (*UpdateResult, error) {
	var res UpdateResult
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode update response: %w", err)
	}
	return &res, nil
}

// ResponseError is an error status returned by the engine.
type ResponseError struct {
	StatusCode int
	Type       string
	Reason     string
}

func (e *ResponseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("engine: status %d, reason: %s", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("engine: status %d, type: %s, reason: %s", e.StatusCode, e.Type, e.Reason)
}

type errorDetails struct {
	Type      string `json:"type"`
	Reason    string `json:"reason"`
	RootCause []struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"root_cause"`
}

// parseError builds a ResponseError from an error response body. The body's
// "error" member is either an object with root causes or a bare string.
func parseError(status int, body io.Reader) error {
	raw, _ := io.ReadAll(body)
	e := &ResponseError{StatusCode: status}
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Error) == 0 {
		e.Reason = string(bytes.TrimSpace(raw))
		return e
	}
	var s string
	if err := json.Unmarshal(envelope.Error, &s); err == nil {
		e.Reason = s
		return e
	}
	var d errorDetails
	if err := json.Unmarshal(envelope.Error, &d); err != nil {
		e.Reason = string(envelope.Error)
		return e
	}
	if len(d.RootCause) != 0 {
		e.Type, e.Reason = d.RootCause[0].Type, d.RootCause[0].Reason
	} else {
		e.Type, e.Reason = d.Type, d.Reason
	}
	return e
}
