// Package engine abstracts the search/indexing backend behind the four
// operations the gateway needs.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/es-stream-helper/docgate/internal/payload"
)

var (
	// ErrUnknownBackend is returned by New for a backend name it does not know.
	ErrUnknownBackend = errors.New("engine: unknown backend")
	// ErrTypeName is returned by CheckType for a type label the backend cannot
	// address.
	ErrTypeName = errors.New("engine: unsupported type name")
)

// Target addresses a document type within an index.
type Target struct {
	Index string
	Type  string
}

func (t Target) String() string { return t.Index + "/" + t.Type }

// TypeMode selects how a document type is scoped inside an index.
type TypeMode string

const (
	// TypeModeMapping uses the engine's native mapping types.
	TypeModeMapping TypeMode = "mapping"
	// TypeModeIndex stores each type in its own "<index>-<type>" index.
	TypeModeIndex TypeMode = "index"
)

// ParseTypeMode accepts "mapping", "index" or "" (mapping).
func ParseTypeMode(s string) (TypeMode, error) {
	switch TypeMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", TypeModeMapping:
		return TypeModeMapping, nil
	case TypeModeIndex:
		return TypeModeIndex, nil
	}
	return "", fmt.Errorf("engine: unknown type mode %q", s)
}

// indexName is the physical index holding t's documents under mode.
func (t Target) indexName(mode TypeMode) string {
	if mode == TypeModeIndex {
		return strings.ToLower(t.Index + "-" + t.Type)
	}
	return t.Index
}

// checkIndexType rejects type labels that would collide once lowercased into
// an index name.
func checkIndexType(docType string) error {
	if strings.ToLower(docType) != docType {
		return fmt.Errorf("%w: %q must be lowercase when each type has its own index", ErrTypeName, docType)
	}
	return nil
}

// Hit is one document returned by SearchAll.
type Hit struct {
	ID     string
	Source *payload.Map
}

// Engine is the capability the gateway consumes. Implementations must be safe
// for concurrent use.
type Engine interface {
	// SearchAll returns every document of the target type, in engine order.
	SearchAll(ctx context.Context, t Target) ([]Hit, error)
	// DeleteByID deletes the documents of the target type whose id matches.
	// Matching nothing is not an error.
	DeleteByID(ctx context.Context, t Target, id string) error
	// Index stores source as a new document and returns its engine-assigned id.
	Index(ctx context.Context, t Target, source []byte) (string, error)
	// Upsert merges source into document id, creating it from source when absent.
	Upsert(ctx context.Context, t Target, id string, source []byte) (*UpdateResult, error)
}

// TypeChecker is implemented by backends that restrict type labels further
// than the gateway's own validation.
type TypeChecker interface {
	CheckType(docType string) error
}

// Pinger is implemented by backends that can report their availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ShardInfo mirrors the _shards section of a write response.
type ShardInfo struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// UpdateResult describes the outcome of an Upsert.
type UpdateResult struct {
	Index       string    `json:"_index"`
	Type        string    `json:"_type"`
	ID          string    `json:"_id"`
	Version     int64     `json:"_version"`
	SeqNo       int64     `json:"_seq_no"`
	PrimaryTerm int64     `json:"_primary_term"`
	Result      string    `json:"result"`
	Shards      ShardInfo `json:"_shards"`
}

func (r *UpdateResult) String() string {
	return fmt.Sprintf("UpdateResponse[index=%s,type=%s,id=%s,version=%d,seqNo=%d,primaryTerm=%d,result=%s,shards={total=%d, successful=%d, failed=%d}]",
		r.Index, r.Type, r.ID, r.Version, r.SeqNo, r.PrimaryTerm, r.Result,
		r.Shards.Total, r.Shards.Successful, r.Shards.Failed)
}
