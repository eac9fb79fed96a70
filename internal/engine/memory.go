package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/es-stream-helper/docgate/internal/payload"
)

type memDoc struct {
	id      string
	source  *payload.Map
	version int64
	seqNo   int64
}

// Memory is an in-process backend used for development and tests. Documents
// are kept per index and type in insertion order.
type Memory struct {
	mu    sync.RWMutex
	store map[Target][]*memDoc
	seq   int64
}

var _ Engine = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{store: make(map[Target][]*memDoc)}
}

func (m *Memory) SearchAll(_ context.Context, t Target) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := m.store[t]
	out := make([]Hit, 0, len(docs))
	for _, d := range docs {
		out = append(out, Hit{ID: d.id, Source: d.source.Clone()})
	}
	return out, nil
}

func (m *Memory) DeleteByID(_ context.Context, t Target, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.store[t]
	for i, d := range docs {
		if d.id == id {
			m.store[t] = append(docs[:i], docs[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) Index(_ context.Context, t Target, source []byte) (string, error) {
	src, err := payload.Unmarshal(source)
	if err != nil {
		return "", fmt.Errorf("index %s: %w", t, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	d := &memDoc{id: uuid.NewString(), source: src, version: 1, seqNo: m.seq}
	m.store[t] = append(m.store[t], d)
	return d.id, nil
}

func (m *Memory) Upsert(_ context.Context, t Target, id string, source []byte) (*UpdateResult, error) {
	patch, err := payload.Unmarshal(source)
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", t, id, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	res := &UpdateResult{Index: t.Index, Type: t.Type, ID: id, SeqNo: m.seq, PrimaryTerm: 1, Shards: ShardInfo{Total: 1, Successful: 1}}
	for _, d := range m.store[t] {
		if d.id == id {
			d.source.Merge(patch)
			d.version++
			d.seqNo = m.seq
			res.Version, res.Result = d.version, "updated"
			return res, nil
		}
	}
	m.store[t] = append(m.store[t], &memDoc{id: id, source: patch, version: 1, seqNo: m.seq})
	res.Version, res.Result = 1, "created"
	return res, nil
}

func (m *Memory) Ping(context.Context) error { return nil }
