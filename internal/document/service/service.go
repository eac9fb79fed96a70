package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/es-stream-helper/docgate/internal/engine"
	"github.com/es-stream-helper/docgate/internal/payload"
	"github.com/es-stream-helper/docgate/internal/validator"
	"github.com/es-stream-helper/docgate/pkg/logger"
	"github.com/es-stream-helper/docgate/pkg/metrics"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrSerialization = errors.New("serialization failed")
	ErrEngine        = errors.New("engine request failed")
)

// DeleteAck is the body returned by every accepted delete, matched or not.
const DeleteAck = "ok"

// Gateway is the document operations surface used by the handler layer and
// the export command.
type Gateway interface {
	List(ctx context.Context, docType string) ([]*payload.Map, error)
	Delete(ctx context.Context, docType, id string) (string, error)
	Insert(ctx context.Context, docType string, doc *payload.Map) (string, error)
	Update(ctx context.Context, docType, id string, doc *payload.Map) (string, error)
}

type gateway struct {
	eng   engine.Engine
	index string
	v     *validator.Validator
}

// New returns a Gateway addressing index through eng.
func New(eng engine.Engine, index string) Gateway {
	return &gateway{eng: eng, index: index, v: validator.New()}
}

func (g *gateway) target(docType string) engine.Target {
	return engine.Target{Index: g.index, Type: docType}
}

func (g *gateway) List(ctx context.Context, docType string) (out []*payload.Map, err error) {
	defer observe("list", time.Now(), &err)
	if err := g.checkType(docType); err != nil {
		return nil, err
	}
	hits, err := g.eng.SearchAll(ctx, g.target(docType))
	if err != nil {
		logger.Errorf("list %s/%s: %v", g.index, docType, err)
		return nil, fmt.Errorf("%w: %v", ErrEngine, err)
	}
	out = make([]*payload.Map, 0, len(hits))
	for _, h := range hits {
		doc := h.Source
		if doc == nil {
			doc = payload.NewMap()
		}
		doc.Set("_id", payload.String(h.ID))
		out = append(out, doc)
	}
	return out, nil
}

func (g *gateway) Delete(ctx context.Context, docType, id string) (_ string, err error) {
	defer observe("delete", time.Now(), &err)
	if err := g.validate(docType, id); err != nil {
		return "", err
	}
	logger.Infof("deleting: %s/%s ...", docType, id)
	if err := g.eng.DeleteByID(ctx, g.target(docType), id); err != nil {
		logger.Errorf("delete %s/%s: %v", docType, id, err)
		return "", fmt.Errorf("%w: %v", ErrEngine, err)
	}
	return DeleteAck, nil
}

func (g *gateway) Insert(ctx context.Context, docType string, doc *payload.Map) (_ string, err error) {
	defer observe("insert", time.Now(), &err)
	if err := g.checkType(docType); err != nil {
		return "", err
	}
	src, err := g.serialize(doc)
	if err != nil {
		return "", err
	}
	id, err := g.eng.Index(ctx, g.target(docType), src)
	if err != nil {
		logger.Errorf("insert %s: %v", docType, err)
		return "", fmt.Errorf("%w: %v", ErrEngine, err)
	}
	return id, nil
}

// Update sends the document as both the partial update and the upsert body,
// so a missing id is created with exactly these fields.
func (g *gateway) Update(ctx context.Context, docType, id string, doc *payload.Map) (_ string, err error) {
	defer observe("update", time.Now(), &err)
	if err := g.validate(docType, id); err != nil {
		return "", err
	}
	src, err := g.serialize(doc)
	if err != nil {
		return "", err
	}
	res, err := g.eng.Upsert(ctx, g.target(docType), id, src)
	if err != nil {
		logger.Errorf("update %s/%s: %v", docType, id, err)
		return "", fmt.Errorf("%w: %v", ErrEngine, err)
	}
	return res.String(), nil
}

func (g *gateway) checkType(docType string) error {
	if err := g.v.ValidateType(docType); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if tc, ok := g.eng.(engine.TypeChecker); ok {
		if err := tc.CheckType(docType); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	return nil
}

func (g *gateway) validate(docType, id string) error {
	if err := g.checkType(docType); err != nil {
		return err
	}
	if err := g.v.ValidateID(id); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// serialize encodes doc once; the logged text is the exact body the engine gets.
func (g *gateway) serialize(doc *payload.Map) ([]byte, error) {
	if doc == nil {
		doc = payload.NewMap()
	}
	src, err := payload.Marshal(doc)
	if err != nil {
		logger.Errorf("JsonProcessError: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	logger.Infof("source: %s", src)
	return src, nil
}

func observe(op string, start time.Time, err *error) {
	metrics.GatewayDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	metrics.GatewayOperations.WithLabelValues(op, outcome(*err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	case errors.Is(err, ErrSerialization):
		return "serialization"
	}
	return "engine"
}
