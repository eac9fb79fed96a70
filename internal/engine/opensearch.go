package engine

import (
	"bytes"
	"context"
	"fmt"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// OpenSearch is the OpenSearch backend. OpenSearch has no mapping types, so
// every type lives in its own "<index>-<type>" index whatever TypeMode says.
type OpenSearch struct {
	client *opensearch.Client
	cfg    ClientConfig
}

var (
	_ Engine      = (*OpenSearch)(nil)
	_ Pinger      = (*OpenSearch)(nil)
	_ TypeChecker = (*OpenSearch)(nil)
)

func NewOpenSearch(cfg ClientConfig) (*OpenSearch, error) {
	cfg.TypeMode = TypeModeIndex
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.transport(),
	})
	if err != nil {
		return nil, fmt.Errorf("opensearch client: %w", err)
	}
	return &OpenSearch{client: client, cfg: cfg}, nil
}

func (o *OpenSearch) SearchAll(ctx context.Context, t Target) ([]Hit, error) {
	res, err := o.client.Search(
		o.client.Search.WithContext(ctx),
		o.client.Search.WithIndex(t.indexName(TypeModeIndex)),
		o.client.Search.WithIgnoreUnavailable(true),
		o.client.Search.WithBody(bytes.NewReader(matchAllQuery)),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", t, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, parseError(res.StatusCode, res.Body)
	}
	return decodeHits(res.Body)
}

func (o *OpenSearch) DeleteByID(ctx context.Context, t Target, id string) error {
	body, err := matchIDQuery(id)
	if err != nil {
		return err
	}
	opts := []func(*opensearchapi.DeleteByQueryRequest){
		o.client.DeleteByQuery.WithContext(ctx),
		o.client.DeleteByQuery.WithIgnoreUnavailable(true),
	}
	if o.cfg.refreshDeletes() {
		opts = append(opts, o.client.DeleteByQuery.WithRefresh(true))
	}
	res, err := o.client.DeleteByQuery([]string{t.indexName(TypeModeIndex)}, bytes.NewReader(body), opts...)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", t, id, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return parseError(res.StatusCode, res.Body)
	}
	return nil
}

func (o *OpenSearch) Index(ctx context.Context, t Target, source []byte) (string, error) {
	opts := []func(*opensearchapi.IndexRequest){
		o.client.Index.WithContext(ctx),
	}
	if o.cfg.Refresh != "" {
		opts = append(opts, o.client.Index.WithRefresh(o.cfg.Refresh))
	}
	res, err := o.client.Index(t.indexName(TypeModeIndex), bytes.NewReader(source), opts...)
	if err != nil {
		return "", fmt.Errorf("index %s: %w", t, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return "", parseError(res.StatusCode, res.Body)
	}
	return decodeIndexID(res.Body)
}

func (o *OpenSearch) Upsert(ctx context.Context, t Target, id string, source []byte) (*UpdateResult, error) {
	opts := []func(*opensearchapi.UpdateRequest){
		o.client.Update.WithContext(ctx),
	}
	if o.cfg.Refresh != "" {
		opts = append(opts, o.client.Update.WithRefresh(o.cfg.Refresh))
	}
	res, err := o.client.Update(t.indexName(TypeModeIndex), id, bytes.NewReader(upsertBody(source)), opts...)
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", t, id, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, parseError(res.StatusCode, res.Body)
	}
	r, err := decodeUpdate(res.Body)
	if err != nil {
		return nil, err
	}
	// the physical index already encodes the type; report the caller's label
	r.Type = t.Type
	return r, nil
}

func (o *OpenSearch) Ping(ctx context.Context) error {
	res, err := o.client.Ping(o.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("opensearch ping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("opensearch ping: %s", res.Status())
	}
	return nil
}

func (o *OpenSearch) CheckType(docType string) error {
	return checkIndexType(docType)
}
