package engine

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
)

// ClientConfig holds the connection settings shared by the Elasticsearch and
// OpenSearch backends.
type ClientConfig struct {
	Addresses     []string
	Username      string
	Password      string
	SkipTLSVerify bool
	TypeMode      TypeMode
	// Refresh is passed to write requests: "", "true", "false" or "wait_for".
	Refresh string
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

func (c ClientConfig) transport() http.RoundTripper {
	if c.Transport != nil {
		return c.Transport
	}
	if c.SkipTLSVerify {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		return t
	}
	return nil
}

// refreshDeletes reports whether delete-by-query should refresh; that API only
// takes a boolean.
func (c ClientConfig) refreshDeletes() bool {
	return c.Refresh == "true" || c.Refresh == "wait_for"
}

// Elastic is the Elasticsearch backend.
type Elastic struct {
	client *elasticsearch.Client
	cfg    ClientConfig
}

var (
	_ Engine      = (*Elastic)(nil)
	_ Pinger      = (*Elastic)(nil)
	_ TypeChecker = (*Elastic)(nil)
)

func NewElastic(cfg ClientConfig) (*Elastic, error) {
	if cfg.TypeMode == "" {
		cfg.TypeMode = TypeModeMapping
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.transport(),
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return &Elastic{client: client, cfg: cfg}, nil
}

func (e *Elastic) typed() bool { return e.cfg.TypeMode == TypeModeMapping }

func (e *Elastic) SearchAll(ctx context.Context, t Target) ([]Hit, error) {
	opts := []func(*esapi.SearchRequest){
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(t.indexName(e.cfg.TypeMode)),
		e.client.Search.WithIgnoreUnavailable(true),
		e.client.Search.WithBody(bytes.NewReader(matchAllQuery)),
	}
	if e.typed() {
		opts = append(opts, e.client.Search.WithDocumentType(t.Type))
	}
	res, err := e.client.Search(opts...)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", t, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, parseError(res.StatusCode, res.Body)
	}
	return decodeHits(res.Body)
}

func (e *Elastic) DeleteByID(ctx context.Context, t Target, id string) error {
	body, err := matchIDQuery(id)
	if err != nil {
		return err
	}
	opts := []func(*esapi.DeleteByQueryRequest){
		e.client.DeleteByQuery.WithContext(ctx),
		e.client.DeleteByQuery.WithIgnoreUnavailable(true),
	}
	if e.typed() {
		opts = append(opts, e.client.DeleteByQuery.WithDocumentType(t.Type))
	}
	if e.cfg.refreshDeletes() {
		opts = append(opts, e.client.DeleteByQuery.WithRefresh(true))
	}
	res, err := e.client.DeleteByQuery([]string{t.indexName(e.cfg.TypeMode)}, bytes.NewReader(body), opts...)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", t, id, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return parseError(res.StatusCode, res.Body)
	}
	return nil
}

func (e *Elastic) Index(ctx context.Context, t Target, source []byte) (string, error) {
	opts := []func(*esapi.IndexRequest){
		e.client.Index.WithContext(ctx),
	}
	if e.typed() {
		opts = append(opts, e.client.Index.WithDocumentType(t.Type))
	}
	if e.cfg.Refresh != "" {
		opts = append(opts, e.client.Index.WithRefresh(e.cfg.Refresh))
	}
	res, err := e.client.Index(t.indexName(e.cfg.TypeMode), bytes.NewReader(source), opts...)
	if err != nil {
		return "", fmt.Errorf("index %s: %w", t, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return "", parseError(res.StatusCode, res.Body)
	}
	return decodeIndexID(res.Body)
}

func (e *Elastic) Upsert(ctx context.Context, t Target, id string, source []byte) (*UpdateResult, error) {
	opts := []func(*esapi.UpdateRequest){
		e.client.Update.WithContext(ctx),
	}
	if e.typed() {
		opts = append(opts, e.client.Update.WithDocumentType(t.Type))
	}
	if e.cfg.Refresh != "" {
		opts = append(opts, e.client.Update.WithRefresh(e.cfg.Refresh))
	}
	res, err := e.client.Update(t.indexName(e.cfg.TypeMode), id, bytes.NewReader(upsertBody(source)), opts...)
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", t, id, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, parseError(res.StatusCode, res.Body)
	}
	return decodeUpdate(res.Body)
}

func (e *Elastic) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: %s", res.Status())
	}
	return nil
}

// CheckType rejects uppercase type labels in index mode.
func (e *Elastic) CheckType(docType string) error {
	if e.cfg.TypeMode == TypeModeIndex {
		return checkIndexType(docType)
	}
	return nil
}
