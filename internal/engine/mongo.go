package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/es-stream-helper/docgate/internal/payload"
)

// Mongo is a MongoDB backend. Each index is a collection; documents are kept
// in an envelope {_id, _type, _version, source} so the caller's fields are
// never mixed with bookkeeping.
type Mongo struct {
	db *mongo.Database
}

var (
	_ Engine = (*Mongo)(nil)
	_ Pinger = (*Mongo)(nil)
)

type mongoDoc struct {
	ID      string `bson:"_id"`
	Type    string `bson:"_type"`
	Version int64  `bson:"_version"`
	Source  bson.D `bson:"source"`
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

func (m *Mongo) col(t Target) *mongo.Collection {
	return m.db.Collection(t.Index)
}

func (m *Mongo) SearchAll(ctx context.Context, t Target) ([]Hit, error) {
	cur, err := m.col(t).Find(ctx, bson.M{"_type": t.Type})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", t, err)
	}
	defer cur.Close(ctx)
	out := []Hit{}
	for cur.Next(ctx) {
		var d mongoDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("search %s: decode: %w", t, err)
		}
		out = append(out, Hit{ID: d.ID, Source: fromBSON(d.Source)})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("search %s: %w", t, err)
	}
	return out, nil
}

func (m *Mongo) DeleteByID(ctx context.Context, t Target, id string) error {
	if _, err := m.col(t).DeleteMany(ctx, bson.M{"_id": id, "_type": t.Type}); err != nil {
		return fmt.Errorf("delete %s/%s: %w", t, id, err)
	}
	return nil
}

func (m *Mongo) Index(ctx context.Context, t Target, source []byte) (string, error) {
	src, err := payload.Unmarshal(source)
	if err != nil {
		return "", fmt.Errorf("index %s: %w", t, err)
	}
	d := mongoDoc{ID: primitive.NewObjectID().Hex(), Type: t.Type, Version: 1, Source: toBSON(src)}
	if _, err := m.col(t).InsertOne(ctx, d); err != nil {
		return "", fmt.Errorf("index %s: %w", t, err)
	}
	return d.ID, nil
}

// Upsert reads, merges and replaces. Two concurrent updates of one id race and
// the last replace wins.
func (m *Mongo) Upsert(ctx context.Context, t Target, id string, source []byte) (*UpdateResult, error) {
	patch, err := payload.Unmarshal(source)
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", t, id, err)
	}
	filter := bson.M{"_id": id, "_type": t.Type}
	res := &UpdateResult{Index: t.Index, Type: t.Type, ID: id, Shards: ShardInfo{Total: 1, Successful: 1}}

	var cur mongoDoc
	err = m.col(t).FindOne(ctx, filter).Decode(&cur)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		cur = mongoDoc{ID: id, Type: t.Type, Version: 1, Source: toBSON(patch)}
		res.Result = "created"
	case err != nil:
		return nil, fmt.Errorf("update %s/%s: %w", t, id, err)
	default:
		merged := fromBSON(cur.Source)
		merged.Merge(patch)
		cur.Source = toBSON(merged)
		cur.Version++
		res.Result = "updated"
	}
	res.Version = cur.Version

	if _, err := m.col(t).ReplaceOne(ctx, filter, cur, options.Replace().SetUpsert(true)); err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", t, id, err)
	}
	return res, nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.db.Client().Ping(ctx, nil)
}

func toBSON(m *payload.Map) bson.D {
	d := make(bson.D, 0, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		d = append(d, bson.E{Key: k, Value: valueToBSON(v)})
	}
	return d
}

func valueToBSON(v payload.Value) interface{} {
	switch v.Kind() {
	case payload.KindString:
		return v.Text()
	case payload.KindNumber:
		if i, err := strconv.ParseInt(v.Text(), 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(v.Text(), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
		return v.Text()
	case payload.KindBool:
		return v.Bool()
	case payload.KindObject:
		return toBSON(v.Map())
	case payload.KindArray:
		a := make(bson.A, 0, len(v.Items()))
		for _, it := range v.Items() {
			a = append(a, valueToBSON(it))
		}
		return a
	}
	return nil
}

func fromBSON(d bson.D) *payload.Map {
	m := payload.NewMap()
	for _, e := range d {
		m.Set(e.Key, bsonToValue(e.Value))
	}
	return m
}

func bsonToValue(x interface{}) payload.Value {
	switch t := x.(type) {
	case nil:
		return payload.Null()
	case string:
		return payload.String(t)
	case bool:
		return payload.Bool(t)
	case int32:
		return payload.Int(int64(t))
	case int64:
		return payload.Int(t)
	case int:
		return payload.Int(int64(t))
	case float64:
		return payload.Float(t)
	case bson.D:
		return payload.Object(fromBSON(t))
	case bson.M:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := payload.NewMap()
		for _, k := range keys {
			m.Set(k, bsonToValue(t[k]))
		}
		return payload.Object(m)
	case bson.A:
		return arrayValue(t)
	case []interface{}:
		return arrayValue(t)
	case primitive.ObjectID:
		return payload.String(t.Hex())
	case primitive.DateTime:
		return payload.String(t.Time().UTC().Format(time.RFC3339Nano))
	}
	return payload.String(fmt.Sprint(x))
}

func arrayValue(items []interface{}) payload.Value {
	out := make([]payload.Value, 0, len(items))
	for _, it := range items {
		out = append(out, bsonToValue(it))
	}
	return payload.Array(out...)
}
