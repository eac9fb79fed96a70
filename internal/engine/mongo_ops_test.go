package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/es-stream-helper/docgate/internal/payload"
)

const mongoNS = "mtest.mydata"

func envelope(id string, version int64, source bson.D) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "_type", Value: "widgets"},
		{Key: "_version", Value: version},
		{Key: "source", Value: source},
	}
}

func TestMongo_SearchAll(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("filters by type and unwraps source", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mongoNS, mtest.FirstBatch,
			envelope("a", 1, bson.D{{Key: "name", Value: "A"}, {Key: "qty", Value: int64(1)}}),
			envelope("b", 2, bson.D{}),
		))

		hits, err := NewMongo(mt.DB).SearchAll(context.Background(), widgets)
		require.NoError(mt, err)
		require.Len(mt, hits, 2)
		require.Equal(mt, "a", hits[0].ID)
		out, err := payload.Marshal(hits[0].Source)
		require.NoError(mt, err)
		require.Equal(mt, `{"name":"A","qty":1}`, string(out))
		require.Equal(mt, 0, hits[1].Source.Len())

		cmd := mt.GetStartedEvent().Command
		require.Equal(mt, "mydata", cmd.Lookup("find").StringValue())
		require.Equal(mt, "widgets", cmd.Lookup("filter", "_type").StringValue())
	})

	mt.Run("no documents", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mongoNS, mtest.FirstBatch))
		hits, err := NewMongo(mt.DB).SearchAll(context.Background(), widgets)
		require.NoError(mt, err)
		require.NotNil(mt, hits)
		require.Empty(mt, hits)
	})

	mt.Run("server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad filter", Name: "BadValue"}))
		_, err := NewMongo(mt.DB).SearchAll(context.Background(), widgets)
		require.ErrorContains(mt, err, "bad filter")
	})
}

func TestMongo_DeleteByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("scoped to type", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		require.NoError(mt, NewMongo(mt.DB).DeleteByID(context.Background(), widgets, "w-1"))

		cmd := mt.GetStartedEvent().Command
		require.Equal(mt, "mydata", cmd.Lookup("delete").StringValue())
		require.Equal(mt, "w-1", cmd.Lookup("deletes", "0", "q", "_id").StringValue())
		require.Equal(mt, "widgets", cmd.Lookup("deletes", "0", "q", "_type").StringValue())
	})

	mt.Run("server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "nope", Name: "BadValue"}))
		err := NewMongo(mt.DB).DeleteByID(context.Background(), widgets, "w-1")
		require.ErrorContains(mt, err, "delete mydata/widgets/w-1")
	})
}

func TestMongo_Index(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("wraps source in envelope", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		id, err := NewMongo(mt.DB).Index(context.Background(), widgets, []byte(`{"name":"A","qty":3}`))
		require.NoError(mt, err)
		require.Len(mt, id, 24)

		cmd := mt.GetStartedEvent().Command
		require.Equal(mt, "mydata", cmd.Lookup("insert").StringValue())
		require.Equal(mt, id, cmd.Lookup("documents", "0", "_id").StringValue())
		require.Equal(mt, "widgets", cmd.Lookup("documents", "0", "_type").StringValue())
		require.Equal(mt, int64(1), cmd.Lookup("documents", "0", "_version").Int64())
		require.Equal(mt, "A", cmd.Lookup("documents", "0", "source", "name").StringValue())
		require.Equal(mt, int64(3), cmd.Lookup("documents", "0", "source", "qty").Int64())
	})

	mt.Run("rejects non-object source", func(mt *mtest.T) {
		_, err := NewMongo(mt.DB).Index(context.Background(), widgets, []byte(`[1]`))
		require.ErrorIs(mt, err, payload.ErrNotObject)
		require.Nil(mt, mt.GetStartedEvent())
	})
}

func TestMongo_Upsert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing id is created from source", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, mongoNS, mtest.FirstBatch),
			mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: 1},
				bson.E{Key: "nModified", Value: 0},
				bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "w-7"}}}},
			),
		)
		res, err := NewMongo(mt.DB).Upsert(context.Background(), widgets, "w-7", []byte(`{"qty":"5"}`))
		require.NoError(mt, err)
		require.Equal(mt, "created", res.Result)
		require.Equal(mt, int64(1), res.Version)
		require.Equal(mt, "w-7", res.ID)

		find := mt.GetStartedEvent().Command
		require.Equal(mt, "w-7", find.Lookup("filter", "_id").StringValue())
		require.Equal(mt, "widgets", find.Lookup("filter", "_type").StringValue())

		update := mt.GetStartedEvent().Command
		require.Equal(mt, "mydata", update.Lookup("update").StringValue())
		require.Equal(mt, "widgets", update.Lookup("updates", "0", "q", "_type").StringValue())
		require.True(mt, update.Lookup("updates", "0", "upsert").Boolean())
		require.Equal(mt, "5", update.Lookup("updates", "0", "u", "source", "qty").StringValue())

		src, err := update.Lookup("updates", "0", "u", "source").Document().Elements()
		require.NoError(mt, err)
		require.Len(mt, src, 1)
	})

	mt.Run("existing id is merged", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, mongoNS, mtest.FirstBatch, envelope("w-1", 3, bson.D{
				{Key: "name", Value: "A"},
				{Key: "qty", Value: "1"},
				{Key: "dims", Value: bson.D{{Key: "w", Value: int64(2)}, {Key: "h", Value: int64(3)}}},
			})),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)
		res, err := NewMongo(mt.DB).Upsert(context.Background(), widgets, "w-1", []byte(`{"qty":"2","dims":{"h":4}}`))
		require.NoError(mt, err)
		require.Equal(mt, "updated", res.Result)
		require.Equal(mt, int64(4), res.Version)
		require.Contains(mt, res.String(), "result=updated")

		_ = mt.GetStartedEvent()
		u := mt.GetStartedEvent().Command.Lookup("updates", "0", "u")
		require.Equal(mt, int64(4), u.Document().Lookup("_version").Int64())
		require.Equal(mt, "A", u.Document().Lookup("source", "name").StringValue())
		require.Equal(mt, "2", u.Document().Lookup("source", "qty").StringValue())
		require.Equal(mt, int64(2), u.Document().Lookup("source", "dims", "w").Int64())
		require.Equal(mt, int64(4), u.Document().Lookup("source", "dims", "h").Int64())
	})

	mt.Run("read failure stops before replace", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad", Name: "BadValue"}))
		_, err := NewMongo(mt.DB).Upsert(context.Background(), widgets, "w-1", []byte(`{"a":"1"}`))
		require.ErrorContains(mt, err, "update mydata/widgets/w-1")

		require.Equal(mt, "find", mt.GetStartedEvent().CommandName)
		require.Nil(mt, mt.GetStartedEvent())
	})
}
