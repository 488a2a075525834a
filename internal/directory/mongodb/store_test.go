package mongodb

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/danhigham/telegrame/internal/directory"
	"github.com/danhigham/telegrame/internal/domain"
)

func TestFindFilterFirstPage(t *testing.T) {
	got := findFilter(directory.Query{Keyword: "Ma", ExcludeUserID: "me", Limit: 15})
	want := bson.D{
		{Key: "keywords", Value: "Ma"},
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: "me"}}},
	}
	require.Equal(t, want, got)
}

func TestFindFilterAfterCursor(t *testing.T) {
	got := findFilter(directory.Query{
		Keyword: "Ma",
		Limit:   15,
		After:   &directory.Cursor{DisplayName: "Mark", UserID: "u7"},
	})
	require.Len(t, got, 3)
	require.Equal(t, "$or", got[2].Key)
	branches, ok := got[2].Value.(bson.A)
	require.True(t, ok)
	require.Len(t, branches, 2)
}

func TestFieldKey(t *testing.T) {
	key, err := fieldKey(directory.FieldUserID)
	require.NoError(t, err)
	require.Equal(t, "_id", key)

	_, err = fieldKey(directory.Field("phone"))
	require.Error(t, err)
}

func TestUserDocumentFillsKeywords(t *testing.T) {
	doc := newUserDocument(domain.User{ID: "u1", DisplayName: "Al", Username: "al_123"})
	require.Equal(t, []string{"A", "Al", "a", "al", "al_", "al_1", "al_12", "al_123"}, doc.Keywords)
	require.False(t, doc.DateCreated.IsZero())
	require.Equal(t, "u1", doc.toDomain().ID)
}
