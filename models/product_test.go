package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAddReviewRecomputesMean(t *testing.T) {
	p := &Product{Name: "Kettle"}

	ratings := []int{5, 4, 2, 4}
	sum := 0
	for i, r := range ratings {
		require.NoError(t, p.AddReview(Review{UserID: primitive.NewObjectID(), Rating: r}))
		sum += r
		assert.Equal(t, i+1, p.NumReviews)
		assert.Equal(t, len(p.Reviews), p.NumReviews)
		assert.Equal(t, float64(sum)/float64(i+1), p.Rating)
	}
	assert.Equal(t, 3.75, p.Rating)
}

func TestAddReviewRejectsSecondFromSameUser(t *testing.T) {
	user := primitive.NewObjectID()
	p := &Product{Name: "Kettle"}
	require.NoError(t, p.AddReview(Review{UserID: user, Rating: 5}))

	err := p.AddReview(Review{UserID: user, Rating: 1})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.Equal(t, 1, p.NumReviews)
	assert.Equal(t, 5.0, p.Rating)
}
