package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scoreline/scoreline-api/internal/dto"
)

func TestFeedCacheCreatedPrependsNewestFirst(t *testing.T) {
	cache := &feedCache{}
	cache.reset([]dto.SubmissionResponse{{ID: 1}})

	cache.mergeByID(dto.SubmissionEvent{Kind: dto.SubmissionEventCreated, Submission: dto.SubmissionResponse{ID: 2}})

	require.Len(t, cache.items, 2)
	require.Equal(t, uint(2), cache.items[0].ID)
	require.Equal(t, uint(1), cache.items[1].ID)
}

func TestFeedCacheCreatedDeduplicates(t *testing.T) {
	cache := &feedCache{}
	cache.reset([]dto.SubmissionResponse{{ID: 1, Status: "pending"}})

	cache.mergeByID(dto.SubmissionEvent{Kind: dto.SubmissionEventCreated, Submission: dto.SubmissionResponse{ID: 1, Status: "completed"}})

	require.Len(t, cache.items, 1)
	require.Equal(t, "pending", cache.items[0].Status, "duplicate create must not clobber")
}

func TestFeedCacheUpdatedReplacesById(t *testing.T) {
	cache := &feedCache{}
	cache.reset([]dto.SubmissionResponse{{ID: 1, Status: "pending"}, {ID: 2, Status: "pending"}})

	cache.mergeByID(dto.SubmissionEvent{Kind: dto.SubmissionEventUpdated, Submission: dto.SubmissionResponse{ID: 2, Status: "completed"}})

	require.Equal(t, "pending", cache.items[0].Status)
	require.Equal(t, "completed", cache.items[1].Status)
}

func TestFeedCacheUpdatedForUnknownIdIsDropped(t *testing.T) {
	cache := &feedCache{}
	cache.reset([]dto.SubmissionResponse{{ID: 1}})

	cache.mergeByID(dto.SubmissionEvent{Kind: dto.SubmissionEventUpdated, Submission: dto.SubmissionResponse{ID: 99}})

	require.Len(t, cache.items, 1)
	require.Equal(t, uint(1), cache.items[0].ID)
}

func TestFeedCacheLastWriteWins(t *testing.T) {
	cache := &feedCache{}
	cache.reset([]dto.SubmissionResponse{{ID: 1, Status: "pending"}})

	cache.mergeByID(dto.SubmissionEvent{Kind: dto.SubmissionEventUpdated, Submission: dto.SubmissionResponse{ID: 1, Status: "completed"}})
	cache.mergeByID(dto.SubmissionEvent{Kind: dto.SubmissionEventUpdated, Submission: dto.SubmissionResponse{ID: 1, Status: "failed"}})

	require.Equal(t, "failed", cache.items[0].Status)
}
