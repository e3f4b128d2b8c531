package service

import "github.com/scoreline/scoreline-api/internal/dto"

// feedCache is an explicitly owned snapshot of one owner's submissions
// list. All mutation goes through mergeByID so update ordering stays
// auditable: created events prepend (newest first, matching the list
// query), updated events replace the record with the same identity, last
// write wins, and updates for unknown identities are dropped.
type feedCache struct {
	items []dto.SubmissionResponse
}

func (c *feedCache) reset(items []dto.SubmissionResponse) {
	c.items = items
}

func (c *feedCache) mergeByID(event dto.SubmissionEvent) {
	switch event.Kind {
	case dto.SubmissionEventCreated:
		for _, existing := range c.items {
			if existing.ID == event.Submission.ID {
				return
			}
		}
		c.items = append([]dto.SubmissionResponse{event.Submission}, c.items...)
	case dto.SubmissionEventUpdated:
		for i, existing := range c.items {
			if existing.ID == event.Submission.ID {
				c.items[i] = event.Submission
				return
			}
		}
	}
}
