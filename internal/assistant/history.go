package assistant

import (
	"sort"

	"replify_backend/internal/conversation/domain"
)

// Turn is one entry of generation context.
type Turn struct {
	Role    domain.Role
	Content string
}

// AssembleHistory converts loaded conversation messages into generation
// context: only user and assistant turns, ordered by creation time ascending.
// It is a pure transform; the messages must already be fully loaded.
func AssembleHistory(msgs []domain.Message) []Turn {
	filtered := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role.InModelContext() {
			filtered = append(filtered, m)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})

	turns := make([]Turn, 0, len(filtered))
	for _, m := range filtered {
		turns = append(turns, Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}
