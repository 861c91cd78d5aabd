package handlers

import "github.com/emilythestrangee/social-graph/backend/internal/models"

func summaries(users []models.User) []models.UserSummary {
	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out
}
