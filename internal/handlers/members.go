package handlers

import (
	"time"

	"projectflow-api/internal/cache"
	"projectflow-api/internal/database"
	"projectflow-api/internal/models"
)

// memberCache avoids re-querying project membership on every ticket event
// fan-out. Entries are invalidated whenever membership changes.
var memberCache = cache.NewSimpleCache[string, []string](cache.Options{ConcurrencySafe: true})

const memberCacheTTL = 30 * time.Second

// projectMemberIDs returns the user ids of every member of a project.
func projectMemberIDs(projectID string) []string {
	if ids, ok := memberCache.Get(projectID); ok {
		return ids
	}

	var ids []string
	if err := database.GetDB().
		Model(&models.ProjectMember{}).
		Where("project_id = ?", projectID).
		Pluck("user_id", &ids).Error; err != nil {
		return nil
	}

	memberCache.Set(projectID, ids, memberCacheTTL)
	return ids
}

func invalidateMemberCache(projectID string) {
	memberCache.Delete(projectID)
}
