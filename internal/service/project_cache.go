package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/taskhive-io/taskhive-ce/internal/cache"
	"github.com/taskhive-io/taskhive-ce/internal/models"
)

const (
	projectItemTTL = 30 * time.Minute
	projectListTTL = 5 * time.Minute
)

// projectCache wraps the cache-aside mechanics for project reads so the
// service methods stay about authorization and mutation. Every cache
// failure degrades to a store read and is logged, never propagated.
type projectCache struct {
	cache cache.Cache
}

func itemKey(id uint) string {
	return fmt.Sprintf("project:%d", id)
}

func listKey(skip, limit int) string {
	return fmt.Sprintf("projects:list:%d:%d", skip, limit)
}

func groupListKey(groupID uint, skip, limit int) string {
	return fmt.Sprintf("projects:group:%d:%d:%d", groupID, skip, limit)
}

// getItem returns the cached project, or nil on miss. A value that no
// longer deserializes is actively evicted so schema drift cannot wedge a
// key until TTL expiry.
func (pc *projectCache) getItem(ctx context.Context, id uint) *models.Project {
	var p models.Project
	hit, err := pc.cache.Get(ctx, itemKey(id), &p)
	if err != nil {
		log.Printf("cache: read project %d: %v", id, err)
		if delErr := pc.cache.Delete(ctx, itemKey(id)); delErr != nil {
			log.Printf("cache: evict project %d: %v", id, delErr)
		}
		return nil
	}
	if !hit {
		return nil
	}
	return &p
}

func (pc *projectCache) setItem(ctx context.Context, p *models.Project) {
	if err := pc.cache.Set(ctx, itemKey(p.ID), p, projectItemTTL); err != nil {
		log.Printf("cache: store project %d: %v", p.ID, err)
	}
}

func (pc *projectCache) getList(ctx context.Context, key string) []*models.Project {
	var projects []*models.Project
	hit, err := pc.cache.Get(ctx, key, &projects)
	if err != nil {
		log.Printf("cache: read %s: %v", key, err)
		if delErr := pc.cache.Delete(ctx, key); delErr != nil {
			log.Printf("cache: evict %s: %v", key, delErr)
		}
		return nil
	}
	if !hit {
		return nil
	}
	return projects
}

func (pc *projectCache) setList(ctx context.Context, key string, projects []*models.Project) {
	if len(projects) == 0 {
		return
	}
	if err := pc.cache.Set(ctx, key, projects, projectListTTL); err != nil {
		log.Printf("cache: store %s: %v", key, err)
	}
}

// invalidate evicts the single-item key and every list that could contain
// the project. groupIDs carries the old and (if moved) new group so both
// sides of a move are covered.
func (pc *projectCache) invalidate(ctx context.Context, projectID uint, groupIDs ...*uint) {
	if err := pc.cache.Delete(ctx, itemKey(projectID)); err != nil {
		log.Printf("cache: evict project %d: %v", projectID, err)
	}
	pc.invalidateLists(ctx, groupIDs...)
}

func (pc *projectCache) invalidateLists(ctx context.Context, groupIDs ...*uint) {
	if _, err := pc.cache.DeletePattern(ctx, "projects:list:*"); err != nil {
		log.Printf("cache: invalidate project lists: %v", err)
	}
	seen := make(map[uint]bool)
	for _, gid := range groupIDs {
		if gid == nil || seen[*gid] {
			continue
		}
		seen[*gid] = true
		pattern := fmt.Sprintf("projects:group:%d:*", *gid)
		if _, err := pc.cache.DeletePattern(ctx, pattern); err != nil {
			log.Printf("cache: invalidate %s: %v", pattern, err)
		}
	}
}
