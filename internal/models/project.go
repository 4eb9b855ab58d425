package models

import "time"

// Project belongs to at most one group. GroupID is nullable: deleting a
// group orphans its projects (SET NULL) rather than cascading.
type Project struct {
	ID          uint       `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description,omitempty" db:"description"`
	GroupID     *uint      `json:"group_id,omitempty" db:"group_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	GroupID     uint   `json:"group_id"`
}

type ProjectUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	GroupID     *uint   `json:"group_id,omitempty"`
}

func (p *ProjectUpdate) Apply(pr *Project) {
	if p.Name != nil {
		pr.Name = *p.Name
	}
	if p.Description != nil {
		pr.Description = *p.Description
	}
	if p.GroupID != nil {
		gid := *p.GroupID
		pr.GroupID = &gid
	}
}
