package scope

import "gorm.io/gorm"

// ByProject constrains a query to one tenant. Every chunk query carries it.
func ByProject(projectID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("project_id = ?", projectID)
	}
}

// BySource narrows further to a single ingested document.
func BySource(projectID, sourceID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("project_id = ? AND source_id = ?", projectID, sourceID)
	}
}
