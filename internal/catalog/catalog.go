package catalog

import (
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"blogmetrics/internal/config"
)

// Post is one entry in the blog's post catalog. The publishing pipeline
// owns this table; the gateway only ever reads it.
type Post struct {
	ID uint `gorm:"primaryKey"`

	Slug  string `gorm:"uniqueIndex;not null"`
	Title string

	PublishedAt time.Time `gorm:"index"`

	// Tags holds the post's taxonomy as stored by the publishing side.
	Tags datatypes.JSONSlice[string] `gorm:"type:json"`
}

// Connect opens a GORM connection to the catalog using APP_DATABASE_URL
// (PostgreSQL URL). No migration runs here: the catalog schema belongs to
// the publishing pipeline.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := strings.TrimSpace(cfg.DatabaseURL)
	if dsn == "" {
		return nil, errors.New("APP_DATABASE_URL is required (PostgreSQL URL)")
	}
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil, errors.New("APP_DATABASE_URL must be a postgres:// or postgresql:// URL")
	}

	return gorm.Open(postgres.Open(dsn), &gorm.Config{PrepareStmt: true})
}

// Load returns every published post, newest first. This order is the
// source of truth for tie-breaking in rankings downstream.
func Load(db *gorm.DB) ([]Post, error) {
	var posts []Post
	if err := db.Where("published_at <= ?", time.Now()).
		Order("published_at DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}
