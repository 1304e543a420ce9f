package model

import (
	"fmt"
	"strings"
	"time"
)

// EntityType identifies one kind of migrated content
type EntityType string

const (
	EntityTip        EntityType = "tip"
	EntityArticle    EntityType = "article"
	EntityInitiative EntityType = "initiative"
	EntityActor      EntityType = "actor"
	EntityForumPost  EntityType = "forum_post"
)

// AllEntityTypes returns every entity type in migration order
func AllEntityTypes() []EntityType {
	return []EntityType{EntityTip, EntityArticle, EntityInitiative, EntityActor, EntityForumPost}
}

// ParseEntityType accepts the canonical name and a few spellings used on the command line
func ParseEntityType(s string) (EntityType, error) {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "-", "_"))) {
	case "tip", "tips":
		return EntityTip, nil
	case "article", "articles":
		return EntityArticle, nil
	case "initiative", "initiatives":
		return EntityInitiative, nil
	case "actor", "actors":
		return EntityActor, nil
	case "forum_post", "forum_posts", "forumpost", "forum":
		return EntityForumPost, nil
	default:
		return "", fmt.Errorf("unknown entity type %q", s)
	}
}

func (t EntityType) String() string {
	return string(t)
}

// HasLocation reports whether records of this type carry a GeoLocation
func (t EntityType) HasLocation() bool {
	return t == EntityInitiative || t == EntityActor
}

// HasAddress reports whether records of this type carry a ParsedAddress
func (t EntityType) HasAddress() bool {
	return t == EntityActor
}

// TagSet is an ordered list of free-text tags. Duplicates and case are preserved.
type TagSet []string

// EntityRecord is the target shape of one migrated row
type EntityRecord struct {
	Type        EntityType
	ID          string
	Title       string // name for actors
	Content     string // description for initiatives and actors
	Category    string
	Tags        TagSet
	ImageURL    string
	URL         string // source url, website
	Location    *GeoLocation
	Address     *ParsedAddress
	Email       string
	Phone       string
	Extra       string // free-form "other" field of tips
	AuthorID    string
	Published   bool
	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Key returns the store key of the record
func (r *EntityRecord) Key() string {
	return string(r.Type) + ":" + r.ID
}

// User is an account imported from the user export
type User struct {
	ID                string
	Email             string
	EncryptedPassword string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
