package sqlstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/David-Botos/content-migrate/pkg/model"
)

const userColumns = `id, email, encrypted_password, created_at, updated_at`

type userRow struct {
	ID                string `db:"id"`
	Email             string `db:"email"`
	EncryptedPassword string `db:"encrypted_password"`
	CreatedAt         int64  `db:"created_at"`
	UpdatedAt         int64  `db:"updated_at"`
}

func newUserRow(u model.User) userRow {
	return userRow{
		ID:                u.ID,
		Email:             u.Email,
		EncryptedPassword: u.EncryptedPassword,
		CreatedAt:         toMillis(u.CreatedAt),
		UpdatedAt:         toMillis(u.UpdatedAt),
	}
}

func (r userRow) toModel() *model.User {
	return &model.User{
		ID:                r.ID,
		Email:             r.Email,
		EncryptedPassword: r.EncryptedPassword,
		CreatedAt:         fromMillis(r.CreatedAt),
		UpdatedAt:         fromMillis(r.UpdatedAt),
	}
}

const recordColumns = `entity_type, id, title, content, category, tags, image_url, url,
	has_location, latitude, longitude, location_address,
	has_address, street, city, postal_code,
	email, phone, extra, author_id, published, published_at, created_at, updated_at`

type recordRow struct {
	EntityType      string  `db:"entity_type"`
	ID              string  `db:"id"`
	Title           string  `db:"title"`
	Content         string  `db:"content"`
	Category        string  `db:"category"`
	Tags            string  `db:"tags"`
	ImageURL        string  `db:"image_url"`
	URL             string  `db:"url"`
	HasLocation     bool    `db:"has_location"`
	Latitude        float64 `db:"latitude"`
	Longitude       float64 `db:"longitude"`
	LocationAddress string  `db:"location_address"`
	HasAddress      bool    `db:"has_address"`
	Street          string  `db:"street"`
	City            string  `db:"city"`
	PostalCode      string  `db:"postal_code"`
	Email           string  `db:"email"`
	Phone           string  `db:"phone"`
	Extra           string  `db:"extra"`
	AuthorID        string  `db:"author_id"`
	Published       bool    `db:"published"`
	PublishedAt     int64   `db:"published_at"`
	CreatedAt       int64   `db:"created_at"`
	UpdatedAt       int64   `db:"updated_at"`
}

func newRecordRow(r *model.EntityRecord) (recordRow, error) {
	tags := r.Tags
	if tags == nil {
		tags = model.TagSet{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return recordRow{}, fmt.Errorf("encoding tags: %w", err)
	}

	row := recordRow{
		EntityType:  string(r.Type),
		ID:          r.ID,
		Title:       r.Title,
		Content:     r.Content,
		Category:    r.Category,
		Tags:        string(encoded),
		ImageURL:    r.ImageURL,
		URL:         r.URL,
		Email:       r.Email,
		Phone:       r.Phone,
		Extra:       r.Extra,
		AuthorID:    r.AuthorID,
		Published:   r.Published,
		PublishedAt: toMillis(r.PublishedAt),
		CreatedAt:   toMillis(r.CreatedAt),
		UpdatedAt:   toMillis(r.UpdatedAt),
	}
	if r.Location != nil {
		row.HasLocation = true
		row.Latitude = r.Location.Latitude
		row.Longitude = r.Location.Longitude
		row.LocationAddress = r.Location.Address
	}
	if r.Address != nil {
		row.HasAddress = true
		row.Street = r.Address.Street
		row.City = r.Address.City
		row.PostalCode = r.Address.PostalCode
	}
	return row, nil
}

func (r recordRow) toModel() (*model.EntityRecord, error) {
	var tags model.TagSet
	if err := json.Unmarshal([]byte(r.Tags), &tags); err != nil {
		return nil, fmt.Errorf("decoding tags of %s:%s: %w", r.EntityType, r.ID, err)
	}
	if tags == nil {
		tags = model.TagSet{}
	}

	rec := &model.EntityRecord{
		Type:        model.EntityType(r.EntityType),
		ID:          r.ID,
		Title:       r.Title,
		Content:     r.Content,
		Category:    r.Category,
		Tags:        tags,
		ImageURL:    r.ImageURL,
		URL:         r.URL,
		Email:       r.Email,
		Phone:       r.Phone,
		Extra:       r.Extra,
		AuthorID:    r.AuthorID,
		Published:   r.Published,
		PublishedAt: fromMillis(r.PublishedAt),
		CreatedAt:   fromMillis(r.CreatedAt),
		UpdatedAt:   fromMillis(r.UpdatedAt),
	}
	if r.HasLocation {
		rec.Location = &model.GeoLocation{Latitude: r.Latitude, Longitude: r.Longitude, Address: r.LocationAddress}
	}
	if r.HasAddress {
		rec.Address = &model.ParsedAddress{Street: r.Street, City: r.City, PostalCode: r.PostalCode}
	}
	return rec, nil
}

type cleaningRow struct {
	ID            string `db:"id"`
	RunID         string `db:"run_id"`
	EntityType    string `db:"entity_type"`
	ColumnName    string `db:"column_name"`
	OriginalValue string `db:"original_value"`
	NewValue      string `db:"new_value"`
	RowIdentifier string `db:"row_identifier"`
	Operation     string `db:"operation"`
	Reason        string `db:"reason"`
	CleanedAt     int64  `db:"cleaned_at"`
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
