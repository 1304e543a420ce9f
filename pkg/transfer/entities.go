package transfer

import (
	"strings"
	"time"

	"github.com/David-Botos/content-migrate/pkg/address"
	"github.com/David-Botos/content-migrate/pkg/category"
	"github.com/David-Botos/content-migrate/pkg/cleaner"
	"github.com/David-Botos/content-migrate/pkg/converter"
	"github.com/David-Botos/content-migrate/pkg/dump"
	"github.com/David-Botos/content-migrate/pkg/model"
)

// RecordBuilder turns a bound dump row into an EntityRecord
type RecordBuilder struct {
	converter *converter.TypeConverter
	mapper    *category.Mapper
	addresses *address.Parser
}

// NewRecordBuilder creates a builder from the field parsers
func NewRecordBuilder(conv *converter.TypeConverter, mapper *category.Mapper, addresses *address.Parser) *RecordBuilder {
	return &RecordBuilder{
		converter: conv,
		mapper:    mapper,
		addresses: addresses,
	}
}

// Published reports whether the row should be migrated. A missing or null
// flag counts as published.
func (b *RecordBuilder) Published(row model.BoundRow) bool {
	raw, ok := row["published"]
	if !ok {
		return true
	}
	v, ok := b.converter.ParseBool(raw)
	return !ok || v
}

// Build creates the record for one row. Recovered and defaulted values are
// queued on rec, which may be nil.
func (b *RecordBuilder) Build(entity model.EntityType, row model.BoundRow, rec *cleaner.Recorder) (*model.EntityRecord, error) {
	id := strings.TrimSpace(row["id"])
	ctxFor := func(column string) model.CleaningContext {
		if rec == nil {
			return model.CleaningContext{EntityType: entity, ColumnName: column, RowIdentifier: id}
		}
		return rec.Context(entity, column, id)
	}

	r := &model.EntityRecord{
		Type:      entity,
		ID:        id,
		Title:     field(row, "title", "name"),
		Content:   field(row, "content", "description"),
		ImageURL:  field(row, "imageUrl"),
		URL:       field(row, "sourceUrl", "website"),
		Email:     field(row, "email"),
		Phone:     field(row, "phone"),
		Extra:     field(row, "other"),
		Published: true,
	}

	r.Tags = cleaner.Track(rec, ctxFor("tags"), cleaner.OpTags, row["tags"],
		b.converter.ParseTags(row["tags"]), cleaner.FormatTags)

	cat, err := b.mapper.Map(entity, r.Tags)
	if err != nil {
		return nil, err
	}
	r.Category = cleaner.Track(rec, ctxFor("category"), cleaner.OpCategory, cleaner.FormatTags(r.Tags), cat, cleaner.FormatString)

	if raw, ok := row["publishDate"]; ok {
		r.PublishedAt = cleaner.Track(rec, ctxFor("publishDate"), cleaner.OpTimestamp, raw,
			b.converter.ParseTimestamp(raw), cleaner.FormatTime)
		r.CreatedAt = r.PublishedAt
	}
	if raw, ok := row["createdAt"]; ok {
		r.CreatedAt = cleaner.Track(rec, ctxFor("createdAt"), cleaner.OpTimestamp, raw,
			b.converter.ParseTimestamp(raw), cleaner.FormatTime)
	}
	r.UpdatedAt = r.CreatedAt

	if entity.HasLocation() {
		raw := row["location"]
		loc := cleaner.Track(rec, ctxFor("location"), cleaner.OpLocation, raw,
			b.converter.ParseLocation(raw), func(g model.GeoLocation) string { return g.String() })
		r.Location = &loc
	}

	if entity.HasAddress() {
		raw := field(row, "address")
		if raw == "" && r.Location != nil {
			raw = r.Location.Address
		}
		addr := cleaner.Track(rec, ctxFor("address"), cleaner.OpAddress, raw,
			b.addresses.Parse(raw), cleaner.FormatAddress)
		r.Address = &addr
	}

	return r, nil
}

// field returns the first present, non-null value among columns
func field(row model.BoundRow, columns ...string) string {
	for _, col := range columns {
		if v, ok := row[col]; ok && !dump.IsNull(v) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// stamp fills unset timestamps on a record about to be written
func stamp(r *model.EntityRecord, now time.Time) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
}
