// Package schema declares the per-type capability descriptors the generic
// content controller is parameterized by. Capabilities are static data:
// handlers never probe a request for field presence, they iterate what the
// entity declares.
package schema

// FieldType tells the controller how to coerce request values for a column.
type FieldType int

const (
	String FieldType = iota
	Text
	Bool
	Int
	Float
)

// Field is one writable column of an entity.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
}

// Entity describes one content type: its table, writable fields and which
// controller capabilities apply to it.
type Entity struct {
	// Name is the singular identifier used in routes for singletons.
	Name string
	// Table is the plural table name; it doubles as the upload subdirectory.
	Table string
	// Fields lists the writable scalar columns (image fields included).
	Fields []Field
	// HasSlug marks types exposed by individual permalink.
	HasSlug bool
	// HasAuthor makes create stamp the caller's user id into author_id.
	HasAuthor bool
	// ImageFields are the columns governed by the image lifecycle rules.
	ImageFields []string
	// MultiImageField, when set, names the JSON column holding a set of
	// uploaded paths from a repeated file field.
	MultiImageField string
	// SearchFields are OR-combined for the case-insensitive free-text search.
	SearchFields []string
	// FilterFields may be equality-filtered from list query parameters.
	FilterFields []string
	// Singleton types hold exactly one row and only support get/update.
	Singleton bool
}

// TitleField returns the column a slug is derived from.
func (e Entity) TitleField() string {
	for _, f := range e.Fields {
		if f.Name == "title" {
			return "title"
		}
	}
	return "name"
}

// HasField reports whether name is a declared writable field.
func (e Entity) HasField(name string) bool {
	for _, f := range e.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// FieldByName looks up a declared field.
func (e Entity) FieldByName(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// IsImageField reports whether name is one of the declared image columns.
func (e Entity) IsImageField(name string) bool {
	for _, img := range e.ImageFields {
		if img == name {
			return true
		}
	}
	return false
}

// SortableColumns lists the columns list requests may sort by.
func (e Entity) SortableColumns() []string {
	cols := []string{"id", "created_at", "updated_at"}
	for _, f := range e.Fields {
		cols = append(cols, f.Name)
	}
	if e.HasSlug {
		cols = append(cols, "slug")
	}
	if e.HasAuthor {
		cols = append(cols, "author_id")
	}
	return cols
}

var common = []Field{
	{Name: "active", Type: Bool},
	{Name: "display_order", Type: Int},
}

func withCommon(fields ...Field) []Field {
	return append(fields, common...)
}

// Registry returns every content entity the API serves through the generic
// controller. Inquiries and users have dedicated handlers and are not listed.
func Registry() []Entity {
	return []Entity{
		{
			Name:  "blog",
			Table: "blogs",
			Fields: withCommon(
				Field{Name: "title", Type: String, Required: true},
				Field{Name: "excerpt", Type: String},
				Field{Name: "content", Type: Text},
				Field{Name: "image", Type: String},
			),
			HasSlug:      true,
			HasAuthor:    true,
			ImageFields:  []string{"image"},
			SearchFields: []string{"title", "excerpt", "content"},
			FilterFields: []string{"active", "author_id"},
		},
		{
			Name:  "project",
			Table: "projects",
			Fields: withCommon(
				Field{Name: "title", Type: String, Required: true},
				Field{Name: "description", Type: String},
				Field{Name: "content", Type: Text},
				Field{Name: "client", Type: String},
				Field{Name: "image", Type: String},
			),
			HasSlug:         true,
			ImageFields:     []string{"image"},
			MultiImageField: "images",
			SearchFields:    []string{"title", "description"},
			FilterFields:    []string{"active", "client"},
		},
		{
			Name:  "service",
			Table: "services",
			Fields: withCommon(
				Field{Name: "title", Type: String, Required: true},
				Field{Name: "description", Type: String},
				Field{Name: "content", Type: Text},
				Field{Name: "icon", Type: String},
				Field{Name: "image", Type: String},
			),
			HasSlug:      true,
			ImageFields:  []string{"icon", "image"},
			SearchFields: []string{"title", "description"},
			FilterFields: []string{"active"},
		},
		{
			Name:  "career",
			Table: "careers",
			Fields: withCommon(
				Field{Name: "title", Type: String, Required: true},
				Field{Name: "description", Type: Text},
				Field{Name: "location", Type: String},
				Field{Name: "employment_type", Type: String},
			),
			HasSlug:      true,
			SearchFields: []string{"title", "description"},
			FilterFields: []string{"active", "location", "employment_type"},
		},
		{
			Name:  "testimonial",
			Table: "testimonials",
			Fields: withCommon(
				Field{Name: "name", Type: String, Required: true},
				Field{Name: "role", Type: String},
				Field{Name: "company", Type: String},
				Field{Name: "quote", Type: Text},
				Field{Name: "rating", Type: Int},
				Field{Name: "avatar", Type: String},
			),
			ImageFields:  []string{"avatar"},
			SearchFields: []string{"name", "quote"},
			FilterFields: []string{"active", "company", "rating"},
		},
		{
			Name:  "gallery_image",
			Table: "gallery_images",
			Fields: withCommon(
				Field{Name: "title", Type: String},
				Field{Name: "category", Type: String},
				Field{Name: "image", Type: String},
			),
			ImageFields:  []string{"image"},
			SearchFields: []string{"title"},
			FilterFields: []string{"active", "category"},
		},
		{
			Name:  "hero_section",
			Table: "hero_sections",
			Fields: withCommon(
				Field{Name: "title", Type: String, Required: true},
				Field{Name: "subtitle", Type: String},
				Field{Name: "button_text", Type: String},
				Field{Name: "button_link", Type: String},
				Field{Name: "image", Type: String},
			),
			ImageFields:  []string{"image"},
			SearchFields: []string{"title", "subtitle"},
			FilterFields: []string{"active"},
		},
		{
			Name:  "team_member",
			Table: "team_members",
			Fields: withCommon(
				Field{Name: "name", Type: String, Required: true},
				Field{Name: "role", Type: String},
				Field{Name: "bio", Type: Text},
				Field{Name: "photo", Type: String},
			),
			ImageFields:  []string{"photo"},
			SearchFields: []string{"name", "bio"},
			FilterFields: []string{"active", "role"},
		},
		{
			Name:  "technology",
			Table: "technologies",
			Fields: withCommon(
				Field{Name: "name", Type: String, Required: true},
				Field{Name: "category", Type: String},
				Field{Name: "logo", Type: String},
			),
			ImageFields:  []string{"logo"},
			SearchFields: []string{"name"},
			FilterFields: []string{"active", "category"},
		},
		{
			Name:  "client_logo",
			Table: "client_logos",
			Fields: withCommon(
				Field{Name: "name", Type: String, Required: true},
				Field{Name: "website", Type: String},
				Field{Name: "logo", Type: String},
			),
			ImageFields:  []string{"logo"},
			SearchFields: []string{"name"},
			FilterFields: []string{"active"},
		},
		{
			Name:  "faq",
			Table: "faqs",
			Fields: withCommon(
				Field{Name: "question", Type: String, Required: true},
				Field{Name: "answer", Type: Text},
			),
			SearchFields: []string{"question", "answer"},
			FilterFields: []string{"active"},
		},
		{
			Name:  "home_page",
			Table: "home_pages",
			Fields: []Field{
				{Name: "headline", Type: String},
				{Name: "subheadline", Type: String},
				{Name: "cta_text", Type: String},
				{Name: "cta_link", Type: String},
				{Name: "image", Type: String},
			},
			ImageFields: []string{"image"},
			Singleton:   true,
		},
		{
			Name:  "about_page",
			Table: "about_pages",
			Fields: []Field{
				{Name: "title", Type: String},
				{Name: "content", Type: Text},
				{Name: "mission", Type: Text},
				{Name: "vision", Type: Text},
				{Name: "image", Type: String},
			},
			ImageFields: []string{"image"},
			Singleton:   true,
		},
		{
			Name:  "contact_page",
			Table: "contact_pages",
			Fields: []Field{
				{Name: "address", Type: String},
				{Name: "phone", Type: String},
				{Name: "email", Type: String},
				{Name: "map_embed_url", Type: String},
			},
			Singleton: true,
		},
	}
}

// ByName finds an entity by its singular name.
func ByName(name string) (Entity, bool) {
	for _, e := range Registry() {
		if e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}
