package schema

import "testing"

func TestRegistry_UniqueNamesAndTables(t *testing.T) {
	names := map[string]bool{}
	tables := map[string]bool{}
	for _, e := range Registry() {
		if names[e.Name] {
			t.Errorf("duplicate entity name %q", e.Name)
		}
		if tables[e.Table] {
			t.Errorf("duplicate table %q", e.Table)
		}
		names[e.Name] = true
		tables[e.Table] = true
	}
}

func TestRegistry_ImageFieldsAreDeclared(t *testing.T) {
	for _, e := range Registry() {
		for _, img := range e.ImageFields {
			if !e.HasField(img) {
				t.Errorf("%s: image field %q is not declared", e.Name, img)
			}
		}
		for _, field := range e.SearchFields {
			if !e.HasField(field) {
				t.Errorf("%s: search field %q is not declared", e.Name, field)
			}
		}
	}
}

func TestRegistry_SluggedEntitiesHaveTitleField(t *testing.T) {
	for _, e := range Registry() {
		if !e.HasSlug {
			continue
		}
		if !e.HasField(e.TitleField()) {
			t.Errorf("%s: slug source %q is not declared", e.Name, e.TitleField())
		}
		if e.Singleton {
			t.Errorf("%s: singletons cannot carry slugs", e.Name)
		}
	}
}

func TestByName(t *testing.T) {
	if _, ok := ByName("blog"); !ok {
		t.Error("expected blog to be registered")
	}
	if _, ok := ByName("nonexistent"); ok {
		t.Error("expected lookup miss for nonexistent entity")
	}
}

func TestSortableColumns(t *testing.T) {
	e, _ := ByName("blog")
	cols := map[string]bool{}
	for _, c := range e.SortableColumns() {
		cols[c] = true
	}
	for _, want := range []string{"id", "created_at", "title", "slug", "author_id", "display_order"} {
		if !cols[want] {
			t.Errorf("expected %q to be sortable", want)
		}
	}
	if cols["password_hash"] {
		t.Error("undeclared column must not be sortable")
	}
}
