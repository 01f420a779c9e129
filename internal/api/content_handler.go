package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"wqsolutions/internal/database"
	"wqsolutions/internal/schema"
	"wqsolutions/internal/slug"
)

// UploadStore is the slice of the storage layer the controller needs.
// *storage.Store satisfies it; tests may substitute fakes.
type UploadStore interface {
	Save(ctx context.Context, subdir, originalName string, src io.Reader) (string, error)
	Remove(ctx context.Context, ref string) error
	Managed(ref string) bool
}

// ContentHandler serves every content type through one set of operations,
// parameterized by the entity schema.
type ContentHandler struct {
	db        *gorm.DB
	store     UploadStore
	logger    *slog.Logger
	clamdAddr string
}

// NewContentHandler builds the generic controller.
func NewContentHandler(db *gorm.DB, store UploadStore, logger *slog.Logger, clamdAddr string) *ContentHandler {
	return &ContentHandler{
		db:        db,
		store:     store,
		logger:    logger,
		clamdAddr: clamdAddr,
	}
}

const (
	defaultPage  = 1
	defaultLimit = 100
	maxLimit     = 500
)

// List returns one page of records. Public mounts force active=true when the
// type carries the flag; the admin mount sees everything.
func (h *ContentHandler) List(e schema.Entity, publicOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		page := positiveIntQuery(c, "page", defaultPage)
		limit := positiveIntQuery(c, "limit", defaultLimit)
		if limit > maxLimit {
			limit = maxLimit
		}

		conditions := func() *gorm.DB {
			q := h.db.WithContext(ctx).Table(e.Table)
			if publicOnly && e.HasField("active") {
				q = q.Where("active = ?", true)
			}
			if search := strings.TrimSpace(c.Query("search")); search != "" && len(e.SearchFields) > 0 {
				clauses := make([]string, 0, len(e.SearchFields))
				args := make([]any, 0, len(e.SearchFields))
				for _, field := range e.SearchFields {
					clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE ?", field))
					args = append(args, "%"+strings.ToLower(search)+"%")
				}
				q = q.Where(strings.Join(clauses, " OR "), args...)
			}
			for _, field := range e.FilterFields {
				raw, ok := c.GetQuery(field)
				if !ok {
					continue
				}
				q = q.Where(field+" = ?", filterValue(e, field, raw))
			}
			return q
		}

		var total int64
		if err := conditions().Count(&total).Error; err != nil {
			h.logger.Error("count records", slog.String("table", e.Table), slog.Any("error", err))
			Internal(c, "failed to list records")
			return
		}

		var rows []map[string]any
		if err := conditions().
			Order(h.sortClause(c, e)).
			Limit(limit).
			Offset((page - 1) * limit).
			Find(&rows).Error; err != nil {
			h.logger.Error("list records", slog.String("table", e.Table), slog.Any("error", err))
			Internal(c, "failed to list records")
			return
		}

		for i := range rows {
			rows[i] = normalizeRecord(e, rows[i])
		}

		pages := int((total + int64(limit) - 1) / int64(limit))
		OKList(c, rows, Pagination{Total: total, Page: page, Pages: pages, Limit: limit})
	}
}

// Get returns a single record by id.
func (h *ContentHandler) Get(e schema.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			BadRequest(c, "invalid id")
			return
		}

		row, err := h.loadRow(c.Request.Context(), e, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				NotFound(c, "record not found")
				return
			}
			Internal(c, "failed to load record")
			return
		}
		OK(c, normalizeRecord(e, row))
	}
}

// GetBySlug returns a single record by its permalink slug.
func (h *ContentHandler) GetBySlug(e schema.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		var row map[string]any
		err := h.db.WithContext(c.Request.Context()).
			Table(e.Table).
			Where("slug = ?", c.Param("slug")).
			Take(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				NotFound(c, "record not found")
				return
			}
			Internal(c, "failed to load record")
			return
		}
		OK(c, normalizeRecord(e, row))
	}
}

// Create inserts a new record, assigning the slug and resolving image fields.
// If the insert fails every file uploaded for it is removed again.
func (h *ContentHandler) Create(e schema.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		req, err := parseContentRequest(c, e)
		if err != nil {
			BadRequest(c, err.Error())
			return
		}
		if err := validateRequired(e, req.Fields); err != nil {
			BadRequest(c, err.Error())
			return
		}

		if e.HasAuthor {
			userID, ok := userIDFromContext(c)
			if !ok {
				AbortUnauthorized(c)
				return
			}
			req.Fields["author_id"] = userID
		}

		uploaded, err := h.storeUploads(ctx, e, req, nil)
		if err != nil {
			h.respondUploadError(c, err)
			return
		}

		if e.HasSlug {
			assigned, err := h.assignSlug(ctx, e, req.Fields, nil, 0)
			if err != nil {
				h.discardUploads(ctx, uploaded)
				Internal(c, "failed to assign slug")
				return
			}
			if !assigned {
				// create always needs a slug, explicit or derived
				s, err := slug.ForTitle(stringOf(req.Fields[e.TitleField()]), h.slugTaken(ctx, e, 0))
				if err != nil {
					h.discardUploads(ctx, uploaded)
					Internal(c, "failed to assign slug")
					return
				}
				req.Fields["slug"] = s
			}
		}

		model := database.NewModelForTable(e.Table)
		if model == nil {
			Internal(c, "unknown content type")
			return
		}
		if err := decodeInto(req.Fields, model); err != nil {
			h.discardUploads(ctx, uploaded)
			BadRequest(c, err.Error())
			return
		}

		if err := h.db.WithContext(ctx).Create(model).Error; err != nil {
			h.discardUploads(ctx, uploaded)
			if isConstraintErr(err) {
				BadRequest(c, "record violates a uniqueness constraint")
				return
			}
			h.logger.Error("create record", slog.String("table", e.Table), slog.Any("error", err))
			BadRequest(c, "failed to create record")
			return
		}

		id := modelID(model)
		if err := h.applyZeroOverrides(ctx, e, id, req.Fields); err != nil {
			h.logger.Error("apply create overrides", slog.String("table", e.Table), slog.Any("error", err))
		}

		row, err := h.loadRow(ctx, e, id)
		if err != nil {
			Internal(c, "failed to reload record")
			return
		}
		Created(c, e.Name+" created", normalizeRecord(e, row))
	}
}

// Update merges the supplied fields into an existing record, re-deriving the
// slug when the title changed and resolving each image field against the
// record's prior values.
func (h *ContentHandler) Update(e schema.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c)
		if err != nil {
			BadRequest(c, "invalid id")
			return
		}
		h.applyUpdate(c, e, id)
	}
}

func (h *ContentHandler) applyUpdate(c *gin.Context, e schema.Entity, id uint) {
	ctx := c.Request.Context()

	old, err := h.loadRow(ctx, e, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "record not found")
			return
		}
		Internal(c, "failed to load record")
		return
	}

	req, err := parseContentRequest(c, e)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	uploaded, superseded, err := h.resolveImages(ctx, e, req, old)
	if err != nil {
		h.respondUploadError(c, err)
		return
	}

	if e.HasSlug {
		if _, err := h.assignSlug(ctx, e, req.Fields, old, id); err != nil {
			h.discardUploads(ctx, uploaded)
			Internal(c, "failed to assign slug")
			return
		}
	}

	req.Fields["updated_at"] = time.Now()
	if err := h.db.WithContext(ctx).
		Table(e.Table).
		Where("id = ?", id).
		Updates(req.Fields).Error; err != nil {
		h.discardUploads(ctx, uploaded)
		if isConstraintErr(err) {
			BadRequest(c, "record violates a uniqueness constraint")
			return
		}
		h.logger.Error("update record", slog.String("table", e.Table), slog.Any("error", err))
		Internal(c, "failed to update record")
		return
	}

	// the write is committed; superseded file removal is best effort
	h.removeBestEffort(ctx, superseded)

	row, err := h.loadRow(ctx, e, id)
	if err != nil {
		Internal(c, "failed to reload record")
		return
	}
	OKMessage(c, e.Name+" updated", normalizeRecord(e, row))
}

// Delete removes the record and every storage-backed file it owns.
func (h *ContentHandler) Delete(e schema.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := idParam(c)
		if err != nil {
			BadRequest(c, "invalid id")
			return
		}

		old, err := h.loadRow(ctx, e, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				NotFound(c, "record not found")
				return
			}
			Internal(c, "failed to load record")
			return
		}

		owned := h.ownedFiles(e, old)

		if err := h.db.WithContext(ctx).
			Where("id = ?", id).
			Delete(database.NewModelForTable(e.Table)).Error; err != nil {
			h.logger.Error("delete record", slog.String("table", e.Table), slog.Any("error", err))
			Internal(c, "failed to delete record")
			return
		}

		h.removeBestEffort(ctx, owned)
		OKMessage(c, e.Name+" deleted", nil)
	}
}

// GetSingleton returns the single row of a page-content table, creating the
// default row on first access.
func (h *ContentHandler) GetSingleton(e schema.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		row, err := h.singletonRow(c.Request.Context(), e)
		if err != nil {
			h.logger.Error("load singleton", slog.String("table", e.Table), slog.Any("error", err))
			Internal(c, "failed to load page content")
			return
		}
		OK(c, normalizeRecord(e, row))
	}
}

// UpdateSingleton updates the single row of a page-content table.
func (h *ContentHandler) UpdateSingleton(e schema.Entity) gin.HandlerFunc {
	return func(c *gin.Context) {
		row, err := h.singletonRow(c.Request.Context(), e)
		if err != nil {
			h.logger.Error("load singleton", slog.String("table", e.Table), slog.Any("error", err))
			Internal(c, "failed to load page content")
			return
		}
		h.applyUpdate(c, e, uint(asInt(row["id"])))
	}
}

func (h *ContentHandler) singletonRow(ctx context.Context, e schema.Entity) (map[string]any, error) {
	var row map[string]any
	err := h.db.WithContext(ctx).Table(e.Table).Order("id asc").Take(&row).Error
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	model := database.NewModelForTable(e.Table)
	if model == nil {
		return nil, fmt.Errorf("unknown singleton table %q", e.Table)
	}
	if err := h.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, fmt.Errorf("create default row: %w", err)
	}
	if err := h.db.WithContext(ctx).Table(e.Table).Order("id asc").Take(&row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// resolveImages applies the image policy per declared field: an uploaded file
// wins, otherwise a supplied URL value wins, otherwise the field is left
// alone. The prior stored file is scheduled for deletion whenever it is
// superseded. Returns the freshly uploaded paths (for mandatory cleanup on a
// failed write) and the superseded ones (for best-effort removal after).
func (h *ContentHandler) resolveImages(ctx context.Context, e schema.Entity, req *contentRequest, old map[string]any) (uploaded, superseded []string, err error) {
	uploaded, err = h.storeUploads(ctx, e, req, old)
	if err != nil {
		return nil, nil, err
	}

	for _, field := range e.ImageFields {
		oldRef := stringOf(old[field])
		if !h.store.Managed(oldRef) {
			continue
		}
		newRef, present := req.Fields[field]
		if !present {
			continue
		}
		if stringOf(newRef) != oldRef {
			superseded = append(superseded, oldRef)
		}
	}
	return uploaded, superseded, nil
}

// storeUploads writes every file in the request and swaps the resulting paths
// into the field map. old may be nil for creates.
func (h *ContentHandler) storeUploads(ctx context.Context, e schema.Entity, req *contentRequest, old map[string]any) ([]string, error) {
	var uploaded []string

	fail := func(err error) ([]string, error) {
		h.discardUploads(ctx, uploaded)
		return nil, err
	}

	for _, field := range e.ImageFields {
		fh, ok := req.Files[field]
		if !ok {
			continue
		}
		ref, err := h.saveUpload(ctx, e, fh)
		if err != nil {
			return fail(err)
		}
		req.Fields[field] = ref
		uploaded = append(uploaded, ref)
	}

	if e.MultiImageField != "" && len(req.MultiFiles) > 0 {
		refs := make([]string, 0, len(req.MultiFiles))
		for _, fh := range req.MultiFiles {
			ref, err := h.saveUpload(ctx, e, fh)
			if err != nil {
				return fail(err)
			}
			refs = append(refs, ref)
			uploaded = append(uploaded, ref)
		}
		encoded, err := json.Marshal(refs)
		if err != nil {
			return fail(fmt.Errorf("encode %s: %w", e.MultiImageField, err))
		}
		req.Fields[e.MultiImageField] = json.RawMessage(encoded)
	}

	return uploaded, nil
}

var errUploadRejected = errors.New("malicious file detected")

func (h *ContentHandler) saveUpload(ctx context.Context, e schema.Entity, fh *multipart.FileHeader) (string, error) {
	if h.clamdAddr != "" {
		if err := h.scanUpload(fh); err != nil {
			return "", err
		}
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	ref, err := h.store.Save(ctx, e.Table, fh.Filename, src)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return ref, nil
}

func (h *ContentHandler) scanUpload(fh *multipart.FileHeader) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	clamdClient := clamd.NewClamd(h.clamdAddr)
	abortChan := make(chan bool)
	scanChan, err := clamdClient.ScanStream(src, abortChan)
	if err != nil {
		return fmt.Errorf("scan upload: %w", err)
	}
	defer close(abortChan)

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return errUploadRejected
		}
	}
	return nil
}

func (h *ContentHandler) respondUploadError(c *gin.Context, err error) {
	if errors.Is(err, errUploadRejected) {
		BadRequest(c, errUploadRejected.Error())
		return
	}
	h.logger.Error("handle upload", slog.Any("error", err))
	Internal(c, "failed to store upload")
}

// discardUploads removes files whose record write never happened. This
// cleanup is mandatory, so failures are logged loudly.
func (h *ContentHandler) discardUploads(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if err := h.store.Remove(ctx, ref); err != nil {
			h.logger.Error("discard orphaned upload", slog.String("ref", ref), slog.Any("error", err))
		}
	}
}

func (h *ContentHandler) removeBestEffort(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if err := h.store.Remove(ctx, ref); err != nil {
			h.logger.Warn("remove superseded upload", slog.String("ref", ref), slog.Any("error", err))
		}
	}
}

// assignSlug decides the record's slug. Explicit non-empty slugs win; an
// empty or missing slug is re-derived from the title, but on update only when
// the title actually changed. The record's own slug is excluded from the
// collision check. Reports whether a slug ended up in the field map.
func (h *ContentHandler) assignSlug(ctx context.Context, e schema.Entity, fields, old map[string]any, excludeID uint) (bool, error) {
	explicit := stringOf(fields["slug"])
	if explicit != "" {
		fields["slug"] = explicit
		return true, nil
	}
	delete(fields, "slug")

	titleField := e.TitleField()
	title, hasTitle := fields[titleField]
	if !hasTitle {
		return false, nil
	}
	if old != nil && stringOf(old[titleField]) == stringOf(title) {
		return false, nil
	}

	s, err := slug.ForTitle(stringOf(title), h.slugTaken(ctx, e, excludeID))
	if err != nil {
		return false, err
	}
	fields["slug"] = s
	return true, nil
}

func (h *ContentHandler) slugTaken(ctx context.Context, e schema.Entity, excludeID uint) slug.Taken {
	return func(candidate string) (bool, error) {
		q := h.db.WithContext(ctx).Table(e.Table).Where("slug = ?", candidate)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return false, err
		}
		return n > 0, nil
	}
}

// ownedFiles collects every managed path referenced by the record, including
// the entries of the multi-image set.
func (h *ContentHandler) ownedFiles(e schema.Entity, row map[string]any) []string {
	var owned []string
	for _, field := range e.ImageFields {
		if ref := stringOf(row[field]); h.store.Managed(ref) {
			owned = append(owned, ref)
		}
	}
	if e.MultiImageField != "" {
		var refs []string
		if err := json.Unmarshal(rawJSONArray(row[e.MultiImageField]), &refs); err == nil {
			for _, ref := range refs {
				if h.store.Managed(ref) {
					owned = append(owned, ref)
				}
			}
		}
	}
	return owned
}

// applyZeroOverrides re-applies explicitly supplied zero values that struct
// creation lost to column defaults (e.g. active=false on create).
func (h *ContentHandler) applyZeroOverrides(ctx context.Context, e schema.Entity, id uint, fields map[string]any) error {
	overrides := map[string]any{}
	for _, f := range e.Fields {
		value, ok := fields[f.Name]
		if !ok {
			continue
		}
		switch f.Type {
		case schema.Bool:
			if b, isBool := value.(bool); isBool && !b {
				overrides[f.Name] = false
			}
		case schema.Int:
			if n, isInt := value.(int); isInt && n == 0 {
				overrides[f.Name] = 0
			}
		}
	}
	if len(overrides) == 0 {
		return nil
	}
	return h.db.WithContext(ctx).Table(e.Table).Where("id = ?", id).Updates(overrides).Error
}

func (h *ContentHandler) loadRow(ctx context.Context, e schema.Entity, id uint) (map[string]any, error) {
	var row map[string]any
	err := h.db.WithContext(ctx).Table(e.Table).Where("id = ?", id).Take(&row).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (h *ContentHandler) sortClause(c *gin.Context, e schema.Entity) string {
	field := strings.TrimSpace(c.DefaultQuery("sort", "created_at"))
	allowed := false
	for _, col := range e.SortableColumns() {
		if col == field {
			allowed = true
			break
		}
	}
	if !allowed {
		field = "created_at"
	}

	dir := strings.ToLower(c.DefaultQuery("dir", "desc"))
	if dir != "asc" && dir != "desc" {
		dir = "desc"
	}
	return field + " " + dir
}

func filterValue(e schema.Entity, field, raw string) any {
	if f, ok := e.FieldByName(field); ok {
		if v, err := coerceFormValue(f, raw); err == nil {
			return v
		}
		return raw
	}
	// undeclared filter columns (author_id) are numeric ids
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

func decodeInto(fields map[string]any, model any) error {
	encoded, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := json.Unmarshal(encoded, model); err != nil {
		return fmt.Errorf("invalid record payload: %w", err)
	}
	return nil
}

func modelID(model any) uint {
	type identifiable interface{ GetID() uint }
	if m, ok := model.(identifiable); ok {
		return m.GetID()
	}
	return 0
}

func idParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id")
	}
	return uint(id), nil
}

func positiveIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
