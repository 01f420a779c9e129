package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"wqsolutions/internal/database"
)

func newTestInquiryHandler(t *testing.T) (*InquiryHandler, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewInquiryHandler(db, nil, logger, 0), db
}

func seedInquiry(t *testing.T, db *gorm.DB, name, email, subject string) database.Inquiry {
	t.Helper()
	inquiry := database.Inquiry{
		Name:    name,
		Email:   email,
		Subject: subject,
		Message: "please call back",
	}
	if err := db.Create(&inquiry).Error; err != nil {
		t.Fatalf("seed inquiry: %v", err)
	}
	return inquiry
}

func TestInquiryCreate(t *testing.T) {
	h, db := newTestInquiryHandler(t)

	w, env := performAs(t, h.Create, jsonRequest(t, http.MethodPost, "/inquiries", map[string]any{
		"name":    "Dana",
		"email":   "dana@example.com",
		"message": "I need a quote",
	}), nil, 0)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	if got := dataMap(t, env)["read"]; got != false {
		t.Fatalf("new inquiry must start unread, got %v", got)
	}

	var count int64
	if err := db.Model(&database.Inquiry{}).Count(&count).Error; err != nil || count != 1 {
		t.Fatalf("expected 1 stored inquiry, got %d (err=%v)", count, err)
	}

	w, _ = performAs(t, h.Create, jsonRequest(t, http.MethodPost, "/inquiries", map[string]any{
		"name":    "Dana",
		"email":   "not-an-email",
		"message": "hi",
	}), nil, 0)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad email: expected 400 got %d", w.Code)
	}
}

func TestInquiryList_SearchAndReadFilter(t *testing.T) {
	h, db := newTestInquiryHandler(t)
	seedInquiry(t, db, "Dana", "dana@example.com", "Website revamp")
	handled := seedInquiry(t, db, "Erik", "erik@example.com", "Mobile app")
	seedInquiry(t, db, "Fred", "fred@example.com", "Website hosting")
	if err := db.Model(&handled).Update("read", true).Error; err != nil {
		t.Fatalf("mark read: %v", err)
	}

	_, env := performAs(t, h.List, httptest.NewRequest(http.MethodGet, "/admin/inquiries?search=website", nil), nil, 1)
	if rows := dataList(t, env); len(rows) != 2 {
		t.Fatalf("search: expected 2 rows got %d", len(rows))
	}

	_, env = performAs(t, h.List, httptest.NewRequest(http.MethodGet, "/admin/inquiries?read=false", nil), nil, 1)
	if rows := dataList(t, env); len(rows) != 2 {
		t.Fatalf("read filter: expected 2 unread rows got %d", len(rows))
	}

	_, env = performAs(t, h.List, httptest.NewRequest(http.MethodGet, "/admin/inquiries?search=website&read=true", nil), nil, 1)
	if rows := dataList(t, env); len(rows) != 0 {
		t.Fatalf("search+read: expected 0 rows got %d", len(rows))
	}
}

func TestInquiryMarkReadAndDelete(t *testing.T) {
	h, db := newTestInquiryHandler(t)
	inquiry := seedInquiry(t, db, "Dana", "dana@example.com", "Quote")
	params := gin.Params{{Key: "id", Value: "1"}}

	w, env := performAs(t, h.MarkRead, httptest.NewRequest(http.MethodPatch, "/admin/inquiries/1/read", nil), params, 1)
	if w.Code != http.StatusOK {
		t.Fatalf("mark read: expected 200 got %d", w.Code)
	}
	if got := dataMap(t, env)["read"]; got != true {
		t.Fatalf("expected read=true got %v", got)
	}

	w, _ = performAs(t, h.Delete, httptest.NewRequest(http.MethodDelete, "/admin/inquiries/1", nil), params, 1)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200 got %d", w.Code)
	}
	if err := db.First(&database.Inquiry{}, inquiry.ID).Error; err == nil {
		t.Fatal("expected inquiry to be gone")
	}

	w, _ = performAs(t, h.Get, httptest.NewRequest(http.MethodGet, "/admin/inquiries/1", nil), params, 1)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestInquiryExportExcel(t *testing.T) {
	h, db := newTestInquiryHandler(t)
	seedInquiry(t, db, "Dana", "dana@example.com", "Quote")
	seedInquiry(t, db, "Erik", "erik@example.com", "Support")

	w, _ := performAs(t, h.ExportExcel, httptest.NewRequest(http.MethodGet, "/admin/inquiries/export/excel", nil), nil, 1)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, ".xlsx") {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	header, err := f.GetCellValue("Inquiries", "A1")
	if err != nil || header != "ID" {
		t.Fatalf("expected header ID got %q (err=%v)", header, err)
	}
	rows, err := f.GetRows("Inquiries")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows got %d", len(rows))
	}
}
