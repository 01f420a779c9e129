package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"wqsolutions/internal/database"
	"wqsolutions/internal/export"
)

// InquiryHandler serves the public contact form and the admin inbox,
// including spreadsheet and PDF exports.
type InquiryHandler struct {
	db                 *gorm.DB
	redis              redis.UniversalClient
	logger             *slog.Logger
	submitLimitPerHour int
}

// NewInquiryHandler builds the handler.
func NewInquiryHandler(db *gorm.DB, redisClient redis.UniversalClient, logger *slog.Logger, submitLimitPerHour int) *InquiryHandler {
	return &InquiryHandler{
		db:                 db,
		redis:              redisClient,
		logger:             logger,
		submitLimitPerHour: submitLimitPerHour,
	}
}

type createInquiryRequest struct {
	Name            string `json:"name" binding:"required,max=255"`
	Email           string `json:"email" binding:"required,email,max=255"`
	Phone           string `json:"phone" binding:"max=64"`
	Subject         string `json:"subject" binding:"max=512"`
	Message         string `json:"message" binding:"required"`
	ServiceInterest string `json:"service_interest" binding:"max=255"`
}

// Create receives a contact-form submission from the public site.
func (h *InquiryHandler) Create(c *gin.Context) {
	var req createInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	if h.redis != nil && h.submitLimitPerHour > 0 {
		rateKey := "rate:inquiry:" + c.ClientIP() + ":" + time.Now().UTC().Format("2006010215")
		count, err := incrWithTTL(ctx, h.redis, rateKey, time.Hour)
		if err != nil {
			count = 0
		}
		if count > int64(h.submitLimitPerHour) {
			Fail(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
	}

	inquiry := database.Inquiry{
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.TrimSpace(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		Subject:         strings.TrimSpace(req.Subject),
		Message:         req.Message,
		ServiceInterest: strings.TrimSpace(req.ServiceInterest),
	}
	if err := h.db.WithContext(ctx).Create(&inquiry).Error; err != nil {
		h.logger.Error("create inquiry", slog.Any("error", err))
		BadRequest(c, "failed to submit inquiry")
		return
	}
	Created(c, "inquiry submitted", inquiry)
}

// List pages through the inbox. Supports search over name/email/subject,
// a read=true|false filter and the usual pagination parameters.
func (h *InquiryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	page := positiveIntQuery(c, "page", defaultPage)
	limit := positiveIntQuery(c, "limit", defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}

	conditions := func() *gorm.DB {
		q := h.db.WithContext(ctx).Model(&database.Inquiry{})
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(subject) LIKE ?", like, like, like)
		}
		if raw, ok := c.GetQuery("read"); ok {
			q = q.Where("read = ?", raw == "true" || raw == "1")
		}
		return q
	}

	var total int64
	if err := conditions().Count(&total).Error; err != nil {
		Internal(c, "failed to list inquiries")
		return
	}

	var inquiries []database.Inquiry
	if err := conditions().
		Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&inquiries).Error; err != nil {
		Internal(c, "failed to list inquiries")
		return
	}

	pages := int((total + int64(limit) - 1) / int64(limit))
	OKList(c, inquiries, Pagination{Total: total, Page: page, Pages: pages, Limit: limit})
}

// Get returns one inquiry.
func (h *InquiryHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		BadRequest(c, "invalid id")
		return
	}

	var inquiry database.Inquiry
	if err := h.db.WithContext(c.Request.Context()).First(&inquiry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "inquiry not found")
			return
		}
		Internal(c, "failed to load inquiry")
		return
	}
	OK(c, inquiry)
}

// MarkRead flags an inquiry as handled.
func (h *InquiryHandler) MarkRead(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		BadRequest(c, "invalid id")
		return
	}

	ctx := c.Request.Context()
	var inquiry database.Inquiry
	if err := h.db.WithContext(ctx).First(&inquiry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "inquiry not found")
			return
		}
		Internal(c, "failed to load inquiry")
		return
	}

	if err := h.db.WithContext(ctx).Model(&inquiry).Update("read", true).Error; err != nil {
		Internal(c, "failed to update inquiry")
		return
	}
	inquiry.Read = true
	OKMessage(c, "inquiry marked read", inquiry)
}

// Delete removes an inquiry permanently.
func (h *InquiryHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		BadRequest(c, "invalid id")
		return
	}

	ctx := c.Request.Context()
	var inquiry database.Inquiry
	if err := h.db.WithContext(ctx).First(&inquiry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "inquiry not found")
			return
		}
		Internal(c, "failed to load inquiry")
		return
	}

	if err := h.db.WithContext(ctx).Delete(&inquiry).Error; err != nil {
		Internal(c, "failed to delete inquiry")
		return
	}
	OKMessage(c, "inquiry deleted", nil)
}

// ExportExcel streams the full inbox as a spreadsheet.
func (h *InquiryHandler) ExportExcel(c *gin.Context) {
	inquiries, err := h.allInquiries(c)
	if err != nil {
		Internal(c, "failed to load inquiries")
		return
	}

	data, err := export.InquiriesExcel(inquiries)
	if err != nil {
		h.logger.Error("export inquiries to excel", slog.Any("error", err))
		Internal(c, "failed to build spreadsheet")
		return
	}

	filename := "inquiries-" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ExportPDF streams the full inbox as a printable report.
func (h *InquiryHandler) ExportPDF(c *gin.Context) {
	inquiries, err := h.allInquiries(c)
	if err != nil {
		Internal(c, "failed to load inquiries")
		return
	}

	data, err := export.InquiriesPDF(inquiries)
	if err != nil {
		h.logger.Error("export inquiries to pdf", slog.Any("error", err))
		Internal(c, "failed to build pdf")
		return
	}

	filename := "inquiries-" + time.Now().Format("2006-01-02") + ".pdf"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *InquiryHandler) allInquiries(c *gin.Context) ([]database.Inquiry, error) {
	var inquiries []database.Inquiry
	err := h.db.WithContext(c.Request.Context()).
		Order("created_at desc").
		Find(&inquiries).Error
	return inquiries, err
}
