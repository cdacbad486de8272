package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"asistencia/internal/attendance"
	"asistencia/internal/auth"
	"asistencia/internal/export"
	"asistencia/internal/metrics"
	"asistencia/internal/queue"
	"asistencia/internal/request"
	"asistencia/internal/timeofday"
	"asistencia/internal/validation"
)

// Handler wires the HTTP routes to the domain services.
type Handler struct {
	attendance *attendance.Service
	requests   *request.Service
	events     queue.Queue // nil when no queue is configured

	jwtIssuer string
	jwtKey    string
	adminKey  string
	tokenTTL  time.Duration
}

// New creates a handler. events may be nil.
func New(att *attendance.Service, req *request.Service, events queue.Queue, jwtIssuer, jwtKey, adminKey string, tokenTTL time.Duration) *Handler {
	return &Handler{
		attendance: att,
		requests:   req,
		events:     events,
		jwtIssuer:  jwtIssuer,
		jwtKey:     jwtKey,
		adminKey:   adminKey,
		tokenTTL:   tokenTTL,
	}
}

// Register attaches all routes to the engine.
func (h *Handler) Register(r *gin.Engine) {
	admin := auth.AdminAuth(h.jwtKey, h.jwtIssuer)

	v1 := r.Group("/v1")
	v1.POST("/attendance", h.CreateAttendance)
	v1.GET("/attendance", h.ListAttendance)
	v1.GET("/attendance/:id", h.GetAttendance)
	v1.PUT("/attendance/:id", h.UpdateAttendance)
	v1.DELETE("/attendance/:id", admin, h.DeleteAttendance)

	v1.POST("/requests", h.SubmitRequest)
	v1.GET("/requests", h.ListRequests)
	v1.GET("/requests/:id", h.GetRequest)
	v1.PUT("/requests/:id", h.UpdateRequest)
	v1.DELETE("/requests/:id", admin, h.DeleteRequest)

	v1.POST("/admin/token", h.AdminToken)
	adm := v1.Group("/admin", admin)
	adm.GET("/stats", h.AdminStats)
	adm.GET("/reports/monthly", h.MonthlyReport)
	adm.GET("/attendance/export", h.ExportCSV)
	adm.POST("/attendance/present", h.MarkPresent(true))
	adm.POST("/attendance/absent", h.MarkPresent(false))
	adm.POST("/attendance/duplicate", h.DuplicateToday)
}

// writeError maps domain errors to HTTP responses: validation aggregates to
// 422 with the per-field map, duplicates to 409, missing rows to 404.
func writeError(c *gin.Context, entity string, err error) {
	if verrs, ok := validation.AsErrors(err); ok {
		metrics.ValidationFailures.WithLabelValues(entity).Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": verrs.ToMap()})
		return
	}
	switch {
	case errors.Is(err, attendance.ErrDuplicateDay):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrNotFound), errors.Is(err, request.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Printf("%s: %v", entity, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handler) publish(c *gin.Context, msgType, id string) {
	if h.events == nil {
		return
	}
	if err := h.events.Publish(c.Request.Context(), queue.Message{Type: msgType, Body: []byte(id)}); err != nil {
		log.Printf("queue publish failed: %v", err)
	}
}

// ---------- Attendance ----------

type attendanceForm struct {
	FullName   string `json:"full_name" form:"full_name" binding:"required"`
	DocumentID string `json:"document_id" form:"document_id" binding:"required"`
	Email      string `json:"email" form:"email" binding:"required"`
	Date       string `json:"date" form:"date"`
	CheckIn    string `json:"check_in" form:"check_in" binding:"required"`
	CheckOut   string `json:"check_out" form:"check_out" binding:"required"`
	Present    *bool  `json:"present" form:"present"`
	Notes      string `json:"notes" form:"notes"`
}

// toRecord converts the raw form into a candidate record. Unparseable date or
// time strings come back as field errors in the same aggregate shape the
// validator produces.
func (f attendanceForm) toRecord() (attendance.Record, error) {
	errs := &validation.Errors{}
	rec := attendance.Record{
		FullName:   f.FullName,
		DocumentID: f.DocumentID,
		Email:      f.Email,
		Notes:      f.Notes,
		Present:    true,
	}
	if f.Present != nil {
		rec.Present = *f.Present
	}
	if f.Date != "" {
		d, err := time.Parse("2006-01-02", f.Date)
		if err != nil {
			errs.AddMessage("date", "Ingrese una fecha válida (AAAA-MM-DD).")
		} else {
			rec.Date = d
		}
	}
	if in, err := timeofday.Parse(f.CheckIn); err != nil {
		errs.AddMessage("check_in", "Ingrese una hora válida (HH:MM).")
	} else {
		rec.CheckIn = in
	}
	if out, err := timeofday.Parse(f.CheckOut); err != nil {
		errs.AddMessage("check_out", "Ingrese una hora válida (HH:MM).")
	} else {
		rec.CheckOut = out
	}
	if !errs.Empty() {
		return attendance.Record{}, errs
	}
	return rec, nil
}

// CreateAttendance registers a new attendance record.
func (h *Handler) CreateAttendance(c *gin.Context) {
	var form attendanceForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := form.toRecord()
	if err != nil {
		writeError(c, "attendance", err)
		return
	}
	created, err := h.attendance.Create(c.Request.Context(), rec)
	if err != nil {
		writeError(c, "attendance", err)
		return
	}
	metrics.RecordsCreated.Inc()
	h.publish(c, queue.TypeAttendance, created.ID)
	c.JSON(http.StatusCreated, attendanceResponse(created))
}

// ListAttendance lists records with the date/present/search filters.
func (h *Handler) ListAttendance(c *gin.Context) {
	var f attendance.ListFilter
	if v := c.Query("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date filter"})
			return
		}
		f.Date = &d
	}
	if v := c.Query("present"); v != "" {
		p := v == "true" || v == "1"
		f.Present = &p
	}
	f.Search = c.Query("search")
	f.Limit = intQuery(c, "limit", 25)
	f.Offset = intQuery(c, "offset", 0)

	records, err := h.attendance.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, "attendance", err)
		return
	}
	out := make([]gin.H, 0, len(records))
	for _, rec := range records {
		out = append(out, attendanceResponse(rec))
	}
	c.JSON(http.StatusOK, gin.H{"records": out})
}

// GetAttendance returns one record.
func (h *Handler) GetAttendance(c *gin.Context) {
	rec, err := h.attendance.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "attendance", err)
		return
	}
	c.JSON(http.StatusOK, attendanceResponse(rec))
}

// UpdateAttendance replaces a record through the full validated path.
func (h *Handler) UpdateAttendance(c *gin.Context) {
	var form attendanceForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := form.toRecord()
	if err != nil {
		writeError(c, "attendance", err)
		return
	}
	updated, err := h.attendance.Update(c.Request.Context(), c.Param("id"), rec)
	if err != nil {
		writeError(c, "attendance", err)
		return
	}
	h.publish(c, queue.TypeAttendance, updated.ID)
	c.JSON(http.StatusOK, attendanceResponse(updated))
}

// DeleteAttendance removes a record (admin only).
func (h *Handler) DeleteAttendance(c *gin.Context) {
	if err := h.attendance.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, "attendance", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// attendanceResponse augments the stored fields with the derived ones.
func attendanceResponse(rec attendance.Record) gin.H {
	return gin.H{
		"id":              rec.ID,
		"full_name":       rec.FullName,
		"document_id":     rec.DocumentID,
		"email":           rec.Email,
		"date":            rec.Date.Format("2006-01-02"),
		"check_in":        rec.CheckIn.String(),
		"check_out":       rec.CheckOut.String(),
		"present":         rec.Present,
		"notes":           rec.Notes,
		"duration_hours":  rec.DurationHours(),
		"duration":        rec.DurationDisplay(),
		"full_attendance": rec.IsFullAttendance(),
		"state":           rec.StateDisplay(),
		"created_at":      rec.CreatedAt,
		"updated_at":      rec.UpdatedAt,
	}
}

// ---------- Requests ----------

type requestForm struct {
	RequesterName string `json:"requester_name" form:"requester_name" binding:"required"`
	DocumentID    string `json:"document_id" form:"document_id" binding:"required"`
	Email         string `json:"email" form:"email" binding:"required"`
	ContactPhone  string `json:"contact_phone" form:"contact_phone" binding:"required"`
	Type          string `json:"type" form:"type" binding:"required"`
	Subject       string `json:"subject" form:"subject" binding:"required"`
	Description   string `json:"description" form:"description" binding:"required"`
}

func (f requestForm) toRequest() request.Request {
	return request.Request{
		RequesterName: f.RequesterName,
		DocumentID:    f.DocumentID,
		Email:         f.Email,
		ContactPhone:  f.ContactPhone,
		Type:          request.Type(f.Type),
		Subject:       f.Subject,
		Description:   f.Description,
	}
}

// SubmitRequest accepts a new request, as JSON or as a multipart form with an
// optional "attachment" file.
func (h *Handler) SubmitRequest(c *gin.Context) {
	var form requestForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req := form.toRequest()

	file, header, ferr := c.Request.FormFile("attachment")
	if ferr == nil {
		defer file.Close()
		req.Attachment = &request.Attachment{Filename: header.Filename, Size: header.Size}
	}

	created, err := h.requests.Submit(c.Request.Context(), req, file)
	if err != nil {
		writeError(c, "request", err)
		return
	}
	metrics.RequestsSubmitted.Inc()
	h.publish(c, queue.TypeRequest, strconv.FormatInt(created.ID, 10))
	c.JSON(http.StatusCreated, gin.H{
		"request":   requestResponse(created),
		"reference": created.Reference(),
		"message":   "Solicitud enviada exitosamente. Número de referencia: " + created.Reference(),
	})
}

// ListRequests searches requests by substring and type.
func (h *Handler) ListRequests(c *gin.Context) {
	f := request.SearchFilter{
		Query:  c.Query("search"),
		Type:   request.Type(c.Query("type")),
		Limit:  intQuery(c, "limit", 10),
		Offset: intQuery(c, "offset", 0),
	}
	if f.Type != "" && !f.Type.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request type"})
		return
	}
	results, err := h.requests.Search(c.Request.Context(), f)
	if err != nil {
		writeError(c, "request", err)
		return
	}
	out := make([]gin.H, 0, len(results))
	for _, req := range results {
		out = append(out, requestResponse(req))
	}
	c.JSON(http.StatusOK, gin.H{"requests": out})
}

// GetRequest returns one request.
func (h *Handler) GetRequest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	req, err := h.requests.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, "request", err)
		return
	}
	c.JSON(http.StatusOK, requestResponse(req))
}

// UpdateRequest rewrites a request through the full validated path. A new
// attachment may be sent as multipart; otherwise the stored one is kept.
func (h *Handler) UpdateRequest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var form requestForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req := form.toRequest()

	file, header, ferr := c.Request.FormFile("attachment")
	if ferr == nil {
		defer file.Close()
		req.Attachment = &request.Attachment{Filename: header.Filename, Size: header.Size}
	}

	updated, err := h.requests.Update(c.Request.Context(), id, req, file)
	if err != nil {
		writeError(c, "request", err)
		return
	}
	h.publish(c, queue.TypeRequest, strconv.FormatInt(updated.ID, 10))
	c.JSON(http.StatusOK, requestResponse(updated))
}

// DeleteRequest removes a request (admin only).
func (h *Handler) DeleteRequest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.requests.Delete(c.Request.Context(), id); err != nil {
		writeError(c, "request", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func requestResponse(req request.Request) gin.H {
	out := gin.H{
		"id":             req.ID,
		"reference":      req.Reference(),
		"requester_name": req.RequesterName,
		"document_id":    req.DocumentID,
		"email":          req.Email,
		"contact_phone":  req.ContactPhone,
		"type":           req.Type,
		"type_label":     req.Type.Label(),
		"subject":        req.Subject,
		"description":    req.Description,
		"submitted_at":   req.SubmittedAt.Format("2006-01-02"),
		"created_at":     req.CreatedAt,
		"updated_at":     req.UpdatedAt,
	}
	if req.Attachment != nil {
		out["attachment"] = gin.H{
			"filename": req.Attachment.Filename,
			"size":     req.Attachment.Size,
			"path":     req.AttachmentPath,
		}
	}
	return out
}

// ---------- Admin ----------

// AdminToken exchanges the configured admin key for a bearer token.
func (h *Handler) AdminToken(c *gin.Context) {
	var body struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.Key != h.adminKey {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
		return
	}
	token, err := auth.Issue("admin", "admin", h.jwtIssuer, h.jwtKey, h.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token.Value, "expires_at": token.ExpiresAt.Unix()})
}

// AdminStats serves the statistics dashboard block.
func (h *Handler) AdminStats(c *gin.Context) {
	summary, err := h.attendance.Summarize(c.Request.Context())
	if err != nil {
		writeError(c, "attendance", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// MonthlyReport serves the per-day breakdown for the current month.
func (h *Handler) MonthlyReport(c *gin.Context) {
	report, err := h.attendance.ReportCurrentMonth(c.Request.Context())
	if err != nil {
		writeError(c, "attendance", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportCSV streams the filtered records as a CSV download.
func (h *Handler) ExportCSV(c *gin.Context) {
	var f attendance.ListFilter
	if v := c.Query("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date filter"})
			return
		}
		f.Date = &d
	}
	if v := c.Query("present"); v != "" {
		p := v == "true" || v == "1"
		f.Present = &p
	}
	f.Search = c.Query("search")
	f.Limit = intQuery(c, "limit", 1000)

	records, err := h.attendance.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, "attendance", err)
		return
	}
	metrics.CSVExports.Inc()
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="asistencias.csv"`)
	if err := export.WriteCSV(c.Writer, records); err != nil {
		log.Printf("csv export failed: %v", err)
	}
}

type idsBody struct {
	IDs []string `json:"ids" binding:"required"`
}

// MarkPresent returns a handler that bulk-marks records present or absent.
func (h *Handler) MarkPresent(present bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body idsBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		updated, err := h.attendance.MarkPresent(c.Request.Context(), body.IDs, present)
		if err != nil {
			writeError(c, "attendance", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": updated})
	}
}

// DuplicateToday copies the given records onto today's date.
func (h *Handler) DuplicateToday(c *gin.Context) {
	var body idsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	copied, err := h.attendance.DuplicateForToday(c.Request.Context(), body.IDs)
	if err != nil {
		writeError(c, "attendance", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"duplicated": copied})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}
