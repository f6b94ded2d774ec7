package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"absencecli/internal/dataprocessing"
	apierrors "absencecli/internal/errors"
	"absencecli/internal/exporter"
	"absencecli/internal/infrastructure"
	"absencecli/internal/services"
	"absencecli/internal/validation"
	api "absencecli/pkg/contracts/api/v1"
)

// Content types negotiated by the absence endpoints
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// UploadField is the multipart form field carrying the export
const UploadField = "file"

// AbsenceHandler serves the summarize and normalize endpoints. Every request
// is an independent batch.
type AbsenceHandler struct {
	service        AbsenceServiceInterface
	exporter       *exporter.Exporter
	maxUploadBytes int64
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewAbsenceHandler creates a new absence handler
func NewAbsenceHandler(service AbsenceServiceInterface, exp *exporter.Exporter, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AbsenceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	return &AbsenceHandler{
		service:        service,
		exporter:       exp,
		maxUploadBytes: maxUploadBytes,
		logger:         infrastructure.WithComponent(logger, "absence_handler"),
		errorHandler:   errorHandler,
	}
}

// Routes returns the absence routes
func (h *AbsenceHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/summary", h.Summarize)
	r.Post("/normalize", h.Normalize)
	return r
}

// Summarize handles POST /api/v1/absences/summary
func (h *AbsenceHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	opts, err := h.parseOptions(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	body, name, cleanup, err := h.openUpload(w, r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	defer cleanup()

	result, err := h.service.SummarizeUpload(r.Context(), body, name, opts)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	report := exporter.SummaryReport{
		GeneratedAt: time.Now(),
		Unit:        result.Unit,
		Persons:     result.Summaries,
		Skipped:     result.Skipped,
	}

	h.logger.InfoContext(r.Context(), "summary computed",
		slog.Int("persons", len(result.Summaries)),
		slog.Int("skipped", len(result.Skipped)))

	switch format := negotiate(r); format {
	case exporter.FormatCSV, exporter.FormatXLSX:
		setSkippedHeader(w, result)
		w.Header().Set("Content-Type", contentType(format))
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="absence_summary.%s"`, format.Extension()))
		if err := h.exporter.WriteSummary(w, report, format); err != nil {
			h.logger.ErrorContext(r.Context(), "failed to stream summary", slog.String("error", err.Error()))
		}
	default:
		render.JSON(w, r, report.Document())
	}
}

// Normalize handles POST /api/v1/absences/normalize
func (h *AbsenceHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	opts, err := h.parseOptions(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	body, name, cleanup, err := h.openUpload(w, r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	defer cleanup()

	result, err := h.service.NormalizeUpload(r.Context(), body, name, opts)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if negotiate(r) == exporter.FormatCSV {
		setSkippedHeader(w, result)
		w.Header().Set("Content-Type", contentType(exporter.FormatCSV))
		if err := h.exporter.WriteEntries(w, result.Entries, result.Unit); err != nil {
			h.logger.ErrorContext(r.Context(), "failed to stream entries", slog.String("error", err.Error()))
		}
		return
	}

	render.JSON(w, r, api.NormalizeResponse{
		Unit:    result.Unit,
		Entries: exporter.EntryViews(result.Entries, result.Unit),
		Skipped: exporter.SkippedRows(result.Skipped),
	})
}

// parseOptions reads unit, policy and rounding from the query string.
// Unset values are filled in by the service from its configuration.
func (h *AbsenceHandler) parseOptions(r *http.Request) (dataprocessing.ProcessingOptions, error) {
	q := r.URL.Query()
	req := api.ProcessRequest{
		Unit:     q.Get("unit"),
		Policy:   q.Get("policy"),
		Rounding: q.Get("rounding"),
	}
	if msg := validation.NewRowValidator().ValidateStruct(req); msg != "" {
		return dataprocessing.ProcessingOptions{}, apierrors.ErrValidation("query", msg)
	}
	opts, err := dataprocessing.ProcessingOptions{}.Override(req.Unit, req.Policy, req.Rounding)
	if err != nil {
		return dataprocessing.ProcessingOptions{}, apierrors.ErrValidation("query", err.Error())
	}
	return opts, nil
}

// openUpload returns the export carried by the request: the "file" part of a
// multipart form, or the raw body otherwise. The returned name selects the
// reader; an xlsx content type maps to a workbook.
func (h *AbsenceHandler) openUpload(w http.ResponseWriter, r *http.Request) (io.Reader, string, func(), error) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	noop := func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			return nil, "", noop, err
		}
		file, header, err := r.FormFile(UploadField)
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", noop, apierrors.ErrMissingUpload
		}
		if err != nil {
			return nil, "", noop, err
		}
		return file, header.Filename, func() {
			file.Close()
			if r.MultipartForm != nil {
				r.MultipartForm.RemoveAll()
			}
		}, nil
	case ContentTypeXLSX:
		return r.Body, "upload.xlsx", noop, nil
	default:
		if r.ContentLength == 0 {
			return nil, "", noop, apierrors.ErrMissingUpload
		}
		return r.Body, "", noop, nil
	}
}

// handleError maps transport-level failures before the generic problem mapping
func (h *AbsenceHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		err = apierrors.ErrPayloadTooLarge
	case errors.Is(err, services.ErrUnsupportedUpload):
		err = apierrors.ErrValidation(UploadField, err.Error())
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, io.ErrUnexpectedEOF):
		err = apierrors.InvalidRequestWithError(err)
	}
	h.errorHandler.HandleError(w, r, err)
}

// negotiate picks the response format from the format query parameter or
// the Accept header. JSON is the default.
func negotiate(r *http.Request) exporter.Format {
	if f, err := exporter.ParseFormat(r.URL.Query().Get("format")); err == nil {
		return f
	}
	accept := r.Header.Get("Accept")
	switch {
	case strings.Contains(accept, ContentTypeCSV):
		return exporter.FormatCSV
	case strings.Contains(accept, ContentTypeXLSX):
		return exporter.FormatXLSX
	default:
		return exporter.FormatJSON
	}
}

func contentType(f exporter.Format) string {
	if f == exporter.FormatXLSX {
		return ContentTypeXLSX
	}
	return ContentTypeCSV + "; charset=utf-8"
}

// setSkippedHeader lists rows dropped under the skip policy for table responses
func setSkippedHeader(w http.ResponseWriter, result *dataprocessing.Result) {
	if len(result.Skipped) == 0 {
		return
	}
	rows := make([]string, len(result.Skipped))
	for i, row := range result.Skipped.Rows() {
		rows[i] = fmt.Sprint(row)
	}
	w.Header().Set("X-Skipped-Rows", strings.Join(rows, ","))
}
