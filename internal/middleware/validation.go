package middleware

import (
	"mime"
	"net/http"

	"github.com/go-chi/render"

	apierrors "absencecli/internal/errors"
)

// UploadContentTypes are the request media types accepted by the absence endpoints
var UploadContentTypes = []string{
	"text/csv",
	"text/plain",
	"application/octet-stream",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"multipart/form-data",
}

// ContentTypeValidator rejects request bodies whose media type is not in
// contentTypes. Requests without a Content-Type header are let through and
// read as CSV.
func ContentTypeValidator(contentTypes ...string) func(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(contentTypes))
	for _, ct := range contentTypes {
		allowed[ct] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodDelete {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				next.ServeHTTP(w, r)
				return
			}

			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil || !allowed[mediaType] {
				render.Status(r, http.StatusUnsupportedMediaType)
				render.JSON(w, r, apierrors.NewWithDetails(
					http.StatusUnsupportedMediaType,
					"UNSUPPORTED_MEDIA_TYPE",
					"Unsupported content type",
					map[string]interface{}{
						"content_type": contentType,
						"allowed":      contentTypes,
					},
				))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
