package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"go-videotube/internal/middleware"
	"go-videotube/internal/model"
	"go-videotube/pkg/apierror"
)

const multipartMemory = 1 << 20

// decodeFields fills the named string fields from a JSON body or from an
// urlencoded or multipart form, whichever the request carries.
func decodeFields(r *http.Request, fields map[string]*string) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := parseForm(r); err != nil {
			return err
		}
		for name, target := range fields {
			*target = r.FormValue(name)
		}
		return nil
	default:
		payload := map[string]any{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				return err
			}
			return apierror.BadRequest("Invalid JSON body")
		}
		for name, target := range fields {
			if value, ok := payload[name].(string); ok {
				*target = value
			}
		}
		return nil
	}
}

func parseForm(r *http.Request) error {
	if r.Form != nil {
		return nil
	}

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return err
	}
	return apierror.BadRequest("Invalid form body", err.Error())
}

// formFile returns the upload stored under field, or nil when the request has
// none. The caller closes the returned closer.
func formFile(r *http.Request, field string) (*model.Upload, io.Closer, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, apierror.BadRequest("Invalid "+field+" file", err.Error())
	}

	return uploadFrom(file, header), file, nil
}

func uploadFrom(file multipart.File, header *multipart.FileHeader) *model.Upload {
	return &model.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}

func cleanupMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, apierror.Unauthorized("Unauthorized access"))
	}
	return identity, ok
}
