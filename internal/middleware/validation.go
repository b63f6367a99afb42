package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "fincleaner/internal/errors"
	"fincleaner/internal/infrastructure"
)

// DefaultMaxBodySize caps JSON request bodies
const DefaultMaxBodySize = 1 << 20

// dataFileExtensions lists the formats the table package can write
var dataFileExtensions = map[string]bool{".csv": true, ".xlsx": true, ".xlsm": true}

// ValidationMiddleware guards JSON bodies and validates decoded request
// structs with go-playground/validator. Field names in errors follow the
// json tags.
type ValidationMiddleware struct {
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxBodySize  int64
}

func NewValidationMiddleware(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ValidationMiddleware {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("datafile", isDataFile)
	v.RegisterTagNameFunc(jsonFieldName)

	return &ValidationMiddleware{
		validate:     v,
		logger:       infrastructure.WithComponent(logger, "validation_middleware"),
		errorHandler: errorHandler,
		maxBodySize:  DefaultMaxBodySize,
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// hasBody reports whether the method may carry a JSON payload worth checking
func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return r.Body != nil
}

// ValidateRequest refuses bodies over the size cap or that are not JSON.
// The body is buffered so handlers can decode it again.
func (m *ValidationMiddleware) ValidateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !hasBody(r) || r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > m.maxBodySize {
			m.errorHandler.HandleError(w, r, apierrors.PayloadTooLarge(m.maxBodySize, r.ContentLength))
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, m.maxBodySize))
		if err != nil {
			m.logger.ErrorContext(r.Context(), "failed to read request body", slog.String("error", err.Error()))
			m.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
		if len(body) > 0 && !json.Valid(body) {
			m.errorHandler.HandleError(w, r, apierrors.InvalidJSON())
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

// DecodeAndValidate decodes a JSON body into v and validates it. An empty
// body leaves v at its zero value before validation.
func (m *ValidationMiddleware) DecodeAndValidate(r *http.Request, v any) error {
	if r.Body != nil {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return apierrors.InvalidRequestWithError(err)
		}
	}
	return m.ValidateStruct(v)
}

// ValidateStruct maps validator failures to a 400 APIError listing each field
func (m *ValidationMiddleware) ValidateStruct(v any) error {
	err := m.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	details := make([]apierrors.ValidationError, len(fieldErrs))
	for i, fe := range fieldErrs {
		details[i] = apierrors.ValidationError{Field: fe.Field(), Message: describe(fe)}
	}
	return apierrors.NewValidationErrors(details)
}

func describe(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "datafile":
		return fmt.Sprintf("%s must be a relative .csv, .xlsx or .xlsm path that stays inside its directory", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// isDataFile accepts local paths (see filepath.IsLocal) to a supported table
// format. Absolute paths and paths that climb out with ".." are refused;
// callers resolve the rest under a directory of their choosing.
func isDataFile(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if len(path) > 255 || !filepath.IsLocal(path) {
		return false
	}
	return dataFileExtensions[strings.ToLower(filepath.Ext(path))]
}
