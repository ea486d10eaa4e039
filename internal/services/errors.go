package services

import (
	"context"
	"errors"
	"net/http"

	apierrors "saaspulse/internal/errors"
	"saaspulse/internal/exporter"
	"saaspulse/internal/ingest"
	"saaspulse/internal/validation"
)

// Report service errors
var (
	ErrInvalidAnalysisDate = errors.New("analysis_date must be YYYY-MM-DD")
	ErrNoRenderer          = errors.New("report has no renderer")
)

// clientError maps a failure before report assembly to the APIError the
// HTTP layer reports. Context errors are returned unchanged.
func clientError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var (
		schemaErr *ingest.SchemaError
		parseErr  *ingest.ParseError
		formatErr *exporter.UnsupportedFormatError
		maxBytes  *http.MaxBytesError
		apiErr    *apierrors.APIError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, validation.ErrNotCSV):
		return apierrors.ErrUnsupportedFile
	case errors.Is(err, validation.ErrUploadTooLarge), errors.As(err, &maxBytes):
		return apierrors.ErrPayloadTooLarge
	case errors.Is(err, validation.ErrEmptyUpload):
		return apierrors.InvalidCSV(err)
	case errors.As(err, &formatErr):
		return apierrors.UnsupportedFormat(err)
	case errors.As(err, &schemaErr), errors.As(err, &parseErr), errors.Is(err, ingest.ErrMalformedCSV):
		return apierrors.InvalidCSV(err)
	default:
		return err
	}
}
