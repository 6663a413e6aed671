package imaging

import (
	"errors"
	"fmt"
)

// Kind names one stage of the standardization pipeline.
type Kind string

const (
	KindInvalidData Kind = "invalid_image_data"
	KindTooSmall    Kind = "image_too_small"
	KindConversion  Kind = "image_conversion"
	KindResizing    Kind = "image_resizing"
	KindSave        Kind = "image_save"
)

// ProcessError reports a failure at one stage of standardization. Every
// stage failure is recoverable for the caller: it advances to the next
// logo source instead of aborting the entity.
type ProcessError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *ProcessError) Error() string {
	if e == nil {
		return ""
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ProcessError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf extracts the pipeline stage from err, or empty when err is not
// a ProcessError.
func KindOf(err error) Kind {
	var perr *ProcessError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return ""
}

func stageError(kind Kind, path string, err error) error {
	return &ProcessError{Kind: kind, Path: path, Err: err}
}
