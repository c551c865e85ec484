package extract

import (
	"errors"
	"fmt"

	"github.com/lepinkainen/markers-extractor/label"
)

// Error kinds returned by the engine and assembler. Use errors.Is.
var (
	ErrInvalidSettings = errors.New("invalid settings")
	ErrUnreadableFile  = errors.New("unreadable file")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrLabelsDepleted  = label.ErrLabelsDepleted
	ErrGenerateFrame   = errors.New("generate frame failed")
	ErrAddFrame        = errors.New("add frame failed")
	ErrWrite           = errors.New("write failed")
)

// ExtractError ties a failure kind to the asset it happened on.
type ExtractError struct {
	Kind     error
	Filename string
	Err      error
}

func (e *ExtractError) Error() string {
	msg := e.Kind.Error()
	if e.Filename != "" {
		msg = fmt.Sprintf("%s for %s", msg, e.Filename)
	}
	if e.Err != nil && e.Err != e.Kind {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *ExtractError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the failure kind of err, or nil when err is not an extraction failure.
func KindOf(err error) error {
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	for _, kind := range []error{ErrInvalidSettings, ErrUnreadableFile, ErrUnsupportedType, ErrLabelsDepleted} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

func newError(kind error, filename string, cause error) *ExtractError {
	return &ExtractError{Kind: kind, Filename: filename, Err: cause}
}
