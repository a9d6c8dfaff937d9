package extract

import "errors"

var (
	// ErrUnsupportedMethod is returned for a method with no registered extractor.
	ErrUnsupportedMethod = errors.New("unsupported extraction method")

	// ErrExtractionFailed is returned when the input cannot be read or converted.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrInvalidFileType is returned when an upload's extension does not match its method.
	ErrInvalidFileType = errors.New("invalid file type")

	// ErrMissingInput is returned when a source carries neither data nor a URL
	// the method needs.
	ErrMissingInput = errors.New("missing input")

	// ErrInvalidURL is returned for URLs that cannot be fetched or parsed.
	ErrInvalidURL = errors.New("invalid url")
)
