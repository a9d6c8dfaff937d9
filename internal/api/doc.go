// Package api handles incoming HTTP requests: form parsing, input
// validation, response formatting and the mapping of internal errors to
// status codes. It adapts HTTP to the extraction and generation services.
package api
