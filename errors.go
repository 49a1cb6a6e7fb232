package itmd

import (
	"errors"

	"github.com/alnah/go-itmd/internal/pipeline"
	"github.com/alnah/go-itmd/internal/policy"
)

// Sentinel errors for library operations. Content problems never produce
// errors; they are reported as warnings and diagnostics on the document.
var (
	ErrInputTooLarge = errors.New("markdown input exceeds maximum size")
	ErrInternal      = errors.New("internal parser error")

	// ErrSchemaValidation is returned by ValidateJSON for JSON that does
	// not match the document schema.
	ErrSchemaValidation = errors.New("document schema validation failed")

	// ErrInvalidPolicy is returned when a policy given with WithPolicy
	// fails validation.
	ErrInvalidPolicy = policy.ErrInvalidPolicy

	// Collaborator errors.
	ErrTokenize   = pipeline.ErrTokenize
	ErrHTMLRender = pipeline.ErrHTMLRender
)
