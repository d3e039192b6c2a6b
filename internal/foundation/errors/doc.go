// Package errors provides the classified error type used by the rangelink
// command and its supporting packages.
//
// A ClassifiedError carries a category (config, notation, filesystem...), a
// severity and structured context. The CLI adapter turns the category into a
// process exit code and the context into log attributes.
//
//	err := errors.NotationError("link did not parse").
//		WithCause(parseErr).
//		WithContext("link", text).
//		Build()
package errors
