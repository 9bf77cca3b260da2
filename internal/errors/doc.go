// Package errors provides the classified error type used across xdocs.
//
// Every failure that reaches the CLI is either a ClassifiedError or wraps one;
// the category decides the process exit code and how the message is shown.
//
// Example usage:
//
//	err := errors.FileSystemError("cannot read page source").
//		WithContext("path", sourcePath).
//		WithCause(readErr).
//		Build()
package errors
