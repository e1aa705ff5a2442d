// Package types defines the changelog history entities, filter and result
// value objects, and standard errors shared by the historian storage backend
// and its managers.
package types
