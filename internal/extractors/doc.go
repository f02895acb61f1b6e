// Package extractors turns uploaded files into page-ordered text.
//
// Each subpackage implements driven.Extractor for one family of MIME types.
// The Registry in this package dispatches by MIME type and detects the type
// of a file from its name and content.
package extractors
