// Package export holds the transcript export sinks.
//
//   - notion: creates a page in a Notion database
//   - file: writes a markdown file to a local directory
package export
