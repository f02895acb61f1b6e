// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML configuration with an environment variable overlay
//   - PromptStore: user-editable prompt templates with embedded defaults
//   - WatchPrompts: reloads the PromptStore when template files change
package file
