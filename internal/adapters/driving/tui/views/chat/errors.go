package chat

import "errors"

// ErrNoExportService indicates that no export sink was configured.
var ErrNoExportService = errors.New("export is not configured")
