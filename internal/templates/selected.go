package templates

import (
	"os"
	"path/filepath"
	"strings"
)

// The selected template id is remembered in an ephemeral file under the
// session directory, always under this one name. It is a convenience, not a
// contract: a missing or unreadable file simply means no selection.
const selectedFileName = "selected_template"

// RememberSelected stores the selected template id next to the session file.
// Best effort; failures are swallowed.
func RememberSelected(sessionPath, templateID string) {
	path := selectedPath(sessionPath)
	if templateID == "" {
		_ = os.Remove(path)
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(path, []byte(templateID), 0o644)
}

// RecallSelected returns the remembered template id, or empty when none
func RecallSelected(sessionPath string) string {
	data, err := os.ReadFile(selectedPath(sessionPath))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func selectedPath(sessionPath string) string {
	return filepath.Join(filepath.Dir(sessionPath), selectedFileName)
}
