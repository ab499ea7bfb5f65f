package record

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"RoomBooker/pkg/session"
)

// Snapshots saves confirmation pages under <Folder>/<date>/.
type Snapshots struct {
	Folder string
	Now    func() time.Time
}

// Capture writes the current page of sess to
// <Folder>/<YYYY-MM-DD>/<username>-<HH-MM>-resource.html and returns the path.
func (s *Snapshots) Capture(sess session.Session, username string) (string, error) {
	body, err := sess.Snapshot()
	if err != nil {
		return "", fmt.Errorf("snapshot page: %w", err)
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	dir := filepath.Join(s.Folder, now.Format(dateLayout))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot folder: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s-resource.html", username, now.Format("15-04")))
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}
