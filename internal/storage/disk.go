package storage

import (
	"os"
)

// Artifacts names the on-disk files the service owns.
type Artifacts struct {
	DataPath     string
	DatabasePath string
	IndexPath    string
	MetadataPath string
}

// DiskUsage reports the size of each artifact in bytes. Missing files count as zero.
type DiskUsage struct {
	Data     int64 `json:"data"`
	Database int64 `json:"database"`
	Index    int64 `json:"index"`
	Metadata int64 `json:"metadata"`
	Total    int64 `json:"total"`
}

// sqliteSidecars are the journal files SQLite keeps next to a WAL-mode database.
var sqliteSidecars = []string{"-wal", "-shm"}

// MeasureDiskUsage stats every artifact. The database figure includes its WAL and
// shared-memory files.
func MeasureDiskUsage(a Artifacts) (DiskUsage, error) {
	var u DiskUsage
	var err error
	if u.Data, err = fileSize(a.DataPath); err != nil {
		return DiskUsage{}, err
	}
	if u.Database, err = fileSize(a.DatabasePath); err != nil {
		return DiskUsage{}, err
	}
	if a.DatabasePath != "" {
		for _, suffix := range sqliteSidecars {
			n, err := fileSize(a.DatabasePath + suffix)
			if err != nil {
				return DiskUsage{}, err
			}
			u.Database += n
		}
	}
	if u.Index, err = fileSize(a.IndexPath); err != nil {
		return DiskUsage{}, err
	}
	if u.Metadata, err = fileSize(a.MetadataPath); err != nil {
		return DiskUsage{}, err
	}
	u.Total = u.Data + u.Database + u.Index + u.Metadata
	return u, nil
}

func fileSize(path string) (int64, error) {
	if path == "" {
		return 0, nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
