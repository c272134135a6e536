package status

import (
	"fmt"

	"github.com/buger/jsonparser"
)

const (
	defaultMountStatus = "Unknown"
	defaultNowPlaying  = "N/A"
)

// ParseSnapshot decodes a status document into a Snapshot. Missing numeric
// fields default to 0, a missing status to "Unknown" and missing metadata
// to "N/A". Mounts are kept in document order, which is why we walk the
// object with jsonparser instead of decoding into a Go map.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	snap := &Snapshot{}

	if v, err := jsonparser.GetInt(data, "total_listener_count"); err == nil {
		snap.TotalListeners = int(v)
	}
	if v, err := jsonparser.GetInt(data, "total_source_count"); err == nil {
		snap.TotalSources = int(v)
	}

	mounts, dataType, _, err := jsonparser.Get(data, "mounts")
	if err != nil {
		return nil, fmt.Errorf("ParseSnapshot mounts lookup error: %w", err)
	}
	if dataType != jsonparser.Object {
		return nil, fmt.Errorf("ParseSnapshot: mounts is %s, not an object", dataType)
	}

	err = jsonparser.ObjectEach(mounts, func(key, value []byte, vt jsonparser.ValueType, _ int) error {
		if vt != jsonparser.Object {
			return fmt.Errorf("mount %q is %s, not an object", key, vt)
		}

		m := Mount{
			Path: string(key),
			MountInfo: MountInfo{
				Status:     defaultMountStatus,
				NowPlaying: defaultNowPlaying,
			},
		}

		if s, err := jsonparser.GetString(value, "status"); err == nil && s != "" {
			m.Status = s
		}
		if n, err := jsonparser.GetInt(value, "listener_count"); err == nil {
			m.Listeners = int(n)
		}
		if np, err := jsonparser.GetString(value, "metadata", "now_playing"); err == nil && np != "" {
			m.NowPlaying = normalizeMetadata(np)
		}

		snap.Mounts = append(snap.Mounts, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ParseSnapshot mounts walk error: %w", err)
	}

	return snap, nil
}
