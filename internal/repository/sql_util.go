package repository

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// nullJSON stores nil and JSON null as SQL NULL.
func nullJSON(raw json.RawMessage) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return string(trimmed)
}

// rawJSON copies a scanned JSONB value; NULL becomes nil.
func rawJSON(b []byte) json.RawMessage {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// validUUIDs drops ids that are not UUIDs so ANY($1::uuid[]) never fails on
// client input.
func validUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func newID(id string) string {
	if strings.TrimSpace(id) != "" {
		return id
	}
	return uuid.NewString()
}

// limitOffset normalizes page/size for LIMIT/OFFSET.
func limitOffset(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	return size, (page - 1) * size
}
