package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat: vacío = json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "msgpack", "messagepack":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", ErrInvalidInput, s)
	}
}

func (f Format) ContentType() string {
	if f == FormatMsgpack {
		return "application/msgpack"
	}
	return "application/json"
}

func (f Format) Ext() string {
	if f == FormatMsgpack {
		return ".msgpack"
	}
	return ".json"
}

// BackupName es el nombre de archivo del respaldo del día.
func BackupName(t time.Time, f Format) string {
	return "smart-feeding-backup-" + t.Format(time.DateOnly) + f.Ext()
}

// Encode serializa el snapshot. En msgpack se reutilizan los tags json para
// que ambos formatos tengan las mismas claves.
func Encode(s Snapshot, f Format) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case FormatMsgpack:
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(s); err != nil {
			return nil, fmt.Errorf("encode msgpack: %w", err)
		}
	default:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Decode es la inversa de Encode (restauraciones y tests).
func Decode(data []byte, f Format) (Snapshot, error) {
	var s Snapshot
	switch f {
	case FormatMsgpack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag("json")
		if err := dec.Decode(&s); err != nil {
			return Snapshot{}, fmt.Errorf("decode msgpack: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &s); err != nil {
			return Snapshot{}, fmt.Errorf("decode json: %w", err)
		}
	}
	return s, nil
}
