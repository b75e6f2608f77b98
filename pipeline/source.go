package pipeline

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/tormoder/fit"
)

// SourceFile records the provenance of one FIT input.
type SourceFile struct {
	Index     int         `json:"index"`
	Name      string      `json:"name"`
	SHA256    string      `json:"sha256,omitempty"`
	SizeBytes int64       `json:"size_bytes"`
	FileID    *FileIDInfo `json:"file_id,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// FileIDInfo is the file_id message of a FIT input.
type FileIDInfo struct {
	Type         string `json:"type"`
	Manufacturer string `json:"manufacturer"`
	Product      string `json:"product"`
	TimeCreated  string `json:"time_created,omitempty"`
	SerialNumber uint32 `json:"serial_number,omitempty"`
}

func describeSourceFile(index int, path string) SourceFile {
	data, err := os.ReadFile(path)
	if err != nil {
		return SourceFile{Index: index, Name: path, Error: err.Error()}
	}
	return describeSource(index, path, data)
}

func describeSource(index int, name string, data []byte) SourceFile {
	sum := sha256.Sum256(data)
	return SourceFile{
		Index:     index,
		Name:      name,
		SHA256:    hex.EncodeToString(sum[:]),
		SizeBytes: int64(len(data)),
		FileID:    projectFileID(data),
	}
}

// projectFileID returns nil when the header or file_id cannot be decoded.
func projectFileID(data []byte) *FileIDInfo {
	_, id, err := fit.DecodeHeaderAndFileID(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	info := &FileIDInfo{
		Type:         fmt.Sprint(id.Type),
		Manufacturer: fmt.Sprint(id.Manufacturer),
		Product:      fmt.Sprint(id.GetProduct()),
		SerialNumber: validSerial(id.SerialNumber),
	}
	if !id.TimeCreated.IsZero() {
		info.TimeCreated = id.TimeCreated.UTC().Format(time.RFC3339)
	}
	return info
}

func validSerial(v uint32) uint32 {
	if v == 0xFFFFFFFF {
		return 0
	}
	return v
}
