package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateID returns a new record identifier.
func GenerateID() string {
	return uuid.NewString()
}

// ObjectName builds a collision-resistant object name for an uploaded file:
// upload timestamp plus a random suffix, keeping the original extension.
func ObjectName(filename string) string {
	suffix := make([]byte, 4)
	rand.Read(suffix)

	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), hex.EncodeToString(suffix), ext)
}
