package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// respondJSONWithETag writes the payload with a content-derived ETag so
// clients can revalidate rarely-changing responses, like the dataset
// catalog, instead of re-downloading them.
func respondJSONWithETag(ctx *gin.Context, status int, payload any) {
	etag, err := contentETag(payload)

	if err != nil {
		ctx.JSON(status, payload)
		return
	}

	ctx.Header("ETag", etag)

	if etagMatches(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.JSON(status, payload)
}

func contentETag(payload any) (string, error) {
	b, err := json.Marshal(payload)

	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(b)

	return `"` + hex.EncodeToString(sum[:]) + `"`, nil
}

func etagMatches(ifNoneMatch, current string) bool {
	if strings.TrimSpace(ifNoneMatch) == "" || current == "" {
		return false
	}

	if strings.TrimSpace(ifNoneMatch) == "*" {
		return true
	}

	want := stripWeakPrefix(current)

	for _, part := range strings.Split(ifNoneMatch, ",") {
		if stripWeakPrefix(part) == want {
			return true
		}
	}

	return false
}

func stripWeakPrefix(raw string) string {
	v := strings.TrimSpace(raw)

	// clients may send weak validators like W/"abc"
	if strings.HasPrefix(v, "W/") {
		v = strings.TrimSpace(strings.TrimPrefix(v, "W/"))
	}

	return v
}
