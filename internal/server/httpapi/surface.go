// Package httpapi exposes the member service over the two HTTP surfaces and
// owns the error-to-response translation seam between them.
package httpapi

import "strings"

// Surface tags which API audience a request belongs to. It is resolved once
// from the request path by the routing layer and carried as a value, not
// re-derived at translation time.
type Surface int

const (
	// SurfaceOther covers any path outside the two known surfaces.
	SurfaceOther Surface = iota
	// SurfaceBackend is the backend-administration API.
	SurfaceBackend
	// SurfaceAPIV2 is the public-facing API.
	SurfaceAPIV2
)

const (
	backendPrefix = "/backend/api/v1"
	apiV2Prefix   = "/api/v2"
)

// SurfaceFromPath classifies a request path by prefix.
func SurfaceFromPath(path string) Surface {
	switch {
	case strings.HasPrefix(path, backendPrefix):
		return SurfaceBackend
	case strings.HasPrefix(path, apiV2Prefix):
		return SurfaceAPIV2
	default:
		return SurfaceOther
	}
}

func (s Surface) String() string {
	switch s {
	case SurfaceBackend:
		return "backend"
	case SurfaceAPIV2:
		return "api-v2"
	default:
		return "other"
	}
}
