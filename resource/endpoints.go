// Package resource exposes remote collections through one uniform shape:
// a cached list query plus create/update/delete mutations that invalidate
// the list's cache key on success.
package resource

import (
	"net/url"
	"strings"
)

// Endpoints locates a collection on the backend.
type Endpoints struct {
	// Collection is the list/create path, e.g. "/admin/vendors/".
	Collection string
	// Upload is the multipart bulk upload path. Empty when the resource has none.
	Upload string
}

// AdminEndpoints returns the /admin/{name}/ endpoints for name.
func AdminEndpoints(name string) Endpoints {
	collection := "/admin/" + url.PathEscape(name) + "/"
	return Endpoints{
		Collection: collection,
		Upload:     collection + "upload/",
	}
}

// Detail returns the path of a single item.
func (e Endpoints) Detail(id string) string {
	return strings.TrimRight(e.Collection, "/") + "/" + url.PathEscape(id) + "/"
}
