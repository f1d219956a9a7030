// Package session keeps server-side login state.
//
// Records live in a Backend (memory or Redis) under an opaque id. Store
// implements the gorilla/sessions Store interface on top of a Backend: the
// cookie only carries the signed id, never the record itself. Sessions are
// created lazily, the first Save persists the record and sets the cookie.
package session
