// Package blob stores uploaded ticket exports as public objects.
//
// Local writes objects to a directory that the HTTP server exposes under
// /blobs. Remote talks to a Vercel-compatible blob API with a read-write
// token. Both append a random suffix to the object name so concurrent
// uploads in the same millisecond never collide.
package blob
