// Package upload validates ticket export files and stores them in the
// object store.
//
// Validation happens before the store is contacted: a missing file, a type
// outside CSV/XLS/XLSX, or a file over the size limit is rejected without
// side effects. Accepted files are stored as tickets-<unix-millis>.<ext>;
// the result reports the caller's original filename for display.
package upload
