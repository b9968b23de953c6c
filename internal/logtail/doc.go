// Package logtail reads the end of the client log file for the monitor.
//
// Read keeps a ring buffer of maxLines entries and scans the file once, so
// memory stays O(maxLines) however large the log grows. Lines come back in
// file order. A missing file returns nil, nil; other I/O errors are wrapped.
//
//	lines, err := logtail.Read(cfg.LogPath(), 200)
//	if err != nil {
//		log.Printf("log tail: %v", err)
//	}
//
// There is no file watching or rotation handling: the UI calls Read again on
// its tick.
package logtail
