// Package connectors feeds course material into the index from outside the
// upload commands. The filesystem connector watches a folder and keeps one
// course in step with it.
package connectors
