// Package normalisers provides TextExtractor implementations that read
// page text out of uploaded files, and a registry that selects one by
// file extension.
//
// Extractors are registered with the Registry at startup.
package normalisers
