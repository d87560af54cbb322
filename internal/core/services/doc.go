// Package services implements the driving port interfaces on top of the
// driven ports.
//
// The retrieval pipeline is layered leaves first:
//
//   - CourseIndex pairs the chunk store with the embedding service.
//   - Retriever applies course scoping, AUTO detection and score filtering.
//   - Generator builds the grounded prompt and streams answers.
//
// AssistantService, IngestService, LibraryService and SettingsService are
// the entry points used by the CLI, TUI and MCP adapters.
package services
