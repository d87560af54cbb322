// Package driven lists what the core services need from the outside world.
//
// Storage, embeddings, text extraction, chunking and configuration must be
// supplied. Two ports may be left nil. Without an LLMService the assistant
// declines to answer while uploads and document management keep working.
// Without a PromptStore the built-in prompts are used.
//
// The package imports only domain.
package driven
