// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - EmbeddingService: Generates vector embeddings (OpenAI, Ollama, Gemini)
//   - LLMService: Chat completion with token usage (OpenAI, Anthropic, Ollama, Gemini)
//   - Tokenizer: Token-level splitting for the chunker (tiktoken, word)
//   - Chunker: Token-bounded text splitting
//   - IndexStore: Vector index persistence (files, SQLite, MinIO, memory)
//   - Extractor: Text extraction from uploaded files (PDF, plain text)
//   - ExportSink: Conversation export target (Notion, markdown file)
//   - ConfigStore: Application configuration
//   - PromptStore: Editable prompt templates
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
