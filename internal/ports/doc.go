// Package ports defines the interfaces that connect the application layer
// to infrastructure adapters.
//
// # Port Interfaces
//
//   - [Deliverer]: Uploads one log group to the ingestion service
//   - [Compressor]: Transforms an encoded payload before signing
//   - [DrainTimer]: Produces the periodic drain ticks
//   - [Logger]: Structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (HTTP, lz4, zstd, zerolog, etc.).
package ports
