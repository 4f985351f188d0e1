// Package diag defines the core diagnostic model shared by all pipeline phases.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced by
//     the lexer, the parser and flag-set resolution.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// Package diag does not perform any formatting or IO. Rendering lives in
// internal/diagfmt, collection per file lives in internal/driver.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//   - Fixes – optional textual edits that would address the problem.
//
// Notes should be used sparingly: each note must add new context (e.g. “`B` is
// declared here”) rather than repeating the diagnostic message.
//
// # Emitting diagnostics
//
// Phases construct a ReportBuilder via ReportError/ReportWarning/ReportInfo and
// chain WithNote before calling Emit. When no additional metadata is needed,
// phases may call Reporter.Report(...) directly.
package diag
