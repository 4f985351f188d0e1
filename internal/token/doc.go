// Package token defines lexical token kinds and trivia for .flg sources.
// Invariants:
//   - Token.Text is a slice of the original source (no copies), except that
//     identifiers are NFC-normalised by the lexer.
//   - Token.Span matches the source bytes exactly (Start..End).
//   - Doc comments (/// ...) are represented as leading Trivia (TriviaDocLine)
//     and never appear in the main token stream.
//   - `Self` and flag-set names are identifiers; the collector gives them meaning.
//   - Operators that are not valid in discriminants (+, <<, ! ...) are still lexed
//     so the collector can name them in diagnostics.
package token
