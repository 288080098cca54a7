// Package tsconfig rewrites the tsconfig.json generated by `tsc --init`
// for a new ts-scaffold project.
//
// The file produced by tsc is JSONC: most options are present as
// commented-out lines with trailing descriptions. The rewrite is therefore
// done on text lines, so every line the scaffolder does not own survives
// byte-for-byte, comments included:
//
//   - "target" is forced to es2019
//   - the commented "outDir" and "rootDir" lines are activated as ./lib and ./src
//   - transformer plugins are injected into compilerOptions
//
// Plugins are placed by key, not by line number. Comments are stripped with
// github.com/tidwall/jsonc, which keeps byte offsets and line breaks intact,
// so the position of the compilerOptions brace in the stripped text is also
// its position in the commented input. When the document's shape does not allow an
// in-place insert, the package falls back to a structured merge that drops
// comments. Either way the result is parsed back and validated against the
// embedded tsconfig schema before it is returned.
package tsconfig
