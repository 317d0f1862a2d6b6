// Package diff parses unified diffs and resolves ambiguous line references
// to absolute line numbers in the new version of a file.
//
// The parser handles the subset of unified-diff syntax GitHub produces for
// pull requests: "diff --git" file separators, "+++ b/" path lines, and
// "@@ -old[,n] +new[,n] @@" hunk headers. Renames, binary files, and other
// extended headers are not specially handled; a file's identity is always
// its new path.
//
// The mapper exists because LLM review comments reference lines in whatever
// numbering scheme the model happened to use: an ordinal into the diff text
// it was shown, an old-file line, or a new-file line. MapLine tries each
// interpretation in turn and degrades to identity rather than failing.
package diff
