package diff

// MapLine resolves a line reference for the given path to an absolute line
// number in the new version of the file. It never fails: when no
// interpretation applies, the input comes back unchanged.
//
// The reference is tried under three interpretations, first match wins:
//
//  1. A 1-based ordinal counting every content line across the file's hunks
//     in diff order. Models told to count lines in the diff text they were
//     shown report positions this way.
//  2. An old-file line number inside some hunk's old range, re-based onto the
//     new range by offset. An approximation: insertions or deletions inside
//     the hunk shift the true offset.
//  3. A new-file line number already inside some hunk's new range, returned
//     as-is.
//
// The cascade is heuristic; when more than one interpretation could apply
// the earlier one wins, which can produce a plausible-but-wrong answer.
// Callers treat the result as best-effort. Values already in new-file
// coordinates are a fixed point once interpretation 1 no longer matches.
func MapLine(files []File, path string, line int) int {
	var file *File
	for i := range files {
		if files[i].Path == path {
			file = &files[i]
			break
		}
	}
	if file == nil {
		// Comment may reference a file outside the diff.
		return line
	}

	if mapped, ok := mapContentOrdinal(file, line); ok {
		return mapped
	}

	for _, h := range file.Hunks {
		if line >= h.OldStart && line < h.OldStart+h.OldLines {
			return h.NewStart + (line - h.OldStart)
		}
	}

	for _, h := range file.Hunks {
		if line >= h.NewStart && line < h.NewStart+h.NewLines {
			return line
		}
	}

	return line
}

// mapContentOrdinal treats line as a 1-based position among all of the
// file's content lines. The per-hunk counters hold the number of new-side
// and old-side lines seen before the current line, so an addition at the
// ordinal maps to NewStart+newCount, a deletion to OldStart+oldCount, and a
// context line to the new side.
func mapContentOrdinal(file *File, line int) (int, bool) {
	ordinal := 0
	for _, h := range file.Hunks {
		newCount, oldCount := 0, 0
		for _, l := range h.Lines {
			ordinal++
			if ordinal == line {
				switch l.Type {
				case LineAddition:
					return h.NewStart + newCount, true
				case LineDeletion:
					return h.OldStart + oldCount, true
				default:
					return h.NewStart + newCount, true
				}
			}
			switch l.Type {
			case LineAddition:
				newCount++
			case LineDeletion:
				oldCount++
			default:
				newCount++
				oldCount++
			}
		}
	}
	return 0, false
}
