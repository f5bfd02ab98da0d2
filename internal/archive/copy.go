package archive

import (
	"context"
	"errors"
	"fmt"
)

// CopyStats counts what Copy did.
type CopyStats struct {
	Read    int
	Copied  int
	Skipped int
}

// Copy moves every record of src into dst, oldest first, keeping UIDs and
// creation times. Records whose UID already exists in dst are skipped, so
// repeating a copy is harmless. With dryRun set nothing is written.
func Copy(ctx context.Context, dst, src *Archive, dryRun bool) (CopyStats, error) {
	var stats CopyStats

	records, err := src.List(ctx, 0)
	if err != nil {
		return stats, err
	}
	stats.Read = len(records)

	for i := len(records) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		rec := records[i]

		if dryRun {
			if _, err := dst.GetByUID(ctx, rec.UID); err == nil {
				stats.Skipped++
			} else if errors.Is(err, ErrNotFound) {
				stats.Copied++
			} else {
				return stats, err
			}
			continue
		}

		if _, err := dst.Save(ctx, &rec); err != nil {
			if errors.Is(err, ErrDuplicate) {
				stats.Skipped++
				continue
			}
			return stats, fmt.Errorf("failed to copy maze %s: %w", rec.UID, err)
		}
		stats.Copied++
	}
	return stats, nil
}
