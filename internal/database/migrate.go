package database

import "fmt"

// CopySlots copies every save slot from src into dst, overwriting slots that
// already exist there. With dryRun set nothing is written; the count is
// what would have been copied.
func CopySlots(src, dst *Database, dryRun bool) (int, error) {
	infos, err := src.ListSlots()
	if err != nil {
		return 0, err
	}

	copied := 0
	for _, info := range infos {
		s, err := src.LoadSlot(info.ID)
		if err != nil {
			return copied, err
		}
		if !dryRun {
			if err := dst.SaveSlot(*s); err != nil {
				return copied, fmt.Errorf("failed to copy slot %d: %w", info.ID, err)
			}
		}
		copied++
	}
	return copied, nil
}
