package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/tychio/da-rmmv-plugins/internal/quest"
)

var tableHeader = []string{"NAME", "RANK", "TYPE", "STEPS", "MAP", "TARGET", "REWARD"}

// writeTable prints quests as aligned columns. Names and maps may hold
// wide characters, so widths are measured in terminal cells.
func writeTable(w io.Writer, quests []*quest.Quest) error {
	rows := [][]string{tableHeader}
	for _, q := range quests {
		rows = append(rows, []string{
			q.Name,
			q.Level.Label,
			string(q.Type),
			fmt.Sprint(q.Steps),
			q.Map.MapName,
			q.Map.Target,
			fmt.Sprintf("+%d/-%d", q.Bonus.Increase, q.Bonus.Deduct),
		})
	}

	widths := make([]int, len(tableHeader))
	for _, row := range rows {
		for i, cell := range row {
			if n := runewidth.StringWidth(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i == len(row)-1 {
				cells[i] = cell
				continue
			}
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "  ")); err != nil {
			return err
		}
	}
	return nil
}
