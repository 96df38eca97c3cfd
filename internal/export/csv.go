// Package export 把事件列表格式化为 CSV：每个字段都加双引号，字段内的双引号写成两个。
package export

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"LifeStats/internal/model"
)

var (
	BathroomHeader = []string{"ID", "Type", "Timestamp", "Location", "In VR", "Person 1", "Person 2", "Normalized Who", "Normalized Person 2"}
	DentalHeader   = []string{"ID", "Timestamp", "Used Flosser"}
)

// QuoteField "a"b" -> "\"a\"\"b\""
func QuoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteCSV 写出表头与数据行，行尾为 \n
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	bw := bufio.NewWriter(w)
	writeRow := func(fields []string) error {
		for i, f := range fields {
			if i > 0 {
				if err := bw.WriteByte(','); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(QuoteField(f)); err != nil {
				return err
			}
		}
		return bw.WriteByte('\n')
	}
	if err := writeRow(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeRow(row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

// BathroomRows 与 BathroomHeader 对应的数据行
func BathroomRows(events []*model.BathroomEvent) [][]string {
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, []string{
			strconv.FormatUint(ev.ID, 10),
			string(ev.EventType),
			ev.Timestamp,
			deref(ev.Location),
			derefInt(ev.InVR),
			deref(ev.Person1),
			deref(ev.Person2),
			deref(ev.NormalizedWho),
			deref(ev.NormalizedPerson2),
		})
	}
	return rows
}

// DentalRows 与 DentalHeader 对应的数据行
func DentalRows(events []*model.DentalEvent) [][]string {
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, []string{
			strconv.FormatUint(ev.ID, 10),
			ev.Timestamp,
			strconv.Itoa(ev.UsedFlosser),
		})
	}
	return rows
}

func WriteBathroomCSV(w io.Writer, events []*model.BathroomEvent) error {
	return WriteCSV(w, BathroomHeader, BathroomRows(events))
}

func WriteDentalCSV(w io.Writer, events []*model.DentalEvent) error {
	return WriteCSV(w, DentalHeader, DentalRows(events))
}
