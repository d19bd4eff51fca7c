package command

import (
	"fmt"

	"github.com/QuangTung97/buddymem"
	"golang.org/x/text/encoding/charmap"
)

// LabelFunc decorates a region label (e.g. "ALLOCATED") before it is printed.
type LabelFunc func(kind buddymem.Kind, label string) string

func plainLabel(_ buddymem.Kind, label string) string {
	return label
}

// renderData turns arena bytes into printable text. Bytes are decoded as
// Latin-1 so hex payloads above 0x7F still produce valid UTF-8.
func renderData(b []byte) string {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(decoded)
}

// FormatRead renders a READ response.
func FormatRead(v buddymem.ReadView, label LabelFunc) string {
	if label == nil {
		label = plainLabel
	}
	return fmt.Sprintf(
		"READ data: Start Address: 0x%04X, End Address: 0x%04X, Status: %s, Size: %d bytes, Data: '%s'",
		v.Start, v.End, label(buddymem.KindAllocated, "Allocated"), v.Used, renderData(v.Content),
	)
}

// FormatDescriptor renders one DUMP line.
func FormatDescriptor(d buddymem.Descriptor, label LabelFunc) string {
	if label == nil {
		label = plainLabel
	}
	if d.Kind == buddymem.KindFree {
		return fmt.Sprintf("0x%04X - 0x%04X: %s (Size: %d bytes)",
			d.Start, d.End, label(d.Kind, "FREE"), d.Size)
	}

	data := renderData(d.Snippet)
	if d.Truncated {
		data += "..."
	}
	return fmt.Sprintf("0x%04X - 0x%04X: %s (ID: %d) (Size: %d bytes) Data: '%s'",
		d.Start, d.End, label(d.Kind, "ALLOCATED"), d.ID, d.Size, data)
}

// FormatStats renders a STATS response.
func FormatStats(s buddymem.Stats) string {
	return fmt.Sprintf(
		"STATS: Capacity: %d bytes, Allocated: %d bytes, Used: %d bytes, Free: %d bytes, "+
			"Largest Free: %d bytes, Blocks: %d, Free Regions: %d, Utilization: %d%%, Fragmentation: %d%%",
		s.Capacity, s.AllocatedBytes, s.UsedBytes, s.FreeBytes,
		s.LargestFree, s.Blocks, s.FreeRegions, s.Utilization.Percent(), s.Fragmentation.Percent(),
	)
}
