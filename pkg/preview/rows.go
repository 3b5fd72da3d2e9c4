package preview

import (
	"fmt"
	"strings"

	"github.com/rescp17/previewsender/pkg/classify"
	"github.com/rescp17/previewsender/pkg/media"
)

// Row is one display row of the preview list. In collage mode a row stands
// for a whole album: Members holds the media indices it groups and Names
// their file names, in the same order.
type Row struct {
	Title   string
	Detail  string
	Size    int64
	Members []int
	Names   []string
}

// BuildRows renders media for mode.
func BuildRows(mode SendMode, items []media.Media) []Row {
	if mode == ModeCollage {
		return groupRows(items)
	}
	rows := make([]Row, len(items))
	for i, m := range items {
		rows[i] = mediaRow(m)
	}
	return rows
}

func mediaRow(m media.Media) Row {
	var detail string
	switch {
	case m.AsFile:
		detail = m.MimeType
	case m.Photo && m.Width > 0:
		detail = fmt.Sprintf("photo %dx%d", m.Width, m.Height)
	case m.Photo:
		detail = "photo"
	case m.Animated:
		detail = "gif"
	case m.Video:
		detail = "video"
	case m.Music:
		detail = "audio"
	default:
		detail = m.MimeType
	}
	return Row{Title: m.Name, Detail: detail, Size: m.Size}
}

func groupRows(items []media.Media) []Row {
	var rows []Row
	for start := 0; start < len(items); start += classify.MaxCollageItems {
		end := min(start+classify.MaxCollageItems, len(items))
		names := make([]string, 0, end-start)
		members := make([]int, 0, end-start)
		var size int64
		for i := start; i < end; i++ {
			names = append(names, items[i].Name)
			members = append(members, i)
			size += items[i].Size
		}
		rows = append(rows, Row{
			Title:   fmt.Sprintf("Album %d", len(rows)+1),
			Detail:  strings.Join(names, ", "),
			Size:    size,
			Members: members,
			Names:   names,
		})
	}
	return rows
}
