package component

import (
	"context"
	"net/url"

	"github.com/gdamore/tcell/v2"
	"github.com/minicast/minicast/internal/device"
	"github.com/minicast/minicast/internal/ui/key"
	"github.com/minicast/minicast/internal/ui/style"
	"github.com/rivo/tview"
)

// RendererTable lists discovered renderers; Enter picks one as the push
// target
type RendererTable struct {
	ctx           context.Context
	cancel        context.CancelFunc
	table         *tview.Table
	devices       []*device.Device
	columnHeaders []string
}

func NewRendererTable(onSelect func(dev *device.Device)) *RendererTable {
	columnHeaders := []string{"NAME", "IP", "AVTRANSPORT", "USN"}

	ctx, cancel := context.WithCancel(context.Background())

	table := createTable("renderers", columnHeaders)

	t := &RendererTable{
		ctx:           ctx,
		cancel:        cancel,
		table:         table,
		devices:       []*device.Device{},
		columnHeaders: columnHeaders,
	}

	table.SetInputCapture(func(evt *tcell.EventKey) *tcell.EventKey {
		if evt.Key() == key.KeyEnter {
			row, _ := table.GetSelection()
			idx := row - 2

			if idx >= 0 && idx < len(t.devices) {
				onSelect(t.devices[idx])
			}

			return nil
		}

		return evt
	})

	return t
}

func (t *RendererTable) Primitive() tview.Primitive {
	return t.table
}

func (t *RendererTable) UpdateTable(devices []*device.Device) {
	t.devices = devices

	for rowIdx, dev := range devices {
		name := dev.DisplayName()
		ip := locationHost(dev.Location)

		avtransport := "pending"

		if dev.Playable() {
			avtransport = "ready"
		}

		row := []string{name, ip, avtransport, dev.USN}

		for col, text := range row {
			cell := tview.NewTableCell(text)
			cell.SetExpansion(1)
			cell.SetAlign(tview.AlignLeft)
			color := style.ColorWhite

			if text == "ready" {
				color = style.ColorMediumGreen
			}

			if text == "pending" {
				color = style.ColorDimGrey
			}

			cell.SetTextColor(color)
			t.table.SetCell(rowIdx+2, col, cell)
		}
	}
}

func locationHost(location string) string {
	u, err := url.Parse(location)

	if err != nil {
		return ""
	}

	return u.Hostname()
}
