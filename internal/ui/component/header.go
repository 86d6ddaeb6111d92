package component

import (
	"github.com/minicast/minicast/internal/ui/style"
	"github.com/rivo/tview"
)

const appText = `
███╗   ███╗██╗███╗   ██╗██╗ ██████╗ █████╗ ███████╗████████╗
████╗ ████║██║████╗  ██║██║██╔════╝██╔══██╗██╔════╝╚══██╔══╝
██╔████╔██║██║██╔██╗ ██║██║██║     ███████║███████╗   ██║
██║╚██╔╝██║██║██║╚██╗██║██║██║     ██╔══██║╚════██║   ██║
██║ ╚═╝ ██║██║██║ ╚████║██║╚██████╗██║  ██║███████║   ██║
╚═╝     ╚═╝╚═╝╚═╝  ╚═══╝╚═╝ ╚═════╝╚═╝  ╚═╝╚══════╝   ╚═╝`

// Header renders the banner, key legend and scan status line
type Header struct {
	root       *tview.Flex
	statusText *tview.TextView
}

func NewHeader() *Header {
	h := &Header{}

	h.root = tview.NewFlex().SetDirection(tview.FlexRow)

	legendContainer := tview.NewFlex().SetDirection(tview.FlexColumn)

	title := tview.NewTextView().
		SetText(appText).
		SetTextColor(style.ColorPurple)

	legendCol := tview.NewFlex().SetDirection(tview.FlexRow)

	for _, text := range []string{
		"",
		"enter - pick renderer / push url",
		"ctrl+r - rescan",
		"esc - back to renderer list",
	} {
		legend := tview.NewTextView().SetText(text)
		legend.SetTextColor(style.ColorOrange)
		legend.SetTextAlign(tview.AlignLeft)
		legendCol.AddItem(legend, 0, 1, false)
	}

	legendContainer.AddItem(title, 64, 1, false)
	legendContainer.AddItem(legendCol, 0, 1, false)

	statusText := tview.NewTextView().SetText("scanning...")
	statusText.SetTextColor(style.ColorLightGreen)
	statusText.SetTextAlign(tview.AlignLeft)

	h.root.AddItem(legendContainer, 0, 1, false)
	h.root.AddItem(statusText, 1, 1, false)

	h.statusText = statusText

	return h
}

func (h *Header) Primitive() tview.Primitive {
	return h.root
}

func (h *Header) SetStatus(text string) {
	h.statusText.SetText(text)
}
