package component

import (
	"github.com/gdamore/tcell/v2"
	"github.com/minicast/minicast/internal/ui/key"
	"github.com/minicast/minicast/internal/ui/style"
	"github.com/rivo/tview"
)

// MediaURLInput accepts the direct stream URL to push to the selected
// renderer
type MediaURLInput struct {
	root     *tview.InputField
	onSubmit func(text string)
}

func NewMediaURLInput(onSubmit func(text string)) *MediaURLInput {
	input := tview.NewInputField()
	input.SetFieldStyle(style.StyleDefault.Dim(true))
	input.SetBorderPadding(0, 0, 1, 1)
	input.SetPlaceholderStyle(style.StyleDefault.Dim(true))
	input.SetLabel("media url: ")

	input.SetFocusFunc(func() {
		input.SetBorder(true)
		input.SetBorderColor(style.ColorPurple)
		input.SetPlaceholder("http://host/stream.m3u8")
	})

	input.SetBlurFunc(func() {
		input.SetBorder(false)
		input.SetPlaceholder("")
	})

	mi := &MediaURLInput{
		root:     input,
		onSubmit: onSubmit,
	}

	mi.root.SetDoneFunc(func(k tcell.Key) {
		if k == key.KeyEnter {
			mi.onSubmit(mi.root.GetText())
		}
	})

	return mi
}

func (i *MediaURLInput) Primitive() tview.Primitive {
	return i.root
}
