package component

import (
	"github.com/minicast/minicast/internal/avtransport"
	"github.com/minicast/minicast/internal/ui/style"
	"github.com/rivo/tview"
)

// ReportView shows the step-by-step outcome of the most recent push
type ReportView struct {
	root *tview.TextView
}

func NewReportView() *ReportView {
	text := tview.NewTextView()
	text.SetBorder(true)
	text.SetBorderPadding(1, 1, 2, 2)
	text.SetTitle("push report")
	text.SetTitleColor(style.ColorLightGreen)

	return &ReportView{root: text}
}

func (r *ReportView) Primitive() tview.Primitive {
	return r.root
}

func (r *ReportView) Update(report *avtransport.PushReport) {
	r.root.SetText(report.String())

	if report.Success {
		r.root.SetTextColor(style.ColorMediumGreen)
	} else {
		r.root.SetTextColor(style.ColorOrange)
	}
}

func (r *ReportView) SetError(err error) {
	r.root.SetText(err.Error())
	r.root.SetTextColor(style.ColorOrange)
}
