package ui

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/minicast/minicast/internal/core"
	"github.com/minicast/minicast/internal/device"
	"github.com/minicast/minicast/internal/event"
	"github.com/minicast/minicast/internal/logger"
	"github.com/minicast/minicast/internal/ui/component"
	"github.com/minicast/minicast/internal/ui/key"
)

type view struct {
	ctx             context.Context
	cancel          context.CancelFunc
	app             *tview.Application
	root            *tview.Flex
	pages           *tview.Pages
	header          *component.Header
	rendererTable   *component.RendererTable
	urlInput        *component.MediaURLInput
	reportView      *component.ReportView
	appCore         *core.Core
	eventUpdateChan chan *event.Event
	eventListenerId int
	scanTrigger     chan struct{}
	selected        *device.Device
	logger          logger.Logger
}

func newView(appCore *core.Core) *view {
	log := logger.New()

	ctx, cancel := context.WithCancel(context.Background())

	app := tview.NewApplication()

	v := &view{
		ctx:         ctx,
		cancel:      cancel,
		appCore:     appCore,
		app:         app,
		scanTrigger: make(chan struct{}, 1),
		logger:      log,
	}

	root := tview.NewFlex().SetDirection(tview.FlexRow)
	pages := tview.NewPages()

	header := component.NewHeader()
	rendererTable := component.NewRendererTable(v.onRendererSelect)
	urlInput := component.NewMediaURLInput(v.onURLSubmit)
	reportView := component.NewReportView()

	pushPage := tview.NewFlex().SetDirection(tview.FlexRow)
	pushPage.AddItem(urlInput.Primitive(), 3, 1, true)
	pushPage.AddItem(reportView.Primitive(), 0, 1, false)

	pages.AddPage("renderers", rendererTable.Primitive(), true, true)
	pages.AddPage("push", pushPage, true, false)

	root.
		AddItem(header.Primitive(), 9, 1, false).
		AddItem(pages, 0, 1, true)

	eventUpdateChan := make(chan *event.Event, 100)
	eventListenerId := appCore.RegisterEventListener(eventUpdateChan)

	v.root = root
	v.pages = pages
	v.header = header
	v.rendererTable = rendererTable
	v.urlInput = urlInput
	v.reportView = reportView
	v.eventUpdateChan = eventUpdateChan
	v.eventListenerId = eventListenerId

	return v
}

func (v *view) onRendererSelect(dev *device.Device) {
	v.selected = dev
	v.header.SetStatus("pushing to: " + dev.DisplayName())
	v.pages.SwitchToPage("push")
	v.app.SetFocus(v.urlInput.Primitive())
}

func (v *view) onURLSubmit(text string) {
	if v.selected == nil || text == "" {
		return
	}

	target := v.selected.USN
	name := v.selected.DisplayName()
	v.header.SetStatus("pushing " + text)

	go func() {
		report, err := v.appCore.Play(v.ctx, target, text, "")

		v.app.QueueUpdateDraw(func() {
			if err != nil {
				v.reportView.SetError(err)
				v.header.SetStatus("push failed")
				return
			}

			v.reportView.Update(report)

			if report.Success {
				v.header.SetStatus("playing on: " + name)
			} else {
				v.header.SetStatus("renderer refused every strategy")
			}
		})
	}()
}

func (v *view) bindKeys() {
	v.app.SetInputCapture(func(evt *tcell.EventKey) *tcell.EventKey {
		switch evt.Key() {
		case key.KeyCtrlC:
			v.stop()
			return evt
		case key.KeyCtrlR:
			select {
			case v.scanTrigger <- struct{}{}:
				v.header.SetStatus("scanning...")
			default:
			}
			return nil
		case key.KeyEsc:
			v.selected = nil
			v.pages.SwitchToPage("renderers")
			v.app.SetFocus(v.rendererTable.Primitive())
			return nil
		}

		return evt
	})
}

func (v *view) refreshTable() {
	devices, err := v.appCore.Devices()

	if err != nil {
		v.logger.Error().Err(err).Msg("failed to list renderers")
		return
	}

	v.rendererTable.UpdateTable(devices)
}

func (v *view) processBackgroundEventUpdates() {
	go func() {
		for {
			select {
			case <-v.ctx.Done():
				return
			case evt := <-v.eventUpdateChan:
				v.app.QueueUpdateDraw(func() {
					switch evt.Type {
					case event.DeviceUpdateEvent:
						v.refreshTable()
					case event.ScanCompleteEvent:
						v.header.SetStatus(
							"scan complete - enter picks a renderer, ctrl+r rescans",
						)
					}
				})
			}
		}
	}()
}

func (v *view) processScans() {
	go func() {
		for {
			select {
			case <-v.ctx.Done():
				return
			case <-v.scanTrigger:
				if _, err := v.appCore.Scan(v.ctx); err != nil {
					v.logger.Error().Err(err).Msg("scan failed")
				}
			}
		}
	}()
}

func (v *view) stop() {
	v.appCore.RemoveEventListener(v.eventListenerId)
	v.cancel()
	v.appCore.Stop()
	v.app.Stop()
}

func (v *view) run() error {
	v.bindKeys()
	v.processBackgroundEventUpdates()
	v.processScans()
	v.refreshTable()
	v.scanTrigger <- struct{}{}
	return v.app.SetRoot(v.root, true).EnableMouse(true).Run()
}
