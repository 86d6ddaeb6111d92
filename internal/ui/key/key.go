package key

import "github.com/gdamore/tcell/v2"

/**
 * Keys and Runes!
 */

const (
	RuneSlash = '/'
)

const (
	KeyCtrlC = tcell.KeyCtrlC
	KeyCtrlR = tcell.KeyCtrlR
	KeyEnter = tcell.KeyEnter
	KeyEsc   = tcell.KeyEsc
)
