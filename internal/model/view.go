package model

// View is the screen a chat currently shows. The two modal views are
// overlays on the dashboard: closing one returns to ViewDashboard, never
// to ViewLoggedOut.
type View int

const (
	ViewLoggedOut View = iota
	ViewDashboard
	ViewAddMoney
	ViewServiceModal
)

// AuthTab selects which of the two logged-out forms is active. Exactly
// one is visible at a time.
type AuthTab int

const (
	TabLogin AuthTab = iota
	TabRegister
)

// TopUpMethod distinguishes how funds are added.
type TopUpMethod string

const (
	MethodCard     TopUpMethod = "card"
	MethodTransfer TopUpMethod = "transfer"
)
