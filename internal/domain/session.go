package domain

type WalletEvent string

const (
	WalletEventConnect    WalletEvent = "connect"
	WalletEventDisconnect WalletEvent = "disconnect"
)

// Session is the in-memory connection state. It is never persisted; it is
// reset to the zero value on disconnect, whether user- or provider-initiated.
type Session struct {
	Connected     bool
	Account       Address
	NativeBalance Lamports
}
