// Package kiosk is the interactive terminal front-end of the booth.
//
// The customer browses the catalog, fills a cart and commits it to get a
// redemption token for staff, shown as a QR code with the text code under
// it. A Model owns one order.Session and drives it from bubbletea's Update
// loop, which is the only goroutine that touches the session. Stock-out
// timers are armed with time.AfterFunc and delivered back into Update as
// messages, so a fire never races a key press.
package kiosk
