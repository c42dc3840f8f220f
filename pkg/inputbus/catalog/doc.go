// Package catalog holds the two immutable leaf collections an input bus is
// built from: the Events catalog (which event names exist) and the
// ContextSet (which named contexts a host can report).
//
// # Events
//
// Events is an ordered set of event names. Lookup resolves a name to its
// position in the catalog; routers use that position to build handles.
//
//	events, err := catalog.NewEvents("Jump", "Move", "Fire")
//	idx, ok := events.Lookup("Move") // 1, true
//
// # Contexts
//
// A Context is a named, comparable value. Three kinds exist:
//
//   - the zero Context, meaning "absent" (filtered out at registration)
//   - Unscoped, meaning "applies under any active context"
//   - named contexts, obtained from a ContextSet
//
//	set, err := catalog.NewContextSet("Keyboard", "Gamepad")
//	kb, ok := set.Find("Keyboard")
//
// ContextSet values never change. With and Without return new sets, which a
// host applies by re-initializing its bus.
package catalog
