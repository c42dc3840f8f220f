// Package router implements context-filtered event dispatch.
//
// A Router owns a routing table from event to an ordered list of groups,
// one group per (event, context) pair. Each group is a deduplicated set of
// handlers. Dispatch runs every handler of every group whose context is
// Unscoped or equal to the active context.
//
//	r, _ := router.New[Payload](events, router.Config{})
//	_ = r.Register("Move", moveHandler, gamepad)
//	_ = r.Register("Jump", jumpHandler) // unscoped
//
//	h, _ := r.Resolve("Move")
//	res, err := r.Dispatch(ctx, h, payload, active)
//
// The router is not safe for concurrent use.
package router
